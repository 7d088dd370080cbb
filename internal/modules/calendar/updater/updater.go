// Package updater refreshes the holiday dataset from ANBIMA. It is the only
// writer of the dataset file and runs independently of the lookup path.
package updater

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/b3cal/internal/modules/calendar"
)

// Source fetches and decodes the remote holiday list.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Parse(data []byte) ([]calendar.Holiday, error)
}

// Publisher mirrors a written dataset file somewhere else.
type Publisher interface {
	Publish(ctx context.Context, path string) error
}

// Result describes a completed update run.
type Result struct {
	RunID         string        `json:"run_id"`
	Path          string        `json:"path"`
	Count         int           `json:"count"`
	First         time.Time     `json:"first"`
	Last          time.Time     `json:"last"`
	Discrepancies []Discrepancy `json:"discrepancies,omitempty"`
	Published     bool          `json:"published"`
	Duration      time.Duration `json:"duration_ns"`
}

// Option configures an Updater.
type Option func(*Updater)

// WithStrict makes cross-check discrepancies fail the parse stage.
func WithStrict(strict bool) Option {
	return func(u *Updater) { u.strict = strict }
}

// WithPublisher mirrors every written dataset through p.
func WithPublisher(p Publisher) Option {
	return func(u *Updater) { u.publisher = p }
}

// WithProvider makes Refresh install the new calendar into p.
func WithProvider(p *calendar.Provider) Option {
	return func(u *Updater) { u.provider = p }
}

// Updater fetches, validates, writes and optionally publishes the dataset.
type Updater struct {
	source     Source
	outputPath string
	strict     bool
	publisher  Publisher
	provider   *calendar.Provider
	log        zerolog.Logger
}

// New creates an updater writing to outputPath.
func New(source Source, outputPath string, log zerolog.Logger, opts ...Option) *Updater {
	u := &Updater{
		source:     source,
		outputPath: outputPath,
		log:        log.With().Str("service", "holiday_updater").Logger(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Name identifies the updater as a scheduled job.
func (u *Updater) Name() string {
	return "holiday_dataset_refresh"
}

// Run performs one update. Failures are returned as *StageError. When only
// the publish stage fails, the Result of the completed write is returned
// alongside the error.
func (u *Updater) Run(ctx context.Context) (*Result, error) {
	result, _, err := u.run(ctx)
	return result, err
}

// Refresh runs an update and, when a provider is configured, swaps the
// freshly written calendar in. A publish failure does not block the swap.
func (u *Updater) Refresh(ctx context.Context) (*Result, error) {
	result, holidays, err := u.run(ctx)
	if holidays != nil && u.provider != nil {
		u.provider.Swap(calendar.New(holidays, u.log))
		u.log.Info().Str("run_id", result.RunID).Msg("Installed refreshed calendar")
	}
	return result, err
}

func (u *Updater) run(ctx context.Context) (*Result, []calendar.Holiday, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString(), Path: u.outputPath}
	log := u.log.With().Str("run_id", result.RunID).Logger()
	log.Info().Str("path", u.outputPath).Msg("Starting holiday update")

	data, err := u.source.Fetch(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch holidays")
		return nil, nil, stageErr(StageFetch, err)
	}

	holidays, err := u.source.Parse(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse holidays")
		return nil, nil, stageErr(StageParse, err)
	}

	result.Discrepancies = CrossCheck(holidays)
	for _, d := range result.Discrepancies {
		log.Warn().
			Str("date", calendar.FormatDate(d.Date)).
			Str("holiday", d.Name).
			Msg("National holiday missing from fetched list")
	}
	if u.strict && len(result.Discrepancies) > 0 {
		return nil, nil, stageErr(StageParse,
			fmt.Errorf("%d national holidays missing from fetched list", len(result.Discrepancies)))
	}

	cal := calendar.New(holidays, log)
	holidays = cal.Holidays()
	result.Count = len(holidays)
	result.First, _ = cal.First()
	result.Last, _ = cal.Last()

	if err := writeAtomic(u.outputPath, holidays); err != nil {
		log.Error().Err(err).Msg("Failed to write dataset")
		return nil, nil, stageErr(StageWrite, err)
	}
	log.Info().
		Int("holidays", result.Count).
		Str("first", calendar.FormatDate(result.First)).
		Str("last", calendar.FormatDate(result.Last)).
		Msg("Holiday dataset written")

	if u.publisher != nil {
		if err := u.publisher.Publish(ctx, u.outputPath); err != nil {
			log.Error().Err(err).Msg("Failed to publish dataset")
			result.Duration = time.Since(start)
			return result, holidays, stageErr(StagePublish, err)
		}
		result.Published = true
	}

	result.Duration = time.Since(start)
	log.Info().Dur("duration", result.Duration).Msg("Holiday update completed")
	return result, holidays, nil
}

// writeAtomic replaces path with the encoded dataset via a temp file rename.
func writeAtomic(path string, holidays []calendar.Holiday) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".holidays-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := calendar.WriteDataset(tmp, holidays); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace dataset: %w", err)
	}
	return nil
}
