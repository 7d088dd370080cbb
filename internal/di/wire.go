package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/b3cal/internal/clients/anbima"
	"github.com/aristath/b3cal/internal/config"
	"github.com/aristath/b3cal/internal/modules/calendar"
	"github.com/aristath/b3cal/internal/modules/calendar/updater"
	"github.com/aristath/b3cal/internal/reliability"
	"github.com/aristath/b3cal/internal/scheduler"
)

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Load the holiday dataset (file override or embedded)
// 2. Initialize clients (ANBIMA, optional R2)
// 3. Initialize the updater
// 4. Register jobs (the scheduler is not started)
func Wire(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	cal, err := calendar.Load(cfg.HolidaysFile, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load holiday dataset: %w", err)
	}
	container := &Container{
		Provider: calendar.NewProvider(cal, cfg.HolidaysFile, log),
	}
	log.Info().
		Int("holidays", cal.Len()).
		Str("calendar", cal.String()).
		Msg("Holiday dataset loaded")

	if err := InitializeClients(ctx, container, cfg, log); err != nil {
		return nil, fmt.Errorf("failed to initialize clients: %w", err)
	}

	container.Updater = NewUpdater(container, cfg, log)

	container.Scheduler = scheduler.New(log)
	if err := RegisterJobs(container, cfg, log); err != nil {
		return nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	return container, nil
}

// InitializeClients creates the ANBIMA client and, when configured, the R2
// dataset mirror
func InitializeClients(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.AnbimaClient = anbima.NewClient(cfg.SourceURL, log)

	if !cfg.R2.Enabled() {
		log.Debug().Msg("R2 not configured, dataset mirror disabled")
		return nil
	}
	r2, err := reliability.NewR2Client(ctx, cfg.R2, log)
	if err != nil {
		return err
	}
	container.R2Client = r2
	container.Publisher = reliability.NewDatasetBackupService(r2, cfg.R2Prefix, cfg.R2Keep, log)
	log.Info().Str("bucket", cfg.R2.Bucket).Msg("Dataset mirror enabled")
	return nil
}

// NewUpdater builds the holiday updater from the container's clients
func NewUpdater(container *Container, cfg *config.Config, log zerolog.Logger) *updater.Updater {
	opts := []updater.Option{
		updater.WithStrict(cfg.StrictCheck),
		updater.WithProvider(container.Provider),
	}
	if container.Publisher != nil {
		opts = append(opts, updater.WithPublisher(container.Publisher))
	}
	return updater.New(container.AnbimaClient, cfg.HolidaysFile, log, opts...)
}
