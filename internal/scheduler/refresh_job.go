package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/b3cal/internal/modules/calendar/updater"
)

const (
	// RefreshJobName is the scheduler name of RefreshJob
	RefreshJobName = "holiday_refresh"
	// DefaultRefreshTimeout bounds a single scheduled refresh
	DefaultRefreshTimeout = 2 * time.Minute
)

// Refresher runs a holiday update and installs the result
type Refresher interface {
	Refresh(ctx context.Context) (*updater.Result, error)
}

// RefreshJob refreshes the holiday dataset from ANBIMA
type RefreshJob struct {
	refresher Refresher
	timeout   time.Duration
	log       zerolog.Logger
}

// NewRefreshJob creates a new refresh job. A non-positive timeout uses
// DefaultRefreshTimeout.
func NewRefreshJob(refresher Refresher, timeout time.Duration, log zerolog.Logger) *RefreshJob {
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	return &RefreshJob{
		refresher: refresher,
		timeout:   timeout,
		log:       log.With().Str("job", "holiday_refresh").Logger(),
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return RefreshJobName
}

// Run executes the refresh
func (j *RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	result, err := j.refresher.Refresh(ctx)
	if err != nil {
		var stageErr *updater.StageError
		if errors.As(err, &stageErr) && stageErr.Stage == updater.StagePublish && result != nil {
			j.log.Warn().Err(err).Str("run_id", result.RunID).Msg("Dataset refreshed but not published")
			return nil
		}
		return err
	}

	j.log.Info().
		Str("run_id", result.RunID).
		Int("holidays", result.Count).
		Int("discrepancies", len(result.Discrepancies)).
		Msg("Holiday dataset refreshed")
	return nil
}
