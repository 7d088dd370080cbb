package di

import (
	"github.com/rs/zerolog"

	"github.com/aristath/b3cal/internal/config"
	"github.com/aristath/b3cal/internal/scheduler"
)

// RegisterJobs registers background jobs with the container's scheduler
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if cfg.RefreshSchedule == "" {
		log.Info().Msg("Scheduled holiday refresh disabled")
		return nil
	}

	job := scheduler.NewRefreshJob(container.Updater, scheduler.DefaultRefreshTimeout, log)
	return container.Scheduler.AddJob(cfg.RefreshSchedule, job)
}
