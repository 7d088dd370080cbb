// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/b3cal/internal/clients/anbima"
	"github.com/aristath/b3cal/internal/modules/calendar"
	"github.com/aristath/b3cal/internal/modules/calendar/updater"
	"github.com/aristath/b3cal/internal/reliability"
	"github.com/aristath/b3cal/internal/scheduler"
)

// Container holds every long-lived component of the service
type Container struct {
	Provider     *calendar.Provider
	AnbimaClient *anbima.Client
	R2Client     *reliability.R2Client             // nil when R2 is not configured
	Publisher    *reliability.DatasetBackupService // nil when R2 is not configured
	Updater      *updater.Updater
	Scheduler    *scheduler.Scheduler
}
