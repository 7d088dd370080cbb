package calendar

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Provider hands out the current Calendar. Calendars are immutable; a refresh
// builds a new one and swaps it in.
type Provider struct {
	current atomic.Pointer[Calendar]
	path    string
	base    zerolog.Logger
	log     zerolog.Logger
}

// NewProvider creates a provider serving cal. path is the dataset file that
// Reload reads; it may be empty to always use the embedded dataset.
func NewProvider(cal *Calendar, path string, log zerolog.Logger) *Provider {
	p := &Provider{
		path: path,
		base: log,
		log:  log.With().Str("component", "calendar_provider").Logger(),
	}
	p.current.Store(cal)
	return p
}

// Current returns the calendar in use.
func (p *Provider) Current() *Calendar {
	return p.current.Load()
}

// Swap installs cal and returns the previous calendar.
func (p *Provider) Swap(cal *Calendar) *Calendar {
	return p.current.Swap(cal)
}

// Path returns the dataset file the provider reloads from.
func (p *Provider) Path() string {
	return p.path
}

// Reload re-reads the dataset and swaps the new calendar in. On error the
// current calendar is kept.
func (p *Provider) Reload() error {
	cal, err := Load(p.path, p.base)
	if err != nil {
		p.log.Error().Err(err).Str("path", p.path).Msg("Failed to reload holiday dataset")
		return err
	}
	p.Swap(cal)
	p.log.Info().Int("holidays", cal.Len()).Msg("Holiday dataset reloaded")
	return nil
}
