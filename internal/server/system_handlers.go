package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/b3cal/internal/modules/calendar"
	"github.com/aristath/b3cal/internal/scheduler"
)

// SystemHandlers handles system monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	provider    *calendar.Provider
	scheduler   *scheduler.Scheduler
	startupTime time.Time
	stats       func() (float64, float64)
}

// DatasetStatus describes the calendar being served
type DatasetStatus struct {
	Path        string `json:"path"`
	Holidays    int    `json:"holidays"`
	First       string `json:"first"`
	Last        string `json:"last"`
	CoversToday bool   `json:"covers_today"`
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status        string        `json:"status"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	GoVersion     string        `json:"go_version"`
	Goroutines    int           `json:"goroutines"`
	CPUPercent    float64       `json:"cpu_percent"`
	RAMPercent    float64       `json:"ram_percent"`
	Dataset       DatasetStatus `json:"dataset"`
	NextRefresh   *time.Time    `json:"next_refresh,omitempty"`
	LastRefresh   *time.Time    `json:"last_refresh,omitempty"`
}

// NewSystemHandlers creates a new system handlers instance. sched may be nil.
func NewSystemHandlers(log zerolog.Logger, provider *calendar.Provider, sched *scheduler.Scheduler) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		provider:    provider,
		scheduler:   sched,
		startupTime: time.Now(),
	}
	h.stats = h.getSystemStats
	return h
}

// HandleSystemStatus returns dataset and host status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cal := h.provider.Current()
	first, _ := cal.First()
	last, _ := cal.Last()
	cpuPercent, ramPercent := h.stats()

	response := SystemStatusResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		GoVersion:     runtime.Version(),
		Goroutines:    runtime.NumGoroutine(),
		CPUPercent:    cpuPercent,
		RAMPercent:    ramPercent,
		Dataset: DatasetStatus{
			Path:        h.provider.Path(),
			Holidays:    cal.Len(),
			First:       calendar.FormatDate(first),
			Last:        calendar.FormatDate(last),
			CoversToday: cal.Covers(time.Now()),
		},
	}
	if !response.Dataset.CoversToday {
		response.Status = "stale"
	}

	if h.scheduler != nil {
		if entry, ok := h.scheduler.Entry(scheduler.RefreshJobName); ok {
			if !entry.Next.IsZero() {
				next := entry.Next
				response.NextRefresh = &next
			}
			if !entry.Prev.IsZero() {
				prev := entry.Prev
				response.LastRefresh = &prev
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// getSystemStats calculates CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
