// Package handlers provides HTTP handlers for holiday and business-day queries.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/b3cal/internal/modules/calendar"
	"github.com/aristath/b3cal/internal/modules/calendar/updater"
)

const (
	msgpackContentType = "application/msgpack"

	// maxRangeLength caps periods and the day span of end-bounded ranges
	// requested over HTTP (about 270 years)
	maxRangeLength = 100_000
)

// Refresher runs the holiday updater and installs its result.
type Refresher interface {
	Refresh(ctx context.Context) (*updater.Result, error)
}

// Handler handles calendar HTTP requests
type Handler struct {
	provider  *calendar.Provider
	refresher Refresher
	log       zerolog.Logger
}

// NewHandler creates a new calendar handler. refresher may be nil, in which
// case POST /refresh answers 503.
func NewHandler(
	provider *calendar.Provider,
	refresher Refresher,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		provider:  provider,
		refresher: refresher,
		log:       log.With().Str("handler", "calendar").Logger(),
	}
}

type holidayView struct {
	Date string `json:"date" msgpack:"date"`
	Name string `json:"name,omitempty" msgpack:"name,omitempty"`
}

func toViews(holidays []calendar.Holiday) []holidayView {
	views := make([]holidayView, len(holidays))
	for i, h := range holidays {
		views[i] = holidayView{Date: calendar.FormatDate(h.Date), Name: h.Name}
	}
	return views
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = calendar.FormatDate(d)
	}
	return out
}

// HandleGetHolidays handles GET /api/calendar/holidays
// Returns holidays in [start, end]; a missing bound defaults to the dataset edge
func (h *Handler) HandleGetHolidays(w http.ResponseWriter, r *http.Request) {
	cal := h.provider.Current()

	start, end := r.URL.Query().Get("start"), r.URL.Query().Get("end")
	var holidays []calendar.Holiday
	if start == "" && end == "" {
		holidays = cal.Holidays()
	} else {
		first, _ := cal.First()
		last, _ := cal.Last()
		from, err := optionalDate(start, first)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		to, err := optionalDate(end, last)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		holidays = cal.InRange(from, to)
	}

	h.respond(w, r, map[string]interface{}{
		"holidays": toViews(holidays),
		"count":    len(holidays),
	})
}

// HandleGetHoliday handles GET /api/calendar/holidays/{date}
func (h *Handler) HandleGetHoliday(w http.ResponseWriter, r *http.Request, raw string) {
	d, err := calendar.ParseDate(raw)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	cal := h.provider.Current()
	name, holiday := cal.Name(d)
	h.respond(w, r, map[string]interface{}{
		"date":         calendar.FormatDate(d),
		"holiday":      holiday,
		"name":         name,
		"business_day": cal.IsBusinessDay(d),
		"covered":      cal.Covers(d),
	})
}

// HandleGetNextHolidays handles GET /api/calendar/holidays/{date}/next
func (h *Handler) HandleGetNextHolidays(w http.ResponseWriter, r *http.Request, raw string) {
	h.neighbours(w, r, raw, h.provider.Current().NextHoliday)
}

// HandleGetPreviousHolidays handles GET /api/calendar/holidays/{date}/previous
func (h *Handler) HandleGetPreviousHolidays(w http.ResponseWriter, r *http.Request, raw string) {
	h.neighbours(w, r, raw, h.provider.Current().PreviousHoliday)
}

func (h *Handler) neighbours(w http.ResponseWriter, r *http.Request, raw string, lookup func(time.Time, int) []calendar.Holiday) {
	d, err := calendar.ParseDate(raw)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := intParam(r, "n", 1)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	holidays := lookup(d, n)
	h.respond(w, r, map[string]interface{}{
		"date":     calendar.FormatDate(d),
		"n":        n,
		"holidays": toViews(holidays),
	})
}

// HandleGetBusinessDays handles GET /api/calendar/business-days
// Exactly one of end or periods must be given alongside start
func (h *Handler) HandleGetBusinessDays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := requiredDate(q.Get("start"), "start")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var opts []calendar.RangeOption
	if raw := q.Get("end"); raw != "" {
		end, err := calendar.ParseDate(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if err := checkSpan(start, end); err != nil {
			h.writeError(w, r, err)
			return
		}
		opts = append(opts, calendar.WithEnd(end))
	}
	if q.Has("periods") {
		periods, err := intParam(r, "periods", 0)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if periods > maxRangeLength {
			h.writeError(w, r, fmt.Errorf("%w: periods must not exceed %d", calendar.ErrInvalidArgument, maxRangeLength))
			return
		}
		opts = append(opts, calendar.WithPeriods(periods))
	}

	dates, err := h.provider.Current().BDateRange(start, opts...)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respond(w, r, map[string]interface{}{
		"start": calendar.FormatDate(start),
		"dates": formatDates(dates),
		"count": len(dates),
	})
}

// HandleGetBusinessDayCount handles GET /api/calendar/business-days/count
func (h *Handler) HandleGetBusinessDayCount(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := requiredDate(q.Get("start"), "start")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	end, err := requiredDate(q.Get("end"), "end")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := checkSpan(start, end); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respond(w, r, map[string]interface{}{
		"start": calendar.FormatDate(start),
		"end":   calendar.FormatDate(end),
		"count": h.provider.Current().BDateCount(start, end),
	})
}

// HandleGetStats handles GET /api/calendar/stats
func (h *Handler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	cal := h.provider.Current()
	first, _ := cal.First()
	last, _ := cal.Last()

	h.respond(w, r, map[string]interface{}{
		"holidays": cal.Len(),
		"first":    calendar.FormatDate(first),
		"last":     calendar.FormatDate(last),
		"summary":  cal.Stats(),
	})
}

// HandlePostRefresh handles POST /api/calendar/refresh
// Runs the updater synchronously and swaps the new calendar in
func (h *Handler) HandlePostRefresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		h.writeJSONError(w, r, http.StatusServiceUnavailable, "refresh is not configured")
		return
	}

	result, err := h.refresher.Refresh(r.Context())
	if result == nil {
		h.log.Error().Err(err).Msg("Holiday refresh failed")
		h.writeError(w, r, err)
		return
	}

	data := map[string]interface{}{
		"run_id":        result.RunID,
		"path":          result.Path,
		"count":         result.Count,
		"first":         calendar.FormatDate(result.First),
		"last":          calendar.FormatDate(result.Last),
		"discrepancies": len(result.Discrepancies),
		"published":     result.Published,
		"duration_ms":   result.Duration.Milliseconds(),
	}
	if err != nil {
		// the dataset was written and installed; only mirroring failed
		data["error"] = err.Error()
	}
	h.respond(w, r, data)
}

func optionalDate(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	return calendar.ParseDate(raw)
}

func checkSpan(start, end time.Time) error {
	if calendar.DaysBetween(start, end) > maxRangeLength {
		return fmt.Errorf("%w: range must not span more than %d days", calendar.ErrInvalidArgument, maxRangeLength)
	}
	return nil
}

func requiredDate(raw, name string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s parameter is required", calendar.ErrInvalidArgument, name)
	}
	return calendar.ParseDate(raw)
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", calendar.ErrInvalidArgument, name)
	}
	return v, nil
}

func wantsMsgpack(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), msgpackContentType)
}

// respond wraps data in the standard envelope
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, data interface{}) {
	h.write(w, r, http.StatusOK, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, calendar.ErrParse) || errors.Is(err, calendar.ErrInvalidArgument) {
		status = http.StatusBadRequest
	}
	h.writeJSONError(w, r, status, err.Error())
}

func (h *Handler) writeJSONError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.write(w, r, status, map[string]interface{}{"error": msg})
}

// write encodes payload as msgpack when the client asks for it, JSON otherwise
func (h *Handler) write(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	if wantsMsgpack(r) {
		body, err := msgpack.Marshal(payload)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to encode msgpack response")
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", msgpackContentType)
		w.WriteHeader(status)
		if _, err := w.Write(body); err != nil {
			h.log.Error().Err(err).Msg("Failed to write response")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
