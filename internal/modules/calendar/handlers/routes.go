package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all calendar routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/calendar", func(r chi.Router) {
		r.Get("/holidays", h.HandleGetHolidays)
		r.Get("/holidays/{date}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetHoliday(w, r, chi.URLParam(r, "date"))
		})
		r.Get("/holidays/{date}/next", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetNextHolidays(w, r, chi.URLParam(r, "date"))
		})
		r.Get("/holidays/{date}/previous", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetPreviousHolidays(w, r, chi.URLParam(r, "date"))
		})
		r.Get("/business-days", h.HandleGetBusinessDays)
		r.Get("/business-days/count", h.HandleGetBusinessDayCount)
		r.Get("/stats", h.HandleGetStats)
		r.Post("/refresh", h.HandlePostRefresh)
	})
}
