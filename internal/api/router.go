package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kelbrookafc/clubdraw/internal/api/handlers"
)

// NewRouter builds the HTTP router for the draw service.
func NewRouter(h *handlers.DrawHandler) http.Handler {
	r := chi.NewRouter()

	// Public results endpoints
	r.Route("/draws", func(r chi.Router) {
		r.Get("/latest", h.GetLatestDraw)
		r.Get("/{date}/winners", h.GetDrawWinners)
	})

	// Subscriber line endpoints
	r.Route("/entries", func(r chi.Router) {
		r.Post("/", h.CreateEntry)
		r.Get("/", h.ListEntries)
		r.Put("/{id}", h.UpdateEntry)
	})

	// Admin endpoints
	r.Route("/admin", func(r chi.Router) {
		r.Post("/draws", h.ConductDraw)
		r.Get("/draws/status", h.DrawStatus)
		r.Post("/notifications", h.NotifyWinners)
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
