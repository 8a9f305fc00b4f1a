package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notesift/internal/metrics"
	"github.com/starford/notesift/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
// m, if non-nil, counts every request by route pattern.
func NewRouter(svc *noteservice.Service, sseHandler http.Handler, m *metrics.Metrics) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(m))

	// Cached notes (read-only).
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/{digest}", h.GetNote)
	r.Get("/search", h.Search)

	// Snapshot.
	r.Get("/cache", h.CacheStatus)
	r.Post("/ingest", h.Ingest)

	// Stateless tools.
	r.Post("/classify", h.Classify)
	r.Post("/segment", h.Segment)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
