package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// events, if non-nil, is mounted at GET /events for catalog change
// notifications.
func NewRouter(h *Handler, events http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(NoStore)

	// One-shot catalog load.
	r.Get("/catalog", h.Catalog)

	// Per page load.
	r.Get("/views/{id}/events", h.ViewEvents)
	r.Get("/views/{id}/filter", h.Filter)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
