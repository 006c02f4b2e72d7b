// Package api exposes the built sitemap over HTTP using chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/siteservice"
)

// NewRouter creates a chi router serving the sitemap.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *siteservice.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Client-side navigator payload.
	r.Get("/sitemap.json", h.Sitemap)
	r.Head("/sitemap.json", h.Sitemap)

	// Metadata of a single document or directory.
	r.Get("/metadata", h.Metadata)
	r.Get("/metadata/*", h.Metadata)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
