package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/siteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *siteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *siteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// Sitemap handles GET /sitemap.json. The payload is the compact two-element
// array [main, footer]; conditional requests are answered with 304.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "", "sitemap not built yet")
		return
	}

	w.Header().Set("ETag", snap.ETag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get("If-None-Match"), snap.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(snap.Payload); err != nil {
		slog.Error("write sitemap failed", slog.String("error", err.Error()))
	}
}

// Metadata handles GET /metadata/*, returning the merged metadata record of
// a document or directory. An empty path addresses the content root.
func (h *Handler) Metadata(w http.ResponseWriter, r *http.Request) {
	path := contentPath(r)
	rec, err := h.svc.Metadata(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, path, "not found")
			return
		}
		if errors.Is(err, apperr.ErrInvalidPath) {
			writeError(w, http.StatusBadRequest, path, err.Error())
			return
		}
		if errors.Is(err, apperr.ErrMalformedMetadata) {
			writeError(w, http.StatusUnprocessableEntity, path, err.Error())
			return
		}
		slog.Error("load metadata failed", slog.String("path", path), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, path, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"path":     path,
		"metadata": rec,
	})
}

// contentPath extracts the content path from the URL (everything after
// /metadata/). Supports encoded slashes (e.g. guide%2Fintro.md).
func contentPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
