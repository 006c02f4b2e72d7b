// Package siteservice keeps the most recent sitemap build of a content
// tree and rebuilds it on demand.
package siteservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/metadata"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/sitemap"
	"github.com/starford/folio/internal/storage"
)

// Snapshot is one completed sitemap build.
type Snapshot struct {
	Site    models.Site
	Payload []byte // compact JSON encoding of Site
	ETag    string
	BuiltAt time.Time
}

// BuildObserver is told about every rebuild attempt.
type BuildObserver interface {
	ObserveBuild(took time.Duration, site models.Site, err error)
}

// Service coordinates the builder and the current snapshot.
type Service struct {
	store        storage.Provider
	builder      *sitemap.Builder
	loader       *metadata.Loader
	ignore       []string
	footerIgnore []string
	logger       *slog.Logger

	mu       sync.Mutex // serialises rebuilds, guards observer
	observer BuildObserver
	current  atomic.Pointer[Snapshot]
}

// NewService creates a new site service. No build happens until Rebuild.
func NewService(store storage.Provider, builder *sitemap.Builder, ignore, footerIgnore []string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:        store,
		builder:      builder,
		loader:       metadata.NewLoader(store, logger),
		ignore:       ignore,
		footerIgnore: footerIgnore,
		logger:       logger,
	}
}

// SetObserver registers o to be told about every subsequent rebuild.
func (s *Service) SetObserver(o BuildObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = o
}

// Rebuild builds the sitemap and, on success, makes it the current
// snapshot. On failure the previous snapshot stays current.
func (s *Service) Rebuild(ctx context.Context) (snap *Snapshot, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	var site models.Site
	if s.observer != nil {
		defer func() { s.observer.ObserveBuild(time.Since(start), site, err) }()
	}

	site, err = s.builder.Site(ctx, s.ignore, s.footerIgnore)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(site)
	if err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	snap = &Snapshot{
		Site:    site,
		Payload: payload,
		ETag:    checksum.ETag(payload),
		BuiltAt: time.Now(),
	}
	s.current.Store(snap)

	s.logger.Info("sitemap rebuilt",
		slog.Int("entries", len(site.Main)),
		slog.Int("footer_entries", len(site.Footer)),
		slog.String("etag", snap.ETag),
		slog.Duration("took", time.Since(start)))
	return snap, nil
}

// Current returns the latest successful snapshot, or nil before the first.
func (s *Service) Current() *Snapshot {
	return s.current.Load()
}

// Metadata returns the merged metadata record of the document or directory
// at path, relative to the content root. Paths the sitemap would never list
// (dot entries, ignored names, files without a source extension) are
// reported as not found.
func (s *Service) Metadata(_ context.Context, path string) (metadata.Record, error) {
	info, err := s.store.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if !s.listed(path, info.IsDir()) {
		return nil, apperr.ErrNotFound
	}

	rec, err := s.loader.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// listed reports whether path can appear in the main or footer tree.
func (s *Service) listed(path string, isDir bool) bool {
	cleaned := filepath.ToSlash(filepath.Clean(path))
	if cleaned == "." {
		return true
	}
	parts := strings.Split(cleaned, "/")
	skip := s.ignore
	if parts[0] == sitemap.FooterDir && (len(parts) > 1 || isDir) {
		skip, parts = s.footerIgnore, parts[1:]
	}
	for _, part := range parts {
		if strings.HasPrefix(part, ".") || slices.Contains(skip, part) {
			return false
		}
	}
	return isDir || s.builder.IsDocument(cleaned)
}
