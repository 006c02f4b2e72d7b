// Package watcher triggers sitemap rebuilds when the content tree changes.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

// ChangeFunc is called once per quiet period with the changed paths,
// relative to the watched root. It runs on the watch loop, so events that
// arrive meanwhile are coalesced into the next call.
type ChangeFunc func(ctx context.Context, changed []string)

// Config holds the parameters for Watch.
type Config struct {
	// Root is the content directory; every non-ignored directory below it
	// is watched, including directories created later.
	Root string
	// Ignore lists entry names whose events are dropped at any depth.
	// Names starting with a dot are always dropped.
	Ignore []string
	// Debounce is the quiet period after the last event before OnChange
	// fires. Zero or negative values use a default.
	Debounce time.Duration
	OnChange ChangeFunc
	Logger   *slog.Logger
}

// Watch starts an fsnotify watcher on cfg.Root and processes change events
// until ctx is cancelled.
func Watch(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	ignored := func(rel string) bool {
		for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
			if strings.HasPrefix(part, ".") && part != "." {
				return true
			}
			if slices.Contains(cfg.Ignore, part) {
				return true
			}
		}
		return false
	}

	if err := addDirsRecursive(w, cfg.Root, cfg.Root, ignored); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", cfg.Root))

	pending := make(map[string]struct{})
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-timer.C:
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			if len(changed) > 0 && cfg.OnChange != nil {
				logger.Debug("watcher: change detected", slog.Int("paths", len(changed)))
				cfg.OnChange(ctx, changed)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			rel, relErr := filepath.Rel(cfg.Root, ev.Name)
			if relErr != nil || ignored(rel) {
				continue
			}

			// New directories are added to the watch list.
			if ev.Has(fsnotify.Create) {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, cfg.Root, ev.Name, ignored); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
				}
			}
			pending[rel] = struct{}{}
			timer.Reset(debounce)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds dir and all its non-ignored subdirectories to the
// watcher.
func addDirsRecursive(w *fsnotify.Watcher, root, dir string, ignored func(string) bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, relErr := filepath.Rel(root, path); relErr == nil && rel != "." && ignored(rel) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
