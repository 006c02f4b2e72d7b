package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/starford/folio/internal/merge"
	"github.com/starford/folio/internal/parser"
	"github.com/starford/folio/internal/storage"
)

// DirectoryFiles lists the directory metadata files in priority order.
var DirectoryFiles = []string{
	"metadata.yaml", "metadata.yml",
	"meta.yaml", "meta.yml",
}

// Loader reads metadata records through a storage.Provider.
type Loader struct {
	store  storage.Provider
	logger *slog.Logger
}

// NewLoader creates a Loader. A nil logger discards diagnostics.
func NewLoader(store storage.Provider, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{store: store, logger: logger}
}

// Load returns the metadata for the document or directory at path.
// Directories merge every present metadata file, earlier files winning.
func (l *Loader) Load(path string) (Record, error) {
	info, err := l.store.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return l.loadDocument(path)
	}

	var found []map[string]any
	for _, name := range DirectoryFiles {
		candidate := filepath.Join(path, name)
		if _, err := l.store.Stat(candidate); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		rec, err := l.loadDocument(candidate)
		if err != nil {
			return nil, err
		}
		found = append(found, rec)
	}
	return Record(merge.Deep(found...)), nil
}

func (l *Loader) loadDocument(path string) (Record, error) {
	rc, err := l.store.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	m, err := parser.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("metadata %s: %w", path, err)
	}
	l.logger.Debug("metadata loaded", slog.String("path", path), slog.Any("metadata", m))
	return Record(m), nil
}
