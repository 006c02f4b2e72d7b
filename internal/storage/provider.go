// Package storage defines the read-only file-system abstraction the
// sitemap builder walks, plus atomic writes for build output.
package storage

import (
	"io"
	"io/fs"
)

// Provider is the interface for content tree access. All paths are
// relative to the content root and use the host path separator.
type Provider interface {
	// Root returns the absolute path of the content root.
	Root() string
	// Stat returns file information for path.
	Stat(path string) (fs.FileInfo, error)
	// ReadDir returns the immediate entries of the directory at path.
	ReadDir(path string) ([]fs.DirEntry, error)
	// Open opens the file at path for reading.
	Open(path string) (io.ReadCloser, error)
}
