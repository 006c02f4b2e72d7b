// Package apperr defines the sentinel errors shared across folio packages.
package apperr

import "errors"

var (
	// ErrMissingRoot is returned when the traversal root does not exist.
	ErrMissingRoot = errors.New("missing root")
	// ErrMalformedMetadata is returned when a metadata block is not a valid YAML mapping.
	ErrMalformedMetadata = errors.New("malformed metadata")
	ErrNotFound          = errors.New("not found")
	// ErrInvalidPath is returned for absolute paths and paths leaving the content root.
	ErrInvalidPath = errors.New("invalid path")
)
