package sitemap

import (
	"log/slog"
	"maps"
	"strings"
)

// DefaultExtensions maps source document extensions to output extensions.
var DefaultExtensions = map[string]string{
	".md":   ".html",
	".html": ".html",
}

// DateFormat formats document modification times.
const DateFormat = "2006-01-02T15:04"

// Option is a functional option for configuring a Builder.
type Option func(*Builder)

// WithExtensions replaces the source-to-output extension map. Keys are
// matched case-insensitively.
func WithExtensions(ext map[string]string) Option {
	return func(b *Builder) {
		b.extensions = make(map[string]string, len(ext))
		for k, v := range ext {
			b.extensions[strings.ToLower(k)] = v
		}
	}
}

// WithAlwaysFrontpage controls whether a directory without an index or
// same-named document links to its first child.
func WithAlwaysFrontpage(enabled bool) Option {
	return func(b *Builder) {
		b.alwaysFrontpage = enabled
	}
}

// WithCollapse controls whether a directory with a single remaining child
// is merged into that child.
func WithCollapse(enabled bool) Option {
	return func(b *Builder) {
		b.collapse = enabled
	}
}

// WithParallel sets how many siblings are built concurrently per directory.
// Values below 2 build sequentially.
func WithParallel(n int) Option {
	return func(b *Builder) {
		b.parallel = n
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

func defaultExtensions() map[string]string {
	return maps.Clone(DefaultExtensions)
}
