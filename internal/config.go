package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/sitemap"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Sitemap SitemapConfig     `yaml:"sitemap"`
	Watch   WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Sitemap.Validate(); err != nil {
		return err
	}
	return c.Watch.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SitemapConfig controls how the content tree is turned into a sitemap.
//
// Output names a file to write; empty means standard output. Ignore applies
// to the main tree and FooterIgnore to the footer tree.
type SitemapConfig struct {
	Root            string            `yaml:"root"`
	Output          string            `yaml:"output"`
	Extensions      map[string]string `yaml:"extensions"`
	Ignore          []string          `yaml:"ignore"`
	FooterIgnore    []string          `yaml:"footer_ignore"`
	AlwaysFrontpage bool              `yaml:"always_frontpage"`
	Collapse        bool              `yaml:"collapse"`
	Parallel        int               `yaml:"parallel"`
}

// Validate validates the sitemap configuration.
func (c *SitemapConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Extensions, validation.Required, validation.By(validExtensions)),
		validation.Field(&c.Parallel, validation.Required, validation.Min(1)),
	)
}

// BuilderOptions returns the sitemap builder options for this configuration.
func (c *SitemapConfig) BuilderOptions(logger *slog.Logger) []sitemap.Option {
	return []sitemap.Option{
		sitemap.WithExtensions(c.Extensions),
		sitemap.WithAlwaysFrontpage(c.AlwaysFrontpage),
		sitemap.WithCollapse(c.Collapse),
		sitemap.WithParallel(c.Parallel),
		sitemap.WithLogger(logger),
	}
}

func validExtensions(value any) error {
	ext, _ := value.(map[string]string)
	for src, dst := range ext {
		if !strings.HasPrefix(src, ".") || len(src) < 2 {
			return fmt.Errorf("source extension %q must start with a dot", src)
		}
		if dst != "" && !strings.HasPrefix(dst, ".") {
			return fmt.Errorf("output extension %q for %q must start with a dot", dst, src)
		}
	}
	return nil
}

// WatchConfig holds file watcher configuration used by the serve command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	if c.Debounce < 0 {
		return errors.New("watch: debounce must not be negative")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Sitemap: SitemapConfig{
			Root:            ".",
			Extensions:      map[string]string{".md": ".html", ".html": ".html"},
			Ignore:          []string{"build", "dist", sitemap.FooterDir, "__pycache__"},
			FooterIgnore:    []string{"__pycache__"},
			AlwaysFrontpage: true,
			Collapse:        true,
			Parallel:        1,
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}
