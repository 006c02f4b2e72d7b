package internal

import (
	"strings"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if !cfg.Sitemap.AlwaysFrontpage || !cfg.Sitemap.Collapse {
		t.Error("frontpage fallback and collapsing should default to enabled")
	}
}

func TestSitemapConfig_RootRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Sitemap.Root = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty root should fail validation")
	}
}

func TestSitemapConfig_ExtensionsNeedDots(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Sitemap.Extensions = map[string]string{"md": ".html"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("extension without a dot should fail")
	}
	if !strings.Contains(err.Error(), "must start with a dot") {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.Sitemap.Extensions = map[string]string{".md": "html"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("output extension without a dot should fail")
	}
}

func TestSitemapConfig_ExtensionsRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Sitemap.Extensions = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing extension map should fail")
	}
}

func TestSitemapConfig_ParallelPositive(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Sitemap.Parallel = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("parallel 0 should fail")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("out-of-range port should fail")
	}
	if got := (&HTTPConfig{Port: 9000}).Address(); got != ":9000" {
		t.Errorf("address = %q", got)
	}
}

func TestWatchConfig_NegativeDebounce(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Watch.Debounce = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative debounce should fail")
	}
}
