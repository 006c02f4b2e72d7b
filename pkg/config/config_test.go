package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func (s *sample) Validate() error {
	if s.Count < 0 {
		return errors.New("count must not be negative")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("FOLIO_TEST_NAME", "from-env")
	p := writeConfig(t, "name: ${FOLIO_TEST_NAME}\n")

	s := sample{Count: 7}
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "from-env" {
		t.Errorf("name = %q", s.Name)
	}
	if s.Count != 7 {
		t.Errorf("count = %d, default should survive", s.Count)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	p := writeConfig(t, "count: -1\n")
	var s sample
	err := Load(p, &s)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadOptional_MissingFileUsesDefaults(t *testing.T) {
	s := sample{Name: "default"}
	if err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Name != "default" {
		t.Errorf("name = %q", s.Name)
	}
}

func TestLoadOptional_EmptyNameStillValidates(t *testing.T) {
	s := sample{Count: -3}
	if err := LoadOptional("", &s); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoad_ParseError(t *testing.T) {
	p := writeConfig(t, "name: [unterminated\n")
	var s sample
	if err := Load(p, &s); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Fatalf("err = %v", err)
	}
}
