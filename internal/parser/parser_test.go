package parser

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/starford/folio/internal/apperr"
)

func parse(t *testing.T, input string) map[string]any {
	t.Helper()
	m, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func TestParse_YAMLBlock(t *testing.T) {
	m := parse(t, "---\ntitle: Hello\nindex: 3\ntags:\n  - go\n---\n# Hello\nBody text.\n")
	if m["title"] != "Hello" {
		t.Errorf("title = %v, want Hello", m["title"])
	}
	if m["index"] != 3 {
		t.Errorf("index = %v (%T), want 3", m["index"], m["index"])
	}
	if tags, ok := m["tags"].([]any); !ok || len(tags) != 1 || tags[0] != "go" {
		t.Errorf("tags = %v", m["tags"])
	}
}

func TestParse_DotTerminator(t *testing.T) {
	m := parse(t, "---\ntitle: Dots\n...\nbody: not metadata\n")
	if m["title"] != "Dots" {
		t.Errorf("title = %v", m["title"])
	}
	if _, ok := m["body"]; ok {
		t.Error("content after the terminator must be ignored")
	}
}

func TestParse_LongDelimiters(t *testing.T) {
	m := parse(t, "-----\ntitle: Long\n-------\n")
	if m["title"] != "Long" {
		t.Errorf("title = %v", m["title"])
	}
}

func TestParse_ShortHeader(t *testing.T) {
	m := parse(t, "% The Title\n% Jane Roe\n% 2020-01-01\n\nBody\n")
	want := map[string]any{"title": "The Title", "author": "Jane Roe", "date": "2020-01-01"}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("got %v, want %v", m, want)
	}
}

func TestParse_ShortHeaderContinuation(t *testing.T) {
	m := parse(t, "% Title\n% First Author\n\\s Second Author\nBody\n")
	if m["author"] != "First Author\n\\s Second Author" {
		t.Errorf("author = %q", m["author"])
	}

	m = parse(t, "% Title\n\\s more title\nBody\n")
	if m["title"] != "Title\n\\s more title" {
		t.Errorf("title = %q", m["title"])
	}
}

func TestParse_IndentedLineEndsHeader(t *testing.T) {
	m := parse(t, "% My Title\n\n    indented code block\nbody\n")
	if m["title"] != "My Title" {
		t.Errorf("title = %q", m["title"])
	}

	m = parse(t, "% Title\n% Author\n\tindented\n---\ndate: ignored\n---\n")
	want := map[string]any{"title": "Title", "author": "Author"}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("got %v, want %v", m, want)
	}
}

func TestParse_VeryLongBodyLine(t *testing.T) {
	long := "<html>" + strings.Repeat("x", 2<<20) + "\n"
	m := parse(t, long)
	if len(m) != 0 {
		t.Errorf("got %v, want empty", m)
	}

	m = parse(t, "% Minified\n"+long)
	if m["title"] != "Minified" {
		t.Errorf("title = %q", m["title"])
	}
}

func TestParse_LongLineInsideBlock(t *testing.T) {
	desc := strings.Repeat("y", 2<<20)
	m := parse(t, "---\ndescription: "+desc+"\n---\n")
	if m["description"] != desc {
		t.Errorf("description has length %d", len(m["description"].(string)))
	}
}

func TestParse_NoTrailingNewline(t *testing.T) {
	m := parse(t, "% Last line")
	if m["title"] != "Last line" {
		t.Errorf("title = %q", m["title"])
	}
}

func TestParse_NonStringKeys(t *testing.T) {
	m := parse(t, "---\ntitle: Archive\n2020: recap\nnested:\n  1: one\n---\n")
	want := map[string]any{
		"title":  "Archive",
		"2020":   "recap",
		"nested": map[string]any{"1": "one"},
	}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("got %#v, want %#v", m, want)
	}
}

func TestParse_FourthPercentLineEndsHeader(t *testing.T) {
	m := parse(t, "% a\n% b\n% c\n% d\n---\ntitle: ignored\n---\n")
	if m["title"] != "a" || m["date"] != "c" {
		t.Errorf("got %v", m)
	}
	if len(m) != 3 {
		t.Errorf("expected scanning to stop at fourth %% line, got %v", m)
	}
}

func TestParse_ShortHeaderWinsOverBlock(t *testing.T) {
	m := parse(t, "% Short\n---\ntitle: Block\ndescription: From block\n---\n")
	if m["title"] != "Short" {
		t.Errorf("title = %v, want Short", m["title"])
	}
	if m["description"] != "From block" {
		t.Errorf("description = %v", m["description"])
	}
}

func TestParse_BodyStopsScanning(t *testing.T) {
	m := parse(t, "# Heading\n---\ntitle: Late\n---\n")
	if len(m) != 0 {
		t.Errorf("expected no metadata, got %v", m)
	}
}

func TestParse_LeadingBlankLines(t *testing.T) {
	m := parse(t, "\n\n---\ntitle: After blanks\n---\n")
	if m["title"] != "After blanks" {
		t.Errorf("title = %v", m["title"])
	}
}

func TestParse_UnterminatedBlock(t *testing.T) {
	m := parse(t, "---\ntitle: Open\n")
	if m["title"] != "Open" {
		t.Errorf("title = %v", m["title"])
	}
}

func TestParse_EmptyBlock(t *testing.T) {
	m := parse(t, "---\n---\nBody\n")
	if len(m) != 0 {
		t.Errorf("expected empty map, got %v", m)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	m := parse(t, "")
	if m == nil || len(m) != 0 {
		t.Errorf("expected empty non-nil map, got %v", m)
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := Parse(strings.NewReader("---\n: invalid: yaml: {{{\n---\nBody\n"))
	if !errors.Is(err, apperr.ErrMalformedMetadata) {
		t.Fatalf("err = %v, want ErrMalformedMetadata", err)
	}
}

func TestParse_NonMappingBlock(t *testing.T) {
	_, err := Parse(strings.NewReader("---\n- a\n- b\n---\n"))
	if !errors.Is(err, apperr.ErrMalformedMetadata) {
		t.Fatalf("err = %v, want ErrMalformedMetadata", err)
	}
}

func TestIsDelimiter(t *testing.T) {
	cases := []struct {
		line string
		c    byte
		want bool
	}{
		{"---", '-', true},
		{"----------", '-', true},
		{"--", '-', false},
		{"...", '.', true},
		{"-.-", '-', false},
		{"", '-', false},
		{"--- title", '-', false},
	}
	for _, tc := range cases {
		if got := isDelimiter(tc.line, tc.c); got != tc.want {
			t.Errorf("isDelimiter(%q, %q) = %v, want %v", tc.line, tc.c, got, tc.want)
		}
	}
}
