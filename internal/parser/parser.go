// Package parser extracts the leading metadata header of a source document.
//
// Two header syntaxes are recognised and may be combined: Pandoc-style
// title blocks (lines starting with '%') and a YAML block delimited by a
// line of dashes and closed by a line of dashes or dots. Scanning stops at
// the first line of document body.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/merge"
)

type state int

const (
	scanHeader state = iota
	scanBlock
	done
)

// shortHeaders are the slots filled, in order, by '%' lines.
var shortHeaders = []string{"title", "author", "date"}

// Parse reads the metadata header from r. The YAML block is merged on top of
// the '%' header, so '%' values win on key collisions.
func Parse(r io.Reader) (map[string]any, error) {
	br := bufio.NewReader(r)

	header := make(map[string]any)
	unused := shortHeaders
	current := ""
	var block []string

	st := scanHeader
	for st != done {
		raw, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: %w", err)
		}
		if raw == "" && err != nil {
			break
		}
		line := strings.TrimRight(raw, " \t\r\n")

		switch st {
		case scanHeader:
			switch {
			case isDelimiter(line, '-'):
				block = []string{}
				st = scanBlock
			case strings.HasPrefix(line, "%") && len(unused) > 0:
				current, unused = unused[0], unused[1:]
				header[current] = strings.TrimSpace(line[1:])
			case strings.HasPrefix(line, `\s`) && current != "":
				header[current] = header[current].(string) + "\n" + line
			case line != "":
				st = done
			}

		case scanBlock:
			if isDelimiter(line, '-') || isDelimiter(line, '.') {
				st = done
				continue
			}
			block = append(block, line)
		}
		if err != nil {
			break
		}
	}

	if len(block) == 0 {
		return header, nil
	}
	fields, err := decodeBlock(strings.Join(block, "\n"))
	if err != nil {
		return nil, err
	}
	return merge.Deep(header, fields), nil
}

func decodeBlock(src string) (map[string]any, error) {
	var doc any
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedMetadata, err)
	}
	switch v := normalize(doc).(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: block is %T, not a mapping", apperr.ErrMalformedMetadata, doc)
	}
}

// normalize rewrites mappings with non-string keys, such as `2020: recap`,
// into string-keyed mappings at any depth.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	default:
		return v
	}
}

// isDelimiter reports whether line consists of at least three c characters.
func isDelimiter(line string, c byte) bool {
	if len(line) < 3 {
		return false
	}
	for i := 0; i < len(line); i++ {
		if line[i] != c {
			return false
		}
	}
	return true
}
