// Package metadata loads the metadata records attached to documents and
// directories of a content tree.
package metadata

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is an attribute mapping loaded from one filesystem location.
type Record map[string]any

// String returns the value of key rendered as a string, or "" when the key
// is absent or not a scalar.
func (r Record) String(key string) string {
	return Format(r[key])
}

// Format renders a scalar metadata value as a string. Booleans and floats
// are spelled True, 1.0, 1e+20. Mappings, sequences and nil render as "".
func Format(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(v)
	case float64:
		return formatFloat(v)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Bool returns the truthiness of key.
func (r Record) Bool(key string) bool {
	return Truthy(r[key])
}

// Truthy reports whether v counts as set: absent, false, zero and empty
// values do not.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case float64:
		return x != 0
	case map[string]any:
		return len(x) > 0
	case []any:
		return len(x) > 0
	default:
		return true
	}
}
