// Package merge combines metadata mappings.
package merge

// Deep combines maps by recursively left-joining them. For every key the
// value of the first map that defines it is kept, except that mappings
// defined under the same key in several inputs are merged with the same
// rule. The inputs are never modified.
func Deep(maps ...map[string]any) map[string]any {
	result := make(map[string]any)
	for _, m := range maps {
		for key, value := range m {
			current, ok := result[key]
			if !ok {
				result[key] = value
				continue
			}
			left, lok := asMap(current)
			right, rok := asMap(value)
			if lok && rok {
				result[key] = Deep(left, right)
			}
		}
	}
	return result
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
