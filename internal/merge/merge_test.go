package merge

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func TestDeep_LeftBiasNested(t *testing.T) {
	a := map[string]any{"a": map[string]any{"x": 1}}
	b := map[string]any{"a": map[string]any{"x": 2, "y": 3}}
	got := Deep(a, b)
	want := map[string]any{"a": map[string]any{"x": 1, "y": 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Deep = %v, want %v", got, want)
	}
}

func TestDeep_ScalarBlocksMapping(t *testing.T) {
	a := map[string]any{"a": "scalar"}
	b := map[string]any{"a": map[string]any{"x": 1}}
	got := Deep(a, b)
	if got["a"] != "scalar" {
		t.Errorf("a = %v, want scalar", got["a"])
	}
}

func TestDeep_ThreeInputs(t *testing.T) {
	got := Deep(
		map[string]any{"title": "first"},
		nil,
		map[string]any{"title": "second", "index": "2"},
		map[string]any{"index": "3", "toplevel": true},
	)
	want := map[string]any{"title": "first", "index": "2", "toplevel": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Deep = %v, want %v", got, want)
	}
}

func TestDeep_NoArgs(t *testing.T) {
	got := Deep()
	if got == nil || len(got) != 0 {
		t.Errorf("Deep() = %v, want empty map", got)
	}
}

func TestDeep_InputsUntouched(t *testing.T) {
	a := map[string]any{"a": map[string]any{"x": 1}}
	b := map[string]any{"a": map[string]any{"y": 2}, "b": 3}
	_ = Deep(a, b)
	if !reflect.DeepEqual(a, map[string]any{"a": map[string]any{"x": 1}}) {
		t.Errorf("left input mutated: %v", a)
	}
	if !reflect.DeepEqual(b, map[string]any{"a": map[string]any{"y": 2}, "b": 3}) {
		t.Errorf("right input mutated: %v", b)
	}
}

func genMap(t *rapid.T, label string) map[string]any {
	flat := rapid.MapOf(rapid.StringMatching(`[a-e]`), rapid.IntRange(0, 9)).Draw(t, label)
	out := make(map[string]any, len(flat))
	for k, v := range flat {
		out[k] = v
	}
	if rapid.Bool().Draw(t, label+"-nested") {
		nested := rapid.MapOf(rapid.StringMatching(`[x-z]`), rapid.IntRange(0, 9)).Draw(t, label+"-inner")
		inner := make(map[string]any, len(nested))
		for k, v := range nested {
			inner[k] = v
		}
		out["n"] = inner
	}
	return out
}

func TestDeep_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genMap(t, "a")
		b := genMap(t, "b")
		got := Deep(a, b)

		for k, v := range a {
			if _, nested := v.(map[string]any); nested {
				continue
			}
			if !reflect.DeepEqual(got[k], v) {
				t.Fatalf("key %q = %v, want left value %v", k, got[k], v)
			}
		}
		for k := range b {
			if _, ok := got[k]; !ok {
				t.Fatalf("key %q from right input missing", k)
			}
		}
		if len(got) > len(a)+len(b) {
			t.Fatalf("result has %d keys, inputs only %d", len(got), len(a)+len(b))
		}
		if !reflect.DeepEqual(Deep(a), Deep(a, a)) {
			t.Fatalf("merging a map with itself changed it")
		}
	})
}
