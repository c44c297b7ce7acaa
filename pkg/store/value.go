package store

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/macropower/cardfont/pkg/yaml"
)

// Plain converts v into the representation the tree stores: nil, scalars,
// []any and map[string]any. Structs and typed collections are converted by
// encoding them as YAML and decoding the result.
func Plain(v any) (any, error) {
	switch v.(type) {
	case nil, bool, string, int, int64, uint64, float64:
		return v, nil
	}

	buf := &bytes.Buffer{}

	err := yaml.NewEncoder(buf).Encode(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}

	var out any

	err = yaml.NewDecoder(buf).Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}

	return out, nil
}

// Pairs converts a struct or map into one [Pair] per top-level key.
func Pairs(v any) ([]Pair, error) {
	plain, err := Plain(v)
	if err != nil {
		return nil, err
	}

	m, ok := plain.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotMap, v)
	}

	pairs := make([]Pair, 0, len(m))
	for _, k := range sortedKeys(m) {
		pairs = append(pairs, Set(k, m[k]))
	}

	return pairs, nil
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}

	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}

		return out
	default:
		return v
	}
}

// mergeMaps returns a copy of base with over merged on top. Nested maps are
// merged recursively; any other value in over replaces the base value.
func mergeMaps(base, over map[string]any) map[string]any {
	out := cloneMap(base)
	for k, v := range over {
		bm, bok := out[k].(map[string]any)
		om, ook := v.(map[string]any)
		if bok && ook {
			out[k] = mergeMaps(bm, om)
			continue
		}

		out[k] = cloneValue(v)
	}

	return out
}
