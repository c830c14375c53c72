package snapshot

import (
	"encoding/json"
	"strconv"
	"strings"
)

// accessor resolves one candidate location for a canonical field inside a
// raw extraction payload. It returns nil when the location is absent or
// not numeric.
type accessor func(payload map[string]any) *float64

// path builds an accessor that walks nested maps by key. A single part
// reads a flat legacy field; two parts read a structured field group.
func path(parts ...string) accessor {
	return func(payload map[string]any) *float64 {
		cur := any(payload)
		for _, part := range parts {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur, ok = m[part]
			if !ok {
				return nil
			}
		}
		return coerce(cur)
	}
}

// firstNonNil evaluates accessors in priority order; the first non-nil
// value wins. Alias order is load-bearing: historical records may only
// populate a legacy flat field.
func firstNonNil(payload map[string]any, chain []accessor) *float64 {
	for _, get := range chain {
		if v := get(payload); v != nil {
			return v
		}
	}
	return nil
}

// coerce converts JSON-ish values to a float. Numeric strings are accepted
// with currency/percent decoration stripped; anything else is nil.
func coerce(v any) *float64 {
	switch x := v.(type) {
	case float64:
		return &x
	case float32:
		f := float64(x)
		return &f
	case int:
		f := float64(x)
		return &f
	case int64:
		f := float64(x)
		return &f
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil
		}
		return &f
	case string:
		s := strings.TrimSpace(x)
		s = strings.NewReplacer("$", "", ",", "", "%", "").Replace(s)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}
