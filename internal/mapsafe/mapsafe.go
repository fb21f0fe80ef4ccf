// Package mapsafe reads typed values out of loosely typed metadata maps,
// such as model metadata decoded from YAML or JSONB.
package mapsafe

import "strconv"

// Get returns m[key] converted to T, or def when the key is missing or the
// value cannot be converted. Numbers convert between int and float64, and
// numeric strings convert to numbers.
func Get[T any](m map[string]any, key string, def T) T {
	v, ok := Lookup[T](m, key)
	if !ok {
		return def
	}
	return v
}

// Lookup is like Get but reports whether a usable value was found.
func Lookup[T any](m map[string]any, key string) (T, bool) {
	var zero T

	raw, ok := m[key]
	if !ok || raw == nil {
		return zero, false
	}

	switch any(zero).(type) {
	case int:
		if n, ok := toFloat(raw); ok {
			return any(int(n)).(T), true
		}
	case float64:
		if n, ok := toFloat(raw); ok {
			return any(n).(T), true
		}
	case string:
		if s, ok := raw.(string); ok {
			return any(s).(T), true
		}
	case bool:
		switch b := raw.(type) {
		case bool:
			return any(b).(T), true
		case string:
			if parsed, err := strconv.ParseBool(b); err == nil {
				return any(parsed).(T), true
			}
		}
	default:
		if v, ok := raw.(T); ok {
			return v, true
		}
	}

	return zero, false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}
