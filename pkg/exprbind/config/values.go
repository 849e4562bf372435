package config

import "time"

// values reads typed entries from a decoded document. A missing key or a
// value of the wrong shape yields the default.
type values map[string]any

func (v values) getString(key, def string) string {
	if s, ok := v[key].(string); ok {
		return s
	}
	return def
}

func (v values) getBool(key string, def bool) bool {
	if b, ok := v[key].(bool); ok {
		return b
	}
	return def
}

// getInt accepts int, int64 and whole float64 values.
func (v values) getInt(key string, def int) int {
	switch n := v[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	}
	return def
}

// getDuration accepts time.ParseDuration strings, time.Duration, and plain
// numbers read as milliseconds.
func (v values) getDuration(key string, def time.Duration) time.Duration {
	switch d := v[key].(type) {
	case string:
		if parsed, err := time.ParseDuration(d); err == nil {
			return parsed
		}
	case time.Duration:
		return d
	case int:
		return time.Duration(d) * time.Millisecond
	case int64:
		return time.Duration(d) * time.Millisecond
	case float64:
		return time.Duration(d * float64(time.Millisecond))
	}
	return def
}
