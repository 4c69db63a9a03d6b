// Package attrs reads values back out of slog-style key-value attribute
// slices ([key1, value1, key2, value2, ...]).
package attrs

// ExtractString returns the string value stored under key, or "" when the
// key is absent or its value is not a string. Odd trailing elements are
// ignored.
func ExtractString(attrs []any, key string) string {
	for i := 0; i+1 < len(attrs); i += 2 {
		k, ok := attrs[i].(string)
		if !ok || k != key {
			continue
		}
		if v, ok := attrs[i+1].(string); ok {
			return v
		}
	}
	return ""
}
