// Package strings holds small string-slice helpers shared by the provider
// normalizers.
package strings

import (
	"strings"
)

// DedupeAndTrim trims whitespace, drops empties, and removes duplicates
// while preserving first-seen order. Registry payloads repeat classification
// codes (SIC codes most often) and the canonical record wants each one once.
//
//	DedupeAndTrim([]string{" 62012", "62020", "62012", ""})
//	// -> []string{"62012", "62020"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
