package types

import (
	"strings"

	"github.com/google/uuid"
)

// NormalizeID returns the key under which a dimension uuid is compared and
// stored in the plot URL. Values that parse as uuids are canonicalized to
// their lowercase form; anything else is kept as an opaque trimmed string.
// An empty result means the value can not be used: it was blank or it
// contains the list separator.
func NormalizeID(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || strings.Contains(value, ",") {
		return ""
	}
	if parsed, err := uuid.Parse(value); err == nil {
		return parsed.String()
	}
	return value
}

// NormalizeIDs normalizes each value, dropping unusable ones and repeats.
// The first occurrence keeps its position.
func NormalizeIDs(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, raw := range values {
		value := NormalizeID(raw)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
