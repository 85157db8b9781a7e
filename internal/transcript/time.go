package transcript

import (
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTime returns the zero time for missing or unparseable input. Layouts
// without a zone are read as UTC. The zero time itself (0001-01-01T00:00:00Z)
// is indistinguishable from a missing value and counts as untimed.
func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseTime is the exported form used by callers that read timestamps from
// flags or exported files.
func ParseTime(raw string) (time.Time, bool) {
	t := parseTime(raw)
	return t, !t.IsZero()
}
