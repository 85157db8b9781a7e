package view

import (
	"strings"
	"time"

	"github.com/baaaaaaaka/chat_explorer/internal/transcript"
)

// Filter narrows the active set. Zero-valued fields do not filter; To is
// inclusive of the whole day it names.
type Filter struct {
	Search      string
	From        time.Time
	To          time.Time
	Language    string
	Country     string
	MinMessages *int
	MaxMessages *int
	MinDuration *float64
	MaxDuration *float64
}

func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Search) == "" &&
		f.From.IsZero() && f.To.IsZero() &&
		isAll(f.Language) && isAll(f.Country) &&
		f.MinMessages == nil && f.MaxMessages == nil &&
		f.MinDuration == nil && f.MaxDuration == nil
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all")
}

func (f Filter) Apply(records []transcript.Record) []transcript.Record {
	if f.IsZero() {
		return records
	}
	out := make([]transcript.Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f Filter) Match(r transcript.Record) bool {
	if needle := strings.ToLower(strings.TrimSpace(f.Search)); needle != "" && !matchesSearch(r, needle) {
		return false
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		if !f.From.IsZero() && r.StartTime.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && r.StartTime.After(endOfDay(f.To)) {
			return false
		}
	}
	if !isAll(f.Language) && r.Metadata.Language != strings.TrimSpace(f.Language) {
		return false
	}
	if !isAll(f.Country) && r.Metadata.Country != strings.TrimSpace(f.Country) {
		return false
	}
	count := r.Metrics.MessageCount
	if f.MinMessages != nil && count < *f.MinMessages {
		return false
	}
	if f.MaxMessages != nil && count > *f.MaxMessages {
		return false
	}
	dur := r.Metrics.DurationMinutes
	if f.MinDuration != nil && dur < *f.MinDuration {
		return false
	}
	if f.MaxDuration != nil && dur > *f.MaxDuration {
		return false
	}
	return true
}

func matchesSearch(r transcript.Record, needle string) bool {
	if strings.Contains(strings.ToLower(r.ConversationID), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Metadata.CustomerID), needle) {
		return true
	}
	for _, msg := range r.Messages {
		if strings.Contains(strings.ToLower(msg.Text), needle) {
			return true
		}
	}
	return false
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// ParseDate reads the YYYY-MM-DD values used by the date range flags.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", raw)
}
