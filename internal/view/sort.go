package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/baaaaaaaka/chat_explorer/internal/transcript"
)

type SortKey string

const (
	SortNone            SortKey = "none"
	SortDateDesc        SortKey = "date-desc"
	SortDateAsc         SortKey = "date-asc"
	SortMessagesDesc    SortKey = "messages-desc"
	SortMessagesAsc     SortKey = "messages-asc"
	SortDurationDesc    SortKey = "duration-desc"
	SortDurationAsc     SortKey = "duration-asc"
	SortAvgResponseDesc SortKey = "avg-response-desc"
	SortAvgResponseAsc  SortKey = "avg-response-asc"
)

var SortKeys = []SortKey{
	SortDateDesc,
	SortDateAsc,
	SortMessagesDesc,
	SortMessagesAsc,
	SortDurationDesc,
	SortDurationAsc,
	SortAvgResponseDesc,
	SortAvgResponseAsc,
}

func ParseSortKey(raw string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	if key == "" {
		return SortDateDesc, nil
	}
	if key == SortNone {
		return key, nil
	}
	for _, k := range SortKeys {
		if k == key {
			return k, nil
		}
	}
	return SortDateDesc, fmt.Errorf("unknown sort %q", raw)
}

// Next cycles through SortKeys.
func (k SortKey) Next() SortKey {
	for i, candidate := range SortKeys {
		if candidate == k {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortKeys[0]
}

// Sort returns a sorted copy. Ties keep their existing order; a missing
// average response time counts as 0.
func Sort(records []transcript.Record, key SortKey) []transcript.Record {
	out := make([]transcript.Record, len(records))
	copy(out, records)
	less := lessFunc(key)
	if less == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func lessFunc(key SortKey) func(a, b transcript.Record) bool {
	switch key {
	case SortDateDesc:
		return func(a, b transcript.Record) bool { return a.StartTime.After(b.StartTime) }
	case SortDateAsc:
		return func(a, b transcript.Record) bool { return a.StartTime.Before(b.StartTime) }
	case SortMessagesDesc:
		return func(a, b transcript.Record) bool { return a.Metrics.MessageCount > b.Metrics.MessageCount }
	case SortMessagesAsc:
		return func(a, b transcript.Record) bool { return a.Metrics.MessageCount < b.Metrics.MessageCount }
	case SortDurationDesc:
		return func(a, b transcript.Record) bool { return a.Metrics.DurationMinutes > b.Metrics.DurationMinutes }
	case SortDurationAsc:
		return func(a, b transcript.Record) bool { return a.Metrics.DurationMinutes < b.Metrics.DurationMinutes }
	case SortAvgResponseDesc:
		return func(a, b transcript.Record) bool { return avgOrZero(a) > avgOrZero(b) }
	case SortAvgResponseAsc:
		return func(a, b transcript.Record) bool { return avgOrZero(a) < avgOrZero(b) }
	}
	return nil
}

func avgOrZero(r transcript.Record) float64 {
	if r.Metrics.AverageResponseMinutes == nil {
		return 0
	}
	return *r.Metrics.AverageResponseMinutes
}
