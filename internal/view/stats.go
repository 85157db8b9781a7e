package view

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/baaaaaaaka/chat_explorer/internal/transcript"
)

type Stats struct {
	Segments      int `json:"segments"`
	Conversations int `json:"conversations"`
	Customers     int `json:"customers"`
	Messages      int `json:"messages"`
}

func Summarize(records []transcript.Record) Stats {
	convs := map[string]bool{}
	customers := map[string]bool{}
	st := Stats{Segments: len(records)}
	for _, r := range records {
		st.Messages += r.Metrics.MessageCount
		convs[r.ConversationID] = true
		customers[r.Metadata.CustomerID] = true
	}
	st.Conversations = len(convs)
	st.Customers = len(customers)
	return st
}

type LanguageOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// FilterOptions lists the values the filter controls offer for a record set.
type FilterOptions struct {
	Languages []LanguageOption `json:"languages"`
	Countries []string         `json:"countries"`
	DateFrom  time.Time        `json:"date_from,omitempty"`
	DateTo    time.Time        `json:"date_to,omitempty"`
}

func Options(records []transcript.Record) FilterOptions {
	langs := map[string]bool{}
	countries := map[string]bool{}
	var opts FilterOptions
	for _, r := range records {
		if r.Metadata.Language != "" {
			langs[r.Metadata.Language] = true
		}
		if c := r.Metadata.Country; c != "" && c != "unknown" {
			countries[c] = true
		}
		if r.StartTime.IsZero() {
			continue
		}
		if opts.DateFrom.IsZero() || r.StartTime.Before(opts.DateFrom) {
			opts.DateFrom = r.StartTime
		}
		if opts.DateTo.IsZero() || r.StartTime.After(opts.DateTo) {
			opts.DateTo = r.StartTime
		}
	}
	for _, code := range sortedKeys(langs) {
		opts.Languages = append(opts.Languages, LanguageOption{Code: code, Name: languageName(code)})
	}
	opts.Countries = sortedKeys(countries)
	return opts
}

func languageName(code string) string {
	tag, err := language.Parse(code)
	if err == nil {
		if name := display.English.Tags().Name(tag); name != "" {
			return name
		}
	}
	return strings.ToUpper(code)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
