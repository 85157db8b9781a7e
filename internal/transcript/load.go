package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

var ErrEmptyInput = errors.New("input contains no conversations")

// Batch is everything derived from one loaded file. Messages and Baseline are
// never mutated after load.
type Batch struct {
	Source        string
	Conversations []RawConversation
	Messages      []Message
	Baseline      []Record
	Report        LoadReport
}

// LoadReport summarises data quality issues found while loading.
type LoadReport struct {
	Records          int `json:"records"`
	Messages         int `json:"messages"`
	EmptyRecords     int `json:"empty_records"`
	MissingIDs       int `json:"missing_ids"`
	UnparseableTimes int `json:"unparseable_times"`
	Conversations    int `json:"conversations"`
}

// LoadFile reads a transcript file. "-" reads stdin; a .xz suffix is
// decompressed transparently.
func LoadFile(path string) (Batch, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Batch{}, errors.New("input file is required")
	}
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return Batch{}, fmt.Errorf("open transcript file: %w", err)
		}
		defer f.Close()
		r = f
	}
	if strings.HasSuffix(strings.ToLower(path), ".xz") {
		xr, err := xz.NewReader(bufio.NewReader(r))
		if err != nil {
			return Batch{}, fmt.Errorf("open xz stream: %w", err)
		}
		r = xr
	}
	batch, err := Decode(r)
	if err != nil {
		return Batch{}, fmt.Errorf("load %s: %w", path, err)
	}
	batch.Source = path
	return batch, nil
}

// Decode parses a single conversation object or an array of them.
func Decode(r io.Reader) (Batch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Batch{}, fmt.Errorf("read input: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Batch{}, ErrEmptyInput
	}

	var raws []RawConversation
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &raws); err != nil {
			return Batch{}, fmt.Errorf("parse conversations: %w", err)
		}
	case '{':
		var single RawConversation
		if err := json.Unmarshal(data, &single); err != nil {
			return Batch{}, fmt.Errorf("parse conversation: %w", err)
		}
		raws = []RawConversation{single}
	default:
		return Batch{}, fmt.Errorf("parse input: expected a JSON object or array")
	}
	return NewBatch(raws), nil
}

func NewBatch(raws []RawConversation) Batch {
	b := Batch{
		Conversations: raws,
		Messages:      ExtractMessages(raws),
		Baseline:      BaselineRecords(raws),
	}
	b.Report = buildReport(raws, b.Messages)
	return b
}

func buildReport(raws []RawConversation, messages []Message) LoadReport {
	report := LoadReport{Records: len(raws), Messages: len(messages)}
	seen := map[string]bool{}
	for _, raw := range raws {
		if len(raw.Messages) == 0 {
			report.EmptyRecords++
		}
		id := raw.ConversationID.String()
		if id == "" {
			report.MissingIDs++
		}
		seen[id] = true
	}
	for _, msg := range messages {
		if !msg.HasTime() {
			report.UnparseableTimes++
		}
	}
	report.Conversations = len(seen)
	return report
}
