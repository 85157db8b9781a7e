package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/baaaaaaaka/chat_explorer/internal/transcript"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown export format %q (want json or csv)", raw)
}

var CSVHeader = []string{
	"Conversation ID",
	"Segment ID",
	"Customer ID",
	"Start Time",
	"End Time",
	"Duration (min)",
	"Message Count",
	"User Messages",
	"Agent Messages",
	"Language",
	"Country",
	"IP Address",
}

// Record mirrors the input shape so an export can be loaded again.
type Record struct {
	ConversationID  string    `json:"conversation_id"`
	SegmentID       *string   `json:"segment_id"`
	CustomerID      string    `json:"customer_id"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	Language        string    `json:"language,omitempty"`
	Country         string    `json:"country,omitempty"`
	IPAddress       string    `json:"ip_address,omitempty"`
	Messages        []Message `json:"messages"`
	Index           int       `json:"_index"`
	DurationMinutes float64   `json:"_duration_minutes"`
	MessageCount    int       `json:"_message_count"`
	AvgResponseTime *float64  `json:"_avg_response_time"`
}

type Message struct {
	From    string `json:"from"`
	AgentID string `json:"agent_id,omitempty"`
	Time    string `json:"time"`
	Text    string `json:"text"`
}

func toRecord(r transcript.Record) Record {
	out := Record{
		ConversationID:  r.ConversationID,
		CustomerID:      r.Metadata.CustomerID,
		StartTime:       r.RawStartTime,
		EndTime:         r.RawEndTime,
		Language:        r.Metadata.Language,
		Country:         r.Metadata.Country,
		IPAddress:       r.Metadata.IPAddress,
		Messages:        make([]Message, 0, len(r.Messages)),
		Index:           r.Index,
		DurationMinutes: r.Metrics.DurationMinutes,
		MessageCount:    r.Metrics.MessageCount,
		AvgResponseTime: r.Metrics.AverageResponseMinutes,
	}
	if r.SegmentID != "" {
		id := r.SegmentID
		out.SegmentID = &id
	}
	for _, m := range r.Messages {
		out.Messages = append(out.Messages, Message{
			From:    string(m.From),
			AgentID: m.AgentID,
			Time:    m.RawTime,
			Text:    m.Text,
		})
	}
	return out
}

func ToRecords(records []transcript.Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		out = append(out, toRecord(r))
	}
	return out
}

func WriteJSON(w io.Writer, records []transcript.Record) error {
	b, err := json.MarshalIndent(ToRecords(records), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// WriteCSV quotes every cell, matching the spreadsheets the export has always
// produced.
func WriteCSV(w io.Writer, records []transcript.Record) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, CSVHeader)
	for _, r := range records {
		rows = append(rows, csvRow(r))
	}

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		if i == 0 {
			b.WriteString(strings.Join(row, ","))
			continue
		}
		for j, cell := range row {
			if j > 0 {
				b.WriteString(",")
			}
			b.WriteString(quoteCell(cell))
		}
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func csvRow(r transcript.Record) []string {
	return []string{
		r.ConversationID,
		r.SegmentID,
		r.Metadata.CustomerID,
		r.RawStartTime,
		r.RawEndTime,
		strconv.FormatFloat(r.Metrics.DurationMinutes, 'f', 2, 64),
		strconv.Itoa(r.Metrics.MessageCount),
		strconv.Itoa(r.UserMessages()),
		strconv.Itoa(r.AgentMessages()),
		r.Metadata.Language,
		r.Metadata.Country,
		r.Metadata.IPAddress,
	}
}

func quoteCell(cell string) string {
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// DefaultFilename names an export after the format and the current time.
func DefaultFilename(format Format, now time.Time) string {
	ts := now.UTC().Format("2006-01-02T15-04-05")
	if format == FormatCSV {
		return "conversations_export_" + ts + ".csv"
	}
	return "filtered_conversations_" + ts + ".json"
}

func Write(w io.Writer, format Format, records []transcript.Record) error {
	if format == FormatCSV {
		return WriteCSV(w, records)
	}
	return WriteJSON(w, records)
}
