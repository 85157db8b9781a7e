package transcript

import (
	"strconv"
	"time"
)

type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// parseSender keeps the value as written; only the exact strings "user" and
// "agent" take part in response-time and sender counts.
func parseSender(raw string) Sender {
	return Sender(raw)
}

// Metadata is attached per original conversation. The first occurrence of a
// conversation id is canonical when segments disagree.
type Metadata struct {
	CustomerID string
	Language   string
	Country    string
	IPAddress  string
}

// Message is immutable once extracted. Time is zero when the input had no
// parseable timestamp; RawTime keeps the original string.
type Message struct {
	ConversationID string
	From           Sender
	AgentID        string
	Time           time.Time
	RawTime        string
	Text           string
	Metadata       Metadata
}

func (m Message) HasTime() bool { return !m.Time.IsZero() }

func (m Message) IsUser() bool { return m.From == SenderUser }

func (m Message) IsAgent() bool { return m.From == SenderAgent }

// Record is either a segment or a merged conversation. SegmentID is empty in
// conversation view.
type Record struct {
	Index          int
	ConversationID string
	SegmentID      string
	Messages       []Message
	StartTime      time.Time
	EndTime        time.Time
	RawStartTime   string
	RawEndTime     string
	Metadata       Metadata
	Metrics        Metrics
}

type Metrics struct {
	DurationMinutes        float64
	MessageCount           int
	AverageResponseMinutes *float64
}

func (r Record) UserMessages() int {
	n := 0
	for _, msg := range r.Messages {
		if msg.IsUser() {
			n++
		}
	}
	return n
}

func (r Record) AgentMessages() int {
	n := 0
	for _, msg := range r.Messages {
		if msg.IsAgent() {
			n++
		}
	}
	return n
}

// Label mirrors the card title: segments fall back to their position when the
// input carried no segment id.
func (r Record) Label(segmentView bool) string {
	if !segmentView {
		return "Conversation"
	}
	if r.SegmentID != "" {
		return "Segment #" + r.SegmentID
	}
	return "Segment #" + strconv.Itoa(r.Index+1)
}
