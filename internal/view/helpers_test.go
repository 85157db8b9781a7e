package view

import (
	"testing"
	"time"

	"github.com/baaaaaaaka/chat_explorer/internal/transcript"
)

var day = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func rawMsg(from string, offset time.Duration, text string) transcript.RawMessage {
	return transcript.RawMessage{
		From: transcript.FlexString(from),
		Time: transcript.FlexString(day.Add(offset).Format(time.RFC3339)),
		Text: transcript.FlexString(text),
	}
}

// sampleBatch has conversation c1 split over two input segments and a single
// segment conversation c2 a day later.
func sampleBatch(t *testing.T) transcript.Batch {
	t.Helper()
	raws := []transcript.RawConversation{
		{
			ConversationID: "c1", SegmentID: "1", CustomerID: "alice", Language: "en", Country: "DE",
			StartTime: transcript.FlexString(day.Format(time.RFC3339)),
			EndTime:   transcript.FlexString(day.Add(2 * time.Minute).Format(time.RFC3339)),
			Messages: []transcript.RawMessage{
				rawMsg("user", 0, "my order is late"),
				rawMsg("agent", 2*time.Minute, "let me check"),
			},
		},
		{
			ConversationID: "c1", SegmentID: "2", CustomerID: "alice", Language: "en", Country: "DE",
			Messages: []transcript.RawMessage{
				rawMsg("user", 90*time.Minute, "any news?"),
				rawMsg("agent", 95*time.Minute, "shipped today"),
				rawMsg("user", 96*time.Minute, "thanks"),
			},
		},
		{
			ConversationID: "c2", CustomerID: "bob", Language: "fr", Country: "unknown",
			Messages: []transcript.RawMessage{
				rawMsg("user", 24*time.Hour, "bonjour"),
			},
		},
	}
	return transcript.NewBatch(raws)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
