package transcript

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const unknownAgent = "unknown"

// SenderLabel renders the message author, with a short agent id when known.
func SenderLabel(msg Message) string {
	if !msg.IsAgent() {
		return "User"
	}
	agentID := strings.TrimSpace(msg.AgentID)
	if agentID == "" || agentID == unknownAgent {
		return "Agent"
	}
	return "Agent (" + truncateRunesPlain(agentID, 8) + ")"
}

func FormatMessages(messages []Message, maxCharsPerMessage int) string {
	if len(messages) == 0 {
		return "No messages"
	}
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(SenderLabel(msg))
		b.WriteString(" [")
		b.WriteString(FormatClock(msg.Time))
		b.WriteString("]:")
		b.WriteString("\n")
		text := strings.TrimSpace(msg.Text)
		if maxCharsPerMessage > 0 {
			text = truncateRunes(text, maxCharsPerMessage)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// FormatRecord renders a record header and its transcript. maxCharsPerMessage
// truncates each message when positive.
func FormatRecord(r Record, segmentView bool, maxCharsPerMessage int) string {
	var b strings.Builder
	b.WriteString(r.Label(segmentView))
	b.WriteString("\n")
	b.WriteString("Conversation: ")
	b.WriteString(r.ConversationID)
	b.WriteString("\n")
	if r.Metadata.CustomerID != "" {
		b.WriteString("Customer: ")
		b.WriteString(r.Metadata.CustomerID)
		b.WriteString("\n")
	}
	b.WriteString("Started: ")
	b.WriteString(FormatDate(r.StartTime))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Duration: %s  Messages: %d (user %d, agent %d)\n",
		FormatDuration(r.Metrics.DurationMinutes), r.Metrics.MessageCount, r.UserMessages(), r.AgentMessages()))
	if avg := r.Metrics.AverageResponseMinutes; avg != nil {
		b.WriteString("Avg response: ")
		b.WriteString(FormatDuration(*avg))
		b.WriteString("\n")
	}
	if tags := metadataTags(r.Metadata); tags != "" {
		b.WriteString("Tags: ")
		b.WriteString(tags)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(FormatMessages(r.Messages, maxCharsPerMessage))
	b.WriteString("\n")
	return b.String()
}

func metadataTags(meta Metadata) string {
	var tags []string
	if meta.Language != "" {
		tags = append(tags, strings.ToUpper(meta.Language))
	}
	if meta.Country != "" && meta.Country != "unknown" {
		tags = append(tags, meta.Country)
	}
	if meta.IPAddress != "" {
		tags = append(tags, meta.IPAddress)
	}
	return strings.Join(tags, " ")
}

// FormatDuration renders minutes as "< 1m", "12m" or "2h 5m".
func FormatDuration(minutes float64) string {
	if minutes < 1 {
		return "< 1m"
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm", int(math.Round(minutes)))
	}
	hours := int(math.Floor(minutes / 60))
	mins := int(math.Round(math.Mod(minutes, 60)))
	return fmt.Sprintf("%dh %dm", hours, mins)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("Jan 2, 2006")
}

func FormatClock(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("15:04")
}

func truncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "…"
}

func truncateRunesPlain(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
