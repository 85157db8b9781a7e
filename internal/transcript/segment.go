package transcript

import "fmt"

// Resegment rebuilds segments for every conversation from the flat message
// stream. Within a conversation, messages are sorted by time and a new segment
// starts whenever the idle time since the previous message exceeds gapMinutes.
// Segment ids restart at seg_1 for each conversation.
func Resegment(messages []Message, gapMinutes float64) []Record {
	var out []Record
	for _, g := range groupByConversation(messages) {
		if len(g.messages) == 0 {
			continue
		}
		sortChronological(g.messages)

		n := 0
		current := []Message{g.messages[0]}
		for _, msg := range g.messages[1:] {
			prev := current[len(current)-1]
			if exceedsGap(prev, msg, gapMinutes) {
				n++
				out = append(out, newRecord(len(out), g, segmentID(n), current))
				current = nil
			}
			current = append(current, msg)
		}
		n++
		out = append(out, newRecord(len(out), g, segmentID(n), current))
	}
	return out
}

func exceedsGap(prev, next Message, gapMinutes float64) bool {
	if !prev.HasTime() || !next.HasTime() {
		return false
	}
	return next.Time.Sub(prev.Time).Minutes() > gapMinutes
}

func segmentID(n int) string {
	return fmt.Sprintf("seg_%d", n)
}
