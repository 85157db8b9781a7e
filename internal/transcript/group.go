package transcript

import "sort"

type messageGroup struct {
	conversationID string
	metadata       Metadata
	messages       []Message
}

// groupByConversation buckets messages by conversation id in first-seen order.
// The metadata of the first message of each id wins.
func groupByConversation(messages []Message) []*messageGroup {
	index := map[string]*messageGroup{}
	var groups []*messageGroup
	for _, msg := range messages {
		g, ok := index[msg.ConversationID]
		if !ok {
			g = &messageGroup{conversationID: msg.ConversationID, metadata: msg.Metadata}
			index[msg.ConversationID] = g
			groups = append(groups, g)
		}
		g.messages = append(g.messages, msg)
	}
	return groups
}

// sortChronological orders messages ascending by time. Ties keep input order;
// messages without a usable time go last.
func sortChronological(messages []Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		a, b := messages[i], messages[j]
		switch {
		case a.HasTime() && b.HasTime():
			return a.Time.Before(b.Time)
		case a.HasTime():
			return true
		default:
			return false
		}
	})
}

func newRecord(index int, g *messageGroup, segmentID string, messages []Message) Record {
	first, last := messages[0], messages[len(messages)-1]
	rec := Record{
		Index:          index,
		ConversationID: g.conversationID,
		SegmentID:      segmentID,
		Messages:       messages,
		StartTime:      first.Time,
		EndTime:        last.Time,
		RawStartTime:   first.RawTime,
		RawEndTime:     last.RawTime,
		Metadata:       g.metadata,
	}
	rec.Metrics = ComputeMetrics(rec)
	return rec
}
