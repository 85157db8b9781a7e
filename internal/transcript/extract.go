package transcript

// ExtractMessages flattens the input into one message stream, each message
// tagged with its source conversation id and a copy of that source's
// metadata. Input order is preserved and nothing is deduplicated.
func ExtractMessages(raws []RawConversation) []Message {
	var out []Message
	for _, raw := range raws {
		out = appendMessages(out, raw)
	}
	return out
}

func appendMessages(out []Message, raw RawConversation) []Message {
	convID := raw.ConversationID.String()
	meta := raw.metadata()
	for _, rm := range raw.Messages {
		rawTime := rm.Time.String()
		out = append(out, Message{
			ConversationID: convID,
			From:           parseSender(rm.From.String()),
			AgentID:        rm.AgentID.String(),
			Time:           parseTime(rawTime),
			RawTime:        rawTime,
			Text:           string(rm.Text),
			Metadata:       meta,
		})
	}
	return out
}

// BaselineRecords converts the input as given into segment records. The loaded
// shape is trusted: message order is kept and start/end come from the input
// fields, falling back to the first/last message. Inputs without messages are
// skipped.
func BaselineRecords(raws []RawConversation) []Record {
	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		msgs := appendMessages(nil, raw)
		if len(msgs) == 0 {
			continue
		}
		rec := Record{
			Index:          len(records),
			ConversationID: raw.ConversationID.String(),
			SegmentID:      raw.SegmentID.String(),
			Messages:       msgs,
			RawStartTime:   raw.StartTime.String(),
			RawEndTime:     raw.EndTime.String(),
			Metadata:       raw.metadata(),
		}
		if rec.RawStartTime == "" {
			rec.RawStartTime = msgs[0].RawTime
		}
		if rec.RawEndTime == "" {
			rec.RawEndTime = msgs[len(msgs)-1].RawTime
		}
		rec.StartTime = parseTime(rec.RawStartTime)
		rec.EndTime = parseTime(rec.RawEndTime)
		rec.Metrics = ComputeMetrics(rec)
		records = append(records, rec)
	}
	return records
}
