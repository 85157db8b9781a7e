package transcript

// Merge rebuilds one record per conversation id from the flat message stream.
// Every input message is kept, duplicates included.
func Merge(messages []Message) []Record {
	var out []Record
	for _, g := range groupByConversation(messages) {
		if len(g.messages) == 0 {
			continue
		}
		sortChronological(g.messages)
		out = append(out, newRecord(len(out), g, "", g.messages))
	}
	return out
}
