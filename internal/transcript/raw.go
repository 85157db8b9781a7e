package transcript

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
)

// RawConversation is one conversation-like object of the input file.
type RawConversation struct {
	ConversationID FlexString   `json:"conversation_id" jsonschema:"description=Identifier of the original conversation"`
	SegmentID      FlexString   `json:"segment_id,omitempty" jsonschema:"description=Identifier of this segment within the conversation"`
	CustomerID     FlexString   `json:"customer_id"`
	StartTime      FlexString   `json:"start_time,omitempty" jsonschema:"description=ISO-8601 timestamp"`
	EndTime        FlexString   `json:"end_time,omitempty" jsonschema:"description=ISO-8601 timestamp"`
	Language       FlexString   `json:"language,omitempty"`
	Country        FlexString   `json:"country,omitempty"`
	IPAddress      FlexString   `json:"ip_address,omitempty"`
	Messages       []RawMessage `json:"messages,omitempty"`
}

type RawMessage struct {
	From    FlexString `json:"from" jsonschema:"enum=user,enum=agent"`
	AgentID FlexString `json:"agent_id,omitempty"`
	Time    FlexString `json:"time" jsonschema:"description=ISO-8601 timestamp"`
	Text    FlexString `json:"text,omitempty"`
}

func (c RawConversation) metadata() Metadata {
	return Metadata{
		CustomerID: c.CustomerID.String(),
		Language:   c.Language.String(),
		Country:    c.Country.String(),
		IPAddress:  c.IPAddress.String(),
	}
}

// FlexString accepts JSON strings, numbers, booleans and null. Exports often
// carry numeric segment ids; null and missing both decode to "".
type FlexString string

func (s FlexString) String() string { return strings.TrimSpace(string(s)) }

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*s = FlexString(asString)
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err == nil {
		*s = FlexString(asNumber.String())
		return nil
	}
	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		*s = FlexString(strconv.FormatBool(asBool))
		return nil
	}
	// Objects and arrays are not meaningful here; treat as absent.
	*s = ""
	return nil
}

func (FlexString) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "number"},
			{Type: "null"},
		},
	}
}
