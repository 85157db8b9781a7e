package transcript

import "github.com/invopop/jsonschema"

// InputSchema describes the accepted input file: one conversation object or an
// array of them.
func InputSchema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	item := reflector.Reflect(&RawConversation{})
	ref := &jsonschema.Schema{Ref: item.Ref}

	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Chat transcript export",
		Description: "A support conversation segment, or an array of them",
		OneOf: []*jsonschema.Schema{
			ref,
			{Type: "array", Items: ref},
		},
		Definitions: item.Definitions,
	}
}
