package cli

import (
	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/chat_explorer/internal/transcript"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the transcript input format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd.OutOrStdout(), transcript.InputSchema(), true)
		},
	}
}
