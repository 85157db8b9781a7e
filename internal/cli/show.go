package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/chat_explorer/internal/transcript"
	"github.com/baaaaaaaka/chat_explorer/internal/view"
)

func newShowCmd(root *rootOptions) *cobra.Command {
	vf := &viewFlags{}
	var segmentID string
	var noMark bool

	cmd := &cobra.Command{
		Use:   "show <file> <conversation-id>",
		Short: "Print the transcript of a conversation or one of its segments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := loadBatch(root, args[0])
			if err != nil {
				return err
			}
			ctrl, err := buildController(root, vf, batch)
			if err != nil {
				return err
			}
			records := findRecords(ctrl.Active(), args[1], segmentID)
			if len(records) == 0 {
				if segmentID != "" {
					return fmt.Errorf("conversation %q segment %q not found", args[1], segmentID)
				}
				return fmt.Errorf("conversation %q not found", args[1])
			}

			segmentView := ctrl.Mode() == view.SegmentView
			parts := make([]string, 0, len(records))
			for _, r := range records {
				parts = append(parts, transcript.FormatRecord(r, segmentView, 0))
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, "\n"+strings.Repeat("-", 40)+"\n\n"))

			if noMark {
				return nil
			}
			marks, err := openMarks(root)
			if err != nil {
				return err
			}
			if err := marks.SetRead(records[0].ConversationID, true); err != nil {
				return err
			}
			root.component("read-state").Debug().Str("conversation", records[0].ConversationID).Msg("marked read")
			return nil
		},
	}
	vf.register(cmd, false)
	cmd.Flags().StringVar(&segmentID, "segment", "", "Only the segment with this id")
	cmd.Flags().BoolVar(&noMark, "no-mark", false, "Do not mark the conversation as read")
	return cmd
}

func findRecords(records []transcript.Record, conversationID, segmentID string) []transcript.Record {
	var out []transcript.Record
	for _, r := range records {
		if r.ConversationID != conversationID {
			continue
		}
		if segmentID != "" && r.SegmentID != segmentID {
			continue
		}
		out = append(out, r)
	}
	return out
}
