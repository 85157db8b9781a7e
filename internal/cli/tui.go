package cli

import (
	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/chat_explorer/internal/tui"
)

const previewChars = 100

func newTuiCmd(root *rootOptions) *cobra.Command {
	vf := &viewFlags{}
	cmd := &cobra.Command{
		Use:   "tui <file>",
		Short: "Browse transcripts in a terminal UI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTui(cmd, root, vf, args[0])
		},
	}
	vf.register(cmd, true)
	return cmd
}

func runTui(cmd *cobra.Command, root *rootOptions, vf *viewFlags, path string) error {
	batch, err := loadBatch(root, path)
	if err != nil {
		return err
	}
	b, err := buildBrowser(root, vf, batch, 0)
	if err != nil {
		return err
	}
	opts := tui.Options{
		Browser:      b,
		Version:      version,
		Source:       path,
		PreviewChars: previewChars,
	}
	gap := root.settings.GapMinutes
	opts.DefaultGapMinutes = &gap

	marks, err := openMarks(root)
	if err != nil {
		root.component("read-state").Warn().Err(err).Msg("read markers unavailable")
	} else {
		opts.Marks = marks
	}
	return tui.Run(cmd.Context(), opts)
}
