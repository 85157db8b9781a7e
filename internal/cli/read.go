package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/chat_explorer/internal/config"
)

func newReadCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Manage read markers",
	}
	cmd.AddCommand(
		newReadListCmd(root),
		newReadMarkCmd(root, true),
		newReadMarkCmd(root, false),
		newReadClearCmd(root),
	)
	return cmd
}

func newReadListCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations marked as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := config.NewReadStateStore(root.configPath)
			if err != nil {
				return err
			}
			state, err := store.Load()
			if err != nil {
				return err
			}
			ids := state.IDs()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"conversations": ids}, false)
			}
			for _, id := range ids {
				at, _ := state.ReadAt(id)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, at.Local().Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newReadMarkCmd(root *rootOptions, read bool) *cobra.Command {
	use, short := "mark", "Mark conversations as read"
	if !read {
		use, short = "unmark", "Mark conversations as unread"
	}
	return &cobra.Command{
		Use:   use + " <conversation-id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.NewReadStateStore(root.configPath)
			if err != nil {
				return err
			}
			changed := 0
			err = store.Update(func(s *config.ReadState) error {
				now := time.Now()
				for _, id := range args {
					if read && s.MarkRead(id, now) {
						changed++
					}
					if !read && s.MarkUnread(id) {
						changed++
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			root.component("read-state").Info().Str("action", use).Int("changed", changed).Msg("read markers updated")
			return nil
		},
	}
}

func newReadClearCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget every read marker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := config.NewReadStateStore(root.configPath)
			if err != nil {
				return err
			}
			removed := 0
			if err := store.Update(func(s *config.ReadState) error {
				removed = s.Clear()
				return nil
			}); err != nil {
				return err
			}
			root.component("read-state").Info().Int("removed", removed).Msg("read markers cleared")
			return nil
		},
	}
}
