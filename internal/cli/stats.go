package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/chat_explorer/internal/transcript"
	"github.com/baaaaaaaka/chat_explorer/internal/view"
)

type statsPayload struct {
	View    string                `json:"view"`
	Total   int                   `json:"total"`
	Stats   view.Stats            `json:"stats"`
	Options view.FilterOptions    `json:"options"`
	Report  transcript.LoadReport `json:"load"`
}

func newStatsCmd(root *rootOptions) *cobra.Command {
	vf := &viewFlags{}
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Print quick stats and the available filter values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := loadBatch(root, args[0])
			if err != nil {
				return err
			}
			b, err := buildBrowser(root, vf, batch, 0)
			if err != nil {
				return err
			}
			payload := statsPayload{
				View:    b.Controller().Mode().String(),
				Total:   len(b.Controller().Active()),
				Stats:   b.Stats(),
				Options: b.Options(),
				Report:  batch.Report,
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), payload, true)
			}
			return writeStats(cmd, payload)
		},
	}
	vf.register(cmd, true)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func writeStats(cmd *cobra.Command, p statsPayload) error {
	var b strings.Builder
	fmt.Fprintf(&b, "View:           %s (%d total)\n", p.View, p.Total)
	fmt.Fprintf(&b, "Segments:       %d\n", p.Stats.Segments)
	fmt.Fprintf(&b, "Conversations:  %d\n", p.Stats.Conversations)
	fmt.Fprintf(&b, "Customers:      %d\n", p.Stats.Customers)
	fmt.Fprintf(&b, "Messages:       %d\n", p.Stats.Messages)
	b.WriteString("\n")

	langs := make([]string, 0, len(p.Options.Languages))
	for _, l := range p.Options.Languages {
		langs = append(langs, fmt.Sprintf("%s (%s)", l.Code, l.Name))
	}
	fmt.Fprintf(&b, "Languages:      %s\n", orDash(strings.Join(langs, ", ")))
	fmt.Fprintf(&b, "Countries:      %s\n", orDash(strings.Join(p.Options.Countries, ", ")))
	fmt.Fprintf(&b, "Dates:          %s to %s\n", dateOrNA(p.Options.DateFrom), dateOrNA(p.Options.DateTo))
	_, err := fmt.Fprint(cmd.OutOrStdout(), b.String())
	return err
}

func dateOrNA(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("2006-01-02")
}
