package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/chat_explorer/internal/export"
	"github.com/baaaaaaaka/chat_explorer/internal/transcript"
	"github.com/baaaaaaaka/chat_explorer/internal/view"
)

type listOptions struct {
	asJSON   bool
	pretty   bool
	pages    int
	pageSize int
}

func newListCmd(root *rootOptions) *cobra.Command {
	vf := &viewFlags{}
	opts := listOptions{}

	cmd := &cobra.Command{
		Use:   "list <file>",
		Short: "Print the filtered, sorted record list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, root, vf, args[0], opts)
		},
	}
	vf.register(cmd, true)
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON")
	cmd.Flags().IntVar(&opts.pages, "pages", 1, "Number of pages to show")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Records per page (default from config)")
	return cmd
}

type listPayload struct {
	Title    string          `json:"title"`
	Subtitle string          `json:"subtitle"`
	View     string          `json:"view"`
	Sort     string          `json:"sort"`
	Shown    int             `json:"shown"`
	Total    int             `json:"total"`
	More     bool            `json:"more"`
	Records  []export.Record `json:"records"`
}

func runList(cmd *cobra.Command, root *rootOptions, vf *viewFlags, path string, opts listOptions) error {
	batch, err := loadBatch(root, path)
	if err != nil {
		return err
	}
	b, err := buildBrowser(root, vf, batch, opts.pageSize)
	if err != nil {
		return err
	}
	for i := 1; i < opts.pages; i++ {
		if !b.LoadMore() {
			break
		}
	}
	window := b.Window()
	title, subtitle := b.Header()
	out := cmd.OutOrStdout()

	if opts.asJSON {
		payload := listPayload{
			Title:    title,
			Subtitle: subtitle,
			View:     b.Controller().Mode().String(),
			Sort:     string(b.SortKey()),
			Shown:    window.Shown,
			Total:    window.Total,
			More:     window.More,
			Records:  export.ToRecords(window.Records),
		}
		return writeJSON(out, payload, opts.pretty)
	}

	marks, err := openMarks(root)
	if err != nil {
		root.component("read-state").Warn().Err(err).Msg("read markers unavailable")
		marks = nil
	}
	_, _ = fmt.Fprintf(out, "%s: %s\n\n", title, subtitle)
	if err := writeTable(out, window.Records, b.Controller().Mode(), marks); err != nil {
		return err
	}
	if window.More {
		_, _ = fmt.Fprintf(out, "\nShowing %d of %d (use --pages %d for more)\n", window.Shown, window.Total, opts.pages+1)
	}
	return nil
}

func writeTable(w io.Writer, records []transcript.Record, mode view.Mode, marks *storeMarks) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "\tSTARTED\tCONVERSATION\tRECORD\tCUSTOMER\tMSGS\tDURATION\tAVG RESPONSE")
	for _, r := range records {
		marker := "*"
		if marks != nil && marks.IsRead(r.ConversationID) {
			marker = ""
		}
		avg := "-"
		if r.Metrics.AverageResponseMinutes != nil {
			avg = transcript.FormatDuration(*r.Metrics.AverageResponseMinutes)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			marker,
			transcript.FormatDate(r.StartTime),
			transcript.FormatClock(r.StartTime),
			r.ConversationID,
			r.Label(mode == view.SegmentView),
			orDash(r.Metadata.CustomerID),
			r.Metrics.MessageCount,
			transcript.FormatDuration(r.Metrics.DurationMinutes),
			avg,
		)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, payload any, pretty bool) error {
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(payload, "", "  ")
	} else {
		out, err = json.Marshal(payload)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
