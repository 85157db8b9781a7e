package cli

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/chat_explorer/internal/export"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	vf := &viewFlags{}
	var formatRaw string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export every record matching the filters as JSON or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatRaw)
			if err != nil {
				return err
			}
			batch, err := loadBatch(root, args[0])
			if err != nil {
				return err
			}
			b, err := buildBrowser(root, vf, batch, 0)
			if err != nil {
				return err
			}
			records := b.Visible()
			log := root.component("export")

			if outPath == "-" {
				return export.Write(cmd.OutOrStdout(), format, records)
			}
			if outPath == "" {
				outPath = export.DefaultFilename(format, time.Now())
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			w := bufio.NewWriter(f)
			if err := export.Write(w, format, records); err != nil {
				_ = f.Close()
				return err
			}
			if err := w.Flush(); err != nil {
				_ = f.Close()
				return fmt.Errorf("flush export: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close export file: %w", err)
			}
			log.Info().Str("file", outPath).Str("format", string(format)).Int("records", len(records)).Msg("export written")
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}
	vf.register(cmd, true)
	cmd.Flags().StringVar(&formatRaw, "format", "json", "Export format: json or csv")
	cmd.Flags().StringVar(&outPath, "out", "", "Output path, or - for stdout (default: timestamped file in the current directory)")
	return cmd
}
