package cli

import (
	"fmt"

	"github.com/jo-hoe/gojournal/internal/backend/export"
	"github.com/spf13/cobra"
)

const (
	formatJSON     = "json"
	formatDocument = "docx"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		format string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all entries as JSON or as a Word document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatJSON && format != formatDocument {
				return fmt.Errorf("unknown format %q, use %s or %s", format, formatJSON, formatDocument)
			}

			journal, err := openJournal(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer func() { _ = journal.Close() }()

			var artifact *export.Artifact
			if format == formatJSON {
				artifact, err = journal.ExportJSON()
			} else {
				artifact, err = journal.ExportDocument()
			}
			if err != nil {
				return err
			}

			path, err := export.WriteFile(outDir, artifact)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(journal.Entries()), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "Export format: json or docx")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory to write the export to")
	return cmd
}
