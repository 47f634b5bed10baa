package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := openJournal(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer func() { _ = journal.Close() }()

			out := cmd.OutOrStdout()
			entries := journal.Entries()
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(out, "No journal entries yet.")
				return nil
			}
			for _, entry := range entries {
				_, _ = fmt.Fprintf(out, "%s\n%s\n\n", entry.Date, entry.Text)
			}
			return nil
		},
	}
}
