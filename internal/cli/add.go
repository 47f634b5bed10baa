package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jo-hoe/gojournal/internal/core"
	"github.com/spf13/cobra"
)

func newAddCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add [text...]",
		Short: "Save a new journal entry",
		Long: `Save a new journal entry. The arguments are joined with spaces;
without arguments the entry is read from standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := entryText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if err := core.ValidateEntryText(text); err != nil {
				return err
			}

			journal, err := openJournal(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer func() { _ = journal.Close() }()

			entry, err := journal.SaveEntry(cmd.Context(), text)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved entry %d (%s)\n", entry.ID, entry.Date)
			return nil
		},
	}
}

func entryText(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read entry from stdin: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}
