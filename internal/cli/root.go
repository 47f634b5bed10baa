// Package cli implements the journal command line: the same save, list and
// export operations as the web shell, against the same configured store.
package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jo-hoe/gojournal/internal/core"
	"github.com/spf13/cobra"
)

const appName = "journal"

type options struct {
	configPath string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "A local journal",
		Long: `journal keeps free-text entries in a local store and exports the
full history as JSON or as a Word document.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// keep stdout clean for command output
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn})))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath(), "Path to the configuration file")

	rootCmd.AddCommand(newAddCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newExportCmd(opts))

	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath
	}
	return filepath.Join(".", "config.yaml")
}

// openJournal loads the configuration and the journal it points at.
func openJournal(ctx context.Context, opts *options) (*core.CoreService, error) {
	config, err := core.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	return core.NewCoreService(ctx, config)
}
