// Package cmd provides the CLI commands for pdfsift.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pdfsift/pdfsift/internal/config"
	"github.com/pdfsift/pdfsift/internal/logging"
	"github.com/pdfsift/pdfsift/pkg/version"
)

// Persistent flags shared by every command.
var (
	debugMode   bool
	storePath   string
	storeKind   string
	loggingStop func()
)

// NewRootCmd creates the root command for the pdfsift CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdfsift <directory> <term>",
		Short: "Index PDF directories and search them for exact substrings",
		Long: `pdfsift scans a directory tree for PDF documents, extracts their text
into a local search store, and finds lines containing a search term.

Matching is case-sensitive and exact: no stemming, no tokenization.

The two-argument form indexes the directory (skipping documents from
earlier runs) and then searches it:

  pdfsift ./contracts "Termination Clause"

Use subcommands for the individual steps:

  pdfsift index ./contracts
  pdfsift search "Termination Clause"`,
		Version: version.Version,
		Args:    cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			if len(args) != 2 {
				return fmt.Errorf("expected <directory> and <term>, got %d argument(s)", len(args))
			}
			return runIndexThenSearch(cmd.Context(), cmd, args[0], args[1])
		},
	}

	cmd.SetVersionTemplate("pdfsift version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.pdfsift/logs/")
	cmd.PersistentFlags().StringVar(&storePath, "db", "", "Store path (default from config, pdf_search.db)")
	cmd.PersistentFlags().StringVar(&storeKind, "backend", "", "Store backend: sqlite or bleve")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging routes slog to the log file. Stdout stays reserved for
// command output.
func startLogging(_ *cobra.Command, _ []string) error {
	logCfg := logging.DefaultConfig()
	if debugMode {
		logCfg = logging.DebugConfig()
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		// Logging must never block the actual work.
		return nil
	}
	loggingStop = cleanup
	slog.SetDefault(logger)

	if debugMode {
		slog.Debug("debug logging enabled", slog.String("log_file", logging.DefaultLogPath()))
	}
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingStop != nil {
		loggingStop()
		loggingStop = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig merges file and environment configuration with the
// persistent CLI flags, which take final precedence.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, err
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}
	if storeKind != "" {
		cfg.Store.Backend = storeKind
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runIndexThenSearch implements the two-argument default flow: index the
// directory, then search it, in one process.
func runIndexThenSearch(ctx context.Context, cmd *cobra.Command, dir, term string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, err := runIndex(ctx, cmd, dir, cfg, indexOptions{}); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout())
	return runSearch(ctx, cmd, term, cfg, searchOptions{format: "text"})
}
