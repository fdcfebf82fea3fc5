package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdfsift/pdfsift/internal/config"
	sifterr "github.com/pdfsift/pdfsift/internal/errors"
	"github.com/pdfsift/pdfsift/internal/extract"
	"github.com/pdfsift/pdfsift/internal/index"
	"github.com/pdfsift/pdfsift/internal/output"
	"github.com/pdfsift/pdfsift/internal/scanner"
	"github.com/pdfsift/pdfsift/internal/store"
)

// indexOptions holds CLI flags for index.
type indexOptions struct {
	workers        int
	suffix         string
	followSymlinks bool
}

func newIndexCmd() *cobra.Command {
	var opts indexOptions

	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Index a directory of PDF documents",
		Long: `Index every PDF under a directory into the local search store.

Documents already present in the store are skipped, so re-running after
adding files only processes the new ones. Documents that fail extraction
are logged, skipped whole, and retried on the next run.

Examples:
  pdfsift index ./contracts
  pdfsift index ./contracts --workers 12
  pdfsift index . --db archive.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Ctrl+C cancels the run; received records are still flushed.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if opts.workers > 0 {
				cfg.Index.Workers = opts.workers
			}
			if opts.suffix != "" {
				cfg.Index.Suffix = opts.suffix
			}
			if opts.followSymlinks {
				cfg.Index.FollowSymlinks = true
			}

			_, err = runIndex(ctx, cmd, path, cfg, opts)
			return err
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Number of extraction workers (default from config)")
	cmd.Flags().StringVar(&opts.suffix, "suffix", "", "Document filename suffix (default \".pdf\")")
	cmd.Flags().BoolVar(&opts.followSymlinks, "follow-symlinks", false, "Follow symbolic links during the scan")

	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, path string, cfg *config.Config, _ indexOptions) (*index.RunnerResult, error) {
	out := output.New(cmd.OutOrStdout())

	lock, err := index.AcquireRunLock(cfg.Store.Path)
	if err != nil {
		out.Error(sifterr.FormatForCLI(err))
		return nil, err
	}
	defer func() { _ = lock.Release() }()

	gateway, err := store.Open(cfg.Store.Path, cfg.Store.Backend)
	if err != nil {
		out.Error(sifterr.FormatForCLI(err))
		return nil, err
	}
	defer func() { _ = gateway.Close() }()

	runner, err := index.NewRunner(index.RunnerDependencies{
		Scanner: scanner.New(),
		Opener:  extract.NewPDFOpener(),
		Gateway: gateway,
		Output:  out,
	})
	if err != nil {
		return nil, err
	}

	result, err := runner.Run(ctx, index.RunnerConfig{
		RootDir:        path,
		Suffix:         cfg.Index.Suffix,
		Workers:        cfg.Index.Workers,
		QueueSize:      cfg.Index.QueueSize,
		BatchSize:      cfg.Index.BatchSize,
		FollowSymlinks: cfg.Index.FollowSymlinks,
	})
	if err != nil {
		if result != nil {
			printIndexSummary(out, result)
		}
		return result, err
	}

	printIndexSummary(out, result)
	return result, nil
}

func printIndexSummary(out *output.Writer, result *index.RunnerResult) {
	if result.ScanErr != nil {
		out.Warningf("Scan incomplete: %v", result.ScanErr)
	}

	out.Plainf("Number of PDFs scanned: %d", result.Found)
	if result.AlreadyIndexed > 0 {
		out.Plainf("Already indexed, skipped: %d", result.AlreadyIndexed)
	}
	if result.Failed > 0 {
		out.Warningf("Failed to extract %d document(s), see log for details", result.Failed)
	}
	if result.Dropped > 0 {
		out.Warningf("Dropped %d record(s) in failed commits", result.Dropped)
	}

	if result.Indexed > 0 {
		out.Successf("Indexed %d document(s), %d line(s) in %s",
			result.Indexed, result.Records, result.Duration.Round(time.Millisecond))
	} else {
		out.Plain("Nothing new to index")
	}
}
