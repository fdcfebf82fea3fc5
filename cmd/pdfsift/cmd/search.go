package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdfsift/pdfsift/internal/config"
	sifterr "github.com/pdfsift/pdfsift/internal/errors"
	"github.com/pdfsift/pdfsift/internal/output"
	"github.com/pdfsift/pdfsift/internal/search"
	"github.com/pdfsift/pdfsift/internal/store"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit  int
	format string // "text", "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search indexed documents for a substring",
		Long: `Search every indexed line for a case-sensitive substring.

Matches are printed in stable order: by file path, then page number,
then line number.

Examples:
  pdfsift search "Termination Clause"
  pdfsift search invoice --limit 20
  pdfsift search "Net 30" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.Join(args, " ")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if opts.limit > 0 {
				cfg.Search.MaxResults = opts.limit
			}

			return runSearch(cmd.Context(), cmd, term, cfg, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of matches (default unlimited)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, term string, cfg *config.Config, opts searchOptions) error {
	out := output.New(cmd.OutOrStdout())

	gateway, err := store.Open(cfg.Store.Path, cfg.Store.Backend)
	if err != nil {
		out.Error(sifterr.FormatForCLI(err))
		return err
	}
	defer func() { _ = gateway.Close() }()

	svc, err := search.NewService(gateway, search.Options{
		MaxResults: cfg.Search.MaxResults,
		CacheSize:  cfg.Search.CacheSize,
	})
	if err != nil {
		return err
	}

	matches, err := svc.Search(ctx, term)
	if err != nil {
		out.Error(sifterr.FormatForCLI(err))
		return err
	}

	switch opts.format {
	case "json":
		return printMatchesJSON(cmd, term, matches)
	case "text", "":
		printMatchesText(out, term, matches)
		return nil
	default:
		return fmt.Errorf("unknown format %q (expected text or json)", opts.format)
	}
}

func printMatchesText(out *output.Writer, term string, matches []store.Match) {
	if len(matches) == 0 {
		out.Plainf("No matches for %q", term)
		return
	}

	for _, m := range matches {
		out.Plainf("%s | Page %d, Line %d: %s", m.FilePath, m.Page, m.Line, m.Content)
	}
	out.Newline()
	out.Plainf("%d match(es) for %q", len(matches), term)
}

func printMatchesJSON(cmd *cobra.Command, term string, matches []store.Match) error {
	payload := struct {
		Term    string        `json:"term"`
		Count   int           `json:"count"`
		Matches []store.Match `json:"matches"`
	}{Term: term, Count: len(matches), Matches: matches}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
