package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdfsift/pdfsift/internal/output"
	"github.com/pdfsift/pdfsift/internal/store"
)

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show store contents and health",
		Long: `Display information about the search store:
  - Store path and backend
  - Number of indexed documents
  - Number of indexed lines`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if store.DetectBackend(cfg.Store.Path) == "" {
		return fmt.Errorf("no store found at %s\nRun 'pdfsift index <path>' to create one", cfg.Store.Path)
	}

	gateway, err := store.Open(cfg.Store.Path, cfg.Store.Backend)
	if err != nil {
		return err
	}
	defer func() { _ = gateway.Close() }()

	if err := gateway.EnsureSchema(cmd.Context()); err != nil {
		return err
	}

	stats, err := gateway.Stats(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		payload := struct {
			Path      string `json:"path"`
			Backend   string `json:"backend"`
			Documents int    `json:"documents"`
			Lines     int    `json:"lines"`
		}{
			Path:      cfg.Store.Path,
			Backend:   cfg.Store.Backend,
			Documents: stats.Documents,
			Lines:     stats.Records,
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	out := output.New(cmd.OutOrStdout())
	out.Plainf("Store:     %s (%s)", cfg.Store.Path, cfg.Store.Backend)
	out.Plainf("Documents: %d", stats.Documents)
	out.Plainf("Lines:     %d", stats.Records)
	return nil
}
