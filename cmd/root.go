package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/voltdata/evagent/internal/config"
	"github.com/voltdata/evagent/internal/logging"
)

// cfg is populated by the root PersistentPreRunE before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "evagent",
	Short: "Query electric vehicle registrations through an LLM tool-calling agent",
	Long: `evagent maintains a local DuckDB table of electric vehicle registrations and
exposes it to an LLM through a small set of typed tools: schema inspection,
filtered row queries, currency conversion, and a document lookup. Commands are
available both directly (load, schema, query, tool) and through an interactive
chat session where the model decides which tool to call.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		loaded, err := config.LoadConfig()
		if err != nil {
			return err
		}

		cfg = loaded

		if err := logging.InitializeLogger(cfg.Logging); err != nil {
			logging.SetupFallbackLogger()
			logging.Warnf("falling back to default logger: %v", err)
		}

		return nil
	},
}

func Execute() error {
	ctx := context.Background()
	return rootCmd.ExecuteContext(ctx)
}
