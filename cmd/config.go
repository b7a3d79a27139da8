package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display the active configuration",
	Long: `Show the resolved configuration after defaults, .env files, and EVAGENT_
environment variables have been applied. The LLM API key is redacted.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Println("Active Configuration")
	fmt.Println("====================")

	fmt.Println("\nDatabase:")
	fmt.Printf("  Path: %s\n", cfg.Database.Path)
	fmt.Printf("  Table: %s\n", cfg.Database.Table)
	fmt.Printf("  Max Connections: %d\n", cfg.Database.MaxConnections)
	fmt.Printf("  Max Idle Connections: %d\n", cfg.Database.MaxIdleConns)
	fmt.Printf("  Connection Max Lifetime: %s\n", cfg.Database.ConnMaxLifetime)

	fmt.Println("\nQuery:")
	fmt.Printf("  Default Limit: %d\n", cfg.Query.DefaultLimit)
	fmt.Printf("  Max Rows: %d\n", cfg.Query.MaxRows)
	fmt.Printf("  Timeout: %s\n", cfg.Query.Timeout)
	fmt.Printf("  Max Retries: %d\n", cfg.Query.MaxRetries)

	fmt.Println("\nLLM:")
	fmt.Printf("  Model: %s\n", cfg.LLM.Model)
	fmt.Printf("  Max Tokens: %d\n", cfg.LLM.MaxTokens)
	fmt.Printf("  Max Rounds: %d\n", cfg.LLM.MaxRounds)
	fmt.Printf("  API Key: %s\n", redactKey(cfg.LLM.APIKey))

	fmt.Println("\nLogging:")
	fmt.Printf("  Level: %s\n", cfg.Logging.Level)
	fmt.Printf("  Format: %s\n", cfg.Logging.Format)
	fmt.Printf("  Output: %s\n", cfg.Logging.Output)

	return nil
}

func redactKey(key string) string {
	if key == "" {
		return "(not set)"
	}

	if len(key) <= 8 {
		return "********"
	}

	return key[:4] + "..." + key[len(key)-4:]
}
