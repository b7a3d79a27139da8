package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [table]",
	Short: "Show the live schema of the vehicle table",
	Long: `Reflect the named table from the database and print its columns in
declaration order. Defaults to the configured vehicle table.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	table := rt.catalog.Table()
	if len(args) == 1 {
		table = args[0]
	}

	snap, err := rt.catalog.Get(ctx, table)
	if err != nil {
		return err
	}

	fmt.Println(snap.Describe())

	return nil
}
