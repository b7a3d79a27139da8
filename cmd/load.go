package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voltdata/evagent/internal/errors"
	"github.com/voltdata/evagent/internal/logging"
	"github.com/voltdata/evagent/internal/storage"
)

var loadCmd = &cobra.Command{
	Use:   "load <csv-file>",
	Short: "Create the vehicle table and import registrations from a CSV file",
	Long: `Create the ELECTRICVEHICLES table if it does not exist and bulk-load rows
from a Washington State EV registration CSV export. Numeric columns that fail
to parse are stored as NULL rather than aborting the import.

Examples:
  evagent load EV.csv
  evagent load ~/data/Electric_Vehicle_Population_Data.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := logging.GetLogger()

	csvPath := args[0]
	if _, err := os.Stat(csvPath); err != nil {
		return errors.Wrapf(err, errors.ErrTypeConfig, "cannot read CSV file %s", csvPath)
	}

	store, err := storage.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	logger.Infof("Importing %s into %s", csvPath, cfg.Database.Table)

	imported, err := store.ImportCSV(ctx, csvPath)
	if err != nil {
		return err
	}

	total, err := store.RowCount(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d rows (%d total in %s)\n", imported, total, cfg.Database.Table)

	return nil
}
