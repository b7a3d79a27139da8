package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/voltdata/evagent/internal/tools"
)

var (
	queryColumns string
	queryFilters string
	queryLimit   int
	queryOrderBy string
	queryDesc    bool
	queryTable   string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a filtered query against the vehicle table",
	Long: `Query the vehicle table through the same validated path the agent uses.
Filters are semicolon-separated clauses of the form "COLUMN = value" for exact
match or "COLUMN ~ value" for substring match. Results print as a markdown
table.

Examples:
  evagent query --filters "MAKE = TESLA" --limit 10
  evagent query --columns "MAKE,MODEL,ELECTRICRANGE" --filters "CITY ~ seattle"
  evagent query --filters "EVTYPE ~ plug-in" --order-by MODELYEAR --desc`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryColumns, "columns", "", "Comma-separated columns to return (default all)")
	queryCmd.Flags().StringVar(&queryFilters, "filters", "", "Semicolon-separated filter clauses")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Maximum number of rows (0 uses the configured default)")
	queryCmd.Flags().StringVar(&queryOrderBy, "order-by", "", "Column to sort by")
	queryCmd.Flags().BoolVar(&queryDesc, "desc", false, "Sort descending")
	queryCmd.Flags().StringVar(&queryTable, "table", "", "Table to query (default the configured vehicle table)")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	args := map[string]string{}
	if queryTable != "" {
		args["table"] = queryTable
	}

	if queryColumns != "" {
		args["columns"] = queryColumns
	}

	if queryFilters != "" {
		args["filters"] = queryFilters
	}

	if queryLimit > 0 {
		args["limit"] = strconv.Itoa(queryLimit)
	}

	if queryOrderBy != "" {
		orderBy := queryOrderBy
		if queryDesc {
			orderBy += " desc"
		}

		args["order_by"] = orderBy
	}

	outcome := rt.dispatcher.Dispatch(ctx, tools.Invocation{
		Name: tools.ToolQueryTable,
		Args: args,
	})
	if !outcome.Succeeded() {
		return outcome.Err
	}

	fmt.Println(outcome.Content)

	return nil
}
