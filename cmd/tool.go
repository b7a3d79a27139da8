package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voltdata/evagent/internal/errors"
	"github.com/voltdata/evagent/internal/tools"
)

var toolCmd = &cobra.Command{
	Use:   "tool <name> [key=value ...]",
	Short: "Invoke a single agent tool directly",
	Long: `Invoke one of the agent's tools without going through the model. Arguments
are key=value pairs matching the tool's schema. Run without arguments to list
the available tools.

Examples:
  evagent tool get_table_schema
  evagent tool query_table filters="MAKE = NISSAN" limit=3
  evagent tool convert_currency amount=42000 from=USD to=EUR
  evagent tool rag_lookup query="what is CAFV eligibility"`,
	RunE: runTool,
}

func init() {
	rootCmd.AddCommand(toolCmd)
}

func runTool(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	if len(args) == 0 {
		printToolSpecs(rt.catalog.Table())
		return nil
	}

	toolArgs, err := parsePairs(args[1:])
	if err != nil {
		return err
	}

	outcome := rt.dispatcher.Dispatch(ctx, tools.Invocation{
		Name: args[0],
		Args: toolArgs,
	})
	if !outcome.Succeeded() {
		return outcome.Err
	}

	fmt.Println(outcome.Content)

	return nil
}

// parsePairs turns ["limit=3", "from=USD"] into a string map.
func parsePairs(pairs []string) (map[string]string, error) {
	args := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, errors.Newf(errors.ErrTypeInvalidFilter,
				"argument %q is not in key=value form", pair)
		}

		args[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return args, nil
}

func printToolSpecs(table string) {
	for _, spec := range tools.Specs(table) {
		fmt.Printf("%s\n  %s\n", spec.Name, spec.Description)

		for _, arg := range spec.Args {
			required := ""
			if arg.Required {
				required = " (required)"
			}

			fmt.Printf("    %s%s: %s\n", arg.Name, required, arg.Description)
		}

		fmt.Println()
	}
}
