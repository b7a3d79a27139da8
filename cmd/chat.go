package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voltdata/evagent/internal/agent"
	"github.com/voltdata/evagent/internal/logging"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session with the vehicle data agent",
	Long: `Start a REPL backed by an Anthropic model with access to the vehicle table,
currency converter, and document lookup. The model decides which tools to call
for each question. Type /reset to clear the conversation and /exit to quit.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := logging.GetLogger()

	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	chatAgent, err := agent.New(cfg.LLM, rt.catalog.Table(), rt.dispatcher, logger)
	if err != nil {
		return err
	}

	fmt.Println("evagent chat. Ask about electric vehicle registrations, currency")
	fmt.Println("conversions, or EV background. /reset clears history, /exit quits.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/exit", "/quit":
			return nil
		case "/reset":
			chatAgent.Reset()
			fmt.Println("Conversation cleared.")

			continue
		}

		answer, err := chatAgent.Ask(ctx, line)
		if err != nil {
			logger.WithError(err).Error("chat turn failed")
			fmt.Fprintf(os.Stderr, "error: %v\n", err)

			continue
		}

		fmt.Println(answer)
		fmt.Println()
	}

	return scanner.Err()
}
