// Package agent runs the Anthropic tool-calling loop that connects the chat
// surface to the tool dispatcher. The model decides which tool to call; this
// package only shuttles structured invocations and results.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/voltdata/evagent/internal/config"
	"github.com/voltdata/evagent/internal/errors"
	"github.com/voltdata/evagent/internal/logging"
	"github.com/voltdata/evagent/internal/tools"
)

// Dispatcher executes one tool invocation.
type Dispatcher interface {
	Dispatch(ctx context.Context, inv tools.Invocation) tools.Outcome
}

// Agent holds one conversation with the model. History lives for the REPL
// session only; nothing is persisted.
type Agent struct {
	client     anthropic.Client
	model      anthropic.Model
	maxTokens  int64
	maxRounds  int
	system     string
	toolParams []anthropic.ToolUnionParam
	dispatcher Dispatcher
	log        *logging.Logger
	history    []anthropic.MessageParam
}

// New creates an agent bound to the dispatcher's tool set.
func New(cfg config.LLMConfig, table string, dispatcher Dispatcher, log *logging.Logger) (*Agent, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.ErrTypeConfig, "LLM API key is not configured").
			WithSuggestion("Set EVAGENT_LLM_API_KEY in the environment or .env file")
	}

	return &Agent{
		client:     anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:      anthropic.Model(cfg.Model),
		maxTokens:  int64(cfg.MaxTokens),
		maxRounds:  cfg.MaxRounds,
		system:     systemPrompt(table),
		toolParams: toAnthropicTools(tools.Specs(table)),
		dispatcher: dispatcher,
		log:        log,
	}, nil
}

// Ask sends one user turn through the tool-calling loop and returns the
// model's final text reply. Chat history carries across calls.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	a.history = append(a.history,
		anthropic.NewUserMessage(anthropic.NewTextBlock(question)))

	var finalText string

	for round := 0; round < a.maxRounds; round++ {
		resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     a.model,
			MaxTokens: a.maxTokens,
			System:    []anthropic.TextBlockParam{{Text: a.system}},
			Messages:  a.history,
			Tools:     a.toolParams,
		})
		if err != nil {
			return "", errors.Wrap(err, errors.ErrTypeLLM, "model request failed")
		}

		a.history = append(a.history, resp.ToParam())

		var toolResults []anthropic.ContentBlockParamUnion

		for _, block := range resp.Content {
			if text := block.AsText(); text.Text != "" {
				finalText = text.Text
			}

			toolUse := block.AsToolUse()
			if toolUse.ID == "" || toolUse.Name == "" {
				continue
			}

			outcome := a.dispatcher.Dispatch(ctx, tools.Invocation{
				Name: toolUse.Name,
				Args: decodeArgs(toolUse.Input),
			})

			if a.log != nil {
				a.log.WithFields(map[string]interface{}{
					"tool":   toolUse.Name,
					"status": string(outcome.Status),
				}).Debug("agent tool call")
			}

			toolResults = append(toolResults, anthropic.NewToolResultBlock(
				toolUse.ID, outcome.Content, !outcome.Succeeded()))
		}

		if len(toolResults) == 0 {
			return finalText, nil
		}

		a.history = append(a.history, anthropic.NewUserMessage(toolResults...))
	}

	if finalText != "" {
		return finalText, nil
	}

	return "", errors.Newf(errors.ErrTypeLLM,
		"conversation did not settle within %d rounds", a.maxRounds)
}

// Reset clears the conversation history.
func (a *Agent) Reset() {
	a.history = nil
}

// decodeArgs flattens the model's JSON tool input into the string map the
// dispatcher expects. Non-string values are rendered with %v so a numeric
// limit still arrives usable.
func decodeArgs(input json.RawMessage) map[string]string {
	var raw map[string]any
	if err := json.Unmarshal(input, &raw); err != nil {
		return map[string]string{}
	}

	args := make(map[string]string, len(raw))

	for key, value := range raw {
		switch typed := value.(type) {
		case string:
			args[key] = typed
		case float64:
			// JSON numbers arrive as float64; drop the trailing .0 on whole
			// numbers so "limit": 5 parses as an integer downstream.
			if typed == float64(int64(typed)) {
				args[key] = fmt.Sprintf("%d", int64(typed))
			} else {
				args[key] = fmt.Sprintf("%v", typed)
			}
		case nil:
			// Explicit nulls are treated as absent.
		default:
			args[key] = fmt.Sprintf("%v", typed)
		}
	}

	return args
}

// toAnthropicTools converts tool specs into Anthropic tool definitions.
func toAnthropicTools(specs []tools.Spec) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(specs))

	for _, spec := range specs {
		properties := make(map[string]any, len(spec.Args))
		var required []string

		for _, arg := range spec.Args {
			properties[arg.Name] = map[string]any{
				"type":        "string",
				"description": arg.Description,
			}

			if arg.Required {
				required = append(required, arg.Name)
			}
		}

		toolParam := anthropic.ToolParam{
			Name:        spec.Name,
			Description: anthropic.Opt(spec.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Type:       "object",
				Properties: properties,
				Required:   required,
			},
		}

		out = append(out, anthropic.ToolUnionParam{OfTool: &toolParam})
	}

	return out
}

func systemPrompt(table string) string {
	return "You are an AI assistant with access to a document store, a currency " +
		"converter, and a relational table of electric vehicle registrations named " +
		table + ".\n" +
		"When asked about vehicle data, first use get_table_schema to learn the " +
		"table structure if you are unsure about column names, then use query_table " +
		"to retrieve rows. Filters use = for exact match and ~ for substring match.\n" +
		"Use rag_lookup for background questions about electric vehicles and " +
		"convert_currency when asked to express prices in another currency.\n" +
		"Always present tool results clearly in your answer, and say so when no " +
		"data was found."
}
