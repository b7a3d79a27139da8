package tools

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/voltdata/evagent/internal/currency"
	"github.com/voltdata/evagent/internal/docstore"
	"github.com/voltdata/evagent/internal/errors"
	"github.com/voltdata/evagent/internal/logging"
	"github.com/voltdata/evagent/internal/query"
	"github.com/voltdata/evagent/internal/schema"
)

// Dispatcher routes invocations to their capability. It holds no state across
// invocations.
type Dispatcher struct {
	catalog   *schema.Catalog
	executor  *query.Executor
	limits    query.Limits
	converter *currency.Converter
	docs      *docstore.Store
	log       *logging.Logger
}

// NewDispatcher wires the dispatcher to its collaborators.
func NewDispatcher(
	catalog *schema.Catalog,
	executor *query.Executor,
	limits query.Limits,
	converter *currency.Converter,
	docs *docstore.Store,
	log *logging.Logger,
) *Dispatcher {
	return &Dispatcher{
		catalog:   catalog,
		executor:  executor,
		limits:    limits,
		converter: converter,
		docs:      docs,
		log:       log,
	}
}

// Dispatch routes one invocation and always returns a terminal outcome: either
// succeeded with content or failed with a classified error.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) Outcome {
	started := time.Now()
	log := d.logger().WithFields(map[string]interface{}{
		"invocation": uuid.New().String(),
		"tool":       inv.Name,
	})
	log.Debug("dispatching tool invocation")

	var content string
	var err error

	switch inv.Name {
	case ToolGetTableSchema:
		content, err = d.getTableSchema(ctx, inv.Args)
	case ToolQueryTable:
		content, err = d.queryTable(ctx, inv.Args)
	case ToolConvertCurrency:
		content, err = d.convertCurrency(inv.Args)
	case ToolRAGLookup:
		content, err = d.ragLookup(inv.Args)
	default:
		err = errors.Newf(errors.ErrTypeUnsupportedTool,
			"no tool named %q; available tools: %s, %s, %s, %s",
			inv.Name, ToolGetTableSchema, ToolQueryTable, ToolConvertCurrency, ToolRAGLookup)
	}

	if err != nil {
		classified := classify(err)
		log.WithField("duration", time.Since(started)).
			ErrorWithErr("tool invocation failed", classified)

		return Outcome{
			Status:  StatusFailed,
			Content: classified.Error(),
			Err:     classified,
		}
	}

	log.WithField("duration", time.Since(started)).Debug("tool invocation succeeded")

	return Outcome{Status: StatusSucceeded, Content: content}
}

func (d *Dispatcher) getTableSchema(ctx context.Context, args map[string]string) (string, error) {
	snap, err := d.catalog.Get(ctx, d.tableArg(args))
	if err != nil {
		return "", err
	}

	return snap.Describe(), nil
}

func (d *Dispatcher) queryTable(ctx context.Context, args map[string]string) (string, error) {
	snap, err := d.catalog.Get(ctx, d.tableArg(args))
	if err != nil {
		return "", err
	}

	intent, err := query.ParseIntent(args, snap, d.limits)
	if err != nil {
		return "", err
	}

	queryTemplate, boundValues, err := query.Build(intent)
	if err != nil {
		return "", err
	}

	result, err := d.executor.Execute(ctx, queryTemplate, boundValues)
	if err != nil {
		return "", err
	}

	if len(result.Rows) == 0 {
		return fmt.Sprintf("No data found in %s for the given criteria.", snap.Table), nil
	}

	return renderMarkdown(result), nil
}

func (d *Dispatcher) convertCurrency(args map[string]string) (string, error) {
	amount, ok := args["amount"]
	if !ok {
		return "", errors.New(errors.ErrTypeInvalidFilter, "convert_currency requires an amount argument")
	}

	from, ok := args["from"]
	if !ok {
		return "", errors.New(errors.ErrTypeInvalidFilter, "convert_currency requires a from currency code")
	}

	to, ok := args["to"]
	if !ok {
		return "", errors.New(errors.ErrTypeInvalidFilter, "convert_currency requires a to currency code")
	}

	return d.converter.ConvertString(amount, from, to)
}

func (d *Dispatcher) ragLookup(args map[string]string) (string, error) {
	q, ok := args["query"]
	if !ok || q == "" {
		return "", errors.New(errors.ErrTypeInvalidFilter, "rag_lookup requires a query argument")
	}

	return d.docs.Lookup(q), nil
}

// tableArg returns the caller's table argument, defaulting to the configured
// target. The catalog still validates whatever comes back.
func (d *Dispatcher) tableArg(args map[string]string) string {
	if table, ok := args["table"]; ok && table != "" {
		return table
	}

	return d.catalog.Table()
}

func (d *Dispatcher) logger() *logging.Logger {
	if d.log != nil {
		return d.log
	}

	logging.SetupFallbackLogger()

	return logging.GetLogger()
}

// classify folds any downstream fault into the error taxonomy. Structured
// errors pass through; anything else is an internal fault.
func classify(err error) error {
	var structured *errors.Error
	if stderrors.As(err, &structured) {
		return err
	}

	return errors.Wrap(err, errors.ErrTypeInternal, "tool invocation failed")
}

// renderMarkdown renders a bounded result set as a markdown table for the
// agent to fold into its reply.
func renderMarkdown(result *query.Result) string {
	t := table.NewWriter()

	header := make(table.Row, len(result.Columns))
	for i, col := range result.Columns {
		header[i] = col
	}

	t.AppendHeader(header)

	for _, row := range result.Rows {
		tr := make(table.Row, len(row))
		for i, value := range row {
			if value == nil {
				tr[i] = ""
				continue
			}

			tr[i] = value
		}

		t.AppendRow(tr)
	}

	return t.RenderMarkdown()
}
