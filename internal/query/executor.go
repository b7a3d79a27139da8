package query

import (
	"context"
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/voltdata/evagent/internal/errors"
)

// Result is a bounded result set as structured rows. Values are scalars with
// []byte normalized to string; column order follows the projection.
type Result struct {
	Columns []string
	Rows    [][]any
}

// RowMaps re-shapes the result as one map per row, insertion order given by
// Columns. Convenient for JSON output.
func (r *Result) RowMaps() []map[string]any {
	maps := make([]map[string]any, len(r.Rows))
	for i, row := range r.Rows {
		m := make(map[string]any, len(r.Columns))
		for j, col := range r.Columns {
			m[col] = row[j]
		}

		maps[i] = m
	}

	return maps
}

// Executor runs built queries against the data store. A connection is acquired
// from the pool per call and released on every exit path. Transient connection
// failures are retried a bounded number of times with exponential backoff;
// anything else surfaces once, sanitized.
type Executor struct {
	db         *sql.DB
	timeout    time.Duration
	maxRows    int
	maxRetries uint64
}

// NewExecutor creates an executor with a query timeout ceiling, a hard cap on
// scanned rows, and a bounded retry count for connection failures.
func NewExecutor(db *sql.DB, timeout time.Duration, maxRows int, maxRetries int) *Executor {
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Executor{
		db:         db,
		timeout:    timeout,
		maxRows:    maxRows,
		maxRetries: uint64(maxRetries),
	}
}

// Execute runs the query template with its bound values and returns structured
// rows. The driver's native error types never cross this boundary: failures
// are translated to datastore_unavailable or query_execution.
func (e *Executor) Execute(ctx context.Context, queryTemplate string, boundValues []any) (*Result, error) {
	var result *Result

	operation := func() error {
		res, err := e.executeOnce(ctx, queryTemplate, boundValues)
		if err != nil {
			if errors.IsRetryable(err) {
				return err
			}

			return backoff.Permanent(err)
		}

		result = res

		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), e.maxRetries)
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}

	return result, nil
}

func (e *Executor) executeOnce(ctx context.Context, queryTemplate string, boundValues []any) (*Result, error) {
	queryCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	rows, err := e.db.QueryContext(queryCtx, queryTemplate, boundValues...)
	if err != nil {
		return nil, e.translate(queryCtx, err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeQueryExecution, "failed to read result columns")
	}

	result := &Result{Columns: columns}

	for rows.Next() {
		if e.maxRows > 0 && len(result.Rows) >= e.maxRows {
			break
		}

		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}

		if err := rows.Scan(scanTargets...); err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeQueryExecution, "failed to scan result row")
		}

		result.Rows = append(result.Rows, normalizeValues(values))
	}

	if err := rows.Err(); err != nil {
		return nil, e.translate(queryCtx, err)
	}

	return result, nil
}

// translate classifies a driver fault into the two error kinds that may cross
// the executor boundary.
func (e *Executor) translate(ctx context.Context, err error) error {
	if stderrors.Is(err, driver.ErrBadConn) ||
		stderrors.Is(err, context.DeadlineExceeded) ||
		stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Wrap(err, errors.ErrTypeDataStoreUnavailable,
			"data store did not answer within the allowed time")
	}

	// A ping tells connection trouble apart from a bad query without leaking
	// the driver's own error type.
	if pingErr := e.db.PingContext(ctx); pingErr != nil {
		return errors.Wrap(err, errors.ErrTypeDataStoreUnavailable, "data store is unreachable")
	}

	return errors.Wrap(err, errors.ErrTypeQueryExecution, "query failed against the data store")
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}

	return normalized
}
