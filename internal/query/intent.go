// Package query turns validated intents into parameterized SQL and executes
// them against the data store with bounded result sizes.
package query

import (
	"strconv"
	"strings"

	"github.com/voltdata/evagent/internal/errors"
	"github.com/voltdata/evagent/internal/schema"
)

// Operator is a filter comparison supported by the sample's query shapes.
type Operator string

const (
	OpEquals   Operator = "equals"
	OpContains Operator = "contains"
)

// Filter is one validated predicate. Column always holds the canonical name
// from the schema snapshot, never the caller's spelling.
type Filter struct {
	Column string
	Op     Operator
	Value  string
}

// Intent is the normalized, validated representation of what the caller wants.
type Intent struct {
	Table      string
	Columns    []string // empty = all columns
	Filters    []Filter
	Limit      int
	OrderBy    string
	Descending bool
}

// Limits bounds what a caller may request.
type Limits struct {
	Default int
	Max     int
}

// Clamp applies the default for unusable requests and the hard cap regardless
// of what was asked for.
func (l Limits) Clamp(requested int) int {
	limit := requested
	if limit <= 0 {
		limit = l.Default
	}

	if limit > l.Max {
		limit = l.Max
	}

	return limit
}

// ParseIntent validates the raw tool arguments against the schema snapshot and
// produces an Intent. Argument keys it does not recognize are ignored so the
// agent can pass extra hints without breaking older servers.
//
// Recognized keys:
//   - columns:  comma-separated projection ("Make, Model")
//   - filters:  semicolon-separated clauses, "COL = value" or "COL ~ value"
//     (~ is a substring match)
//   - limit:    positive integer row count
//   - order_by: column name, optional "desc" suffix
func ParseIntent(args map[string]string, snap *schema.Snapshot, limits Limits) (Intent, error) {
	intent := Intent{Table: snap.Table}

	if raw, ok := args["columns"]; ok && strings.TrimSpace(raw) != "" {
		for _, part := range strings.Split(raw, ",") {
			name := strings.TrimSpace(part)
			if name == "" {
				continue
			}

			col, ok := snap.Column(name)
			if !ok {
				return Intent{}, errors.Newf(errors.ErrTypeInvalidColumn,
					"column %q does not exist in table %s", name, snap.Table)
			}

			intent.Columns = append(intent.Columns, col.Name)
		}
	}

	if raw, ok := args["filters"]; ok && strings.TrimSpace(raw) != "" {
		filters, err := parseFilters(raw, snap)
		if err != nil {
			return Intent{}, err
		}

		intent.Filters = filters
	}

	requested := 0
	if raw, ok := args["limit"]; ok {
		// A limit that does not parse as a positive integer falls back to the
		// default rather than failing the call.
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 0 {
			requested = n
		}
	}

	intent.Limit = limits.Clamp(requested)

	if raw, ok := args["order_by"]; ok && strings.TrimSpace(raw) != "" {
		name := strings.TrimSpace(raw)
		if before, found := strings.CutSuffix(strings.ToLower(name), " desc"); found {
			intent.Descending = true
			name = strings.TrimSpace(name[:len(before)])
		}

		col, ok := snap.Column(name)
		if !ok {
			return Intent{}, errors.Newf(errors.ErrTypeInvalidColumn,
				"order_by column %q does not exist in table %s", name, snap.Table)
		}

		intent.OrderBy = col.Name
	}

	return intent, nil
}

// parseFilters splits "COL = value; COL ~ value" clause lists.
func parseFilters(raw string, snap *schema.Snapshot) ([]Filter, error) {
	var filters []Filter

	for _, clause := range strings.Split(raw, ";") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}

		column, op, value, err := splitClause(clause)
		if err != nil {
			return nil, err
		}

		col, ok := snap.Column(column)
		if !ok {
			return nil, errors.Newf(errors.ErrTypeInvalidColumn,
				"filter column %q does not exist in table %s", column, snap.Table)
		}

		if value == "" {
			return nil, errors.Newf(errors.ErrTypeInvalidFilter,
				"filter on column %q has an empty value", col.Name)
		}

		filters = append(filters, Filter{Column: col.Name, Op: op, Value: value})
	}

	return filters, nil
}

func splitClause(clause string) (column string, op Operator, value string, err error) {
	eq := strings.Index(clause, "=")
	tilde := strings.Index(clause, "~")

	switch {
	case eq >= 0 && (tilde < 0 || eq < tilde):
		column = strings.TrimSpace(clause[:eq])
		value = strings.TrimSpace(clause[eq+1:])
		op = OpEquals
	case tilde >= 0:
		column = strings.TrimSpace(clause[:tilde])
		value = strings.TrimSpace(clause[tilde+1:])
		op = OpContains
	default:
		return "", "", "", errors.Newf(errors.ErrTypeInvalidFilter,
			"filter clause %q has no supported operator (use = for equals, ~ for contains)", clause)
	}

	if column == "" {
		return "", "", "", errors.Newf(errors.ErrTypeInvalidFilter,
			"filter clause %q names no column", clause)
	}

	// A comparison the sample does not support (>=, !=, invented operators)
	// leaves operator characters stuck to the column token. Reject it as an
	// unsupported operator instead of a misspelled column.
	if !isIdentifier(column) {
		return "", "", "", errors.Newf(errors.ErrTypeInvalidFilter,
			"filter clause %q uses an unsupported operator (use = for equals, ~ for contains)", clause)
	}

	return column, op, value, nil
}

func isIdentifier(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}

	return name != ""
}
