package query

import (
	"strings"

	"github.com/voltdata/evagent/internal/errors"
)

// likeEscape guards LIKE metacharacters inside contains values.
const likeEscape = `\`

// Build turns an Intent into a parameterized query plus bound values. Every
// identifier in the text comes from the intent's canonical (schema-validated)
// names; every caller value is a bound parameter.
func Build(intent Intent) (string, []any, error) {
	if intent.Table == "" {
		return "", nil, errors.New(errors.ErrTypeInternal, "intent has no table")
	}

	if intent.Limit <= 0 {
		return "", nil, errors.New(errors.ErrTypeInternal, "intent has no row limit")
	}

	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT ")

	if len(intent.Columns) == 0 {
		sb.WriteString("*")
	} else {
		for i, col := range intent.Columns {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(quoteIdent(col))
		}
	}

	sb.WriteString(" FROM ")
	sb.WriteString(quoteIdent(intent.Table))

	for i, filter := range intent.Filters {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}

		switch filter.Op {
		case OpEquals:
			sb.WriteString(quoteIdent(filter.Column))
			sb.WriteString(" = ?")
			args = append(args, filter.Value)
		case OpContains:
			sb.WriteString(quoteIdent(filter.Column))
			sb.WriteString(" LIKE ? ESCAPE '")
			sb.WriteString(likeEscape)
			sb.WriteString("'")
			args = append(args, "%"+escapeLike(filter.Value)+"%")
		default:
			return "", nil, errors.Newf(errors.ErrTypeInvalidFilter,
				"unsupported filter operator %q on column %s", filter.Op, filter.Column)
		}
	}

	if intent.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(quoteIdent(intent.OrderBy))

		if intent.Descending {
			sb.WriteString(" DESC")
		}
	}

	sb.WriteString(" LIMIT ?")
	args = append(args, intent.Limit)

	return sb.String(), args, nil
}

// quoteIdent double-quotes an identifier. Identifiers reaching this point come
// from the schema snapshot, so the quoting is belt-and-braces rather than the
// safety boundary itself.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// escapeLike neutralizes LIKE wildcards inside a contains value so the value
// matches literally.
func escapeLike(value string) string {
	value = strings.ReplaceAll(value, likeEscape, likeEscape+likeEscape)
	value = strings.ReplaceAll(value, "%", likeEscape+"%")
	value = strings.ReplaceAll(value, "_", likeEscape+"_")

	return value
}
