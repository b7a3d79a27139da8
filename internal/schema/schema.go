// Package schema reflects the physical structure of the target table from the
// data store instead of hardcoding a column contract.
package schema

import (
	"context"
	"database/sql"
	"strings"

	"github.com/voltdata/evagent/internal/errors"
)

// ColumnType is the coarse type classification exposed to callers.
type ColumnType string

const (
	TypeText   ColumnType = "text"
	TypeNumber ColumnType = "number"
)

// ColumnDescriptor describes a single reflected column.
type ColumnDescriptor struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Snapshot is the ordered column list of one table at reflection time. It is
// owned by the call that requested it and never persisted.
type Snapshot struct {
	Table   string
	Columns []ColumnDescriptor
}

// Column returns the descriptor whose name matches (case-insensitive) and the
// canonical descriptor to use for query construction.
func (s *Snapshot) Column(name string) (ColumnDescriptor, bool) {
	for _, col := range s.Columns {
		if strings.EqualFold(col.Name, name) {
			return col, true
		}
	}

	return ColumnDescriptor{}, false
}

// HasColumn reports whether the snapshot contains the named column.
func (s *Snapshot) HasColumn(name string) bool {
	_, ok := s.Column(name)
	return ok
}

// ColumnNames returns the canonical column names in declaration order.
func (s *Snapshot) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}

	return names
}

// Describe renders the snapshot as the text block handed back to the agent.
func (s *Snapshot) Describe() string {
	var sb strings.Builder
	sb.WriteString("Table: " + s.Table + "\nColumns:\n")

	for _, col := range s.Columns {
		sb.WriteString("- " + col.Name + ": " + string(col.Type))

		if !col.Nullable {
			sb.WriteString(" (not null)")
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// Catalog reflects table metadata on demand. Each Get issues one metadata read;
// the schema is assumed static for the process lifetime but no cache is kept.
type Catalog struct {
	db    *sql.DB
	table string
}

// NewCatalog creates a catalog bound to the configured target table.
func NewCatalog(db *sql.DB, table string) *Catalog {
	return &Catalog{db: db, table: strings.ToUpper(table)}
}

// Table returns the configured target table name.
func (c *Catalog) Table() string {
	return c.table
}

// Get reflects the named table. The sample only ever serves one table, but the
// name is still validated rather than trusted.
func (c *Catalog) Get(ctx context.Context, table string) (*Snapshot, error) {
	if !strings.EqualFold(table, c.table) {
		return nil, errors.Newf(errors.ErrTypeUnknownTable,
			"table %q does not exist; the available table is %q", table, c.table)
	}

	const metadataSQL = `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE upper(table_name) = ?
		ORDER BY ordinal_position`

	rows, err := c.db.QueryContext(ctx, metadataSQL, c.table)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTypeDataStoreUnavailable,
			"failed to read metadata for table %q", c.table)
	}
	defer func() { _ = rows.Close() }()

	snapshot := &Snapshot{Table: c.table}

	for rows.Next() {
		var name, dataType, nullable string
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeQueryExecution,
				"failed to scan column metadata")
		}

		snapshot.Columns = append(snapshot.Columns, ColumnDescriptor{
			Name:     name,
			Type:     classifyType(dataType),
			Nullable: strings.EqualFold(nullable, "YES"),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeQueryExecution,
			"failed to iterate column metadata")
	}

	if len(snapshot.Columns) == 0 {
		return nil, errors.Newf(errors.ErrTypeUnknownTable,
			"table %q does not exist in the data store", c.table)
	}

	return snapshot, nil
}

// classifyType maps a declared store type onto the coarse text/number split the
// query layer cares about.
func classifyType(declared string) ColumnType {
	upper := strings.ToUpper(declared)

	numeric := []string{
		"INT", "DECIMAL", "NUMERIC", "DOUBLE", "FLOAT", "REAL", "NUMBER",
	}
	for _, marker := range numeric {
		if strings.Contains(upper, marker) {
			return TypeNumber
		}
	}

	return TypeText
}
