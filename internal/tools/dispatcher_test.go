package tools_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltdata/evagent/internal/config"
	"github.com/voltdata/evagent/internal/currency"
	"github.com/voltdata/evagent/internal/docstore"
	"github.com/voltdata/evagent/internal/errors"
	"github.com/voltdata/evagent/internal/query"
	"github.com/voltdata/evagent/internal/schema"
	"github.com/voltdata/evagent/internal/storage"
	"github.com/voltdata/evagent/internal/tools"
)

func newTestDispatcher(t *testing.T) *tools.Dispatcher {
	t.Helper()

	store, err := storage.Open(config.DatabaseConfig{
		Path:            ":memory:",
		Table:           "ELECTRICVEHICLES",
		MaxConnections:  4,
		MaxIdleConns:    2,
		ConnMaxLifetime: "30m",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.EnsureSchema(ctx))

	seed := []struct {
		vin, mk, model string
		rng, id        int
	}{
		{"VIN0000001", "TESLA", "MODEL 3", 308, 1},
		{"VIN0000002", "TESLA", "MODEL Y", 291, 2},
		{"VIN0000003", "NISSAN", "LEAF", 75, 3},
	}
	for _, r := range seed {
		_, err := store.DB().ExecContext(ctx, `
			INSERT INTO ELECTRICVEHICLES
				(VIN, COUNTY, CITY, STATE, POSTALCODE, MODELYEAR, MAKE, MODEL,
				 EVTYPE, CAFVELIGIBILITY, ELECTRICRANGE, BASEMSRP, LEGISLATIVEDISTRICT,
				 DOLVEHICLEID, VEHICLELOCATION, ELECTRICUTILITY, CENSUSTRACT, ID)
			VALUES (?, 'King', 'Seattle', 'WA', '98101', 2020, ?, ?,
				 'Battery Electric Vehicle (BEV)', 'Eligible', ?, 0, '43',
				 '1257015', 'POINT (0 0)', 'CITY OF SEATTLE', '53033', ?)`,
			r.vin, r.mk, r.model, r.rng, r.id)
		require.NoError(t, err)
	}

	catalog := schema.NewCatalog(store.DB(), "ELECTRICVEHICLES")
	executor := query.NewExecutor(store.DB(), 5*time.Second, 1000, 0)
	limits := query.Limits{Default: 5, Max: 1000}

	return tools.NewDispatcher(catalog, executor, limits,
		currency.NewConverter(), docstore.NewStore(), nil)
}

func TestDispatchGetTableSchema(t *testing.T) {
	dispatcher := newTestDispatcher(t)

	outcome := dispatcher.Dispatch(context.Background(), tools.Invocation{
		Name: tools.ToolGetTableSchema,
	})

	require.True(t, outcome.Succeeded())
	for _, col := range []string{"VIN", "MAKE", "MODEL", "ELECTRICRANGE", "ID"} {
		assert.Contains(t, outcome.Content, col)
	}
}

func TestDispatchGetTableSchemaUnknownTable(t *testing.T) {
	dispatcher := newTestDispatcher(t)

	outcome := dispatcher.Dispatch(context.Background(), tools.Invocation{
		Name: tools.ToolGetTableSchema,
		Args: map[string]string{"table": "CUSTOMERS"},
	})

	require.False(t, outcome.Succeeded())
	assert.True(t, errors.IsType(outcome.Err, errors.ErrTypeUnknownTable))
	assert.Contains(t, outcome.Content, "CUSTOMERS")
}

func TestDispatchQueryTableEquals(t *testing.T) {
	dispatcher := newTestDispatcher(t)

	outcome := dispatcher.Dispatch(context.Background(), tools.Invocation{
		Name: tools.ToolQueryTable,
		Args: map[string]string{
			"columns": "Make, Model",
			"filters": "Make = TESLA",
		},
	})

	require.True(t, outcome.Succeeded())
	assert.Contains(t, outcome.Content, "MODEL 3")
	assert.Contains(t, outcome.Content, "MODEL Y")
	assert.NotContains(t, outcome.Content, "LEAF")
}

func TestDispatchQueryTableContains(t *testing.T) {
	dispatcher := newTestDispatcher(t)

	outcome := dispatcher.Dispatch(context.Background(), tools.Invocation{
		Name: tools.ToolQueryTable,
		Args: map[string]string{"filters": "Model ~ LEAF"},
	})

	require.True(t, outcome.Succeeded())
	assert.Contains(t, outcome.Content, "LEAF")
	assert.NotContains(t, outcome.Content, "MODEL 3")
}

func TestDispatchQueryTableNoRows(t *testing.T) {
	dispatcher := newTestDispatcher(t)

	outcome := dispatcher.Dispatch(context.Background(), tools.Invocation{
		Name: tools.ToolQueryTable,
		Args: map[string]string{"filters": "Make = FERRARI"},
	})

	require.True(t, outcome.Succeeded())
	assert.Contains(t, outcome.Content, "No data found")
}

func TestDispatchQueryTableInvalidColumn(t *testing.T) {
	dispatcher := newTestDispatcher(t)

	outcome := dispatcher.Dispatch(context.Background(), tools.Invocation{
		Name: tools.ToolQueryTable,
		Args: map[string]string{"filters": "NotAColumn = x"},
	})

	require.False(t, outcome.Succeeded())
	assert.True(t, errors.IsType(outcome.Err, errors.ErrTypeInvalidColumn))
	assert.Contains(t, outcome.Content, "NotAColumn")
}

func TestDispatchUnknownTool(t *testing.T) {
	dispatcher := newTestDispatcher(t)

	outcome := dispatcher.Dispatch(context.Background(), tools.Invocation{
		Name: "delete_all_rows",
	})

	require.False(t, outcome.Succeeded())
	assert.Equal(t, tools.StatusFailed, outcome.Status)
	assert.True(t, errors.IsType(outcome.Err, errors.ErrTypeUnsupportedTool))
}

func TestDispatchConvertCurrency(t *testing.T) {
	dispatcher := newTestDispatcher(t)

	outcome := dispatcher.Dispatch(context.Background(), tools.Invocation{
		Name: tools.ToolConvertCurrency,
		Args: map[string]string{"amount": "100", "from": "USD", "to": "EUR"},
	})

	require.True(t, outcome.Succeeded())
	assert.Equal(t, "100.00 USD = 92.00 EUR", outcome.Content)
}

func TestDispatchConvertCurrencyMissingArgs(t *testing.T) {
	dispatcher := newTestDispatcher(t)

	outcome := dispatcher.Dispatch(context.Background(), tools.Invocation{
		Name: tools.ToolConvertCurrency,
		Args: map[string]string{"amount": "100"},
	})

	require.False(t, outcome.Succeeded())
	assert.True(t, errors.IsCallerFault(outcome.Err))
}

func TestDispatchRAGLookup(t *testing.T) {
	dispatcher := newTestDispatcher(t)

	outcome := dispatcher.Dispatch(context.Background(), tools.Invocation{
		Name: tools.ToolRAGLookup,
		Args: map[string]string{"query": "what is a BEV"},
	})

	require.True(t, outcome.Succeeded())
	assert.Contains(t, outcome.Content, "Battery Electric Vehicle")
}

func TestDispatchLimitClamped(t *testing.T) {
	dispatcher := newTestDispatcher(t)

	outcome := dispatcher.Dispatch(context.Background(), tools.Invocation{
		Name: tools.ToolQueryTable,
		Args: map[string]string{"columns": "VIN", "limit": "1", "order_by": "VIN"},
	})

	require.True(t, outcome.Succeeded())
	// Header, separator, and exactly one data row.
	assert.Contains(t, outcome.Content, "VIN0000001")
	assert.NotContains(t, outcome.Content, "VIN0000002")
}

func TestSpecsCoverAllTools(t *testing.T) {
	specs := tools.Specs("ELECTRICVEHICLES")

	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}

	assert.ElementsMatch(t, names, []string{
		tools.ToolGetTableSchema,
		tools.ToolQueryTable,
		tools.ToolConvertCurrency,
		tools.ToolRAGLookup,
	})
}
