package query_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltdata/evagent/internal/config"
	"github.com/voltdata/evagent/internal/errors"
	"github.com/voltdata/evagent/internal/query"
	"github.com/voltdata/evagent/internal/storage"
)

func newPopulatedStore(t *testing.T) *storage.Store {
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

	rows := []struct {
		vin, city, mk, model string
		rng, id              int
	}{
		{"VIN0000001", "Seattle", "TESLA", "MODEL 3", 308, 1},
		{"VIN0000002", "Seattle", "TESLA", "MODEL Y", 291, 2},
		{"VIN0000003", "Bellevue", "NISSAN", "LEAF", 75, 3},
		{"VIN0000004", "Tacoma", "NISSAN", "LEAF PLUS", 226, 4},
		{"VIN0000005", "Olympia", "CHEVROLET", "BOLT EV", 259, 5},
	}
	for _, r := range rows {
		_, err := store.DB().ExecContext(ctx, `
			INSERT INTO ELECTRICVEHICLES
				(VIN, COUNTY, CITY, STATE, POSTALCODE, MODELYEAR, MAKE, MODEL,
				 EVTYPE, CAFVELIGIBILITY, ELECTRICRANGE, BASEMSRP, LEGISLATIVEDISTRICT,
				 DOLVEHICLEID, VEHICLELOCATION, ELECTRICUTILITY, CENSUSTRACT, ID)
			VALUES (?, 'King', ?, 'WA', '98101', 2020, ?, ?,
				 'Battery Electric Vehicle (BEV)', 'Eligible', ?, 0, '43',
				 '1257015', 'POINT (0 0)', 'CITY OF SEATTLE', '53033', ?)`,
			r.vin, r.city, r.mk, r.model, r.rng, r.id)
		require.NoError(t, err)
	}

	return store
}

func TestExecuteEqualsFilter(t *testing.T) {
	store := newPopulatedStore(t)
	executor := query.NewExecutor(store.DB(), 5*time.Second, 1000, 0)

	sqlText, args, err := query.Build(query.Intent{
		Table:   "ELECTRICVEHICLES",
		Columns: []string{"MAKE", "MODEL"},
		Filters: []query.Filter{{Column: "MAKE", Op: query.OpEquals, Value: "TESLA"}},
		Limit:   100,
	})
	require.NoError(t, err)

	result, err := executor.Execute(context.Background(), sqlText, args)
	require.NoError(t, err)

	require.Len(t, result.Rows, 2)
	for _, row := range result.Rows {
		assert.Equal(t, "TESLA", row[0])
	}
}

func TestExecuteContainsFilter(t *testing.T) {
	store := newPopulatedStore(t)
	executor := query.NewExecutor(store.DB(), 5*time.Second, 1000, 0)

	sqlText, args, err := query.Build(query.Intent{
		Table:   "ELECTRICVEHICLES",
		Columns: []string{"MODEL"},
		Filters: []query.Filter{{Column: "MODEL", Op: query.OpContains, Value: "LEAF"}},
		Limit:   100,
	})
	require.NoError(t, err)

	result, err := executor.Execute(context.Background(), sqlText, args)
	require.NoError(t, err)

	require.Len(t, result.Rows, 2)
	for _, row := range result.Rows {
		assert.Contains(t, row[0], "LEAF")
	}
}

func TestExecuteEqualsIsExact(t *testing.T) {
	store := newPopulatedStore(t)
	executor := query.NewExecutor(store.DB(), 5*time.Second, 1000, 0)

	sqlText, args, err := query.Build(query.Intent{
		Table:   "ELECTRICVEHICLES",
		Filters: []query.Filter{{Column: "MODEL", Op: query.OpEquals, Value: "LEAF"}},
		Limit:   100,
	})
	require.NoError(t, err)

	result, err := executor.Execute(context.Background(), sqlText, args)
	require.NoError(t, err)

	// "LEAF PLUS" must not match an exact LEAF.
	assert.Len(t, result.Rows, 1)
}

func TestExecuteRespectsLimit(t *testing.T) {
	store := newPopulatedStore(t)
	executor := query.NewExecutor(store.DB(), 5*time.Second, 1000, 0)

	for _, limit := range []int{1, 2, 3, 100} {
		t.Run(fmt.Sprintf("limit_%d", limit), func(t *testing.T) {
			sqlText, args, err := query.Build(query.Intent{
				Table: "ELECTRICVEHICLES",
				Limit: limit,
			})
			require.NoError(t, err)

			result, err := executor.Execute(context.Background(), sqlText, args)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(result.Rows), limit)
		})
	}
}

func TestExecuteHardCapOnScannedRows(t *testing.T) {
	store := newPopulatedStore(t)
	executor := query.NewExecutor(store.DB(), 5*time.Second, 3, 0)

	result, err := executor.Execute(context.Background(),
		`SELECT * FROM "ELECTRICVEHICLES"`, nil)
	require.NoError(t, err)

	assert.Len(t, result.Rows, 3)
}

func TestExecuteHostileValueReturnsNoRows(t *testing.T) {
	store := newPopulatedStore(t)
	executor := query.NewExecutor(store.DB(), 5*time.Second, 1000, 0)

	sqlText, args, err := query.Build(query.Intent{
		Table: "ELECTRICVEHICLES",
		Filters: []query.Filter{{
			Column: "MAKE", Op: query.OpEquals, Value: "TESLA' OR '1'='1",
		}},
		Limit: 100,
	})
	require.NoError(t, err)

	result, err := executor.Execute(context.Background(), sqlText, args)
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
}

func TestExecuteTranslatesQueryFaults(t *testing.T) {
	store := newPopulatedStore(t)
	executor := query.NewExecutor(store.DB(), 5*time.Second, 1000, 0)

	_, err := executor.Execute(context.Background(), "SELECT * FROM NO_SUCH_TABLE LIMIT 1", nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeQueryExecution))
}

func TestExecuteRetriesWhenStoreUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
		sqlmock.MonitorPingsOption(true),
	)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	queryRE := regexp.QuoteMeta(`SELECT * FROM "ELECTRICVEHICLES" LIMIT ?`)
	storeDown := fmt.Errorf("connection refused")

	// First attempt fails and the ping confirms the store is down; the retry
	// succeeds.
	mock.ExpectQuery(queryRE).WillReturnError(storeDown)
	mock.ExpectPing().WillReturnError(storeDown)
	mock.ExpectQuery(queryRE).
		WillReturnRows(sqlmock.NewRows([]string{"MAKE"}).AddRow("TESLA"))

	executor := query.NewExecutor(db, 5*time.Second, 1000, 2)
	result, err := executor.Execute(context.Background(),
		`SELECT * FROM "ELECTRICVEHICLES" LIMIT ?`, []any{5})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "TESLA", result.Rows[0][0])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteDoesNotRetryQueryFaults(t *testing.T) {
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
		sqlmock.MonitorPingsOption(true),
	)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	queryRE := regexp.QuoteMeta(`SELECT BROKEN FROM "ELECTRICVEHICLES" LIMIT ?`)

	// Query fails but the store answers pings: a builder defect, one attempt.
	mock.ExpectQuery(queryRE).WillReturnError(fmt.Errorf("no such column BROKEN"))
	mock.ExpectPing()

	executor := query.NewExecutor(db, 5*time.Second, 1000, 3)
	_, err = executor.Execute(context.Background(),
		`SELECT BROKEN FROM "ELECTRICVEHICLES" LIMIT ?`, []any{5})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeQueryExecution))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRowMaps(t *testing.T) {
	result := &query.Result{
		Columns: []string{"MAKE", "ELECTRICRANGE"},
		Rows:    [][]any{{"TESLA", 308}},
	}

	maps := result.RowMaps()
	require.Len(t, maps, 1)
	assert.Equal(t, "TESLA", maps[0]["MAKE"])
	assert.Equal(t, 308, maps[0]["ELECTRICRANGE"])
}
