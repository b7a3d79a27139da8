// Package storage owns the data store bootstrap: connection pooling, the
// ELECTRICVEHICLES schema, and bulk CSV ingestion. The query core treats the
// table as read-only; everything here runs before the agent is started.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb" // DuckDB driver

	"github.com/voltdata/evagent/internal/config"
)

// VehicleLocation is stored as a point string; longer values are truncated on
// import to match the loader contract.
const vehicleLocationMaxLen = 100

// Store wraps the shared *sql.DB pool. Callers acquire a connection per query
// through the pool rather than holding one across tool invocations.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the DuckDB database with connection pooling
func Open(cfg config.DatabaseConfig) (*Store, error) {
	if cfg.Path != ":memory:" && cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if lifetime, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
		db.SetConnMaxLifetime(lifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, path: cfg.Path}, nil
}

// DB exposes the underlying pool to the schema catalog and query executor.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the ELECTRICVEHICLES table if it does not exist yet.
// Column names are uppercase to match the source dataset's DDL.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS ELECTRICVEHICLES (
		VIN                 VARCHAR(10),
		COUNTY              VARCHAR(50),
		CITY                VARCHAR(50),
		STATE               VARCHAR(2),
		POSTALCODE          VARCHAR(10),
		MODELYEAR           INTEGER,
		MAKE                VARCHAR(50),
		MODEL               VARCHAR(50),
		EVTYPE              VARCHAR(100),
		CAFVELIGIBILITY     VARCHAR(120),
		ELECTRICRANGE       INTEGER,
		BASEMSRP            INTEGER,
		LEGISLATIVEDISTRICT VARCHAR(10),
		DOLVEHICLEID        VARCHAR(20),
		VEHICLELOCATION     VARCHAR(100),
		ELECTRICUTILITY     VARCHAR(200),
		CENSUSTRACT         VARCHAR(20),
		ID                  INTEGER NOT NULL
	)`

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	return nil
}

// ImportCSV bulk-loads the electric vehicle population CSV. The file uses a
// comma delimiter with optional double-quote quoting and a header row, matching
// the loader control file of the original dataset. Returns the number of rows
// loaded.
func (s *Store) ImportCSV(ctx context.Context, csvPath string) (int64, error) {
	absPath, err := filepath.Abs(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve CSV path: %w", err)
	}

	if _, err := os.Stat(absPath); err != nil {
		return 0, fmt.Errorf("CSV file not readable: %w", err)
	}

	// Positional read_csv projection keeps the loader independent of the CSV's
	// header spellings. VEHICLELOCATION is truncated to the declared length.
	loadSQL := fmt.Sprintf(`
	INSERT INTO ELECTRICVEHICLES
	SELECT
		column00,
		column01,
		column02,
		column03,
		column04,
		TRY_CAST(column05 AS INTEGER),
		column06,
		column07,
		column08,
		column09,
		TRY_CAST(column10 AS INTEGER),
		TRY_CAST(column11 AS INTEGER),
		column12,
		column13,
		substr(column14, 1, %d),
		column15,
		column16,
		row_number() OVER ()
	FROM read_csv(?, delim=',', quote='"', header=false, skip=1, all_varchar=true)`,
		vehicleLocationMaxLen)

	result, err := s.db.ExecContext(ctx, loadSQL, absPath)
	if err != nil {
		return 0, fmt.Errorf("failed to import CSV: %w", err)
	}

	loaded, err := result.RowsAffected()
	if err != nil {
		// DuckDB reports affected rows; fall back to a count if it ever stops.
		row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ELECTRICVEHICLES")
		if scanErr := row.Scan(&loaded); scanErr != nil {
			return 0, fmt.Errorf("failed to count loaded rows: %w", scanErr)
		}
	}

	return loaded, nil
}

// RowCount returns the number of rows currently in the table.
func (s *Store) RowCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ELECTRICVEHICLES").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}

	return count, nil
}
