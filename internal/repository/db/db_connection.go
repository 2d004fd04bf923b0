package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	pingTimeout = 5 * time.Second
)

// Open connects to a sqlite file or a postgres DSN and ensures tables exist.
func Open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite:
		return openSQLite(dsn)
	case DriverPostgres:
		return openPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
}

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open(DriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// SQLite is not great with many writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}
	return finishOpen(db, sqliteSchema)
}

func openPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return finishOpen(db, postgresSchema)
}

func finishOpen(db *sql.DB, schema []string) (*sql.DB, error) {
	// Fail fast if the DB cannot be reached
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := ensureSchema(db, schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

var sqliteSchema = []string{`
CREATE TABLE IF NOT EXISTS device_readings (
    id TEXT PRIMARY KEY,
    device_id TEXT NOT NULL,
    noise_level REAL NOT NULL,
    noise_max REAL NOT NULL,
    recorded_at TIMESTAMP NOT NULL,
    received_at TIMESTAMP NOT NULL,
    battery_level REAL,
    temperature REAL,
    humidity REAL,
    status TEXT,
    metadata TEXT,
    thresholds TEXT,
    payload TEXT
);`, `
CREATE INDEX IF NOT EXISTS idx_device_readings_device_received
    ON device_readings (device_id, received_at DESC);`, `
CREATE TABLE IF NOT EXISTS system_settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
);`,
}

var postgresSchema = []string{`
CREATE TABLE IF NOT EXISTS device_readings (
    id TEXT PRIMARY KEY,
    device_id TEXT NOT NULL,
    noise_level DOUBLE PRECISION NOT NULL,
    noise_max DOUBLE PRECISION NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL,
    received_at TIMESTAMPTZ NOT NULL,
    battery_level DOUBLE PRECISION,
    temperature DOUBLE PRECISION,
    humidity DOUBLE PRECISION,
    status TEXT,
    metadata TEXT,
    thresholds TEXT,
    payload TEXT
);`, `
CREATE INDEX IF NOT EXISTS idx_device_readings_device_received
    ON device_readings (device_id, received_at DESC);`, `
CREATE TABLE IF NOT EXISTS system_settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);`,
}

func ensureSchema(db *sql.DB, schema []string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// no-op after a successful commit
		_ = tx.Rollback()
	}()

	for i, stmt := range schema {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
