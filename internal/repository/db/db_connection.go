package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

var pragmas = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA foreign_keys = ON;",
	"PRAGMA busy_timeout = 5000;",
}

// InitDB opens the telemetry database, applies pragmas and creates missing tables.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// one writer; the sampler and sign-up are the only ones
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

const sqliteDriverName = "sqlite"

const schemaTelemetry = `
CREATE TABLE IF NOT EXISTS telemetry_samples (
    id TEXT PRIMARY KEY,
    sampled_at TIMESTAMP NOT NULL,
    device_id TEXT NOT NULL,
    device_name TEXT NOT NULL,
    temp_units INTEGER NOT NULL,
    temp_mode TEXT NOT NULL,
    hvac_status TEXT NOT NULL,
    fan_mode TEXT NOT NULL,
    eco_mode TEXT NOT NULL,
    indoor_temp_c REAL NOT NULL,
    heat_c REAL NOT NULL,
    cool_c REAL NOT NULL,
    eco_heat_c REAL NOT NULL,
    eco_cool_c REAL NOT NULL,
    fan_seconds_left INTEGER NOT NULL,
    indoor_humidity REAL NOT NULL,
    outdoor_temp_c REAL NOT NULL,
    outdoor_humidity REAL NOT NULL
);
`

const indexTelemetryDeviceTime = `
CREATE INDEX IF NOT EXISTS idx_telemetry_device_time ON telemetry_samples (device_id, sampled_at);
`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// In case of panic, rollback to avoid leaving an open transaction
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaTelemetry,
		indexTelemetryDeviceTime,
		schemaUsers,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
