package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Open opens (creating if needed) the SQLite export database at path and
// brings its schema up to date. Exporting into an existing file adds a new
// run alongside the earlier ones.
func Open(path string) (*sql.DB, error) {
	// Pragmas in the connection string apply to all connections
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: runs, works, annotations
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS runs (
		  id           TEXT PRIMARY KEY,
		  created_at   INTEGER NOT NULL,
		  mode         TEXT NOT NULL,
		  bib_path     TEXT,
		  pdf_dir      TEXT,
		  filters_json TEXT,
		  include_all  INTEGER NOT NULL DEFAULT 0,
		  work_count   INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS works (
		  run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		  position   INTEGER NOT NULL,
		  cite_key   TEXT,
		  author     TEXT,
		  year       TEXT,
		  title      TEXT,
		  journal    TEXT,
		  review     TEXT,
		  doi        TEXT,
		  file_ref   TEXT,
		  file       TEXT NOT NULL,
		  extra_json TEXT,
		  PRIMARY KEY (run_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_works_cite_key
		ON works(cite_key)
		WHERE cite_key IS NOT NULL;

		CREATE TABLE IF NOT EXISTS annotations (
		  run_id        TEXT NOT NULL,
		  work_position INTEGER NOT NULL,
		  seq           INTEGER NOT NULL,
		  page          INTEGER NOT NULL,
		  date          TEXT NOT NULL,
		  text          TEXT NOT NULL,
		  note          TEXT NOT NULL,
		  PRIMARY KEY (run_id, work_position, seq),
		  FOREIGN KEY (run_id, work_position) REFERENCES works(run_id, position) ON DELETE CASCADE
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
