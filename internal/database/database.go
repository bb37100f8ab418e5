package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

// New opens (or creates) the sqlite database at path.
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite allows one writer; serialize through a single connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

// Initialize creates the schema if it does not exist.
func (db *DB) Initialize() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS research_history (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			topic        TEXT NOT NULL,
			cache_key    TEXT NOT NULL,
			content_type TEXT NOT NULL,
			platform     TEXT NOT NULL,
			language     TEXT NOT NULL,
			from_cache   INTEGER NOT NULL DEFAULT 0,
			duration_ms  INTEGER NOT NULL DEFAULT 0,
			created_at   DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_history_created ON research_history(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_history_key ON research_history(cache_key);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Println("✅ [DB] Schema initialized")
	return nil
}
