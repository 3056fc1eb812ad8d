package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS restaurant_inspections (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		name              TEXT    NOT NULL DEFAULT '',
		address           TEXT    NOT NULL DEFAULT '',
		metadata          TEXT    NOT NULL DEFAULT '{}',
		high_score        INTEGER NOT NULL DEFAULT 0,
		average_score     REAL,
		total_inspections INTEGER NOT NULL DEFAULT 0,
		created_at        TEXT    NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_inspections_name       ON restaurant_inspections(name);
	CREATE INDEX IF NOT EXISTS idx_inspections_high_score ON restaurant_inspections(high_score);
`

// SQLiteWriter persists restaurant records to a local SQLite file.
type SQLiteWriter struct {
	*sqlStore
}

// NewSQLiteWriter opens (or creates) the database at path and runs schema
// migrations.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	sw := &SQLiteWriter{&sqlStore{
		db: db,
		dialect: dialect{
			name:        "sqlite",
			schema:      sqliteSchema,
			placeholder: func(int) string { return "?" },
		},
	}}
	if err := sw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}

	return sw, nil
}
