package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// metadata is TEXT rather than JSONB so key order survives a round trip.
const postgresSchema = `
	CREATE TABLE IF NOT EXISTS restaurant_inspections (
		id                SERIAL PRIMARY KEY,
		name              TEXT        NOT NULL DEFAULT '',
		address           TEXT        NOT NULL DEFAULT '',
		metadata          TEXT        NOT NULL DEFAULT '{}',
		high_score        INTEGER     NOT NULL DEFAULT 0,
		average_score     DOUBLE PRECISION,
		total_inspections INTEGER     NOT NULL DEFAULT 0,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_inspections_name       ON restaurant_inspections(name);
	CREATE INDEX IF NOT EXISTS idx_inspections_high_score ON restaurant_inspections(high_score);
`

// PostgresWriter persists restaurant records to PostgreSQL.
type PostgresWriter struct {
	*sqlStore
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{&sqlStore{
		db: db,
		dialect: dialect{
			name:        "postgres",
			schema:      postgresSchema,
			placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		},
	}}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}
