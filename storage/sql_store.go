package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"restaurant-inspections/models"
)

const recordColumns = 6

// dialect captures the few statements that differ between SQL backends.
type dialect struct {
	name        string
	schema      string
	placeholder func(n int) string
}

// sqlStore persists restaurant records to the restaurant_inspections table.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
}

func (s *sqlStore) migrate() error {
	_, err := s.db.Exec(s.dialect.schema)
	return err
}

// Clear deletes all existing records from the table.
func (s *sqlStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM restaurant_inspections"); err != nil {
		return fmt.Errorf("%s: clear: %w", s.dialect.name, err)
	}
	return nil
}

// Write replaces the stored records with records, in batches.
func (s *sqlStore) Write(records []*models.RestaurantRecord) error {
	if len(records) == 0 {
		return nil
	}

	if err := s.Clear(); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.insertBatch(records[i:end]); err != nil {
			return fmt.Errorf("%s: insert: %w", s.dialect.name, err)
		}
	}
	return nil
}

func (s *sqlStore) insertBatch(batch []*models.RestaurantRecord) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*recordColumns)

	for idx, r := range batch {
		base := idx * recordColumns
		ph := make([]string, recordColumns)
		for j := range ph {
			ph[j] = s.dialect.placeholder(base + j + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")

		metadata := []byte("{}")
		if r.Metadata != nil {
			b, err := json.Marshal(r.Metadata)
			if err != nil {
				return err
			}
			metadata = b
		}

		var avg sql.NullFloat64
		if v, ok := r.Scores.AverageScore.Value(); ok {
			avg = sql.NullFloat64{Float64: v, Valid: true}
		}

		valueArgs = append(valueArgs,
			r.Name(), r.Address(), string(metadata),
			r.Scores.HighScore, avg, r.Scores.TotalInspections)
	}

	query := fmt.Sprintf(`
		INSERT INTO restaurant_inspections (name, address, metadata, high_score, average_score, total_inspections)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := s.db.Exec(query, valueArgs...)
	return err
}

// FetchAll retrieves all stored records in insertion order.
func (s *sqlStore) FetchAll() ([]*models.RestaurantRecord, error) {
	rows, err := s.db.Query(`
		SELECT metadata, high_score, average_score, total_inspections
		FROM restaurant_inspections
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch all: %w", s.dialect.name, err)
	}
	defer rows.Close()

	var records []*models.RestaurantRecord
	for rows.Next() {
		var (
			metadata string
			avg      sql.NullFloat64
			r        = &models.RestaurantRecord{Metadata: models.NewMetadataRecord()}
		)
		if err := rows.Scan(&metadata, &r.Scores.HighScore, &avg, &r.Scores.TotalInspections); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", s.dialect.name, err)
		}
		if err := json.Unmarshal([]byte(metadata), r.Metadata); err != nil {
			return nil, fmt.Errorf("%s: decode metadata: %w", s.dialect.name, err)
		}
		r.Scores.AverageScore = models.NotApplicable()
		if avg.Valid {
			r.Scores.AverageScore = models.NewAverageScore(avg.Float64)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
