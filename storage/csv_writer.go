package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"restaurant-inspections/models"
)

// CSVWriter writes restaurant records to a CSV file. The header is the union
// of all record keys in first-seen order. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	return &CSVWriter{file: f, writer: csv.NewWriter(f)}, nil
}

// Write writes a header row followed by one row per record. Keys a record
// lacks are left blank.
func (c *CSVWriter) Write(records []*models.RestaurantRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows := make([]models.Fields, len(records))
	var header []string
	seen := make(map[string]struct{})
	for i, r := range records {
		rows[i] = r.Fields()
		for _, f := range rows[i] {
			if _, ok := seen[f.Key]; !ok {
				seen[f.Key] = struct{}{}
				header = append(header, f.Key)
			}
		}
	}

	if err := c.writer.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, fields := range rows {
		row := make([]string, len(header))
		for j, key := range header {
			if v, ok := fields.Get(key); ok {
				row[j] = fmt.Sprint(v)
			}
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
