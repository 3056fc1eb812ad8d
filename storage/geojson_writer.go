package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"restaurant-inspections/models"
)

// GeoJSONWriter writes geocoded features as a single FeatureCollection.
type GeoJSONWriter struct {
	file *os.File
}

// NewGeoJSONWriter creates (or truncates) the file at path.
func NewGeoJSONWriter(path string) (*GeoJSONWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("geojson: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("geojson: create file %q: %w", path, err)
	}
	return &GeoJSONWriter{file: f}, nil
}

// WriteFeatures encodes features as an indented FeatureCollection.
func (g *GeoJSONWriter) WriteFeatures(features []*models.Feature) error {
	enc := json.NewEncoder(g.file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(models.NewFeatureCollection(features)); err != nil {
		return fmt.Errorf("geojson: encode: %w", err)
	}
	return nil
}

func (g *GeoJSONWriter) Close() error {
	return g.file.Close()
}
