package storage

import "restaurant-inspections/models"

// RecordWriter is the interface any restaurant record sink must satisfy.
type RecordWriter interface {
	Write(records []*models.RestaurantRecord) error
	Close() error
}

// FeatureWriter is the interface for persisting geocoded features.
type FeatureWriter interface {
	WriteFeatures(features []*models.Feature) error
	Close() error
}
