package models

// Location is a geocoder's answer for one address.
type Location struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
}

// Geometry is a GeoJSON point; coordinates are [longitude, latitude].
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Feature wraps a restaurant record as a GeoJSON feature.
type Feature struct {
	Type       string   `json:"type"`
	Geometry   Geometry `json:"geometry"`
	Properties Fields   `json:"properties"`
}

// FeatureCollection is the top-level GeoJSON document.
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// NewPointFeature builds a feature located at loc.
func NewPointFeature(loc Location, props Fields) *Feature {
	return &Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: [2]float64{loc.Longitude, loc.Latitude},
		},
		Properties: props,
	}
}

// NewFeatureCollection wraps features; a nil slice encodes as [].
func NewFeatureCollection(features []*Feature) *FeatureCollection {
	if features == nil {
		features = []*Feature{}
	}
	return &FeatureCollection{Type: "FeatureCollection", Features: features}
}
