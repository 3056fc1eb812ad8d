package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// Well-known record keys.
const (
	FieldName             = "Name"
	FieldBusinessName     = "Business Name"
	FieldAddress          = "Address"
	FieldLongitude        = "Longitude"
	FieldLatitude         = "Latitude"
	FieldHighScore        = "High Score"
	FieldAverageScore     = "Average Score"
	FieldTotalInspections = "Total Inspections"
)

// NotApplicableText is how an absent average is rendered.
const NotApplicableText = "N/A"

// MetadataRecord maps field names to cleaned values, remembering the order
// in which keys were first set.
type MetadataRecord struct {
	keys   []string
	values map[string]string
}

// NewMetadataRecord returns an empty record.
func NewMetadataRecord() *MetadataRecord {
	return &MetadataRecord{values: make(map[string]string)}
}

// Set stores value under key, overwriting any previous value.
func (m *MetadataRecord) Set(key, value string) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *MetadataRecord) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in first-set order.
func (m *MetadataRecord) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *MetadataRecord) Len() int {
	return len(m.keys)
}

var averageScoreType = reflect.TypeOf(AverageScore{})

// MarshalJSON encodes the record as an object in key order.
func (m *MetadataRecord) MarshalJSON() ([]byte, error) {
	fs := make(Fields, 0, len(m.keys))
	for _, k := range m.keys {
		fs = append(fs, Field{Key: k, Value: m.values[k]})
	}
	return fs.MarshalJSON()
}

// UnmarshalJSON decodes an object of strings, keeping the source key order.
func (m *MetadataRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("models: metadata must be a JSON object")
	}

	*m = MetadataRecord{values: make(map[string]string)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("models: metadata %q: %w", key, err)
		}
		m.Set(key, value)
	}
	_, err = dec.Token()
	return err
}

// AverageScore is either a mean score or "not applicable" when a restaurant
// has never been inspected. The zero value is not applicable.
type AverageScore struct {
	value      float64
	applicable bool
}

// NewAverageScore returns an applicable average.
func NewAverageScore(v float64) AverageScore {
	return AverageScore{value: v, applicable: true}
}

// NotApplicable returns the sentinel average.
func NotApplicable() AverageScore {
	return AverageScore{}
}

// Value returns the mean and whether it is applicable.
func (a AverageScore) Value() (float64, bool) {
	return a.value, a.applicable
}

// IsApplicable reports whether the average holds a number.
func (a AverageScore) IsApplicable() bool {
	return a.applicable
}

func (a AverageScore) String() string {
	if !a.applicable {
		return NotApplicableText
	}
	return strconv.FormatFloat(a.value, 'f', -1, 64)
}

// MarshalJSON encodes a number, or the string "N/A".
func (a AverageScore) MarshalJSON() ([]byte, error) {
	if !a.applicable {
		return json.Marshal(NotApplicableText)
	}
	return json.Marshal(a.value)
}

// UnmarshalJSON accepts either form produced by MarshalJSON.
func (a *AverageScore) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != NotApplicableText {
			return &json.UnmarshalTypeError{Value: "string " + strconv.Quote(s), Type: averageScoreType}
		}
		*a = NotApplicable()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = NewAverageScore(v)
	return nil
}

// ScoreSummary aggregates the inspection scores of one restaurant.
type ScoreSummary struct {
	HighScore        int
	AverageScore     AverageScore
	TotalInspections int
}

// Field is one key/value pair of a flattened record.
type Field struct {
	Key   string
	Value any
}

// Fields is an ordered property list that marshals as a JSON object.
type Fields []Field

// Get returns the value of the first field with the given key.
func (fs Fields) Get(key string) (any, bool) {
	for _, f := range fs {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Without returns a copy of fs lacking the named keys.
func (fs Fields) Without(keys ...string) Fields {
	out := make(Fields, 0, len(fs))
next:
	for _, f := range fs {
		for _, k := range keys {
			if f.Key == k {
				continue next
			}
		}
		out = append(out, f)
	}
	return out
}

// MarshalJSON writes the fields as an object in slice order.
func (fs Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RestaurantRecord is the metadata and score summary of a single listing.
type RestaurantRecord struct {
	Metadata *MetadataRecord
	Scores   ScoreSummary
}

// Fields flattens the record: metadata keys in first-seen order, then the
// score keys. Score keys win over metadata keys of the same name.
func (r *RestaurantRecord) Fields() Fields {
	out := make(Fields, 0, r.metadataLen()+3)
	if r.Metadata != nil {
		for _, k := range r.Metadata.keys {
			switch k {
			case FieldHighScore, FieldAverageScore, FieldTotalInspections:
				continue
			}
			out = append(out, Field{Key: k, Value: r.Metadata.values[k]})
		}
	}
	return append(out,
		Field{Key: FieldHighScore, Value: r.Scores.HighScore},
		Field{Key: FieldAverageScore, Value: r.Scores.AverageScore},
		Field{Key: FieldTotalInspections, Value: r.Scores.TotalInspections},
	)
}

func (r *RestaurantRecord) metadataLen() int {
	if r.Metadata == nil {
		return 0
	}
	return r.Metadata.Len()
}

func (r *RestaurantRecord) metadataValue(key string) string {
	if r.Metadata == nil {
		return ""
	}
	v, _ := r.Metadata.Get(key)
	return v
}

// Name returns the restaurant name, falling back to the page's
// "Business Name" label, or "".
func (r *RestaurantRecord) Name() string {
	if name := r.metadataValue(FieldName); name != "" {
		return name
	}
	return r.metadataValue(FieldBusinessName)
}

// Address returns the full street address, or "".
func (r *RestaurantRecord) Address() string {
	return r.metadataValue(FieldAddress)
}

// MarshalJSON encodes the flattened record with a stable key order.
func (r *RestaurantRecord) MarshalJSON() ([]byte, error) {
	return r.Fields().MarshalJSON()
}
