package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataRecordKeepsFirstSetOrder(t *testing.T) {
	m := NewMetadataRecord()
	m.Set("Name", "A")
	m.Set("Address", "1 Elm St")
	m.Set("Name", "B")

	assert.Equal(t, []string{"Name", "Address"}, m.Keys())
	v, ok := m.Get("Name")
	assert.True(t, ok)
	assert.Equal(t, "B", v)
}

func TestAverageScoreString(t *testing.T) {
	assert.Equal(t, "N/A", NotApplicable().String())
	assert.Equal(t, "90", NewAverageScore(90).String())
	assert.Equal(t, "87.5", NewAverageScore(87.5).String())

	var zero AverageScore
	assert.False(t, zero.IsApplicable())
}

func TestAverageScoreJSON(t *testing.T) {
	b, err := json.Marshal(NotApplicable())
	require.NoError(t, err)
	assert.Equal(t, `"N/A"`, string(b))

	b, err = json.Marshal(NewAverageScore(12.5))
	require.NoError(t, err)
	assert.Equal(t, `12.5`, string(b))

	var a AverageScore
	require.NoError(t, json.Unmarshal([]byte(`"N/A"`), &a))
	assert.False(t, a.IsApplicable())

	require.NoError(t, json.Unmarshal([]byte(`42`), &a))
	v, ok := a.Value()
	assert.True(t, ok)
	assert.Equal(t, 42.0, v)

	assert.Error(t, json.Unmarshal([]byte(`"lots"`), &a))
}

func TestRestaurantRecordFieldsOrderAndMerge(t *testing.T) {
	m := NewMetadataRecord()
	m.Set("Name", "Joe's Diner")
	m.Set("Address", "1 Elm St")
	m.Set(FieldHighScore, "shadowed")

	r := &RestaurantRecord{
		Metadata: m,
		Scores:   ScoreSummary{HighScore: 95, AverageScore: NewAverageScore(90), TotalInspections: 2},
	}

	fields := r.Fields()
	var keys []string
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"Name", "Address", FieldHighScore, FieldAverageScore, FieldTotalInspections}, keys)

	hs, _ := fields.Get(FieldHighScore)
	assert.Equal(t, 95, hs)
	assert.Equal(t, "Joe's Diner", r.Name())
	assert.Equal(t, "1 Elm St", r.Address())
}

func TestRestaurantRecordJSONIsStable(t *testing.T) {
	m := NewMetadataRecord()
	m.Set("Name", "Noodle Bar")
	m.Set("Phone", "(206) 555-0100")
	r := &RestaurantRecord{Metadata: m, Scores: ScoreSummary{AverageScore: NotApplicable()}}

	first, err := json.Marshal(r)
	require.NoError(t, err)
	second, err := json.Marshal(r)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t,
		`{"Name":"Noodle Bar","Phone":"(206) 555-0100","High Score":0,"Average Score":"N/A","Total Inspections":0}`,
		string(first))
}

func TestFieldsWithout(t *testing.T) {
	fs := Fields{{Key: "A", Value: 1}, {Key: FieldLongitude, Value: "x"}, {Key: FieldLatitude, Value: "y"}}
	assert.Equal(t, Fields{{Key: "A", Value: 1}}, fs.Without(FieldLongitude, FieldLatitude))
}

func TestFeatureCollectionJSON(t *testing.T) {
	f := NewPointFeature(Location{Latitude: 47.6, Longitude: -122.3}, Fields{{Key: "Name", Value: "X"}})
	b, err := json.Marshal(NewFeatureCollection([]*Feature{f}))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[-122.3,47.6]},"properties":{"Name":"X"}}]}`,
		string(b))

	b, err = json.Marshal(NewFeatureCollection(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(b))
}

func TestMetadataRecordJSONKeepsOrder(t *testing.T) {
	m := NewMetadataRecord()
	m.Set("Zeta", "z")
	m.Set("Alpha", "a")

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"Zeta":"z","Alpha":"a"}`, string(b))

	back := NewMetadataRecord()
	require.NoError(t, json.Unmarshal(b, back))
	assert.Equal(t, []string{"Zeta", "Alpha"}, back.Keys())
	v, _ := back.Get("Alpha")
	assert.Equal(t, "a", v)

	assert.Error(t, json.Unmarshal([]byte(`["x"]`), back))
	assert.Error(t, json.Unmarshal([]byte(`{"n":1}`), back))
}
