package extract

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-inspections/document"
	"restaurant-inspections/models"
	"restaurant-inspections/utils"
)

func parse(t *testing.T, src string) *document.Document {
	t.Helper()
	doc, err := document.Parse([]byte(src), "utf-8")
	require.NoError(t, err)
	return doc
}

func loadFixture(t *testing.T) *document.Document {
	t.Helper()
	raw, err := os.ReadFile("testdata/inspection_page.html")
	require.NoError(t, err)
	doc, err := document.Parse(raw, "utf-8")
	require.NoError(t, err)
	return doc
}

// page wraps listing markup in the container/content column layout.
func page(listings ...string) string {
	return `<html><body><div id="container"><div id="contentcol">` +
		strings.Join(listings, "") +
		`</div></div></body></html>`
}

func metadataRows(rows ...[2]string) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString("<tr><td>" + r[0] + "</td><td>" + r[1] + "</td></tr>")
	}
	return b.String()
}

func inspectionRows(kind string, scores ...string) string {
	var b strings.Builder
	for _, s := range scores {
		b.WriteString("<tr><td>" + kind + "</td><td>01/01/2024</td><td>" + s + "</td><td>Satisfactory</td></tr>")
	}
	return b.String()
}

func listing(id, rows string) string {
	return `<div id="` + id + `~"><table><tbody>` + rows + `</tbody></table></div>`
}

func metadataMap(m *models.MetadataRecord) map[string]string {
	out := make(map[string]string, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		out[k] = v
	}
	return out
}

func firstListing(t *testing.T, doc *document.Document) document.NodeID {
	t.Helper()
	listings, err := Listings(doc)
	require.NoError(t, err)
	require.NotEmpty(t, listings)
	return listings[0]
}

func TestListingsInDocumentOrder(t *testing.T) {
	doc := loadFixture(t)

	listings, err := Listings(doc)
	require.NoError(t, err)

	var ids []string
	for _, l := range listings {
		v, _ := doc.Attr(l, "id")
		ids = append(ids, v)
	}
	assert.Equal(t, []string{"PR0000001~", "PR0000002~", "PR0000004~"}, ids)
}

func TestListingsEmptyPage(t *testing.T) {
	listings, err := Listings(parse(t, page()))
	require.NoError(t, err)
	assert.NotNil(t, listings)
	assert.Empty(t, listings)
}

func TestListingsIgnoresEmptyID(t *testing.T) {
	listings, err := Listings(parse(t, page(`<div id="">x</div>`, `<div id="~">y</div>`)))
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestListingsMissingContainers(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		element string
	}{
		{"no container", `<div id="contentcol"><div id="a~"></div></div>`, ContainerID},
		{"no content column", `<div id="container"><div id="a~"></div></div>`, ContentColumnID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Listings(parse(t, tt.src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrStructure))

			var se *StructureError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.element, se.Element)
		})
	}
}

func TestIsMetadataRowCountsDirectCellsOnly(t *testing.T) {
	doc := parse(t, `<table><tbody>
		<tr id="two"><td>a</td><td>b</td></tr>
		<tr id="nested"><td>a</td><td><table><tr><td>x</td><td>y</td></tr></table></td></tr>
		<tr id="one"><td><table><tr><td>x</td><td>y</td></tr></table></td></tr>
	</tbody></table>`)

	assert.True(t, IsMetadataRow(doc, doc.FindByID(doc.Root(), "two")))
	assert.True(t, IsMetadataRow(doc, doc.FindByID(doc.Root(), "nested")))
	assert.False(t, IsMetadataRow(doc, doc.FindByID(doc.Root(), "one")))
}

func TestClassifierBoundaries(t *testing.T) {
	doc := parse(t, `<table><tbody>
		<tr id="three"><td>Routine Inspection</td><td>b</td><td>10</td></tr>
		<tr id="five"><td>Routine Inspection</td><td>b</td><td>10</td><td>d</td><td>e</td></tr>
		<tr id="header"><td>Inspection Type</td><td>Date</td><td>Score</td><td>Result</td></tr>
		<tr id="routine"><td>Routine Inspection/Field Review</td><td>d</td><td>10</td><td>r</td></tr>
		<tr id="other"><td>Consultation/Education</td><td>d</td><td>0</td><td>r</td></tr>
		<tr id="blank"><td></td><td>d</td><td>0</td><td>r</td></tr>
	</tbody></table>`)

	row := func(id string) document.NodeID { return doc.FindByID(doc.Root(), id) }

	tests := []struct {
		id             string
		wantMetadata   bool
		wantInspection bool
	}{
		{"three", false, false},
		{"five", false, false},
		{"header", false, false},
		{"routine", false, true},
		{"other", false, false},
		{"blank", false, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.wantMetadata, IsMetadataRow(doc, row(tt.id)), "metadata %s", tt.id)
		assert.Equal(t, tt.wantInspection, IsInspectionRow(doc, row(tt.id)), "inspection %s", tt.id)
	}
}

func TestClassifierRejectsNonRows(t *testing.T) {
	doc := parse(t, `<div id="d"><td>a</td><td>b</td></div>`)
	assert.False(t, IsMetadataRow(doc, doc.FindByID(doc.Root(), "d")))
	assert.False(t, IsInspectionRow(doc, doc.FindByID(doc.Root(), "d")))
}

func TestCleanCell(t *testing.T) {
	doc := parse(t, "<table><tr>"+
		"<td id=\"decorated\"> :-Name- \n</td>"+
		"<td id=\"inner\">Seattle - WA</td>"+
		"<td id=\"empty\"></td>"+
		"<td id=\"mixed\">a<b>b</b></td>"+
		"</tr></table>")

	tests := []struct {
		id   string
		want string
	}{
		{"decorated", "Name"},
		{"inner", "Seattle - WA"},
		{"empty", ""},
		{"mixed", ""},
	}

	for _, tt := range tests {
		got := CleanCell(doc, doc.FindByID(doc.Root(), tt.id))
		if got != tt.want {
			t.Errorf("CleanCell(%s) = %q; want %q", tt.id, got, tt.want)
		}
	}
}

func TestExtractMetadataAddressContinuation(t *testing.T) {
	doc := parse(t, page(listing("a", metadataRows(
		[2]string{"Address", "123 Main St"},
		[2]string{"", "Seattle, WA"},
	))))

	md, err := ExtractMetadata(doc, firstListing(t, doc))
	require.NoError(t, err)

	address, _ := md.Get(models.FieldAddress)
	assert.Equal(t, "123 Main St, Seattle, WA", address)
}

func TestExtractMetadataLastWriteWins(t *testing.T) {
	doc := parse(t, page(listing("a", metadataRows(
		[2]string{"Name", "First"},
		[2]string{"Phone", "555"},
		[2]string{"Name:", "Second"},
	))))

	md, err := ExtractMetadata(doc, firstListing(t, doc))
	require.NoError(t, err)

	want := map[string]string{"Name": "Second", "Phone": "555"}
	if diff := cmp.Diff(want, metadataMap(md)); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Name", "Phone"}, md.Keys())
}

func TestExtractMetadataMissingAddress(t *testing.T) {
	doc := parse(t, page(listing("a", metadataRows(
		[2]string{"", "Seattle, WA"},
		[2]string{"Address", "1 Elm St"},
	))))

	_, err := ExtractMetadata(doc, firstListing(t, doc))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAddress))

	var mae *MissingAddressError
	require.True(t, errors.As(err, &mae))
	assert.Equal(t, "Seattle, WA", mae.Value)
}

func TestExtractMetadataSkipsNestedRows(t *testing.T) {
	doc := loadFixture(t)

	md, err := ExtractMetadata(doc, firstListing(t, doc))
	require.NoError(t, err)

	want := map[string]string{
		"Business Name":     "Joe's Diner",
		"Business Category": "Seating 0-12 - Risk Category III",
		"Address":           "1 Elm St, Seattle, WA 98109",
		"Phone":             "(206) 555-0100",
		"Longitude":         "122.3517", // the hyphen cutset eats the sign
		"Latitude":          "47.6205",
	}
	if diff := cmp.Diff(want, metadataMap(md)); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractMetadataWithoutTableBody(t *testing.T) {
	doc := parse(t, page(`<div id="a~"><p>nothing here</p></div>`))

	_, err := ExtractMetadata(doc, firstListing(t, doc))
	assert.True(t, errors.Is(err, ErrStructure))
}

func TestExtractScores(t *testing.T) {
	tests := []struct {
		name   string
		scores []string
		want   models.ScoreSummary
	}{
		{
			name: "no inspections",
			want: models.ScoreSummary{HighScore: 0, AverageScore: models.NotApplicable(), TotalInspections: 0},
		},
		{
			name:   "two inspections",
			scores: []string{"85", "95"},
			want:   models.ScoreSummary{HighScore: 95, AverageScore: models.NewAverageScore(90), TotalInspections: 2},
		},
		{
			name:   "uneven mean",
			scores: []string{"10", "0", "5"},
			want:   models.ScoreSummary{HighScore: 10, AverageScore: models.NewAverageScore(5), TotalInspections: 3},
		},
		{
			name:   "all zero keeps zero high score",
			scores: []string{"0", "0"},
			want:   models.ScoreSummary{HighScore: 0, AverageScore: models.NewAverageScore(0), TotalInspections: 2},
		},
		{
			name:   "padded scores",
			scores: []string{" 7 ", "\n8"},
			want:   models.ScoreSummary{HighScore: 8, AverageScore: models.NewAverageScore(7.5), TotalInspections: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := metadataRows([2]string{"Name", "X"}) + inspectionRows("Routine Inspection", tt.scores...)
			doc := parse(t, page(listing("a", rows)))

			got, err := ExtractScores(doc, firstListing(t, doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractScoresRejectsBadScore(t *testing.T) {
	tests := []struct {
		name  string
		score string
	}{
		{"not a number", "ten"},
		{"decimal", "9.5"},
		{"missing text", ""},
		{"nested markup", "<b>1</b><i>2</i>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, page(listing("a", inspectionRows("Routine Inspection", "10", tt.score))))

			_, err := ExtractScores(doc, firstListing(t, doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrScoreParse))

			var spe *ScoreParseError
			require.True(t, errors.As(err, &spe))
			assert.Equal(t, 1, spe.Row)
		})
	}
}

func TestExtractEndToEnd(t *testing.T) {
	rows := metadataRows([2]string{"Name", "Joe's Diner"}, [2]string{"Address", "1 Elm St"}) +
		inspectionRows("Routine Inspection", "85", "95")
	doc := parse(t, page(listing("joe", rows)))

	records, err := NewExtractor(utils.NewNopLogger(), 1).Extract(doc, All())
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "Joe's Diner", r.Name())
	assert.Equal(t, "1 Elm St", r.Address())
	assert.Equal(t, models.ScoreSummary{
		HighScore:        95,
		AverageScore:     models.NewAverageScore(90),
		TotalInspections: 2,
	}, r.Scores)
}

func TestExtractFixture(t *testing.T) {
	doc := loadFixture(t)

	records, err := NewExtractor(utils.NewNopLogger(), 1).Extract(doc, All())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Joe's Diner", records[0].Name())
	assert.Equal(t, models.ScoreSummary{HighScore: 95, AverageScore: models.NewAverageScore(90), TotalInspections: 2}, records[0].Scores)

	assert.Equal(t, "22 Pine St, Seattle, WA 98101", records[1].Address())
	assert.Equal(t, models.ScoreSummary{AverageScore: models.NotApplicable()}, records[1].Scores)

	assert.Equal(t, models.ScoreSummary{HighScore: 10, AverageScore: models.NewAverageScore(5), TotalInspections: 3}, records[2].Scores)
}

func TestExtractZeroListings(t *testing.T) {
	records, err := NewExtractor(utils.NewNopLogger(), 4).Extract(parse(t, page()), All())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestExtractStructureErrorIsFatal(t *testing.T) {
	records, err := NewExtractor(utils.NewNopLogger(), 1).Extract(parse(t, `<p>moved</p>`), All())
	assert.Nil(t, records)
	assert.True(t, errors.Is(err, ErrStructure))
}

func TestExtractSelectionAppliesFirst(t *testing.T) {
	doc := parse(t, page(
		listing("a", metadataRows([2]string{"Name", "A"})),
		listing("b", metadataRows([2]string{"", "orphan"})),
		listing("c", metadataRows([2]string{"Name", "C"})),
	))

	records, err := NewExtractor(utils.NewNopLogger(), 1).Extract(doc, First(1))
	require.NoError(t, err, "the broken second listing is never extracted")
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].Name())
}

func TestExtractIsolatesListingFailures(t *testing.T) {
	doc := parse(t, page(
		listing("a", metadataRows([2]string{"Name", "A"})),
		listing("b", metadataRows([2]string{"", "orphan"})),
		listing("c", metadataRows([2]string{"Name", "C"})+inspectionRows("Routine Inspection", "oops")),
		listing("d", metadataRows([2]string{"Name", "D"})),
	))

	records, err := NewExtractor(utils.NewNopLogger(), 1).Extract(doc, All())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAddress))
	assert.True(t, errors.Is(err, ErrScoreParse))

	var le *ListingError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 1, le.Index)

	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].Name())
	assert.Equal(t, "D", records[1].Name())
}

func TestExtractConcurrentMatchesSequential(t *testing.T) {
	var listings []string
	for i := 0; i < 40; i++ {
		name := string(rune('A'+i%26)) + strings.Repeat("x", i)
		rows := metadataRows([2]string{"Name", name}) + inspectionRows("Routine Inspection", "1", "2", "3")
		listings = append(listings, listing(name, rows))
	}
	doc := parse(t, page(listings...))

	seq, err := NewExtractor(utils.NewNopLogger(), 1).Extract(doc, All())
	require.NoError(t, err)
	par, err := NewExtractor(utils.NewNopLogger(), 8).Extract(doc, All())
	require.NoError(t, err)

	require.Len(t, par, len(seq))
	for i := range seq {
		assert.Equal(t, seq[i].Name(), par[i].Name())
		assert.Equal(t, seq[i].Scores, par[i].Scores)
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	doc := loadFixture(t)
	ex := NewExtractor(utils.NewNopLogger(), 1)

	first, err := ex.Extract(doc, All())
	require.NoError(t, err)
	second, err := ex.Extract(doc, All())
	require.NoError(t, err)

	for i := range first {
		a, err := first[i].MarshalJSON()
		require.NoError(t, err)
		b, err := second[i].MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestSelectionApply(t *testing.T) {
	ids := []document.NodeID{1, 2, 3}

	assert.Equal(t, ids, All().Apply(ids))
	assert.Equal(t, []document.NodeID{1, 2}, First(2).Apply(ids))
	assert.Equal(t, ids, First(10).Apply(ids))
	assert.Equal(t, ids, First(-1).Apply(ids))
}
