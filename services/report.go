package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"restaurant-inspections/models"
	"restaurant-inspections/utils"
)

// SortKey names a display ordering for restaurant records.
type SortKey string

const (
	SortHighScore SortKey = "highscore"
	SortAverage   SortKey = "average"
	SortMost      SortKey = "most"
)

// ParseSortKey validates a user supplied ordering name.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortHighScore, SortAverage, SortMost:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q (want highscore, average or most)", s)
	}
}

type ReportService struct {
	logger *utils.Logger
}

func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

// Sort returns a copy of records ordered by key, highest first, or lowest
// first when reverse is set. Ties keep page order. Restaurants without an
// average always sort after those with one.
func (s *ReportService) Sort(records []*models.RestaurantRecord, key SortKey, reverse bool) []*models.RestaurantRecord {
	out := make([]*models.RestaurantRecord, len(records))
	copy(out, records)

	less := func(a, b *models.RestaurantRecord) bool {
		switch key {
		case SortAverage:
			av, _ := a.Scores.AverageScore.Value()
			bv, _ := b.Scores.AverageScore.Value()
			return av < bv
		case SortMost:
			return a.Scores.TotalInspections < b.Scores.TotalInspections
		default:
			return a.Scores.HighScore < b.Scores.HighScore
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if key == SortAverage {
			aok, bok := a.Scores.AverageScore.IsApplicable(), b.Scores.AverageScore.IsApplicable()
			if aok != bok {
				return aok
			}
		}
		if reverse {
			return less(a, b)
		}
		return less(b, a)
	})
	return out
}

// Select returns the first n records, or all of them when n is 0 or less.
func Select(records []*models.RestaurantRecord, n int) []*models.RestaurantRecord {
	if n <= 0 || n >= len(records) {
		return records
	}
	return records[:n]
}

// Generate computes summary statistics over records.
func (s *ReportService) Generate(records []*models.RestaurantRecord) *models.InspectionReport {
	report := &models.InspectionReport{
		TotalRestaurants: len(records),
		MeanAverageScore: models.NotApplicable(),
	}

	var sum float64
	for _, r := range records {
		report.TotalInspections += r.Scores.TotalInspections
		if avg, ok := r.Scores.AverageScore.Value(); ok {
			report.Inspected++
			sum += avg
		}
		if report.HighestScore == nil || r.Scores.HighScore > report.HighestScore.Scores.HighScore {
			report.HighestScore = r
		}
	}
	if report.Inspected > 0 {
		report.MeanAverageScore = models.NewAverageScore(round2(sum / float64(report.Inspected)))
	}

	s.logger.Debug("[report] %d restaurants, %d inspected", report.TotalRestaurants, report.Inspected)
	return report
}

// Print renders records and the summary as tables.
func (s *ReportService) Print(w io.Writer, records []*models.RestaurantRecord, r *models.InspectionReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Restaurant Inspections")
	t.AppendHeader(table.Row{"#", "Name", "Address", "High Score", "Average Score", "Inspections"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 40},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	for i, rec := range records {
		t.AppendRow(table.Row{
			i + 1,
			rec.Name(),
			rec.Address(),
			rec.Scores.HighScore,
			formatAverage(rec.Scores.AverageScore),
			rec.Scores.TotalInspections,
		})
	}
	t.Render()

	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetStyle(table.StyleLight)
	summary.AppendRows([]table.Row{
		{"Restaurants", r.TotalRestaurants},
		{"Inspected", r.Inspected},
		{"Inspections", r.TotalInspections},
		{"Mean average score", formatAverage(r.MeanAverageScore)},
	})
	if r.HighestScore != nil {
		summary.AppendRow(table.Row{"Highest score", fmt.Sprintf("%d (%s)", r.HighestScore.Scores.HighScore, r.HighestScore.Name())})
	}
	summary.Render()
}

func formatAverage(a models.AverageScore) string {
	v, ok := a.Value()
	if !ok {
		return models.NotApplicableText
	}
	return fmt.Sprintf("%.2f", v)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
