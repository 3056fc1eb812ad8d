package extract

import (
	"strconv"
	"strings"

	"restaurant-inspections/document"
	"restaurant-inspections/models"
)

// scoreCell is the position of the score among an inspection row's cells.
const scoreCell = 2

// ExtractScores summarizes the inspection rows anywhere inside a listing.
// A listing that was never inspected has a high score of 0 and an average
// that is not applicable.
func ExtractScores(doc *document.Document, listing document.NodeID) (models.ScoreSummary, error) {
	rows := doc.FindAll(listing, IsInspectionRow)

	var high, total int
	for i, row := range rows {
		score, err := rowScore(doc, row, i)
		if err != nil {
			return models.ScoreSummary{}, err
		}
		total += score
		if score > high {
			high = score
		}
	}

	summary := models.ScoreSummary{
		HighScore:        high,
		AverageScore:     models.NotApplicable(),
		TotalInspections: len(rows),
	}
	if len(rows) > 0 {
		summary.AverageScore = models.NewAverageScore(float64(total) / float64(len(rows)))
	}
	return summary, nil
}

func rowScore(doc *document.Document, row document.NodeID, index int) (int, error) {
	cells := doc.ElementsByTag(row, "td")
	text, ok := doc.DirectText(cells[scoreCell])
	if !ok {
		return 0, &ScoreParseError{Row: index}
	}
	score, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, &ScoreParseError{Row: index, Text: text, Err: err}
	}
	return score, nil
}
