package extract

import (
	"strings"

	"restaurant-inspections/document"
)

// cleanCutset is stripped from both ends of a cell's text.
const cleanCutset = " \n:-"

// CleanCell returns the direct text of a cell with surrounding spaces,
// newlines, colons and hyphens removed. A cell without direct text cleans to
// the empty string.
func CleanCell(doc *document.Document, cell document.NodeID) string {
	text, ok := doc.DirectText(cell)
	if !ok {
		return ""
	}
	return CleanText(text)
}

// CleanText applies the cell cutset to raw text.
func CleanText(s string) string {
	return strings.Trim(s, cleanCutset)
}
