package extract

import (
	"strings"

	"restaurant-inspections/document"
)

const inspectionToken = "Inspection"

// IsMetadataRow reports whether id is a table row with exactly two direct
// cells. Cells of nested tables are not counted.
func IsMetadataRow(doc *document.Document, id document.NodeID) bool {
	return doc.IsElement(id, "tr") && len(doc.ChildElements(id, "td")) == 2
}

// IsInspectionRow reports whether id is a table row describing one
// inspection: four cells, with a first cell mentioning "Inspection" without
// starting with it. The exclusion drops column headers like "Inspection Type".
func IsInspectionRow(doc *document.Document, id document.NodeID) bool {
	if !doc.IsElement(id, "tr") {
		return false
	}
	cells := doc.ElementsByTag(id, "td")
	if len(cells) != 4 {
		return false
	}

	content, ok := doc.DirectText(cells[0])
	if !ok || !strings.Contains(content, inspectionToken) {
		return false
	}
	words := strings.Fields(content)
	return len(words) > 0 && words[0] != inspectionToken
}
