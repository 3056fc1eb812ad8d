package extract

import (
	"restaurant-inspections/document"
	"restaurant-inspections/models"
)

// ExtractMetadata builds the key/value record of a listing from the two-cell
// rows sitting directly under its first table body. A row with an empty key
// continues the address on the previous line.
func ExtractMetadata(doc *document.Document, listing document.NodeID) (*models.MetadataRecord, error) {
	tbody := doc.FindFirst(listing, func(d *document.Document, n document.NodeID) bool {
		return d.IsElement(n, "tbody")
	})
	if tbody == document.NoNode {
		return nil, &StructureError{Element: "tbody"}
	}

	acc := newMetadataAccumulator()
	for _, row := range doc.ChildElements(tbody, "") {
		if !IsMetadataRow(doc, row) {
			continue
		}
		cells := doc.ChildElements(row, "td")
		if err := acc.add(CleanCell(doc, cells[0]), CleanCell(doc, cells[1])); err != nil {
			return nil, err
		}
	}
	return acc.record, nil
}

// metadataAccumulator folds metadata rows into a record, one listing at a time.
type metadataAccumulator struct {
	record *models.MetadataRecord
}

func newMetadataAccumulator() *metadataAccumulator {
	return &metadataAccumulator{record: models.NewMetadataRecord()}
}

func (a *metadataAccumulator) add(key, value string) error {
	if key != "" {
		a.record.Set(key, value)
		return nil
	}

	address, ok := a.record.Get(models.FieldAddress)
	if !ok {
		return &MissingAddressError{Value: value}
	}
	a.record.Set(models.FieldAddress, address+", "+value)
	return nil
}
