package extract

import (
	"restaurant-inspections/document"
)

const (
	// ContainerID is the id of the page's outer layout element.
	ContainerID = "container"
	// ContentColumnID is the id of the results column inside the container.
	ContentColumnID = "contentcol"
	// ListingMarker ends the id of every restaurant listing block.
	ListingMarker = '~'
)

// Listings returns the restaurant listing blocks of a results page in
// document order. A page with no results yields an empty slice.
func Listings(doc *document.Document) ([]document.NodeID, error) {
	container := doc.FindByID(doc.Root(), ContainerID)
	if container == document.NoNode {
		return nil, &StructureError{Element: ContainerID}
	}

	column := doc.FindByID(container, ContentColumnID)
	if column == document.NoNode {
		return nil, &StructureError{Element: ContentColumnID}
	}

	listings := doc.FindAll(column, isListing)
	if listings == nil {
		listings = []document.NodeID{}
	}
	return listings, nil
}

func isListing(doc *document.Document, id document.NodeID) bool {
	if !doc.IsElement(id, "") {
		return false
	}
	v, ok := doc.Attr(id, "id")
	return ok && len(v) > 0 && v[len(v)-1] == ListingMarker
}
