// Package extract turns a parsed inspection results page into restaurant
// records: it finds the listing blocks, sorts their rows into metadata and
// inspection history, and summarizes the inspection scores.
package extract

import (
	"errors"
	"fmt"

	"restaurant-inspections/document"
	"restaurant-inspections/models"
	"restaurant-inspections/utils"
)

// Selection decides how many listings are extracted. A Limit of 0 or less
// selects every listing; otherwise the first Limit listings in page order.
type Selection struct {
	Limit int
}

// All selects every listing.
func All() Selection { return Selection{} }

// First selects the first n listings.
func First(n int) Selection { return Selection{Limit: n} }

// Apply trims listings according to the selection.
func (s Selection) Apply(listings []document.NodeID) []document.NodeID {
	if s.Limit <= 0 || s.Limit >= len(listings) {
		return listings
	}
	return listings[:s.Limit]
}

// Extractor runs the extraction pipeline over a whole page.
type Extractor struct {
	logger  *utils.Logger
	workers int
}

// NewExtractor creates an Extractor. With workers above 1, listings are
// extracted concurrently; output order is unaffected.
func NewExtractor(logger *utils.Logger, workers int) *Extractor {
	return &Extractor{logger: logger, workers: workers}
}

// Extract returns one record per selected listing, in page order.
//
// A missing container or content column fails the whole page with a
// *StructureError. Listings that fail individually are left out of the
// result and reported together as *ListingError values joined into the
// returned error; the records of the other listings are still returned.
func (e *Extractor) Extract(doc *document.Document, sel Selection) ([]*models.RestaurantRecord, error) {
	listings, err := Listings(doc)
	if err != nil {
		return nil, err
	}
	selected := sel.Apply(listings)
	e.logger.Debug("[extract] Found %d listings, extracting %d", len(listings), len(selected))

	records := make([]*models.RestaurantRecord, len(selected))
	errs := make([]error, len(selected))

	if e.workers > 1 && len(selected) > 1 {
		pool := utils.NewWorkerPool(e.workers, 0)
		for i, listing := range selected {
			i, listing := i, listing
			pool.Submit(func() {
				records[i], errs[i] = ExtractListing(doc, listing)
			})
		}
		pool.Wait()
	} else {
		for i, listing := range selected {
			records[i], errs[i] = ExtractListing(doc, listing)
		}
	}

	out := make([]*models.RestaurantRecord, 0, len(selected))
	var failures []error
	for i := range selected {
		if errs[i] != nil {
			failures = append(failures, &ListingError{Index: i, Err: errs[i]})
			continue
		}
		out = append(out, records[i])
	}

	e.logger.Debug("[extract] Extracted %d records (%d failed)", len(out), len(failures))
	return out, errors.Join(failures...)
}

// ExtractListing builds the record of a single listing.
func ExtractListing(doc *document.Document, listing document.NodeID) (*models.RestaurantRecord, error) {
	metadata, err := ExtractMetadata(doc, listing)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	scores, err := ExtractScores(doc, listing)
	if err != nil {
		return nil, fmt.Errorf("scores: %w", err)
	}
	return &models.RestaurantRecord{Metadata: metadata, Scores: scores}, nil
}
