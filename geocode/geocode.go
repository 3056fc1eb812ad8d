// Package geocode locates restaurant addresses and wraps records as GeoJSON
// features.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"restaurant-inspections/models"
	"restaurant-inspections/utils"
)

// ErrNoResults is returned when the service knows no location for an address.
var ErrNoResults = errors.New("geocode: no results")

// Geocoder resolves a postal address to a location.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*models.Location, error)
}

// GoogleClient talks to a Google Geocoding compatible endpoint.
type GoogleClient struct {
	http    *resty.Client
	baseURL string
	apiKey  string
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// NewGoogleClient creates a client for the endpoint at baseURL.
func NewGoogleClient(baseURL, apiKey string, timeout time.Duration) *GoogleClient {
	return &GoogleClient{
		http:    resty.New().SetTimeout(timeout),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Geocode returns the first result for address.
func (c *GoogleClient) Geocode(ctx context.Context, address string) (*models.Location, error) {
	var body googleResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"address": address, "key": c.apiKey}).
		SetResult(&body).
		Get(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("geocode: request: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("geocode: unexpected status %s", res.Status())
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, ErrNoResults
	default:
		return nil, fmt.Errorf("geocode: status %s: %s", body.Status, body.ErrorMessage)
	}
	if len(body.Results) == 0 {
		return nil, ErrNoResults
	}

	first := body.Results[0]
	return &models.Location{
		Latitude:         first.Geometry.Location.Lat,
		Longitude:        first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
	}, nil
}

// CachingGeocoder remembers answers per address so restaurants sharing a
// building are looked up once. It is safe for concurrent use.
type CachingGeocoder struct {
	next Geocoder

	mu   sync.Mutex
	seen map[string]*models.Location
}

// NewCachingGeocoder wraps next with an in-memory cache.
func NewCachingGeocoder(next Geocoder) *CachingGeocoder {
	return &CachingGeocoder{next: next, seen: make(map[string]*models.Location)}
}

func (c *CachingGeocoder) Geocode(ctx context.Context, address string) (*models.Location, error) {
	c.mu.Lock()
	loc, ok := c.seen[address]
	c.mu.Unlock()
	if ok {
		return loc, nil
	}

	loc, err := c.next.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.seen[address] = loc
	c.mu.Unlock()
	return loc, nil
}

// Annotate geocodes a record's address and wraps the record as a feature.
// Records without an address yield a nil feature and no error. The record's
// own Longitude/Latitude text is dropped in favour of the geometry.
func Annotate(ctx context.Context, g Geocoder, record *models.RestaurantRecord) (*models.Feature, error) {
	address := record.Address()
	if address == "" {
		return nil, nil
	}

	loc, err := g.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	props := record.Fields().Without(models.FieldLongitude, models.FieldLatitude)
	if loc.FormattedAddress != "" {
		props = append(props, models.Field{Key: "Formatted Address", Value: loc.FormattedAddress})
	}
	return models.NewPointFeature(*loc, props), nil
}

// Annotator geocodes many records through a rate-limited worker pool.
type Annotator struct {
	geocoder    Geocoder
	logger      *utils.Logger
	concurrency int
	rateLimitMs int
}

// NewAnnotator creates an Annotator.
func NewAnnotator(g Geocoder, logger *utils.Logger, concurrency, rateLimitMs int) *Annotator {
	return &Annotator{geocoder: g, logger: logger, concurrency: concurrency, rateLimitMs: rateLimitMs}
}

// AnnotateAll returns one feature per record that could be located, in
// record order. Records that cannot be geocoded are logged and skipped.
func (a *Annotator) AnnotateAll(ctx context.Context, records []*models.RestaurantRecord) []*models.Feature {
	features := make([]*models.Feature, len(records))
	pool := utils.NewWorkerPool(a.concurrency, a.rateLimitMs)

	for i, rec := range records {
		i, rec := i, rec
		pool.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			f, err := Annotate(ctx, a.geocoder, rec)
			if err != nil {
				a.logger.Warn("[geocode] Skipping %q: %v", rec.Name(), err)
				return
			}
			if f == nil {
				a.logger.Debug("[geocode] No address for %q", rec.Name())
				return
			}
			features[i] = f
		})
	}
	pool.Wait()

	out := make([]*models.Feature, 0, len(features))
	for _, f := range features {
		if f != nil {
			out = append(out, f)
		}
	}
	a.logger.Info("[geocode] Located %d of %d restaurants", len(out), len(records))
	return out
}
