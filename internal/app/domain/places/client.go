// Package places wraps the geo-search provider's HTTP+JSON API: nearby
// search, place details and forward geocoding. One network round trip per
// call, no retries; retry policy belongs to the discovery layer.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/reserveit/engine/internal/app/models"
	"github.com/reserveit/engine/internal/pkg/config"
)

// Provider status values that still carry a usable (possibly empty) payload.
const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

type Client struct {
	apiKey         string
	searchBaseURL  string
	detailsBaseURL string
	geocodeBaseURL string
	httpClient     *http.Client
	logger         *zap.Logger
}

func NewClient(cfg config.PlacesConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:         cfg.APIKey,
		searchBaseURL:  cfg.SearchBaseURL,
		detailsBaseURL: cfg.DetailsBaseURL,
		geocodeBaseURL: cfg.GeocodeBaseURL,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
	}
}

// SearchNearby returns the places around center matching the keyword within
// radiusMeters.
func (c *Client) SearchNearby(ctx context.Context, center models.Coordinate, radiusMeters int, keyword string) ([]models.Place, error) {
	if radiusMeters <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive, got %d", models.ErrInvalidRequest, radiusMeters)
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", center.Lat, center.Lng))
	params.Set("radius", fmt.Sprintf("%d", radiusMeters))
	params.Set("keyword", keyword)
	params.Set("key", c.apiKey)

	var payload searchResponse
	if err := c.getJSON(ctx, c.searchBaseURL, params, &payload); err != nil {
		return nil, err
	}
	if payload.Status != statusOK && payload.Status != statusZeroResults {
		return nil, fmt.Errorf("%w: provider status %q", models.ErrUpstream, payload.Status)
	}

	results := make([]models.Place, 0, len(payload.Results))
	for _, rec := range payload.Results {
		results = append(results, rec.toPlace())
	}
	c.logger.Debug("Nearby search completed",
		zap.String("keyword", keyword),
		zap.Int("count", len(results)),
	)
	return results, nil
}

// FetchDetails returns the full projection of one place.
func (c *Client) FetchDetails(ctx context.Context, placeID string) (models.PlaceDetails, error) {
	if placeID == "" {
		return models.PlaceDetails{}, fmt.Errorf("%w: place id is required", models.ErrInvalidRequest)
	}

	params := url.Values{}
	params.Set("placeid", placeID)
	params.Set("key", c.apiKey)

	var payload detailsResponse
	if err := c.getJSON(ctx, c.detailsBaseURL, params, &payload); err != nil {
		return models.PlaceDetails{}, err
	}
	if payload.Status != statusOK {
		return models.PlaceDetails{}, fmt.Errorf("%w: provider status %q", models.ErrUpstream, payload.Status)
	}
	return payload.Result.toDetails(), nil
}

// Geocode resolves free text to a coordinate. A provider response with zero
// results yields (nil, nil): absence of a match is not a failure.
func (c *Client) Geocode(ctx context.Context, freeText string) (*models.Coordinate, error) {
	params := url.Values{}
	params.Set("address", freeText)
	params.Set("key", c.apiKey)

	var payload geocodeResponse
	if err := c.getJSON(ctx, c.geocodeBaseURL, params, &payload); err != nil {
		return nil, err
	}
	if payload.Status != statusOK && payload.Status != statusZeroResults {
		return nil, fmt.Errorf("%w: provider status %q", models.ErrUpstream, payload.Status)
	}
	if len(payload.Results) == 0 {
		return nil, nil
	}
	loc := payload.Results[0].Geometry.Location
	return &models.Coordinate{Lat: loc.Lat, Lng: loc.Lng}, nil
}

func (c *Client) getJSON(ctx context.Context, baseURL string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and cancellations surface here as well.
		return fmt.Errorf("%w: %v", models.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected HTTP status %d", models.ErrUpstream, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", models.ErrDecode, err)
	}
	return nil
}
