// Package discovery orchestrates multi-category searches against the
// geo-search provider and merges the results into one deduplicated place set.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/reserveit/engine/internal/app/models"
)

// CategoryAll fans the search out over every bookable category.
const CategoryAll = "all"

// defaultCategories is the venue-type set behind CategoryAll.
var defaultCategories = []string{
	"restaurant",
	"hotel",
	"cinema",
	"sports complex",
	"event venue",
	"theater",
	"conference center",
}

// GeoSearcher is the slice of the places client the orchestrator needs.
type GeoSearcher interface {
	SearchNearby(ctx context.Context, center models.Coordinate, radiusMeters int, keyword string) ([]models.Place, error)
	Geocode(ctx context.Context, freeText string) (*models.Coordinate, error)
}

type Service interface {
	Discover(ctx context.Context, center models.Coordinate, radiusMeters int, category string) ([]models.Place, error)
	ResolveCity(ctx context.Context, name string) (*models.Coordinate, error)
}

type ServiceImpl struct {
	client      GeoSearcher
	logger      *zap.Logger
	categories  []string
	maxInFlight int
}

func NewService(client GeoSearcher, maxInFlight int, logger *zap.Logger) *ServiceImpl {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &ServiceImpl{
		client:      client,
		logger:      logger,
		categories:  defaultCategories,
		maxInFlight: maxInFlight,
	}
}

// Discover searches around center and returns the merged, deduplicated place
// set. With CategoryAll the category searches run concurrently; a failing
// category is dropped from the result rather than failing the whole call, and
// only when every category fails does Discover fail.
func (s *ServiceImpl) Discover(ctx context.Context, center models.Coordinate, radiusMeters int, category string) ([]models.Place, error) {
	ctx, span := otel.Tracer("DiscoveryService").Start(ctx, "Discover", trace.WithAttributes(
		attribute.String("search.category", category),
		attribute.Int("search.radius_m", radiusMeters),
	))
	defer span.End()

	l := s.logger.With(
		zap.String("method", "Discover"),
		zap.String("category", category),
		zap.Int("radius_m", radiusMeters),
	)

	categories := []string{category}
	if category == CategoryAll {
		categories = s.categories
	}
	span.SetAttributes(attribute.Int("categories.count", len(categories)))

	// Merge map and failure list are local to this call; the collector side
	// is serialized by mu so duplicate ids resolve last-writer-wins in
	// completion order.
	merged := make(map[string]models.Place)
	var failures []error
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.maxInFlight)
	for _, cat := range categories {
		cat := cat
		g.Go(func() error {
			found, err := s.client.SearchNearby(ctx, center, radiusMeters, cat)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				l.Warn("Category search failed", zap.String("search_category", cat), zap.Error(err))
				failures = append(failures, fmt.Errorf("category %q: %w", cat, err))
				return nil
			}
			for _, place := range found {
				merged[place.ID] = place
			}
			return nil
		})
	}
	// Workers never return errors, so Wait is a pure join: every category
	// settles before we inspect the outcome.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "Discovery cancelled")
		return nil, fmt.Errorf("%w: %v", models.ErrTransport, err)
	}

	if len(failures) == len(categories) {
		err := fmt.Errorf("%w: %w", models.ErrDiscoveryFailed, errors.Join(failures...))
		span.RecordError(err)
		span.SetStatus(codes.Error, "All category searches failed")
		return nil, err
	}

	results := make([]models.Place, 0, len(merged))
	for _, place := range merged {
		results = append(results, place)
	}

	l.Info("Discovery completed",
		zap.Int("places", len(results)),
		zap.Int("failed_categories", len(failures)),
	)
	span.SetAttributes(attribute.Int("places.count", len(results)))
	span.SetStatus(codes.Ok, "Discovery completed")

	return results, nil
}

// ResolveCity turns a free-text location into a coordinate. A nil coordinate
// with nil error means the provider knows no matching location.
func (s *ServiceImpl) ResolveCity(ctx context.Context, name string) (*models.Coordinate, error) {
	ctx, span := otel.Tracer("DiscoveryService").Start(ctx, "ResolveCity")
	defer span.End()

	coord, err := s.client.Geocode(ctx, name)
	if err != nil {
		s.logger.Error("Failed to geocode city", zap.String("city", name), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Geocode failed")
		return nil, fmt.Errorf("failed to resolve city %q: %w", name, err)
	}
	if coord == nil {
		s.logger.Info("No location matched city name", zap.String("city", name))
		span.SetStatus(codes.Ok, "No matching location")
		return nil, nil
	}

	span.SetStatus(codes.Ok, "City resolved")
	return coord, nil
}
