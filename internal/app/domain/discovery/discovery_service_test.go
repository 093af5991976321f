package discovery

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reserveit/engine/internal/app/models"
)

// fakeGeoSearcher scripts SearchNearby and Geocode responses per category.
type fakeGeoSearcher struct {
	mu         sync.Mutex
	places     map[string][]models.Place
	errs       map[string]error
	calls      []string
	geocode    *models.Coordinate
	geocodeErr error
}

func (f *fakeGeoSearcher) SearchNearby(ctx context.Context, center models.Coordinate, radiusMeters int, keyword string) ([]models.Place, error) {
	f.mu.Lock()
	f.calls = append(f.calls, keyword)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrTransport, err)
	}
	if err := f.errs[keyword]; err != nil {
		return nil, err
	}
	return f.places[keyword], nil
}

func (f *fakeGeoSearcher) Geocode(ctx context.Context, freeText string) (*models.Coordinate, error) {
	if f.geocodeErr != nil {
		return nil, f.geocodeErr
	}
	return f.geocode, nil
}

func place(id, name string) models.Place {
	return models.Place{ID: id, Name: name}
}

func TestDiscover(t *testing.T) {
	center := models.Coordinate{Lat: 52.37052, Lng: 9.73322}

	t.Run("single category issues exactly one search", func(t *testing.T) {
		fake := &fakeGeoSearcher{places: map[string][]models.Place{
			"restaurant": {place("P1", "Trattoria Roma")},
		}}
		svc := NewService(fake, 4, zap.NewNop())

		got, err := svc.Discover(context.Background(), center, 1500, "restaurant")
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, []string{"restaurant"}, fake.calls)
	})

	t.Run("all fans out over every category", func(t *testing.T) {
		fake := &fakeGeoSearcher{places: map[string][]models.Place{}}
		svc := NewService(fake, 3, zap.NewNop())

		_, err := svc.Discover(context.Background(), center, 1500, CategoryAll)
		require.NoError(t, err)
		assert.ElementsMatch(t, defaultCategories, fake.calls)
	})

	t.Run("no two merged entries share an id", func(t *testing.T) {
		fake := &fakeGeoSearcher{places: map[string][]models.Place{
			"restaurant": {place("P1", "Trattoria Roma"), place("P2", "Burger Barn")},
			"hotel":      {place("P1", "Trattoria Roma"), place("P3", "Grand Hotel")},
		}}
		svc := NewService(fake, 2, zap.NewNop())
		svc.categories = []string{"restaurant", "hotel"}

		got, err := svc.Discover(context.Background(), center, 1500, CategoryAll)
		require.NoError(t, err)

		seen := make(map[string]bool)
		for _, p := range got {
			assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
			seen[p.ID] = true
		}
		assert.Len(t, got, 3)
	})

	t.Run("later arriving category wins for a shared id", func(t *testing.T) {
		fake := &fakeGeoSearcher{places: map[string][]models.Place{
			"restaurant": {place("P1", "from restaurant")},
			"hotel":      {place("P1", "from hotel")},
		}}
		// One worker pins completion order to category order.
		svc := NewService(fake, 1, zap.NewNop())
		svc.categories = []string{"restaurant", "hotel"}

		got, err := svc.Discover(context.Background(), center, 1500, CategoryAll)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "from hotel", got[0].Name)
	})

	t.Run("one failing category still yields a partial result", func(t *testing.T) {
		fake := &fakeGeoSearcher{
			places: map[string][]models.Place{
				"restaurant": {place("P1", "Trattoria Roma")},
			},
			errs: map[string]error{
				"hotel": fmt.Errorf("%w: connection refused", models.ErrTransport),
			},
		}
		svc := NewService(fake, 2, zap.NewNop())
		svc.categories = []string{"restaurant", "hotel"}

		got, err := svc.Discover(context.Background(), center, 1500, CategoryAll)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "P1", got[0].ID)
	})

	t.Run("all categories failing fails the discovery", func(t *testing.T) {
		fake := &fakeGeoSearcher{errs: map[string]error{
			"restaurant": fmt.Errorf("%w: timeout", models.ErrTransport),
			"hotel":      fmt.Errorf("%w: status 500", models.ErrUpstream),
		}}
		svc := NewService(fake, 2, zap.NewNop())
		svc.categories = []string{"restaurant", "hotel"}

		_, err := svc.Discover(context.Background(), center, 1500, CategoryAll)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrDiscoveryFailed)
		assert.ErrorIs(t, err, models.ErrTransport)
		assert.ErrorIs(t, err, models.ErrUpstream)
	})

	t.Run("identical inputs yield identical merged sets", func(t *testing.T) {
		fake := &fakeGeoSearcher{places: map[string][]models.Place{
			"restaurant": {place("P1", "Trattoria Roma"), place("P2", "Burger Barn")},
			"hotel":      {place("P3", "Grand Hotel")},
		}}
		svc := NewService(fake, 2, zap.NewNop())
		svc.categories = []string{"restaurant", "hotel"}

		first, err := svc.Discover(context.Background(), center, 1500, CategoryAll)
		require.NoError(t, err)
		second, err := svc.Discover(context.Background(), center, 1500, CategoryAll)
		require.NoError(t, err)
		assert.ElementsMatch(t, first, second)
	})

	t.Run("cancellation delivers no partial result", func(t *testing.T) {
		fake := &fakeGeoSearcher{places: map[string][]models.Place{
			"restaurant": {place("P1", "Trattoria Roma")},
		}}
		svc := NewService(fake, 1, zap.NewNop())
		svc.categories = []string{"restaurant", "hotel"}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		got, err := svc.Discover(ctx, center, 1500, CategoryAll)
		require.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestResolveCity(t *testing.T) {
	t.Run("delegates to geocode", func(t *testing.T) {
		fake := &fakeGeoSearcher{geocode: &models.Coordinate{Lat: 52.37052, Lng: 9.73322}}
		svc := NewService(fake, 2, zap.NewNop())

		got, err := svc.ResolveCity(context.Background(), "Hannover")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 52.37052, got.Lat)
	})

	t.Run("no match is nil without error", func(t *testing.T) {
		fake := &fakeGeoSearcher{}
		svc := NewService(fake, 2, zap.NewNop())

		got, err := svc.ResolveCity(context.Background(), "Nowhereville")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("provider failure propagates", func(t *testing.T) {
		fake := &fakeGeoSearcher{geocodeErr: fmt.Errorf("%w: timeout", models.ErrTransport)}
		svc := NewService(fake, 2, zap.NewNop())

		_, err := svc.ResolveCity(context.Background(), "Hannover")
		assert.ErrorIs(t, err, models.ErrTransport)
	})
}
