package ratings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reserveit/engine/internal/app/auth"
	"github.com/reserveit/engine/internal/app/models"
	"github.com/reserveit/engine/internal/pkg/store"
)

type recordingStore struct {
	store.Store
	creates int
	deletes int
}

func (r *recordingStore) Create(ctx context.Context, collection, id string, data map[string]any) error {
	r.creates++
	return r.Store.Create(ctx, collection, id, data)
}

func (r *recordingStore) Delete(ctx context.Context, collection, id string) error {
	r.deletes++
	return r.Store.Delete(ctx, collection, id)
}

func newTestService(userID string) (*ServiceImpl, *recordingStore) {
	backing := &recordingStore{Store: store.NewMemoryStore()}
	svc := NewService(backing, auth.Static{UserID: userID}, zap.NewNop())
	return svc, backing
}

func waitSnapshot(t *testing.T, sub *Subscription) []models.Rating {
	t.Helper()
	select {
	case snapshot, ok := <-sub.Updates():
		require.True(t, ok, "subscription closed unexpectedly")
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestCreateRating(t *testing.T) {
	t.Run("persists a valid rating", func(t *testing.T) {
		svc, _ := newTestService("user-1")

		got, err := svc.Create(context.Background(), "P1", "Trattoria Roma", 5, "Excellent pasta")
		require.NoError(t, err)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "user-1", got.UserID)
		assert.Equal(t, 5, got.Stars)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("stars outside 1..5 never reach the store", func(t *testing.T) {
		svc, backing := newTestService("user-1")

		for _, stars := range []int{0, 6, -3} {
			_, err := svc.Create(context.Background(), "P1", "Trattoria Roma", stars, "")
			assert.ErrorIs(t, err, models.ErrInvalidRequest, "stars=%d", stars)
		}
		assert.Zero(t, backing.creates)
	})

	t.Run("boundary star counts are accepted", func(t *testing.T) {
		svc, _ := newTestService("user-1")

		for _, stars := range []int{1, 5} {
			_, err := svc.Create(context.Background(), "P1", "Trattoria Roma", stars, "")
			assert.NoError(t, err, "stars=%d", stars)
		}
	})

	t.Run("no bound user", func(t *testing.T) {
		svc, backing := newTestService("")

		_, err := svc.Create(context.Background(), "P1", "Trattoria Roma", 4, "")
		assert.ErrorIs(t, err, models.ErrNotAuthenticated)
		assert.Zero(t, backing.creates)
	})

	t.Run("same user may rate the same place twice", func(t *testing.T) {
		svc, _ := newTestService("user-1")

		first, err := svc.Create(context.Background(), "P1", "Trattoria Roma", 4, "Good")
		require.NoError(t, err)
		second, err := svc.Create(context.Background(), "P1", "Trattoria Roma", 5, "Even better")
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})
}

func TestSubscribeRatings(t *testing.T) {
	t.Run("empty set for a user with no ratings", func(t *testing.T) {
		svc, _ := newTestService("user-1")

		sub, err := svc.Subscribe(context.Background(), "user-1")
		require.NoError(t, err)
		defer sub.Stop()

		assert.Empty(t, waitSnapshot(t, sub))
	})

	t.Run("ordered by creation time descending", func(t *testing.T) {
		backing := store.NewMemoryStore()
		svc := NewService(backing, auth.Static{UserID: "user-1"}, zap.NewNop())

		older := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		newer := older.Add(24 * time.Hour)
		require.NoError(t, backing.Create(context.Background(), "ratings", "r-old", map[string]any{
			"userId": "user-1", "placeId": "P1", "stars": 3, "createdAt": older,
		}))
		require.NoError(t, backing.Create(context.Background(), "ratings", "r-new", map[string]any{
			"userId": "user-1", "placeId": "P2", "stars": 5, "createdAt": newer,
		}))

		sub, err := svc.Subscribe(context.Background(), "user-1")
		require.NoError(t, err)
		defer sub.Stop()

		snapshot := waitSnapshot(t, sub)
		require.Len(t, snapshot, 2)
		assert.Equal(t, "r-new", snapshot[0].ID)
		assert.Equal(t, "r-old", snapshot[1].ID)
	})

	t.Run("malformed record is dropped", func(t *testing.T) {
		backing := store.NewMemoryStore()
		svc := NewService(backing, auth.Static{UserID: "user-1"}, zap.NewNop())

		require.NoError(t, backing.Create(context.Background(), "ratings", "broken", map[string]any{
			"userId": "user-1",
		}))
		created, err := svc.Create(context.Background(), "P1", "Trattoria Roma", 4, "")
		require.NoError(t, err)

		sub, err := svc.Subscribe(context.Background(), "user-1")
		require.NoError(t, err)
		defer sub.Stop()

		snapshot := waitSnapshot(t, sub)
		require.Len(t, snapshot, 1)
		assert.Equal(t, created.ID, snapshot[0].ID)
	})
}

func TestDeleteRating(t *testing.T) {
	t.Run("missing persisted id fails without a store call", func(t *testing.T) {
		svc, backing := newTestService("user-1")

		err := svc.Delete(context.Background(), "")
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.Zero(t, backing.deletes)
	})

	t.Run("removal surfaces through the live subscription", func(t *testing.T) {
		svc, _ := newTestService("user-1")

		created, err := svc.Create(context.Background(), "P1", "Trattoria Roma", 4, "")
		require.NoError(t, err)

		sub, err := svc.Subscribe(context.Background(), "user-1")
		require.NoError(t, err)
		defer sub.Stop()
		require.Len(t, waitSnapshot(t, sub), 1)

		require.NoError(t, svc.Delete(context.Background(), created.ID))
		assert.Empty(t, waitSnapshot(t, sub))
	})
}
