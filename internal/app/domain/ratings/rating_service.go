// Package ratings mirrors the reservation engine for star ratings: direct
// writes to the document store plus a live subscription over the user's
// ratings. Ratings are immutable once created, except for deletion.
package ratings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/reserveit/engine/internal/app/auth"
	"github.com/reserveit/engine/internal/app/models"
	"github.com/reserveit/engine/internal/pkg/store"
)

const defaultCollection = "ratings"

const (
	minStars = 1
	maxStars = 5
)

type Service interface {
	Create(ctx context.Context, placeID, placeName string, stars int, text string) (*models.Rating, error)
	Subscribe(ctx context.Context, userID string) (*Subscription, error)
	Delete(ctx context.Context, ratingID string) error
}

type ServiceImpl struct {
	store      store.Store
	users      auth.UserProvider
	collection string
	logger     *zap.Logger
}

func NewService(st store.Store, users auth.UserProvider, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		store:      st,
		users:      users,
		collection: defaultCollection,
		logger:     logger,
	}
}

// Create persists a new rating for the bound user. Star counts outside the
// 1..5 range are rejected before any store write.
func (s *ServiceImpl) Create(ctx context.Context, placeID, placeName string, stars int, text string) (*models.Rating, error) {
	ctx, span := otel.Tracer("RatingService").Start(ctx, "Create")
	defer span.End()

	if stars < minStars || stars > maxStars {
		return nil, fmt.Errorf("%w: stars must be between %d and %d, got %d", models.ErrInvalidRequest, minStars, maxStars, stars)
	}

	userID, err := s.users.CurrentUserID(ctx)
	if err != nil {
		s.logger.Warn("Rating create without bound user", zap.String("place_id", placeID))
		return nil, fmt.Errorf("no user bound: %w", models.ErrNotAuthenticated)
	}

	rating := &models.Rating{
		ID:        uuid.New().String(),
		UserID:    userID,
		PlaceID:   placeID,
		PlaceName: placeName,
		Stars:     stars,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	data := map[string]any{
		"userId":    rating.UserID,
		"placeId":   rating.PlaceID,
		"placeName": rating.PlaceName,
		"stars":     rating.Stars,
		"text":      rating.Text,
		"createdAt": rating.CreatedAt,
	}
	if err := s.store.Create(ctx, s.collection, rating.ID, data); err != nil {
		s.logger.Error("Failed to save rating", zap.String("place_id", placeID), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store write failed")
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}

	s.logger.Info("Rating created",
		zap.String("rating_id", rating.ID),
		zap.String("place_id", placeID),
		zap.Int("stars", stars),
	)
	span.SetAttributes(attribute.String("rating.id", rating.ID))
	span.SetStatus(codes.Ok, "Rating created")

	return rating, nil
}

// Subscribe opens a live view over the user's ratings ordered by creation
// time descending. Malformed stored records are dropped per record.
func (s *ServiceImpl) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	ctx, span := otel.Tracer("RatingService").Start(ctx, "Subscribe")
	defer span.End()

	storeSub, err := s.store.Subscribe(ctx, s.collection, store.Query{
		Field:   "userId",
		Value:   userID,
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store subscription failed")
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}

	sub := newSubscription(storeSub.Stop)

	go func() {
		defer close(sub.updates)
		for docs := range storeSub.Snapshots() {
			out := make([]models.Rating, 0, len(docs))
			for _, doc := range docs {
				rating, err := decodeRating(doc)
				if err != nil {
					s.logger.Warn("Dropping malformed rating record",
						zap.String("document_id", doc.ID),
						zap.Error(err),
					)
					continue
				}
				out = append(out, rating)
			}
			if !sub.emit(out) {
				return
			}
		}
	}()

	span.SetStatus(codes.Ok, "Subscription opened")
	return sub, nil
}

// Delete removes a persisted rating; the live subscription surfaces the
// removal with its next snapshot.
func (s *ServiceImpl) Delete(ctx context.Context, ratingID string) error {
	ctx, span := otel.Tracer("RatingService").Start(ctx, "Delete")
	defer span.End()

	if ratingID == "" {
		return fmt.Errorf("%w: rating has no persisted id", models.ErrNotFound)
	}

	if err := s.store.Delete(ctx, s.collection, ratingID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("rating %s: %w", ratingID, models.ErrNotFound)
		}
		s.logger.Error("Failed to delete rating", zap.String("rating_id", ratingID), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store delete failed")
		return fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}

	s.logger.Info("Rating deleted", zap.String("rating_id", ratingID))
	span.SetStatus(codes.Ok, "Rating deleted")
	return nil
}

func decodeRating(doc store.Document) (models.Rating, error) {
	userID, err := store.StringField(doc, "userId")
	if err != nil {
		return models.Rating{}, err
	}
	placeID, err := store.StringField(doc, "placeId")
	if err != nil {
		return models.Rating{}, err
	}
	stars, err := store.IntField(doc, "stars")
	if err != nil {
		return models.Rating{}, err
	}

	rating := models.Rating{
		ID:      doc.ID,
		UserID:  userID,
		PlaceID: placeID,
		Stars:   stars,
	}
	if name, err := store.StringField(doc, "placeName"); err == nil {
		rating.PlaceName = name
	}
	if text, err := store.StringField(doc, "text"); err == nil {
		rating.Text = text
	}
	if createdAt, err := store.TimeField(doc, "createdAt"); err == nil {
		rating.CreatedAt = createdAt
	}
	return rating, nil
}
