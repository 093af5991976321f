// Package reservations keeps a user's reservation records synchronized with
// the document store: writes go straight to the store, reads arrive through a
// live subscription that re-delivers the full matching set on every change.
// The store is the source of truth; this engine holds no state of its own.
package reservations

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

const defaultCollection = "reservations"

type Service interface {
	Create(ctx context.Context, placeID, placeName string, date time.Time, notes string, partySize int) (*models.Reservation, error)
	Subscribe(ctx context.Context, userID string) (*Subscription, error)
	Delete(ctx context.Context, reservationID string) error
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

// Create persists a new reservation for the bound user. New reservations
// always start pending with CreatedAt == UpdatedAt; status transitions are
// applied elsewhere and only rendered here.
func (s *ServiceImpl) Create(ctx context.Context, placeID, placeName string, date time.Time, notes string, partySize int) (*models.Reservation, error) {
	ctx, span := otel.Tracer("ReservationService").Start(ctx, "Create")
	defer span.End()

	if partySize < 1 {
		return nil, fmt.Errorf("%w: party size must be at least 1, got %d", models.ErrInvalidRequest, partySize)
	}

	userID, err := s.users.CurrentUserID(ctx)
	if err != nil {
		s.logger.Warn("Reservation create without bound user", zap.String("place_id", placeID))
		return nil, fmt.Errorf("no user bound: %w", models.ErrNotAuthenticated)
	}

	now := time.Now().UTC()
	reservation := &models.Reservation{
		ID:        uuid.New().String(),
		PlaceID:   placeID,
		PlaceName: placeName,
		UserID:    userID,
		Date:      date,
		Notes:     notes,
		PartySize: partySize,
		Status:    models.ReservationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	data := map[string]any{
		"placeId":        reservation.PlaceID,
		"placeName":      reservation.PlaceName,
		"userId":         reservation.UserID,
		"date":           reservation.Date,
		"notes":          reservation.Notes,
		"numberOfPeople": reservation.PartySize,
		"status":         string(reservation.Status),
		"createdAt":      reservation.CreatedAt,
		"updatedAt":      reservation.UpdatedAt,
	}
	if err := s.store.Create(ctx, s.collection, reservation.ID, data); err != nil {
		s.logger.Error("Failed to save reservation", zap.String("place_id", placeID), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store write failed")
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}

	s.logger.Info("Reservation created",
		zap.String("reservation_id", reservation.ID),
		zap.String("place_id", placeID),
		zap.Int("party_size", partySize),
	)
	span.SetAttributes(attribute.String("reservation.id", reservation.ID))
	span.SetStatus(codes.Ok, "Reservation created")

	return reservation, nil
}

// Subscribe opens a live view over the user's reservations ordered by date
// descending. Every store-side change re-delivers the full set. A stored
// record that no longer decodes is dropped from the emitted set, never
// failing the stream.
func (s *ServiceImpl) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	ctx, span := otel.Tracer("ReservationService").Start(ctx, "Subscribe")
	defer span.End()

	storeSub, err := s.store.Subscribe(ctx, s.collection, store.Query{
		Field:   "userId",
		Value:   userID,
		OrderBy: "date",
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
			out := make([]models.Reservation, 0, len(docs))
			for _, doc := range docs {
				reservation, err := decodeReservation(doc)
				if err != nil {
					s.logger.Warn("Dropping malformed reservation record",
						zap.String("document_id", doc.ID),
						zap.Error(err),
					)
					continue
				}
				out = append(out, reservation)
			}
			if !sub.emit(out) {
				return
			}
		}
	}()

	span.SetStatus(codes.Ok, "Subscription opened")
	return sub, nil
}

// Delete removes a persisted reservation. The caller sees the removal through
// the next subscription snapshot; no local mutation happens here.
func (s *ServiceImpl) Delete(ctx context.Context, reservationID string) error {
	ctx, span := otel.Tracer("ReservationService").Start(ctx, "Delete")
	defer span.End()

	if reservationID == "" {
		return fmt.Errorf("%w: reservation has no persisted id", models.ErrNotFound)
	}

	if err := s.store.Delete(ctx, s.collection, reservationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("reservation %s: %w", reservationID, models.ErrNotFound)
		}
		s.logger.Error("Failed to delete reservation", zap.String("reservation_id", reservationID), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store delete failed")
		return fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}

	s.logger.Info("Reservation deleted", zap.String("reservation_id", reservationID))
	span.SetStatus(codes.Ok, "Reservation deleted")
	return nil
}

func decodeReservation(doc store.Document) (models.Reservation, error) {
	placeID, err := store.StringField(doc, "placeId")
	if err != nil {
		return models.Reservation{}, err
	}
	userID, err := store.StringField(doc, "userId")
	if err != nil {
		return models.Reservation{}, err
	}
	date, err := store.TimeField(doc, "date")
	if err != nil {
		return models.Reservation{}, err
	}
	partySize, err := store.IntField(doc, "numberOfPeople")
	if err != nil {
		return models.Reservation{}, err
	}

	reservation := models.Reservation{
		ID:        doc.ID,
		PlaceID:   placeID,
		UserID:    userID,
		Date:      date,
		PartySize: partySize,
	}
	// Optional fields tolerate older records.
	if name, err := store.StringField(doc, "placeName"); err == nil {
		reservation.PlaceName = name
	}
	if notes, err := store.StringField(doc, "notes"); err == nil {
		reservation.Notes = notes
	}
	if status, err := store.StringField(doc, "status"); err == nil {
		reservation.Status = models.ReservationStatusFromString(status)
	} else {
		reservation.Status = models.ReservationUnknown
	}
	if createdAt, err := store.TimeField(doc, "createdAt"); err == nil {
		reservation.CreatedAt = createdAt
	}
	if updatedAt, err := store.TimeField(doc, "updatedAt"); err == nil {
		reservation.UpdatedAt = updatedAt
	}
	return reservation, nil
}
