package models

import "time"

// ReservationStatus is the closed set of reservation lifecycle states.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"

	// ReservationUnknown covers stored values outside the known set so that
	// schema drift never produces undefined behavior downstream.
	ReservationUnknown ReservationStatus = "unknown"
)

// ReservationStatusFromString maps a stored status string onto the closed
// enumeration, folding unrecognized values into ReservationUnknown.
func ReservationStatusFromString(s string) ReservationStatus {
	switch ReservationStatus(s) {
	case ReservationPending, ReservationConfirmed, ReservationCancelled:
		return ReservationStatus(s)
	default:
		return ReservationUnknown
	}
}

// Reservation is a user-owned booking record. New reservations start pending;
// status transitions are applied by an external authority and only persisted
// here.
type Reservation struct {
	ID        string            `json:"id" firestore:"-"`
	PlaceID   string            `json:"place_id" firestore:"placeId"`
	PlaceName string            `json:"place_name" firestore:"placeName"`
	UserID    string            `json:"user_id" firestore:"userId"`
	Date      time.Time         `json:"date" firestore:"date"`
	Notes     string            `json:"notes" firestore:"notes"`
	PartySize int               `json:"party_size" firestore:"numberOfPeople"`
	Status    ReservationStatus `json:"status" firestore:"status"`
	CreatedAt time.Time         `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time         `json:"updated_at" firestore:"updatedAt"`
}
