package models

import "time"

// Rating is a user-authored star rating for a place. Immutable once created,
// except for deletion. A user may rate the same place more than once.
type Rating struct {
	ID        string    `json:"id" firestore:"-"`
	UserID    string    `json:"user_id" firestore:"userId"`
	PlaceID   string    `json:"place_id" firestore:"placeId"`
	PlaceName string    `json:"place_name" firestore:"placeName"`
	Stars     int       `json:"stars" firestore:"stars"`
	Text      string    `json:"text" firestore:"text"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
