package models

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is an immutable snapshot of one venue from a search response. It is
// never persisted beyond the current result set.
type Place struct {
	ID          string     `json:"place_id"`
	Name        string     `json:"name"`
	Coordinate  Coordinate `json:"coordinate"`
	Vicinity    string     `json:"vicinity,omitempty"`
	Categories  []string   `json:"categories,omitempty"`
	Rating      *float64   `json:"rating,omitempty"`
	RatingCount *int       `json:"rating_count,omitempty"`
	PhotoRefs   []string   `json:"photo_refs,omitempty"`
	OpenNow     *bool      `json:"open_now,omitempty"`
}

// PlaceReview is a provider-hosted review attached to PlaceDetails.
type PlaceReview struct {
	Author string `json:"author_name"`
	Rating int    `json:"rating"`
	Text   string `json:"text"`
	Time   int64  `json:"time"`
}

// PlaceDetails is the richer on-demand projection of a single Place.
// It is fetched per request and not cached across calls.
type PlaceDetails struct {
	ID                 string        `json:"place_id"`
	Name               string        `json:"name"`
	Address            string        `json:"formatted_address,omitempty"`
	Phone              string        `json:"formatted_phone_number,omitempty"`
	InternationalPhone string        `json:"international_phone_number,omitempty"`
	Website            string        `json:"website,omitempty"`
	Rating             *float64      `json:"rating,omitempty"`
	RatingCount        *int          `json:"rating_count,omitempty"`
	PriceLevel         *int          `json:"price_level,omitempty"`
	PhotoRefs          []string      `json:"photo_refs,omitempty"`
	OpenNow            *bool         `json:"open_now,omitempty"`
	WeekdayText        []string      `json:"weekday_text,omitempty"`
	Reviews            []PlaceReview `json:"reviews,omitempty"`
}
