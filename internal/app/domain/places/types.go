package places

import "github.com/reserveit/engine/internal/app/models"

// Wire schema of the geo-search provider. Field names follow the provider's
// JSON payloads; optionals are pointers so absent values stay distinguishable.

type searchResponse struct {
	Status  string        `json:"status"`
	Results []placeRecord `json:"results"`
}

type placeRecord struct {
	PlaceID          string        `json:"place_id"`
	Name             string        `json:"name"`
	Geometry         geometry      `json:"geometry"`
	Vicinity         *string       `json:"vicinity,omitempty"`
	Rating           *float64      `json:"rating,omitempty"`
	UserRatingsTotal *int          `json:"user_ratings_total,omitempty"`
	Photos           []photo       `json:"photos,omitempty"`
	OpeningHours     *openingHours `json:"opening_hours,omitempty"`
	Types            []string      `json:"types,omitempty"`
}

type geometry struct {
	Location location `json:"location"`
}

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type photo struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

type openingHours struct {
	OpenNow     *bool    `json:"open_now,omitempty"`
	WeekdayText []string `json:"weekday_text,omitempty"`
}

type detailsResponse struct {
	Status string             `json:"status"`
	Result placeDetailsRecord `json:"result"`
}

type placeDetailsRecord struct {
	PlaceID                  string         `json:"place_id"`
	Name                     string         `json:"name"`
	FormattedAddress         *string        `json:"formatted_address,omitempty"`
	FormattedPhoneNumber     *string        `json:"formatted_phone_number,omitempty"`
	InternationalPhoneNumber *string        `json:"international_phone_number,omitempty"`
	Website                  *string        `json:"website,omitempty"`
	Rating                   *float64       `json:"rating,omitempty"`
	UserRatingsTotal         *int           `json:"user_ratings_total,omitempty"`
	Photos                   []photo        `json:"photos,omitempty"`
	OpeningHours             *openingHours  `json:"opening_hours,omitempty"`
	Reviews                  []reviewRecord `json:"reviews,omitempty"`
	PriceLevel               *int           `json:"price_level,omitempty"`
}

type reviewRecord struct {
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
	Time       int64  `json:"time"`
}

type geocodeResponse struct {
	Status  string          `json:"status"`
	Results []geocodeResult `json:"results"`
}

type geocodeResult struct {
	Geometry geometry `json:"geometry"`
}

func (r placeRecord) toPlace() models.Place {
	p := models.Place{
		ID:          r.PlaceID,
		Name:        r.Name,
		Coordinate:  models.Coordinate{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		Categories:  r.Types,
		Rating:      r.Rating,
		RatingCount: r.UserRatingsTotal,
	}
	if r.Vicinity != nil {
		p.Vicinity = *r.Vicinity
	}
	for _, ph := range r.Photos {
		p.PhotoRefs = append(p.PhotoRefs, ph.PhotoReference)
	}
	if r.OpeningHours != nil {
		p.OpenNow = r.OpeningHours.OpenNow
	}
	return p
}

func (r placeDetailsRecord) toDetails() models.PlaceDetails {
	d := models.PlaceDetails{
		ID:          r.PlaceID,
		Name:        r.Name,
		Rating:      r.Rating,
		RatingCount: r.UserRatingsTotal,
		PriceLevel:  r.PriceLevel,
	}
	if r.FormattedAddress != nil {
		d.Address = *r.FormattedAddress
	}
	if r.FormattedPhoneNumber != nil {
		d.Phone = *r.FormattedPhoneNumber
	}
	if r.InternationalPhoneNumber != nil {
		d.InternationalPhone = *r.InternationalPhoneNumber
	}
	if r.Website != nil {
		d.Website = *r.Website
	}
	for _, ph := range r.Photos {
		d.PhotoRefs = append(d.PhotoRefs, ph.PhotoReference)
	}
	if r.OpeningHours != nil {
		d.OpenNow = r.OpeningHours.OpenNow
		d.WeekdayText = r.OpeningHours.WeekdayText
	}
	for _, rev := range r.Reviews {
		d.Reviews = append(d.Reviews, models.PlaceReview{
			Author: rev.AuthorName,
			Rating: rev.Rating,
			Text:   rev.Text,
			Time:   rev.Time,
		})
	}
	return d
}
