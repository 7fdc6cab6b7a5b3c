package storage

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/blood8879/match-archive-sub002/internal/geocode"
	"github.com/blood8879/match-archive-sub002/internal/weather"
)

// Venue is a place matches are played at. Latitude and Longitude are both
// set or both nil.
type Venue struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Coordinate returns the venue's location, or nil if it was never resolved.
func (v *Venue) Coordinate() *geocode.Coordinate {
	if v == nil || v.Latitude == nil || v.Longitude == nil {
		return nil
	}
	return &geocode.Coordinate{Latitude: *v.Latitude, Longitude: *v.Longitude}
}

// MatchWeather is the weather snapshot stored for one match.
type MatchWeather struct {
	MatchID   uuid.UUID        `json:"match_id"`
	VenueID   uuid.UUID        `json:"venue_id"`
	MatchDate time.Time        `json:"-"`
	MatchHour int              `json:"match_hour"`
	Snapshot  weather.Snapshot `json:"snapshot"`
	FetchedAt time.Time        `json:"fetched_at"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// MarshalJSON renders MatchDate as a calendar date.
func (m MatchWeather) MarshalJSON() ([]byte, error) {
	type alias MatchWeather
	return json.Marshal(struct {
		alias
		MatchDate string `json:"match_date"`
	}{alias(m), m.MatchDate.Format(weather.DateLayout)})
}

// coordinateArgs splits coord into nullable query arguments.
func coordinateArgs(coord *geocode.Coordinate) (lat, lon *float64) {
	if coord == nil {
		return nil, nil
	}
	return &coord.Latitude, &coord.Longitude
}
