package weather

import (
	"time"

	"github.com/blood8879/match-archive-sub002/internal/geocode"
)

// DefaultHour is used when a caller does not name an hour.
const DefaultHour = 12

// DateLayout is the calendar-date format used by the provider and the API.
const DateLayout = "2006-01-02"

// Query identifies the hour to look up. Only the calendar date of Date is used.
type Query struct {
	Coordinate geocode.Coordinate
	Date       time.Time
	Hour       int
}

// NewQuery builds a Query for DefaultHour.
func NewQuery(coord geocode.Coordinate, date time.Time) Query {
	return Query{Coordinate: coord, Date: date, Hour: DefaultHour}
}

// Snapshot is the normalized weather for one hour at one place.
type Snapshot struct {
	TemperatureC    int     `json:"temperature_c"`
	WeatherCode     int     `json:"weather_code"`
	PrecipitationMm float64 `json:"precipitation_mm"`
	SnowfallCm      float64 `json:"snowfall_cm"`
	WindSpeedKmh    int     `json:"wind_speed_kmh"`
	HumidityPct     float64 `json:"humidity_pct"`
	Description     string  `json:"description"`
	Icon            Icon    `json:"icon"`
}

// openMeteoResponse mirrors the parts of an archive or forecast payload we read.
type openMeteoResponse struct {
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Timezone  string        `json:"timezone"`
	Hourly    *hourlySeries `json:"hourly"`
}
