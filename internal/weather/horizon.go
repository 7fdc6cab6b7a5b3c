package weather

import "time"

// MaxForecastDays is the furthest ahead, in whole days from today, the
// forecast provider can answer for.
const MaxForecastDays = 16

// Horizon says which provider endpoint, if any, can serve a date.
type Horizon int

const (
	HorizonOutOfRange Horizon = iota
	HorizonHistorical
	HorizonForecast
)

func (h Horizon) String() string {
	switch h {
	case HorizonHistorical:
		return "historical"
	case HorizonForecast:
		return "forecast"
	default:
		return "out_of_range"
	}
}

// DaysBetween returns the number of whole calendar days from today to date.
// Only the year, month and day of each value are used.
func DaysBetween(today, date time.Time) int {
	from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// Classify maps a day offset to a horizon. Past dates have no lower bound.
func Classify(daysDiff int) Horizon {
	switch {
	case daysDiff < 0:
		return HorizonHistorical
	case daysDiff <= MaxForecastDays:
		return HorizonForecast
	default:
		return HorizonOutOfRange
	}
}
