package weather

import (
	"fmt"
	"slices"
	"strings"
)

// hourlySeries is the hourly block of an Open-Meteo response. Values are
// pointers because the provider sends null for hours it has no data for.
type hourlySeries struct {
	Time          []string   `json:"time"`
	Temperature   []*float64 `json:"temperature_2m"`
	Humidity      []*float64 `json:"relative_humidity_2m"`
	Precipitation []*float64 `json:"precipitation"`
	Snowfall      []*float64 `json:"snowfall"`
	WeatherCode   []*int     `json:"weather_code"`
	WindSpeed     []*float64 `json:"wind_speed_10m"`
}

// valueAt returns vals[i], or zero when the value is absent.
func valueAt[T int | float64](vals []*T, i int) T {
	if i < 0 || i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}

// ResolveIndex locates the row for date (YYYY-MM-DD) and hour in times.
//
//	historical            -> hour
//	forecast, exact match -> index of "{date}T{hour}:00"
//	forecast, no match    -> first index of date + hour, clamped to the last row
//
// It reports false when no row can be chosen or the choice is out of bounds.
func ResolveIndex(h Horizon, times []string, date string, hour int) (int, bool) {
	var idx int
	switch h {
	case HorizonHistorical:
		idx = hour
	case HorizonForecast:
		exact := slices.Index(times, fmt.Sprintf("%sT%02d:00", date, hour))
		if exact >= 0 {
			idx = exact
			break
		}
		first := slices.IndexFunc(times, func(ts string) bool {
			return strings.HasPrefix(ts, date)
		})
		if first < 0 {
			return 0, false
		}
		idx = min(first+hour, len(times)-1)
	default:
		return 0, false
	}

	if idx < 0 || idx >= len(times) {
		return 0, false
	}
	return idx, true
}
