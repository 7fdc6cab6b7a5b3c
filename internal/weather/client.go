package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/blood8879/match-archive-sub002/internal/provider"
)

const (
	archiveDefault  = "https://archive-api.open-meteo.com/v1/archive"
	forecastDefault = "https://api.open-meteo.com/v1/forecast"

	hourlyFields = "temperature_2m,relative_humidity_2m,precipitation,snowfall,weather_code,wind_speed_10m"
)

// OpenMeteoClient fetches hourly series from the Open-Meteo archive and
// forecast endpoints. No API key is required.
type OpenMeteoClient struct {
	archiveURL  string
	forecastURL string
	timezone    string
	client      *http.Client
}

// NewOpenMeteoClient constructs a client that reports hours in timezone
// (an IANA name such as "Asia/Seoul").
func NewOpenMeteoClient(timezone string, client *http.Client) *OpenMeteoClient {
	return &OpenMeteoClient{
		archiveURL:  archiveDefault,
		forecastURL: forecastDefault,
		timezone:    timezone,
		client:      client,
	}
}

// NewOpenMeteoClientWithURLs constructs a client pointing at custom URLs (for tests).
func NewOpenMeteoClientWithURLs(archiveURL, forecastURL, timezone string) *OpenMeteoClient {
	return &OpenMeteoClient{
		archiveURL:  archiveURL,
		forecastURL: forecastURL,
		timezone:    timezone,
		client:      provider.NewHTTPClient(provider.DefaultTimeout),
	}
}

// fetch requests the series serving h: the archive for exactly the target
// date, or the rolling forecast window. A payload without hourly rows is a
// no-match.
func (c *OpenMeteoClient) fetch(ctx context.Context, h Horizon, q Query) provider.Outcome[hourlySeries] {
	name := "openmeteo_" + h.String()
	start := time.Now()
	out := c.doFetch(ctx, h, q)
	provider.Record(name, out.Kind, time.Since(start))
	return out
}

func (c *OpenMeteoClient) doFetch(ctx context.Context, h Horizon, q Query) provider.Outcome[hourlySeries] {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(q.Coordinate.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(q.Coordinate.Longitude, 'f', -1, 64))
	params.Set("hourly", hourlyFields)
	params.Set("timezone", c.timezone)

	var base string
	switch h {
	case HorizonHistorical:
		date := q.Date.Format(DateLayout)
		params.Set("start_date", date)
		params.Set("end_date", date)
		base = c.archiveURL
	case HorizonForecast:
		params.Set("forecast_days", strconv.Itoa(MaxForecastDays))
		base = c.forecastURL
	default:
		return provider.Failure[hourlySeries](fmt.Errorf("open-meteo: no endpoint for horizon %s", h))
	}

	var raw openMeteoResponse
	if err := provider.GetJSON(ctx, c.client, base+"?"+params.Encode(), nil, &raw); err != nil {
		return provider.Failure[hourlySeries](fmt.Errorf("open-meteo %s: %w", h, err))
	}
	if raw.Hourly == nil || len(raw.Hourly.Time) == 0 {
		return provider.NoMatch[hourlySeries]()
	}
	return provider.Success(*raw.Hourly)
}
