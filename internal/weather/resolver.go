package weather

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/blood8879/match-archive-sub002/internal/metrics"
	"github.com/blood8879/match-archive-sub002/internal/provider"
)

// Resolver produces weather snapshots for a place, date and hour.
type Resolver struct {
	client *OpenMeteoClient
	loc    *time.Location
	now    func() time.Time
	log    *slog.Logger
}

// NewResolver constructs a Resolver that decides "today" in loc.
func NewResolver(client *OpenMeteoClient, loc *time.Location, log *slog.Logger) *Resolver {
	return NewResolverWithClock(client, loc, time.Now, log)
}

// NewResolverWithClock constructs a Resolver with an injectable clock (used in tests).
func NewResolverWithClock(client *OpenMeteoClient, loc *time.Location, now func() time.Time, log *slog.Logger) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{client: client, loc: loc, now: now, log: log}
}

// ResolveWeather returns the snapshot for q, or nil when the hour is invalid,
// the date is beyond the forecast horizon, or the provider has no usable
// row. It never fails.
func (r *Resolver) ResolveWeather(ctx context.Context, q Query) *Snapshot {
	if q.Hour < 0 || q.Hour > 23 {
		metrics.ResolutionsTotal.WithLabelValues("weather", "rejected").Inc()
		return nil
	}

	today := r.now().In(r.loc)
	horizon := Classify(DaysBetween(today, q.Date))
	date := q.Date.Format(DateLayout)
	if horizon == HorizonOutOfRange {
		r.log.Debug("weather date beyond forecast horizon", "date", date, "today", today.Format(DateLayout))
		metrics.ResolutionsTotal.WithLabelValues("weather", "rejected").Inc()
		return nil
	}

	out := r.client.fetch(ctx, horizon, q)
	if !out.Ok() {
		if out.Kind == provider.KindNoMatch {
			r.log.Info("weather provider returned no hourly series", "horizon", horizon.String(), "date", date)
		} else {
			r.log.Warn("weather provider failed", "horizon", horizon.String(), "date", date, "err", out.Err)
		}
		metrics.ResolutionsTotal.WithLabelValues("weather", "unavailable").Inc()
		return nil
	}

	series := out.Value
	idx, ok := ResolveIndex(horizon, series.Time, date, q.Hour)
	if !ok {
		r.log.Info("weather hour not present in series", "horizon", horizon.String(), "date", date, "hour", q.Hour, "rows", len(series.Time))
		metrics.ResolutionsTotal.WithLabelValues("weather", "unavailable").Inc()
		return nil
	}

	metrics.ResolutionsTotal.WithLabelValues("weather", "resolved").Inc()
	snap := snapshotAt(series, idx)
	return &snap
}

// snapshotAt reads row idx. Missing values are zero; temperature and wind
// speed are rounded half away from zero.
func snapshotAt(s hourlySeries, idx int) Snapshot {
	code := valueAt(s.WeatherCode, idx)
	info := Describe(code)
	return Snapshot{
		TemperatureC:    int(math.Round(valueAt(s.Temperature, idx))),
		WeatherCode:     code,
		PrecipitationMm: valueAt(s.Precipitation, idx),
		SnowfallCm:      valueAt(s.Snowfall, idx),
		WindSpeedKmh:    int(math.Round(valueAt(s.WindSpeed, idx))),
		HumidityPct:     valueAt(s.Humidity, idx),
		Description:     info.Description,
		Icon:            info.Icon,
	}
}
