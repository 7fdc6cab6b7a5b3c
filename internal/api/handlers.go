package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/blood8879/match-archive-sub002/internal/geocode"
	"github.com/blood8879/match-archive-sub002/internal/weather"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	repo     Repository
	cache    ResultCache
	geocoder CoordinateResolver
	weather  WeatherResolver
	validate *validator.Validate
	log      *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(repo Repository, cache ResultCache, geocoder CoordinateResolver, wx WeatherResolver, log *slog.Logger) *Handlers {
	return &Handlers{
		repo:     repo,
		cache:    cache,
		geocoder: geocoder,
		weather:  wx,
		validate: validator.New(),
		log:      log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody reads a JSON body into dst and validates it.
func (h *Handlers) decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return h.validate.Struct(dst)
}

// coordinates resolves address through the cache. Cache failures are logged
// and otherwise ignored.
func (h *Handlers) coordinates(ctx context.Context, address string) *geocode.Coordinate {
	cached, err := h.cache.GetCoordinates(ctx, address)
	if err != nil {
		h.log.Warn("cache get coordinates failed", "address", address, "err", err)
	}
	if cached != nil {
		return cached
	}

	coord := h.geocoder.ResolveCoordinates(ctx, address)
	if coord == nil {
		return nil
	}
	if err := h.cache.SetCoordinates(ctx, address, coord); err != nil {
		h.log.Warn("cache set coordinates failed", "address", address, "err", err)
	}
	return coord
}

// snapshot resolves q through the cache.
func (h *Handlers) snapshot(ctx context.Context, q weather.Query) *weather.Snapshot {
	cached, err := h.cache.GetWeather(ctx, q)
	if err != nil {
		h.log.Warn("cache get weather failed", "date", q.Date.Format(weather.DateLayout), "hour", q.Hour, "err", err)
	}
	if cached != nil {
		return cached
	}

	snap := h.weather.ResolveWeather(ctx, q)
	if snap == nil {
		return nil
	}
	if err := h.cache.SetWeather(ctx, q, snap); err != nil {
		h.log.Warn("cache set weather failed", "date", q.Date.Format(weather.DateLayout), "hour", q.Hour, "err", err)
	}
	return snap
}

// Geocode handles GET /api/v1/geocode?address=.
func (h *Handlers) Geocode(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}

	coord := h.coordinates(r.Context(), address)
	if coord == nil {
		writeError(w, http.StatusNotFound, "coordinates unavailable")
		return
	}
	writeJSON(w, http.StatusOK, coord)
}

type weatherParams struct {
	Lat  float64 `validate:"min=-90,max=90"`
	Lon  float64 `validate:"min=-180,max=180"`
	Date string  `validate:"required,datetime=2006-01-02"`
	Hour int     `validate:"min=0,max=23"`
}

func (h *Handlers) parseWeatherParams(r *http.Request) (weather.Query, error) {
	qs := r.URL.Query()
	lat, err := strconv.ParseFloat(qs.Get("lat"), 64)
	if err != nil {
		return weather.Query{}, errors.New("lat must be a number")
	}
	lon, err := strconv.ParseFloat(qs.Get("lon"), 64)
	if err != nil {
		return weather.Query{}, errors.New("lon must be a number")
	}
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return weather.Query{}, errors.New("lat and lon must be finite")
	}
	p := weatherParams{Lat: lat, Lon: lon, Date: qs.Get("date"), Hour: weather.DefaultHour}
	if raw := qs.Get("hour"); raw != "" {
		if p.Hour, err = strconv.Atoi(raw); err != nil {
			return weather.Query{}, errors.New("hour must be an integer")
		}
	}
	if err := h.validate.Struct(p); err != nil {
		return weather.Query{}, err
	}

	date, err := time.Parse(weather.DateLayout, p.Date)
	if err != nil {
		return weather.Query{}, err
	}
	return weather.Query{
		Coordinate: geocode.Coordinate{Latitude: p.Lat, Longitude: p.Lon},
		Date:       date,
		Hour:       p.Hour,
	}, nil
}

// Weather handles GET /api/v1/weather?lat=&lon=&date=[&hour=].
func (h *Handlers) Weather(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseWeatherParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := h.snapshot(r.Context(), q)
	if snap == nil {
		writeError(w, http.StatusNotFound, "weather unavailable")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
