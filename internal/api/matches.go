package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/blood8879/match-archive-sub002/internal/storage"
	"github.com/blood8879/match-archive-sub002/internal/weather"
)

type matchWeatherRequest struct {
	VenueID string `json:"venue_id" validate:"required,uuid"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Hour    *int   `json:"hour" validate:"omitempty,min=0,max=23"`
}

// PutMatchWeather handles PUT /api/v1/matches/{id}/weather.
// Resolves the weather at the venue for the match date and hour and stores it.
func (h *Handlers) PutMatchWeather(w http.ResponseWriter, r *http.Request) {
	matchID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid match id")
		return
	}

	var req matchWeatherRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	venueID, err := uuid.Parse(req.VenueID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid venue id")
		return
	}
	date, err := time.Parse(weather.DateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	hour := weather.DefaultHour
	if req.Hour != nil {
		hour = *req.Hour
	}

	venue, err := h.repo.GetVenue(r.Context(), venueID)
	if err != nil {
		h.log.Error("db get venue failed", "venue_id", venueID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if venue == nil {
		writeError(w, http.StatusNotFound, "venue not found")
		return
	}
	coord := venue.Coordinate()
	if coord == nil {
		writeError(w, http.StatusUnprocessableEntity, "venue has no coordinates")
		return
	}

	q := weather.Query{Coordinate: *coord, Date: date, Hour: hour}
	snap := h.snapshot(r.Context(), q)
	if snap == nil {
		writeError(w, http.StatusNotFound, "weather unavailable")
		return
	}

	stored, err := h.repo.UpsertMatchWeather(r.Context(), storage.MatchWeather{
		MatchID:   matchID,
		VenueID:   venueID,
		MatchDate: date,
		MatchHour: hour,
		Snapshot:  *snap,
	})
	if err != nil {
		h.log.Error("upsert match weather failed", "match_id", matchID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to store match weather")
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// GetMatchWeather handles GET /api/v1/matches/{id}/weather.
func (h *Handlers) GetMatchWeather(w http.ResponseWriter, r *http.Request) {
	matchID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid match id")
		return
	}

	stored, err := h.repo.GetMatchWeather(r.Context(), matchID)
	if err != nil {
		h.log.Error("db get match weather failed", "match_id", matchID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if stored == nil {
		writeError(w, http.StatusNotFound, "match weather not found")
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// ListMatchWeather handles GET /api/v1/matches/weather?icon=.
func (h *Handlers) ListMatchWeather(w http.ResponseWriter, r *http.Request) {
	icon := r.URL.Query().Get("icon")
	if !weather.ValidIcon(icon) {
		writeError(w, http.StatusBadRequest, "unknown icon")
		return
	}

	results, err := h.repo.ListMatchWeatherByIcon(r.Context(), weather.Icon(icon))
	if err != nil {
		h.log.Error("db list match weather failed", "icon", icon, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if results == nil {
		results = []*storage.MatchWeather{}
	}
	writeJSON(w, http.StatusOK, results)
}
