package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type venueRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"required,max=500"`
}

func (v *venueRequest) normalize() {
	v.Name = strings.TrimSpace(v.Name)
	v.Address = strings.TrimSpace(v.Address)
}

func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// CreateVenue handles POST /api/v1/venues.
// The address is geocoded before insert; a venue without coordinates is still stored.
func (h *Handlers) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var req venueRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.normalize()
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	coord := h.coordinates(r.Context(), req.Address)
	if coord == nil {
		h.log.Info("venue stored without coordinates", "address", req.Address)
	}

	venue, err := h.repo.CreateVenue(r.Context(), req.Name, req.Address, coord)
	if err != nil {
		h.log.Error("create venue failed", "name", req.Name, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to store venue")
		return
	}
	writeJSON(w, http.StatusCreated, venue)
}

// GetVenue handles GET /api/v1/venues/{id}.
func (h *Handlers) GetVenue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid venue id")
		return
	}

	venue, err := h.repo.GetVenue(r.Context(), id)
	if err != nil {
		h.log.Error("db get venue failed", "venue_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if venue == nil {
		writeError(w, http.StatusNotFound, "venue not found")
		return
	}
	writeJSON(w, http.StatusOK, venue)
}

// UpdateVenue handles PUT /api/v1/venues/{id}.
// Cached coordinates for the old and new address are dropped and the new
// address is geocoded again.
func (h *Handlers) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid venue id")
		return
	}

	var req venueRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.normalize()
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := h.repo.GetVenue(r.Context(), id)
	if err != nil {
		h.log.Error("db get venue failed", "venue_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "venue not found")
		return
	}

	for _, addr := range []string{existing.Address, req.Address} {
		if err := h.cache.DeleteCoordinates(r.Context(), addr); err != nil {
			h.log.Warn("cache delete coordinates failed", "address", addr, "err", err)
		}
	}
	coord := h.coordinates(r.Context(), req.Address)

	venue, err := h.repo.UpdateVenue(r.Context(), id, req.Name, req.Address, coord)
	if err != nil {
		h.log.Error("update venue failed", "venue_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to store venue")
		return
	}
	if venue == nil {
		writeError(w, http.StatusNotFound, "venue not found")
		return
	}
	writeJSON(w, http.StatusOK, venue)
}
