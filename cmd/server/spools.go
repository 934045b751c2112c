package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/spooltrack/internal/inventory"
	"github.com/Simplici0/spooltrack/internal/models"
	"github.com/Simplici0/spooltrack/internal/store"
)

type remainingRequest struct {
	RemainingWeightG *float64 `json:"remaining_weight_g" validate:"required"`
}

func (s *server) handleSpoolsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		writeValidation(w, map[string]string{"limit": err.Error()})
		return
	}

	spools, err := s.inventory.ListSpools(r.Context(), ownerOf(r), store.SpoolFilter{
		Search:   q.Get("search"),
		Material: models.Material(q.Get("material")),
		Status:   models.SpoolStatus(q.Get("status")),
		Limit:    limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, spools)
}

func (s *server) handleSpoolsCreate(w http.ResponseWriter, r *http.Request) {
	var in inventory.SpoolInput
	if !decodeJSON(w, r, &in) {
		return
	}

	sp, err := s.inventory.CreateSpool(r.Context(), ownerOf(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sp)
}

func (s *server) handleSpoolGet(w http.ResponseWriter, r *http.Request) {
	sp, err := s.inventory.GetSpool(r.Context(), ownerOf(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (s *server) handleSpoolUpdate(w http.ResponseWriter, r *http.Request) {
	var in inventory.SpoolInput
	if !decodeJSON(w, r, &in) {
		return
	}

	sp, err := s.inventory.UpdateSpool(r.Context(), ownerOf(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (s *server) handleSpoolSetRemaining(w http.ResponseWriter, r *http.Request) {
	var req remainingRequest
	if !bindAndValidate(w, r, &req) {
		return
	}

	sp, err := s.inventory.SetRemaining(r.Context(), ownerOf(r), chi.URLParam(r, "id"), *req.RemainingWeightG)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (s *server) handleSpoolPrints(w http.ResponseWriter, r *http.Request) {
	prints, err := s.inventory.ListSpoolPrints(r.Context(), ownerOf(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prints)
}

func (s *server) handleSpoolDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.inventory.DeleteSpool(r.Context(), ownerOf(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
