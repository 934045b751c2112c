package main

import (
	"net/http"

	"github.com/Simplici0/spooltrack/internal/inventory"
)

func (s *server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	cs, err := s.inventory.GetCostSettings(r.Context(), ownerOf(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (s *server) handleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var in inventory.CostSettingsInput
	if !decodeJSON(w, r, &in) {
		return
	}

	cs, err := s.inventory.UpdateCostSettings(r.Context(), ownerOf(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (s *server) handleCalculator(w http.ResponseWriter, r *http.Request) {
	var in inventory.EstimateInput
	if !decodeJSON(w, r, &in) {
		return
	}

	result, err := s.inventory.Estimate(r.Context(), ownerOf(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.inventory.Dashboard(r.Context(), ownerOf(r), s.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
