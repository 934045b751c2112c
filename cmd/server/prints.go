package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/spooltrack/internal/inventory"
	"github.com/Simplici0/spooltrack/internal/models"
	"github.com/Simplici0/spooltrack/internal/store"
)

func (s *server) handlePrintsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		writeValidation(w, map[string]string{"limit": err.Error()})
		return
	}

	prints, err := s.inventory.ListPrints(r.Context(), ownerOf(r), store.PrintFilter{
		Search:  q.Get("search"),
		Status:  models.PrintStatus(q.Get("status")),
		SpoolID: q.Get("spool_id"),
		Limit:   limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prints)
}

func (s *server) handlePrintsCreate(w http.ResponseWriter, r *http.Request) {
	var in inventory.PrintInput
	if !decodeJSON(w, r, &in) {
		return
	}

	p, err := s.inventory.LogPrint(r.Context(), ownerOf(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *server) handlePrintGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.inventory.GetPrint(r.Context(), ownerOf(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handlePrintUpdate(w http.ResponseWriter, r *http.Request) {
	var in inventory.PrintUpdate
	if !decodeJSON(w, r, &in) {
		return
	}

	p, err := s.inventory.UpdatePrint(r.Context(), ownerOf(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handlePrintDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.inventory.DeletePrint(r.Context(), ownerOf(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
