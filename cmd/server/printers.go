package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/spooltrack/internal/inventory"
)

func (s *server) handlePrintersList(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	printers, err := s.inventory.ListPrinters(r.Context(), ownerOf(r), activeOnly)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, printers)
}

func (s *server) handlePrintersCreate(w http.ResponseWriter, r *http.Request) {
	var in inventory.PrinterInput
	if !decodeJSON(w, r, &in) {
		return
	}

	p, err := s.inventory.CreatePrinter(r.Context(), ownerOf(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *server) handlePrinterUpdate(w http.ResponseWriter, r *http.Request) {
	var in inventory.PrinterInput
	if !decodeJSON(w, r, &in) {
		return
	}

	p, err := s.inventory.UpdatePrinter(r.Context(), ownerOf(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handlePrinterDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.inventory.DeletePrinter(r.Context(), ownerOf(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
