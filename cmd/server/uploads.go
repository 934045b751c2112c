package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Simplici0/spooltrack/internal/analysis"
)

const maxUploadBytes = 100 << 20

type modelAnalyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (analysis.Estimate, error)
}

type uploadResponse struct {
	FileURL string `json:"file_url"`
}

func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeValidation(w, map[string]string{"file": "required"})
		return
	}
	defer file.Close()

	url, err := s.files.Upload(r.Context(), ownerOf(r), header.Filename, file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.Info().Str("owner", ownerOf(r)).Str("file_url", url).Int64("size", header.Size).Msg("model uploaded")
	writeJSON(w, http.StatusCreated, uploadResponse{FileURL: url})
}

func (s *server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analysis.Request
	if !bindAndValidate(w, r, &req) {
		return
	}

	est, err := s.analyzer.Analyze(r.Context(), req)
	if errors.Is(err, analysis.ErrNotConfigured) {
		writeServiceError(w, r, err)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("file_url", req.FileURL).Msg("model analysis failed")
		writeError(w, http.StatusBadGateway, "model analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, est)
}
