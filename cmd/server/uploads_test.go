package main

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/spooltrack/internal/analysis"
)

func multipartUpload(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := authed(http.MethodPost, "/api/uploads", nil, nil)
	req.Body = nopCloser{&buf}
	req.ContentLength = int64(buf.Len())
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func TestUpload_StoresAndServesModel(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.handleUpload(rr, multipartUpload(t, "benchy.stl", "solid benchy"))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	url := decodeBody[uploadResponse](t, rr).FileURL
	require.True(t, strings.HasPrefix(url, "/files/"), url)

	rr = httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "solid benchy", rr.Body.String())
}

func TestUpload_RejectsOtherFiles(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.handleUpload(rr, multipartUpload(t, "cat.jpg", "meow"))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "extension", decodeBody[apiError](t, rr).Fields["file"])
}

func TestAnalysis(t *testing.T) {
	srv := newTestServer(t)
	weight := 14.6
	fake := &fakeAnalyzer{est: analysis.Estimate{WeightGrams: &weight}}
	srv.analyzer = fake

	rr := httptest.NewRecorder()
	srv.handleAnalysis(rr, authed(http.MethodPost, "/api/analysis", map[string]any{
		"file_url":        "/files/models/x/benchy.stl",
		"layer_height_mm": 0.2,
		"infill_percent":  15,
	}, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"weight_grams":14.6}`, rr.Body.String())
	assert.InDelta(t, 15, fake.last.InfillPercent, 1e-9)

	rr = httptest.NewRecorder()
	srv.handleAnalysis(rr, authed(http.MethodPost, "/api/analysis", map[string]any{"infill_percent": 150}, nil))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	fields := decodeBody[apiError](t, rr).Fields
	assert.Equal(t, "required", fields["file_url"])
	assert.Equal(t, "lte", fields["infill_percent"])
}

func TestAnalysis_Failures(t *testing.T) {
	srv := newTestServer(t)

	srv.analyzer = &fakeAnalyzer{err: analysis.ErrNotConfigured}
	rr := httptest.NewRecorder()
	srv.handleAnalysis(rr, authed(http.MethodPost, "/api/analysis", map[string]any{"file_url": "x"}, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	srv.analyzer = &fakeAnalyzer{err: errors.New("upstream exploded")}
	rr = httptest.NewRecorder()
	srv.handleAnalysis(rr, authed(http.MethodPost, "/api/analysis", map[string]any{"file_url": "x"}, nil))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.NotContains(t, rr.Body.String(), "exploded")
}
