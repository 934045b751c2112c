package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/spooltrack/internal/inventory"
	"github.com/Simplici0/spooltrack/internal/models"
)

func createSpoolViaAPI(t *testing.T, srv *server, body map[string]any) models.FilamentSpool {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.handleSpoolsCreate(rr, authed(http.MethodPost, "/api/spools", body, nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[models.FilamentSpool](t, rr)
}

func TestSpoolsCreateAndGet(t *testing.T) {
	srv := newTestServer(t)

	sp := createSpoolViaAPI(t, srv, map[string]any{
		"name":           "Galaxy Black",
		"brand":          "Prusament",
		"material":       "PLA",
		"cost_per_spool": 25,
	})
	assert.Equal(t, models.SpoolActive, sp.Status)
	assert.InDelta(t, 1000, sp.RemainingWeightG, 1e-9)

	rr := httptest.NewRecorder()
	srv.handleSpoolGet(rr, authed(http.MethodGet, "/api/spools/"+sp.ID, nil, map[string]string{"id": sp.ID}))
	require.Equal(t, http.StatusOK, rr.Code)

	got := decodeBody[inventory.SpoolDetail](t, rr)
	assert.Equal(t, "Galaxy Black", got.Name)
	assert.InDelta(t, 0.025, got.CostPerGram, 1e-9)
}

func TestSpoolsCreate_ValidationEnvelope(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.handleSpoolsCreate(rr, authed(http.MethodPost, "/api/spools", map[string]any{
		"name":               "",
		"material":           "Chocolate",
		"total_weight_g":     500,
		"remaining_weight_g": 900,
	}, nil))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	body := decodeBody[apiError](t, rr)
	assert.Equal(t, "validation failed", body.Detail)
	assert.Equal(t, "required", body.Fields["name"])
	assert.Equal(t, "material", body.Fields["material"])
	assert.Contains(t, body.Fields, "remaining_weight_g")
}

func TestSpoolsCreate_BadJSON(t *testing.T) {
	srv := newTestServer(t)

	req := authed(http.MethodPost, "/api/spools", nil, nil)
	req.Body = http.NoBody
	rr := httptest.NewRecorder()
	srv.handleSpoolsCreate(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSpoolsList_Filters(t *testing.T) {
	srv := newTestServer(t)
	createSpoolViaAPI(t, srv, map[string]any{"name": "PLA White", "material": "PLA"})
	createSpoolViaAPI(t, srv, map[string]any{"name": "PETG Clear", "material": "PETG"})

	rr := httptest.NewRecorder()
	srv.handleSpoolsList(rr, authed(http.MethodGet, "/api/spools?material=PETG", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	spools := decodeBody[[]models.FilamentSpool](t, rr)
	require.Len(t, spools, 1)
	assert.Equal(t, "PETG Clear", spools[0].Name)

	rr = httptest.NewRecorder()
	srv.handleSpoolsList(rr, authed(http.MethodGet, "/api/spools?limit=abc", nil, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestSpoolSetRemaining(t *testing.T) {
	srv := newTestServer(t)
	sp := createSpoolViaAPI(t, srv, map[string]any{"name": "Weighed", "material": "ABS"})
	params := map[string]string{"id": sp.ID}

	rr := httptest.NewRecorder()
	srv.handleSpoolSetRemaining(rr, authed(http.MethodPost, "/", map[string]any{"remaining_weight_g": 0}, params))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, models.SpoolEmpty, decodeBody[models.FilamentSpool](t, rr).Status)

	rr = httptest.NewRecorder()
	srv.handleSpoolSetRemaining(rr, authed(http.MethodPost, "/", map[string]any{"remaining_weight_g": 1500}, params))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = httptest.NewRecorder()
	srv.handleSpoolSetRemaining(rr, authed(http.MethodPost, "/", map[string]any{}, params))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestSpoolUpdateAndDelete(t *testing.T) {
	srv := newTestServer(t)
	sp := createSpoolViaAPI(t, srv, map[string]any{"name": "Before", "material": "PLA"})
	params := map[string]string{"id": sp.ID}

	rr := httptest.NewRecorder()
	srv.handleSpoolUpdate(rr, authed(http.MethodPut, "/", map[string]any{"name": "After", "material": "PLA", "status": "archived"}, params))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decodeBody[models.FilamentSpool](t, rr)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, models.SpoolArchived, updated.Status)

	rr = httptest.NewRecorder()
	srv.handleSpoolDelete(rr, authed(http.MethodDelete, "/", nil, params))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	srv.handleSpoolGet(rr, authed(http.MethodGet, "/", nil, params))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
