package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/spooltrack/internal/costing"
	"github.com/Simplici0/spooltrack/internal/inventory"
	"github.com/Simplici0/spooltrack/internal/models"
)

func TestCalculator(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.handleCalculator(rr, authed(http.MethodPost, "/api/calculator", map[string]any{
		"weight_g":       200,
		"minutes":        120,
		"cost_per_spool": 25,
		"spool_weight_g": 1000,
		"labor_rate":     10,
	}, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	result := decodeBody[costing.Result](t, rr)
	assert.InDelta(t, 5, result.Breakdown.FilamentCost, 1e-9)
	assert.InDelta(t, 0.048, result.Breakdown.ElectricityCost, 1e-9)
	assert.InDelta(t, 20, result.Breakdown.LaborCost, 1e-9)
	assert.InDelta(t, 25.048, result.Totals.Total, 1e-9)
}

func TestSettingsRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.handleSettingsGet(rr, authed(http.MethodGet, "/api/settings", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.InDelta(t, 0.12, decodeBody[models.CostSettings](t, rr).ElectricityRatePerKWh, 1e-9)

	rr = httptest.NewRecorder()
	srv.handleSettingsUpdate(rr, authed(http.MethodPut, "/api/settings", map[string]any{
		"electricity_rate_per_kwh": 0.25,
		"labor_rate_per_hour":      18,
		"currency":                 "EUR",
	}, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = httptest.NewRecorder()
	srv.handleSettingsGet(rr, authed(http.MethodGet, "/api/settings", nil, nil))
	cs := decodeBody[models.CostSettings](t, rr)
	assert.InDelta(t, 18, cs.LaborRatePerHour, 1e-9)
	assert.Equal(t, models.Currency("EUR"), cs.Currency)

	rr = httptest.NewRecorder()
	srv.handleSettingsUpdate(rr, authed(http.MethodPut, "/api/settings", map[string]any{"currency": "DOGE"}, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestPrintersEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.handlePrintersList(rr, authed(http.MethodGet, "/api/printers", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]models.Printer](t, rr), 1, "seed adds a default printer")

	rr = httptest.NewRecorder()
	srv.handlePrintersCreate(rr, authed(http.MethodPost, "/api/printers", map[string]any{"name": "Voron", "wattage": 350}, nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	p := decodeBody[models.Printer](t, rr)

	rr = httptest.NewRecorder()
	srv.handlePrinterUpdate(rr, authed(http.MethodPut, "/", map[string]any{"name": "Voron 2.4", "wattage": 400, "status": "inactive"}, map[string]string{"id": p.ID}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = httptest.NewRecorder()
	srv.handlePrintersList(rr, authed(http.MethodGet, "/api/printers?active=true", nil, nil))
	assert.Len(t, decodeBody[[]models.Printer](t, rr), 1)

	rr = httptest.NewRecorder()
	srv.handlePrinterDelete(rr, authed(http.MethodDelete, "/", nil, map[string]string{"id": p.ID}))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestDashboardEndpoint(t *testing.T) {
	srv := newTestServer(t)
	createSpoolViaAPI(t, srv, map[string]any{"name": "Low", "material": "PLA", "remaining_weight_g": 20})

	rr := httptest.NewRecorder()
	srv.handleDashboard(rr, authed(http.MethodGet, "/api/dashboard", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	d := decodeBody[inventory.Dashboard](t, rr)
	assert.Equal(t, 1, d.ActiveSpools)
	require.Len(t, d.LowStock, 1)
	require.Len(t, d.DailyCosts, 7)
	assert.Equal(t, "2025-03-10", d.DailyCosts[6].Date)
}
