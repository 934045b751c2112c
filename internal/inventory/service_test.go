package inventory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Simplici0/spooltrack/internal/db"
	"github.com/Simplici0/spooltrack/internal/migrations"
	"github.com/Simplici0/spooltrack/internal/models"
	"github.com/Simplici0/spooltrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "maker@example.com"

var clock = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrations.Up(conn))

	svc := NewService(conn)
	svc.now = func() time.Time { return clock }
	return svc
}

func ptr[T any](v T) *T { return &v }

func createSpool(t *testing.T, svc *Service, in SpoolInput) models.FilamentSpool {
	t.Helper()
	sp, err := svc.CreateSpool(context.Background(), owner, in)
	require.NoError(t, err)
	return sp
}

func TestCreateSpool_AppliesDefaults(t *testing.T) {
	svc := newTestService(t)

	sp := createSpool(t, svc, SpoolInput{Name: " Galaxy Black ", Material: models.MaterialPETG, CostPerSpool: 25})

	assert.Equal(t, "Galaxy Black", sp.Name)
	assert.InDelta(t, 1000, sp.TotalWeightG, 1e-9)
	assert.InDelta(t, 1000, sp.RemainingWeightG, 1e-9)
	assert.Equal(t, models.DefaultCurrency, sp.Currency)
	assert.InDelta(t, 1.75, sp.DiameterMM, 1e-9)
	assert.InDelta(t, 1.27, sp.DensityGCm3, 1e-9)
	assert.Equal(t, 190, sp.PrintTempMin)
	assert.Equal(t, 70, sp.BedTempMax)
	assert.Equal(t, models.SpoolActive, sp.Status)
}

func TestCreateSpool_DerivesStatus(t *testing.T) {
	svc := newTestService(t)

	low := createSpool(t, svc, SpoolInput{Name: "Low", Material: models.MaterialPLA, TotalWeightG: ptr(1000.0), RemainingWeightG: ptr(50.0)})
	assert.Equal(t, models.SpoolLow, low.Status)

	empty := createSpool(t, svc, SpoolInput{Name: "Empty", Material: models.MaterialPLA, RemainingWeightG: ptr(0.0)})
	assert.Equal(t, models.SpoolEmpty, empty.Status)

	// A client cannot claim a status the weights do not support.
	claimed := createSpool(t, svc, SpoolInput{Name: "Claimed", Material: models.MaterialPLA, RemainingWeightG: ptr(10.0), Status: models.SpoolActive})
	assert.Equal(t, models.SpoolLow, claimed.Status)

	archived := createSpool(t, svc, SpoolInput{Name: "Shelf", Material: models.MaterialPLA, Status: models.SpoolArchived})
	assert.Equal(t, models.SpoolArchived, archived.Status)
}

func TestCreateSpool_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    SpoolInput
		field string
	}{
		{"missing name", SpoolInput{Material: models.MaterialPLA}, "name"},
		{"unknown material", SpoolInput{Name: "x", Material: "Cheese"}, "material"},
		{"zero total", SpoolInput{Name: "x", Material: models.MaterialPLA, TotalWeightG: ptr(0.0)}, "total_weight_g"},
		{"remaining above total", SpoolInput{Name: "x", Material: models.MaterialPLA, TotalWeightG: ptr(500.0), RemainingWeightG: ptr(600.0)}, "remaining_weight_g"},
		{"negative cost", SpoolInput{Name: "x", Material: models.MaterialPLA, CostPerSpool: -1}, "cost_per_spool"},
		{"bad currency", SpoolInput{Name: "x", Material: models.MaterialPLA, Currency: "XYZ"}, "currency"},
		{"bad diameter", SpoolInput{Name: "x", Material: models.MaterialPLA, DiameterMM: 3}, "diameter_mm"},
		{"inverted temps", SpoolInput{Name: "x", Material: models.MaterialPLA, PrintTempMin: ptr(230), PrintTempMax: ptr(200)}, "print_temp_max"},
		{"bad color hex", SpoolInput{Name: "x", Material: models.MaterialPLA, ColorHex: "blue"}, "color_hex"},
		{"bad purchase date", SpoolInput{Name: "x", Material: models.MaterialPLA, PurchaseDate: "10/03/2025"}, "purchase_date"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateSpool(ctx, owner, tc.in)
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestUpdateSpool_PreservesArchivedAndStock(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sp := createSpool(t, svc, SpoolInput{Name: "Old", Material: models.MaterialABS, RemainingWeightG: ptr(400.0), Status: models.SpoolArchived})

	updated, err := svc.UpdateSpool(ctx, owner, sp.ID, SpoolInput{Name: "Old but renamed", Material: models.MaterialABS})
	require.NoError(t, err)
	assert.Equal(t, "Old but renamed", updated.Name)
	assert.Equal(t, models.SpoolArchived, updated.Status)
	assert.InDelta(t, 400, updated.RemainingWeightG, 1e-9)

	reactivated, err := svc.UpdateSpool(ctx, owner, sp.ID, SpoolInput{Name: "Back", Material: models.MaterialABS, Status: models.SpoolActive})
	require.NoError(t, err)
	assert.Equal(t, models.SpoolActive, reactivated.Status)

	_, err = svc.UpdateSpool(ctx, "other@example.com", sp.ID, SpoolInput{Name: "x", Material: models.MaterialABS})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateSpool_KeepsStoredPropertiesWhenOmitted(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sp := createSpool(t, svc, SpoolInput{
		Name:         "Tuned",
		Material:     models.MaterialPLA,
		Currency:     "EUR",
		DiameterMM:   models.Diameter285,
		DensityGCm3:  ptr(1.5),
		PrintTempMin: ptr(200),
		PrintTempMax: ptr(230),
		BedTempMin:   ptr(55),
		BedTempMax:   ptr(65),
	})

	updated, err := svc.UpdateSpool(ctx, owner, sp.ID, SpoolInput{Name: "Tuned v2", Material: models.MaterialPLA})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, updated.DensityGCm3, 1e-9)
	assert.Equal(t, 200, updated.PrintTempMin)
	assert.Equal(t, 230, updated.PrintTempMax)
	assert.Equal(t, 55, updated.BedTempMin)
	assert.Equal(t, 65, updated.BedTempMax)
	assert.Equal(t, models.Currency("EUR"), updated.Currency)
	assert.InDelta(t, models.Diameter285, updated.DiameterMM, 1e-9)

	switched, err := svc.UpdateSpool(ctx, owner, sp.ID, SpoolInput{Name: "Now PETG", Material: models.MaterialPETG})
	require.NoError(t, err)
	assert.InDelta(t, models.MaterialPETG.DefaultDensity(), switched.DensityGCm3, 1e-9)
	assert.Equal(t, 200, switched.PrintTempMin)
}

func TestSetRemaining(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sp := createSpool(t, svc, SpoolInput{Name: "Scale", Material: models.MaterialPLA})

	updated, err := svc.SetRemaining(ctx, owner, sp.ID, 80)
	require.NoError(t, err)
	assert.InDelta(t, 80, updated.RemainingWeightG, 1e-9)
	assert.Equal(t, models.SpoolLow, updated.Status)

	_, err = svc.SetRemaining(ctx, owner, sp.ID, 1001)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.SetRemaining(ctx, owner, sp.ID, -1)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetRemaining(ctx, owner, "missing", 10)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetSpool_Detail(t *testing.T) {
	svc := newTestService(t)
	sp := createSpool(t, svc, SpoolInput{Name: "Detail", Material: models.MaterialPLA, CostPerSpool: 25, RemainingWeightG: ptr(600.0)})

	d, err := svc.GetSpool(context.Background(), owner, sp.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.025, d.CostPerGram, 1e-9)
	assert.InDelta(t, 400, d.UsedWeightG, 1e-9)
	assert.Zero(t, d.PrintedWeightG)
	assert.InDelta(t, 15, d.RemainingValue, 1e-9)
	assert.InDelta(t, 60, d.PercentLeft, 1e-9)
}
