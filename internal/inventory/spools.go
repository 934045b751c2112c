package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/Simplici0/spooltrack/internal/costing"
	"github.com/Simplici0/spooltrack/internal/db"
	"github.com/Simplici0/spooltrack/internal/models"
	"github.com/Simplici0/spooltrack/internal/store"
)

// Spool defaults applied when the input leaves a field unset.
const (
	defaultTotalWeightG = 1000.0
	defaultPrintTempMin = 190
	defaultPrintTempMax = 220
	defaultBedTempMin   = 50
	defaultBedTempMax   = 70
)

// SpoolInput is the editable shape of a spool. Nil pointers take defaults.
type SpoolInput struct {
	Name             string             `json:"name" validate:"required,max=200"`
	Brand            string             `json:"brand" validate:"max=200"`
	Material         models.Material    `json:"material" validate:"required,material"`
	Color            string             `json:"color" validate:"max=100"`
	ColorHex         string             `json:"color_hex" validate:"omitempty,hexcolor"`
	TotalWeightG     *float64           `json:"total_weight_g" validate:"omitempty,gt=0"`
	RemainingWeightG *float64           `json:"remaining_weight_g" validate:"omitempty,gte=0"`
	CostPerSpool     float64            `json:"cost_per_spool" validate:"gte=0"`
	Currency         models.Currency    `json:"currency" validate:"omitempty,currency"`
	DiameterMM       float64            `json:"diameter_mm" validate:"omitempty,diameter"`
	DensityGCm3      *float64           `json:"density_g_cm3" validate:"omitempty,gt=0"`
	PrintTempMin     *int               `json:"print_temp_min" validate:"omitempty,gte=0"`
	PrintTempMax     *int               `json:"print_temp_max" validate:"omitempty,gte=0"`
	BedTempMin       *int               `json:"bed_temp_min" validate:"omitempty,gte=0"`
	BedTempMax       *int               `json:"bed_temp_max" validate:"omitempty,gte=0"`
	Status           models.SpoolStatus `json:"status" validate:"omitempty,spool_status"`
	Notes            string             `json:"notes" validate:"max=5000"`
	PurchaseDate     string             `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`
	PurchaseURL      string             `json:"purchase_url" validate:"omitempty,url"`
}

// SpoolDetail is a spool together with values derived from it.
type SpoolDetail struct {
	models.FilamentSpool
	CostPerGram    float64 `json:"cost_per_gram"`
	UsedWeightG    float64 `json:"used_weight_g"`
	PrintedWeightG float64 `json:"printed_weight_g"`
	RemainingValue float64 `json:"remaining_value"`
	PercentLeft    float64 `json:"percent_left"`
}

func detail(sp models.FilamentSpool) SpoolDetail {
	cpg := costing.CostPerGram(sp)
	percent := 0.0
	if sp.TotalWeightG > 0 {
		percent = sp.RemainingWeightG / sp.TotalWeightG * 100
	}
	return SpoolDetail{
		FilamentSpool:  sp,
		CostPerGram:    cpg,
		UsedWeightG:    sp.TotalWeightG - sp.RemainingWeightG,
		RemainingValue: cpg * sp.RemainingWeightG,
		PercentLeft:    percent,
	}
}

func orInt(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func orFloat(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// buildSpool validates in and lays it over base, which is the stored spool
// on update or carries only the owner on create.
func (s *Service) buildSpool(in SpoolInput, base models.FilamentSpool) (models.FilamentSpool, error) {
	in.Name = strings.TrimSpace(in.Name)

	sp := base
	sp.Name = in.Name
	sp.Brand = strings.TrimSpace(in.Brand)
	sp.Material = in.Material
	sp.Color = in.Color
	sp.ColorHex = in.ColorHex
	sp.CostPerSpool = in.CostPerSpool
	sp.Notes = in.Notes
	sp.PurchaseDate = in.PurchaseDate
	sp.PurchaseURL = in.PurchaseURL

	// On update, omitted fields keep the stored values rather than the defaults.
	defaults := models.FilamentSpool{
		TotalWeightG: defaultTotalWeightG,
		Currency:     models.DefaultCurrency,
		DiameterMM:   models.Diameter175,
		DensityGCm3:  in.Material.DefaultDensity(),
		PrintTempMin: defaultPrintTempMin,
		PrintTempMax: defaultPrintTempMax,
		BedTempMin:   defaultBedTempMin,
		BedTempMax:   defaultBedTempMax,
	}
	if base.ID != "" {
		defaults = base
		if base.Material != in.Material {
			defaults.DensityGCm3 = in.Material.DefaultDensity()
		}
	}

	sp.TotalWeightG = orFloat(in.TotalWeightG, defaults.TotalWeightG)
	remaining := sp.TotalWeightG
	if base.ID != "" {
		remaining = base.RemainingWeightG
	}
	sp.RemainingWeightG = orFloat(in.RemainingWeightG, remaining)
	sp.Currency = in.Currency
	if sp.Currency == "" {
		sp.Currency = defaults.Currency
	}
	sp.DiameterMM = in.DiameterMM
	if sp.DiameterMM == 0 {
		sp.DiameterMM = defaults.DiameterMM
	}
	sp.DensityGCm3 = orFloat(in.DensityGCm3, defaults.DensityGCm3)
	sp.PrintTempMin = orInt(in.PrintTempMin, defaults.PrintTempMin)
	sp.PrintTempMax = orInt(in.PrintTempMax, defaults.PrintTempMax)
	sp.BedTempMin = orInt(in.BedTempMin, defaults.BedTempMin)
	sp.BedTempMax = orInt(in.BedTempMax, defaults.BedTempMax)

	extra := map[string]string{}
	if sp.RemainingWeightG > sp.TotalWeightG {
		extra["remaining_weight_g"] = "ltefield"
	}
	if sp.PrintTempMin > sp.PrintTempMax {
		extra["print_temp_max"] = "gtefield"
	}
	if sp.BedTempMin > sp.BedTempMax {
		extra["bed_temp_max"] = "gtefield"
	}
	if err := s.check(in, extra); err != nil {
		return models.FilamentSpool{}, err
	}

	switch {
	case in.Status == models.SpoolArchived:
		sp.Status = models.SpoolArchived
	case in.Status == "" && base.Status == models.SpoolArchived:
		sp.Status = models.SpoolArchived
	default:
		sp.Status = costing.DeriveStatus(sp.RemainingWeightG, sp.TotalWeightG)
	}
	return sp, nil
}

// CreateSpool adds a spool to the owner's inventory.
func (s *Service) CreateSpool(ctx context.Context, owner string, in SpoolInput) (models.FilamentSpool, error) {
	sp, err := s.buildSpool(in, models.FilamentSpool{Owner: owner})
	if err != nil {
		return models.FilamentSpool{}, err
	}
	return s.store.InsertSpool(ctx, sp, s.now())
}

func (s *Service) ListSpools(ctx context.Context, owner string, f store.SpoolFilter) ([]models.FilamentSpool, error) {
	return s.store.ListSpools(ctx, owner, f)
}

// GetSpool returns a spool with its derived values. UsedWeightG is what the
// scale says is gone; PrintedWeightG is what the logged prints account for.
func (s *Service) GetSpool(ctx context.Context, owner, id string) (SpoolDetail, error) {
	sp, err := s.store.GetSpool(ctx, owner, id)
	if err != nil {
		return SpoolDetail{}, err
	}
	d := detail(sp)
	if d.PrintedWeightG, err = s.store.SpoolGramsUsed(ctx, owner, id); err != nil {
		return SpoolDetail{}, err
	}
	return d, nil
}

// ListSpoolPrints returns the prints that drew from a spool, newest first.
func (s *Service) ListSpoolPrints(ctx context.Context, owner, id string) ([]models.PrintProject, error) {
	if _, err := s.store.GetSpool(ctx, owner, id); err != nil {
		return nil, err
	}
	return s.store.ListPrints(ctx, owner, store.PrintFilter{SpoolID: id})
}

// UpdateSpool replaces the editable fields of a spool. Omitted weights,
// currency, diameter, density and temperatures keep their stored values; density
// falls back to the new material's default when the material changes. An
// archived spool stays archived unless the input names another status.
func (s *Service) UpdateSpool(ctx context.Context, owner, id string, in SpoolInput) (models.FilamentSpool, error) {
	var updated models.FilamentSpool
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		st := s.store.WithTx(tx)
		current, err := st.GetSpool(ctx, owner, id)
		if err != nil {
			return err
		}
		sp, err := s.buildSpool(in, current)
		if err != nil {
			return err
		}
		updated, err = st.UpdateSpool(ctx, sp, s.now())
		return err
	})
	if err != nil {
		return models.FilamentSpool{}, err
	}
	return updated, nil
}

// SetRemaining records a manually weighed remaining amount and re-derives the status.
func (s *Service) SetRemaining(ctx context.Context, owner, id string, grams float64) (models.FilamentSpool, error) {
	var updated models.FilamentSpool
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		st := s.store.WithTx(tx)
		sp, err := st.GetSpool(ctx, owner, id)
		if err != nil {
			return err
		}
		if math.IsNaN(grams) || grams < 0 || grams > sp.TotalWeightG {
			return fieldError("remaining_weight_g", "range")
		}
		status := costing.DeriveStatus(grams, sp.TotalWeightG)
		if err := st.SetSpoolStock(ctx, owner, id, grams, status, s.now()); err != nil {
			return err
		}
		updated, err = st.GetSpool(ctx, owner, id)
		return err
	})
	if err != nil {
		return models.FilamentSpool{}, fmt.Errorf("set remaining weight: %w", err)
	}
	return updated, nil
}

// DeleteSpool removes a spool. Prints that drew from it keep their snapshot.
func (s *Service) DeleteSpool(ctx context.Context, owner, id string) error {
	return s.store.DeleteSpool(ctx, owner, id)
}
