package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/Simplici0/spooltrack/internal/costing"
	"github.com/Simplici0/spooltrack/internal/models"
	"github.com/Simplici0/spooltrack/internal/store"
)

// EstimateInput describes a hypothetical print. Rates left nil fall back to
// the owner's cost settings; wattage falls back to the printer, then to the
// default wattage.
type EstimateInput struct {
	SpoolID         string   `json:"spool_id" validate:"omitempty,uuid"`
	PrinterID       string   `json:"printer_id" validate:"omitempty,uuid"`
	WeightG         float64  `json:"weight_g" validate:"gte=0"`
	Minutes         float64  `json:"minutes" validate:"gte=0"`
	CostPerSpool    *float64 `json:"cost_per_spool" validate:"omitempty,gte=0"`
	SpoolWeightG    *float64 `json:"spool_weight_g" validate:"omitempty,gt=0"`
	Wattage         *float64 `json:"wattage" validate:"omitempty,gte=0"`
	ElectricityRate *float64 `json:"electricity_rate" validate:"omitempty,gte=0"`
	LaborRate       *float64 `json:"labor_rate" validate:"omitempty,gte=0"`
	WearRate        *float64 `json:"wear_rate" validate:"omitempty,gte=0"`
}

// Estimate prices a print without logging it or touching any spool.
func (s *Service) Estimate(ctx context.Context, owner string, in EstimateInput) (costing.Result, error) {
	if err := s.check(in, nil); err != nil {
		return costing.Result{}, err
	}

	settings, err := s.costSettings(ctx, s.store, owner)
	if err != nil {
		return costing.Result{}, err
	}

	var spool models.FilamentSpool
	if in.SpoolID != "" {
		spool, err = s.store.GetSpool(ctx, owner, in.SpoolID)
		if errors.Is(err, store.ErrNotFound) {
			return costing.Result{}, fieldError("spool_id", "exists")
		}
		if err != nil {
			return costing.Result{}, err
		}
	}
	if in.CostPerSpool != nil {
		spool.CostPerSpool = *in.CostPerSpool
	}
	if in.SpoolWeightG != nil {
		spool.TotalWeightG = *in.SpoolWeightG
	}

	wattage := models.DefaultWattage
	if in.PrinterID != "" {
		printer, err := s.store.GetPrinter(ctx, owner, in.PrinterID)
		if errors.Is(err, store.ErrNotFound) {
			return costing.Result{}, fieldError("printer_id", "exists")
		}
		if err != nil {
			return costing.Result{}, err
		}
		wattage = printer.Wattage
	}

	result, err := costing.Calculate(
		costing.Input{
			Spool:   spool,
			GramsG:  in.WeightG,
			Minutes: in.Minutes,
			Wattage: orFloat(in.Wattage, wattage),
		},
		costing.Rates{
			ElectricityPerKWh: orFloat(in.ElectricityRate, settings.ElectricityRatePerKWh),
			LaborPerHour:      orFloat(in.LaborRate, settings.LaborRatePerHour),
			WearPerHour:       orFloat(in.WearRate, settings.MachineWearRatePerHour),
		},
	)
	if err != nil {
		return costing.Result{}, fmt.Errorf("estimate cost: %w", err)
	}
	return result, nil
}

type CostSettingsInput struct {
	ElectricityRatePerKWh  float64         `json:"electricity_rate_per_kwh" validate:"gte=0"`
	LaborRatePerHour       float64         `json:"labor_rate_per_hour" validate:"gte=0"`
	MachineWearRatePerHour float64         `json:"machine_wear_rate_per_hour" validate:"gte=0"`
	Currency               models.Currency `json:"currency" validate:"omitempty,currency"`
}

// GetCostSettings returns the owner's settings, or the defaults when none are stored.
func (s *Service) GetCostSettings(ctx context.Context, owner string) (models.CostSettings, error) {
	return s.costSettings(ctx, s.store, owner)
}

func (s *Service) UpdateCostSettings(ctx context.Context, owner string, in CostSettingsInput) (models.CostSettings, error) {
	if err := s.check(in, nil); err != nil {
		return models.CostSettings{}, err
	}
	cs := models.CostSettings{
		Owner:                  owner,
		ElectricityRatePerKWh:  in.ElectricityRatePerKWh,
		LaborRatePerHour:       in.LaborRatePerHour,
		MachineWearRatePerHour: in.MachineWearRatePerHour,
		Currency:               in.Currency,
	}
	if cs.Currency == "" {
		cs.Currency = models.DefaultCurrency
	}
	return s.store.UpsertCostSettings(ctx, cs, s.now())
}

func (s *Service) costSettings(ctx context.Context, st *store.Store, owner string) (models.CostSettings, error) {
	cs, err := st.GetCostSettings(ctx, owner)
	if errors.Is(err, store.ErrNotFound) {
		return models.DefaultCostSettings(owner), nil
	}
	if err != nil {
		return models.CostSettings{}, err
	}
	return cs, nil
}
