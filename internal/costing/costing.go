package costing

import (
	"errors"
	"fmt"
	"math"

	"github.com/Simplici0/spooltrack/internal/models"
)

// ErrInvalidInput is returned for negative or non-finite weights, times and rates.
var ErrInvalidInput = errors.New("invalid input")

// lowStockFraction is the share of total weight below which a spool counts as low.
const lowStockFraction = 0.1

// CostPerGram returns the purchase cost of one gram of filament from the spool.
// A spool without a positive total weight has a cost per gram of zero.
func CostPerGram(spool models.FilamentSpool) float64 {
	if spool.TotalWeightG <= 0 {
		return 0
	}
	return spool.CostPerSpool / spool.TotalWeightG
}

// FilamentCost returns the cost of usedGrams of filament from the spool.
func FilamentCost(spool models.FilamentSpool, usedGrams float64) (float64, error) {
	if err := nonNegative("used grams", usedGrams); err != nil {
		return 0, err
	}
	return CostPerGram(spool) * usedGrams, nil
}

// ElectricityCost returns the energy cost of running a printer drawing
// wattage for minutes at ratePerKWh.
func ElectricityCost(wattage, minutes, ratePerKWh float64) float64 {
	return (wattage / 1000.0) * (minutes / 60.0) * ratePerKWh
}

func LaborCost(ratePerHour, minutes float64) float64 {
	return ratePerHour * (minutes / 60.0)
}

func MachineWearCost(ratePerHour, minutes float64) float64 {
	return ratePerHour * (minutes / 60.0)
}

// TotalCost sums the four cost components. No rounding is applied.
func TotalCost(filament, electricity, labor, wear float64) float64 {
	return filament + electricity + labor + wear
}

// DeriveStatus returns the inventory status for a spool holding remaining of total grams.
func DeriveStatus(remaining, total float64) models.SpoolStatus {
	switch {
	case remaining == 0:
		return models.SpoolEmpty
	case remaining < lowStockFraction*total:
		return models.SpoolLow
	default:
		return models.SpoolActive
	}
}

// ApplyConsumption returns the spool's remaining weight and status after
// usedGrams are drawn from it. The result is computed from the spool's
// current remaining weight, so applying it twice for one print deducts twice.
func ApplyConsumption(spool models.FilamentSpool, usedGrams float64) (float64, models.SpoolStatus, error) {
	if err := nonNegative("used grams", usedGrams); err != nil {
		return 0, "", err
	}
	remaining := math.Max(0, spool.RemainingWeightG-usedGrams)
	return remaining, DeriveStatus(remaining, spool.TotalWeightG), nil
}

// Input represents the print parameters used to estimate its cost.
type Input struct {
	Spool   models.FilamentSpool
	GramsG  float64
	Minutes float64
	Wattage float64
}

// Rates represents overhead rates shared across calculations.
type Rates struct {
	ElectricityPerKWh float64
	LaborPerHour      float64
	WearPerHour       float64
}

// Breakdown contains every line item of the cost calculation.
type Breakdown struct {
	CostPerGram     float64 `json:"cost_per_gram"`
	FilamentCost    float64 `json:"filament_cost"`
	ElectricityCost float64 `json:"electricity_cost"`
	LaborCost       float64 `json:"labor_cost"`
	MachineWearCost float64 `json:"machine_wear_cost"`
}

// Totals contains roll-up values from the calculation.
type Totals struct {
	Total       float64 `json:"total_cost"`
	CostPerHour float64 `json:"cost_per_hour"`
}

// Result groups the full cost output.
type Result struct {
	Breakdown Breakdown `json:"breakdown"`
	Totals    Totals    `json:"totals"`
}

// Calculate computes every cost component of a print from its inputs and rates.
func Calculate(in Input, rates Rates) (Result, error) {
	checks := []struct {
		name  string
		value float64
	}{
		{"grams", in.GramsG},
		{"minutes", in.Minutes},
		{"wattage", in.Wattage},
		{"electricity rate", rates.ElectricityPerKWh},
		{"labor rate", rates.LaborPerHour},
		{"wear rate", rates.WearPerHour},
	}
	for _, c := range checks {
		if err := nonNegative(c.name, c.value); err != nil {
			return Result{}, err
		}
	}

	filament, err := FilamentCost(in.Spool, in.GramsG)
	if err != nil {
		return Result{}, err
	}
	electricity := ElectricityCost(in.Wattage, in.Minutes, rates.ElectricityPerKWh)
	labor := LaborCost(rates.LaborPerHour, in.Minutes)
	wear := MachineWearCost(rates.WearPerHour, in.Minutes)
	total := TotalCost(filament, electricity, labor, wear)

	perHour := 0.0
	if in.Minutes > 0 {
		perHour = total / (in.Minutes / 60.0)
	}

	return Result{
		Breakdown: Breakdown{
			CostPerGram:     CostPerGram(in.Spool),
			FilamentCost:    filament,
			ElectricityCost: electricity,
			LaborCost:       labor,
			MachineWearCost: wear,
		},
		Totals: Totals{
			Total:       total,
			CostPerHour: perHour,
		},
	}, nil
}

func nonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be a finite number: %w", name, ErrInvalidInput)
	}
	if v < 0 {
		return fmt.Errorf("%s must not be negative: %w", name, ErrInvalidInput)
	}
	return nil
}
