package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Simplici0/spooltrack/internal/costing"
	"github.com/Simplici0/spooltrack/internal/db"
	"github.com/Simplici0/spooltrack/internal/models"
	"github.com/Simplici0/spooltrack/internal/store"
)

// Print parameter defaults.
const (
	defaultLayerHeightMM = 0.2
	defaultInfillPercent = 20.0
	defaultPrintSpeedMMS = 60.0
)

// PrintInput describes a print to log. When DeriveOverheads is set the
// electricity, labor and wear costs are computed from the printer wattage
// and the owner's cost settings instead of being taken from the input.
type PrintInput struct {
	Name             string             `json:"name" validate:"required,max=200"`
	SpoolID          string             `json:"spool_id" validate:"omitempty,uuid"`
	PrinterID        string             `json:"printer_id" validate:"omitempty,uuid"`
	ModelFileURL     string             `json:"model_file_url" validate:"max=2048"`
	FilamentUsedG    float64            `json:"filament_used_g" validate:"gte=0"`
	PrintTimeMinutes float64            `json:"print_time_minutes" validate:"gte=0"`
	LayerHeightMM    *float64           `json:"layer_height_mm" validate:"omitempty,gt=0,lte=2"`
	InfillPercent    *float64           `json:"infill_percent" validate:"omitempty,gte=0,lte=100"`
	PrintSpeedMMS    *float64           `json:"print_speed_mm_s" validate:"omitempty,gt=0"`
	Supports         bool               `json:"supports"`
	NozzleTemp       int                `json:"nozzle_temp" validate:"gte=0"`
	BedTemp          int                `json:"bed_temp" validate:"gte=0"`
	ElectricityCost  float64            `json:"electricity_cost" validate:"gte=0"`
	LaborCost        float64            `json:"labor_cost" validate:"gte=0"`
	MachineWearCost  float64            `json:"machine_wear_cost" validate:"gte=0"`
	DeriveOverheads  bool               `json:"derive_overheads"`
	Status           models.PrintStatus `json:"status" validate:"omitempty,print_status"`
	Notes            string             `json:"notes" validate:"max=5000"`
}

// PrintUpdate changes the descriptive fields of a logged print. Nil fields are left as they are.
type PrintUpdate struct {
	Name   *string             `json:"name" validate:"omitempty,min=1,max=200"`
	Status *models.PrintStatus `json:"status" validate:"omitempty,print_status"`
	Notes  *string             `json:"notes" validate:"omitempty,max=5000"`
}

// LogPrint records a print and draws its filament from the referenced spool.
// The print insert and the spool update commit together or not at all.
func (s *Service) LogPrint(ctx context.Context, owner string, in PrintInput) (models.PrintProject, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in, nil); err != nil {
		return models.PrintProject{}, err
	}

	var logged models.PrintProject
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		st := s.store.WithTx(tx)
		now := s.now()

		settings, err := s.costSettings(ctx, st, owner)
		if err != nil {
			return err
		}

		p := models.PrintProject{
			Owner:            owner,
			Name:             in.Name,
			ModelFileURL:     in.ModelFileURL,
			Currency:         settings.Currency,
			FilamentUsedG:    in.FilamentUsedG,
			PrintTimeMinutes: in.PrintTimeMinutes,
			LayerHeightMM:    orFloat(in.LayerHeightMM, defaultLayerHeightMM),
			InfillPercent:    orFloat(in.InfillPercent, defaultInfillPercent),
			PrintSpeedMMS:    orFloat(in.PrintSpeedMMS, defaultPrintSpeedMMS),
			Supports:         in.Supports,
			NozzleTemp:       in.NozzleTemp,
			BedTemp:          in.BedTemp,
			ElectricityCost:  in.ElectricityCost,
			LaborCost:        in.LaborCost,
			MachineWearCost:  in.MachineWearCost,
			Status:           in.Status,
			Notes:            in.Notes,
		}
		if p.Status == "" {
			p.Status = models.PrintCompleted
		}

		var spool *models.FilamentSpool
		if in.SpoolID != "" {
			sp, err := st.GetSpool(ctx, owner, in.SpoolID)
			if errors.Is(err, store.ErrNotFound) {
				return fieldError("spool_id", "exists")
			}
			if err != nil {
				return err
			}
			if !sp.Status.Usable() {
				return fmt.Errorf("spool %q is %s: %w", sp.Name, sp.Status, ErrSpoolUnavailable)
			}
			spool = &sp

			p.SpoolID = sp.ID
			p.SpoolName = sp.Name
			p.Material = sp.Material
			p.Currency = sp.Currency
			if p.FilamentCost, err = costing.FilamentCost(sp, in.FilamentUsedG); err != nil {
				return err
			}
		}

		wattage := models.DefaultWattage
		if in.PrinterID != "" {
			printer, err := st.GetPrinter(ctx, owner, in.PrinterID)
			if errors.Is(err, store.ErrNotFound) {
				return fieldError("printer_id", "exists")
			}
			if err != nil {
				return err
			}
			p.PrinterID = printer.ID
			wattage = printer.Wattage
		}

		if in.DeriveOverheads {
			p.ElectricityCost = costing.ElectricityCost(wattage, in.PrintTimeMinutes, settings.ElectricityRatePerKWh)
			p.LaborCost = costing.LaborCost(settings.LaborRatePerHour, in.PrintTimeMinutes)
			p.MachineWearCost = costing.MachineWearCost(settings.MachineWearRatePerHour, in.PrintTimeMinutes)
		}
		p.TotalCost = costing.TotalCost(p.FilamentCost, p.ElectricityCost, p.LaborCost, p.MachineWearCost)

		logged, err = st.InsertPrint(ctx, p, now)
		if err != nil {
			return err
		}

		if spool == nil {
			return nil
		}
		remaining, status, err := costing.ApplyConsumption(*spool, in.FilamentUsedG)
		if err != nil {
			return err
		}
		return st.SetSpoolStock(ctx, owner, spool.ID, remaining, status, now)
	})
	if err != nil {
		return models.PrintProject{}, fmt.Errorf("log print: %w", err)
	}
	return logged, nil
}

func (s *Service) ListPrints(ctx context.Context, owner string, f store.PrintFilter) ([]models.PrintProject, error) {
	return s.store.ListPrints(ctx, owner, f)
}

func (s *Service) GetPrint(ctx context.Context, owner, id string) (models.PrintProject, error) {
	return s.store.GetPrint(ctx, owner, id)
}

// UpdatePrint edits the name, status or notes of a print. Filament usage is
// fixed once logged, so the spool is never touched here.
func (s *Service) UpdatePrint(ctx context.Context, owner, id string, in PrintUpdate) (models.PrintProject, error) {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if err := s.check(in, nil); err != nil {
		return models.PrintProject{}, err
	}

	var updated models.PrintProject
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		st := s.store.WithTx(tx)
		current, err := st.GetPrint(ctx, owner, id)
		if err != nil {
			return err
		}
		name, status, notes := current.Name, current.Status, current.Notes
		if in.Name != nil {
			name = *in.Name
		}
		if in.Status != nil {
			status = *in.Status
		}
		if in.Notes != nil {
			notes = *in.Notes
		}
		updated, err = st.UpdatePrintDetails(ctx, owner, id, name, status, notes, s.now())
		return err
	})
	if err != nil {
		return models.PrintProject{}, err
	}
	return updated, nil
}

// DeletePrint removes a print. Filament it consumed is not returned to the spool.
func (s *Service) DeletePrint(ctx context.Context, owner, id string) error {
	return s.store.DeletePrint(ctx, owner, id)
}
