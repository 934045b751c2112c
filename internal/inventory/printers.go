package inventory

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Simplici0/spooltrack/internal/db"
	"github.com/Simplici0/spooltrack/internal/models"
)

type PrinterInput struct {
	Name    string               `json:"name" validate:"required,max=200"`
	Wattage *float64             `json:"wattage" validate:"omitempty,gte=0,lte=5000"`
	Status  models.PrinterStatus `json:"status" validate:"omitempty,printer_status"`
	Notes   string               `json:"notes" validate:"max=5000"`
}

func (s *Service) buildPrinter(in PrinterInput, base models.Printer) (models.Printer, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in, nil); err != nil {
		return models.Printer{}, err
	}

	p := base
	p.Name = in.Name
	p.Notes = in.Notes
	p.Wattage = orFloat(in.Wattage, models.DefaultWattage)
	p.Status = in.Status
	if p.Status == "" {
		p.Status = models.PrinterActive
	}
	return p, nil
}

func (s *Service) CreatePrinter(ctx context.Context, owner string, in PrinterInput) (models.Printer, error) {
	p, err := s.buildPrinter(in, models.Printer{Owner: owner})
	if err != nil {
		return models.Printer{}, err
	}
	return s.store.InsertPrinter(ctx, p, s.now())
}

func (s *Service) ListPrinters(ctx context.Context, owner string, activeOnly bool) ([]models.Printer, error) {
	return s.store.ListPrinters(ctx, owner, activeOnly)
}

func (s *Service) GetPrinter(ctx context.Context, owner, id string) (models.Printer, error) {
	return s.store.GetPrinter(ctx, owner, id)
}

func (s *Service) UpdatePrinter(ctx context.Context, owner, id string, in PrinterInput) (models.Printer, error) {
	var updated models.Printer
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		st := s.store.WithTx(tx)
		current, err := st.GetPrinter(ctx, owner, id)
		if err != nil {
			return err
		}
		p, err := s.buildPrinter(in, current)
		if err != nil {
			return err
		}
		updated, err = st.UpdatePrinter(ctx, p, s.now())
		return err
	})
	if err != nil {
		return models.Printer{}, err
	}
	return updated, nil
}

// DeletePrinter removes a printer. Prints that used it keep their costs.
func (s *Service) DeletePrinter(ctx context.Context, owner, id string) error {
	return s.store.DeletePrinter(ctx, owner, id)
}
