package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/spooltrack/internal/models"
)

// GetCostSettings returns the owner's stored settings, or ErrNotFound.
func (s *Store) GetCostSettings(ctx context.Context, owner string) (models.CostSettings, error) {
	var (
		cs        models.CostSettings
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT owner, electricity_rate_per_kwh, labor_rate_per_hour, machine_wear_rate_per_hour, currency, updated_at
		FROM cost_settings WHERE owner = ?
	`, owner).Scan(&cs.Owner, &cs.ElectricityRatePerKWh, &cs.LaborRatePerHour, &cs.MachineWearRatePerHour, &cs.Currency, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CostSettings{}, ErrNotFound
	}
	if err != nil {
		return models.CostSettings{}, fmt.Errorf("query cost settings: %w", err)
	}
	if cs.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.CostSettings{}, err
	}
	return cs, nil
}

// UpsertCostSettings stores the owner's settings, replacing any previous row.
func (s *Store) UpsertCostSettings(ctx context.Context, cs models.CostSettings, now time.Time) (models.CostSettings, error) {
	cs.UpdatedAt = now.UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cost_settings (owner, electricity_rate_per_kwh, labor_rate_per_hour, machine_wear_rate_per_hour, currency, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET
			electricity_rate_per_kwh = excluded.electricity_rate_per_kwh,
			labor_rate_per_hour = excluded.labor_rate_per_hour,
			machine_wear_rate_per_hour = excluded.machine_wear_rate_per_hour,
			currency = excluded.currency,
			updated_at = excluded.updated_at
	`, cs.Owner, cs.ElectricityRatePerKWh, cs.LaborRatePerHour, cs.MachineWearRatePerHour, cs.Currency, FormatTime(cs.UpdatedAt))
	if err != nil {
		return models.CostSettings{}, fmt.Errorf("upsert cost settings: %w", err)
	}
	return cs, nil
}
