package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/spooltrack/internal/models"
)

// PrintFilter narrows ListPrints results. Zero values match everything.
type PrintFilter struct {
	Search  string
	Status  models.PrintStatus
	SpoolID string
	Limit   int
}

const printColumns = `
	id, owner, name, spool_id, printer_id, spool_name, material, currency, model_file_url,
	filament_used_g, filament_cost, print_time_minutes, layer_height_mm, infill_percent,
	print_speed_mm_s, supports, nozzle_temp, bed_temp, electricity_cost, labor_cost,
	machine_wear_cost, total_cost, status, notes, created_at, updated_at`

func scanPrint(row scanner) (models.PrintProject, error) {
	var (
		p                    models.PrintProject
		spoolID, printerID   sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&p.ID, &p.Owner, &p.Name, &spoolID, &printerID, &p.SpoolName, &p.Material, &p.Currency,
		&p.ModelFileURL, &p.FilamentUsedG, &p.FilamentCost, &p.PrintTimeMinutes, &p.LayerHeightMM,
		&p.InfillPercent, &p.PrintSpeedMMS, &p.Supports, &p.NozzleTemp, &p.BedTemp,
		&p.ElectricityCost, &p.LaborCost, &p.MachineWearCost, &p.TotalCost, &p.Status, &p.Notes,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return models.PrintProject{}, err
	}
	p.SpoolID = spoolID.String
	p.PrinterID = printerID.String
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.PrintProject{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.PrintProject{}, err
	}
	return p, nil
}

// InsertPrint stores a new print, assigning its id and timestamps.
func (s *Store) InsertPrint(ctx context.Context, p models.PrintProject, now time.Time) (models.PrintProject, error) {
	p.ID = newID()
	p.CreatedAt = now.UTC()
	p.UpdatedAt = now.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prints (`+printColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.Owner, p.Name, nullString(p.SpoolID), nullString(p.PrinterID), p.SpoolName,
		p.Material, p.Currency, p.ModelFileURL, p.FilamentUsedG, p.FilamentCost,
		p.PrintTimeMinutes, p.LayerHeightMM, p.InfillPercent, p.PrintSpeedMMS, p.Supports,
		p.NozzleTemp, p.BedTemp, p.ElectricityCost, p.LaborCost, p.MachineWearCost, p.TotalCost,
		p.Status, p.Notes, FormatTime(p.CreatedAt), FormatTime(p.UpdatedAt),
	)
	if err != nil {
		return models.PrintProject{}, fmt.Errorf("insert print: %w", err)
	}
	return p, nil
}

// GetPrint returns the owner's print with the given id.
func (s *Store) GetPrint(ctx context.Context, owner, id string) (models.PrintProject, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+printColumns+` FROM prints WHERE owner = ? AND id = ?`, owner, id)
	p, err := scanPrint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PrintProject{}, ErrNotFound
	}
	if err != nil {
		return models.PrintProject{}, fmt.Errorf("query print: %w", err)
	}
	return p, nil
}

// ListPrints returns the owner's prints, newest first.
func (s *Store) ListPrints(ctx context.Context, owner string, f PrintFilter) ([]models.PrintProject, error) {
	where := []string{"owner = ?"}
	args := []any{owner}

	if term := strings.TrimSpace(f.Search); term != "" {
		where = append(where, `name LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(term))
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.SpoolID != "" {
		where = append(where, "spool_id = ?")
		args = append(args, f.SpoolID)
	}
	args = append(args, limitOrDefault(f.Limit))

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+printColumns+`
		FROM prints
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query prints: %w", err)
	}
	defer rows.Close()

	prints := []models.PrintProject{}
	for rows.Next() {
		p, err := scanPrint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan print: %w", err)
		}
		prints = append(prints, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prints: %w", err)
	}
	return prints, nil
}

// UpdatePrintDetails changes the descriptive fields of a print. Cost and
// consumption columns are fixed at creation.
func (s *Store) UpdatePrintDetails(ctx context.Context, owner, id, name string, status models.PrintStatus, notes string, now time.Time) (models.PrintProject, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE prints SET name = ?, status = ?, notes = ?, updated_at = ?
		WHERE owner = ? AND id = ?
	`, name, status, notes, FormatTime(now), owner, id)
	if err != nil {
		return models.PrintProject{}, fmt.Errorf("update print: %w", err)
	}
	if err := checkAffected(res, "print update"); err != nil {
		return models.PrintProject{}, err
	}
	return s.GetPrint(ctx, owner, id)
}

// DeletePrint removes a print. The spool it drew from is left untouched.
func (s *Store) DeletePrint(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM prints WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("delete print: %w", err)
	}
	return checkAffected(res, "print delete")
}

// PrintTotals aggregates every print of an owner.
type PrintTotals struct {
	Count             int     `json:"print_count"`
	TotalCost         float64 `json:"total_cost"`
	TotalFilamentCost float64 `json:"total_filament_cost"`
	TotalGramsUsed    float64 `json:"total_grams_used"`
}

func (s *Store) PrintTotals(ctx context.Context, owner string) (PrintTotals, error) {
	var t PrintTotals
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(total_cost), 0),
			COALESCE(SUM(filament_cost), 0),
			COALESCE(SUM(filament_used_g), 0)
		FROM prints WHERE owner = ?
	`, owner).Scan(&t.Count, &t.TotalCost, &t.TotalFilamentCost, &t.TotalGramsUsed)
	if err != nil {
		return PrintTotals{}, fmt.Errorf("sum prints: %w", err)
	}
	return t, nil
}

// SpoolGramsUsed returns the filament drawn from a spool by the prints still on record.
func (s *Store) SpoolGramsUsed(ctx context.Context, owner, spoolID string) (float64, error) {
	var grams float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(filament_used_g), 0) FROM prints WHERE owner = ? AND spool_id = ?
	`, owner, spoolID).Scan(&grams)
	if err != nil {
		return 0, fmt.Errorf("sum spool usage: %w", err)
	}
	return grams, nil
}

// DailyCosts returns the summed total cost per UTC day (YYYY-MM-DD) for
// prints created at or after since.
func (s *Store) DailyCosts(ctx context.Context, owner string, since time.Time) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(created_at, 1, 10) AS day, SUM(total_cost)
		FROM prints
		WHERE owner = ? AND created_at >= ?
		GROUP BY day
	`, owner, FormatTime(since))
	if err != nil {
		return nil, fmt.Errorf("query daily costs: %w", err)
	}
	defer rows.Close()

	out := map[string]float64{}
	for rows.Next() {
		var (
			day  string
			cost float64
		)
		if err := rows.Scan(&day, &cost); err != nil {
			return nil, fmt.Errorf("scan daily cost: %w", err)
		}
		out[day] = cost
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily costs: %w", err)
	}
	return out, nil
}
