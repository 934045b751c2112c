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

// SpoolFilter narrows ListSpools results. Zero values match everything.
type SpoolFilter struct {
	Search   string
	Material models.Material
	Status   models.SpoolStatus
	Limit    int
}

const spoolColumns = `
	id, owner, name, brand, material, color, color_hex, total_weight_g, remaining_weight_g,
	cost_per_spool, currency, diameter_mm, density_g_cm3, print_temp_min, print_temp_max,
	bed_temp_min, bed_temp_max, status, notes, purchase_date, purchase_url, created_at, updated_at`

func scanSpool(row scanner) (models.FilamentSpool, error) {
	var (
		sp                   models.FilamentSpool
		createdAt, updatedAt string
	)
	err := row.Scan(
		&sp.ID, &sp.Owner, &sp.Name, &sp.Brand, &sp.Material, &sp.Color, &sp.ColorHex,
		&sp.TotalWeightG, &sp.RemainingWeightG, &sp.CostPerSpool, &sp.Currency, &sp.DiameterMM,
		&sp.DensityGCm3, &sp.PrintTempMin, &sp.PrintTempMax, &sp.BedTempMin, &sp.BedTempMax,
		&sp.Status, &sp.Notes, &sp.PurchaseDate, &sp.PurchaseURL, &createdAt, &updatedAt,
	)
	if err != nil {
		return models.FilamentSpool{}, err
	}
	if sp.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.FilamentSpool{}, err
	}
	if sp.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.FilamentSpool{}, err
	}
	return sp, nil
}

// InsertSpool stores a new spool, assigning its id and timestamps.
func (s *Store) InsertSpool(ctx context.Context, sp models.FilamentSpool, now time.Time) (models.FilamentSpool, error) {
	sp.ID = newID()
	sp.CreatedAt = now.UTC()
	sp.UpdatedAt = now.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO spools (`+spoolColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sp.ID, sp.Owner, sp.Name, sp.Brand, sp.Material, sp.Color, sp.ColorHex,
		sp.TotalWeightG, sp.RemainingWeightG, sp.CostPerSpool, sp.Currency, sp.DiameterMM,
		sp.DensityGCm3, sp.PrintTempMin, sp.PrintTempMax, sp.BedTempMin, sp.BedTempMax,
		sp.Status, sp.Notes, sp.PurchaseDate, sp.PurchaseURL,
		FormatTime(sp.CreatedAt), FormatTime(sp.UpdatedAt),
	)
	if err != nil {
		return models.FilamentSpool{}, fmt.Errorf("insert spool: %w", err)
	}
	return sp, nil
}

// GetSpool returns the owner's spool with the given id.
func (s *Store) GetSpool(ctx context.Context, owner, id string) (models.FilamentSpool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+spoolColumns+` FROM spools WHERE owner = ? AND id = ?`, owner, id)
	sp, err := scanSpool(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FilamentSpool{}, ErrNotFound
	}
	if err != nil {
		return models.FilamentSpool{}, fmt.Errorf("query spool: %w", err)
	}
	return sp, nil
}

// ListSpools returns the owner's spools, newest first.
func (s *Store) ListSpools(ctx context.Context, owner string, f SpoolFilter) ([]models.FilamentSpool, error) {
	where := []string{"owner = ?"}
	args := []any{owner}

	if term := strings.TrimSpace(f.Search); term != "" {
		where = append(where, `(name LIKE ? ESCAPE '\' OR brand LIKE ? ESCAPE '\')`)
		p := likePattern(term)
		args = append(args, p, p)
	}
	if f.Material != "" {
		where = append(where, "material = ?")
		args = append(args, f.Material)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	args = append(args, limitOrDefault(f.Limit))

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+spoolColumns+`
		FROM spools
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query spools: %w", err)
	}
	defer rows.Close()

	spools := []models.FilamentSpool{}
	for rows.Next() {
		sp, err := scanSpool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spool: %w", err)
		}
		spools = append(spools, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spools: %w", err)
	}
	return spools, nil
}

// UpdateSpool overwrites every editable field of an existing spool.
func (s *Store) UpdateSpool(ctx context.Context, sp models.FilamentSpool, now time.Time) (models.FilamentSpool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE spools SET
			name = ?, brand = ?, material = ?, color = ?, color_hex = ?, total_weight_g = ?,
			remaining_weight_g = ?, cost_per_spool = ?, currency = ?, diameter_mm = ?, density_g_cm3 = ?,
			print_temp_min = ?, print_temp_max = ?, bed_temp_min = ?, bed_temp_max = ?, status = ?,
			notes = ?, purchase_date = ?, purchase_url = ?, updated_at = ?
		WHERE owner = ? AND id = ?
	`,
		sp.Name, sp.Brand, sp.Material, sp.Color, sp.ColorHex, sp.TotalWeightG,
		sp.RemainingWeightG, sp.CostPerSpool, sp.Currency, sp.DiameterMM, sp.DensityGCm3,
		sp.PrintTempMin, sp.PrintTempMax, sp.BedTempMin, sp.BedTempMax, sp.Status,
		sp.Notes, sp.PurchaseDate, sp.PurchaseURL, FormatTime(now),
		sp.Owner, sp.ID,
	)
	if err != nil {
		return models.FilamentSpool{}, fmt.Errorf("update spool: %w", err)
	}
	if err := checkAffected(res, "spool update"); err != nil {
		return models.FilamentSpool{}, err
	}
	return s.GetSpool(ctx, sp.Owner, sp.ID)
}

// SetSpoolStock writes a new remaining weight and status for a spool.
func (s *Store) SetSpoolStock(ctx context.Context, owner, id string, remaining float64, status models.SpoolStatus, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE spools SET remaining_weight_g = ?, status = ?, updated_at = ?
		WHERE owner = ? AND id = ?
	`, remaining, status, FormatTime(now), owner, id)
	if err != nil {
		return fmt.Errorf("update spool stock: %w", err)
	}
	return checkAffected(res, "spool stock update")
}

// DeleteSpool removes a spool. Prints that referenced it keep their snapshot fields.
func (s *Store) DeleteSpool(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM spools WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("delete spool: %w", err)
	}
	return checkAffected(res, "spool delete")
}

// SpoolStatusCounts returns how many of the owner's spools are in each status.
func (s *Store) SpoolStatusCounts(ctx context.Context, owner string) (map[models.SpoolStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM spools WHERE owner = ? GROUP BY status`, owner)
	if err != nil {
		return nil, fmt.Errorf("count spools by status: %w", err)
	}
	defer rows.Close()

	counts := map[models.SpoolStatus]int{}
	for rows.Next() {
		var (
			status models.SpoolStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan spool count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spool counts: %w", err)
	}
	return counts, nil
}
