package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/spooltrack/internal/models"
)

const printerColumns = `id, owner, name, wattage, status, notes, created_at, updated_at`

func scanPrinter(row scanner) (models.Printer, error) {
	var (
		p                    models.Printer
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.Owner, &p.Name, &p.Wattage, &p.Status, &p.Notes, &createdAt, &updatedAt); err != nil {
		return models.Printer{}, err
	}
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Printer{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Printer{}, err
	}
	return p, nil
}

func (s *Store) InsertPrinter(ctx context.Context, p models.Printer, now time.Time) (models.Printer, error) {
	p.ID = newID()
	p.CreatedAt = now.UTC()
	p.UpdatedAt = now.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO printers (`+printerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Owner, p.Name, p.Wattage, p.Status, p.Notes, FormatTime(p.CreatedAt), FormatTime(p.UpdatedAt))
	if err != nil {
		return models.Printer{}, fmt.Errorf("insert printer: %w", err)
	}
	return p, nil
}

func (s *Store) GetPrinter(ctx context.Context, owner, id string) (models.Printer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+printerColumns+` FROM printers WHERE owner = ? AND id = ?`, owner, id)
	p, err := scanPrinter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Printer{}, ErrNotFound
	}
	if err != nil {
		return models.Printer{}, fmt.Errorf("query printer: %w", err)
	}
	return p, nil
}

// ListPrinters returns the owner's printers ordered by name.
func (s *Store) ListPrinters(ctx context.Context, owner string, activeOnly bool) ([]models.Printer, error) {
	query := `SELECT ` + printerColumns + ` FROM printers WHERE owner = ?`
	args := []any{owner}
	if activeOnly {
		query += ` AND status = ?`
		args = append(args, models.PrinterActive)
	}
	query += ` ORDER BY name COLLATE NOCASE, created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query printers: %w", err)
	}
	defer rows.Close()

	printers := []models.Printer{}
	for rows.Next() {
		p, err := scanPrinter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan printer: %w", err)
		}
		printers = append(printers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate printers: %w", err)
	}
	return printers, nil
}

func (s *Store) UpdatePrinter(ctx context.Context, p models.Printer, now time.Time) (models.Printer, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE printers SET name = ?, wattage = ?, status = ?, notes = ?, updated_at = ?
		WHERE owner = ? AND id = ?
	`, p.Name, p.Wattage, p.Status, p.Notes, FormatTime(now), p.Owner, p.ID)
	if err != nil {
		return models.Printer{}, fmt.Errorf("update printer: %w", err)
	}
	if err := checkAffected(res, "printer update"); err != nil {
		return models.Printer{}, err
	}
	return s.GetPrinter(ctx, p.Owner, p.ID)
}

func (s *Store) DeletePrinter(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM printers WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("delete printer: %w", err)
	}
	return checkAffected(res, "printer delete")
}

// CountPrinters returns how many printers the owner has, regardless of status.
func (s *Store) CountPrinters(ctx context.Context, owner string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM printers WHERE owner = ?`, owner).Scan(&n); err != nil {
		return 0, fmt.Errorf("count printers: %w", err)
	}
	return n, nil
}
