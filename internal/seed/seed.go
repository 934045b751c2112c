package seed

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/spooltrack/internal/auth"
	"github.com/Simplici0/spooltrack/internal/store"
	"github.com/google/uuid"
)

const (
	defaultPrinterName    = "Default printer"
	defaultPrinterWattage = 200
	defaultElectricity    = 0.12
	defaultCurrency       = "USD"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way. Nothing is seeded
// without admin credentials, since every other record belongs to the admin.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		return Stats{}, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}
	now := store.FormatTime(time.Now())

	if err := seedAdmin(tx, email, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensurePrinter(tx, email, now, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureCostSettings(tx, email, now, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, hash); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

// ensurePrinter gives a fresh install one printer so derived electricity
// costs work before the user configures anything.
func ensurePrinter(tx *sql.Tx, owner, now string, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM printers WHERE owner = ? LIMIT 1)`, owner).Scan(&exists); err != nil {
		return fmt.Errorf("check printer existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO printers (id, owner, name, wattage, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'active', '', ?, ?)
	`, uuid.NewString(), owner, defaultPrinterName, defaultPrinterWattage, now, now); err != nil {
		return fmt.Errorf("insert default printer: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureCostSettings(tx *sql.Tx, owner, now string, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM cost_settings WHERE owner = ?)`, owner).Scan(&exists); err != nil {
		return fmt.Errorf("check cost settings existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO cost_settings (owner, electricity_rate_per_kwh, labor_rate_per_hour, machine_wear_rate_per_hour, currency, updated_at)
		VALUES (?, ?, 0, 0, ?, ?)
	`, owner, defaultElectricity, defaultCurrency, now); err != nil {
		return fmt.Errorf("insert cost settings: %w", err)
	}
	stats.Inserts++
	return nil
}
