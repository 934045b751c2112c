package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/Simplici0/spooltrack/internal/models"
	"github.com/Simplici0/spooltrack/internal/store"
)

const (
	recentPrintsLimit = 5
	chartDays         = 7
)

// DailyCost is the summed print cost of one UTC day.
type DailyCost struct {
	Date string  `json:"date"`
	Cost float64 `json:"cost"`
}

// Dashboard summarizes an owner's inventory and spending.
type Dashboard struct {
	ActiveSpools      int                    `json:"active_spools"`
	TotalSpools       int                    `json:"total_spools"`
	PrintCount        int                    `json:"print_count"`
	TotalCost         float64                `json:"total_cost"`
	TotalFilamentCost float64                `json:"total_filament_cost"`
	TotalGramsUsed    float64                `json:"total_grams_used"`
	LowStock          []models.FilamentSpool `json:"low_stock"`
	RecentPrints      []models.PrintProject  `json:"recent_prints"`
	DailyCosts        []DailyCost            `json:"daily_costs"`
}

// Dashboard builds the summary as of now. DailyCosts holds the last seven
// days ending with now's date, oldest first, with zero for days without prints.
func (s *Service) Dashboard(ctx context.Context, owner string, now time.Time) (Dashboard, error) {
	counts, err := s.store.SpoolStatusCounts(ctx, owner)
	if err != nil {
		return Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}
	totals, err := s.store.PrintTotals(ctx, owner)
	if err != nil {
		return Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}
	low, err := s.store.ListSpools(ctx, owner, store.SpoolFilter{Status: models.SpoolLow})
	if err != nil {
		return Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}
	recent, err := s.store.ListPrints(ctx, owner, store.PrintFilter{Limit: recentPrintsLimit})
	if err != nil {
		return Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}

	today := now.UTC().Truncate(24 * time.Hour)
	first := today.AddDate(0, 0, -(chartDays - 1))
	daily, err := s.store.DailyCosts(ctx, owner, first)
	if err != nil {
		return Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}

	series := make([]DailyCost, 0, chartDays)
	for d := 0; d < chartDays; d++ {
		day := first.AddDate(0, 0, d).Format("2006-01-02")
		series = append(series, DailyCost{Date: day, Cost: daily[day]})
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	return Dashboard{
		ActiveSpools:      counts[models.SpoolActive] + counts[models.SpoolLow],
		TotalSpools:       total,
		PrintCount:        totals.Count,
		TotalCost:         totals.TotalCost,
		TotalFilamentCost: totals.TotalFilamentCost,
		TotalGramsUsed:    totals.TotalGramsUsed,
		LowStock:          low,
		RecentPrints:      recent,
		DailyCosts:        series,
	}, nil
}
