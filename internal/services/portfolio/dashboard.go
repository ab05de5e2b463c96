package portfolio

import (
	"context"
	"fmt"

	"github.com/bobmcallan/quantum/internal/models"
	"github.com/bobmcallan/quantum/internal/services/screener"
	"github.com/bobmcallan/quantum/internal/services/valuation"
)

// GetDashboard values the caller's portfolio and builds the rebalance
// report. With refresh set, stale positions are refreshed first and the
// view is built only after every fetch has settled.
func (s *Service) GetDashboard(ctx context.Context, refresh bool) (*models.Dashboard, error) {
	var (
		positions []*models.Position
		summary   *models.RefreshSummary
	)

	if refresh {
		refreshed, sum, err := s.RefreshPositions(ctx, false)
		if err != nil {
			return nil, err
		}
		positions = refreshed
		summary = &sum
	} else {
		listed, err := s.ListPositions(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load dashboard: %w", err)
		}
		positions = listed
	}

	val := valuation.Valuate(positions)
	return &models.Dashboard{
		Valuation: val,
		Rebalance: screener.Rebalance(positions, val),
		Refresh:   summary,
	}, nil
}
