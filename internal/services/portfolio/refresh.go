package portfolio

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bobmcallan/quantum/internal/common"
	"github.com/bobmcallan/quantum/internal/metrics"
	"github.com/bobmcallan/quantum/internal/models"
)

// RefreshPositions re-fetches every stale position concurrently and waits
// for all fetches to settle before returning. Each goroutine only touches
// its own position. A failed fetch keeps cached values, fills missing
// price and beta with safe defaults, and is still stamped and stored.
func (s *Service) RefreshPositions(ctx context.Context, force bool) ([]*models.Position, models.RefreshSummary, error) {
	start := s.now()
	summary := models.RefreshSummary{Failed: []string{}}

	userID := common.ResolveUserID(ctx)
	positions, err := s.positions.ListPositions(ctx, userID)
	if err != nil {
		return nil, summary, fmt.Errorf("failed to list positions: %w", err)
	}

	var stale []*models.Position
	for _, p := range positions {
		if !force && common.IsQuoteFresh(p.LastPriceUpdate, p.CurrentPrice, p.Beta, start) {
			summary.Fresh++
			continue
		}
		stale = append(stale, p)
	}

	concurrency := s.config.RefreshConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, concurrency)
	)
	for _, p := range stale {
		wg.Add(1)
		go func(p *models.Position) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			ok := s.refreshOne(ctx, p)

			mu.Lock()
			if ok {
				summary.Updated++
			} else {
				summary.Failed = append(summary.Failed, p.Symbol)
			}
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	sort.Strings(summary.Failed)
	metrics.RecordRefresh(summary.Fresh, summary.Updated, len(summary.Failed), start)

	if len(stale) > 0 {
		s.logger.Info().
			Str("user", userID).
			Int("fresh", summary.Fresh).
			Int("updated", summary.Updated).
			Int("failed", len(summary.Failed)).
			Msg("Positions refreshed")
	}

	return positions, summary, nil
}

// refreshOne fetches and persists one position's snapshot. It reports
// whether the fetch succeeded.
func (s *Service) refreshOne(ctx context.Context, p *models.Position) bool {
	snap, err := s.market.GetSnapshot(ctx, p.Symbol)
	fetched := err == nil
	if fetched {
		p.ApplySnapshot(snap, s.now())
	} else {
		s.logger.Warn().Err(err).Str("symbol", p.Symbol).Msg("Refresh failed, using fallback values")
		p.ApplyFetchFailure(s.now())
	}

	if err := s.positions.UpdateSnapshot(ctx, p); err != nil {
		s.logger.Error().Err(err).Str("symbol", p.Symbol).Msg("Failed to persist refreshed snapshot")
	}
	return fetched
}
