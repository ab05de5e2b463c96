package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bobmcallan/quantum/internal/common"
	"github.com/bobmcallan/quantum/internal/interfaces"
	"github.com/bobmcallan/quantum/internal/models"
)

const maxConcurrentFetches = 5

// Service implements HistoryService
type Service struct {
	positions interfaces.PositionStore
	market    interfaces.MarketService
	logger    *common.Logger
	now       func() time.Time
}

var _ interfaces.HistoryService = (*Service)(nil)

// NewService creates a new history service
func NewService(positions interfaces.PositionStore, market interfaces.MarketService, logger *common.Logger) *Service {
	return &Service{
		positions: positions,
		market:    market,
		logger:    logger,
		now:       time.Now,
	}
}

// GetHistory reconstructs the caller's portfolio value from the start date
// to now. A symbol whose bars cannot be fetched contributes no prices.
func (s *Service) GetHistory(ctx context.Context) ([]models.HistoryPoint, error) {
	userID := common.ResolveUserID(ctx)
	positions, err := s.positions.ListPositions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	if len(positions) == 0 {
		return []models.HistoryPoint{}, nil
	}

	now := s.now()
	from := StartDate(positions, now)

	bars := s.fetchBars(ctx, uniqueSymbols(positions), from, now)
	return Reconstruct(positions, bars), nil
}

func (s *Service) fetchBars(ctx context.Context, symbols []string, from, to time.Time) map[string][]models.DailyBar {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, maxConcurrentFetches)
		out = make(map[string][]models.DailyBar, len(symbols))
	)

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			bars, err := s.market.GetDailyBars(ctx, symbol, from, to)
			if err != nil {
				s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Daily bars unavailable, symbol excluded from history")
				bars = nil
			}

			mu.Lock()
			out[symbol] = bars
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()
	return out
}

func uniqueSymbols(positions []*models.Position) []string {
	seen := make(map[string]bool, len(positions))
	out := make([]string, 0, len(positions))
	for _, p := range positions {
		if !seen[p.Symbol] {
			seen[p.Symbol] = true
			out = append(out, p.Symbol)
		}
	}
	return out
}
