// Package watchlist provides watchlist management and screening services
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bobmcallan/quantum/internal/common"
	"github.com/bobmcallan/quantum/internal/interfaces"
	"github.com/bobmcallan/quantum/internal/models"
	"github.com/bobmcallan/quantum/internal/services/screener"
)

const maxConcurrentReviews = 5

// Compile-time interface check
var _ interfaces.WatchlistService = (*Service)(nil)

// Service implements WatchlistService
type Service struct {
	store  interfaces.WatchlistStore
	market interfaces.MarketService
	logger *common.Logger
	now    func() time.Time
}

// NewService creates a new watchlist service
func NewService(store interfaces.WatchlistStore, market interfaces.MarketService, logger *common.Logger) *Service {
	return &Service{
		store:  store,
		market: market,
		logger: logger,
		now:    time.Now,
	}
}

// List returns the caller's watchlist ordered by symbol
func (s *Service) List(ctx context.Context) ([]*models.WatchlistEntry, error) {
	entries, err := s.store.ListWatchlist(ctx, common.ResolveUserID(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	return entries, nil
}

// Add watches a symbol. Symbols are unique per user.
func (s *Service) Add(ctx context.Context, symbol string) (*models.WatchlistEntry, error) {
	userID := common.ResolveUserID(ctx)
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, models.Invalid("symbol", "symbol is required")
	}

	_, err := s.store.GetWatchlistEntry(ctx, userID, symbol)
	switch {
	case err == nil:
		return nil, fmt.Errorf("watchlist %s: %w", symbol, models.ErrDuplicate)
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("failed to check watchlist: %w", err)
	}

	entry := &models.WatchlistEntry{
		UserID:  userID,
		Symbol:  symbol,
		AddedAt: s.now().UTC(),
	}
	if err := s.store.UpsertWatchlistEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save watchlist entry: %w", err)
	}

	s.logger.Info().Str("symbol", symbol).Str("user", userID).Msg("Watchlist entry added")
	return entry, nil
}

// Remove stops watching a symbol
func (s *Service) Remove(ctx context.Context, symbol string) error {
	userID := common.ResolveUserID(ctx)
	symbol = models.NormalizeSymbol(symbol)

	if _, err := s.store.GetWatchlistEntry(ctx, userID, symbol); err != nil {
		return err
	}
	if err := s.store.DeleteWatchlistEntry(ctx, userID, symbol); err != nil {
		return fmt.Errorf("failed to delete watchlist entry: %w", err)
	}

	s.logger.Info().Str("symbol", symbol).Str("user", userID).Msg("Watchlist entry removed")
	return nil
}

// Review screens every watched symbol concurrently. Analytics job metrics
// on the entry take precedence over the 52-week approximation. A symbol
// whose snapshot cannot be fetched is returned with Error set.
func (s *Service) Review(ctx context.Context) ([]models.WatchlistReview, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	reviews := make([]models.WatchlistReview, len(entries))
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentReviews)

	for i, entry := range entries {
		wg.Add(1)
		go func(i int, entry *models.WatchlistEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			reviews[i] = s.review(ctx, entry)
		}(i, entry)
	}
	wg.Wait()

	return reviews, nil
}

func (s *Service) review(ctx context.Context, entry *models.WatchlistEntry) models.WatchlistReview {
	r := models.WatchlistReview{Entry: *entry}

	snap, err := s.market.GetSnapshot(ctx, entry.Symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", entry.Symbol).Msg("Watchlist review fetch failed")
		r.Error = err.Error()
		return r
	}

	growth := screener.ScreenGrowth(screener.GrowthInputFromSnapshot(snap))
	risk := screener.ClassifyRisk(screener.RiskInputFor(entry.Symbol, entry.Volatility, entry.MomentumRatio, snap))

	r.Snapshot = snap
	r.Growth = &growth
	r.Risk = &risk
	return r
}
