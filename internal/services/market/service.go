// Package market provides market data services
package market

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

const (
	maxConcurrentFetches = 5
	newsPerSymbol        = 20
)

// Service implements MarketService
type Service struct {
	client interfaces.MarketDataClient
	logger *common.Logger
	now    func() time.Time
}

var _ interfaces.MarketService = (*Service)(nil)

// NewService creates a new market service
func NewService(client interfaces.MarketDataClient, logger *common.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// GetSnapshot fetches and normalizes one symbol. The provider's logo
// lookup is tried, best-effort, only when neither the quote nor the
// company website yields a logo.
func (s *Service) GetSnapshot(ctx context.Context, symbol string) (*models.FundamentalsSnapshot, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, models.Invalid("symbol", "symbol is required")
	}

	raw, err := s.client.GetQuote(ctx, symbol)
	if err != nil {
		return nil, asFetchError(symbol, "quote", err)
	}
	if raw.Symbol == "" {
		raw.Symbol = symbol
	}

	if raw.LogoURL == "" && LogoFromWebsite(raw.WebURL) == "" {
		logo, err := s.client.GetCompanyLogo(ctx, symbol)
		if err != nil {
			s.logger.Debug().Err(err).Str("symbol", symbol).Msg("Logo lookup failed")
		} else {
			raw.LogoURL = logo
		}
	}

	return Normalize(raw, s.now()), nil
}

// GetQuoteView returns the snapshot with the growth screen, the risk
// classification (52-week approximation) and the analyst breakdown.
func (s *Service) GetQuoteView(ctx context.Context, symbol string) (*models.QuoteView, error) {
	snap, err := s.GetSnapshot(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return &models.QuoteView{
		Snapshot:        snap,
		Growth:          screener.ScreenGrowth(screener.GrowthInputFromSnapshot(snap)),
		Risk:            screener.ClassifyRisk(screener.RiskInputFor(snap.Symbol, nil, nil, snap)),
		Recommendations: screener.BreakdownRecommendations(snap.Recommendations),
	}, nil
}

// GetDailyBars returns daily closes for a symbol in ascending order.
func (s *Service) GetDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]models.DailyBar, error) {
	symbol = models.NormalizeSymbol(symbol)
	bars, err := s.client.GetDailyBars(ctx, symbol, from, to)
	if err != nil {
		return nil, asFetchError(symbol, "daily bars", err)
	}
	return bars, nil
}

// GetNews fetches news for each symbol concurrently and aggregates it in
// symbol order. Symbols whose fetch fails are skipped.
func (s *Service) GetNews(ctx context.Context, symbols []string) ([]*models.NewsItem, error) {
	unique := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	for _, symbol := range symbols {
		symbol = models.NormalizeSymbol(symbol)
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		unique = append(unique, symbol)
	}

	var (
		wg      sync.WaitGroup
		sem     = make(chan struct{}, maxConcurrentFetches)
		results = make([][]*models.NewsItem, len(unique))
	)
	for i, symbol := range unique {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			items, err := s.client.GetNews(ctx, symbol, newsPerSymbol)
			if err != nil {
				s.logger.Warn().Err(err).Str("symbol", symbol).Msg("News fetch failed")
				return
			}
			for _, item := range items {
				if item.Symbol == "" {
					item.Symbol = symbol
				}
			}
			results[i] = items
		}(i, symbol)
	}
	wg.Wait()

	var all []*models.NewsItem
	for _, items := range results {
		all = append(all, items...)
	}
	return AggregateNews(all, s.now()), nil
}

// asFetchError makes sure provider failures carry ErrFetchFailed.
func asFetchError(symbol, op string, err error) error {
	if errors.Is(err, models.ErrFetchFailed) {
		return err
	}
	return models.NewFetchError(symbol, op, fmt.Errorf("%s: %w", op, err))
}
