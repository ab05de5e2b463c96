package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/quantum/internal/models"
)

// MarketService fetches and normalizes market data
type MarketService interface {
	// GetSnapshot fetches and normalizes one symbol's fundamentals.
	GetSnapshot(ctx context.Context, symbol string) (*models.FundamentalsSnapshot, error)

	// GetQuoteView returns the snapshot with growth and risk screens applied.
	GetQuoteView(ctx context.Context, symbol string) (*models.QuoteView, error)

	GetDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]models.DailyBar, error)

	// GetNews aggregates recent news across symbols. A failing symbol is
	// skipped rather than failing the whole call.
	GetNews(ctx context.Context, symbols []string) ([]*models.NewsItem, error)
}

// PortfolioService manages the caller's positions and dashboard
type PortfolioService interface {
	ListPositions(ctx context.Context) ([]*models.Position, error)
	AddPosition(ctx context.Context, input models.PositionInput) (*models.Position, error)
	UpdatePosition(ctx context.Context, id string, update models.PositionUpdate) (*models.Position, error)
	RemovePosition(ctx context.Context, id string) error

	// RefreshPositions re-fetches stale snapshots concurrently. force
	// ignores the freshness policy.
	RefreshPositions(ctx context.Context, force bool) ([]*models.Position, models.RefreshSummary, error)

	// GetDashboard values the portfolio, optionally refreshing first.
	GetDashboard(ctx context.Context, refresh bool) (*models.Dashboard, error)
}

// HistoryService reconstructs portfolio value over time
type HistoryService interface {
	GetHistory(ctx context.Context) ([]models.HistoryPoint, error)
}

// WatchlistService manages the caller's watchlist
type WatchlistService interface {
	List(ctx context.Context) ([]*models.WatchlistEntry, error)
	Add(ctx context.Context, symbol string) (*models.WatchlistEntry, error)
	Remove(ctx context.Context, symbol string) error
	Review(ctx context.Context) ([]models.WatchlistReview, error)
}
