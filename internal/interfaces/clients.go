// Package interfaces defines service contracts for Quantum
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/quantum/internal/models"
)

// MarketDataClient provides per-symbol market data from an external provider.
// Failures are returned as models.FetchError so callers can isolate them.
type MarketDataClient interface {
	// GetQuote returns price, valuation ratios, profile, earnings history
	// and analyst ratings, mapped but not normalized.
	GetQuote(ctx context.Context, symbol string) (*models.RawQuote, error)

	// GetDailyBars returns daily closes in ascending date order. An empty
	// slice with a nil error means the provider has no data in the range.
	GetDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]models.DailyBar, error)

	// GetCompanyLogo returns the provider's logo URL, or "" when it has none.
	GetCompanyLogo(ctx context.Context, symbol string) (string, error)

	// GetNews returns recent news items for a symbol.
	GetNews(ctx context.Context, symbol string, limit int) ([]*models.NewsItem, error)
}

// AnalyticsTrigger starts the external risk-parity analytics job. It is
// fire-and-forget: results arrive later as fields written onto positions.
type AnalyticsTrigger interface {
	Trigger(ctx context.Context) error
}
