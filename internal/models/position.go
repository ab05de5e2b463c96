// Package models defines data structures for Quantum
package models

import (
	"strings"
	"time"
)

// Position is a held security. Market snapshot fields are cached from the
// market data provider; risk-parity fields are owned by the external
// analytics job and only ever read here.
type Position struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name,omitempty"`
	Shares        float64   `json:"shares"`
	BuyPrice      float64   `json:"buy_price"`
	CreatedAt     time.Time `json:"created_at"` // inception; excluded from history before this
	Category      string    `json:"category"`
	TargetPercent *float64  `json:"target_percent,omitempty"` // 0-100

	// Market snapshot
	CurrentPrice    *float64   `json:"current_price,omitempty"`
	Beta            *float64   `json:"beta,omitempty"`
	PETrailing      *float64   `json:"pe_trailing,omitempty"`
	PEForward       *float64   `json:"pe_forward,omitempty"`
	PEGRatio        *float64   `json:"peg_ratio,omitempty"`
	DividendYield   *float64   `json:"dividend_yield,omitempty"`
	MarketCap       *float64   `json:"market_cap,omitempty"`
	Sector          string     `json:"sector,omitempty"`
	Industry        string     `json:"industry,omitempty"`
	LogoURL         string     `json:"logo_url,omitempty"`
	LastPriceUpdate *time.Time `json:"last_price_update,omitempty"`

	// Risk-parity analytics (external batch job)
	RiskParityTarget *float64   `json:"risk_parity_target,omitempty"` // 0-100
	Volatility       *float64   `json:"volatility,omitempty"`         // percent
	MomentumRatio    *float64   `json:"momentum_ratio,omitempty"`
	GrowthEst        *float64   `json:"growth_est,omitempty"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// Price returns the cached current price, falling back to the buy price
// for positions that have never been refreshed.
func (p *Position) Price() float64 {
	if p.CurrentPrice != nil {
		return *p.CurrentPrice
	}
	return p.BuyPrice
}

// MarketValue is shares at the current price.
func (p *Position) MarketValue() float64 {
	return p.Shares * p.Price()
}

// CostBasis is shares at the buy price.
func (p *Position) CostBasis() float64 {
	return p.Shares * p.BuyPrice
}

// ApplySnapshot copies a normalized snapshot onto the position's cached
// market fields and stamps the refresh time. Fields absent from the
// snapshot are left as they were.
func (p *Position) ApplySnapshot(s *FundamentalsSnapshot, now time.Time) {
	if s.Name != "" {
		p.Name = s.Name
	}
	setIfPresent(&p.CurrentPrice, s.CurrentPrice)
	setIfPresent(&p.Beta, s.Beta)
	setIfPresent(&p.PETrailing, s.PETrailing)
	setIfPresent(&p.PEForward, s.PEForward)
	setIfPresent(&p.PEGRatio, s.PEGRatio)
	setIfPresent(&p.DividendYield, s.DividendYield)
	setIfPresent(&p.MarketCap, s.MarketCap)
	if s.Sector != "" {
		p.Sector = s.Sector
	}
	if s.Industry != "" {
		p.Industry = s.Industry
	}
	if s.LogoURL != "" {
		p.LogoURL = s.LogoURL
	}
	p.LastPriceUpdate = &now
}

// ApplyFetchFailure handles a failed refresh. Cached price and beta are
// kept; a missing price falls back to the buy price and a missing beta to
// market-neutral 1.0. The refresh time is still stamped so a dead provider
// is not retried on every view.
func (p *Position) ApplyFetchFailure(now time.Time) {
	if p.CurrentPrice == nil {
		price := p.BuyPrice
		p.CurrentPrice = &price
	}
	if p.Beta == nil {
		beta := 1.0
		p.Beta = &beta
	}
	p.LastPriceUpdate = &now
}

func setIfPresent(dst **float64, v *float64) {
	if v != nil {
		val := *v
		*dst = &val
	}
}

// NormalizeSymbol trims and uppercases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// PositionInput carries user-editable position fields into the mutation
// boundary. Numeric values arrive as strings so they can be parsed as decimals.
type PositionInput struct {
	Symbol        string  `json:"symbol"`
	Shares        string  `json:"shares"`
	BuyPrice      string  `json:"buy_price"`
	Category      string  `json:"category,omitempty"`
	TargetPercent *string `json:"target_percent,omitempty"`
}

// PositionUpdate carries a partial edit. Nil fields are left unchanged.
type PositionUpdate struct {
	Shares        *string `json:"shares,omitempty"`
	BuyPrice      *string `json:"buy_price,omitempty"`
	Category      *string `json:"category,omitempty"`
	TargetPercent *string `json:"target_percent,omitempty"`
	ClearTarget   bool    `json:"clear_target,omitempty"`
}
