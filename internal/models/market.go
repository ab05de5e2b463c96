package models

import "time"

// EarningsQuarter is one reported quarter of EPS against consensus.
type EarningsQuarter struct {
	Period   string   `json:"period,omitempty"` // e.g. "2025-12-31"
	Actual   *float64 `json:"actual,omitempty"`
	Estimate *float64 `json:"estimate,omitempty"`
}

// Beat reports whether actual EPS met or exceeded the estimate. A quarter
// missing either side is never a beat.
func (q EarningsQuarter) Beat() bool {
	return q.Actual != nil && q.Estimate != nil && *q.Actual >= *q.Estimate
}

// Recommendations holds analyst rating counts.
type Recommendations struct {
	StrongBuy  int `json:"strong_buy"`
	Buy        int `json:"buy"`
	Hold       int `json:"hold"`
	Sell       int `json:"sell"`
	StrongSell int `json:"strong_sell"`
}

// Total returns the number of ratings.
func (r Recommendations) Total() int {
	return r.StrongBuy + r.Buy + r.Hold + r.Sell + r.StrongSell
}

// RawQuote is a provider payload mapped into plain fields but not yet
// normalized: PEG may be missing, earnings come in two series, and the logo
// may be absent or relative.
type RawQuote struct {
	Symbol         string
	Name           string
	Currency       string
	Price          *float64
	MarketCap      *float64
	High52         *float64
	Low52          *float64
	TrailingPE     *float64
	ForwardPE      *float64
	PEGRatio       *float64
	EarningsGrowth *float64 // fraction, 0.15 = 15%
	Beta           *float64
	DividendYield  *float64
	Sector         string
	Industry       string
	Description    string
	WebURL         string
	LogoURL        string

	// Earnings is the quarterly actual-vs-estimate series. EarningsFallback
	// is a secondary quarterly series used only when Earnings is empty.
	// Both are most recent first.
	Earnings         []EarningsQuarter
	EarningsFallback []EarningsQuarter
	Recommendations  *Recommendations
}

// FundamentalsSnapshot is the canonical per-symbol market record at fetch
// time. Missing values stay nil; they are never fabricated as zero.
type FundamentalsSnapshot struct {
	Symbol          string            `json:"symbol"`
	Name            string            `json:"name,omitempty"`
	Currency        string            `json:"currency,omitempty"`
	CurrentPrice    *float64          `json:"current_price,omitempty"`
	MarketCap       *float64          `json:"market_cap,omitempty"`
	High52          *float64          `json:"high_52w,omitempty"`
	Low52           *float64          `json:"low_52w,omitempty"`
	PETrailing      *float64          `json:"pe_trailing,omitempty"`
	PEForward       *float64          `json:"pe_forward,omitempty"`
	PEGRatio        *float64          `json:"peg_ratio,omitempty"`
	PEGDerived      bool              `json:"peg_derived,omitempty"`
	Beta            *float64          `json:"beta,omitempty"`
	DividendYield   *float64          `json:"dividend_yield,omitempty"`
	Sector          string            `json:"sector,omitempty"`
	Industry        string            `json:"industry,omitempty"`
	Description     string            `json:"description,omitempty"`
	LogoURL         string            `json:"logo_url,omitempty"`
	Earnings        []EarningsQuarter `json:"earnings"`
	Recommendations *Recommendations  `json:"recommendations,omitempty"`
	FetchedAt       time.Time         `json:"fetched_at"`
}

// DailyBar is one trading day's close for a symbol.
type DailyBar struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// News categories
const (
	NewsCategoryEarnings = "earnings"
	NewsCategoryGeneral  = "general"
)

// NewsItem represents a news article
type NewsItem struct {
	Symbol      string    `json:"symbol"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Category    string    `json:"category,omitempty"`
}

// QuoteView is a normalized snapshot together with its screening results.
type QuoteView struct {
	Snapshot        *FundamentalsSnapshot    `json:"snapshot"`
	Growth          GrowthResult             `json:"growth"`
	Risk            RiskResult               `json:"risk"`
	Recommendations *RecommendationBreakdown `json:"recommendations,omitempty"`
}
