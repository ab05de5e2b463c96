package models

import "time"

// WatchlistEntry is a symbol of interest that is not held. Analytics fields
// are populated by the external risk-parity job.
type WatchlistEntry struct {
	UserID  string    `json:"user_id"`
	Symbol  string    `json:"symbol"`
	AddedAt time.Time `json:"added_at"`

	RiskParityTarget *float64   `json:"risk_parity_target,omitempty"`
	Volatility       *float64   `json:"volatility,omitempty"`
	MomentumRatio    *float64   `json:"momentum_ratio,omitempty"`
	PERatio          *float64   `json:"pe_ratio,omitempty"`
	GrowthEst        *float64   `json:"growth_est,omitempty"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// WatchlistReview pairs an entry with its screening results.
type WatchlistReview struct {
	Entry    WatchlistEntry        `json:"entry"`
	Snapshot *FundamentalsSnapshot `json:"snapshot,omitempty"`
	Growth   *GrowthResult         `json:"growth,omitempty"`
	Risk     *RiskResult           `json:"risk,omitempty"`
	Error    string                `json:"error,omitempty"`
}
