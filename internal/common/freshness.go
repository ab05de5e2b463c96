// Package common provides shared utilities for Quantum
package common

import "time"

// Freshness TTLs for cached market data
const (
	FreshnessQuote = 24 * time.Hour // price + metrics snapshot on a position
	FreshnessNews  = 90 * 24 * time.Hour
)

// IsQuoteFresh decides whether a position's cached snapshot can be reused.
// All three must hold: updated within FreshnessQuote of now, a price is
// cached, and a beta is cached. A zero beta is still a cached beta.
func IsQuoteFresh(lastUpdate *time.Time, currentPrice, beta *float64, now time.Time) bool {
	if lastUpdate == nil || lastUpdate.IsZero() {
		return false
	}
	if currentPrice == nil || beta == nil {
		return false
	}
	return now.Sub(*lastUpdate) < FreshnessQuote
}
