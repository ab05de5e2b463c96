package models

import "time"

// HistoryPoint is the reconstructed portfolio value on one trading day.
type HistoryPoint struct {
	Date      time.Time `json:"date"`
	Value     float64   `json:"value"`
	CostBasis float64   `json:"cost_basis"`
}
