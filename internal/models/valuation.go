package models

// RiskLevel buckets a portfolio by its beta.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// PositionValuation is one position's computed value row.
type PositionValuation struct {
	PositionID          string  `json:"position_id"`
	Symbol              string  `json:"symbol"`
	Name                string  `json:"name,omitempty"`
	Category            string  `json:"category,omitempty"`
	Sector              string  `json:"sector,omitempty"`
	Shares              float64 `json:"shares"`
	BuyPrice            float64 `json:"buy_price"`
	Price               float64 `json:"price"`
	MarketValue         float64 `json:"market_value"`
	CostBasis           float64 `json:"cost_basis"`
	UnrealizedGain      float64 `json:"unrealized_gain"`
	UnrealizedReturnPct float64 `json:"unrealized_return_pct"`
	Weight              float64 `json:"weight"` // percent of total value
	Beta                float64 `json:"beta"`
}

// SectorAllocation is the value held in one sector.
type SectorAllocation struct {
	Sector  string  `json:"sector"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// Valuation is the portfolio-level summary over all positions.
type Valuation struct {
	Positions    []PositionValuation `json:"positions"`
	TotalValue   float64             `json:"total_value"`
	TotalCost    float64             `json:"total_cost"`
	TotalGain    float64             `json:"total_gain"`
	TotalGainPct float64             `json:"total_gain_pct"`
	Beta         float64             `json:"beta"`
	RiskLevel    RiskLevel           `json:"risk_level"`
	GainCount    int                 `json:"gain_count"`
	LossCount    int                 `json:"loss_count"`
	GainRatio    float64             `json:"gain_ratio"`
	SectorCount  int                 `json:"sector_count"`
	Sectors      []SectorAllocation  `json:"sectors"`
}

// Dashboard is the full portfolio view.
type Dashboard struct {
	Valuation Valuation       `json:"valuation"`
	Rebalance RebalanceReport `json:"rebalance"`
	Refresh   *RefreshSummary `json:"refresh,omitempty"` // nil when not refreshed
}

// RefreshSummary reports how a refresh pass went.
type RefreshSummary struct {
	Fresh   int      `json:"fresh"`
	Updated int      `json:"updated"`
	Failed  []string `json:"failed"` // symbols, sorted
}
