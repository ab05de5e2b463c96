package models

// GrowthRecommendation is the growth screen verdict.
type GrowthRecommendation string

const (
	GrowthBuy    GrowthRecommendation = "BUY"
	GrowthWatch  GrowthRecommendation = "WATCH"
	GrowthPass   GrowthRecommendation = "PASS"
	GrowthReject GrowthRecommendation = "REJECT"
)

// GrowthResult holds the three growth criteria and the verdict.
type GrowthResult struct {
	Symbol            string               `json:"symbol,omitempty"`
	PEExpansion       bool                 `json:"pe_expansion"`
	PEExpansionRatio  *float64             `json:"pe_expansion_ratio,omitempty"`
	PEGAttractive     bool                 `json:"peg_attractive"`
	Consistent        bool                 `json:"consistent"`
	Beats             int                  `json:"beats"`
	QuartersEvaluated int                  `json:"quarters_evaluated"`
	Score             int                  `json:"score"`
	Recommendation    GrowthRecommendation `json:"recommendation"`
}

// RiskClass is the risk-parity screen verdict.
type RiskClass string

const (
	RiskClassStable   RiskClass = "STABLE"
	RiskClassModerate RiskClass = "MODERATE"
	RiskClassVolatile RiskClass = "VOLATILE"
	RiskClassHigh     RiskClass = "HIGH RISK"
)

// MetricSource records where volatility and momentum came from.
type MetricSource string

const (
	MetricSourceAnalytics     MetricSource = "analytics_job"
	MetricSourceApproximation MetricSource = "approximation"
	MetricSourceUnavailable   MetricSource = "unavailable"
)

// RiskResult holds the three risk criteria and the verdict.
type RiskResult struct {
	Symbol        string       `json:"symbol,omitempty"`
	Volatility    *float64     `json:"volatility,omitempty"`
	Momentum      *float64     `json:"momentum,omitempty"`
	Beta          float64      `json:"beta"`
	Source        MetricSource `json:"source"`
	LowVolatility bool         `json:"low_volatility"`
	HighMomentum  bool         `json:"high_momentum"`
	LowBeta       bool         `json:"low_beta"`
	Score         int          `json:"score"`
	Class         RiskClass    `json:"class"`
}

// RebalanceAction says which way a position should move.
type RebalanceAction string

const (
	ActionBuy      RebalanceAction = "buy"
	ActionSell     RebalanceAction = "sell"
	ActionBalanced RebalanceAction = "balanced"
)

// Target sources
const (
	TargetSourceRiskParity = "risk_parity"
	TargetSourceStatic     = "target_percent"
	TargetSourceNone       = "none"
)

// RebalanceRow is one position's deviation from its target weight.
type RebalanceRow struct {
	PositionID      string          `json:"position_id"`
	Symbol          string          `json:"symbol"`
	CurrentWeight   float64         `json:"current_weight"`
	Target          float64         `json:"target"`
	TargetSource    string          `json:"target_source"`
	Deviation       float64         `json:"deviation"`
	Action          RebalanceAction `json:"action"`
	MomentumPenalty bool            `json:"momentum_penalty"`
	Note            string          `json:"note,omitempty"`
}

// RebalanceReport is the deviation of every position, sorted by target
// descending, plus the rows that need attention.
type RebalanceReport struct {
	Rows            []RebalanceRow `json:"rows"`
	Alerts          []RebalanceRow `json:"alerts"`
	AvgAbsDeviation float64        `json:"avg_abs_deviation"`
}

// RecommendationBreakdown groups analyst ratings into percentages.
type RecommendationBreakdown struct {
	Total   int     `json:"total"`
	BuyPct  float64 `json:"buy_pct"`
	HoldPct float64 `json:"hold_pct"`
	SellPct float64 `json:"sell_pct"`
}
