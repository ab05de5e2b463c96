// Package screener scores symbols and positions against fixed heuristics:
// a growth screen, a risk-parity classification and rebalancing deviation.
package screener

import "github.com/bobmcallan/quantum/internal/models"

// Growth screen thresholds
const (
	PEExpansionThreshold = 0.20 // forward multiple at least 20% below trailing
	PEGThreshold         = 1.0
	ConsistencyQuarters  = 4
	ConsistencyMinBeats  = 3
)

// GrowthInput is what the growth screen needs for one symbol.
type GrowthInput struct {
	Symbol     string
	TrailingPE *float64
	ForwardPE  *float64
	PEG        *float64
	Earnings   []models.EarningsQuarter // most recent first
}

// GrowthInputFromSnapshot extracts the growth screen inputs from a snapshot.
func GrowthInputFromSnapshot(s *models.FundamentalsSnapshot) GrowthInput {
	return GrowthInput{
		Symbol:     s.Symbol,
		TrailingPE: s.PETrailing,
		ForwardPE:  s.PEForward,
		PEG:        s.PEGRatio,
		Earnings:   s.Earnings,
	}
}

// ScreenGrowth evaluates the three growth criteria. Missing inputs leave
// the corresponding criterion unsatisfied.
func ScreenGrowth(in GrowthInput) models.GrowthResult {
	r := models.GrowthResult{Symbol: in.Symbol}

	if in.TrailingPE != nil && in.ForwardPE != nil && *in.TrailingPE != 0 {
		ratio := (*in.TrailingPE - *in.ForwardPE) / *in.TrailingPE
		r.PEExpansionRatio = &ratio
		r.PEExpansion = ratio >= PEExpansionThreshold
	}

	r.PEGAttractive = in.PEG != nil && *in.PEG != 0 && *in.PEG <= PEGThreshold

	// Strictly a beat count over the most recent quarters, not a ratio
	quarters := in.Earnings
	if len(quarters) > ConsistencyQuarters {
		quarters = quarters[:ConsistencyQuarters]
	}
	for _, q := range quarters {
		if q.Beat() {
			r.Beats++
		}
	}
	r.QuartersEvaluated = len(quarters)
	r.Consistent = r.Beats >= ConsistencyMinBeats

	r.Score = countTrue(r.PEExpansion, r.PEGAttractive, r.Consistent)
	r.Recommendation = growthRecommendation(r.Score)
	return r
}

func growthRecommendation(score int) models.GrowthRecommendation {
	switch score {
	case 3:
		return models.GrowthBuy
	case 2:
		return models.GrowthWatch
	case 1:
		return models.GrowthPass
	default:
		return models.GrowthReject
	}
}

// BreakdownRecommendations groups analyst ratings into buy, hold and sell
// percentages. Returns nil when there are no ratings to group.
func BreakdownRecommendations(r *models.Recommendations) *models.RecommendationBreakdown {
	if r == nil {
		return nil
	}
	b := &models.RecommendationBreakdown{Total: r.Total()}
	if b.Total == 0 {
		return b
	}
	total := float64(b.Total)
	b.BuyPct = float64(r.StrongBuy+r.Buy) / total * 100
	b.HoldPct = float64(r.Hold) / total * 100
	b.SellPct = float64(r.Sell+r.StrongSell) / total * 100
	return b
}

func countTrue(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
