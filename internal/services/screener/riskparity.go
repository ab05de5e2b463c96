package screener

import "github.com/bobmcallan/quantum/internal/models"

// Risk classification thresholds
const (
	VolatilityThreshold = 40.0 // percent
	MomentumThreshold   = 0.95
	BetaThreshold       = 1.2
	DefaultBeta         = 1.0
)

// RiskInput is what the risk classification needs for one symbol.
type RiskInput struct {
	Symbol     string
	Beta       *float64
	Volatility *float64 // percent
	Momentum   *float64
	Source     models.MetricSource
}

// ClassifyRisk evaluates the three risk criteria. A missing beta is treated
// as market-neutral; missing volatility or momentum leaves that criterion
// unsatisfied.
func ClassifyRisk(in RiskInput) models.RiskResult {
	beta := DefaultBeta
	if in.Beta != nil {
		beta = *in.Beta
	}

	source := in.Source
	if source == "" {
		source = models.MetricSourceUnavailable
	}

	r := models.RiskResult{
		Symbol:     in.Symbol,
		Volatility: in.Volatility,
		Momentum:   in.Momentum,
		Beta:       beta,
		Source:     source,
	}

	r.LowVolatility = in.Volatility != nil && *in.Volatility < VolatilityThreshold
	r.HighMomentum = in.Momentum != nil && *in.Momentum > MomentumThreshold
	r.LowBeta = beta < BetaThreshold

	r.Score = countTrue(r.LowVolatility, r.HighMomentum, r.LowBeta)
	r.Class = riskClass(r.Score)
	return r
}

func riskClass(score int) models.RiskClass {
	switch score {
	case 3:
		return models.RiskClassStable
	case 2:
		return models.RiskClassModerate
	case 1:
		return models.RiskClassVolatile
	default:
		return models.RiskClassHigh
	}
}

// ApproximateRiskMetrics estimates volatility and momentum from the 52-week
// range when the analytics job has not supplied them:
//
//	volatility ≈ (high - low) / midpoint * 100
//	momentum   ≈ price / midpoint
//
// ok is false when the range is missing or its midpoint is not positive.
func ApproximateRiskMetrics(high52, low52, price *float64) (volatility, momentum *float64, ok bool) {
	if high52 == nil || low52 == nil {
		return nil, nil, false
	}
	mid := (*high52 + *low52) / 2
	if mid <= 0 {
		return nil, nil, false
	}
	vol := (*high52 - *low52) / mid * 100
	volatility = &vol
	if price != nil {
		mom := *price / mid
		momentum = &mom
	}
	return volatility, momentum, true
}

// RiskInputFor prefers metrics written by the analytics job and falls back
// to the 52-week approximation. The job's metrics are used only when a
// momentum ratio is present, matching how the job writes them together.
func RiskInputFor(symbol string, analyticsVol, analyticsMomentum *float64, s *models.FundamentalsSnapshot) RiskInput {
	in := RiskInput{Symbol: symbol}
	if s != nil {
		in.Beta = s.Beta
	}

	if analyticsMomentum != nil {
		in.Volatility = analyticsVol
		in.Momentum = analyticsMomentum
		in.Source = models.MetricSourceAnalytics
		return in
	}

	if s != nil {
		if vol, mom, ok := ApproximateRiskMetrics(s.High52, s.Low52, s.CurrentPrice); ok {
			in.Volatility = vol
			in.Momentum = mom
			in.Source = models.MetricSourceApproximation
			return in
		}
	}

	in.Source = models.MetricSourceUnavailable
	return in
}
