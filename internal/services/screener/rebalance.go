package screener

import (
	"fmt"
	"math"
	"sort"

	"github.com/bobmcallan/quantum/internal/models"
)

// DeviationThreshold is the percentage-point band around target that counts
// as balanced.
const DeviationThreshold = 2.0

// ResolveTarget returns the weight a position is measured against: its
// risk-parity target, else its static target percent, else 0.
func ResolveTarget(p *models.Position) (target float64, source string) {
	switch {
	case p.RiskParityTarget != nil:
		return *p.RiskParityTarget, models.TargetSourceRiskParity
	case p.TargetPercent != nil:
		return *p.TargetPercent, models.TargetSourceStatic
	default:
		return 0, models.TargetSourceNone
	}
}

// ClassifyDeviation maps target - current weight to an action.
func ClassifyDeviation(deviation float64) models.RebalanceAction {
	switch {
	case deviation > DeviationThreshold:
		return models.ActionBuy
	case deviation < -DeviationThreshold:
		return models.ActionSell
	default:
		return models.ActionBalanced
	}
}

// Rebalance measures every position's current weight against its target.
// rows in val.Positions must be in the same order as positions, as
// returned by valuation.Valuate. Rows are sorted by target descending.
// Alerts are the targeted rows outside the balanced band.
func Rebalance(positions []*models.Position, val models.Valuation) models.RebalanceReport {
	report := models.RebalanceReport{
		Rows:   make([]models.RebalanceRow, 0, len(positions)),
		Alerts: []models.RebalanceRow{},
	}

	var absSum float64
	for i, p := range positions {
		var weight float64
		if i < len(val.Positions) {
			weight = val.Positions[i].Weight
		}

		target, source := ResolveTarget(p)
		deviation := target - weight

		row := models.RebalanceRow{
			PositionID:    p.ID,
			Symbol:        p.Symbol,
			CurrentWeight: weight,
			Target:        target,
			TargetSource:  source,
			Deviation:     deviation,
			Action:        ClassifyDeviation(deviation),
		}

		// Informational only: the job already halved the target it persisted
		if p.MomentumRatio != nil && *p.MomentumRatio < MomentumThreshold {
			row.MomentumPenalty = true
			row.Note = fmt.Sprintf("momentum %.2f below %.2f: target halved by analytics job", *p.MomentumRatio, MomentumThreshold)
		}

		absSum += math.Abs(deviation)
		report.Rows = append(report.Rows, row)
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		return report.Rows[i].Target > report.Rows[j].Target
	})

	for _, row := range report.Rows {
		if row.Target > 0 && math.Abs(row.Deviation) > DeviationThreshold {
			report.Alerts = append(report.Alerts, row)
		}
	}

	if len(report.Rows) > 0 {
		report.AvgAbsDeviation = absSum / float64(len(report.Rows))
	}
	return report
}
