// Package valuation computes position values, weights and portfolio-level
// aggregates. Everything here is pure arithmetic over validated positions;
// every ratio with a zero denominator is 0.
package valuation

import (
	"sort"

	"github.com/bobmcallan/quantum/internal/models"
)

// Risk bucket thresholds on portfolio beta
const (
	LowRiskBeta  = 0.8
	HighRiskBeta = 1.2
	DefaultBeta  = 1.0
)

// ExcludedSector is the placeholder sector that does not count as a distinct sector.
const ExcludedSector = "Other"

// Valuate computes the valuation of all positions. Rows are returned in
// the same order as the input.
func Valuate(positions []*models.Position) models.Valuation {
	v := models.Valuation{
		Positions: make([]models.PositionValuation, 0, len(positions)),
		Sectors:   []models.SectorAllocation{},
	}

	for _, p := range positions {
		price := p.Price()
		row := models.PositionValuation{
			PositionID:  p.ID,
			Symbol:      p.Symbol,
			Name:        p.Name,
			Category:    p.Category,
			Sector:      p.Sector,
			Shares:      p.Shares,
			BuyPrice:    p.BuyPrice,
			Price:       price,
			MarketValue: p.MarketValue(),
			CostBasis:   p.CostBasis(),
			Beta:        DefaultBeta,
		}
		if p.Beta != nil {
			row.Beta = *p.Beta
		}
		row.UnrealizedGain = row.MarketValue - row.CostBasis
		if p.BuyPrice != 0 {
			row.UnrealizedReturnPct = (price - p.BuyPrice) / p.BuyPrice * 100
		}

		switch {
		case price > p.BuyPrice:
			v.GainCount++
		case price < p.BuyPrice:
			v.LossCount++
		}

		v.TotalValue += row.MarketValue
		v.TotalCost += row.CostBasis
		v.Positions = append(v.Positions, row)
	}

	v.TotalGain = v.TotalValue - v.TotalCost
	if v.TotalCost > 0 {
		v.TotalGainPct = v.TotalGain / v.TotalCost * 100
	}

	v.Beta = DefaultBeta
	if v.TotalValue != 0 {
		var weighted float64
		for i := range v.Positions {
			row := &v.Positions[i]
			row.Weight = row.MarketValue / v.TotalValue * 100
			weighted += row.Beta * (row.MarketValue / v.TotalValue)
		}
		v.Beta = weighted
	}
	v.RiskLevel = RiskLevelForBeta(v.Beta)

	if len(positions) > 0 {
		v.GainRatio = float64(v.GainCount) / float64(len(positions)) * 100
	}

	v.Sectors = sectorAllocation(v.Positions, v.TotalValue)
	v.SectorCount = len(v.Sectors)
	return v
}

// RiskLevelForBeta buckets a portfolio beta.
func RiskLevelForBeta(beta float64) models.RiskLevel {
	switch {
	case beta < LowRiskBeta:
		return models.RiskLow
	case beta > HighRiskBeta:
		return models.RiskHigh
	default:
		return models.RiskModerate
	}
}

// sectorAllocation sums value per distinct sector, skipping unknown and
// placeholder sectors, largest first.
func sectorAllocation(rows []models.PositionValuation, total float64) []models.SectorAllocation {
	values := make(map[string]float64)
	for _, row := range rows {
		if row.Sector == "" || row.Sector == ExcludedSector {
			continue
		}
		values[row.Sector] += row.MarketValue
	}

	out := make([]models.SectorAllocation, 0, len(values))
	for sector, value := range values {
		alloc := models.SectorAllocation{Sector: sector, Value: value}
		if total != 0 {
			alloc.Percent = value / total * 100
		}
		out = append(out, alloc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Sector < out[j].Sector
	})
	return out
}
