// Package history reconstructs the daily value of the current holdings
// from provider price bars.
package history

import (
	"sort"
	"time"

	"github.com/bobmcallan/quantum/internal/models"
)

const (
	// recentInceptionWindow is how young the earliest position may be before
	// the start date is pushed back a month.
	recentInceptionWindow = 24 * time.Hour
	lookbackMonths        = 1
)

// StartDate returns the first day to reconstruct: the earliest position
// inception, backed up one month when that inception is under a day old.
// An empty portfolio starts one month before now.
func StartDate(positions []*models.Position, now time.Time) time.Time {
	var earliest time.Time
	for _, p := range positions {
		if p.CreatedAt.IsZero() {
			continue
		}
		if earliest.IsZero() || p.CreatedAt.Before(earliest) {
			earliest = p.CreatedAt
		}
	}
	if earliest.IsZero() || now.Sub(earliest) < recentInceptionWindow {
		base := earliest
		if base.IsZero() {
			base = now
		}
		earliest = base.AddDate(0, -lookbackMonths, 0)
	}
	return dayOf(earliest)
}

// Reconstruct walks the union of trading dates across all bar series in
// ascending order. A date with no bar for a symbol carries the last known
// close forward; a symbol with no close seen yet adds nothing to value.
// Positions only count from their inception day. Dates where both value
// and cost basis are zero are omitted.
func Reconstruct(positions []*models.Position, barsBySymbol map[string][]models.DailyBar) []models.HistoryPoint {
	closes := make(map[string]map[time.Time]float64, len(barsBySymbol))
	dateSet := make(map[time.Time]struct{})
	for symbol, bars := range barsBySymbol {
		byDay := make(map[time.Time]float64, len(bars))
		for _, b := range bars {
			d := dayOf(b.Date)
			byDay[d] = b.Close
			dateSet[d] = struct{}{}
		}
		closes[symbol] = byDay
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	lastKnown := make(map[string]float64)
	points := make([]models.HistoryPoint, 0, len(dates))
	for _, d := range dates {
		for symbol, byDay := range closes {
			if c, ok := byDay[d]; ok {
				lastKnown[symbol] = c
			}
		}

		var value, cost float64
		for _, p := range positions {
			if dayOf(p.CreatedAt).After(d) {
				continue
			}
			// No price seen yet counts as no data for both series.
			if price, ok := lastKnown[p.Symbol]; ok {
				value += p.Shares * price
				cost += p.Shares * p.BuyPrice
			}
		}

		if value == 0 && cost == 0 {
			continue
		}
		points = append(points, models.HistoryPoint{Date: d, Value: value, CostBasis: cost})
	}
	return points
}

// dayOf truncates to the UTC calendar day.
func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
