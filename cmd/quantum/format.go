package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/Rhymond/go-money"

	"github.com/bobmcallan/quantum/internal/models"
)

// currency is the display currency for all values. Positions are priced
// in the exchange's quote currency, which is USD for the default exchange.
const currency = money.USD

// formatMoney renders an amount rounded to cents, e.g. "$1,234.56".
func formatMoney(amount float64) string {
	return money.New(int64(math.Round(amount*100)), currency).Display()
}

// formatPct renders a signed percentage with two decimals.
func formatPct(pct float64) string {
	if math.Abs(pct) < 0.005 {
		pct = 0
	}
	return fmt.Sprintf("%+.2f%%", pct)
}

func writeDashboard(w io.Writer, d *models.Dashboard) error {
	v := d.Valuation

	fmt.Fprintf(w, "Total value:  %s\n", formatMoney(v.TotalValue))
	fmt.Fprintf(w, "Cost basis:   %s\n", formatMoney(v.TotalCost))
	fmt.Fprintf(w, "Unrealized:   %s (%s)\n", formatMoney(v.TotalGain), formatPct(v.TotalGainPct))
	fmt.Fprintf(w, "Beta:         %.2f (%s risk)\n", v.Beta, v.RiskLevel)
	fmt.Fprintf(w, "Gainers:      %d of %d\n", v.GainCount, len(v.Positions))
	if d.Refresh != nil {
		writeRefreshSummary(w, *d.Refresh)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SYMBOL\tSHARES\tPRICE\tVALUE\tRETURN\tWEIGHT\tTARGET\tACTION\t")
	targets := make(map[string]models.RebalanceRow, len(d.Rebalance.Rows))
	for _, row := range d.Rebalance.Rows {
		targets[row.PositionID] = row
	}
	for _, p := range v.Positions {
		row := targets[p.PositionID]
		target := "-"
		if row.TargetSource != models.TargetSourceNone && row.TargetSource != "" {
			target = fmt.Sprintf("%.2f%%", row.Target)
		}
		fmt.Fprintf(tw, "%s\t%g\t%s\t%s\t%s\t%.2f%%\t%s\t%s\t\n",
			p.Symbol, p.Shares, formatMoney(p.Price), formatMoney(p.MarketValue),
			formatPct(p.UnrealizedReturnPct), p.Weight, target, row.Action)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(v.Sectors) > 0 {
		fmt.Fprintln(w)
		parts := make([]string, 0, len(v.Sectors))
		for _, s := range v.Sectors {
			parts = append(parts, fmt.Sprintf("%s %.1f%%", s.Sector, s.Percent))
		}
		fmt.Fprintf(w, "Sectors: %s\n", strings.Join(parts, ", "))
	}

	if len(d.Rebalance.Alerts) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Rebalance alerts (avg deviation %.2f pts):\n", d.Rebalance.AvgAbsDeviation)
		for _, a := range d.Rebalance.Alerts {
			fmt.Fprintf(w, "  %-6s %-4s %+.2f pts\n", a.Symbol, a.Action, a.Deviation)
		}
	}
	return nil
}

func writeRefreshSummary(w io.Writer, s models.RefreshSummary) {
	fmt.Fprintf(w, "Refresh:      %d fresh, %d updated, %d failed", s.Fresh, s.Updated, len(s.Failed))
	if len(s.Failed) > 0 {
		fmt.Fprintf(w, " (%s)", strings.Join(s.Failed, ", "))
	}
	fmt.Fprintln(w)
}
