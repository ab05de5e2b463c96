package portfolio

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/quantum/internal/models"
)

// Decimal places kept for user-entered values
const (
	sharesPlaces  = 6
	pricePlaces   = 4
	percentPlaces = 2
)

var hundred = decimal.NewFromInt(100)

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, models.Invalid(field, "%s is required", field)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, models.Invalid(field, "%q is not a number", raw)
	}
	return d, nil
}

func parsePositive(field, raw string, places int32) (float64, error) {
	d, err := parseDecimal(field, raw)
	if err != nil {
		return 0, err
	}
	d = d.Round(places)
	if !d.IsPositive() {
		return 0, models.Invalid(field, "%s must be greater than 0", field)
	}
	return d.InexactFloat64(), nil
}

func parseShares(raw string) (float64, error) {
	return parsePositive("shares", raw, sharesPlaces)
}

func parsePrice(raw string) (float64, error) {
	return parsePositive("buy_price", raw, pricePlaces)
}

// parsePercent accepts 0 to 100 inclusive.
func parsePercent(field, raw string) (float64, error) {
	d, err := parseDecimal(field, raw)
	if err != nil {
		return 0, err
	}
	d = d.Round(percentPlaces)
	if d.IsNegative() || d.GreaterThan(hundred) {
		return 0, models.Invalid(field, "%s must be between 0 and 100", field)
	}
	return d.InexactFloat64(), nil
}
