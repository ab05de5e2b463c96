package market

import (
	"net/url"
	"time"

	"github.com/bobmcallan/quantum/internal/models"
)

// logoByDomain serves a company logo for a bare hostname.
const logoByDomain = "https://logo.clearbit.com/"

// Normalize maps a raw provider quote into the canonical snapshot. It is a
// pure mapping: nothing is fetched and missing values stay nil.
func Normalize(raw *models.RawQuote, now time.Time) *models.FundamentalsSnapshot {
	s := &models.FundamentalsSnapshot{
		Symbol:          raw.Symbol,
		Name:            raw.Name,
		Currency:        raw.Currency,
		CurrentPrice:    raw.Price,
		MarketCap:       raw.MarketCap,
		High52:          raw.High52,
		Low52:           raw.Low52,
		PETrailing:      raw.TrailingPE,
		PEForward:       raw.ForwardPE,
		Beta:            raw.Beta,
		DividendYield:   raw.DividendYield,
		Sector:          raw.Sector,
		Industry:        raw.Industry,
		Description:     raw.Description,
		Recommendations: raw.Recommendations,
		FetchedAt:       now,
	}

	s.PEGRatio, s.PEGDerived = ResolvePEG(raw.PEGRatio, raw.TrailingPE, raw.EarningsGrowth)
	s.Earnings = resolveEarnings(raw.Earnings, raw.EarningsFallback)

	s.LogoURL = raw.LogoURL
	if s.LogoURL == "" {
		s.LogoURL = LogoFromWebsite(raw.WebURL)
	}

	return s
}

// ResolvePEG returns the provider PEG when present and non-zero. Otherwise
// it derives trailingPE / (growth * 100) when both inputs are usable, and
// reports derived=true. With neither, PEG is undefined.
func ResolvePEG(given, trailingPE, earningsGrowth *float64) (peg *float64, derived bool) {
	if given != nil && *given != 0 {
		v := *given
		return &v, false
	}
	if trailingPE == nil || earningsGrowth == nil || *trailingPE == 0 || *earningsGrowth == 0 {
		return nil, false
	}
	v := *trailingPE / (*earningsGrowth * 100)
	return &v, true
}

func resolveEarnings(primary, fallback []models.EarningsQuarter) []models.EarningsQuarter {
	switch {
	case len(primary) > 0:
		return primary
	case len(fallback) > 0:
		return fallback
	default:
		return []models.EarningsQuarter{}
	}
}

// LogoFromWebsite derives a logo URL from a company website. Malformed URLs
// and URLs without a host yield "".
func LogoFromWebsite(website string) string {
	if website == "" {
		return ""
	}
	u, err := url.Parse(website)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return logoByDomain + u.Hostname()
}
