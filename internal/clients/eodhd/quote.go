package eodhd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/bobmcallan/quantum/internal/models"
)

// quarterLimit caps the earnings history returned per quote.
const quarterLimit = 8

// GetQuote combines fundamentals with the real-time price. The earnings
// calendar is consulted only when fundamentals carry no earnings history,
// and its failure is not fatal.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.RawQuote, error) {
	ticker := c.ticker(symbol)

	var fund fundamentalsResponse
	if err := c.get(ctx, "fundamentals", "/fundamentals/"+ticker, nil, &fund); err != nil {
		return nil, models.NewFetchError(symbol, "fundamentals", err)
	}

	var rt realTimeResponse
	if err := c.get(ctx, "real-time", "/real-time/"+ticker, nil, &rt); err != nil {
		return nil, models.NewFetchError(symbol, "real-time", err)
	}

	q := &models.RawQuote{
		Symbol:         models.NormalizeSymbol(symbol),
		Name:           fund.General.Name,
		Currency:       fund.General.CurrencyCode,
		Price:          rt.Close.ptr(),
		MarketCap:      fund.Highlights.MarketCapitalization.ptr(),
		High52:         fund.Technicals.High52.ptr(),
		Low52:          fund.Technicals.Low52.ptr(),
		TrailingPE:     fund.Valuation.TrailingPE.ptr(),
		ForwardPE:      fund.Valuation.ForwardPE.ptr(),
		PEGRatio:       fund.Highlights.PEGRatio.ptr(),
		EarningsGrowth: fund.Highlights.QuarterlyEarningsGrowthYOY.ptr(),
		Beta:           fund.Technicals.Beta.ptr(),
		DividendYield:  fund.Highlights.DividendYield.ptr(),
		Sector:         fund.General.Sector,
		Industry:       fund.General.Industry,
		Description:    fund.General.Description,
		WebURL:         fund.General.WebURL,
		LogoURL:        c.absoluteLogo(fund.General.LogoURL),
		Earnings:       fund.Earnings.quarters(),
	}
	if q.TrailingPE == nil {
		q.TrailingPE = fund.Highlights.PERatio.ptr()
	}
	if fund.AnalystRatings != nil {
		q.Recommendations = &models.Recommendations{
			StrongBuy:  fund.AnalystRatings.StrongBuy,
			Buy:        fund.AnalystRatings.Buy,
			Hold:       fund.AnalystRatings.Hold,
			Sell:       fund.AnalystRatings.Sell,
			StrongSell: fund.AnalystRatings.StrongSell,
		}
	}

	if len(q.Earnings) == 0 {
		fallback, err := c.getEarningsCalendar(ctx, ticker)
		if err != nil {
			c.logger.Debug().Err(err).Str("symbol", symbol).Msg("Earnings calendar unavailable")
		}
		q.EarningsFallback = fallback
	}

	return q, nil
}

// GetCompanyLogo looks up the provider's static logo image for the ticker,
// or "" when none is published. It does not touch the fundamentals feed.
func (c *Client) GetCompanyLogo(ctx context.Context, symbol string) (string, error) {
	ticker := c.ticker(symbol)
	i := strings.LastIndex(ticker, ".")
	logo := c.absoluteLogo(fmt.Sprintf("/img/logos/%s/%s.png", ticker[i+1:], strings.ToLower(ticker[:i])))
	if logo == "" {
		return "", nil
	}

	err := c.head(ctx, "logo", logo)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if err != nil {
		return "", models.NewFetchError(symbol, "logo", err)
	}
	return logo, nil
}

// absoluteLogo resolves the provider's site-relative logo paths against
// the API host.
func (c *Client) absoluteLogo(logo string) string {
	logo = strings.TrimSpace(logo)
	if logo == "" || strings.HasPrefix(logo, "http://") || strings.HasPrefix(logo, "https://") {
		return logo
	}
	base, err := url.Parse(c.baseURL)
	if err != nil || base.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s://%s/%s", base.Scheme, base.Host, strings.TrimPrefix(logo, "/"))
}

func (c *Client) getEarningsCalendar(ctx context.Context, ticker string) ([]models.EarningsQuarter, error) {
	now := c.now()
	params := url.Values{}
	params.Set("symbols", ticker)
	params.Set("from", now.AddDate(-2, 0, 0).Format("2006-01-02"))
	params.Set("to", now.Format("2006-01-02"))

	var resp earningsCalendarResponse
	if err := c.get(ctx, "calendar-earnings", "/calendar/earnings", params, &resp); err != nil {
		return nil, err
	}

	out := make([]models.EarningsQuarter, 0, len(resp.Earnings))
	for _, e := range resp.Earnings {
		if !e.Actual.valid {
			continue // not reported yet
		}
		out = append(out, models.EarningsQuarter{
			Period:   e.Date,
			Actual:   e.Actual.ptr(),
			Estimate: e.Estimate.ptr(),
		})
	}
	sortRecentFirst(out)
	if len(out) > quarterLimit {
		out = out[:quarterLimit]
	}
	return out, nil
}

// fundamentalsResponse represents the API response structure
type fundamentalsResponse struct {
	General struct {
		Code         string `json:"Code"`
		Name         string `json:"Name"`
		CurrencyCode string `json:"CurrencyCode"`
		Sector       string `json:"Sector"`
		Industry     string `json:"Industry"`
		Description  string `json:"Description"`
		WebURL       string `json:"WebURL"`
		LogoURL      string `json:"LogoURL"`
	} `json:"General"`
	Highlights struct {
		MarketCapitalization       flexFloat64 `json:"MarketCapitalization"`
		PERatio                    flexFloat64 `json:"PERatio"`
		PEGRatio                   flexFloat64 `json:"PEGRatio"`
		DividendYield              flexFloat64 `json:"DividendYield"`
		QuarterlyEarningsGrowthYOY flexFloat64 `json:"QuarterlyEarningsGrowthYOY"`
	} `json:"Highlights"`
	Valuation struct {
		TrailingPE flexFloat64 `json:"TrailingPE"`
		ForwardPE  flexFloat64 `json:"ForwardPE"`
	} `json:"Valuation"`
	Technicals struct {
		Beta   flexFloat64 `json:"Beta"`
		High52 flexFloat64 `json:"52WeekHigh"`
		Low52  flexFloat64 `json:"52WeekLow"`
	} `json:"Technicals"`
	AnalystRatings *struct {
		StrongBuy  int `json:"StrongBuy"`
		Buy        int `json:"Buy"`
		Hold       int `json:"Hold"`
		Sell       int `json:"Sell"`
		StrongSell int `json:"StrongSell"`
	} `json:"AnalystRatings"`
	Earnings earningsBlock `json:"Earnings"`
}

type earningsBlock struct {
	History map[string]struct {
		Date        string      `json:"date"`
		EPSActual   flexFloat64 `json:"epsActual"`
		EPSEstimate flexFloat64 `json:"epsEstimate"`
	} `json:"History"`
}

// quarters returns reported quarters, most recent first.
func (e earningsBlock) quarters() []models.EarningsQuarter {
	out := make([]models.EarningsQuarter, 0, len(e.History))
	for key, h := range e.History {
		if !h.EPSActual.valid {
			continue
		}
		period := h.Date
		if period == "" {
			period = key
		}
		out = append(out, models.EarningsQuarter{
			Period:   period,
			Actual:   h.EPSActual.ptr(),
			Estimate: h.EPSEstimate.ptr(),
		})
	}
	sortRecentFirst(out)
	if len(out) > quarterLimit {
		out = out[:quarterLimit]
	}
	return out
}

// ISO dates sort lexically.
func sortRecentFirst(q []models.EarningsQuarter) {
	sort.Slice(q, func(i, j int) bool { return q[i].Period > q[j].Period })
}

type realTimeResponse struct {
	Code  string      `json:"code"`
	Close flexFloat64 `json:"close"`
}

type earningsCalendarResponse struct {
	Earnings []struct {
		Code     string      `json:"code"`
		Date     string      `json:"date"`
		Actual   flexFloat64 `json:"actual"`
		Estimate flexFloat64 `json:"estimate"`
	} `json:"earnings"`
}
