// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/quantum/internal/common"
	"github.com/bobmcallan/quantum/internal/interfaces"
	"github.com/bobmcallan/quantum/internal/metrics"
	"github.com/bobmcallan/quantum/internal/models"
)

// flexFloat64 handles JSON values that may be a number, a numeric string,
// a placeholder string ("", "N/A", "NA", "None") or null. Placeholders and
// null leave the value unset rather than zero.
type flexFloat64 struct {
	value float64
	valid bool
}

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	*f = flexFloat64{}
	if string(data) == "null" {
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64{value: num, valid: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch strings.TrimSpace(s) {
		case "", "N/A", "NA", "None", "null":
			return nil
		}
		num, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		*f = flexFloat64{value: num, valid: true}
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// ptr returns nil for unset values.
func (f flexFloat64) ptr() *float64 {
	if !f.valid {
		return nil
	}
	v := f.value
	return &v
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
	DefaultExchange  = "US"
)

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
	exchange   string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	now        func() time.Time
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithExchange sets the exchange suffix appended to bare symbols
func WithExchange(exchange string) ClientOption {
	return func(c *Client) {
		if exchange != "" {
			c.exchange = strings.ToUpper(exchange)
		}
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		apiKey:   apiKey,
		exchange: DefaultExchange,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "EODHD",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// Client errors (unknown symbol, bad params) say nothing about provider health.
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Warn().
				Str("name", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// exchangeCodes are the EODHD exchange suffixes accepted on qualified symbols.
var exchangeCodes = map[string]bool{
	"US": true, "AU": true, "LSE": true, "TO": true, "V": true, "NEO": true,
	"XETRA": true, "F": true, "PA": true, "AS": true, "BR": true, "MI": true,
	"MC": true, "SW": true, "LS": true, "IR": true, "VI": true, "ST": true,
	"OL": true, "CO": true, "HE": true, "WAR": true, "HK": true, "SHG": true,
	"SHE": true, "KO": true, "KQ": true, "NSE": true, "BSE": true, "TW": true,
	"TWO": true, "JK": true, "KLSE": true, "BK": true, "NZ": true, "JSE": true,
	"SA": true, "MX": true, "TA": true, "IS": true,
	"CC": true, "FOREX": true, "INDX": true,
}

// ticker maps a symbol to an exchange-qualified EODHD ticker. A dotted
// suffix that is not an exchange code is a share class (BRK.B), which
// EODHD spells with a hyphen.
func (c *Client) ticker(symbol string) string {
	symbol = models.NormalizeSymbol(symbol)
	if i := strings.LastIndex(symbol, "."); i > 0 {
		if suffix := symbol[i+1:]; suffix == c.exchange || exchangeCodes[suffix] {
			return symbol
		}
		symbol = strings.ReplaceAll(symbol, ".", "-")
	}
	return symbol + "." + c.exchange
}

// head checks that a provider URL resolves, through the limiter and breaker.
func (c *Client) head(ctx context.Context, endpoint, rawURL string) error {
	start := time.Now()
	_, err := c.breaker.Execute(func() (interface{}, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: resp.Status, Endpoint: endpoint}
		}
		return nil, nil
	})
	metrics.RecordProviderRequest(endpoint, start, err)
	return err
}

// get performs a rate-limited GET request through the circuit breaker
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, result interface{}) error {
	start := time.Now()
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.doGet(ctx, path, params, result)
	})
	metrics.RecordProviderRequest(endpoint, start, err)
	return err
}

func (c *Client) doGet(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetDailyBars retrieves daily closes between from and to, oldest first
func (c *Client) GetDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]models.DailyBar, error) {
	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")
	if !from.IsZero() {
		params.Set("from", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		params.Set("to", to.Format("2006-01-02"))
	}

	var bars []eodBarResponse
	if err := c.get(ctx, "eod", "/eod/"+c.ticker(symbol), params, &bars); err != nil {
		return nil, models.NewFetchError(symbol, "daily bars", err)
	}

	result := make([]models.DailyBar, 0, len(bars))
	for _, bar := range bars {
		date, err := time.Parse("2006-01-02", bar.Date)
		if err != nil {
			continue
		}
		px := bar.AdjustedClose
		if !px.valid {
			px = bar.Close
		}
		if !px.valid {
			continue
		}
		result = append(result, models.DailyBar{Date: date, Close: px.value})
	}
	return result, nil
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string      `json:"date"`
	Close         flexFloat64 `json:"close"`
	AdjustedClose flexFloat64 `json:"adjusted_close"`
}

// GetNews retrieves news for a symbol
func (c *Client) GetNews(ctx context.Context, symbol string, limit int) ([]*models.NewsItem, error) {
	params := url.Values{}
	params.Set("s", c.ticker(symbol))
	params.Set("limit", strconv.Itoa(limit))

	var newsResp []newsResponse
	if err := c.get(ctx, "news", "/news", params, &newsResp); err != nil {
		return nil, models.NewFetchError(symbol, "news", err)
	}

	news := make([]*models.NewsItem, 0, len(newsResp))
	for _, item := range newsResp {
		publishedAt, err := time.Parse("2006-01-02T15:04:05+00:00", item.Date)
		if err != nil {
			continue
		}
		news = append(news, &models.NewsItem{
			Symbol:      models.NormalizeSymbol(symbol),
			Title:       item.Title,
			URL:         item.Link,
			Source:      sourceFromLink(item.Link),
			PublishedAt: publishedAt,
		})
	}

	return news, nil
}

type newsResponse struct {
	Date  string `json:"date"`
	Title string `json:"title"`
	Link  string `json:"link"`
}

func sourceFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
