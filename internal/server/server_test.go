package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/quantum/internal/app"
	"github.com/bobmcallan/quantum/internal/common"
	"github.com/bobmcallan/quantum/internal/models"
)

const testSecret = "test-secret"

type stubPortfolio struct {
	positions  []*models.Position
	addErr     error
	lastInput  models.PositionInput
	lastUpdate models.PositionUpdate
	removed    string
	refreshed  bool
	forced     bool
	userID     string
}

func (s *stubPortfolio) ListPositions(ctx context.Context) ([]*models.Position, error) {
	s.userID = common.ResolveUserID(ctx)
	return s.positions, nil
}

func (s *stubPortfolio) AddPosition(_ context.Context, input models.PositionInput) (*models.Position, error) {
	s.lastInput = input
	if s.addErr != nil {
		return nil, s.addErr
	}
	return &models.Position{ID: "p1", Symbol: models.NormalizeSymbol(input.Symbol)}, nil
}

func (s *stubPortfolio) UpdatePosition(_ context.Context, id string, update models.PositionUpdate) (*models.Position, error) {
	if id != "p1" {
		return nil, models.ErrNotFound
	}
	s.lastUpdate = update
	return &models.Position{ID: id, Symbol: "AAPL"}, nil
}

func (s *stubPortfolio) RemovePosition(_ context.Context, id string) error {
	if id != "p1" {
		return models.ErrNotFound
	}
	s.removed = id
	return nil
}

func (s *stubPortfolio) RefreshPositions(_ context.Context, force bool) ([]*models.Position, models.RefreshSummary, error) {
	s.forced = force
	return s.positions, models.RefreshSummary{Updated: len(s.positions), Failed: []string{}}, nil
}

func (s *stubPortfolio) GetDashboard(_ context.Context, refresh bool) (*models.Dashboard, error) {
	s.refreshed = refresh
	return &models.Dashboard{Valuation: models.Valuation{TotalValue: 1500, Beta: 1}}, nil
}

type stubHistory struct {
	points []models.HistoryPoint
}

func (s *stubHistory) GetHistory(context.Context) ([]models.HistoryPoint, error) {
	return s.points, nil
}

type stubWatchlist struct {
	entries []*models.WatchlistEntry
}

func (s *stubWatchlist) List(context.Context) ([]*models.WatchlistEntry, error) {
	return s.entries, nil
}

func (s *stubWatchlist) Add(_ context.Context, symbol string) (*models.WatchlistEntry, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, models.Invalid("symbol", "symbol is required")
	}
	for _, e := range s.entries {
		if e.Symbol == symbol {
			return nil, models.ErrDuplicate
		}
	}
	entry := &models.WatchlistEntry{Symbol: symbol}
	s.entries = append(s.entries, entry)
	return entry, nil
}

func (s *stubWatchlist) Remove(_ context.Context, symbol string) error {
	for i, e := range s.entries {
		if e.Symbol == models.NormalizeSymbol(symbol) {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (s *stubWatchlist) Review(context.Context) ([]models.WatchlistReview, error) {
	return []models.WatchlistReview{}, nil
}

type stubMarket struct {
	newsSymbols []string
}

func (s *stubMarket) GetSnapshot(_ context.Context, symbol string) (*models.FundamentalsSnapshot, error) {
	return &models.FundamentalsSnapshot{Symbol: symbol}, nil
}

func (s *stubMarket) GetQuoteView(_ context.Context, symbol string) (*models.QuoteView, error) {
	if symbol == "DEAD" {
		return nil, models.NewFetchError(symbol, "quote", errors.New("provider returned 404"))
	}
	return &models.QuoteView{}, nil
}

func (s *stubMarket) GetDailyBars(context.Context, string, time.Time, time.Time) ([]models.DailyBar, error) {
	return nil, nil
}

func (s *stubMarket) GetNews(_ context.Context, symbols []string) ([]*models.NewsItem, error) {
	s.newsSymbols = symbols
	return nil, nil
}

type stubTrigger struct {
	err   error
	calls int
}

func (s *stubTrigger) Trigger(context.Context) error {
	s.calls++
	return s.err
}

type testDeps struct {
	portfolio *stubPortfolio
	history   *stubHistory
	watchlist *stubWatchlist
	market    *stubMarket
	trigger   *stubTrigger
}

func newTestServer(t *testing.T, configure func(*common.Config)) (*Server, *testDeps) {
	t.Helper()
	config := common.NewDefaultConfig()
	config.Auth.JWTSecret = testSecret
	if configure != nil {
		configure(config)
	}

	deps := &testDeps{
		portfolio: &stubPortfolio{},
		history:   &stubHistory{},
		watchlist: &stubWatchlist{},
		market:    &stubMarket{},
		trigger:   &stubTrigger{},
	}

	a := &app.App{
		Config:           config,
		Logger:           common.NewSilentLogger(),
		MarketService:    deps.market,
		PortfolioService: deps.portfolio,
		HistoryService:   deps.history,
		WatchlistService: deps.watchlist,
		Analytics:        deps.trigger,
	}
	return NewServer(a), deps
}

func do(t *testing.T, s *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealthAndVersion(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	rec = do(t, s, http.MethodGet, "/api/version", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var info common.VersionInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, common.GetVersion(), info.Version)

	rec = do(t, s, http.MethodPost, "/api/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCorrelationIDEchoed(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/api/health", "", "X-Request-ID", "abc123")
	assert.Equal(t, "abc123", rec.Header().Get("X-Correlation-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)
	do(t, s, http.MethodGet, "/api/health", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "quantum_http_requests_total")
}

func TestPositions_AddAndList(t *testing.T) {
	s, deps := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/positions", `{"symbol":"aapl","shares":"10","buy_price":"100"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "10", deps.portfolio.lastInput.Shares)

	deps.portfolio.positions = []*models.Position{{ID: "p1", Symbol: "AAPL"}}
	rec = do(t, s, http.MethodGet, "/api/positions", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Positions []*models.Position `json:"positions"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Positions, 1)
	assert.Equal(t, "AAPL", body.Positions[0].Symbol)
}

func TestPositions_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", models.Invalid("shares", "must be positive"), http.StatusBadRequest, CodeInvalidInput},
		{"duplicate", models.ErrDuplicate, http.StatusConflict, CodeDuplicate},
		{"fetch", models.NewFetchError("AAPL", "quote", errors.New("timeout")), http.StatusBadGateway, CodeFetchFailed},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, deps := newTestServer(t, nil)
			deps.portfolio.addErr = tt.err

			rec := do(t, s, http.MethodPost, "/api/positions", `{"symbol":"AAPL","shares":"-1","buy_price":"1"}`)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestPositions_ValidationErrorNamesField(t *testing.T) {
	s, deps := newTestServer(t, nil)
	deps.portfolio.addErr = models.Invalid("buy_price", "must be greater than zero")

	rec := do(t, s, http.MethodPost, "/api/positions", `{"symbol":"AAPL","shares":"1","buy_price":"0"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "buy_price", resp.Field)
	assert.Equal(t, "must be greater than zero", resp.Error)
}

func TestPositions_InvalidJSON(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/positions", `{"symbol":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPosition_UpdateAndDelete(t *testing.T) {
	s, deps := newTestServer(t, nil)

	rec := do(t, s, http.MethodPatch, "/api/positions/p1", `{"shares":"12.5","clear_target":true}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, deps.portfolio.lastUpdate.Shares)
	assert.Equal(t, "12.5", *deps.portfolio.lastUpdate.Shares)
	assert.True(t, deps.portfolio.lastUpdate.ClearTarget)

	rec = do(t, s, http.MethodPatch, "/api/positions/missing", `{"shares":"1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/positions/p1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "p1", deps.portfolio.removed)

	rec = do(t, s, http.MethodDelete, "/api/positions/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/positions/p1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDashboard_RefreshFlag(t *testing.T) {
	s, deps := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/portfolio?refresh=false", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, deps.portfolio.refreshed)

	rec = do(t, s, http.MethodGet, "/api/portfolio?refresh=0", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, deps.portfolio.refreshed)

	rec = do(t, s, http.MethodGet, "/api/portfolio", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, deps.portfolio.refreshed)

	var dashboard models.Dashboard
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dashboard))
	assert.Equal(t, 1500.0, dashboard.Valuation.TotalValue)
}

func TestRefresh_Force(t *testing.T) {
	s, deps := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/portfolio/refresh?force=1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, deps.portfolio.forced)

	rec = do(t, s, http.MethodGet, "/api/portfolio/refresh", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHistory(t *testing.T) {
	s, deps := newTestServer(t, nil)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	deps.history.points = []models.HistoryPoint{
		{Date: day, Value: 1000, CostBasis: 1000},
		{Date: day.AddDate(0, 0, 1), Value: 1050, CostBasis: 1000},
	}

	rec := do(t, s, http.MethodGet, "/api/portfolio/history", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		History []models.HistoryPoint `json:"history"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.History, 2)

	rec = do(t, s, http.MethodGet, "/api/portfolio/history/chart", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
}

func TestHistoryChart_NotEnoughPoints(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/api/portfolio/history/chart", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWatchlist_Lifecycle(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/watchlist", `{"symbol":"nvda"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/watchlist", `{"symbol":"NVDA"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/watchlist", `{"symbol":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/watchlist/review", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/watchlist/nvda", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/watchlist/NVDA", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarketQuote(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/market/quote/aapl", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/market/quote/DEAD", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/market/quote/", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarketNews_DefaultsToPositions(t *testing.T) {
	s, deps := newTestServer(t, nil)
	deps.portfolio.positions = []*models.Position{{Symbol: "AAPL"}, {Symbol: "MSFT"}}

	rec := do(t, s, http.MethodGet, "/api/market/news", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"AAPL", "MSFT"}, deps.market.newsSymbols)
	assert.Contains(t, rec.Body.String(), `"news":[]`)

	rec = do(t, s, http.MethodGet, "/api/market/news?symbols=tsla,,nvda", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"TSLA", "NVDA"}, deps.market.newsSymbols)
}

func TestAnalyticsTrigger(t *testing.T) {
	s, deps := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/analytics/trigger", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, deps.trigger.calls)

	deps.trigger.err = errors.New("GitHub API error: Not Found (status: 404)")
	rec = do(t, s, http.MethodPost, "/api/analytics/trigger", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAnalyticsTrigger_NotConfigured(t *testing.T) {
	s, _ := newTestServer(t, nil)
	s.app.Analytics = nil

	rec := do(t, s, http.MethodPost, "/api/analytics/trigger", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBearerToken_PopulatesUser(t *testing.T) {
	s, deps := newTestServer(t, nil)
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "user-42",
		"email": "user42@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	rec := do(t, s, http.MethodGet, "/api/positions", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", deps.portfolio.userID)
}

func TestBearerToken_AnonymousFallsBackToDefaultUser(t *testing.T) {
	s, deps := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/positions", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, common.DefaultUserID, deps.portfolio.userID)
}

func TestBearerToken_Rejected(t *testing.T) {
	s, _ := newTestServer(t, nil)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signToken(t, "other-secret", jwt.MapClaims{"sub": "u1"})},
		{"expired", signToken(t, testSecret, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()})},
		{"missing sub", signToken(t, testSecret, jwt.MapClaims{"email": "x@example.com"})},
		{"garbage", "not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/api/positions", "", "Authorization", "Bearer "+tt.token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
		})
	}
}

func TestBearerToken_Required(t *testing.T) {
	s, _ := newTestServer(t, func(c *common.Config) { c.Auth.Required = true })

	rec := do(t, s, http.MethodGet, "/api/positions", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code, "health stays public")
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, func(c *common.Config) { c.Auth.Required = true })

	rec := do(t, s, http.MethodOptions, "/api/positions", "",
		"Origin", "http://localhost:3000",
		"Access-Control-Request-Method", "POST",
	)
	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPathParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/positions/abc/extra", nil)
	assert.Equal(t, "abc", PathParam(req, "/api/positions/", ""))
	assert.Equal(t, "", PathParam(req, "/api/watchlist/", ""))
}

func TestBoolQueryDefault(t *testing.T) {
	tests := []struct {
		query string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"", false, false},
		{"?refresh=false", true, false},
		{"?refresh=0", true, false},
		{"?refresh=TRUE", false, true},
		{"?refresh=1", false, true},
		{"?refresh=maybe", true, true},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/portfolio"+tt.query, nil)
		assert.Equal(t, tt.want, boolQueryDefault(req, "refresh", tt.def), "query %q", tt.query)
	}
}
