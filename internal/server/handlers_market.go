package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/quantum/internal/models"
)

// handleWatchlist handles GET and POST /api/watchlist.
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := s.app.WatchlistService.List(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if entries == nil {
			entries = []*models.WatchlistEntry{}
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"watchlist": entries})
	case http.MethodPost:
		var body struct {
			Symbol string `json:"symbol"`
		}
		if !DecodeJSON(w, r, &body) {
			return
		}
		entry, err := s.app.WatchlistService.Add(r.Context(), body.Symbol)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusCreated, entry)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// routeWatchlistEntry handles DELETE /api/watchlist/{symbol}.
func (s *Server) routeWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	symbol := PathParam(r, "/api/watchlist/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	if err := s.app.WatchlistService.Remove(r.Context(), symbol); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleWatchlistReview handles GET /api/watchlist/review.
func (s *Server) handleWatchlistReview(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	reviews, err := s.app.WatchlistService.Review(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

// handleMarketQuote handles GET /api/market/quote/{symbol}.
func (s *Server) handleMarketQuote(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol := models.NormalizeSymbol(PathParam(r, "/api/market/quote/", ""))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	view, err := s.app.MarketService.GetQuoteView(r.Context(), symbol)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// handleMarketNews handles GET /api/market/news?symbols=AAPL,MSFT. Without
// symbols it covers the caller's positions.
func (s *Server) handleMarketNews(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	var symbols []string
	for _, part := range strings.Split(r.URL.Query().Get("symbols"), ",") {
		if sym := models.NormalizeSymbol(part); sym != "" {
			symbols = append(symbols, sym)
		}
	}
	if len(symbols) == 0 {
		positions, err := s.app.PortfolioService.ListPositions(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		for _, p := range positions {
			symbols = append(symbols, p.Symbol)
		}
	}

	items, err := s.app.MarketService.GetNews(r.Context(), symbols)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []*models.NewsItem{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"news": items})
}

// handleAnalyticsTrigger handles POST /api/analytics/trigger. The job runs
// remotely; results land on positions when it finishes.
func (s *Server) handleAnalyticsTrigger(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if s.app.Analytics == nil {
		WriteErrorWithCode(w, http.StatusServiceUnavailable, "analytics workflow is not configured", "not_configured")
		return
	}
	if err := s.app.Analytics.Trigger(r.Context()); err != nil {
		s.logger.Warn().Err(err).Msg("Analytics trigger failed")
		WriteErrorWithCode(w, http.StatusBadGateway, err.Error(), CodeFetchFailed)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "triggered"})
}
