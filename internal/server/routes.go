package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bobmcallan/quantum/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.Handle("/metrics", promhttp.Handler())

	// Positions
	mux.HandleFunc("/api/positions/", s.routePosition)
	mux.HandleFunc("/api/positions", s.handlePositions)

	// Portfolio
	mux.HandleFunc("/api/portfolio", s.handleDashboard)
	mux.HandleFunc("/api/portfolio/refresh", s.handleRefresh)
	mux.HandleFunc("/api/portfolio/history", s.handleHistory)
	mux.HandleFunc("/api/portfolio/history/chart", s.handleHistoryChart)

	// Watchlist
	mux.HandleFunc("/api/watchlist/review", s.handleWatchlistReview)
	mux.HandleFunc("/api/watchlist/", s.routeWatchlistEntry)
	mux.HandleFunc("/api/watchlist", s.handleWatchlist)

	// Market data
	mux.HandleFunc("/api/market/quote/", s.handleMarketQuote)
	mux.HandleFunc("/api/market/news", s.handleMarketNews)

	// Analytics
	mux.HandleFunc("/api/analytics/trigger", s.handleAnalyticsTrigger)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}
