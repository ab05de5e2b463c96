package server

import (
	"net/http"

	"github.com/bobmcallan/quantum/internal/models"
	"github.com/bobmcallan/quantum/internal/services/history"
)

// handlePositions handles GET and POST /api/positions.
func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		positions, err := s.app.PortfolioService.ListPositions(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if positions == nil {
			positions = []*models.Position{}
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"positions": positions})
	case http.MethodPost:
		var input models.PositionInput
		if !DecodeJSON(w, r, &input) {
			return
		}
		position, err := s.app.PortfolioService.AddPosition(r.Context(), input)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusCreated, position)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// routePosition handles PATCH, PUT and DELETE /api/positions/{id}.
func (s *Server) routePosition(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/positions/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "position id is required")
		return
	}

	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		var update models.PositionUpdate
		if !DecodeJSON(w, r, &update) {
			return
		}
		position, err := s.app.PortfolioService.UpdatePosition(r.Context(), id, update)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, position)
	case http.MethodDelete:
		if err := s.app.PortfolioService.RemovePosition(r.Context(), id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		RequireMethod(w, r, http.MethodPatch, http.MethodPut, http.MethodDelete)
	}
}

// handleDashboard handles GET /api/portfolio?refresh=true.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	dashboard, err := s.app.PortfolioService.GetDashboard(r.Context(), boolQueryDefault(r, "refresh", true))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dashboard)
}

// handleRefresh handles POST /api/portfolio/refresh?force=true.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	positions, summary, err := s.app.PortfolioService.RefreshPositions(r.Context(), boolQuery(r, "force"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"positions": positions,
		"refresh":   summary,
	})
}

// handleHistory handles GET /api/portfolio/history.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	points, err := s.app.HistoryService.GetHistory(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"history": points})
}

// handleHistoryChart handles GET /api/portfolio/history/chart as a PNG.
func (s *Server) handleHistoryChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	points, err := s.app.HistoryService.GetHistory(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if len(points) < 2 {
		WriteErrorWithCode(w, http.StatusNotFound, "not enough history to chart", CodeNotFound)
		return
	}
	png, err := history.RenderChart(points)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
