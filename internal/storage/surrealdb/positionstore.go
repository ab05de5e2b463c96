package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/quantum/internal/common"
	"github.com/bobmcallan/quantum/internal/interfaces"
	"github.com/bobmcallan/quantum/internal/models"
)

const positionTable = "position"

// positionRecord is the stored form of a position. The record id is
// derived from user and position ids, so the position id is kept in its
// own field.
type positionRecord struct {
	PositionID    string    `json:"position_id"`
	UserID        string    `json:"user_id"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name,omitempty"`
	Shares        float64   `json:"shares"`
	BuyPrice      float64   `json:"buy_price"`
	CreatedAt     time.Time `json:"created_at"`
	Category      string    `json:"category"`
	TargetPercent *float64  `json:"target_percent,omitempty"`

	CurrentPrice    *float64   `json:"current_price,omitempty"`
	Beta            *float64   `json:"beta,omitempty"`
	PETrailing      *float64   `json:"pe_trailing,omitempty"`
	PEForward       *float64   `json:"pe_forward,omitempty"`
	PEGRatio        *float64   `json:"peg_ratio,omitempty"`
	DividendYield   *float64   `json:"dividend_yield,omitempty"`
	MarketCap       *float64   `json:"market_cap,omitempty"`
	Sector          string     `json:"sector,omitempty"`
	Industry        string     `json:"industry,omitempty"`
	LogoURL         string     `json:"logo_url,omitempty"`
	LastPriceUpdate *time.Time `json:"last_price_update,omitempty"`

	RiskParityTarget *float64   `json:"risk_parity_target,omitempty"`
	Volatility       *float64   `json:"volatility,omitempty"`
	MomentumRatio    *float64   `json:"momentum_ratio,omitempty"`
	GrowthEst        *float64   `json:"growth_est,omitempty"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

func toPositionRecord(p *models.Position) positionRecord {
	return positionRecord{
		PositionID:       p.ID,
		UserID:           p.UserID,
		Symbol:           p.Symbol,
		Name:             p.Name,
		Shares:           p.Shares,
		BuyPrice:         p.BuyPrice,
		CreatedAt:        p.CreatedAt,
		Category:         p.Category,
		TargetPercent:    p.TargetPercent,
		CurrentPrice:     p.CurrentPrice,
		Beta:             p.Beta,
		PETrailing:       p.PETrailing,
		PEForward:        p.PEForward,
		PEGRatio:         p.PEGRatio,
		DividendYield:    p.DividendYield,
		MarketCap:        p.MarketCap,
		Sector:           p.Sector,
		Industry:         p.Industry,
		LogoURL:          p.LogoURL,
		LastPriceUpdate:  p.LastPriceUpdate,
		RiskParityTarget: p.RiskParityTarget,
		Volatility:       p.Volatility,
		MomentumRatio:    p.MomentumRatio,
		GrowthEst:        p.GrowthEst,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (r *positionRecord) toModel() *models.Position {
	return &models.Position{
		ID:               r.PositionID,
		UserID:           r.UserID,
		Symbol:           r.Symbol,
		Name:             r.Name,
		Shares:           r.Shares,
		BuyPrice:         r.BuyPrice,
		CreatedAt:        r.CreatedAt,
		Category:         r.Category,
		TargetPercent:    r.TargetPercent,
		CurrentPrice:     r.CurrentPrice,
		Beta:             r.Beta,
		PETrailing:       r.PETrailing,
		PEForward:        r.PEForward,
		PEGRatio:         r.PEGRatio,
		DividendYield:    r.DividendYield,
		MarketCap:        r.MarketCap,
		Sector:           r.Sector,
		Industry:         r.Industry,
		LogoURL:          r.LogoURL,
		LastPriceUpdate:  r.LastPriceUpdate,
		RiskParityTarget: r.RiskParityTarget,
		Volatility:       r.Volatility,
		MomentumRatio:    r.MomentumRatio,
		GrowthEst:        r.GrowthEst,
		UpdatedAt:        r.UpdatedAt,
	}
}

// PositionStore implements interfaces.PositionStore using SurrealDB.
type PositionStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewPositionStore creates a new PositionStore.
func NewPositionStore(db *surrealdb.DB, logger *common.Logger) *PositionStore {
	return &PositionStore{db: db, logger: logger}
}

func positionRID(userID, id string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID(positionTable, userID+"_"+id)
}

func (s *PositionStore) ListPositions(ctx context.Context, userID string) ([]*models.Position, error) {
	sql := "SELECT * OMIT id FROM position WHERE user_id = $user_id ORDER BY created_at ASC"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]positionRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	positions := []*models.Position{}
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			positions = append(positions, (*results)[0].Result[i].toModel())
		}
	}
	return positions, nil
}

func (s *PositionStore) ListUserIDs(ctx context.Context) ([]string, error) {
	sql := "SELECT user_id FROM position GROUP BY user_id"

	type row struct {
		UserID string `json:"user_id"`
	}
	results, err := surrealdb.Query[[]row](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list position owners: %w", err)
	}

	ids := []string{}
	if results != nil && len(*results) > 0 {
		for _, r := range (*results)[0].Result {
			ids = append(ids, r.UserID)
		}
	}
	return ids, nil
}

func (s *PositionStore) GetPosition(ctx context.Context, userID, id string) (*models.Position, error) {
	sql := "SELECT * OMIT id FROM $rid"
	vars := map[string]any{"rid": positionRID(userID, id)}

	results, err := surrealdb.Query[[]positionRecord](ctx, s.db, sql, vars)
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("position %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("position %s: %w", id, models.ErrNotFound)
	}
	return (*results)[0].Result[0].toModel(), nil
}

func (s *PositionStore) UpsertPosition(ctx context.Context, position *models.Position) error {
	sql := "UPSERT $rid CONTENT $record"
	vars := map[string]any{
		"rid":    positionRID(position.UserID, position.ID),
		"record": toPositionRecord(position),
	}

	err := withRetry(func() error {
		_, err := surrealdb.Query[[]positionRecord](ctx, s.db, sql, vars)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert position after retries: %w", err)
	}
	return nil
}

// UpdateSnapshot merges the market snapshot fields into an existing record.
// Analytics fields and user-edited fields are not part of the merge. A
// record deleted in the meantime stays deleted.
func (s *PositionStore) UpdateSnapshot(ctx context.Context, position *models.Position) error {
	sql := "UPDATE $rid MERGE $data"
	vars := map[string]any{
		"rid": positionRID(position.UserID, position.ID),
		"data": map[string]any{
			"name":              position.Name,
			"current_price":     position.CurrentPrice,
			"beta":              position.Beta,
			"pe_trailing":       position.PETrailing,
			"pe_forward":        position.PEForward,
			"peg_ratio":         position.PEGRatio,
			"dividend_yield":    position.DividendYield,
			"market_cap":        position.MarketCap,
			"sector":            position.Sector,
			"industry":          position.Industry,
			"logo_url":          position.LogoURL,
			"last_price_update": position.LastPriceUpdate,
		},
	}

	err := withRetry(func() error {
		_, err := surrealdb.Query[[]positionRecord](ctx, s.db, sql, vars)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update position snapshot after retries: %w", err)
	}
	return nil
}

func (s *PositionStore) DeletePosition(ctx context.Context, userID, id string) error {
	_, err := surrealdb.Delete[positionRecord](ctx, s.db, positionRID(userID, id))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	return nil
}

var _ interfaces.PositionStore = (*PositionStore)(nil)
