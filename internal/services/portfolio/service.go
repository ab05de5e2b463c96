// Package portfolio provides position management, refresh and dashboard services
package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/quantum/internal/common"
	"github.com/bobmcallan/quantum/internal/interfaces"
	"github.com/bobmcallan/quantum/internal/models"
)

// Service implements PortfolioService
type Service struct {
	positions interfaces.PositionStore
	market    interfaces.MarketService
	config    common.PortfolioConfig
	logger    *common.Logger
	now       func() time.Time
}

var _ interfaces.PortfolioService = (*Service)(nil)

// NewService creates a new portfolio service
func NewService(
	positions interfaces.PositionStore,
	market interfaces.MarketService,
	config common.PortfolioConfig,
	logger *common.Logger,
) *Service {
	return &Service{
		positions: positions,
		market:    market,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// ListPositions returns the caller's positions in creation order
func (s *Service) ListPositions(ctx context.Context) ([]*models.Position, error) {
	positions, err := s.positions.ListPositions(ctx, common.ResolveUserID(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	return positions, nil
}

// AddPosition validates and stores a new position. A point-in-time
// snapshot is fetched best-effort; when it fails the position is stored
// without market fields and picked up by the next refresh.
func (s *Service) AddPosition(ctx context.Context, input models.PositionInput) (*models.Position, error) {
	userID := common.ResolveUserID(ctx)

	p, err := s.newPosition(userID, input)
	if err != nil {
		return nil, err
	}

	existing, err := s.positions.ListPositions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	for _, e := range existing {
		if e.Symbol == p.Symbol {
			return nil, fmt.Errorf("position %s: %w", p.Symbol, models.ErrDuplicate)
		}
	}

	snap, err := s.market.GetSnapshot(ctx, p.Symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", p.Symbol).Msg("Snapshot unavailable, position stored without market data")
	} else {
		p.ApplySnapshot(snap, s.now())
	}

	if err := s.positions.UpsertPosition(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save position: %w", err)
	}

	s.logger.Info().Str("symbol", p.Symbol).Str("id", p.ID).Str("user", userID).Msg("Position added")
	return p, nil
}

func (s *Service) newPosition(userID string, input models.PositionInput) (*models.Position, error) {
	symbol := models.NormalizeSymbol(input.Symbol)
	if symbol == "" {
		return nil, models.Invalid("symbol", "symbol is required")
	}

	shares, err := parseShares(input.Shares)
	if err != nil {
		return nil, err
	}
	buyPrice, err := parsePrice(input.BuyPrice)
	if err != nil {
		return nil, err
	}
	category, err := s.resolveCategory(input.Category)
	if err != nil {
		return nil, err
	}

	p := &models.Position{
		ID:        uuid.New().String(),
		UserID:    userID,
		Symbol:    symbol,
		Shares:    shares,
		BuyPrice:  buyPrice,
		CreatedAt: s.now().UTC(),
		Category:  category,
	}
	if input.TargetPercent != nil {
		target, err := parsePercent("target_percent", *input.TargetPercent)
		if err != nil {
			return nil, err
		}
		p.TargetPercent = &target
	}
	return p, nil
}

// UpdatePosition applies a partial edit to shares, buy price, category or target
func (s *Service) UpdatePosition(ctx context.Context, id string, update models.PositionUpdate) (*models.Position, error) {
	userID := common.ResolveUserID(ctx)

	p, err := s.positions.GetPosition(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if update.Shares != nil {
		if p.Shares, err = parseShares(*update.Shares); err != nil {
			return nil, err
		}
	}
	if update.BuyPrice != nil {
		if p.BuyPrice, err = parsePrice(*update.BuyPrice); err != nil {
			return nil, err
		}
	}
	if update.Category != nil {
		if p.Category, err = s.resolveCategory(*update.Category); err != nil {
			return nil, err
		}
	}
	switch {
	case update.ClearTarget:
		p.TargetPercent = nil
	case update.TargetPercent != nil:
		target, err := parsePercent("target_percent", *update.TargetPercent)
		if err != nil {
			return nil, err
		}
		p.TargetPercent = &target
	}

	if err := s.positions.UpsertPosition(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save position: %w", err)
	}

	s.logger.Info().Str("symbol", p.Symbol).Str("id", p.ID).Msg("Position updated")
	return p, nil
}

// RemovePosition deletes a position by id
func (s *Service) RemovePosition(ctx context.Context, id string) error {
	userID := common.ResolveUserID(ctx)

	p, err := s.positions.GetPosition(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.positions.DeletePosition(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}

	s.logger.Info().Str("symbol", p.Symbol).Str("id", id).Msg("Position removed")
	return nil
}

func (s *Service) resolveCategory(category string) (string, error) {
	if category == "" {
		return s.config.DefaultCategory, nil
	}
	if !s.config.IsCategory(category) {
		return "", models.Invalid("category", "unknown category %q", category)
	}
	return category, nil
}
