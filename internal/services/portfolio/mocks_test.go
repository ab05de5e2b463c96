package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bobmcallan/quantum/internal/common"
	"github.com/bobmcallan/quantum/internal/interfaces"
	"github.com/bobmcallan/quantum/internal/models"
)

// memPositionStore is an in-memory PositionStore keyed by user and id.
type memPositionStore struct {
	mu        sync.Mutex
	positions map[string]*models.Position
	snapshots int
}

func newMemPositionStore(seed ...*models.Position) *memPositionStore {
	s := &memPositionStore{positions: make(map[string]*models.Position)}
	for _, p := range seed {
		cp := *p
		s.positions[p.UserID+"/"+p.ID] = &cp
	}
	return s
}

func (s *memPositionStore) ListPositions(_ context.Context, userID string) ([]*models.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Position
	for _, p := range s.positions {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (s *memPositionStore) ListUserIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, p := range s.positions {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			out = append(out, p.UserID)
		}
	}
	return out, nil
}

func (s *memPositionStore) GetPosition(_ context.Context, userID, id string) (*models.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.positions[userID+"/"+id]
	if !ok {
		return nil, fmt.Errorf("position %s: %w", id, models.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *memPositionStore) UpsertPosition(_ context.Context, p *models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.positions[p.UserID+"/"+p.ID] = &cp
	return nil
}

func (s *memPositionStore) UpdateSnapshot(_ context.Context, p *models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots++
	stored, ok := s.positions[p.UserID+"/"+p.ID]
	if !ok {
		return nil
	}
	stored.Name = p.Name
	stored.CurrentPrice = p.CurrentPrice
	stored.Beta = p.Beta
	stored.Sector = p.Sector
	stored.LastPriceUpdate = p.LastPriceUpdate
	return nil
}

func (s *memPositionStore) DeletePosition(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.positions, userID+"/"+id)
	return nil
}

func (s *memPositionStore) get(userID, id string) *models.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positions[userID+"/"+id]
}

// stubMarket serves snapshots from a map; missing symbols fail.
type stubMarket struct {
	interfaces.MarketService
	mu        sync.Mutex
	snapshots map[string]*models.FundamentalsSnapshot
	calls     []string
}

func (m *stubMarket) GetSnapshot(_ context.Context, symbol string) (*models.FundamentalsSnapshot, error) {
	m.mu.Lock()
	m.calls = append(m.calls, symbol)
	m.mu.Unlock()
	snap, ok := m.snapshots[symbol]
	if !ok {
		return nil, models.NewFetchError(symbol, "quote", errors.New("provider unavailable"))
	}
	return snap, nil
}

func testConfig() common.PortfolioConfig {
	return common.PortfolioConfig{
		Categories:         []string{"Core", "Satellite", "Opportunity"},
		DefaultCategory:    "Satellite",
		RefreshConcurrency: 3,
	}
}

func newTestService(store *memPositionStore, market *stubMarket, now time.Time) *Service {
	svc := NewService(store, market, testConfig(), common.NewSilentLogger())
	svc.now = func() time.Time { return now }
	return svc
}

func fp(v float64) *float64 { return &v }

func sp(v string) *string { return &v }

func userCtx(id string) context.Context {
	return common.WithUserContext(context.Background(), &common.UserContext{UserID: id})
}
