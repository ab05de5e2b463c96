package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/quantum/internal/common"
	"github.com/bobmcallan/quantum/internal/interfaces"
	"github.com/bobmcallan/quantum/internal/models"
)

type fakePositionStore struct {
	mu        sync.Mutex
	positions map[string][]*models.Position
}

func (f *fakePositionStore) ListPositions(_ context.Context, userID string) ([]*models.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.positions[userID], nil
}

func (f *fakePositionStore) ListUserIDs(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.positions))
	for id := range f.positions {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakePositionStore) GetPosition(_ context.Context, _, _ string) (*models.Position, error) {
	return nil, models.ErrNotFound
}

func (f *fakePositionStore) UpsertPosition(_ context.Context, _ *models.Position) error { return nil }
func (f *fakePositionStore) UpdateSnapshot(_ context.Context, _ *models.Position) error { return nil }
func (f *fakePositionStore) DeletePosition(_ context.Context, _, _ string) error        { return nil }

type fakeWatchlistStore struct{}

func (fakeWatchlistStore) ListWatchlist(_ context.Context, _ string) ([]*models.WatchlistEntry, error) {
	return nil, nil
}
func (fakeWatchlistStore) GetWatchlistEntry(_ context.Context, _, _ string) (*models.WatchlistEntry, error) {
	return nil, models.ErrNotFound
}
func (fakeWatchlistStore) UpsertWatchlistEntry(_ context.Context, _ *models.WatchlistEntry) error {
	return nil
}
func (fakeWatchlistStore) DeleteWatchlistEntry(_ context.Context, _, _ string) error { return nil }

type fakeStorage struct {
	positions *fakePositionStore
	closed    bool
}

func (f *fakeStorage) PositionStore() interfaces.PositionStore   { return f.positions }
func (f *fakeStorage) WatchlistStore() interfaces.WatchlistStore { return fakeWatchlistStore{} }
func (f *fakeStorage) Close() error {
	f.closed = true
	return nil
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{positions: &fakePositionStore{positions: map[string][]*models.Position{}}}
}

func TestNew_WiresServices(t *testing.T) {
	config := common.NewDefaultConfig()
	storage := newFakeStorage()

	a := New(config, common.NewSilentLogger(), storage, nil)

	assert.NotNil(t, a.MarketClient)
	assert.NotNil(t, a.MarketService)
	assert.NotNil(t, a.PortfolioService)
	assert.NotNil(t, a.HistoryService)
	assert.NotNil(t, a.WatchlistService)
	assert.Nil(t, a.Analytics, "analytics trigger needs a token, owner and repo")
	assert.False(t, a.StartupTime.IsZero())

	a.Close()
	assert.True(t, storage.closed)
	assert.Nil(t, a.Storage)
}

func TestNew_GitHubConfiguredEnablesAnalytics(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Clients.GitHub.Token = "ghp_test"
	config.Clients.GitHub.Owner = "acme"
	config.Clients.GitHub.Repo = "quantum-analytics"

	a := New(config, common.NewSilentLogger(), newFakeStorage(), nil)
	assert.NotNil(t, a.Analytics)
}

func TestNew_EmptyPortfolioDashboard(t *testing.T) {
	a := New(common.NewDefaultConfig(), common.NewSilentLogger(), newFakeStorage(), nil)

	dashboard, err := a.PortfolioService.GetDashboard(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 0.0, dashboard.Valuation.TotalValue)
	assert.Equal(t, 1.0, dashboard.Valuation.Beta)
}

func TestStartScheduler_InvalidSpec(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Scheduler.RefreshCron = "not a cron spec"

	a := New(config, common.NewSilentLogger(), newFakeStorage(), nil)
	err := a.StartScheduler()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh_cron")
}

func TestStartScheduler_StartsAndStops(t *testing.T) {
	a := New(common.NewDefaultConfig(), common.NewSilentLogger(), newFakeStorage(), nil)
	require.NoError(t, a.StartScheduler())

	done := make(chan struct{})
	go func() {
		a.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not stop the scheduler")
	}
}
