package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/quantum/internal/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func refreshFixture() *memPositionStore {
	return newMemPositionStore(
		// fresh: 23h old, zero beta counts as present
		&models.Position{ID: "p1", UserID: "alice", Symbol: "AAA", Shares: 1, BuyPrice: 10,
			CurrentPrice: fp(11), Beta: fp(0), LastPriceUpdate: timePtr(testNow.Add(-23 * time.Hour))},
		// stale: 25h old
		&models.Position{ID: "p2", UserID: "alice", Symbol: "BBB", Shares: 2, BuyPrice: 20,
			CurrentPrice: fp(21), Beta: fp(1.1), LastPriceUpdate: timePtr(testNow.Add(-25 * time.Hour))},
		// never refreshed, provider fails
		&models.Position{ID: "p3", UserID: "alice", Symbol: "DEAD", Shares: 3, BuyPrice: 30},
		// stale with cached values, provider fails
		&models.Position{ID: "p4", UserID: "alice", Symbol: "GONE", Shares: 4, BuyPrice: 40,
			CurrentPrice: fp(44), Beta: fp(0.7), LastPriceUpdate: timePtr(testNow.Add(-48 * time.Hour))},
	)
}

func TestRefreshPositions_OnlyStaleAreFetched(t *testing.T) {
	store := refreshFixture()
	market := &stubMarket{snapshots: map[string]*models.FundamentalsSnapshot{
		"AAA": {Symbol: "AAA", CurrentPrice: fp(99)},
		"BBB": {Symbol: "BBB", CurrentPrice: fp(25), Beta: fp(1.3), Sector: "Energy"},
	}}
	svc := newTestService(store, market, testNow)

	positions, summary, err := svc.RefreshPositions(userCtx("alice"), false)
	require.NoError(t, err)
	require.Len(t, positions, 4)

	assert.Equal(t, 1, summary.Fresh)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, []string{"DEAD", "GONE"}, summary.Failed)
	assert.NotContains(t, market.calls, "AAA")
	assert.Equal(t, 3, store.snapshots)

	bbb := store.get("alice", "p2")
	assert.Equal(t, 25.0, *bbb.CurrentPrice)
	assert.Equal(t, 1.3, *bbb.Beta)
	assert.Equal(t, testNow, *bbb.LastPriceUpdate)

	dead := store.get("alice", "p3")
	assert.Equal(t, 30.0, *dead.CurrentPrice, "missing price falls back to buy price")
	assert.Equal(t, 1.0, *dead.Beta, "missing beta falls back to 1.0")
	assert.Equal(t, testNow, *dead.LastPriceUpdate)

	gone := store.get("alice", "p4")
	assert.Equal(t, 44.0, *gone.CurrentPrice, "cached price is kept on failure")
	assert.Equal(t, 0.7, *gone.Beta)
	assert.Equal(t, testNow, *gone.LastPriceUpdate)

	// returned view reflects the refreshed values
	for _, p := range positions {
		if p.Symbol == "BBB" {
			assert.Equal(t, 25.0, *p.CurrentPrice)
		}
	}
}

func TestRefreshPositions_ForceIgnoresFreshness(t *testing.T) {
	store := refreshFixture()
	market := &stubMarket{snapshots: map[string]*models.FundamentalsSnapshot{
		"AAA": {Symbol: "AAA", CurrentPrice: fp(99), Beta: fp(0.5)},
	}}
	svc := newTestService(store, market, testNow)

	_, summary, err := svc.RefreshPositions(userCtx("alice"), true)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Fresh)
	assert.Contains(t, market.calls, "AAA")
	assert.Equal(t, 99.0, *store.get("alice", "p1").CurrentPrice)
}

func TestRefreshPositions_SecondPassIsFresh(t *testing.T) {
	store := refreshFixture()
	svc := newTestService(store, &stubMarket{}, testNow)

	_, _, err := svc.RefreshPositions(userCtx("alice"), false)
	require.NoError(t, err)

	_, summary, err := svc.RefreshPositions(userCtx("alice"), false)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Fresh, "failed fetches are stamped and not retried")
	assert.Empty(t, summary.Failed)
}
