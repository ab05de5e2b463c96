package surrealdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/quantum/internal/common"
	"github.com/bobmcallan/quantum/internal/models"
	tcommon "github.com/bobmcallan/quantum/tests/common"
)

func testConfig(t *testing.T) *common.Config {
	t.Helper()
	sc := tcommon.StartSurrealDB(t)

	cfg := common.NewDefaultConfig()
	cfg.Environment = "test"
	cfg.Storage = common.StorageConfig{
		Address:   sc.Address(),
		Namespace: "quantum_test",
		Database:  testDBName("mgr", t),
		Username:  "root",
		Password:  "root",
	}
	return cfg
}

func TestNewManager(t *testing.T) {
	cfg := testConfig(t)

	mgr, err := NewManager(common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	defer mgr.Close()

	assert.NotNil(t, mgr.PositionStore())
	assert.NotNil(t, mgr.WatchlistStore())
}

func TestNewManager_EmptyTablesQueryable(t *testing.T) {
	cfg := testConfig(t)

	mgr, err := NewManager(common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	defer mgr.Close()

	ctx := context.Background()
	positions, err := mgr.PositionStore().ListPositions(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, positions)

	entries, err := mgr.WatchlistStore().ListWatchlist(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewManager_BadAddress(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Storage.Address = "ws://127.0.0.1:1/rpc"

	_, err := NewManager(common.NewSilentLogger(), cfg)
	assert.Error(t, err)
}

func TestManager_PositionRoundTrip(t *testing.T) {
	cfg := testConfig(t)

	mgr, err := NewManager(common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	defer mgr.Close()

	ctx := context.Background()
	p := &models.Position{
		ID: "p1", UserID: "u1", Symbol: "AAPL", Shares: 10, BuyPrice: 100,
		CreatedAt: time.Now().UTC().Truncate(time.Second), Category: "Core",
	}
	require.NoError(t, mgr.PositionStore().UpsertPosition(ctx, p))

	got, err := mgr.PositionStore().GetPosition(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)
}
