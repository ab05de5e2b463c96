package surrealdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/quantum/internal/models"
)

func newTestPosition(userID, id, symbol string) *models.Position {
	return &models.Position{
		ID:            id,
		UserID:        userID,
		Symbol:        symbol,
		Shares:        10,
		BuyPrice:      100,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
		Category:      "Core",
		TargetPercent: fp(12.5),
	}
}

func TestPositionStore_UpsertAndGet(t *testing.T) {
	store := NewPositionStore(testDB(t), testLogger())
	ctx := context.Background()

	p := newTestPosition("alice", "p1", "AAPL")
	require.NoError(t, store.UpsertPosition(ctx, p))

	got, err := store.GetPosition(ctx, "alice", "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, 10.0, got.Shares)
	assert.Equal(t, 100.0, got.BuyPrice)
	assert.Equal(t, "Core", got.Category)
	require.NotNil(t, got.TargetPercent)
	assert.Equal(t, 12.5, *got.TargetPercent)
	assert.Nil(t, got.CurrentPrice)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
}

func TestPositionStore_GetNotFound(t *testing.T) {
	store := NewPositionStore(testDB(t), testLogger())

	_, err := store.GetPosition(context.Background(), "alice", "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPositionStore_ScopedByUser(t *testing.T) {
	store := NewPositionStore(testDB(t), testLogger())
	ctx := context.Background()

	require.NoError(t, store.UpsertPosition(ctx, newTestPosition("alice", "p1", "AAPL")))
	require.NoError(t, store.UpsertPosition(ctx, newTestPosition("alice", "p2", "MSFT")))
	require.NoError(t, store.UpsertPosition(ctx, newTestPosition("bob", "p3", "KO")))

	alice, err := store.ListPositions(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, alice, 2)

	bob, err := store.ListPositions(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bob, 1)
	assert.Equal(t, "KO", bob[0].Symbol)

	_, err = store.GetPosition(ctx, "bob", "p1")
	assert.ErrorIs(t, err, models.ErrNotFound)

	users, err := store.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, users)
}

func TestPositionStore_UpdateSnapshotKeepsAnalyticsFields(t *testing.T) {
	db := testDB(t)
	store := NewPositionStore(db, testLogger())
	ctx := context.Background()

	p := newTestPosition("alice", "p1", "AAPL")
	p.RiskParityTarget = fp(18)
	p.MomentumRatio = fp(1.04)
	require.NoError(t, store.UpsertPosition(ctx, p))

	// The caller holds a copy without analytics fields, as if read before
	// the analytics job wrote them.
	stale := newTestPosition("alice", "p1", "AAPL")
	now := time.Now().UTC().Truncate(time.Second)
	stale.ApplySnapshot(&models.FundamentalsSnapshot{
		Name:         "Apple Inc",
		CurrentPrice: fp(187.5),
		Beta:         fp(0),
		Sector:       "Technology",
	}, now)
	require.NoError(t, store.UpdateSnapshot(ctx, stale))

	got, err := store.GetPosition(ctx, "alice", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc", got.Name)
	require.NotNil(t, got.CurrentPrice)
	assert.Equal(t, 187.5, *got.CurrentPrice)
	require.NotNil(t, got.Beta)
	assert.Equal(t, 0.0, *got.Beta)
	require.NotNil(t, got.LastPriceUpdate)
	assert.True(t, now.Equal(*got.LastPriceUpdate))
	require.NotNil(t, got.RiskParityTarget)
	assert.Equal(t, 18.0, *got.RiskParityTarget)
	require.NotNil(t, got.MomentumRatio)
	assert.Equal(t, 1.04, *got.MomentumRatio)
}

func TestPositionStore_UpdateSnapshotDoesNotRecreateDeleted(t *testing.T) {
	store := NewPositionStore(testDB(t), testLogger())
	ctx := context.Background()

	p := newTestPosition("alice", "p1", "AAPL")
	require.NoError(t, store.UpsertPosition(ctx, p))
	require.NoError(t, store.DeletePosition(ctx, "alice", "p1"))

	p.ApplyFetchFailure(time.Now())
	require.NoError(t, store.UpdateSnapshot(ctx, p))

	_, err := store.GetPosition(ctx, "alice", "p1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPositionStore_Delete(t *testing.T) {
	store := NewPositionStore(testDB(t), testLogger())
	ctx := context.Background()

	require.NoError(t, store.UpsertPosition(ctx, newTestPosition("alice", "p1", "AAPL")))
	require.NoError(t, store.DeletePosition(ctx, "alice", "p1"))

	positions, err := store.ListPositions(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, positions)

	// Deleting again is not an error
	assert.NoError(t, store.DeletePosition(ctx, "alice", "p1"))
}
