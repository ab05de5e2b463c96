package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/quantum/internal/common"
	"github.com/bobmcallan/quantum/internal/interfaces"
	"github.com/bobmcallan/quantum/internal/models"
)

const watchlistTable = "watchlist"

// WatchlistStore implements interfaces.WatchlistStore using SurrealDB.
// Records are keyed by user and symbol, which keeps symbols unique per user.
type WatchlistStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewWatchlistStore creates a new WatchlistStore.
func NewWatchlistStore(db *surrealdb.DB, logger *common.Logger) *WatchlistStore {
	return &WatchlistStore{db: db, logger: logger}
}

func watchlistRID(userID, symbol string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID(watchlistTable, userID+"_"+symbol)
}

func (s *WatchlistStore) ListWatchlist(ctx context.Context, userID string) ([]*models.WatchlistEntry, error) {
	sql := "SELECT * OMIT id FROM watchlist WHERE user_id = $user_id ORDER BY symbol ASC"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]models.WatchlistEntry](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}

	entries := []*models.WatchlistEntry{}
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			entries = append(entries, &(*results)[0].Result[i])
		}
	}
	return entries, nil
}

func (s *WatchlistStore) GetWatchlistEntry(ctx context.Context, userID, symbol string) (*models.WatchlistEntry, error) {
	sql := "SELECT * OMIT id FROM $rid"
	vars := map[string]any{"rid": watchlistRID(userID, symbol)}

	results, err := surrealdb.Query[[]models.WatchlistEntry](ctx, s.db, sql, vars)
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("watchlist %s: %w", symbol, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get watchlist entry: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("watchlist %s: %w", symbol, models.ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

func (s *WatchlistStore) UpsertWatchlistEntry(ctx context.Context, entry *models.WatchlistEntry) error {
	sql := "UPSERT $rid CONTENT $entry"
	vars := map[string]any{
		"rid":   watchlistRID(entry.UserID, entry.Symbol),
		"entry": entry,
	}

	err := withRetry(func() error {
		_, err := surrealdb.Query[[]models.WatchlistEntry](ctx, s.db, sql, vars)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert watchlist entry after retries: %w", err)
	}
	return nil
}

func (s *WatchlistStore) DeleteWatchlistEntry(ctx context.Context, userID, symbol string) error {
	_, err := surrealdb.Delete[models.WatchlistEntry](ctx, s.db, watchlistRID(userID, symbol))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete watchlist entry: %w", err)
	}
	return nil
}

var _ interfaces.WatchlistStore = (*WatchlistStore)(nil)
