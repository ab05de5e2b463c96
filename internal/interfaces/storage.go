package interfaces

import (
	"context"

	"github.com/bobmcallan/quantum/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	PositionStore() PositionStore
	WatchlistStore() WatchlistStore

	// Lifecycle
	Close() error
}

// PositionStore persists positions, scoped by user.
type PositionStore interface {
	ListPositions(ctx context.Context, userID string) ([]*models.Position, error)

	// ListUserIDs returns every user holding at least one position.
	ListUserIDs(ctx context.Context) ([]string, error)

	// GetPosition returns models.ErrNotFound when no such position exists.
	GetPosition(ctx context.Context, userID, id string) (*models.Position, error)

	// UpsertPosition writes the full record.
	UpsertPosition(ctx context.Context, position *models.Position) error

	// UpdateSnapshot merges only the market snapshot fields, leaving fields
	// written concurrently by the analytics job untouched.
	UpdateSnapshot(ctx context.Context, position *models.Position) error

	DeletePosition(ctx context.Context, userID, id string) error
}

// WatchlistStore persists watchlist entries, unique by symbol per user.
type WatchlistStore interface {
	ListWatchlist(ctx context.Context, userID string) ([]*models.WatchlistEntry, error)

	// GetWatchlistEntry returns models.ErrNotFound when the symbol is not watched.
	GetWatchlistEntry(ctx context.Context, userID, symbol string) (*models.WatchlistEntry, error)

	UpsertWatchlistEntry(ctx context.Context, entry *models.WatchlistEntry) error
	DeleteWatchlistEntry(ctx context.Context, userID, symbol string) error
}
