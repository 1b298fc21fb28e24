package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for rooms and the rate ledger.
// Range aggregation happens in the store so a multi-month stay is one query,
// not one query per night. All range bounds are inclusive.
type Repository interface {
	SaveRoom(ctx context.Context, room *Room) error
	FindRoom(ctx context.Context, id uuid.UUID) (*Room, error)

	// UpsertRate creates or replaces the single entry for (room, date).
	UpsertRate(ctx context.Context, entry *RateEntry) error

	// SumRateCents returns the sum of nightly rates over the range, zero
	// when no entries exist.
	SumRateCents(ctx context.Context, roomID uuid.UUID, start, end time.Time) (int64, error)

	// MinAvailability returns the minimum availability over the range, zero
	// when no entries exist (missing ledger data is unavailable, not
	// unlimited).
	MinAvailability(ctx context.Context, roomID uuid.UUID, start, end time.Time) (int, error)

	// CountEntries returns how many nights in the range have an entry.
	CountEntries(ctx context.Context, roomID uuid.UUID, start, end time.Time) (int, error)

	// ListRates returns the entries in the range ordered by date, for the
	// inventory-management schedule view.
	ListRates(ctx context.Context, roomID uuid.UUID, start, end time.Time) ([]RateEntry, error)
}
