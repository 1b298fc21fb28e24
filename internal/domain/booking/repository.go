package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for bookings.
type Repository interface {
	// Create persists the booking header and all of its lines atomically.
	// A reader never observes a header without lines.
	Create(ctx context.Context, b *Booking) error

	// FindByID loads a booking with its lines.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// Confirm performs the paid transition as a single conditional write:
	// set paid and payment id only where the booking is still unpaid.
	// Exactly one concurrent caller wins; the returned flag reports whether
	// this call performed the transition. Losing callers fall through to the
	// aggregate's idempotent-replay / conflict rules.
	Confirm(ctx context.Context, id uuid.UUID, paymentID string) (transitioned bool, err error)
}
