package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/indie-cactus/service-reservation/internal/domain/inventory"
)

// PricingService aggregates the rate ledger over stay ranges. It is the
// single place cost and availability math happens; the cart and checkout
// flows consume its quotes.
type PricingService struct {
	inventory inventory.Repository
	logger    *zap.Logger
}

// NewPricingService creates a new PricingService.
func NewPricingService(inv inventory.Repository, logger *zap.Logger) *PricingService {
	return &PricingService{inventory: inv, logger: logger}
}

// CostCents sums the nightly rates for the inclusive range. Nights without
// a ledger entry contribute nothing; see Quote for detecting gaps.
func (s *PricingService) CostCents(ctx context.Context, roomID uuid.UUID, start, end time.Time) (int64, error) {
	if err := inventory.ValidateRange(start, end); err != nil {
		return 0, err
	}
	return s.inventory.SumRateCents(ctx, roomID, start, end)
}

// Availability returns the minimum availability across the range: a stay is
// only as available as its scarcest night. No ledger data means zero.
func (s *PricingService) Availability(ctx context.Context, roomID uuid.UUID, start, end time.Time) (int, error) {
	if err := inventory.ValidateRange(start, end); err != nil {
		return 0, err
	}
	return s.inventory.MinAvailability(ctx, roomID, start, end)
}

// Quote computes cost, availability and ledger coverage for a range in one
// shot. Callers deciding whether a stay is bookable must check FullyPriced:
// zero cost over a ledger gap is "no price data", not "free".
func (s *PricingService) Quote(ctx context.Context, roomID uuid.UUID, start, end time.Time) (*inventory.Quote, error) {
	if err := inventory.ValidateRange(start, end); err != nil {
		return nil, err
	}

	cost, err := s.inventory.SumRateCents(ctx, roomID, start, end)
	if err != nil {
		return nil, err
	}
	avail, err := s.inventory.MinAvailability(ctx, roomID, start, end)
	if err != nil {
		return nil, err
	}
	priced, err := s.inventory.CountEntries(ctx, roomID, start, end)
	if err != nil {
		return nil, err
	}

	return &inventory.Quote{
		RoomID:       roomID,
		Start:        inventory.Day(start),
		End:          inventory.Day(end),
		Nights:       inventory.Nights(start, end),
		PricedNights: priced,
		CostCents:    cost,
		Availability: avail,
	}, nil
}
