package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/indie-cactus/service-reservation/internal/domain"
)

// MaxAvailability caps the remaining-capacity counter on a ledger entry.
const MaxAvailability = 20

// RateEntry is one night of the ledger: the price and remaining capacity of
// a room on a single date. At most one entry exists per (room, date).
type RateEntry struct {
	RoomID       uuid.UUID
	ForDate      time.Time
	RateCents    int64
	Availability int
}

// Validate checks the entry invariants: positive rate, availability within
// [0, MaxAvailability].
func (e *RateEntry) Validate() error {
	if e.RoomID == uuid.Nil {
		return domain.NewValidationError("ledger entry requires a room")
	}
	if e.RateCents < 1 {
		return domain.NewValidationError("rate must be positive")
	}
	if e.Availability < 0 || e.Availability > MaxAvailability {
		return domain.NewValidationError("availability out of range")
	}
	return nil
}

// Day truncates a timestamp to its calendar date in UTC. Ledger keys and
// range bounds always pass through here so equality is date equality.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidateRange rejects ranges whose end precedes their start. Both bounds
// are inclusive nights of the stay.
func ValidateRange(start, end time.Time) error {
	if Day(end).Before(Day(start)) {
		return domain.NewInvalidRangeError(
			Day(start).Format("2006-01-02"),
			Day(end).Format("2006-01-02"),
		)
	}
	return nil
}

// Nights counts the inclusive nights in [start, end].
func Nights(start, end time.Time) int {
	return int(Day(end).Sub(Day(start))/(24*time.Hour)) + 1
}

// Quote aggregates the ledger over an inclusive stay range. CostCents is the
// sum of nightly rates; Availability is the minimum across nights, since a
// stay is only as available as its scarcest night. PricedNights < Nights
// means the ledger has gaps in the range, and a zero cost over a gap must
// not be read as "free".
type Quote struct {
	RoomID       uuid.UUID `json:"room_id"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Nights       int       `json:"nights"`
	PricedNights int       `json:"priced_nights"`
	CostCents    int64     `json:"cost_cents"`
	Availability int       `json:"availability"`
}

// FullyPriced reports whether every night in the range has a ledger entry.
func (q Quote) FullyPriced() bool {
	return q.Nights > 0 && q.PricedNights == q.Nights
}
