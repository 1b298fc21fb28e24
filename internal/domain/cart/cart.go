// Package cart models the transient, session-scoped selection a traveller
// builds before checkout.
package cart

import (
	"sort"

	"github.com/google/uuid"

	"github.com/indie-cactus/service-reservation/internal/domain"
)

// Line is one selected room with its quantity and the unit price captured
// when the line was first added. The price is never re-derived from the
// ledger mid-session, so a published rate change cannot drift an open cart.
type Line struct {
	Quantity       int   `json:"quantity"`
	UnitPriceCents int64 `json:"unit_price_cents"`
}

// State is the serializable cart snapshot stored per session. An empty
// state is the default; there is no "no cart" condition.
type State struct {
	Lines    map[string]Line `json:"lines"`
	CouponID string          `json:"coupon_id,omitempty"`
}

// NewState returns an empty cart.
func NewState() *State {
	return &State{Lines: make(map[string]Line)}
}

// CapacityPolicy is consulted before a new distinct line is added. The
// product rule (at most N distinct rooms) lives here, not in the cart
// mechanics.
type CapacityPolicy func(lineCount int) error

// Unlimited imposes no line cap.
func Unlimited(int) error { return nil }

// MaxLines rejects new lines once the cart holds n distinct rooms.
// Quantity changes to existing lines always pass.
func MaxLines(n int) CapacityPolicy {
	return func(lineCount int) error {
		if lineCount >= n {
			return &domain.DomainError{
				Err:     domain.ErrCartCapacity,
				Message: "cart is full",
			}
		}
		return nil
	}
}

// Add inserts or updates a line. A new room captures unitPriceCents;
// an existing line keeps its captured price. With override the quantity is
// replaced, otherwise it accumulates.
func (s *State) Add(roomID uuid.UUID, quantity int, unitPriceCents int64, override bool, policy CapacityPolicy) error {
	if s.Lines == nil {
		s.Lines = make(map[string]Line)
	}

	key := roomID.String()
	line, exists := s.Lines[key]
	if !exists {
		if policy != nil {
			if err := policy(len(s.Lines)); err != nil {
				return err
			}
		}
		line = Line{UnitPriceCents: unitPriceCents}
	}

	if override {
		line.Quantity = quantity
	} else {
		line.Quantity += quantity
	}
	s.Lines[key] = line
	return nil
}

// Remove deletes the line for a room. Removing an absent room is a no-op,
// not an error; the return value reports whether anything changed.
func (s *State) Remove(roomID uuid.UUID) bool {
	key := roomID.String()
	if _, ok := s.Lines[key]; !ok {
		return false
	}
	delete(s.Lines, key)
	return true
}

// Clear empties the cart and drops the coupon binding. Idempotent.
func (s *State) Clear() {
	s.Lines = make(map[string]Line)
	s.CouponID = ""
}

// IsEmpty reports whether the cart holds no lines.
func (s *State) IsEmpty() bool { return len(s.Lines) == 0 }

// TotalCents sums unit price times quantity over all lines.
func (s *State) TotalCents() int64 {
	var total int64
	for _, line := range s.Lines {
		total += line.UnitPriceCents * int64(line.Quantity)
	}
	return total
}

// DiscountCents applies a percentage discount to the total. Zero percent
// (no coupon, or an unresolvable one) yields zero.
func (s *State) DiscountCents(percent int) int64 {
	if percent <= 0 {
		return 0
	}
	if percent > 100 {
		percent = 100
	}
	return s.TotalCents() * int64(percent) / 100
}

// TotalAfterDiscountCents is TotalCents minus DiscountCents.
func (s *State) TotalAfterDiscountCents(percent int) int64 {
	return s.TotalCents() - s.DiscountCents(percent)
}

// RoomIDs returns the distinct rooms in the cart in a stable order.
func (s *State) RoomIDs() []uuid.UUID {
	keys := make([]string, 0, len(s.Lines))
	for k := range s.Lines {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ids := make([]uuid.UUID, 0, len(keys))
	for _, k := range keys {
		if id, err := uuid.Parse(k); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Get returns the line for a room, if present.
func (s *State) Get(roomID uuid.UUID) (Line, bool) {
	line, ok := s.Lines[roomID.String()]
	return line, ok
}
