// Package booking models the durable financial record produced by checkout.
package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/indie-cactus/service-reservation/internal/domain"
)

// GuestInfo carries the contact fields captured at checkout.
type GuestInfo struct {
	FirstName string
	LastName  string
	Email     string
	Whatsapp  string
	Residence string
}

// Line is one booked room snapshot. The room reference is nullable: if the
// room is later removed from inventory the historical price and quantity
// stay valid and displayable.
type Line struct {
	RoomID         *uuid.UUID
	RoomName       string
	UnitPriceCents int64
	Quantity       int
}

// CostCents is the line total.
func (l Line) CostCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// Booking is the aggregate root for a completed checkout. Created unpaid,
// it transitions to paid exactly once and is never deleted.
type Booking struct {
	id        uuid.UUID
	guest     GuestInfo
	paid      bool
	paymentID string
	discount  int
	lines     []Line
	createdAt time.Time
	updatedAt time.Time
}

// New creates an unpaid booking from a cart snapshot. The booking id is a
// random 128-bit identifier so it can double as the processor's external
// reference without being guessable.
func New(guest GuestInfo, lines []Line, discount int) (*Booking, error) {
	if len(lines) == 0 {
		return nil, domain.NewValidationError("a booking requires at least one line")
	}
	if discount < 0 || discount > 100 {
		return nil, domain.NewValidationError("discount must be between 0 and 100")
	}
	for _, l := range lines {
		if l.Quantity < 1 || l.Quantity > 10 {
			return nil, domain.NewValidationError("line quantity must be between 1 and 10")
		}
		if l.UnitPriceCents < 0 {
			return nil, domain.NewValidationError("line price cannot be negative")
		}
	}

	now := time.Now().UTC()
	return &Booking{
		id:        uuid.New(),
		guest:     guest,
		paid:      false,
		paymentID: "",
		discount:  discount,
		lines:     lines,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstitute rebuilds a Booking from persistence.
func Reconstitute(id uuid.UUID, guest GuestInfo, paid bool, paymentID string, discount int, lines []Line, createdAt, updatedAt time.Time) *Booking {
	return &Booking{
		id:        id,
		guest:     guest,
		paid:      paid,
		paymentID: paymentID,
		discount:  discount,
		lines:     lines,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (b *Booking) ID() uuid.UUID        { return b.id }
func (b *Booking) Guest() GuestInfo     { return b.guest }
func (b *Booking) Paid() bool           { return b.paid }
func (b *Booking) PaymentID() string    { return b.paymentID }
func (b *Booking) Discount() int        { return b.discount }
func (b *Booking) Lines() []Line        { return b.lines }
func (b *Booking) CreatedAt() time.Time { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// TotalCents sums price times quantity over the owned lines. The discount
// is stored separately and applied by payment logic, keeping the line-item
// record auditable independent of discount policy.
func (b *Booking) TotalCents() int64 {
	var total int64
	for _, l := range b.lines {
		total += l.CostCents()
	}
	return total
}

// Confirm transitions the booking to paid under the external payment id.
// Replaying the same payment id on a paid booking is a no-op success;
// a different id is a conflict and leaves the stored id untouched.
func (b *Booking) Confirm(paymentID string) error {
	if paymentID == "" {
		return domain.NewValidationError("payment id is required")
	}
	if b.paid {
		if b.paymentID == paymentID {
			return nil
		}
		return domain.NewConfirmationConflictError(b.id.String(), b.paymentID, paymentID)
	}
	b.paid = true
	b.paymentID = paymentID
	b.updatedAt = time.Now().UTC()
	return nil
}
