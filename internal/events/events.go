package events

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies this service in published envelopes.
const Source = "service-reservation"

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicOpsAlerts     = "ops.alerts"
)

// Event types.
const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	PaymentAlert     = "payment.alert"
)

// BookingCreatedEvent fires when checkout persists a new unpaid booking.
// Downstream: invoice email to the guest.
type BookingCreatedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Email      string    `json:"email"`
	TotalCents int64     `json:"total_cents"`
	Discount   int       `json:"discount"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingConfirmedEvent fires exactly once per effective paid transition.
// Downstream: confirmation email to the guest and the property. Idempotent
// confirmation replays never re-publish it.
type BookingConfirmedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	PaymentID  string    `json:"payment_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentAlertEvent fires when the payment flow sees something operators
// should look at: non-approved callbacks, conflicting payment ids,
// unresolvable references. Diagnostic, never user-facing.
type PaymentAlertEvent struct {
	Reference  string    `json:"reference"`
	Status     string    `json:"status"`
	Detail     string    `json:"detail"`
	OccurredAt time.Time `json:"occurred_at"`
}
