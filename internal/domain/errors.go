// Package domain holds the error taxonomy shared by every core component.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel causes. Callers branch on these via errors.Is.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("dependency unavailable")

	// ErrInvalidRange is returned by the calculator when end < start.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrCartCapacity is returned when a new cart line would exceed the
	// configured maximum number of distinct resources.
	ErrCartCapacity = errors.New("cart capacity exceeded")

	// ErrUnknownBooking is returned by the confirmation gateway when the
	// external reference does not resolve to a booking. Payment data never
	// creates bookings.
	ErrUnknownBooking = errors.New("unknown booking")

	// ErrConfirmationConflict is returned when a second, different payment id
	// claims an already-confirmed booking. The stored payment id is never
	// overwritten.
	ErrConfirmationConflict = errors.New("confirmation conflict")
)

// DomainError wraps a sentinel cause with a human-readable message.
type DomainError struct {
	Err     error
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Err }

// IsUnavailable reports whether err stems from a transient dependency
// failure worth retrying.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// NewNotFoundError reports that an entity could not be located.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// NewValidationError reports a locally rejected input.
func NewValidationError(msg string) *DomainError {
	return &DomainError{Err: ErrValidation, Message: msg}
}

// NewConflictError reports a state conflict.
func NewConflictError(msg string) *DomainError {
	return &DomainError{Err: ErrConflict, Message: msg}
}

// NewInvalidRangeError reports a range whose end precedes its start.
func NewInvalidRangeError(start, end string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidRange,
		Message: fmt.Sprintf("end date %s precedes start date %s", end, start),
	}
}

// NewUnknownBookingError reports an unresolvable external reference.
func NewUnknownBookingError(ref string) *DomainError {
	return &DomainError{
		Err:     ErrUnknownBooking,
		Message: fmt.Sprintf("no booking for external reference %q", ref),
	}
}

// NewConfirmationConflictError reports a second payment id claiming a
// booking already confirmed under another.
func NewConfirmationConflictError(bookingID, existing, attempted string) *DomainError {
	return &DomainError{
		Err: ErrConfirmationConflict,
		Message: fmt.Sprintf(
			"booking %s already confirmed with payment %s, rejected payment %s",
			bookingID, existing, attempted,
		),
	}
}
