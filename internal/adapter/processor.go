// Package adapter isolates the external payment processor behind a small
// port so the domain never sees provider wire formats.
package adapter

import "context"

// PreferenceRequest describes the checkout the processor should collect
// payment for. The booking id travels as the external reference and comes
// back on every callback.
type PreferenceRequest struct {
	ExternalReference string
	Title             string
	Description       string
	AmountCents       int64
	SuccessURL        string
	FailureURL        string
	PendingURL        string
	NotificationURL   string
}

// Preference is the processor's handle for a created checkout session.
// InitPoint is the URL the traveller is redirected to.
type Preference struct {
	ID        string
	InitPoint string
}

// PaymentStatus is the authoritative state of a payment as reported by the
// processor, used to re-verify webhook signals.
type PaymentStatus struct {
	PaymentID         string
	Status            string
	ExternalReference string
}

// Processor is the Anti-Corruption Layer interface for the payment
// provider.
type Processor interface {
	// CreatePreference registers a checkout with the processor.
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)

	// GetPayment fetches the authoritative status of a payment.
	GetPayment(ctx context.Context, paymentID string) (*PaymentStatus, error)
}
