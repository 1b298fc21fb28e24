package adapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MockProcessor is a development implementation of Processor. It simulates
// the provider without a real account: every preference succeeds, a payment
// id is assigned up front, and payments read back as approved with the
// external reference they were created under, so both the redirect and the
// webhook channel can be exercised end to end against it.
type MockProcessor struct {
	logger *zap.Logger

	mu sync.Mutex
	// refs maps assigned payment ids to their external references.
	refs map[string]string
}

// NewMockProcessor creates a new mock processor.
func NewMockProcessor(logger *zap.Logger) *MockProcessor {
	return &MockProcessor{logger: logger, refs: make(map[string]string)}
}

// CreatePreference simulates a created checkout preference. The assigned
// payment id rides on the init point query string, mirroring the provider's
// redirect, so it can be fed straight into the callback or webhook routes.
func (m *MockProcessor) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	suffix := uuid.New().String()[:8]
	id := fmt.Sprintf("pref_mock_%s", suffix)
	paymentID := fmt.Sprintf("pay_mock_%s", suffix)

	m.mu.Lock()
	m.refs[paymentID] = req.ExternalReference
	m.mu.Unlock()

	m.logger.Info("[MOCK PROCESSOR] preference created",
		zap.String("preference_id", id),
		zap.String("payment_id", paymentID),
		zap.String("external_reference", req.ExternalReference),
		zap.Int64("amount_cents", req.AmountCents),
	)

	return &Preference{
		ID:        id,
		InitPoint: fmt.Sprintf("https://checkout.example.test/%s?payment_id=%s", id, paymentID),
	}, nil
}

// GetPayment simulates an approved payment lookup. Payment ids handed out
// by CreatePreference resolve to their external reference; anything else
// reads back approved with no reference, like a payment this account never
// created.
func (m *MockProcessor) GetPayment(ctx context.Context, paymentID string) (*PaymentStatus, error) {
	m.mu.Lock()
	ref := m.refs[paymentID]
	m.mu.Unlock()

	m.logger.Info("[MOCK PROCESSOR] payment fetched",
		zap.String("payment_id", paymentID),
		zap.String("external_reference", ref),
	)
	return &PaymentStatus{
		PaymentID:         paymentID,
		Status:            "approved",
		ExternalReference: ref,
	}, nil
}
