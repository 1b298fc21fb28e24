package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/indie-cactus/service-reservation/internal/adapter"
	"github.com/indie-cactus/service-reservation/internal/domain"
	"github.com/indie-cactus/service-reservation/internal/domain/booking"
	"github.com/indie-cactus/service-reservation/internal/events"
)

// StatusApproved is the processor status that confirms a booking. Every
// other status is treated as not-paid-yet.
const StatusApproved = "approved"

// ConfirmationResult reports how a payment signal was resolved.
type ConfirmationResult struct {
	BookingID uuid.UUID `json:"booking_id"`
	Confirmed bool      `json:"confirmed"`
	// Replayed is set when the booking was already confirmed under the same
	// payment id; the signal was a duplicate, not a new transition.
	Replayed bool `json:"replayed"`
}

// ConfirmationService reconciles payment signals from both channels, the
// guest's redirect back from the processor and the processor's
// server-to-server webhook, into at most one paid transition per booking.
// Both channels funnel into the same conditional write, so whichever
// arrives first wins and the other becomes a harmless replay.
type ConfirmationService struct {
	bookings  booking.Repository
	processor adapter.Processor
	publisher events.Publisher
	logger    *zap.Logger
}

// NewConfirmationService creates a new ConfirmationService.
func NewConfirmationService(bookings booking.Repository, processor adapter.Processor, publisher events.Publisher, logger *zap.Logger) *ConfirmationService {
	return &ConfirmationService{
		bookings:  bookings,
		processor: processor,
		publisher: publisher,
		logger:    logger,
	}
}

// HandleCallback processes a redirect-channel signal: the external
// reference, status and payment id parsed from the return URL. Approved
// signals confirm the booking; anything else raises an operator alert and
// reports failure without touching booking state.
func (s *ConfirmationService) HandleCallback(ctx context.Context, externalRef, status, paymentID string) (*ConfirmationResult, error) {
	if externalRef == "" {
		s.alert(ctx, externalRef, status, "callback without external reference")
		return nil, domain.NewUnknownBookingError(externalRef)
	}

	bookingID, err := uuid.Parse(externalRef)
	if err != nil {
		s.alert(ctx, externalRef, status, "external reference is not a booking id")
		return nil, domain.NewUnknownBookingError(externalRef)
	}

	if status != StatusApproved {
		s.alert(ctx, externalRef, status, "payment not approved")
		return &ConfirmationResult{BookingID: bookingID, Confirmed: false}, nil
	}
	if paymentID == "" {
		s.alert(ctx, externalRef, status, "approved callback without payment id")
		return nil, domain.NewValidationError("payment id is required")
	}

	return s.confirm(ctx, bookingID, paymentID)
}

// HandleWebhook processes a webhook-channel signal. The webhook body is
// treated as an untrusted hint: only the payment id is taken from it, and
// the authoritative status and external reference are re-queried from the
// processor before the confirmation path runs.
func (s *ConfirmationService) HandleWebhook(ctx context.Context, paymentID string) (*ConfirmationResult, error) {
	if paymentID == "" {
		return nil, domain.NewValidationError("webhook without payment id")
	}

	payment, err := s.processor.GetPayment(ctx, paymentID)
	if err != nil {
		s.logger.Error("failed to verify webhook payment",
			zap.String("payment_id", paymentID),
			zap.Error(err))
		return nil, err
	}

	return s.HandleCallback(ctx, payment.ExternalReference, payment.Status, payment.PaymentID)
}

// confirm runs the single-winner transition and classifies the outcome.
func (s *ConfirmationService) confirm(ctx context.Context, bookingID uuid.UUID, paymentID string) (*ConfirmationResult, error) {
	transitioned, err := s.bookings.Confirm(ctx, bookingID, paymentID)
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.publishConfirmed(ctx, bookingID, paymentID)
		s.logger.Info("booking confirmed",
			zap.String("booking_id", bookingID.String()),
			zap.String("payment_id", paymentID))
		return &ConfirmationResult{BookingID: bookingID, Confirmed: true}, nil
	}

	// The conditional write matched nothing: either the booking does not
	// exist, or it is already paid. Load it to tell replay from conflict.
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.alert(ctx, bookingID.String(), StatusApproved, "no booking for external reference")
			return nil, domain.NewUnknownBookingError(bookingID.String())
		}
		return nil, err
	}

	if b.Paid() && b.PaymentID() == paymentID {
		return &ConfirmationResult{BookingID: bookingID, Confirmed: true, Replayed: true}, nil
	}
	if b.Paid() {
		s.alert(ctx, bookingID.String(), StatusApproved, "second payment id for a confirmed booking")
		return nil, domain.NewConfirmationConflictError(bookingID.String(), b.PaymentID(), paymentID)
	}

	// Unpaid yet the write matched nothing: a concurrent transition rolled
	// back or the row changed under us. Surface it for a retry.
	return nil, domain.NewConflictError("confirmation did not apply, retry the signal")
}

// publishConfirmed emits the confirmation notification. It fires only on
// the effective transition, never on replays, so downstream consumers see
// it at most once per booking.
func (s *ConfirmationService) publishConfirmed(ctx context.Context, bookingID uuid.UUID, paymentID string) {
	ce, err := events.NewCloudEvent(events.Source, events.BookingConfirmed, events.BookingConfirmedEvent{
		BookingID:  bookingID,
		PaymentID:  paymentID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to build booking.confirmed event", zap.Error(err))
		return
	}
	if err := s.publisher.PublishEvent(ctx, events.TopicBookingEvents, ce); err != nil {
		s.logger.Error("failed to publish booking.confirmed event",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err))
	}
}

func (s *ConfirmationService) alert(ctx context.Context, reference, status, detail string) {
	s.logger.Warn("payment alert",
		zap.String("reference", reference),
		zap.String("status", status),
		zap.String("detail", detail))

	ce, err := events.NewCloudEvent(events.Source, events.PaymentAlert, events.PaymentAlertEvent{
		Reference:  reference,
		Status:     status,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, events.TopicOpsAlerts, ce); err != nil {
		s.logger.Error("failed to publish payment alert", zap.Error(err))
	}
}
