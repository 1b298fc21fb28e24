package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/indie-cactus/service-reservation/internal/adapter"
	"github.com/indie-cactus/service-reservation/internal/config"
	"github.com/indie-cactus/service-reservation/internal/domain"
	"github.com/indie-cactus/service-reservation/internal/domain/booking"
	"github.com/indie-cactus/service-reservation/internal/domain/cart"
	"github.com/indie-cactus/service-reservation/internal/domain/coupon"
	"github.com/indie-cactus/service-reservation/internal/domain/inventory"
	"github.com/indie-cactus/service-reservation/internal/events"
)

// CheckoutRequest carries the guest contact fields submitted with checkout.
type CheckoutRequest struct {
	FirstName string
	LastName  string
	Email     string
	Whatsapp  string
	Residence string
}

// CheckoutResult reports the created booking and, when the processor
// cooperated, where to send the guest to pay. PaymentURL is empty when the
// preference could not be created; the booking exists either way and payment
// can be retried against it.
type CheckoutResult struct {
	BookingID       uuid.UUID `json:"booking_id"`
	TotalCents      int64     `json:"total_cents"`
	DiscountPercent int       `json:"discount_percent"`
	AmountDueCents  int64     `json:"amount_due_cents"`
	PaymentURL      string    `json:"payment_url,omitempty"`
}

// BookingLineDTO is one line of a persisted booking.
type BookingLineDTO struct {
	RoomID         *uuid.UUID `json:"room_id,omitempty"`
	RoomName       string     `json:"room_name"`
	Quantity       int        `json:"quantity"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	LineTotalCents int64      `json:"line_total_cents"`
}

// BookingDTO is the read view of a booking.
type BookingDTO struct {
	ID              uuid.UUID        `json:"id"`
	FirstName       string           `json:"first_name"`
	LastName        string           `json:"last_name"`
	Email           string           `json:"email"`
	Paid            bool             `json:"paid"`
	PaymentID       string           `json:"payment_id,omitempty"`
	DiscountPercent int              `json:"discount_percent"`
	TotalCents      int64            `json:"total_cents"`
	AmountDueCents  int64            `json:"amount_due_cents"`
	Lines           []BookingLineDTO `json:"lines"`
	CreatedAt       time.Time        `json:"created_at"`
}

// BookingService turns session carts into durable bookings and hands the
// guest off to the payment processor.
type BookingService struct {
	bookings  booking.Repository
	inventory inventory.Repository
	carts     cart.Store
	coupons   coupon.Resolver
	processor adapter.Processor
	publisher events.Publisher
	cfg       config.ProcessorConfig
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings booking.Repository,
	inv inventory.Repository,
	carts cart.Store,
	coupons coupon.Resolver,
	processor adapter.Processor,
	publisher events.Publisher,
	cfg config.ProcessorConfig,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		inventory: inv,
		carts:     carts,
		coupons:   coupons,
		processor: processor,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Checkout snapshots the session cart into an immutable booking, clears the
// cart, and requests a payment preference. The booking is committed before
// the processor is contacted: a processor outage returns an error alongside
// a result carrying the booking id, so the guest can retry payment without
// re-entering checkout.
func (s *BookingService) Checkout(ctx context.Context, sessionID string, guest CheckoutRequest) (*CheckoutResult, error) {
	state, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.IsEmpty() {
		return nil, domain.NewValidationError("cart is empty")
	}

	discount := 0
	if state.CouponID != "" {
		if c, cerr := s.coupons.Resolve(ctx, state.CouponID); cerr == nil && c != nil {
			discount = c.DiscountPercent
		}
	}

	lines, err := s.snapshotLines(ctx, state)
	if err != nil {
		return nil, err
	}

	b, err := booking.New(booking.GuestInfo{
		FirstName: guest.FirstName,
		LastName:  guest.LastName,
		Email:     guest.Email,
		Whatsapp:  guest.Whatsapp,
		Residence: guest.Residence,
	}, lines, discount)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logger.Warn("failed to clear cart after checkout",
			zap.String("session_id", sessionID),
			zap.String("booking_id", b.ID().String()),
			zap.Error(err))
	}

	s.publishCreated(ctx, b)

	result := &CheckoutResult{
		BookingID:       b.ID(),
		TotalCents:      b.TotalCents(),
		DiscountPercent: b.Discount(),
		AmountDueCents:  amountDueCents(b),
	}

	pref, err := s.createPreference(ctx, b)
	if err != nil {
		s.logger.Error("payment preference creation failed",
			zap.String("booking_id", b.ID().String()),
			zap.Error(err))
		return result, err
	}
	result.PaymentURL = pref.InitPoint
	return result, nil
}

// RetryPayment creates a fresh payment preference for an existing unpaid
// booking, the recovery path after a processor outage at checkout time.
func (s *BookingService) RetryPayment(ctx context.Context, bookingID uuid.UUID) (*CheckoutResult, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Paid() {
		return nil, domain.NewConflictError("booking is already paid")
	}

	result := &CheckoutResult{
		BookingID:       b.ID(),
		TotalCents:      b.TotalCents(),
		DiscountPercent: b.Discount(),
		AmountDueCents:  amountDueCents(b),
	}
	pref, err := s.createPreference(ctx, b)
	if err != nil {
		return result, err
	}
	result.PaymentURL = pref.InitPoint
	return result, nil
}

// GetBooking returns the read view for a booking id.
func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBookingDTO(b), nil
}

// snapshotLines resolves every cart line against current inventory. An
// unknown room fails the checkout; the cart held a reference that no longer
// points anywhere sellable.
func (s *BookingService) snapshotLines(ctx context.Context, state *cart.State) ([]booking.Line, error) {
	roomIDs := state.RoomIDs()
	lines := make([]booking.Line, 0, len(roomIDs))
	for _, roomID := range roomIDs {
		line, _ := state.Get(roomID)
		room, err := s.inventory.FindRoom(ctx, roomID)
		if err != nil {
			return nil, err
		}
		id := roomID
		lines = append(lines, booking.Line{
			RoomID:         &id,
			RoomName:       room.Name,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
		})
	}
	return lines, nil
}

// createPreference asks the processor for a checkout preference, retrying
// transient failures with a short linear backoff. Only unavailability is
// retried; a rejected request fails immediately.
func (s *BookingService) createPreference(ctx context.Context, b *booking.Booking) (*adapter.Preference, error) {
	req := adapter.PreferenceRequest{
		ExternalReference: b.ID().String(),
		Title:             fmt.Sprintf("Reservation %s", b.ID().String()[:8]),
		Description:       fmt.Sprintf("%d room(s) for %s %s", len(b.Lines()), b.Guest().FirstName, b.Guest().LastName),
		AmountCents:       amountDueCents(b),
		SuccessURL:        s.cfg.SuccessURL,
		FailureURL:        s.cfg.FailureURL,
		PendingURL:        s.cfg.PendingURL,
		NotificationURL:   s.cfg.NotificationURL,
	}

	attempts := s.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pref, err := s.processor.CreatePreference(ctx, req)
		if err == nil {
			return pref, nil
		}
		lastErr = err
		if !domain.IsUnavailable(err) {
			return nil, err
		}
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}
	}
	return nil, lastErr
}

func (s *BookingService) publishCreated(ctx context.Context, b *booking.Booking) {
	ce, err := events.NewCloudEvent(events.Source, events.BookingCreated, events.BookingCreatedEvent{
		BookingID:  b.ID(),
		Email:      b.Guest().Email,
		TotalCents: b.TotalCents(),
		Discount:   b.Discount(),
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to build booking.created event", zap.Error(err))
		return
	}
	if err := s.publisher.PublishEvent(ctx, events.TopicBookingEvents, ce); err != nil {
		s.logger.Error("failed to publish booking.created event",
			zap.String("booking_id", b.ID().String()),
			zap.Error(err))
	}
}

// amountDueCents is the discounted total actually charged.
func amountDueCents(b *booking.Booking) int64 {
	total := b.TotalCents()
	return total - total*int64(b.Discount())/100
}

func toBookingDTO(b *booking.Booking) *BookingDTO {
	lines := make([]BookingLineDTO, 0, len(b.Lines()))
	for _, l := range b.Lines() {
		lines = append(lines, BookingLineDTO{
			RoomID:         l.RoomID,
			RoomName:       l.RoomName,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			LineTotalCents: l.CostCents(),
		})
	}
	return &BookingDTO{
		ID:              b.ID(),
		FirstName:       b.Guest().FirstName,
		LastName:        b.Guest().LastName,
		Email:           b.Guest().Email,
		Paid:            b.Paid(),
		PaymentID:       b.PaymentID(),
		DiscountPercent: b.Discount(),
		TotalCents:      b.TotalCents(),
		AmountDueCents:  amountDueCents(b),
		Lines:           lines,
		CreatedAt:       b.CreatedAt(),
	}
}
