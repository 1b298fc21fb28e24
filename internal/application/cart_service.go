package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/indie-cactus/service-reservation/internal/domain"
	"github.com/indie-cactus/service-reservation/internal/domain/cart"
	"github.com/indie-cactus/service-reservation/internal/domain/coupon"
	"github.com/indie-cactus/service-reservation/internal/domain/inventory"
)

// AddItemRequest describes one cart mutation. Start and End are optional:
// with a stay range the unit price is quoted from the ledger, without one the
// room's listed base price for tonight is captured.
type AddItemRequest struct {
	RoomID   uuid.UUID
	Quantity int
	Override bool
	Start    *time.Time
	End      *time.Time
}

// CartItemDTO is one cart line annotated with the room it refers to.
type CartItemDTO struct {
	RoomID         uuid.UUID `json:"room_id"`
	RoomName       string    `json:"room_name"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	LineTotalCents int64     `json:"line_total_cents"`
}

// CartDTO is the full cart view returned to the traveller, totals included.
type CartDTO struct {
	Items                   []CartItemDTO `json:"items"`
	CouponCode              string        `json:"coupon_code,omitempty"`
	DiscountPercent         int           `json:"discount_percent"`
	TotalCents              int64         `json:"total_cents"`
	DiscountCents           int64         `json:"discount_cents"`
	TotalAfterDiscountCents int64         `json:"total_after_discount_cents"`
}

// CartService owns the session cart lifecycle. Every mutation is a single
// load-modify-save round trip against the session store.
type CartService struct {
	store     cart.Store
	inventory inventory.Repository
	pricing   *PricingService
	coupons   coupon.Resolver
	policy    cart.CapacityPolicy
	logger    *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(store cart.Store, inv inventory.Repository, pricing *PricingService, coupons coupon.Resolver, policy cart.CapacityPolicy, logger *zap.Logger) *CartService {
	if policy == nil {
		policy = cart.Unlimited
	}
	return &CartService{
		store:     store,
		inventory: inv,
		pricing:   pricing,
		coupons:   coupons,
		policy:    policy,
		logger:    logger,
	}
}

// AddItem adds a room to the session cart or adjusts an existing line.
// New lines capture their unit price now; repeat adds keep the captured price
// no matter what the ledger says since.
func (s *CartService) AddItem(ctx context.Context, sessionID string, req AddItemRequest) (*CartDTO, error) {
	if req.Quantity < 1 || req.Quantity > 10 {
		return nil, domain.NewValidationError("quantity must be between 1 and 10")
	}

	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var unitPrice int64
	if _, exists := state.Get(req.RoomID); !exists {
		unitPrice, err = s.priceForNewLine(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	if err := state.Add(req.RoomID, req.Quantity, unitPrice, req.Override, s.policy); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sessionID, state); err != nil {
		return nil, err
	}

	s.logger.Debug("cart item added",
		zap.String("session_id", sessionID),
		zap.String("room_id", req.RoomID.String()),
		zap.Int("quantity", req.Quantity))

	return s.buildDTO(ctx, state)
}

// priceForNewLine resolves the unit price a fresh line should capture.
func (s *CartService) priceForNewLine(ctx context.Context, req AddItemRequest) (int64, error) {
	room, err := s.inventory.FindRoom(ctx, req.RoomID)
	if err != nil {
		return 0, err
	}

	if req.Start == nil || req.End == nil {
		return room.BasePriceCents(time.Now().UTC()), nil
	}

	quote, err := s.pricing.Quote(ctx, req.RoomID, *req.Start, *req.End)
	if err != nil {
		return 0, err
	}
	if !quote.FullyPriced() {
		return 0, domain.NewValidationError("no published rate for part of the stay")
	}
	if quote.Availability < req.Quantity {
		return 0, domain.NewValidationError("not enough availability for the stay")
	}
	return quote.CostCents, nil
}

// RemoveItem drops a room from the cart. Removing a room that is not there
// is a no-op and still returns the current cart.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, roomID uuid.UUID) (*CartDTO, error) {
	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Remove(roomID) {
		if err := s.store.Save(ctx, sessionID, state); err != nil {
			return nil, err
		}
	}
	return s.buildDTO(ctx, state)
}

// ApplyCoupon binds a coupon code to the session. The code is stored as
// given; whether it actually discounts anything is decided at total time, so
// a code that expires mid-session silently stops discounting.
func (s *CartService) ApplyCoupon(ctx context.Context, sessionID, code string) (*CartDTO, error) {
	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state.CouponID = code
	if err := s.store.Save(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return s.buildDTO(ctx, state)
}

// Get returns the current cart view for a session.
func (s *CartService) Get(ctx context.Context, sessionID string) (*CartDTO, error) {
	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.buildDTO(ctx, state)
}

// Clear empties the session cart. Clearing an already empty cart succeeds.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}

// resolveDiscount turns the session's coupon binding into a percentage.
// Missing, unknown and inactive coupons all mean zero.
func (s *CartService) resolveDiscount(ctx context.Context, state *cart.State) int {
	if state.CouponID == "" {
		return 0
	}
	c, err := s.coupons.Resolve(ctx, state.CouponID)
	if err != nil {
		s.logger.Warn("coupon resolution failed", zap.String("code", state.CouponID), zap.Error(err))
		return 0
	}
	if c == nil {
		return 0
	}
	return c.DiscountPercent
}

func (s *CartService) buildDTO(ctx context.Context, state *cart.State) (*CartDTO, error) {
	items := make([]CartItemDTO, 0, len(state.Lines))
	for _, roomID := range state.RoomIDs() {
		line, _ := state.Get(roomID)
		name := ""
		if room, err := s.inventory.FindRoom(ctx, roomID); err == nil {
			name = room.Name
		}
		items = append(items, CartItemDTO{
			RoomID:         roomID,
			RoomName:       name,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			LineTotalCents: line.UnitPriceCents * int64(line.Quantity),
		})
	}

	percent := s.resolveDiscount(ctx, state)
	return &CartDTO{
		Items:                   items,
		CouponCode:              state.CouponID,
		DiscountPercent:         percent,
		TotalCents:              state.TotalCents(),
		DiscountCents:           state.DiscountCents(percent),
		TotalAfterDiscountCents: state.TotalAfterDiscountCents(percent),
	}, nil
}
