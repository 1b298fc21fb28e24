// Package coupon models percentage discount codes.
package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/indie-cactus/service-reservation/internal/domain"
)

// Coupon is a code granting a percentage discount on a cart total.
type Coupon struct {
	ID              uuid.UUID
	Code            string
	DiscountPercent int
	Active          bool
	ValidFrom       *time.Time
	ValidUntil      *time.Time
	CreatedAt       time.Time
}

// New creates a coupon. Codes are stored upper-cased.
func New(code string, discountPercent int, validFrom, validUntil *time.Time) (*Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.NewValidationError("coupon code is required")
	}
	if discountPercent < 0 || discountPercent > 100 {
		return nil, domain.NewValidationError("discount percent must be between 0 and 100")
	}
	if validFrom != nil && validUntil != nil && validUntil.Before(*validFrom) {
		return nil, domain.NewValidationError("valid_until must be after valid_from")
	}

	return &Coupon{
		ID:              uuid.New(),
		Code:            code,
		DiscountPercent: discountPercent,
		Active:          true,
		ValidFrom:       validFrom,
		ValidUntil:      validUntil,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// Resolver answers "valid code -> coupon, anything else -> none". A missing,
// malformed, inactive or expired code resolves to nil with a nil error;
// discount computation treats that as zero discount, never a fault.
type Resolver interface {
	Resolve(ctx context.Context, code string) (*Coupon, error)
}

// Repository persists coupons on top of resolving them.
type Repository interface {
	Resolver
	Save(ctx context.Context, c *Coupon) error
}
