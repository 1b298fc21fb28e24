package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/indie-cactus/service-reservation/internal/domain/coupon"
)

// CreateCouponRequest carries the fields for a new discount coupon.
type CreateCouponRequest struct {
	Code            string
	DiscountPercent int
	ValidFrom       *time.Time
	ValidUntil      *time.Time
}

// CouponService is the write side of coupon management.
type CouponService struct {
	repo   coupon.Repository
	logger *zap.Logger
}

// NewCouponService creates a new CouponService.
func NewCouponService(repo coupon.Repository, logger *zap.Logger) *CouponService {
	return &CouponService{repo: repo, logger: logger}
}

// Create registers a coupon.
func (s *CouponService) Create(ctx context.Context, req CreateCouponRequest) (*coupon.Coupon, error) {
	c, err := coupon.New(req.Code, req.DiscountPercent, req.ValidFrom, req.ValidUntil)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("coupon created",
		zap.String("code", c.Code),
		zap.Int("discount_percent", c.DiscountPercent))
	return c, nil
}
