package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	couponDomain "github.com/indie-cactus/service-reservation/internal/domain/coupon"
)

// CouponModel is the GORM model for the coupons table.
type CouponModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Code            string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	DiscountPercent int        `gorm:"not null"`
	Active          bool       `gorm:"not null;default:true"`
	ValidFrom       *time.Time `gorm:""`
	ValidUntil      *time.Time `gorm:""`
	CreatedAt       time.Time  `gorm:"not null"`
}

// TableName sets the table name.
func (CouponModel) TableName() string { return "coupons" }

// GormCouponRepository implements coupon.Resolver using GORM.
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new GormCouponRepository.
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// Save persists a coupon.
func (r *GormCouponRepository) Save(ctx context.Context, c *couponDomain.Coupon) error {
	model := CouponModel{
		ID:              c.ID,
		Code:            c.Code,
		DiscountPercent: c.DiscountPercent,
		Active:          c.Active,
		ValidFrom:       c.ValidFrom,
		ValidUntil:      c.ValidUntil,
		CreatedAt:       c.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// Resolve returns the coupon for a currently valid code, or nil for
// anything else. Lookup misses are not errors: the caller treats nil as
// zero discount.
func (r *GormCouponRepository) Resolve(ctx context.Context, code string) (*couponDomain.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}

	now := time.Now().UTC()
	var model CouponModel
	err := r.db.WithContext(ctx).
		Where("code = ? AND active = ?", code, true).
		Where("valid_from IS NULL OR valid_from <= ?", now).
		Where("valid_until IS NULL OR valid_until >= ?", now).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &couponDomain.Coupon{
		ID:              model.ID,
		Code:            model.Code,
		DiscountPercent: model.DiscountPercent,
		Active:          model.Active,
		ValidFrom:       model.ValidFrom,
		ValidUntil:      model.ValidUntil,
		CreatedAt:       model.CreatedAt,
	}, nil
}
