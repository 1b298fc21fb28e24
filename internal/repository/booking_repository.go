package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indie-cactus/service-reservation/internal/domain"
	bookingDomain "github.com/indie-cactus/service-reservation/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName string    `gorm:"type:varchar(50);not null"`
	LastName  string    `gorm:"type:varchar(50);not null"`
	Email     string    `gorm:"type:varchar(254);not null"`
	Whatsapp  string    `gorm:"type:varchar(17)"`
	Residence string    `gorm:"type:varchar(2)"`
	Paid      bool      `gorm:"not null;default:false"`
	PaymentID string    `gorm:"type:varchar(250);not null;default:''"`
	Discount  int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null;index:idx_bookings_created,sort:desc"`
	UpdatedAt time.Time `gorm:"not null"`

	Lines []BookingLineModel `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
}

// TableName sets the table name.
func (BookingModel) TableName() string { return "bookings" }

// BookingLineModel is the GORM model for the booking_lines table. RoomID is
// nullable on purpose: deleting a room must not invalidate the financial
// record that references it.
type BookingLineModel struct {
	ID             int64      `gorm:"primaryKey;autoIncrement"`
	BookingID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	RoomID         *uuid.UUID `gorm:"type:uuid"`
	RoomName       string     `gorm:"type:varchar(64)"`
	UnitPriceCents int64      `gorm:"not null"`
	Quantity       int        `gorm:"not null;default:1;check:chk_booking_lines_quantity,quantity >= 1 AND quantity <= 10"`
}

// TableName sets the table name.
func (BookingLineModel) TableName() string { return "booking_lines" }

// GormBookingRepository implements booking.Repository using GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// Create persists the header and all lines in one transaction. Either the
// whole booking lands or none of it does.
func (r *GormBookingRepository) Create(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header := model
		header.Lines = nil
		if err := tx.Create(&header).Error; err != nil {
			return err
		}
		for i := range model.Lines {
			model.Lines[i].BookingID = model.ID
		}
		if err := tx.Create(&model.Lines).Error; err != nil {
			return err
		}
		return nil
	})
}

// FindByID loads a booking with its lines.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Preload("Lines").Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, err
	}
	return toBookingDomain(&model), nil
}

// Confirm performs the paid transition as a single conditional update.
// Only an unpaid row matches, so under concurrent confirmation exactly one
// caller flips the flag; everyone else sees RowsAffected == 0 and resolves
// replay vs. conflict from the row they then read.
func (r *GormBookingRepository) Confirm(ctx context.Context, id uuid.UUID, paymentID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND paid = ?", id, false).
		Updates(map[string]interface{}{
			"paid":       true,
			"payment_id": paymentID,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func toBookingModel(b *bookingDomain.Booking) BookingModel {
	lines := make([]BookingLineModel, len(b.Lines()))
	for i, l := range b.Lines() {
		lines[i] = BookingLineModel{
			BookingID:      b.ID(),
			RoomID:         l.RoomID,
			RoomName:       l.RoomName,
			UnitPriceCents: l.UnitPriceCents,
			Quantity:       l.Quantity,
		}
	}
	guest := b.Guest()
	return BookingModel{
		ID:        b.ID(),
		FirstName: guest.FirstName,
		LastName:  guest.LastName,
		Email:     guest.Email,
		Whatsapp:  guest.Whatsapp,
		Residence: guest.Residence,
		Paid:      b.Paid(),
		PaymentID: b.PaymentID(),
		Discount:  b.Discount(),
		CreatedAt: b.CreatedAt(),
		UpdatedAt: b.UpdatedAt(),
		Lines:     lines,
	}
}

func toBookingDomain(m *BookingModel) *bookingDomain.Booking {
	lines := make([]bookingDomain.Line, len(m.Lines))
	for i, l := range m.Lines {
		lines[i] = bookingDomain.Line{
			RoomID:         l.RoomID,
			RoomName:       l.RoomName,
			UnitPriceCents: l.UnitPriceCents,
			Quantity:       l.Quantity,
		}
	}
	return bookingDomain.Reconstitute(
		m.ID,
		bookingDomain.GuestInfo{
			FirstName: m.FirstName,
			LastName:  m.LastName,
			Email:     m.Email,
			Whatsapp:  m.Whatsapp,
			Residence: m.Residence,
		},
		m.Paid,
		m.PaymentID,
		m.Discount,
		lines,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
