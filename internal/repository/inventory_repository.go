package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/indie-cactus/service-reservation/internal/domain"
	"github.com/indie-cactus/service-reservation/internal/domain/inventory"
)

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	PropertyID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Name              string    `gorm:"type:varchar(64);not null"`
	Occupancy         string    `gorm:"type:varchar(20);not null"`
	MaxGuests         int       `gorm:"not null;default:1"`
	WeekdayPriceCents int64     `gorm:"not null"`
	WeekendPriceCents int64     `gorm:"not null"`
	Active            bool      `gorm:"not null;default:true"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (RoomModel) TableName() string { return "rooms" }

// RateModel is the GORM model for the room_rates ledger table. The composite
// primary key enforces at most one entry per (room, date).
type RateModel struct {
	RoomID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	ForDate      time.Time `gorm:"type:date;primaryKey"`
	RateCents    int64     `gorm:"not null"`
	Availability int       `gorm:"not null;default:1"`
}

// TableName sets the table name.
func (RateModel) TableName() string { return "room_rates" }

// GormInventoryRepository implements inventory.Repository using GORM.
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository.
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// SaveRoom persists a room, updating it if it already exists.
func (r *GormInventoryRepository) SaveRoom(ctx context.Context, room *inventory.Room) error {
	model := toRoomModel(room)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindRoom returns a room by id.
func (r *GormInventoryRepository) FindRoom(ctx context.Context, id uuid.UUID) (*inventory.Room, error) {
	var model RoomModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("room", id.String())
		}
		return nil, err
	}
	return toRoomDomain(&model), nil
}

// UpsertRate creates or replaces the ledger entry for (room, date).
func (r *GormInventoryRepository) UpsertRate(ctx context.Context, entry *inventory.RateEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	model := RateModel{
		RoomID:       entry.RoomID,
		ForDate:      inventory.Day(entry.ForDate),
		RateCents:    entry.RateCents,
		Availability: entry.Availability,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "for_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate_cents", "availability"}),
	}).Create(&model).Error
}

// SumRateCents sums the nightly rates over the inclusive range.
func (r *GormInventoryRepository) SumRateCents(ctx context.Context, roomID uuid.UUID, start, end time.Time) (int64, error) {
	var total int64
	err := r.rangeQuery(ctx, roomID, start, end).
		Select("COALESCE(SUM(rate_cents), 0)").
		Scan(&total).Error
	return total, err
}

// MinAvailability returns the tightest night's availability over the range.
func (r *GormInventoryRepository) MinAvailability(ctx context.Context, roomID uuid.UUID, start, end time.Time) (int, error) {
	var min int
	err := r.rangeQuery(ctx, roomID, start, end).
		Select("COALESCE(MIN(availability), 0)").
		Scan(&min).Error
	return min, err
}

// CountEntries counts the nights in the range that have a ledger entry.
func (r *GormInventoryRepository) CountEntries(ctx context.Context, roomID uuid.UUID, start, end time.Time) (int, error) {
	var count int64
	err := r.rangeQuery(ctx, roomID, start, end).Count(&count).Error
	return int(count), err
}

// ListRates returns the entries in the range ordered by date.
func (r *GormInventoryRepository) ListRates(ctx context.Context, roomID uuid.UUID, start, end time.Time) ([]inventory.RateEntry, error) {
	var models []RateModel
	if err := r.rangeQuery(ctx, roomID, start, end).
		Order("for_date").
		Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]inventory.RateEntry, len(models))
	for i, m := range models {
		entries[i] = inventory.RateEntry{
			RoomID:       m.RoomID,
			ForDate:      inventory.Day(m.ForDate),
			RateCents:    m.RateCents,
			Availability: m.Availability,
		}
	}
	return entries, nil
}

func (r *GormInventoryRepository) rangeQuery(ctx context.Context, roomID uuid.UUID, start, end time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&RateModel{}).
		Where("room_id = ? AND for_date BETWEEN ? AND ?",
			roomID, inventory.Day(start), inventory.Day(end))
}

func toRoomModel(room *inventory.Room) RoomModel {
	return RoomModel{
		ID:                room.ID,
		PropertyID:        room.PropertyID,
		Name:              room.Name,
		Occupancy:         string(room.Occupancy),
		MaxGuests:         room.MaxGuests,
		WeekdayPriceCents: room.WeekdayPriceCents,
		WeekendPriceCents: room.WeekendPriceCents,
		Active:            room.Active,
		CreatedAt:         room.CreatedAt,
		UpdatedAt:         room.UpdatedAt,
	}
}

func toRoomDomain(m *RoomModel) *inventory.Room {
	return &inventory.Room{
		ID:                m.ID,
		PropertyID:        m.PropertyID,
		Name:              m.Name,
		Occupancy:         inventory.Occupancy(m.Occupancy),
		MaxGuests:         m.MaxGuests,
		WeekdayPriceCents: m.WeekdayPriceCents,
		WeekendPriceCents: m.WeekendPriceCents,
		Active:            m.Active,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
