// Package inventory models bookable rooms and their per-night rate ledger.
package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/indie-cactus/service-reservation/internal/domain"
)

// Occupancy classifies how a room is sold.
type Occupancy string

const (
	// OccupancyShared sells individual beds in a shared space (dorms, tents).
	OccupancyShared Occupancy = "shared"
	// OccupancyExclusive sells the whole unit (private rooms, apartments).
	OccupancyExclusive Occupancy = "exclusive"
)

// Room is a bookable unit owned by a property. The booking flow reads rooms,
// inventory management writes them.
type Room struct {
	ID                uuid.UUID
	PropertyID        uuid.UUID
	Name              string
	Occupancy         Occupancy
	MaxGuests         int
	WeekdayPriceCents int64
	WeekendPriceCents int64
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewRoom creates a room with its listed base prices.
func NewRoom(propertyID uuid.UUID, name string, occupancy Occupancy, maxGuests int, weekdayPriceCents, weekendPriceCents int64) (*Room, error) {
	if name == "" {
		return nil, domain.NewValidationError("room name is required")
	}
	if occupancy != OccupancyShared && occupancy != OccupancyExclusive {
		return nil, domain.NewValidationError("occupancy must be shared or exclusive")
	}
	if maxGuests < 1 || maxGuests > 20 {
		return nil, domain.NewValidationError("max guests must be between 1 and 20")
	}
	if weekdayPriceCents < 1 || weekendPriceCents < 1 {
		return nil, domain.NewValidationError("base prices must be positive")
	}

	now := time.Now().UTC()
	return &Room{
		ID:                uuid.New(),
		PropertyID:        propertyID,
		Name:              name,
		Occupancy:         occupancy,
		MaxGuests:         maxGuests,
		WeekdayPriceCents: weekdayPriceCents,
		WeekendPriceCents: weekendPriceCents,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// BasePriceCents returns the listed price for a given night, used when a
// cart add arrives without a stay range to quote against.
func (r *Room) BasePriceCents(night time.Time) int64 {
	switch night.Weekday() {
	case time.Friday, time.Saturday:
		return r.WeekendPriceCents
	default:
		return r.WeekdayPriceCents
	}
}
