package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/indie-cactus/service-reservation/internal/domain"
	"github.com/indie-cactus/service-reservation/internal/domain/inventory"
)

// CreateRoomRequest carries the fields for a new bookable room.
type CreateRoomRequest struct {
	PropertyID        uuid.UUID
	Name              string
	Occupancy         string
	MaxGuests         int
	WeekdayPriceCents int64
	WeekendPriceCents int64
}

// UpsertRateRequest publishes one night on a room's ledger.
type UpsertRateRequest struct {
	RoomID       uuid.UUID
	ForDate      time.Time
	RateCents    int64
	Availability int
}

// SeedRatesRequest publishes every night in an inclusive range with the same
// rate and availability, the bulk form hosts use to open a season.
type SeedRatesRequest struct {
	RoomID       uuid.UUID
	Start        time.Time
	End          time.Time
	RateCents    int64
	Availability int
}

// RateDTO is one published ledger night.
type RateDTO struct {
	RoomID       uuid.UUID `json:"room_id"`
	ForDate      string    `json:"for_date"`
	RateCents    int64     `json:"rate_cents"`
	Availability int       `json:"availability"`
}

// InventoryService is the write side of room and rate management.
type InventoryService struct {
	inventory inventory.Repository
	logger    *zap.Logger
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(inv inventory.Repository, logger *zap.Logger) *InventoryService {
	return &InventoryService{inventory: inv, logger: logger}
}

// CreateRoom registers a new room.
func (s *InventoryService) CreateRoom(ctx context.Context, req CreateRoomRequest) (*inventory.Room, error) {
	room, err := inventory.NewRoom(req.PropertyID, req.Name, inventory.Occupancy(req.Occupancy), req.MaxGuests, req.WeekdayPriceCents, req.WeekendPriceCents)
	if err != nil {
		return nil, err
	}
	if err := s.inventory.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	s.logger.Info("room created",
		zap.String("room_id", room.ID.String()),
		zap.String("name", room.Name))
	return room, nil
}

// GetRoom loads a room by id.
func (s *InventoryService) GetRoom(ctx context.Context, id uuid.UUID) (*inventory.Room, error) {
	return s.inventory.FindRoom(ctx, id)
}

// UpsertRate publishes or overwrites a single ledger night. The room must
// exist; the ledger never references phantom rooms.
func (s *InventoryService) UpsertRate(ctx context.Context, req UpsertRateRequest) error {
	if _, err := s.inventory.FindRoom(ctx, req.RoomID); err != nil {
		return err
	}

	entry := inventory.RateEntry{
		RoomID:       req.RoomID,
		ForDate:      inventory.Day(req.ForDate),
		RateCents:    req.RateCents,
		Availability: req.Availability,
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	return s.inventory.UpsertRate(ctx, &entry)
}

// SeedRates publishes every night in the inclusive range. Nights already on
// the ledger are overwritten; each night remains an independent row.
func (s *InventoryService) SeedRates(ctx context.Context, req SeedRatesRequest) (int, error) {
	if err := inventory.ValidateRange(req.Start, req.End); err != nil {
		return 0, err
	}
	if _, err := s.inventory.FindRoom(ctx, req.RoomID); err != nil {
		return 0, err
	}

	nights := inventory.Nights(req.Start, req.End)
	if nights > 366 {
		return 0, domain.NewValidationError("cannot seed more than one year at a time")
	}

	day := inventory.Day(req.Start)
	for i := 0; i < nights; i++ {
		entry := inventory.RateEntry{
			RoomID:       req.RoomID,
			ForDate:      day,
			RateCents:    req.RateCents,
			Availability: req.Availability,
		}
		if err := entry.Validate(); err != nil {
			return 0, err
		}
		if err := s.inventory.UpsertRate(ctx, &entry); err != nil {
			return i, err
		}
		day = day.AddDate(0, 0, 1)
	}

	s.logger.Info("rates seeded",
		zap.String("room_id", req.RoomID.String()),
		zap.Int("nights", nights))
	return nights, nil
}

// ListRates returns the published nights for a room over a range, ordered
// by date.
func (s *InventoryService) ListRates(ctx context.Context, roomID uuid.UUID, start, end time.Time) ([]RateDTO, error) {
	if err := inventory.ValidateRange(start, end); err != nil {
		return nil, err
	}
	entries, err := s.inventory.ListRates(ctx, roomID, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]RateDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, RateDTO{
			RoomID:       e.RoomID,
			ForDate:      e.ForDate.Format("2006-01-02"),
			RateCents:    e.RateCents,
			Availability: e.Availability,
		})
	}
	return out, nil
}
