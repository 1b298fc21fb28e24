package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/indie-cactus/service-reservation/internal/adapter"
	"github.com/indie-cactus/service-reservation/internal/domain"
	"github.com/indie-cactus/service-reservation/internal/domain/booking"
	"github.com/indie-cactus/service-reservation/internal/domain/coupon"
	"github.com/indie-cactus/service-reservation/internal/domain/inventory"
	"github.com/indie-cactus/service-reservation/internal/events"
)

// memInventory is an in-memory inventory.Repository for service tests.
type memInventory struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]inventory.Room
	rates map[string]inventory.RateEntry
}

func newMemInventory() *memInventory {
	return &memInventory{
		rooms: make(map[uuid.UUID]inventory.Room),
		rates: make(map[string]inventory.RateEntry),
	}
}

func rateKey(roomID uuid.UUID, date time.Time) string {
	return roomID.String() + "/" + inventory.Day(date).Format("2006-01-02")
}

func (m *memInventory) SaveRoom(_ context.Context, room *inventory.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.ID] = *room
	return nil
}

func (m *memInventory) FindRoom(_ context.Context, id uuid.UUID) (*inventory.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, domain.NewNotFoundError("room", id.String())
	}
	return &room, nil
}

func (m *memInventory) UpsertRate(_ context.Context, entry *inventory.RateEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := *entry
	e.ForDate = inventory.Day(e.ForDate)
	m.rates[rateKey(e.RoomID, e.ForDate)] = e
	return nil
}

func (m *memInventory) inRange(roomID uuid.UUID, start, end time.Time) []inventory.RateEntry {
	first, last := inventory.Day(start), inventory.Day(end)
	var out []inventory.RateEntry
	for _, e := range m.rates {
		if e.RoomID != roomID {
			continue
		}
		if e.ForDate.Before(first) || e.ForDate.After(last) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (m *memInventory) SumRateCents(_ context.Context, roomID uuid.UUID, start, end time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, e := range m.inRange(roomID, start, end) {
		sum += e.RateCents
	}
	return sum, nil
}

func (m *memInventory) MinAvailability(_ context.Context, roomID uuid.UUID, start, end time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.inRange(roomID, start, end)
	if len(entries) == 0 {
		return 0, nil
	}
	min := entries[0].Availability
	for _, e := range entries[1:] {
		if e.Availability < min {
			min = e.Availability
		}
	}
	return min, nil
}

func (m *memInventory) CountEntries(_ context.Context, roomID uuid.UUID, start, end time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inRange(roomID, start, end)), nil
}

func (m *memInventory) ListRates(_ context.Context, roomID uuid.UUID, start, end time.Time) ([]inventory.RateEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.inRange(roomID, start, end)
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			if entries[j].ForDate.Before(entries[i].ForDate) {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
	}
	return entries, nil
}

// bookingRec mirrors the persisted shape so the fake can reconstitute
// aggregates on read and apply the conditional paid transition on Confirm.
type bookingRec struct {
	guest     booking.GuestInfo
	paid      bool
	paymentID string
	discount  int
	lines     []booking.Line
	createdAt time.Time
	updatedAt time.Time
}

// memBookings is an in-memory booking.Repository whose Confirm is a
// mutex-guarded compare-and-set, matching the database's conditional write.
type memBookings struct {
	mu         sync.Mutex
	recs       map[uuid.UUID]*bookingRec
	failCreate bool
}

func newMemBookings() *memBookings {
	return &memBookings{recs: make(map[uuid.UUID]*bookingRec)}
}

func (m *memBookings) Create(_ context.Context, b *booking.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return fmt.Errorf("storage write failed")
	}
	m.recs[b.ID()] = &bookingRec{
		guest:     b.Guest(),
		paid:      b.Paid(),
		paymentID: b.PaymentID(),
		discount:  b.Discount(),
		lines:     append([]booking.Line(nil), b.Lines()...),
		createdAt: b.CreatedAt(),
		updatedAt: b.UpdatedAt(),
	}
	return nil
}

func (m *memBookings) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return booking.Reconstitute(id, rec.guest, rec.paid, rec.paymentID, rec.discount,
		append([]booking.Line(nil), rec.lines...), rec.createdAt, rec.updatedAt), nil
}

func (m *memBookings) Confirm(_ context.Context, id uuid.UUID, paymentID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok || rec.paid {
		return false, nil
	}
	rec.paid = true
	rec.paymentID = paymentID
	rec.updatedAt = time.Now().UTC()
	return true, nil
}

// pubRecorder captures published envelopes.
type pubRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
	fail   bool
}

type recordedEvent struct {
	topic string
	ce    events.CloudEvent
}

func (p *pubRecorder) PublishEvent(_ context.Context, topic string, ce events.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return fmt.Errorf("broker unreachable")
	}
	p.events = append(p.events, recordedEvent{topic: topic, ce: ce})
	return nil
}

func (p *pubRecorder) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.ce.Type == eventType {
			n++
		}
	}
	return n
}

// fakeProcessor scripts processor behavior: failPrefs preference calls fail
// with a transient error before calls start succeeding.
type fakeProcessor struct {
	mu        sync.Mutex
	failPrefs int
	prefCalls int
	payments  map[string]adapter.PaymentStatus
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{payments: make(map[string]adapter.PaymentStatus)}
}

func (f *fakeProcessor) CreatePreference(_ context.Context, req adapter.PreferenceRequest) (*adapter.Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefCalls++
	if f.prefCalls <= f.failPrefs {
		return nil, &domain.DomainError{Err: domain.ErrUnavailable, Message: "processor unreachable"}
	}
	return &adapter.Preference{
		ID:        "pref_" + req.ExternalReference,
		InitPoint: "https://checkout.example.test/" + req.ExternalReference,
	}, nil
}

func (f *fakeProcessor) GetPayment(_ context.Context, paymentID string) (*adapter.PaymentStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, ok := f.payments[paymentID]
	if !ok {
		return nil, domain.NewNotFoundError("payment", paymentID)
	}
	return &status, nil
}

// stubResolver resolves coupons from a fixed map, nil for anything else.
type stubResolver struct {
	coupons map[string]*coupon.Coupon
}

func (r *stubResolver) Resolve(_ context.Context, code string) (*coupon.Coupon, error) {
	if r.coupons == nil {
		return nil, nil
	}
	return r.coupons[strings.ToUpper(strings.TrimSpace(code))], nil
}
