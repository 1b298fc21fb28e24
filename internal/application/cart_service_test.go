package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/indie-cactus/service-reservation/internal/domain"
	"github.com/indie-cactus/service-reservation/internal/domain/cart"
	"github.com/indie-cactus/service-reservation/internal/domain/coupon"
	"github.com/indie-cactus/service-reservation/internal/domain/inventory"
	"github.com/indie-cactus/service-reservation/internal/repository"
)

type cartFixture struct {
	svc *CartService
	inv *memInventory
}

func newCartFixture(t *testing.T, policy cart.CapacityPolicy, coupons map[string]*coupon.Coupon) *cartFixture {
	t.Helper()
	inv := newMemInventory()
	pricing := NewPricingService(inv, zap.NewNop())
	store := repository.NewMemoryCartStore()
	svc := NewCartService(store, inv, pricing, &stubResolver{coupons: coupons}, policy, zap.NewNop())
	return &cartFixture{svc: svc, inv: inv}
}

func (f *cartFixture) addRoom(t *testing.T, name string, weekdayCents int64) uuid.UUID {
	t.Helper()
	room, err := inventory.NewRoom(uuid.New(), name, inventory.OccupancyShared, 4, weekdayCents, weekdayCents)
	require.NoError(t, err)
	require.NoError(t, f.inv.SaveRoom(context.Background(), room))
	return room.ID
}

func TestCartService_AddCapturesQuotedPrice(t *testing.T) {
	f := newCartFixture(t, nil, nil)
	roomID := f.addRoom(t, "Dorm A", 3000)

	seedNight(t, f.inv, roomID, "2026-09-10", 5000, 4)
	seedNight(t, f.inv, roomID, "2026-09-11", 7000, 4)

	start, end := day("2026-09-10"), day("2026-09-11")
	dto, err := f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{
		RoomID: roomID, Quantity: 2, Start: &start, End: &end,
	})
	require.NoError(t, err)

	require.Len(t, dto.Items, 1)
	assert.Equal(t, int64(12000), dto.Items[0].UnitPriceCents)
	assert.Equal(t, 2, dto.Items[0].Quantity)
	assert.Equal(t, "Dorm A", dto.Items[0].RoomName)
	assert.Equal(t, int64(24000), dto.TotalCents)
}

func TestCartService_RepeatAddKeepsCapturedPrice(t *testing.T) {
	f := newCartFixture(t, nil, nil)
	roomID := f.addRoom(t, "Dorm A", 3000)

	seedNight(t, f.inv, roomID, "2026-09-10", 5000, 4)

	start, end := day("2026-09-10"), day("2026-09-10")
	_, err := f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{
		RoomID: roomID, Quantity: 1, Start: &start, End: &end,
	})
	require.NoError(t, err)

	// Rate change after capture must not move the line price.
	seedNight(t, f.inv, roomID, "2026-09-10", 9000, 4)

	dto, err := f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{
		RoomID: roomID, Quantity: 2,
	})
	require.NoError(t, err)

	require.Len(t, dto.Items, 1)
	assert.Equal(t, int64(5000), dto.Items[0].UnitPriceCents)
	assert.Equal(t, 3, dto.Items[0].Quantity)
}

func TestCartService_OverrideReplacesQuantity(t *testing.T) {
	f := newCartFixture(t, nil, nil)
	roomID := f.addRoom(t, "Dorm A", 3000)

	_, err := f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{RoomID: roomID, Quantity: 3})
	require.NoError(t, err)

	dto, err := f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{RoomID: roomID, Quantity: 1, Override: true})
	require.NoError(t, err)
	assert.Equal(t, 1, dto.Items[0].Quantity)
}

func TestCartService_AddWithoutRangeUsesBasePrice(t *testing.T) {
	f := newCartFixture(t, nil, nil)
	roomID := f.addRoom(t, "Dorm A", 3000)

	dto, err := f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{RoomID: roomID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), dto.Items[0].UnitPriceCents)
}

func TestCartService_QuantityBounds(t *testing.T) {
	f := newCartFixture(t, nil, nil)
	roomID := f.addRoom(t, "Dorm A", 3000)

	_, err := f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{RoomID: roomID, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{RoomID: roomID, Quantity: 11})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCartService_UnknownRoom(t *testing.T) {
	f := newCartFixture(t, nil, nil)

	_, err := f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{RoomID: uuid.New(), Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCartService_LedgerGapRejectsStay(t *testing.T) {
	f := newCartFixture(t, nil, nil)
	roomID := f.addRoom(t, "Dorm A", 3000)

	seedNight(t, f.inv, roomID, "2026-09-10", 5000, 4)
	// 2026-09-11 missing.

	start, end := day("2026-09-10"), day("2026-09-11")
	_, err := f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{
		RoomID: roomID, Quantity: 1, Start: &start, End: &end,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCartService_InsufficientAvailability(t *testing.T) {
	f := newCartFixture(t, nil, nil)
	roomID := f.addRoom(t, "Dorm A", 3000)

	seedNight(t, f.inv, roomID, "2026-09-10", 5000, 2)

	start, end := day("2026-09-10"), day("2026-09-10")
	_, err := f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{
		RoomID: roomID, Quantity: 3, Start: &start, End: &end,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCartService_CapacityPolicy(t *testing.T) {
	f := newCartFixture(t, cart.MaxLines(2), nil)
	roomA := f.addRoom(t, "Dorm A", 3000)
	roomB := f.addRoom(t, "Dorm B", 3000)
	roomC := f.addRoom(t, "Dorm C", 3000)

	_, err := f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{RoomID: roomA, Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{RoomID: roomB, Quantity: 1})
	require.NoError(t, err)

	_, err = f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{RoomID: roomC, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrCartCapacity)

	// Quantity changes to held lines still pass.
	dto, err := f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{RoomID: roomA, Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, dto.Items, 2)
}

func TestCartService_RemoveAbsentIsNoOp(t *testing.T) {
	f := newCartFixture(t, nil, nil)
	roomID := f.addRoom(t, "Dorm A", 3000)

	_, err := f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{RoomID: roomID, Quantity: 1})
	require.NoError(t, err)

	dto, err := f.svc.RemoveItem(context.Background(), "sess-1", uuid.New())
	require.NoError(t, err)
	assert.Len(t, dto.Items, 1)

	dto, err = f.svc.RemoveItem(context.Background(), "sess-1", roomID)
	require.NoError(t, err)
	assert.Empty(t, dto.Items)
}

func TestCartService_CouponDiscount(t *testing.T) {
	validCoupon, err := coupon.New("SUMMER20", 20, nil, nil)
	require.NoError(t, err)

	f := newCartFixture(t, nil, map[string]*coupon.Coupon{"SUMMER20": validCoupon})
	roomID := f.addRoom(t, "Dorm A", 10000)

	_, err = f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{RoomID: roomID, Quantity: 1})
	require.NoError(t, err)

	dto, err := f.svc.ApplyCoupon(context.Background(), "sess-1", "summer20")
	require.NoError(t, err)
	assert.Equal(t, 20, dto.DiscountPercent)
	assert.Equal(t, int64(2000), dto.DiscountCents)
	assert.Equal(t, int64(8000), dto.TotalAfterDiscountCents)
}

func TestCartService_UnknownCouponIsZeroDiscount(t *testing.T) {
	f := newCartFixture(t, nil, nil)
	roomID := f.addRoom(t, "Dorm A", 10000)

	_, err := f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{RoomID: roomID, Quantity: 1})
	require.NoError(t, err)

	dto, err := f.svc.ApplyCoupon(context.Background(), "sess-1", "NOPE")
	require.NoError(t, err)
	assert.Zero(t, dto.DiscountPercent)
	assert.Zero(t, dto.DiscountCents)
	assert.Equal(t, int64(10000), dto.TotalAfterDiscountCents)
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	f := newCartFixture(t, nil, nil)
	roomID := f.addRoom(t, "Dorm A", 3000)

	_, err := f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{RoomID: roomID, Quantity: 1})
	require.NoError(t, err)

	dto, err := f.svc.Get(context.Background(), "sess-2")
	require.NoError(t, err)
	assert.Empty(t, dto.Items)
}

func TestCartService_ClearIsIdempotent(t *testing.T) {
	f := newCartFixture(t, nil, nil)
	roomID := f.addRoom(t, "Dorm A", 3000)

	_, err := f.svc.AddItem(context.Background(), "sess-1", AddItemRequest{RoomID: roomID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, f.svc.Clear(context.Background(), "sess-1"))
	require.NoError(t, f.svc.Clear(context.Background(), "sess-1"))

	dto, err := f.svc.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Empty(t, dto.Items)
	assert.Empty(t, dto.CouponCode)
}
