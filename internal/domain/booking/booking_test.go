package booking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indie-cactus/service-reservation/internal/domain"
)

func testGuest() GuestInfo {
	return GuestInfo{FirstName: "Ana", LastName: "Silva", Email: "ana@example.test"}
}

func testLines() []Line {
	roomID := uuid.New()
	return []Line{
		{RoomID: &roomID, RoomName: "Suite", UnitPriceCents: 20000, Quantity: 2},
		{RoomName: "Dorm bed", UnitPriceCents: 5000, Quantity: 1},
	}
}

func TestNew(t *testing.T) {
	b, err := New(testGuest(), testLines(), 10)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, b.ID())
	assert.False(t, b.Paid())
	assert.Empty(t, b.PaymentID())
	assert.Equal(t, 10, b.Discount())
	assert.Equal(t, int64(45000), b.TotalCents())
}

func TestNewGeneratesDistinctIDs(t *testing.T) {
	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 100; i++ {
		b, err := New(testGuest(), testLines(), 0)
		require.NoError(t, err)
		assert.False(t, seen[b.ID()])
		seen[b.ID()] = true
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(testGuest(), nil, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = New(testGuest(), testLines(), -1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = New(testGuest(), testLines(), 101)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = New(testGuest(), []Line{{RoomName: "Suite", UnitPriceCents: 100, Quantity: 0}}, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = New(testGuest(), []Line{{RoomName: "Suite", UnitPriceCents: 100, Quantity: 11}}, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = New(testGuest(), []Line{{RoomName: "Suite", UnitPriceCents: -1, Quantity: 1}}, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestConfirm(t *testing.T) {
	b, err := New(testGuest(), testLines(), 0)
	require.NoError(t, err)

	require.NoError(t, b.Confirm("pay-1"))
	assert.True(t, b.Paid())
	assert.Equal(t, "pay-1", b.PaymentID())
}

func TestConfirmReplaySameID(t *testing.T) {
	b, err := New(testGuest(), testLines(), 0)
	require.NoError(t, err)
	require.NoError(t, b.Confirm("pay-1"))

	assert.NoError(t, b.Confirm("pay-1"))
	assert.Equal(t, "pay-1", b.PaymentID())
}

func TestConfirmConflictKeepsStoredID(t *testing.T) {
	b, err := New(testGuest(), testLines(), 0)
	require.NoError(t, err)
	require.NoError(t, b.Confirm("pay-1"))

	err = b.Confirm("pay-2")
	assert.ErrorIs(t, err, domain.ErrConfirmationConflict)
	assert.Equal(t, "pay-1", b.PaymentID())
}

func TestConfirmRequiresPaymentID(t *testing.T) {
	b, err := New(testGuest(), testLines(), 0)
	require.NoError(t, err)

	err = b.Confirm("")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, b.Paid())
}

func TestReconstitute(t *testing.T) {
	original, err := New(testGuest(), testLines(), 5)
	require.NoError(t, err)
	require.NoError(t, original.Confirm("pay-1"))

	rebuilt := Reconstitute(original.ID(), original.Guest(), original.Paid(), original.PaymentID(),
		original.Discount(), original.Lines(), original.CreatedAt(), original.UpdatedAt())

	assert.Equal(t, original.ID(), rebuilt.ID())
	assert.True(t, rebuilt.Paid())
	assert.Equal(t, "pay-1", rebuilt.PaymentID())
	assert.Equal(t, original.TotalCents(), rebuilt.TotalCents())
}
