package repository

import (
	"context"
	"sync"

	cartDomain "github.com/indie-cactus/service-reservation/internal/domain/cart"
)

// MemoryCartStore is an in-process cart store for development and tests.
// Values are copied on the way in and out so callers never share state.
type MemoryCartStore struct {
	mu    sync.Mutex
	carts map[string]*cartDomain.State
}

// NewMemoryCartStore creates a new MemoryCartStore.
func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]*cartDomain.State)}
}

// Load returns a copy of the session's cart, or a fresh empty cart.
func (s *MemoryCartStore) Load(ctx context.Context, sessionID string) (*cartDomain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.carts[sessionID]
	if !ok {
		return cartDomain.NewState(), nil
	}
	return copyState(state), nil
}

// Save stores a copy of the cart.
func (s *MemoryCartStore) Save(ctx context.Context, sessionID string, state *cartDomain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[sessionID] = copyState(state)
	return nil
}

// Clear removes the session's cart.
func (s *MemoryCartStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}

func copyState(state *cartDomain.State) *cartDomain.State {
	dup := cartDomain.NewState()
	dup.CouponID = state.CouponID
	for k, v := range state.Lines {
		dup.Lines[k] = v
	}
	return dup
}
