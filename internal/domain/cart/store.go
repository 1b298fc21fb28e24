package cart

import "context"

// Store persists cart state keyed by session id. Load never reports a
// missing cart: an absent key yields a fresh empty state. Each mutation in
// the application layer is one Load/Save round trip, so concurrent requests
// from the same session resolve last-write-wins per mutation.
type Store interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, sessionID string, state *State) error
	Clear(ctx context.Context, sessionID string) error
}
