package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/indie-cactus/service-reservation/internal/config"
	cartDomain "github.com/indie-cactus/service-reservation/internal/domain/cart"
)

// NewRedisClient creates a redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisCartStore keeps session carts in redis as JSON values with a TTL.
// The TTL refreshes on every save, so an active session never expires
// mid-shopping.
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCartStore creates a new RedisCartStore.
func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{client: client, ttl: ttl}
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

// Load returns the cart for a session. An absent key yields a fresh empty
// cart, never an error.
func (s *RedisCartStore) Load(ctx context.Context, sessionID string) (*cartDomain.State, error) {
	val, err := s.client.Get(ctx, cartKey(sessionID)).Result()
	if err == redis.Nil {
		return cartDomain.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart from redis: %w", err)
	}

	var state cartDomain.State
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	if state.Lines == nil {
		state.Lines = make(map[string]cartDomain.Line)
	}
	return &state, nil
}

// Save writes the cart back and refreshes the session TTL.
func (s *RedisCartStore) Save(ctx context.Context, sessionID string, state *cartDomain.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart to redis: %w", err)
	}
	return nil
}

// Clear deletes the session's cart. Deleting an absent cart is fine.
func (s *RedisCartStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart in redis: %w", err)
	}
	return nil
}

// Ping checks the redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}
