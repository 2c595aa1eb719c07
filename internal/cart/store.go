package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

// redisStore is the slice of pkg/redis.Client the cart store depends on.
type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SAdd(ctx context.Context, key string, members ...any) error
	SRem(ctx context.Context, key string, members ...any) error
	SMembers(ctx context.Context, key string) ([]string, error)
	CartKey(token string) string
	CartIndexKey(productID string) string
}

// Store persists cart snapshots in Redis, one serialized record per cart
// token. It also maintains a per-product index of the tokens currently
// holding that product so stock changes can be pushed into open carts.
type Store struct {
	client redisStore
	ttl    time.Duration
}

func NewStore(client redisStore, ttl time.Duration) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &Store{client: client, ttl: ttl}, nil
}

// Load returns the cart stored under the token, or a fresh empty cart when no
// snapshot exists yet.
func (s *Store) Load(ctx context.Context, token string) (*Cart, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(token))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return New(), nil
		}
		return nil, fmt.Errorf("loading cart: %w", err)
	}

	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("decoding cart snapshot: %w", err)
	}
	if c.Items == nil {
		c.Items = []Line{}
	}
	return &c, nil
}

// Save writes the cart snapshot and reconciles the product index: the token
// is added to the index of every product now in the cart and removed from the
// index of products that just left it.
func (s *Store) Save(ctx context.Context, token string, c *Cart) error {
	previous, err := s.Load(ctx, token)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding cart snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.client.CartKey(token), string(raw), s.ttl); err != nil {
		return fmt.Errorf("saving cart: %w", err)
	}

	current := make(map[uuid.UUID]bool, len(c.Items))
	for _, line := range c.Items {
		current[line.ProductID] = true
		if err := s.client.SAdd(ctx, s.client.CartIndexKey(line.ProductID.String()), token); err != nil {
			return fmt.Errorf("indexing cart product: %w", err)
		}
	}
	for _, line := range previous.Items {
		if current[line.ProductID] {
			continue
		}
		if err := s.client.SRem(ctx, s.client.CartIndexKey(line.ProductID.String()), token); err != nil {
			return fmt.Errorf("unindexing cart product: %w", err)
		}
	}
	return nil
}

// Delete removes the cart snapshot and drops the token from every product index.
func (s *Store) Delete(ctx context.Context, token string) error {
	previous, err := s.Load(ctx, token)
	if err != nil {
		return err
	}
	for _, line := range previous.Items {
		if err := s.client.SRem(ctx, s.client.CartIndexKey(line.ProductID.String()), token); err != nil {
			return fmt.Errorf("unindexing cart product: %w", err)
		}
	}
	return s.client.Del(ctx, s.client.CartKey(token))
}

// TokensHolding lists the cart tokens that currently contain the product.
func (s *Store) TokensHolding(ctx context.Context, productID uuid.UUID) ([]string, error) {
	return s.client.SMembers(ctx, s.client.CartIndexKey(productID.String()))
}
