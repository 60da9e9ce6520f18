package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront/internal/cart"

	"github.com/go-redis/redis/v8"
)

// CartStore keeps session carts in redis. The key expires with the session,
// taking the cart with it.
type CartStore struct {
	rdb Cmdable
	ttl time.Duration
}

func NewCartStore(rdb Cmdable, ttl time.Duration) *CartStore {
	return &CartStore{rdb: rdb, ttl: ttl}
}

func cartKey(sessionID string) string { return "cart:" + sessionID }

func (s *CartStore) Load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	b, err := s.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.New(), nil
	}
	if err != nil {
		return nil, err
	}
	var snap cart.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return cart.New(), nil
	}
	return cart.FromSnapshot(snap), nil
}

func (s *CartStore) Save(ctx context.Context, sessionID string, c *cart.Cart) error {
	data, err := json.Marshal(c.Snapshot())
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, cartKey(sessionID), data, s.ttl).Err()
}

func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, cartKey(sessionID)).Err()
}

var _ cart.Store = (*CartStore)(nil)
