package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront/internal/domain"
	"storefront/internal/infra"

	"github.com/go-redis/redis/v8"
)

// Cmdable is the subset of the redis client used here.
type Cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type ProductCache struct {
	rdb Cmdable
}

func NewProductCache(rdb Cmdable) *ProductCache {
	return &ProductCache{rdb: rdb}
}

func productKey(id string) string { return "product:" + id }

func (c *ProductCache) Get(ctx context.Context, id string) (*domain.Product, error) {
	b, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, infra.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var p domain.Product
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, infra.ErrCacheMiss
	}
	return &p, nil
}

func (c *ProductCache) Set(ctx context.Context, p *domain.Product, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(p.ID), data, ttl).Err()
}

func (c *ProductCache) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	return c.rdb.Del(ctx, keys...).Err()
}

var _ infra.ProductCache = (*ProductCache)(nil)
