package infra

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

var ErrCacheMiss = errors.New("cache miss")

// ProductReader is a read-only catalog source: the local product store or a
// remote product service.
type ProductReader interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error)
}

type ProductCache interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	Set(ctx context.Context, p *domain.Product, ttl time.Duration) error
	Delete(ctx context.Context, ids ...string) error
}

// PublisherInterface delivers an event to the notification transport.
type PublisherInterface interface {
	Publish(ctx context.Context, pattern string, data any) error
}

var (
	_ ProductReader = (*ProductClient)(nil)
	_ ProductReader = (repository.ProductRepository)(nil)
)
