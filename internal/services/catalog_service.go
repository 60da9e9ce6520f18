package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/infra"
	"storefront/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

var productSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// lookupTimeout bounds a shared store read, which outlives the caller that
// started it.
const lookupTimeout = 5 * time.Second

// CatalogService is the price authority for checkout and the admin surface
// for managing products.
type CatalogService struct {
	reader infra.ProductReader
	store  repository.ProductRepository
	cache  infra.ProductCache
	ttl    time.Duration
	group  singleflight.Group

	// epoch counts invalidations. A read started under an older epoch must
	// not be written back to the cache.
	mu    sync.Mutex
	epoch uint64
}

// NewCatalogService serves reads and writes from the local product store.
func NewCatalogService(store repository.ProductRepository) *CatalogService {
	return &CatalogService{reader: store, store: store}
}

// NewRemoteCatalogService reads products from an external product service.
// Admin writes are refused with ErrReadOnlyCatalog.
func NewRemoteCatalogService(reader infra.ProductReader) *CatalogService {
	return &CatalogService{reader: reader}
}

func (s *CatalogService) SetCache(cache infra.ProductCache, ttl time.Duration) {
	s.cache = cache
	s.ttl = ttl
}

// GetProduct returns the catalog entry for id, or repository.ErrNotFound.
// Concurrent misses for the same id share one store read.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if s.cache != nil {
		p, err := s.cache.Get(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, infra.ErrCacheMiss) {
			slog.WarnContext(ctx, "product cache read failed", "product_id", id, "error", err)
		}
	}

	v, err, _ := s.group.Do(id, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		epoch := s.currentEpoch()
		p, err := s.reader.FindByID(fctx, id)
		if err != nil {
			return nil, err
		}
		s.cachePut(fctx, epoch, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p := *v.(*domain.Product)
	p.Perks = append([]string(nil), p.Perks...)
	return &p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	if category != "" && !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidProduct, category)
	}
	return s.reader.List(ctx, repository.ProductFilter{Category: category})
}

func (s *CatalogService) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if s.store == nil {
		return nil, ErrReadOnlyCatalog
	}
	if err := normalizeProduct(&p); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrProductExists, p.ID)
		}
		return nil, err
	}
	s.invalidate(ctx, p.ID)
	return &p, nil
}

// UpdateProduct replaces every mutable field of product id. The id itself is
// immutable.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, p domain.Product) (*domain.Product, error) {
	if s.store == nil {
		return nil, ErrReadOnlyCatalog
	}
	if p.ID != "" && p.ID != id {
		return nil, fmt.Errorf("%w: product id cannot be changed", ErrInvalidProduct)
	}
	p.ID = id
	if err := normalizeProduct(&p); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return nil, err
	}
	s.invalidate(ctx, id)
	return &p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if s.store == nil {
		return ErrReadOnlyCatalog
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// SeedCatalog upserts products, typically from the seed file at startup.
func (s *CatalogService) SeedCatalog(ctx context.Context, products []domain.Product) error {
	if s.store == nil {
		return ErrReadOnlyCatalog
	}
	for i := range products {
		p := products[i]
		if err := normalizeProduct(&p); err != nil {
			return fmt.Errorf("seed product %q: %w", p.ID, err)
		}
		if err := s.store.Upsert(ctx, &p); err != nil {
			return err
		}
		s.invalidate(ctx, p.ID)
	}
	return nil
}

// WarmupProductCache loads the whole catalog into the cache.
func (s *CatalogService) WarmupProductCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	epoch := s.currentEpoch()
	products, err := s.reader.List(ctx, repository.ProductFilter{})
	if err != nil {
		return err
	}
	for i := range products {
		s.cachePut(ctx, epoch, &products[i])
	}
	return nil
}

func (s *CatalogService) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// cachePut stores p unless a write has invalidated the catalog since the
// read that produced p began.
func (s *CatalogService) cachePut(ctx context.Context, epoch uint64, p *domain.Product) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return
	}
	if err := s.cache.Set(ctx, p, s.ttl); err != nil {
		slog.WarnContext(ctx, "product cache write failed", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) invalidate(ctx context.Context, id string) {
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()
	s.group.Forget(id)
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		slog.WarnContext(ctx, "product cache invalidation failed", "product_id", id, "error", err)
	}
}

func normalizeProduct(p *domain.Product) error {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Badge = strings.TrimSpace(p.Badge)

	switch {
	case len(p.ID) == 0 || len(p.ID) > 64 || !productSlug.MatchString(p.ID):
		return fmt.Errorf("%w: id must be a lowercase slug", ErrInvalidProduct)
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	case p.Price.Exponent() < -2 && !p.Price.Equal(p.Price.Round(2)):
		return fmt.Errorf("%w: price must have at most 2 decimal places", ErrInvalidProduct)
	case !p.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidProduct, p.Category)
	}

	p.Price = p.Price.Round(2)
	perks := make([]string, 0, len(p.Perks))
	for _, perk := range p.Perks {
		if perk = strings.TrimSpace(perk); perk != "" {
			perks = append(perks, perk)
		}
	}
	p.Perks = perks
	return nil
}

// roundMoney rounds to cents, the precision of every stored amount.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
