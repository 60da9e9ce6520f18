package repository

import (
	"context"

	"storefront/internal/domain"
)

type ProductFilter struct {
	Category domain.Category
}

func (f ProductFilter) Match(p *domain.Product) bool {
	return f.Category == "" || p.Category == f.Category
}

// ProductRepository is the catalog store.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	// Upsert creates or replaces p. Used by catalog seeding.
	Upsert(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
}
