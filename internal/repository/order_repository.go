package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey is returned by inserts whose primary key already
	// exists. Stores never overwrite on insert.
	ErrDuplicateKey = errors.New("duplicate key")
)

// OrderFilter narrows List. A zero Status lists every order.
type OrderFilter struct {
	Status domain.OrderStatus
}

func (f OrderFilter) Match(o *domain.Order) bool {
	return f.Status == "" || o.Status == f.Status
}

type OrderRepository interface {
	Insert(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, orderID string) (*domain.Order, error)
	// UpdateStatus moves an order from one status to another and stamps
	// updatedAt. It reports false when no order with orderID currently has
	// status from.
	UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus, at time.Time) (bool, error)
	// List returns orders newest first.
	List(ctx context.Context, f OrderFilter) ([]domain.Order, error)
}
