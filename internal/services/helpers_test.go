package services

import (
	"fmt"
	"sync"
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

func CreateMockProduct(id, name, price string, category domain.Category) *domain.Product {
	return &domain.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: category,
		Perks:    []string{},
	}
}

func CreateMockOrder(id string, status domain.OrderStatus, createdAt time.Time) *domain.Order {
	return &domain.Order{
		OrderID:              id,
		MinecraftUsername:    "Steve_123",
		Edition:              domain.EditionJava,
		TransactionReference: TestTxnRef,
		Items: []domain.OrderItem{{
			ProductID: TestProductID,
			Name:      TestProductName,
			UnitPrice: decimal.RequireFromString(TestProductPrice),
			Quantity:  1,
			LineTotal: decimal.RequireFromString(TestProductPrice),
		}},
		Total:     decimal.RequireFromString(TestProductPrice),
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// seqIDs hands out ORD-<n>-TEST ids in order.
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NewOrderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("ORD-%d-TEST%d", s.n, s.n%10)
}

const (
	TestProductID    = "rank-knight"
	TestProductName  = "Knight Rank"
	TestProductPrice = "9.99"
	TestTxnRef       = "412345678901"
)
