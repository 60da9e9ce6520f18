package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/repository"
)

// ReviewService moves pending orders to success or rejected once an
// operator has checked the transaction reference against the bank.
type ReviewService struct {
	repo    repository.OrderRepository
	metrics *metrics.Orders
	now     func() time.Time
}

func NewReviewService(r repository.OrderRepository) *ReviewService {
	return &ReviewService{
		repo: r,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *ReviewService) SetMetrics(m *metrics.Orders) { s.metrics = m }

// Approve marks a pending order as success. Approving an order that is
// already success is a no-op.
func (s *ReviewService) Approve(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.transition(ctx, orderID, domain.StatusSuccess)
}

// Reject marks a pending order as rejected. Rejecting an order that is
// already rejected is a no-op.
func (s *ReviewService) Reject(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.transition(ctx, orderID, domain.StatusRejected)
}

func (s *ReviewService) transition(ctx context.Context, orderID string, to domain.OrderStatus) (*domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("%w: orderId is required", ErrInvalidOrderQuery)
	}

	applied, err := s.repo.UpdateStatus(ctx, orderID, domain.StatusPending, to, s.now())
	if err != nil {
		return nil, err
	}

	o, err := s.repo.FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if applied {
		s.metrics.Reviewed(string(to))
		slog.InfoContext(ctx, "order reviewed", "order_id", orderID, "status", to)
		return o, nil
	}
	if o.Status == to {
		return o, nil
	}
	return nil, fmt.Errorf("%w: order %s is already %s", ErrInvalidTransition, orderID, o.Status)
}

func (s *ReviewService) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// List returns orders newest first, optionally restricted to one status.
func (s *ReviewService) List(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidOrderQuery, status)
	}
	return s.repo.List(ctx, repository.OrderFilter{Status: status})
}

type StatusCounts struct {
	All      int `json:"all"`
	Pending  int `json:"pending"`
	Success  int `json:"success"`
	Rejected int `json:"rejected"`
}

// CountByStatus derives the dashboard counters from a listing.
func CountByStatus(orders []domain.Order) StatusCounts {
	c := StatusCounts{All: len(orders)}
	for i := range orders {
		switch orders[i].Status {
		case domain.StatusPending:
			c.Pending++
		case domain.StatusSuccess:
			c.Success++
		case domain.StatusRejected:
			c.Rejected++
		}
	}
	return c
}

// Overview lists orders matching status together with counts over all
// orders. Both come from one read.
func (s *ReviewService) Overview(ctx context.Context, status domain.OrderStatus) ([]domain.Order, StatusCounts, error) {
	if status != "" && !status.Valid() {
		return nil, StatusCounts{}, fmt.Errorf("%w: unknown status %q", ErrInvalidOrderQuery, status)
	}
	all, err := s.repo.List(ctx, repository.OrderFilter{})
	if err != nil {
		return nil, StatusCounts{}, err
	}
	f := repository.OrderFilter{Status: status}
	matched := make([]domain.Order, 0, len(all))
	for i := range all {
		if f.Match(&all[i]) {
			matched = append(matched, all[i])
		}
	}
	return matched, CountByStatus(all), nil
}
