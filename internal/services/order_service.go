package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/infra"
	"storefront/internal/metrics"
	"storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// maxIDAttempts bounds how many fresh ids intake tries when the store
// reports an id collision.
const maxIDAttempts = 3

const defaultNotifyTimeout = 5 * time.Second

// ProductLookup resolves catalog entries by id.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

var _ ProductLookup = (*CatalogService)(nil)

type PlaceOrderRequest struct {
	MinecraftUsername    string
	Edition              domain.Edition
	TransactionReference string
	Items                []checkout.Line
}

// OrderService is the intake side of the order lifecycle.
type OrderService struct {
	catalog       ProductLookup
	repo          repository.OrderRepository
	publisher     infra.PublisherInterface
	ids           IDGenerator
	metrics       *metrics.Orders
	now           func() time.Time
	notifyTimeout time.Duration
	inflight      sync.WaitGroup
}

func NewOrderService(c ProductLookup, r repository.OrderRepository, pub infra.PublisherInterface) *OrderService {
	return &OrderService{
		catalog:       c,
		repo:          r,
		publisher:     pub,
		ids:           NewOrderIDGenerator(),
		now:           func() time.Time { return time.Now().UTC() },
		notifyTimeout: defaultNotifyTimeout,
	}
}

func (u *OrderService) SetMetrics(m *metrics.Orders) { u.metrics = m }

func (u *OrderService) SetNotifyTimeout(d time.Duration) {
	if d > 0 {
		u.notifyTimeout = d
	}
}

func (u *OrderService) SetIDGenerator(g IDGenerator) { u.ids = g }

// PlaceOrder validates a checkout, prices it from the catalog and persists
// it as pending. Client-side prices never reach this method; every amount is
// derived from catalog data read here. Nothing is written unless the whole
// submission is valid.
func (u *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	order, err := u.price(ctx, req)
	if err != nil {
		u.metrics.Refused(refusalReason(err))
		return nil, err
	}

	if err := u.insert(ctx, order); err != nil {
		u.metrics.Refused(refusalReason(err))
		slog.ErrorContext(ctx, "order persistence failed", "error", err)
		return nil, err
	}
	u.metrics.Placed()
	slog.InfoContext(ctx, "order placed",
		"order_id", order.OrderID,
		"edition", order.Edition,
		"items", len(order.Items),
		"total", order.Total.StringFixed(2),
	)

	u.publishOrderCreatedEvent(order)
	return order, nil
}

func (u *OrderService) price(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	username, err := checkout.Prepare(checkout.Submission{
		MinecraftUsername:    req.MinecraftUsername,
		Edition:              req.Edition,
		TransactionReference: req.TransactionReference,
		Lines:                req.Items,
	})
	if err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	total := decimal.Zero
	for _, line := range req.Items {
		p, err := u.catalog.GetProduct(ctx, line.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &UnknownProductError{ProductID: line.ProductID}
		}
		if err != nil {
			return nil, fmt.Errorf("look up product %s: %w", line.ProductID, err)
		}
		if err := checkout.ValidateQuantity(line.ProductID, line.Quantity); err != nil {
			return nil, err
		}

		lineTotal := roundMoney(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  line.Quantity,
			LineTotal: lineTotal,
		})
		total = total.Add(lineTotal)
	}

	now := u.now()
	return &domain.Order{
		MinecraftUsername:    username,
		Edition:              req.Edition,
		TransactionReference: req.TransactionReference,
		Items:                items,
		Total:                roundMoney(total),
		Status:               domain.StatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// insert assigns a fresh id and writes the order. A duplicate id is never
// overwritten: the store refuses it and a new id is drawn.
func (u *OrderService) insert(ctx context.Context, order *domain.Order) error {
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		order.OrderID = u.ids.NewOrderID()
		err := u.repo.Insert(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return err
		}
		slog.WarnContext(ctx, "order id collision", "order_id", order.OrderID, "attempt", attempt)
	}
	order.OrderID = ""
	return ErrOrderIDCollision
}

// publishOrderCreatedEvent runs after the order is committed. Its outcome is
// logged and never reaches the caller.
func (u *OrderService) publishOrderCreatedEvent(order *domain.Order) {
	if u.publisher == nil {
		return
	}
	evt := domain.NewOrderCreatedEvent(order)

	u.inflight.Add(1)
	go func() {
		defer u.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				u.metrics.NotifyFailed()
				slog.Error("order notification panicked", "order_id", evt.OrderID, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), u.notifyTimeout)
		defer cancel()
		if err := u.publisher.Publish(ctx, domain.OrderCreatedPattern, evt); err != nil {
			u.metrics.NotifyFailed()
			slog.Warn("order notification failed", "order_id", evt.OrderID, "error", err)
			return
		}
		slog.Debug("order notification sent", "order_id", evt.OrderID)
	}()
}

// Wait blocks until in-flight notifications finish or ctx is done.
// Called on shutdown.
func (u *OrderService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		u.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func refusalReason(err error) string {
	switch {
	case errors.Is(err, checkout.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUnknownProduct):
		return "unknown_product"
	default:
		return "internal"
	}
}
