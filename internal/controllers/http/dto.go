package http

import (
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

type OrderItemRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// CreateOrderRequest carries no prices: anything the client sends besides
// these fields is dropped when binding.
type CreateOrderRequest struct {
	MinecraftUsername    string             `json:"minecraftUsername"`
	Edition              string             `json:"edition"`
	TransactionReference string             `json:"transactionReference"`
	Items                []OrderItemRequest `json:"items"`
}

func (r CreateOrderRequest) lines() []checkout.Line {
	lines := make([]checkout.Line, 0, len(r.Items))
	for _, it := range r.Items {
		lines = append(lines, checkout.Line{ProductID: it.ID, Quantity: it.Quantity})
	}
	return lines
}

type CreateOrderResponse struct {
	Success           bool               `json:"success"`
	OrderID           string             `json:"orderId"`
	MinecraftUsername string             `json:"minecraftUsername"`
	Edition           domain.Edition     `json:"edition"`
	Total             decimal.Decimal    `json:"total"`
	Items             []domain.OrderItem `json:"items"`
	Message           string             `json:"message"`
}

type ReviewOrderRequest struct {
	OrderID string `json:"orderId"`
}

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type ProductRequest struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    domain.Category `json:"category"`
	Description string          `json:"description"`
	Perks       []string        `json:"perks"`
	Badge       string          `json:"badge"`
	Popular     bool            `json:"popular"`
}

func (r ProductRequest) product() domain.Product {
	return domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Price:       r.Price,
		Category:    r.Category,
		Description: r.Description,
		Perks:       r.Perks,
		Badge:       r.Badge,
		Popular:     r.Popular,
	}
}

type AddCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type CartResponse struct {
	Success   bool            `json:"success"`
	SessionID string          `json:"sessionId"`
	Items     []cart.Line     `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Toasts    []cart.Toast    `json:"toasts"`
	Toast     *cart.Toast     `json:"toast,omitempty"`
}

func newCartResponse(sessionID string, c *cart.Cart) CartResponse {
	return CartResponse{
		Success:   true,
		SessionID: sessionID,
		Items:     c.Lines(),
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal().Round(2),
		Toasts:    c.Toasts(),
	}
}
