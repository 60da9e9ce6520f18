// Package cart implements the shopper's cart as an explicit per-session
// state object. Prices held here are advisory; intake re-prices every line.
package cart

import (
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ToastTTL is how long an add-to-cart notice stays visible.
const ToastTTL = 2500 * time.Millisecond

type Line struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

type Toast struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Cart struct {
	lines  []Line
	toasts []Toast
	now    func() time.Time
}

func New() *Cart {
	return &Cart{now: time.Now}
}

// WithClock returns a cart that reads time from now. Used by tests.
func WithClock(now func() time.Time) *Cart {
	return &Cart{now: now}
}

// Snapshot is the serialisable state of a cart, kept by a session store.
type Snapshot struct {
	Lines  []Line  `json:"lines"`
	Toasts []Toast `json:"toasts,omitempty"`
}

// FromSnapshot rebuilds a cart from stored state, dropping empty lines.
func FromSnapshot(s Snapshot) *Cart {
	c := New()
	for _, l := range s.Lines {
		if l.Quantity > 0 {
			c.lines = append(c.lines, l)
		}
	}
	c.toasts = append(c.toasts, s.Toasts...)
	return c
}

func (c *Cart) Snapshot() Snapshot {
	return Snapshot{Lines: c.Lines(), Toasts: c.Toasts()}
}

// Add increments the line for p or appends a new line with quantity 1, and
// raises a toast naming the product.
func (c *Cart) Add(p domain.Product) Toast {
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity++
		c.lines[i].Product = p
	} else {
		c.lines = append(c.lines, Line{Product: p, Quantity: 1})
	}
	t := Toast{
		ID:        uuid.NewString(),
		Message:   fmt.Sprintf("%s added to cart", p.Name),
		ExpiresAt: c.now().Add(ToastTTL),
	}
	c.toasts = append(c.toasts, t)
	return t
}

// SetQuantity sets the line quantity; qty <= 0 removes the line. Unknown
// product ids are ignored.
func (c *Cart) SetQuantity(productID string, qty int) {
	if qty <= 0 {
		c.Remove(productID)
		return
	}
	if i := c.index(productID); i >= 0 {
		c.lines[i].Quantity = qty
	}
}

func (c *Cart) Remove(productID string) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Toasts returns the notices that have not expired yet and drops the rest.
func (c *Cart) Toasts() []Toast {
	now := c.now()
	live := c.toasts[:0]
	for _, t := range c.toasts {
		if now.Before(t.ExpiresAt) {
			live = append(live, t)
		}
	}
	c.toasts = live
	out := make([]Toast, len(live))
	copy(out, live)
	return out
}

func (c *Cart) DismissToast(id string) {
	for i, t := range c.toasts {
		if t.ID == id {
			c.toasts = append(c.toasts[:i], c.toasts[i+1:]...)
			return
		}
	}
}

func (c *Cart) index(productID string) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}
