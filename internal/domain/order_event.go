package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderCreatedPattern = "order.created"

// OrderCreatedEvent is the summary handed to the notification sink after an
// order has been persisted.
type OrderCreatedEvent struct {
	OrderID              string          `json:"orderId"`
	MinecraftUsername    string          `json:"minecraftUsername"`
	Edition              Edition         `json:"edition"`
	TransactionReference string          `json:"transactionReference"`
	Items                []OrderItem     `json:"items"`
	Total                decimal.Decimal `json:"total"`
	CreatedAt            time.Time       `json:"createdAt"`
}

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:              o.OrderID,
		MinecraftUsername:    o.MinecraftUsername,
		Edition:              o.Edition,
		TransactionReference: o.TransactionReference,
		Items:                o.Items,
		Total:                o.Total,
		CreatedAt:            o.CreatedAt,
	}
}
