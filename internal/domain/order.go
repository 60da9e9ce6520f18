package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending  OrderStatus = "pending"
	StatusSuccess  OrderStatus = "success"
	StatusRejected OrderStatus = "rejected"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no review transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusRejected
}

type Edition string

const (
	EditionJava    Edition = "java"
	EditionBedrock Edition = "bedrock"
)

func (e Edition) Valid() bool {
	return e == EditionJava || e == EditionBedrock
}

// OrderItem snapshots the catalog name and price at intake time.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type Order struct {
	OrderID              string          `json:"orderId" gorm:"primaryKey;size:40"`
	MinecraftUsername    string          `json:"minecraftUsername" gorm:"size:17;not null"`
	Edition              Edition         `json:"edition" gorm:"size:8;not null"`
	TransactionReference string          `json:"transactionReference" gorm:"size:12;not null;index"`
	Items                []OrderItem     `json:"items" gorm:"serializer:json;type:json"`
	Total                decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Status               OrderStatus     `json:"status" gorm:"type:enum('pending','success','rejected');default:'pending';index"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}
