package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers on the wire and in event payloads.
	decimal.MarshalJSONWithoutQuotes = true
}

type Category string

const (
	CategoryRanks Category = "ranks"
	CategoryKits  Category = "kits"
	CategoryKeys  Category = "keys"
	CategoryMisc  Category = "misc"
)

// Valid reports whether c is one of the known catalog categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryRanks, CategoryKits, CategoryKeys, CategoryMisc:
		return true
	}
	return false
}

// Product is a catalog entry. Price is the only monetary authority used by
// order intake.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;size:64"`
	Name        string          `json:"name" gorm:"size:128;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Category    Category        `json:"category" gorm:"size:16;not null;index"`
	Description string          `json:"description" gorm:"type:text"`
	Perks       []string        `json:"perks" gorm:"serializer:json;type:json"`
	Badge       string          `json:"badge,omitempty" gorm:"size:32"`
	Popular     bool            `json:"popular,omitempty"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}
