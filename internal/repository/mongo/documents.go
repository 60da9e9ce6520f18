package mongo

import (
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProductsCollection = "products"
	OrdersCollection   = "orders"
)

type productDoc struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Price       primitive.Decimal128 `bson:"price"`
	Category    string               `bson:"category"`
	Description string               `bson:"description"`
	Perks       []string             `bson:"perks"`
	Badge       string               `bson:"badge,omitempty"`
	Popular     bool                 `bson:"popular,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

type orderItemDoc struct {
	ProductID string               `bson:"productId"`
	Name      string               `bson:"name"`
	UnitPrice primitive.Decimal128 `bson:"unitPrice"`
	Quantity  int                  `bson:"quantity"`
	LineTotal primitive.Decimal128 `bson:"lineTotal"`
}

// orderDoc keys orders by their generated id so the _id index is the
// collision guard.
type orderDoc struct {
	ID                   string               `bson:"_id"`
	MinecraftUsername    string               `bson:"minecraftUsername"`
	Edition              string               `bson:"edition"`
	TransactionReference string               `bson:"transactionReference"`
	Items                []orderItemDoc       `bson:"items"`
	Total                primitive.Decimal128 `bson:"total"`
	Status               string               `bson:"status"`
	CreatedAt            time.Time            `bson:"createdAt"`
	UpdatedAt            time.Time            `bson:"updatedAt"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode decimal %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode decimal %s: %w", v, err)
	}
	return d, nil
}

func newProductDoc(p *domain.Product) (productDoc, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return productDoc{}, err
	}
	return productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Price:       price,
		Category:    string(p.Category),
		Description: p.Description,
		Perks:       p.Perks,
		Badge:       p.Badge,
		Popular:     p.Popular,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func (d productDoc) toDomain() (domain.Product, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Price:       price,
		Category:    domain.Category(d.Category),
		Description: d.Description,
		Perks:       d.Perks,
		Badge:       d.Badge,
		Popular:     d.Popular,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func newOrderDoc(o *domain.Order) (orderDoc, error) {
	total, err := toDecimal128(o.Total)
	if err != nil {
		return orderDoc{}, err
	}
	items := make([]orderItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		unit, err := toDecimal128(it.UnitPrice)
		if err != nil {
			return orderDoc{}, err
		}
		line, err := toDecimal128(it.LineTotal)
		if err != nil {
			return orderDoc{}, err
		}
		items = append(items, orderItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: unit,
			Quantity:  it.Quantity,
			LineTotal: line,
		})
	}
	return orderDoc{
		ID:                   o.OrderID,
		MinecraftUsername:    o.MinecraftUsername,
		Edition:              string(o.Edition),
		TransactionReference: o.TransactionReference,
		Items:                items,
		Total:                total,
		Status:               string(o.Status),
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}, nil
}

func (d orderDoc) toDomain() (domain.Order, error) {
	total, err := fromDecimal128(d.Total)
	if err != nil {
		return domain.Order{}, err
	}
	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, it := range d.Items {
		unit, err := fromDecimal128(it.UnitPrice)
		if err != nil {
			return domain.Order{}, err
		}
		line, err := fromDecimal128(it.LineTotal)
		if err != nil {
			return domain.Order{}, err
		}
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: unit,
			Quantity:  it.Quantity,
			LineTotal: line,
		})
	}
	return domain.Order{
		OrderID:              d.ID,
		MinecraftUsername:    d.MinecraftUsername,
		Edition:              domain.Edition(d.Edition),
		TransactionReference: d.TransactionReference,
		Items:                items,
		Total:                total,
		Status:               domain.OrderStatus(d.Status),
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}, nil
}

func orderFilter(status domain.OrderStatus) bson.M {
	if status == "" {
		return bson.M{}
	}
	return bson.M{"status": string(status)}
}

func productFilter(category domain.Category) bson.M {
	if category == "" {
		return bson.M{}
	}
	return bson.M{"category": string(category)}
}
