package services

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownProduct    = errors.New("unknown product")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidOrderQuery = errors.New("invalid order query")
	ErrOrderIDCollision  = errors.New("could not allocate a unique order id")

	ErrInvalidProduct  = errors.New("invalid product")
	ErrProductExists   = errors.New("product already exists")
	ErrProductNotFound = errors.New("product not found")
	ErrReadOnlyCatalog = errors.New("catalog is read-only")
)

// UnknownProductError reports a checkout line whose product is no longer in
// the catalog. The client should refresh its catalog view.
type UnknownProductError struct {
	ProductID string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("Product not found: %s", e.ProductID)
}

func (e *UnknownProductError) Unwrap() error { return ErrUnknownProduct }
