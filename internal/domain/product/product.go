package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// InsufficientStockError indicates a stock decrement would drive a product's
// stock quantity below zero.
type InsufficientStockError struct {
	ProductID string
}

func (e *InsufficientStockError) Error() string {
	return "insufficient stock for product " + e.ProductID
}

// Product represents a catalog item available for purchase.
type Product struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	Active        bool
}

// Repository defines catalog access and atomic stock mutation.
//
// DecrementStock and RestoreStock must each be atomic per call: two
// concurrent decrements racing for the last units may not both succeed.
type Repository interface {
	ListActive(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	DecrementStock(ctx context.Context, id string, qty int) error
	RestoreStock(ctx context.Context, id string, qty int) error
}
