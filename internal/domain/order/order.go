package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/coupon"
)

// Status enumerates the order lifecycle states. The set is closed: unknown
// values are rejected on input, but no transition table is enforced —
// administrators may move an order to any state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// ErrInvalidStatus is returned when a status string is outside the enum.
var ErrInvalidStatus = errors.New("invalid order status")

// ParseStatus validates a status string against the closed enum.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), nil
	}
	return "", errors.Wrapf(ErrInvalidStatus, "%q", s)
}

// Sentinel errors shared across order operations.
var (
	// ErrEmptyCart is returned when a checkout is attempted with no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotFound is returned when a referenced order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrNotOwner is returned when a customer tries to cancel an order
	// they do not own.
	ErrNotOwner = errors.New("order does not belong to customer")
	// ErrInvalidCoupon is returned in strict-coupon mode when a supplied
	// code does not resolve to an active coupon.
	ErrInvalidCoupon = errors.New("invalid coupon code")
)

// InvalidQuantityError indicates a cart item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// ProductNotFoundError indicates a cart references a product that does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError indicates a cart line requested more units than the
// product has in stock at commit time. Nothing is persisted when it occurs.
type InsufficientStockError struct {
	ProductID string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

// Order represents a persisted customer order with its lines.
type Order struct {
	ID         string
	CustomerID string
	// CouponID is nil when no coupon was applied. "No coupon" is a valid
	// permanent state, not a transient one.
	CouponID  *string
	Status    Status
	Total     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
	Lines     []Line
}

// Line is a single order line. UnitPrice is captured at checkout time and
// stays immutable regardless of later catalog price changes; LineTotal is
// always derived as quantity times unit price.
type Line struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// ListItem is the read model for order listings.
type ListItem struct {
	ID         string
	CustomerID string
	Status     Status
	Total      decimal.Decimal
	CreatedAt  time.Time
}

// Summary is the denormalized read model for a single order: lines joined
// with product names plus the applied coupon, when it still resolves.
type Summary struct {
	ID         string
	CustomerID string
	Status     Status
	Total      decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
	// Coupon is nil when the order used no coupon or the coupon has since
	// been deleted. A dangling coupon reference is not an error.
	Coupon *CouponInfo
	Lines  []SummaryLine
}

// CouponInfo is the coupon slice of an order summary.
type CouponInfo struct {
	Code  string
	Type  coupon.DiscountType
	Value decimal.Decimal
}

// SummaryLine is a line joined with the product name for display.
type SummaryLine struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// Repository is the order ledger: durable storage for orders and lines.
// It carries no business rules beyond referential shape.
type Repository interface {
	// Create persists the order, its lines, and the matching stock
	// decrements as one atomic unit. If any line's quantity exceeds the
	// product's stock at commit time it returns InsufficientStockError
	// and nothing is persisted.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	// GetLines returns the order's lines in insertion order.
	GetLines(ctx context.Context, orderID string) ([]Line, error)
	GetSummary(ctx context.Context, orderID string) (*Summary, error)
	// ListForCustomer returns the customer's orders, newest first.
	ListForCustomer(ctx context.Context, customerID string) ([]ListItem, error)
	ListAll(ctx context.Context) ([]ListItem, error)
	// Delete removes the order and all its lines as a single unit.
	// When restock is true the purchased quantities are returned to the
	// catalog within the same transaction.
	Delete(ctx context.Context, id string, restock bool) error
	SetStatus(ctx context.Context, id string, status Status) error
}
