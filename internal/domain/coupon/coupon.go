package coupon

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercent applies a percentage-based discount to the subtotal.
	DiscountPercent DiscountType = "PERCENT"
	// DiscountFixed applies a flat monetary discount, capped at the subtotal.
	DiscountFixed DiscountType = "FIXED"
)

// Valid reports whether t is a known discount type.
func (t DiscountType) Valid() bool {
	return t == DiscountPercent || t == DiscountFixed
}

// ErrNotFound is returned when no active coupon matches a code.
// Whether that aborts a checkout is policy, decided by the caller.
var ErrNotFound = errors.New("coupon not found")

// Coupon represents a discount rule redeemable at checkout.
type Coupon struct {
	ID          string
	Code        string
	Description string
	Type        DiscountType
	Value       decimal.Decimal
	Active      bool
}

// Repository provides lookup and creation of coupons.
// FindActiveByCode matches codes exactly (case-sensitive) and returns
// ErrNotFound when no active coupon carries the code.
type Repository interface {
	FindActiveByCode(ctx context.Context, code string) (*Coupon, error)
	Create(ctx context.Context, c *Coupon) error
}
