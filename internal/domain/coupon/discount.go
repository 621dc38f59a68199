package coupon

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Discount calculates the discount amount the coupon grants on the given
// subtotal. The result is clamped to [0, subtotal] so that applying it can
// never produce a negative payable amount, and rounded to 2 decimal places.
func Discount(c *Coupon, subtotal decimal.Decimal) (decimal.Decimal, error) {
	var amount decimal.Decimal

	switch c.Type {
	case DiscountPercent:
		amount = subtotal.Mul(c.Value).Div(hundred)
	case DiscountFixed:
		amount = c.Value
	default:
		return decimal.Zero, errors.Errorf("unsupported discount type: %q", c.Type)
	}

	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount.Round(2), nil
}
