package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/product"
)

// Config holds the policy toggles for order processing.
type Config struct {
	// StrictCoupons rejects checkouts carrying an unknown or inactive
	// coupon code instead of silently proceeding without a discount.
	StrictCoupons bool
	// RestockOnCancel returns purchased quantities to the catalog when an
	// order is cancelled or deleted.
	RestockOnCancel bool
}

// CartItem is one (product, quantity) selection in an ephemeral cart.
type CartItem struct {
	ProductID string
	Quantity  int
}

// CheckoutRequest holds the input for converting a cart into an order.
type CheckoutRequest struct {
	CustomerID string
	Items      []CartItem
	CouponCode string
}

// CheckoutResult holds the output of a successful checkout.
type CheckoutResult struct {
	Order    *Order
	Subtotal decimal.Decimal
	Discount decimal.Decimal
}

// Service implements checkout and order lifecycle operations on top of the
// order ledger and the catalog and coupon collaborators.
type Service struct {
	products product.Repository
	coupons  coupon.Repository
	orders   Repository
	cfg      Config
}

// NewService creates an order Service with the required collaborators.
func NewService(
	products product.Repository,
	coupons coupon.Repository,
	orders Repository,
	cfg Config,
) *Service {
	return &Service{
		products: products,
		coupons:  coupons,
		orders:   orders,
		cfg:      cfg,
	}
}

// Checkout converts a non-empty cart into a committed order, exactly once.
//
// The cart is priced at the current catalog price, not any price cached at
// cart-build time. The order row, its lines, and the stock decrements commit
// atomically: on any failure, including insufficient stock detected at
// commit time, nothing is persisted.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// Merge repeated product selections; lines are keyed by product.
	var (
		ids    []string
		merged = make(map[string]int, len(req.Items))
	)
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		if _, ok := merged[item.ProductID]; !ok {
			ids = append(ids, item.ProductID)
		}
		merged[item.ProductID] += item.Quantity
	}

	// Single batch fetch for current prices.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}

	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	subtotal := decimal.Zero
	lines := make([]Line, len(ids))
	for i, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: id}
		}
		qty := merged[id]
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(qty)))
		lines[i] = Line{
			ProductID: id,
			Quantity:  qty,
			UnitPrice: p.Price,
			LineTotal: lineTotal,
		}
		subtotal = subtotal.Add(lineTotal)
	}

	discount := decimal.Zero
	var couponID *string
	if req.CouponCode != "" {
		c, err := s.coupons.FindActiveByCode(ctx, req.CouponCode)
		switch {
		case err == nil:
			discount, err = coupon.Discount(c, subtotal)
			if err != nil {
				return nil, errors.Wrap(err, "compute discount")
			}
			couponID = &c.ID
		case errors.Is(err, coupon.ErrNotFound):
			// Unknown or inactive codes behave like "no coupon" unless
			// strict validation is enabled.
			if s.cfg.StrictCoupons {
				return nil, ErrInvalidCoupon
			}
		default:
			return nil, errors.Wrap(err, "resolve coupon")
		}
	}

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	o := &Order{
		ID:         uuid.New().String(),
		CustomerID: req.CustomerID,
		CouponID:   couponID,
		Status:     StatusPending,
		Total:      total.Round(2),
		Lines:      lines,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		// Stock sufficiency and product existence are re-checked inside the
		// transaction; surface those verdicts unwrapped.
		var (
			insufficientErr *InsufficientStockError
			missingErr      *ProductNotFoundError
		)
		switch {
		case errors.As(err, &insufficientErr):
			return nil, insufficientErr
		case errors.As(err, &missingErr):
			return nil, missingErr
		}
		return nil, errors.Wrap(err, "create order")
	}

	return &CheckoutResult{
		Order:    o,
		Subtotal: subtotal.Round(2),
		Discount: discount,
	}, nil
}
