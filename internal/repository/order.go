package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

const (
	createOrderSQL = `INSERT INTO orders (id, customer_id, coupon_id, status, total_amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	createLineSQL = `INSERT INTO order_lines (order_id, product_id, quantity, unit_price, line_total, position)
		VALUES ($1, $2, $3, $4, $5, $6)`

	getOrderByIDSQL = `SELECT id, customer_id, coupon_id, status, total_amount, created_at, updated_at
		FROM orders WHERE id = $1`

	getLinesSQL = `SELECT product_id, quantity, unit_price, line_total
		FROM order_lines WHERE order_id = $1 ORDER BY position`

	// LEFT JOINs keep the read tolerant of a coupon deleted after the
	// order was placed.
	getSummaryHeadSQL = `SELECT o.id, o.customer_id, o.status, o.total_amount, o.created_at, o.updated_at,
			c.code, c.discount_type, c.discount_value
		FROM orders o
		LEFT JOIN coupons c ON c.id = o.coupon_id
		WHERE o.id = $1`

	getSummaryLinesSQL = `SELECT l.product_id, COALESCE(p.name, ''), l.quantity, l.unit_price, l.line_total
		FROM order_lines l
		LEFT JOIN products p ON p.id = l.product_id
		WHERE l.order_id = $1 ORDER BY l.position`

	listOrdersForCustomerSQL = `SELECT id, customer_id, status, total_amount, created_at
		FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`

	listAllOrdersSQL = `SELECT id, customer_id, status, total_amount, created_at
		FROM orders ORDER BY created_at DESC`

	restockOrderLinesSQL = `UPDATE products p
		SET stock_quantity = p.stock_quantity + l.quantity
		FROM order_lines l
		WHERE l.order_id = $1 AND p.id = l.product_id`

	// Lines cascade via the order_lines FK.
	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`

	setOrderStatusSQL = `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements the order ledger backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create commits the order, its lines, and one conditional stock decrement
// per line inside a single transaction. A line whose quantity exceeds the
// product's stock at commit time aborts the whole transaction with
// order.InsufficientStockError: no order, no lines, no stock change.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning checkout tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	err = tx.QueryRow(ctx, createOrderSQL,
		o.ID, o.CustomerID, o.CouponID, string(o.Status), o.Total,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	// Decrement in product id order: concurrent checkouts naming the same
	// products then lock stock rows in the same sequence and cannot
	// deadlock each other.
	for _, line := range lockOrder(o.Lines) {
		if err := decrementStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
			var stockErr *product.InsufficientStockError
			if errors.As(err, &stockErr) {
				return &order.InsufficientStockError{ProductID: stockErr.ProductID}
			}
			if errors.Is(err, product.ErrNotFound) {
				return &order.ProductNotFoundError{ProductID: line.ProductID}
			}
			return err
		}
	}

	for i, line := range o.Lines {
		_, err = tx.Exec(ctx, createLineSQL,
			o.ID, line.ProductID, line.Quantity, line.UnitPrice, line.LineTotal, i,
		)
		if err != nil {
			return fmt.Errorf("creating line %q of order %q: %w", line.ProductID, o.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns the order row without its lines; use GetLines or
// GetSummary for line data.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// GetLines returns the order's lines in insertion order.
func (r *OrderRepository) GetLines(ctx context.Context, orderID string) ([]order.Line, error) {
	rows, err := r.pool.Query(ctx, getLinesSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("getting lines of order %q: %w", orderID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Line, error) {
		var l order.Line
		err := row.Scan(&l.ProductID, &l.Quantity, &l.UnitPrice, &l.LineTotal)
		return l, err
	})
}

// GetSummary returns the denormalized detail view: order fields, lines with
// product names, and the coupon when it still resolves.
func (r *OrderRepository) GetSummary(ctx context.Context, orderID string) (*order.Summary, error) {
	var (
		s           order.Summary
		status      string
		couponCode  *string
		couponType  *string
		couponValue *decimal.Decimal
	)
	err := r.pool.QueryRow(ctx, getSummaryHeadSQL, orderID).Scan(
		&s.ID, &s.CustomerID, &status, &s.Total, &s.CreatedAt, &s.UpdatedAt,
		&couponCode, &couponType, &couponValue,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting summary of order %q: %w", orderID, err)
	}
	s.Status = order.Status(status)

	if couponCode != nil && couponType != nil && couponValue != nil {
		s.Coupon = &order.CouponInfo{
			Code:  *couponCode,
			Type:  coupon.DiscountType(*couponType),
			Value: *couponValue,
		}
	}

	rows, err := r.pool.Query(ctx, getSummaryLinesSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("getting summary lines of order %q: %w", orderID, err)
	}
	s.Lines, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.SummaryLine, error) {
		var l order.SummaryLine
		err := row.Scan(&l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.LineTotal)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("getting summary lines of order %q: %w", orderID, err)
	}
	return &s, nil
}

// ListForCustomer returns the customer's orders, newest first.
func (r *OrderRepository) ListForCustomer(ctx context.Context, customerID string) ([]order.ListItem, error) {
	rows, err := r.pool.Query(ctx, listOrdersForCustomerSQL, customerID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of customer %q: %w", customerID, err)
	}
	return pgx.CollectRows(rows, scanListItem)
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.ListItem, error) {
	rows, err := r.pool.Query(ctx, listAllOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanListItem)
}

// Delete removes the order and, through the FK cascade, all its lines.
// With restock, purchased quantities return to the catalog in the same
// transaction so a crash cannot restock without deleting or vice versa.
func (r *OrderRepository) Delete(ctx context.Context, id string, restock bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning delete tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if restock {
		if _, err := tx.Exec(ctx, restockOrderLinesSQL, id); err != nil {
			return fmt.Errorf("restocking lines of order %q: %w", id, err)
		}
	}

	tag, err := tx.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return fmt.Errorf("deleting order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing delete of order %q: %w", id, err)
	}
	return nil
}

// SetStatus updates the status and bumps updated_at.
func (r *OrderRepository) SetStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.pool.Exec(ctx, setOrderStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("setting status of order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// lockOrder returns the lines sorted by product id, leaving the input (and
// with it the line positions) untouched.
func lockOrder(lines []order.Line) []order.Line {
	sorted := append([]order.Line(nil), lines...)
	slices.SortFunc(sorted, func(a, b order.Line) int {
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	return sorted
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := row.Scan(&o.ID, &o.CustomerID, &o.CouponID, &status, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	o.Status = order.Status(status)
	return o, err
}

func scanListItem(row pgx.CollectableRow) (order.ListItem, error) {
	var (
		it     order.ListItem
		status string
	)
	err := row.Scan(&it.ID, &it.CustomerID, &status, &it.Total, &it.CreatedAt)
	it.Status = order.Status(status)
	return it, err
}
