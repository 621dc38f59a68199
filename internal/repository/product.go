package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/product"
)

const (
	listActiveProductsSQL = `SELECT id, name, description, price, stock_quantity, active
		FROM products WHERE active ORDER BY name`

	getProductByIDSQL = `SELECT id, name, description, price, stock_quantity, active
		FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT id, name, description, price, stock_quantity, active
		FROM products WHERE id = ANY($1)`

	// Conditional decrement: the WHERE clause is the commit-time stock
	// sufficiency check, making check-and-decrement a single atomic
	// statement under row-level locking.
	decrementStockSQL = `UPDATE products
		SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND stock_quantity >= $2`

	restoreStockSQL = `UPDATE products
		SET stock_quantity = stock_quantity + $2
		WHERE id = $1`

	productExistsSQL = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// ListActive returns all active products ordered by name.
func (r *ProductRepository) ListActive(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listActiveProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// DecrementStock atomically subtracts qty from the product's stock. It
// returns product.ErrNotFound for unknown ids and InsufficientStockError
// when the product holds fewer than qty units.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	return decrementStock(ctx, r.pool, id, qty)
}

// RestoreStock atomically adds qty back to the product's stock.
func (r *ProductRepository) RestoreStock(ctx context.Context, id string, qty int) error {
	tag, err := r.pool.Exec(ctx, restoreStockSQL, id, qty)
	if err != nil {
		return fmt.Errorf("restoring stock for product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// decrementStock runs the conditional stock decrement against q, which may be
// the pool or an open transaction (the checkout commit path). A zero-row
// result is disambiguated into not-found versus insufficient-stock.
func decrementStock(ctx context.Context, q execer, id string, qty int) error {
	tag, err := q.Exec(ctx, decrementStockSQL, id, qty)
	if err != nil {
		return fmt.Errorf("decrementing stock for product %q: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := q.QueryRow(ctx, productExistsSQL, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking product %q: %w", id, err)
	}
	if !exists {
		return product.ErrNotFound
	}
	return &product.InsufficientStockError{ProductID: id}
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.Active)
	return p, err
}
