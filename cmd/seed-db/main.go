// Command seed-db loads the product catalog and a set of demo coupons into
// the database. Products come from a JSON file (or the embedded default
// catalog); existing rows are upserted so the command is safe to re-run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/db"
	"github.com/xenking/storefront/internal/repository"
)

type productJSON struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Active        bool            `json:"active"`
}

type couponSeed struct {
	code         string
	description  string
	discountType string
	value        string
}

var demoCoupons = []couponSeed{
	{code: "WELCOME10", description: "10% off your first order", discountType: "PERCENT", value: "10"},
	{code: "SAVE5", description: "$5 off", discountType: "FIXED", value: "5"},
	{code: "HALFPRICE", description: "50% off everything", discountType: "PERCENT", value: "50"},
}

const (
	upsertProductSQL = `INSERT INTO products (id, name, description, price, stock_quantity, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			stock_quantity = EXCLUDED.stock_quantity,
			active = EXCLUDED.active`

	upsertCouponSQL = `INSERT INTO coupons (id, code, description, discount_type, discount_value, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (code) DO UPDATE SET
			description = EXCLUDED.description,
			discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value,
			active = TRUE`
)

func main() {
	var (
		databaseURL  string
		productsFile string
		withCoupons  bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "", "path to products JSON file (default: embedded catalog)")
	flag.BoolVar(&withCoupons, "with-coupons", true, "seed demo coupons")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, withCoupons); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string, withCoupons bool) error {
	raw := db.SeedProducts
	if productsFile != "" {
		var err error
		raw, err = os.ReadFile(productsFile)
		if err != nil {
			return errors.Wrap(err, "read products file")
		}
	}

	var products []productJSON
	if err := json.Unmarshal(raw, &products); err != nil {
		return errors.Wrap(err, "parse products")
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, products); err != nil {
		return errors.Wrap(err, "seed products")
	}
	slog.Info("products seeded", slog.Int("count", len(products)))

	if withCoupons {
		if err := seedCoupons(ctx, pool); err != nil {
			return errors.Wrap(err, "seed coupons")
		}
		slog.Info("coupons seeded", slog.Int("count", len(demoCoupons)))
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, products []productJSON) error {
	for _, p := range products {
		_, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Description, p.Price, p.StockQuantity, p.Active,
		)
		if err != nil {
			return errors.Wrapf(err, "product %s", p.ID)
		}
	}
	return nil
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool) error {
	for _, c := range demoCoupons {
		value, err := decimal.NewFromString(c.value)
		if err != nil {
			return errors.Wrapf(err, "coupon %s", c.code)
		}
		_, err = pool.Exec(ctx, upsertCouponSQL,
			uuid.New().String(), c.code, c.description, c.discountType, value,
		)
		if err != nil {
			return errors.Wrapf(err, "coupon %s", c.code)
		}
	}
	return nil
}
