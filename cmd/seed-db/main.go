// Command seed-db loads products and shops from JSON files into the database,
// upserting by name so reruns are safe.
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

	"github.com/openshelf/inventory-ledger/internal/domain/product"
	"github.com/openshelf/inventory-ledger/internal/storage/postgres"
)

type productJSON struct {
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	ListPrice   decimal.Decimal `json:"list_price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
}

type shopJSON struct {
	Name            string          `json:"name"`
	Address         string          `json:"address"`
	Phone           string          `json:"phone"`
	DiscountKazi    decimal.Decimal `json:"discount_kazi"`
	DiscountHarvest decimal.Decimal `json:"discount_harvest"`
}

const (
	upsertProductSQL = `INSERT INTO products (id, name, slug, description, cost_price, list_price, stock, category, brand)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name) DO UPDATE SET
			slug = EXCLUDED.slug,
			description = EXCLUDED.description,
			cost_price = EXCLUDED.cost_price,
			list_price = EXCLUDED.list_price,
			category = EXCLUDED.category,
			brand = EXCLUDED.brand,
			updated_at = now()`

	upsertShopSQL = `INSERT INTO shops (id, name, address, phone, discount_kazi, discount_harvest)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			discount_kazi = EXCLUDED.discount_kazi,
			discount_harvest = EXCLUDED.discount_harvest`
)

func main() {
	var (
		databaseURL  string
		productsFile string
		shopsFile    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&shopsFile, "shops-file", "db/seed/shops.json", "path to shops JSON file")
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

	if err := run(ctx, databaseURL, productsFile, shopsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, shopsFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedShops(ctx, pool, shopsFile); err != nil {
		return errors.Wrap(err, "seed shops")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		slug := p.Slug
		if slug == "" {
			slug = product.Slugify(p.Name)
		}
		if _, err := pool.Exec(ctx, upsertProductSQL,
			uuid.New().String(), p.Name, slug, p.Description,
			p.CostPrice, p.ListPrice, p.Stock, p.Category, p.Brand,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.Name)
		}

		slog.Info("upserted product", slog.String("name", p.Name), slog.String("brand", p.Brand))
	}

	return nil
}

func seedShops(ctx context.Context, pool *pgxpool.Pool, shopsFile string) error {
	slog.Info("reading shops file", slog.String("path", shopsFile))

	data, err := os.ReadFile(shopsFile)
	if err != nil {
		return errors.Wrap(err, "read shops file")
	}

	var shops []shopJSON
	if err := json.Unmarshal(data, &shops); err != nil {
		return errors.Wrap(err, "parse shops JSON")
	}

	slog.Info("upserting shops", slog.Int("count", len(shops)))

	for _, s := range shops {
		if _, err := pool.Exec(ctx, upsertShopSQL,
			uuid.New().String(), s.Name, s.Address, s.Phone,
			s.DiscountKazi, s.DiscountHarvest,
		); err != nil {
			return errors.Wrapf(err, "upsert shop %s", s.Name)
		}

		slog.Info("upserted shop", slog.String("name", s.Name))
	}

	return nil
}
