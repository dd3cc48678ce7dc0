package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/openshelf/inventory-ledger/internal/domain/product"
)

const productColumns = `id, name, slug, description, cost_price, list_price, stock, is_available, category, brand, created_at, updated_at`

const (
	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY name`

	getProductSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	insertProductSQL = `INSERT INTO products (id, name, slug, description, cost_price, list_price, stock, is_available, category, brand)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	updateProductSQL = `UPDATE products SET
		name = $2, slug = $3, description = $4, cost_price = $5, list_price = $6,
		is_available = $7, category = $8, brand = $9, updated_at = now()
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	setProductStockSQL = `UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	db DB
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns all catalog products ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.db.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	return getProduct(ctx, r.db, id)
}

// Create persists a new catalog product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.db.Exec(ctx, insertProductSQL,
		p.ID, p.Name, p.Slug, p.Description, p.CostPrice, p.ListPrice,
		p.Stock, p.Available, p.Category, p.Brand,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Update persists catalog fields of a product. Stock is deliberately not
// updated here; only the stock ledger and the invoice service may change it.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.db.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Slug, p.Description, p.CostPrice, p.ListPrice,
		p.Available, p.Category, p.Brand,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a product from the catalog.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// getProduct is shared with the transactional stores.
func getProduct(ctx context.Context, db DB, id string) (*product.Product, error) {
	rows, err := db.Query(ctx, getProductSQL, id)
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

func setProductStock(ctx context.Context, db DB, id string, stock int) error {
	tag, err := db.Exec(ctx, setProductStockSQL, id, stock)
	if err != nil {
		return fmt.Errorf("setting stock for product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.CostPrice, &p.ListPrice,
		&p.Stock, &p.Available, &p.Category, &p.Brand, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
