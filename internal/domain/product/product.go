package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item. Stock is mutated exclusively through the
// stock ledger and the invoice service; catalog updates never touch it.
type Product struct {
	ID          string
	Name        string
	Slug        string
	Description string
	CostPrice   decimal.Decimal
	ListPrice   decimal.Decimal
	Stock       int
	Available   bool
	Category    string
	Brand       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository defines catalog operations for products.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
