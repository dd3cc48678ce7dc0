package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/openshelf/inventory-ledger/internal/domain/product"
)

// Sentinel errors for stock mutations.
var (
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	// ErrTransientConflict is returned when a serializable transaction kept
	// conflicting with concurrent operations and ran out of retries.
	ErrTransientConflict = errors.New("transient transaction conflict")
)

// InsufficientStockError indicates a strict deduction requested more units
// than the product has on hand. The product is left unchanged.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Deduct removes qty units from the product's stock, failing with
// InsufficientStockError when fewer than qty units are available.
func Deduct(p *product.Product, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > p.Stock {
		return &InsufficientStockError{ProductID: p.ID, Requested: qty, Available: p.Stock}
	}
	p.Stock -= qty
	return nil
}

// DeductClamped removes up to qty units, silently reducing the request to the
// available stock. It returns the quantity actually deducted, which is zero
// when the product is out of stock or qty is not positive.
func DeductClamped(p *product.Product, qty int) int {
	if qty <= 0 || p.Stock <= 0 {
		return 0
	}
	if qty > p.Stock {
		qty = p.Stock
	}
	p.Stock -= qty
	return qty
}

// Restore returns qty units to the product's stock. There is no upper bound.
func Restore(p *product.Product, qty int) {
	if qty <= 0 {
		return
	}
	p.Stock += qty
}

// HistoryEntry is an immutable record of one replenishment event. It snapshots
// the stock level around the restock and values the added units at the
// product's cost price at the time of entry. Entries are append-only.
type HistoryEntry struct {
	ID           string
	ProductID    string
	ProductName  string
	LastStock    int
	AddedStock   int
	CurrentStock int
	UnitCost     decimal.Decimal
	TotalValue   decimal.Decimal
	CreatedAt    time.Time
}

// DaySummary aggregates the total replenishment value recorded on one day.
type DaySummary struct {
	Date       time.Time
	TotalValue decimal.Decimal
}

// BrandSummary aggregates the total replenishment value per product brand.
type BrandSummary struct {
	Brand      string
	TotalValue decimal.Decimal
}

// Store is the persistence surface the ledger needs. Atomic runs fn against a
// transaction-scoped Store; every write inside fn commits or rolls back as one
// unit.
type Store interface {
	Atomic(ctx context.Context, fn func(Store) error) error

	GetProduct(ctx context.Context, id string) (*product.Product, error)
	SetProductStock(ctx context.Context, id string, stock int) error

	AppendHistory(ctx context.Context, e *HistoryEntry) error
	HistoryByDate(ctx context.Context, day time.Time) ([]HistoryEntry, error)
	DailySummaries(ctx context.Context) ([]DaySummary, error)
	BrandSummaries(ctx context.Context) ([]BrandSummary, error)
}
