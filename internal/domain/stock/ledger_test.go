package stock

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/inventory-ledger/internal/domain/product"
)

// --- In-memory store ---

type memStore struct {
	products map[string]product.Product
	history  []HistoryEntry
}

func newMemStore(products ...product.Product) *memStore {
	m := &memStore{products: make(map[string]product.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *memStore) Atomic(_ context.Context, fn func(Store) error) error {
	return fn(m)
}

func (m *memStore) GetProduct(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) SetProductStock(_ context.Context, id string, stock int) error {
	p, ok := m.products[id]
	if !ok {
		return product.ErrNotFound
	}
	p.Stock = stock
	m.products[id] = p
	return nil
}

func (m *memStore) AppendHistory(_ context.Context, e *HistoryEntry) error {
	m.history = append(m.history, *e)
	return nil
}

func (m *memStore) HistoryByDate(_ context.Context, day time.Time) ([]HistoryEntry, error) {
	var out []HistoryEntry
	for _, e := range m.history {
		if e.CreatedAt.Truncate(24 * time.Hour).Equal(day.Truncate(24 * time.Hour)) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) DailySummaries(_ context.Context) ([]DaySummary, error)   { return nil, nil }
func (m *memStore) BrandSummaries(_ context.Context) ([]BrandSummary, error) { return nil, nil }

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testProduct(id string, cost string, stock int) product.Product {
	return product.Product{ID: id, Name: "Product " + id, CostPrice: d(cost), Stock: stock}
}

// --- Pure deduction helpers ---

func TestDeduct_Strict(t *testing.T) {
	p := testProduct("p1", "100", 5)

	require.NoError(t, Deduct(&p, 3))
	assert.Equal(t, 2, p.Stock)
}

func TestDeduct_InsufficientLeavesStockUnchanged(t *testing.T) {
	p := testProduct("p1", "100", 5)

	err := Deduct(&p, 20)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "p1", insufficient.ProductID)
	assert.Equal(t, 20, insufficient.Requested)
	assert.Equal(t, 5, insufficient.Available)
	assert.Equal(t, 5, p.Stock)
}

func TestDeduct_InvalidQuantity(t *testing.T) {
	p := testProduct("p1", "100", 5)

	assert.ErrorIs(t, Deduct(&p, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, Deduct(&p, -2), ErrInvalidQuantity)
	assert.Equal(t, 5, p.Stock)
}

func TestDeductClamped(t *testing.T) {
	p := testProduct("p1", "100", 5)

	got := DeductClamped(&p, 20)

	assert.Equal(t, 5, got, "deduction clamps to available stock")
	assert.Equal(t, 0, p.Stock)
}

func TestDeductClamped_ZeroStock(t *testing.T) {
	p := testProduct("p1", "100", 0)

	assert.Equal(t, 0, DeductClamped(&p, 3))
	assert.Equal(t, 0, p.Stock)
}

func TestRestoreUndoesDeduct(t *testing.T) {
	p := testProduct("p1", "100", 8)

	require.NoError(t, Deduct(&p, 6))
	Restore(&p, 6)

	assert.Equal(t, 8, p.Stock)
}

func TestRestore_NoUpperBound(t *testing.T) {
	p := testProduct("p1", "100", 8)

	Restore(&p, 1000)

	assert.Equal(t, 1008, p.Stock)
}

// --- Ledger ---

func TestRestock_AppendsHistoryAndRaisesStock(t *testing.T) {
	st := newMemStore(testProduct("p1", "100", 7))
	ledger := NewLedger(st)

	entry, err := ledger.Restock(context.Background(), "p1", 30)
	require.NoError(t, err)

	assert.Equal(t, 7, entry.LastStock)
	assert.Equal(t, 30, entry.AddedStock)
	assert.Equal(t, 37, entry.CurrentStock)
	assert.True(t, d("100").Equal(entry.UnitCost))
	assert.True(t, d("3000").Equal(entry.TotalValue))

	assert.Equal(t, 37, st.products["p1"].Stock)
	require.Len(t, st.history, 1)
}

func TestRestock_InvalidQuantity(t *testing.T) {
	st := newMemStore(testProduct("p1", "100", 7))
	ledger := NewLedger(st)

	_, err := ledger.Restock(context.Background(), "p1", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = ledger.Restock(context.Background(), "p1", -5)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	assert.Equal(t, 7, st.products["p1"].Stock)
	assert.Empty(t, st.history)
}

func TestRestock_ProductNotFound(t *testing.T) {
	ledger := NewLedger(newMemStore())

	_, err := ledger.Restock(context.Background(), "missing", 5)
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestCurrentStock(t *testing.T) {
	ledger := NewLedger(newMemStore(testProduct("p1", "100", 12)))

	n, err := ledger.CurrentStock(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}
