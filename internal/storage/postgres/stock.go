package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openshelf/inventory-ledger/internal/domain/product"
	"github.com/openshelf/inventory-ledger/internal/domain/stock"
)

const historyColumns = `h.id, h.product_id, p.name, h.last_stock, h.added_stock, h.current_stock, h.unit_cost, h.total_value, h.created_at`

const (
	insertHistorySQL = `INSERT INTO stock_history (id, product_id, last_stock, added_stock, current_stock, unit_cost, total_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	historyByDateSQL = `SELECT ` + historyColumns + ` FROM stock_history h
		JOIN products p ON p.id = h.product_id
		WHERE h.created_at::date = $1::date
		ORDER BY h.created_at, h.id`

	dailySummariesSQL = `SELECT h.created_at::date AS day, SUM(h.total_value)
		FROM stock_history h
		GROUP BY day ORDER BY day DESC`

	brandSummariesSQL = `SELECT p.brand, SUM(h.total_value)
		FROM stock_history h
		JOIN products p ON p.id = h.product_id
		GROUP BY p.brand ORDER BY p.brand`
)

var _ stock.Store = (*StockStore)(nil)

// StockStore implements stock.Store backed by PostgreSQL. History rows are
// insert-only; nothing in the engine updates or deletes them.
type StockStore struct {
	db   DB
	pool *pgxpool.Pool // nil when the store is transaction-scoped
}

// NewStockStore returns a StockStore that uses the given pool.
func NewStockStore(pool *pgxpool.Pool) *StockStore {
	return &StockStore{db: pool, pool: pool}
}

// Atomic runs fn against a transaction-scoped store. Nested calls reuse the
// enclosing transaction.
func (s *StockStore) Atomic(ctx context.Context, fn func(stock.Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	return inTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&StockStore{db: tx})
	})
}

func (s *StockStore) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	return getProduct(ctx, s.db, id)
}

func (s *StockStore) SetProductStock(ctx context.Context, id string, stockLevel int) error {
	return setProductStock(ctx, s.db, id, stockLevel)
}

// AppendHistory inserts one replenishment entry.
func (s *StockStore) AppendHistory(ctx context.Context, e *stock.HistoryEntry) error {
	_, err := s.db.Exec(ctx, insertHistorySQL,
		e.ID, e.ProductID, e.LastStock, e.AddedStock, e.CurrentStock,
		e.UnitCost, e.TotalValue, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("appending stock history for product %q: %w", e.ProductID, err)
	}
	return nil
}

// HistoryByDate returns all replenishment entries recorded on the given day.
func (s *StockStore) HistoryByDate(ctx context.Context, day time.Time) ([]stock.HistoryEntry, error) {
	rows, err := s.db.Query(ctx, historyByDateSQL, day)
	if err != nil {
		return nil, fmt.Errorf("listing stock history: %w", err)
	}
	return pgx.CollectRows(rows, scanHistoryEntry)
}

// DailySummaries returns replenishment value totals grouped by day.
func (s *StockStore) DailySummaries(ctx context.Context) ([]stock.DaySummary, error) {
	rows, err := s.db.Query(ctx, dailySummariesSQL)
	if err != nil {
		return nil, fmt.Errorf("summarizing stock by day: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (stock.DaySummary, error) {
		var ds stock.DaySummary
		err := row.Scan(&ds.Date, &ds.TotalValue)
		return ds, err
	})
}

// BrandSummaries returns replenishment value totals grouped by brand.
func (s *StockStore) BrandSummaries(ctx context.Context) ([]stock.BrandSummary, error) {
	rows, err := s.db.Query(ctx, brandSummariesSQL)
	if err != nil {
		return nil, fmt.Errorf("summarizing stock by brand: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (stock.BrandSummary, error) {
		var bs stock.BrandSummary
		err := row.Scan(&bs.Brand, &bs.TotalValue)
		return bs, err
	})
}

func scanHistoryEntry(row pgx.CollectableRow) (stock.HistoryEntry, error) {
	var e stock.HistoryEntry
	err := row.Scan(
		&e.ID, &e.ProductID, &e.ProductName, &e.LastStock, &e.AddedStock,
		&e.CurrentStock, &e.UnitCost, &e.TotalValue, &e.CreatedAt,
	)
	return e, err
}
