package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger owns the current stock level per product and the append-only history
// of replenishment events.
type Ledger struct {
	store Store
	now   func() time.Time
}

// NewLedger creates a Ledger backed by the given store.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Restock adds added units to the product's stock and appends a history entry
// snapshotting the stock level before and after, valued at the product's
// current cost price. added must be positive.
func (l *Ledger) Restock(ctx context.Context, productID string, added int) (*HistoryEntry, error) {
	if added <= 0 {
		return nil, ErrInvalidQuantity
	}

	var entry *HistoryEntry
	err := l.store.Atomic(ctx, func(s Store) error {
		p, err := s.GetProduct(ctx, productID)
		if err != nil {
			return err
		}

		entry = &HistoryEntry{
			ID:           uuid.New().String(),
			ProductID:    p.ID,
			ProductName:  p.Name,
			LastStock:    p.Stock,
			AddedStock:   added,
			CurrentStock: p.Stock + added,
			UnitCost:     p.CostPrice,
			TotalValue:   p.CostPrice.Mul(decimal.NewFromInt(int64(added))),
			CreatedAt:    l.now(),
		}
		if err := s.AppendHistory(ctx, entry); err != nil {
			return err
		}

		return s.SetProductStock(ctx, p.ID, entry.CurrentStock)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CurrentStock returns the product's on-hand stock level.
func (l *Ledger) CurrentStock(ctx context.Context, productID string) (int, error) {
	p, err := l.store.GetProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

// HistoryByDate returns all replenishment entries recorded on the given day.
func (l *Ledger) HistoryByDate(ctx context.Context, day time.Time) ([]HistoryEntry, error) {
	return l.store.HistoryByDate(ctx, day)
}

// DailySummaries returns replenishment value totals grouped by calendar day.
func (l *Ledger) DailySummaries(ctx context.Context) ([]DaySummary, error) {
	return l.store.DailySummaries(ctx)
}

// BrandSummaries returns replenishment value totals grouped by product brand.
func (l *Ledger) BrandSummaries(ctx context.Context) ([]BrandSummary, error) {
	return l.store.BrandSummaries(ctx)
}
