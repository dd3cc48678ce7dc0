package invoice

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openshelf/inventory-ledger/internal/domain/stock"
)

// ItemRequest asks for a quantity of one product to be added to an invoice.
type ItemRequest struct {
	ProductID string
	Quantity  int
}

// EditItemRequest carries the mutable fields of a line edit. Nil fields are
// left unchanged.
type EditItemRequest struct {
	Quantity  *int
	ProductID *string
}

// Service is the invoice aggregator. It owns the open->delivered lifecycle,
// keeps invoice totals equal to the sum over live lines, and pairs every line
// change with the matching stock mutation inside one atomic store operation.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates an invoice Service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// CreateOrder adds the requested items to the shop's open invoice, creating
// the invoice first when the shop has none. The discount selector is resolved
// against the shop's configured rates and persisted on the invoice; a fixed
// amount is taken from amount when the selector asks for it. Requested
// quantities are clamped to available stock and entries that clamp to zero
// are skipped.
func (s *Service) CreateOrder(ctx context.Context, shopID, selector string, amount decimal.Decimal, items []ItemRequest) (*Invoice, error) {
	var result *Invoice
	err := s.store.Atomic(ctx, func(st Store) error {
		sh, err := st.GetShop(ctx, shopID)
		if err != nil {
			return err
		}

		inv, err := s.openInvoice(ctx, st, sh.ID)
		if err != nil {
			return err
		}
		inv.Selector = selector
		inv.Discount = ResolveDiscount(selector, sh, amount)

		if err := s.addLines(ctx, st, inv, items); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddItems appends items to an existing invoice, which must still be open.
func (s *Service) AddItems(ctx context.Context, invoiceID string, items []ItemRequest) (*Invoice, error) {
	var result *Invoice
	err := s.store.Atomic(ctx, func(st Store) error {
		inv, err := st.GetInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.Delivered {
			return ErrLocked
		}
		if err := s.addLines(ctx, st, inv, items); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// openInvoice returns the shop's open invoice, or creates one with a freshly
// allocated number and zeroed totals. Number allocation happens inside the
// caller's transaction so concurrent creations cannot collide.
func (s *Service) openInvoice(ctx context.Context, st Store, shopID string) (*Invoice, error) {
	inv, err := st.OpenInvoiceForShop(ctx, shopID)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	day := s.now()
	last, err := st.LastNumber(ctx, DayPrefix(day))
	if err != nil {
		return nil, errors.Wrap(err, "last invoice number")
	}
	number, err := NextNumber(day, last)
	if err != nil {
		return nil, err
	}

	inv = &Invoice{
		ID:        uuid.New().String(),
		ShopID:    shopID,
		Number:    number,
		CreatedAt: day,
	}
	if err := st.CreateInvoice(ctx, inv); err != nil {
		return nil, errors.Wrap(err, "create invoice")
	}
	return inv, nil
}

// addLines prices and adds each requested item to the invoice, merging into
// an existing line when the product is already on it, then recomputes the
// invoice totals.
func (s *Service) addLines(ctx context.Context, st Store, inv *Invoice, items []ItemRequest) error {
	percent := inv.Discount.EffectivePercent()

	for _, item := range items {
		p, err := st.GetProduct(ctx, item.ProductID)
		if err != nil {
			return err
		}

		qty := stock.DeductClamped(p, item.Quantity)
		if qty == 0 {
			continue
		}

		total, discount, final := PriceLine(p.CostPrice, qty, percent)

		line, err := st.LineByProduct(ctx, inv.ID, p.ID)
		switch {
		case err == nil:
			line.Quantity += qty
			line.TotalPrice = line.TotalPrice.Add(total)
			line.DiscountAmount = line.DiscountAmount.Add(discount)
			line.FinalPrice = line.FinalPrice.Add(final)
			if err := st.UpdateLine(ctx, line); err != nil {
				return errors.Wrap(err, "merge line")
			}
		case errors.Is(err, ErrLineNotFound):
			line = &Line{
				ID:             uuid.New().String(),
				InvoiceID:      inv.ID,
				ProductID:      p.ID,
				Quantity:       qty,
				TotalPrice:     total,
				DiscountAmount: discount,
				FinalPrice:     final,
				CreatedAt:      s.now(),
			}
			if err := st.CreateLine(ctx, line); err != nil {
				return errors.Wrap(err, "create line")
			}
		default:
			return err
		}

		if err := st.SetProductStock(ctx, p.ID, p.Stock); err != nil {
			return errors.Wrap(err, "deduct stock")
		}
	}

	return s.recomputeAndSave(ctx, st, inv)
}

// EditItem changes a line's quantity or product while the parent invoice is
// open. A product switch first restores the old product's stock in full and
// treats the line as fresh against the new product. A quantity increase
// deducts the delta strictly, failing with InsufficientStockError when the
// product cannot cover it; a decrease restores the delta.
func (s *Service) EditItem(ctx context.Context, lineID string, req EditItemRequest) (*Invoice, error) {
	var result *Invoice
	err := s.store.Atomic(ctx, func(st Store) error {
		line, err := st.GetLine(ctx, lineID)
		if err != nil {
			return err
		}
		inv, err := st.GetInvoice(ctx, line.InvoiceID)
		if err != nil {
			return err
		}
		if inv.Delivered {
			return ErrLocked
		}

		oldQty := line.Quantity
		newQty := oldQty
		if req.Quantity != nil {
			newQty = *req.Quantity
		}
		if newQty <= 0 {
			return stock.ErrInvalidQuantity
		}

		p, err := st.GetProduct(ctx, line.ProductID)
		if err != nil {
			return err
		}

		if req.ProductID != nil && *req.ProductID != line.ProductID {
			stock.Restore(p, oldQty)
			if err := st.SetProductStock(ctx, p.ID, p.Stock); err != nil {
				return errors.Wrap(err, "restore stock")
			}
			p, err = st.GetProduct(ctx, *req.ProductID)
			if err != nil {
				return err
			}
			line.ProductID = p.ID
			oldQty = 0
		}

		delta := newQty - oldQty
		switch {
		case delta > 0:
			if err := stock.Deduct(p, delta); err != nil {
				return err
			}
		case delta < 0:
			stock.Restore(p, -delta)
		}
		if delta != 0 {
			if err := st.SetProductStock(ctx, p.ID, p.Stock); err != nil {
				return errors.Wrap(err, "adjust stock")
			}
		}

		line.Quantity = newQty
		line.TotalPrice, line.DiscountAmount, line.FinalPrice =
			PriceLine(p.CostPrice, newQty, inv.Discount.EffectivePercent())
		if err := st.UpdateLine(ctx, line); err != nil {
			return errors.Wrap(err, "update line")
		}

		if err := s.recomputeAndSave(ctx, st, inv); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveItem restores the line's stock, deletes it, and recomputes the
// invoice totals over the remaining lines. A fixed-amount discount is clamped
// to the new subtotal by the recompute.
func (s *Service) RemoveItem(ctx context.Context, lineID string) (*Invoice, error) {
	var result *Invoice
	err := s.store.Atomic(ctx, func(st Store) error {
		line, err := st.GetLine(ctx, lineID)
		if err != nil {
			return err
		}
		inv, err := st.GetInvoice(ctx, line.InvoiceID)
		if err != nil {
			return err
		}
		if inv.Delivered {
			return ErrLocked
		}

		p, err := st.GetProduct(ctx, line.ProductID)
		if err != nil {
			return err
		}
		stock.Restore(p, line.Quantity)
		if err := st.SetProductStock(ctx, p.ID, p.Stock); err != nil {
			return errors.Wrap(err, "restore stock")
		}

		if err := st.DeleteLine(ctx, line.ID); err != nil {
			return errors.Wrap(err, "delete line")
		}

		if err := s.recomputeAndSave(ctx, st, inv); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteInvoice removes an invoice and all its lines. Deleting an open
// invoice restores stock for every line. Deleting a delivered invoice is an
// administrative purge: the goods already shipped, so stock is left alone.
func (s *Service) DeleteInvoice(ctx context.Context, invoiceID string) error {
	return s.store.Atomic(ctx, func(st Store) error {
		inv, err := st.GetInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}

		if !inv.Delivered {
			lines, err := st.Lines(ctx, inv.ID)
			if err != nil {
				return err
			}
			for _, line := range lines {
				p, err := st.GetProduct(ctx, line.ProductID)
				if err != nil {
					return err
				}
				stock.Restore(p, line.Quantity)
				if err := st.SetProductStock(ctx, p.ID, p.Stock); err != nil {
					return errors.Wrap(err, "restore stock")
				}
			}
		}

		if err := st.DeleteLines(ctx, inv.ID); err != nil {
			return errors.Wrap(err, "delete lines")
		}
		return st.DeleteInvoice(ctx, inv.ID)
	})
}

// MarkDelivered transitions the invoice to its terminal delivered state.
// Calling it on an already delivered invoice is a no-op.
func (s *Service) MarkDelivered(ctx context.Context, invoiceID string) (*Invoice, error) {
	var result *Invoice
	err := s.store.Atomic(ctx, func(st Store) error {
		inv, err := st.GetInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}
		if !inv.Delivered {
			inv.Delivered = true
			if err := st.UpdateInvoice(ctx, inv); err != nil {
				return errors.Wrap(err, "mark delivered")
			}
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns an invoice with its lines.
func (s *Service) Get(ctx context.Context, invoiceID string) (*Invoice, []Line, error) {
	inv, err := s.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.store.Lines(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	return inv, lines, nil
}

// List returns invoices matching the filter, most recent first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Invoice, error) {
	return s.store.ListInvoices(ctx, f)
}

func (s *Service) recomputeAndSave(ctx context.Context, st Store, inv *Invoice) error {
	lines, err := st.Lines(ctx, inv.ID)
	if err != nil {
		return errors.Wrap(err, "load lines")
	}
	Recompute(inv, lines)
	if err := st.UpdateInvoice(ctx, inv); err != nil {
		return errors.Wrap(err, "update invoice totals")
	}
	return nil
}
