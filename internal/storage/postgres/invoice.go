package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/openshelf/inventory-ledger/internal/domain/invoice"
	"github.com/openshelf/inventory-ledger/internal/domain/product"
	"github.com/openshelf/inventory-ledger/internal/domain/shop"
)

const invoiceColumns = `id, shop_id, number, delivered, discount_type, subtotal, discount_percent, discount_amount, final_total, created_at`

const (
	openInvoiceSQL = `SELECT ` + invoiceColumns + ` FROM invoices
		WHERE shop_id = $1 AND NOT delivered
		ORDER BY created_at DESC, number DESC LIMIT 1`

	lastNumberSQL = `SELECT number FROM invoices WHERE number LIKE $1 ORDER BY number DESC LIMIT 1`

	getInvoiceSQL = `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	insertInvoiceSQL = `INSERT INTO invoices (id, shop_id, number, delivered, discount_type, subtotal, discount_percent, discount_amount, final_total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	updateInvoiceSQL = `UPDATE invoices SET
		delivered = $2, discount_type = $3, subtotal = $4, discount_percent = $5,
		discount_amount = $6, final_total = $7
		WHERE id = $1`

	deleteInvoiceSQL = `DELETE FROM invoices WHERE id = $1`
)

const lineColumns = `l.id, l.invoice_id, l.product_id, p.name, p.brand, p.cost_price,
	l.quantity, l.total_price, l.discount_amount, l.final_price, l.created_at`

const (
	linesForInvoiceSQL = `SELECT ` + lineColumns + ` FROM invoice_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.invoice_id = $1 ORDER BY l.created_at, l.id`

	getLineSQL = `SELECT ` + lineColumns + ` FROM invoice_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.id = $1`

	lineByProductSQL = `SELECT ` + lineColumns + ` FROM invoice_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.invoice_id = $1 AND l.product_id = $2`

	insertLineSQL = `INSERT INTO invoice_lines (id, invoice_id, product_id, quantity, total_price, discount_amount, final_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	updateLineSQL = `UPDATE invoice_lines SET
		product_id = $2, quantity = $3, total_price = $4, discount_amount = $5, final_price = $6
		WHERE id = $1`

	deleteLineSQL = `DELETE FROM invoice_lines WHERE id = $1`

	deleteLinesSQL = `DELETE FROM invoice_lines WHERE invoice_id = $1`
)

var _ invoice.Store = (*InvoiceStore)(nil)

// InvoiceStore implements invoice.Store backed by PostgreSQL. Atomic hands
// out a transaction-scoped copy running under serializable isolation, so the
// read-modify-write cycles on product stock and on the day's highest invoice
// number cannot interleave across concurrent operations.
type InvoiceStore struct {
	db   DB
	pool *pgxpool.Pool // nil when the store is transaction-scoped
}

// NewInvoiceStore returns an InvoiceStore that uses the given pool.
func NewInvoiceStore(pool *pgxpool.Pool) *InvoiceStore {
	return &InvoiceStore{db: pool, pool: pool}
}

// Atomic runs fn against a transaction-scoped store. Nested calls reuse the
// enclosing transaction.
func (s *InvoiceStore) Atomic(ctx context.Context, fn func(invoice.Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	return inTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&InvoiceStore{db: tx})
	})
}

func (s *InvoiceStore) GetShop(ctx context.Context, id string) (*shop.Shop, error) {
	return getShop(ctx, s.db, id)
}

func (s *InvoiceStore) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	return getProduct(ctx, s.db, id)
}

func (s *InvoiceStore) SetProductStock(ctx context.Context, id string, stockLevel int) error {
	return setProductStock(ctx, s.db, id, stockLevel)
}

// OpenInvoiceForShop returns the shop's most recently created non-delivered
// invoice, or invoice.ErrNotFound.
func (s *InvoiceStore) OpenInvoiceForShop(ctx context.Context, shopID string) (*invoice.Invoice, error) {
	rows, err := s.db.Query(ctx, openInvoiceSQL, shopID)
	if err != nil {
		return nil, fmt.Errorf("getting open invoice for shop %q: %w", shopID, err)
	}

	inv, err := pgx.CollectExactlyOneRow(rows, scanInvoice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}
		return nil, fmt.Errorf("getting open invoice for shop %q: %w", shopID, err)
	}
	return &inv, nil
}

// LastNumber returns the highest invoice number carrying the day prefix, or
// "" when the day has no invoices. Numbers are zero-padded, so the
// lexicographic maximum is the numeric maximum.
func (s *InvoiceStore) LastNumber(ctx context.Context, dayPrefix string) (string, error) {
	var number string
	err := s.db.QueryRow(ctx, lastNumberSQL, dayPrefix+"%").Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("getting last invoice number: %w", err)
	}
	return number, nil
}

func (s *InvoiceStore) GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error) {
	rows, err := s.db.Query(ctx, getInvoiceSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting invoice %q: %w", id, err)
	}

	inv, err := pgx.CollectExactlyOneRow(rows, scanInvoice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}
		return nil, fmt.Errorf("getting invoice %q: %w", id, err)
	}
	return &inv, nil
}

func (s *InvoiceStore) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	_, err := s.db.Exec(ctx, insertInvoiceSQL,
		inv.ID, inv.ShopID, inv.Number, inv.Delivered, inv.Selector,
		inv.Subtotal, inv.DiscountPercent, inv.DiscountAmount, inv.FinalTotal,
		inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating invoice %q: %w", inv.Number, err)
	}
	return nil
}

func (s *InvoiceStore) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	tag, err := s.db.Exec(ctx, updateInvoiceSQL,
		inv.ID, inv.Delivered, inv.Selector,
		inv.Subtotal, inv.DiscountPercent, inv.DiscountAmount, inv.FinalTotal,
	)
	if err != nil {
		return fmt.Errorf("updating invoice %q: %w", inv.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return invoice.ErrNotFound
	}
	return nil
}

func (s *InvoiceStore) DeleteInvoice(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, deleteInvoiceSQL, id)
	if err != nil {
		return fmt.Errorf("deleting invoice %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return invoice.ErrNotFound
	}
	return nil
}

// ListInvoices returns invoices matching the filter, most recent first.
func (s *InvoiceStore) ListInvoices(ctx context.Context, f invoice.ListFilter) ([]invoice.Invoice, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ShopID != "" {
		where = append(where, "shop_id = "+arg(f.ShopID))
	}
	if f.DeliveredOnly {
		where = append(where, "delivered")
	}
	if f.Date != nil {
		where = append(where, "created_at::date = "+arg(*f.Date)+"::date")
	}
	if f.Brand != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM invoice_lines l JOIN products p ON p.id = l.product_id
			WHERE l.invoice_id = invoices.id AND p.brand ILIKE '%' || `+arg(f.Brand)+` || '%')`)
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, number DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	return pgx.CollectRows(rows, scanInvoice)
}

func (s *InvoiceStore) Lines(ctx context.Context, invoiceID string) ([]invoice.Line, error) {
	rows, err := s.db.Query(ctx, linesForInvoiceSQL, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing lines for invoice %q: %w", invoiceID, err)
	}
	return pgx.CollectRows(rows, scanLine)
}

func (s *InvoiceStore) GetLine(ctx context.Context, id string) (*invoice.Line, error) {
	rows, err := s.db.Query(ctx, getLineSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting line %q: %w", id, err)
	}

	l, err := pgx.CollectExactlyOneRow(rows, scanLine)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invoice.ErrLineNotFound
		}
		return nil, fmt.Errorf("getting line %q: %w", id, err)
	}
	return &l, nil
}

func (s *InvoiceStore) LineByProduct(ctx context.Context, invoiceID, productID string) (*invoice.Line, error) {
	rows, err := s.db.Query(ctx, lineByProductSQL, invoiceID, productID)
	if err != nil {
		return nil, fmt.Errorf("getting line for product %q: %w", productID, err)
	}

	l, err := pgx.CollectExactlyOneRow(rows, scanLine)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invoice.ErrLineNotFound
		}
		return nil, fmt.Errorf("getting line for product %q: %w", productID, err)
	}
	return &l, nil
}

func (s *InvoiceStore) CreateLine(ctx context.Context, l *invoice.Line) error {
	_, err := s.db.Exec(ctx, insertLineSQL,
		l.ID, l.InvoiceID, l.ProductID, l.Quantity,
		l.TotalPrice, l.DiscountAmount, l.FinalPrice, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating line for invoice %q: %w", l.InvoiceID, err)
	}
	return nil
}

func (s *InvoiceStore) UpdateLine(ctx context.Context, l *invoice.Line) error {
	tag, err := s.db.Exec(ctx, updateLineSQL,
		l.ID, l.ProductID, l.Quantity, l.TotalPrice, l.DiscountAmount, l.FinalPrice,
	)
	if err != nil {
		return fmt.Errorf("updating line %q: %w", l.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return invoice.ErrLineNotFound
	}
	return nil
}

func (s *InvoiceStore) DeleteLine(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, deleteLineSQL, id)
	if err != nil {
		return fmt.Errorf("deleting line %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return invoice.ErrLineNotFound
	}
	return nil
}

func (s *InvoiceStore) DeleteLines(ctx context.Context, invoiceID string) error {
	_, err := s.db.Exec(ctx, deleteLinesSQL, invoiceID)
	if err != nil {
		return fmt.Errorf("deleting lines for invoice %q: %w", invoiceID, err)
	}
	return nil
}

func scanInvoice(row pgx.CollectableRow) (invoice.Invoice, error) {
	var (
		inv     invoice.Invoice
		percent decimal.Decimal
		amount  decimal.Decimal
	)
	err := row.Scan(
		&inv.ID, &inv.ShopID, &inv.Number, &inv.Delivered, &inv.Selector,
		&inv.Subtotal, &percent, &amount, &inv.FinalTotal, &inv.CreatedAt,
	)
	inv.DiscountPercent = percent
	inv.DiscountAmount = amount
	inv.Discount = invoice.RebuildDiscount(inv.Selector, percent, amount)
	return inv, err
}

func scanLine(row pgx.CollectableRow) (invoice.Line, error) {
	var l invoice.Line
	err := row.Scan(
		&l.ID, &l.InvoiceID, &l.ProductID, &l.ProductName, &l.Brand, &l.UnitCost,
		&l.Quantity, &l.TotalPrice, &l.DiscountAmount, &l.FinalPrice, &l.CreatedAt,
	)
	return l, err
}
