package invoice

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/openshelf/inventory-ledger/internal/domain/product"
	"github.com/openshelf/inventory-ledger/internal/domain/shop"
)

// Sentinel errors for invoice operations.
var (
	ErrNotFound     = errors.New("invoice not found")
	ErrLineNotFound = errors.New("invoice line not found")
	// ErrLocked is returned when a mutation is attempted on a delivered invoice.
	ErrLocked = errors.New("invoice is delivered and locked")
)

// DiscountKind enumerates the closed set of discount modes an invoice can
// carry. The selector string chosen by the caller is resolved into one of
// these exactly once, when the invoice's discount is set.
type DiscountKind string

const (
	// DiscountNone applies no discount.
	DiscountNone DiscountKind = "none"
	// DiscountPercent applies a percentage rate to every line.
	DiscountPercent DiscountKind = "percent"
	// DiscountFixed applies a fixed amount at invoice level, clamped to the
	// subtotal so the final total never goes negative.
	DiscountFixed DiscountKind = "fixed"
)

// Discount selector strings accepted from callers. Tier selectors map to the
// shop's configured rates; SelectorAmount carries a fixed currency amount set
// directly on the invoice.
const (
	SelectorKazi    = "discount_kazi"
	SelectorHarvest = "discount_harvest"
	SelectorAmount  = "amount"
)

// Discount is the resolved discount carried on an invoice.
type Discount struct {
	Kind    DiscountKind
	Percent decimal.Decimal // effective rate for DiscountPercent
	Amount  decimal.Decimal // configured amount for DiscountFixed
}

// EffectivePercent returns the rate applied to individual lines. Fixed-amount
// discounts act at invoice level only, so lines are priced undiscounted.
func (d Discount) EffectivePercent() decimal.Decimal {
	if d.Kind == DiscountPercent {
		return d.Percent
	}
	return decimal.Zero
}

// ResolveDiscount maps a discount selector to the effective discount for the
// given shop. Tier selectors resolve to the shop's configured rate; the
// amount selector carries the given fixed amount; anything else, including an
// empty selector, resolves to no discount.
func ResolveDiscount(selector string, s *shop.Shop, amount decimal.Decimal) Discount {
	switch selector {
	case SelectorKazi:
		return Discount{Kind: DiscountPercent, Percent: s.DiscountKazi}
	case SelectorHarvest:
		return Discount{Kind: DiscountPercent, Percent: s.DiscountHarvest}
	case SelectorAmount:
		return Discount{Kind: DiscountFixed, Amount: amount}
	default:
		return Discount{Kind: DiscountNone}
	}
}

// RebuildDiscount reconstructs the resolved discount variant from persisted
// invoice fields.
func RebuildDiscount(selector string, percent, amount decimal.Decimal) Discount {
	switch selector {
	case SelectorKazi, SelectorHarvest:
		return Discount{Kind: DiscountPercent, Percent: percent}
	case SelectorAmount:
		return Discount{Kind: DiscountFixed, Amount: amount}
	default:
		return Discount{Kind: DiscountNone}
	}
}

// Invoice is a shop's document of order lines. Exactly one invoice per shop
// may be open (not delivered) at a time; it is the only one accepting line
// mutations. Subtotal, DiscountAmount, DiscountPercent and FinalTotal are
// derived by Recompute and never edited independently.
type Invoice struct {
	ID        string
	ShopID    string
	Number    string
	Delivered bool

	Selector string
	Discount Discount

	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	FinalTotal      decimal.Decimal

	CreatedAt time.Time
}

// Line is one order line of an invoice. Monetary fields are derived from the
// product's cost price, the quantity, and the invoice's effective discount.
type Line struct {
	ID        string
	InvoiceID string
	ProductID string

	// Denormalized product fields populated on reads.
	ProductName string
	Brand       string
	UnitCost    decimal.Decimal

	Quantity       int
	TotalPrice     decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalPrice     decimal.Decimal

	CreatedAt time.Time
}

// ListFilter narrows invoice list reads.
type ListFilter struct {
	ShopID        string
	Date          *time.Time // match invoices created on this calendar day
	Brand         string     // match invoices containing a product of this brand
	DeliveredOnly bool
}

// Store is the persistence surface of the invoice service. Atomic runs fn
// against a transaction-scoped Store; stock mutations and the invoice/line
// writes they accompany commit or roll back as one unit, as does number
// allocation together with invoice creation.
type Store interface {
	Atomic(ctx context.Context, fn func(Store) error) error

	GetShop(ctx context.Context, id string) (*shop.Shop, error)
	GetProduct(ctx context.Context, id string) (*product.Product, error)
	SetProductStock(ctx context.Context, id string, stockLevel int) error

	// OpenInvoiceForShop returns the shop's most recently created
	// non-delivered invoice, or ErrNotFound.
	OpenInvoiceForShop(ctx context.Context, shopID string) (*Invoice, error)
	// LastNumber returns the highest invoice number with the given day
	// prefix, or "" when none exists.
	LastNumber(ctx context.Context, dayPrefix string) (string, error)

	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	CreateInvoice(ctx context.Context, inv *Invoice) error
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	DeleteInvoice(ctx context.Context, id string) error
	ListInvoices(ctx context.Context, f ListFilter) ([]Invoice, error)

	Lines(ctx context.Context, invoiceID string) ([]Line, error)
	GetLine(ctx context.Context, id string) (*Line, error)
	// LineByProduct returns the invoice's line for the product, or
	// ErrLineNotFound.
	LineByProduct(ctx context.Context, invoiceID, productID string) (*Line, error)
	CreateLine(ctx context.Context, l *Line) error
	UpdateLine(ctx context.Context, l *Line) error
	DeleteLine(ctx context.Context, id string) error
	DeleteLines(ctx context.Context, invoiceID string) error
}
