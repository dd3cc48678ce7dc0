package invoice

import (
	"github.com/shopspring/decimal"
)

// PriceLine computes the monetary fields for one order line.
//
//	total    = unitCost * qty
//	discount = total * percent / 100, rounded half-even to 2 places
//	final    = total - discount, floored at zero
//
// Half-even (banker's) rounding keeps repeated percentage discounts from
// drifting in one direction across many lines.
func PriceLine(unitCost decimal.Decimal, qty int, percent decimal.Decimal) (total, discount, final decimal.Decimal) {
	total = unitCost.Mul(decimal.NewFromInt(int64(qty)))
	discount = total.Mul(percent).Div(decimal.NewFromInt(100)).RoundBank(2)
	final = total.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}
	return total, discount, final
}

// Recompute derives the invoice's monetary fields from the current set of
// live lines. It is idempotent and is called after every structural change
// (add, edit, remove) instead of tracking deltas, so totals can never drift
// from the lines.
//
// Subtotal is always the sum of line totals. For none and percent discounts
// the invoice discount and final total are the sums of the per-line values.
// A fixed-amount discount acts at invoice level: the configured amount is
// clamped to the subtotal and the final total is subtotal minus the clamped
// amount, so it never goes negative even when lines are removed.
func Recompute(inv *Invoice, lines []Line) {
	subtotal := decimal.Zero
	lineDiscount := decimal.Zero
	lineFinal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.TotalPrice)
		lineDiscount = lineDiscount.Add(l.DiscountAmount)
		lineFinal = lineFinal.Add(l.FinalPrice)
	}

	inv.Subtotal = subtotal

	switch inv.Discount.Kind {
	case DiscountPercent:
		inv.DiscountPercent = inv.Discount.Percent
		inv.DiscountAmount = lineDiscount
		inv.FinalTotal = lineFinal
	case DiscountFixed:
		amount := inv.Discount.Amount
		if amount.GreaterThan(subtotal) {
			amount = subtotal
		}
		inv.DiscountPercent = decimal.Zero
		inv.DiscountAmount = amount
		inv.FinalTotal = subtotal.Sub(amount)
	default:
		inv.DiscountPercent = decimal.Zero
		inv.DiscountAmount = lineDiscount
		inv.FinalTotal = lineFinal
	}
}
