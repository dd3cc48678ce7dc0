package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPriceLine_TenPercent(t *testing.T) {
	total, discount, final := PriceLine(d("100"), 3, d("10"))

	assert.True(t, d("300").Equal(total), "total = %s", total)
	assert.True(t, d("30").Equal(discount), "discount = %s", discount)
	assert.True(t, d("270").Equal(final), "final = %s", final)
}

func TestPriceLine_NoDiscount(t *testing.T) {
	total, discount, final := PriceLine(d("45"), 2, decimal.Zero)

	assert.True(t, d("90").Equal(total))
	assert.True(t, decimal.Zero.Equal(discount))
	assert.True(t, d("90").Equal(final))
}

func TestPriceLine_HalfEvenRounding(t *testing.T) {
	// 101 * 2.5% = 2.525 -> rounds half-even to 2.52.
	_, discount, final := PriceLine(d("101"), 1, d("2.5"))
	assert.True(t, d("2.52").Equal(discount), "discount = %s", discount)
	assert.True(t, d("98.48").Equal(final))

	// 103 * 2.5% = 2.575 -> rounds half-even to 2.58.
	_, discount, _ = PriceLine(d("103"), 1, d("2.5"))
	assert.True(t, d("2.58").Equal(discount), "discount = %s", discount)
}

func TestPriceLine_FinalNeverNegative(t *testing.T) {
	_, _, final := PriceLine(d("10"), 1, d("150"))
	assert.False(t, final.IsNegative())
	assert.True(t, decimal.Zero.Equal(final))
}

func TestRecompute_PercentSumsLines(t *testing.T) {
	inv := &Invoice{Discount: Discount{Kind: DiscountPercent, Percent: d("10")}}
	lines := []Line{
		{TotalPrice: d("300"), DiscountAmount: d("30"), FinalPrice: d("270")},
		{TotalPrice: d("100"), DiscountAmount: d("10"), FinalPrice: d("90")},
	}

	Recompute(inv, lines)

	assert.True(t, d("400").Equal(inv.Subtotal))
	assert.True(t, d("40").Equal(inv.DiscountAmount))
	assert.True(t, d("360").Equal(inv.FinalTotal))
	assert.True(t, d("10").Equal(inv.DiscountPercent))
}

func TestRecompute_FixedClampsToSubtotal(t *testing.T) {
	inv := &Invoice{Discount: Discount{Kind: DiscountFixed, Amount: d("500")}}
	lines := []Line{
		{TotalPrice: d("120"), FinalPrice: d("120")},
	}

	Recompute(inv, lines)

	assert.True(t, d("120").Equal(inv.Subtotal))
	assert.True(t, d("120").Equal(inv.DiscountAmount), "fixed amount clamps to subtotal")
	assert.True(t, decimal.Zero.Equal(inv.FinalTotal))
}

func TestRecompute_FixedBelowSubtotal(t *testing.T) {
	inv := &Invoice{Discount: Discount{Kind: DiscountFixed, Amount: d("50")}}
	lines := []Line{
		{TotalPrice: d("200"), FinalPrice: d("200")},
	}

	Recompute(inv, lines)

	assert.True(t, d("50").Equal(inv.DiscountAmount))
	assert.True(t, d("150").Equal(inv.FinalTotal))
}

func TestRecompute_NoLines(t *testing.T) {
	inv := &Invoice{
		Discount:       Discount{Kind: DiscountPercent, Percent: d("10")},
		Subtotal:       d("400"),
		DiscountAmount: d("40"),
		FinalTotal:     d("360"),
	}

	Recompute(inv, nil)

	assert.True(t, decimal.Zero.Equal(inv.Subtotal))
	assert.True(t, decimal.Zero.Equal(inv.DiscountAmount))
	assert.True(t, decimal.Zero.Equal(inv.FinalTotal))
}

func TestResolveDiscount(t *testing.T) {
	sh := testShop()

	kazi := ResolveDiscount(SelectorKazi, sh, decimal.Zero)
	assert.Equal(t, DiscountPercent, kazi.Kind)
	assert.True(t, sh.DiscountKazi.Equal(kazi.Percent))

	harvest := ResolveDiscount(SelectorHarvest, sh, decimal.Zero)
	assert.Equal(t, DiscountPercent, harvest.Kind)
	assert.True(t, sh.DiscountHarvest.Equal(harvest.Percent))

	fixed := ResolveDiscount(SelectorAmount, sh, d("25"))
	assert.Equal(t, DiscountFixed, fixed.Kind)
	assert.True(t, d("25").Equal(fixed.Amount))

	none := ResolveDiscount("", sh, decimal.Zero)
	assert.Equal(t, DiscountNone, none.Kind)

	unknown := ResolveDiscount("mystery", sh, decimal.Zero)
	assert.Equal(t, DiscountNone, unknown.Kind)
}
