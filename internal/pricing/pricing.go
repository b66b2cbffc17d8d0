package pricing

import (
	"github.com/shopspring/decimal"
)

var (
	// FreeShippingThreshold is the items subtotal above which shipping is free.
	FreeShippingThreshold = decimal.NewFromInt(100)
	// FlatShippingFee applies at or below the threshold.
	FlatShippingFee = decimal.NewFromInt(10)
	// TaxRate is applied to the items subtotal.
	TaxRate = decimal.RequireFromString("0.15")
)

// Line is one priced line of an order.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Breakdown holds the monetary amounts of an order, each rounded to cents.
type Breakdown struct {
	Items    decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Calculate prices a set of lines. The threshold check, tax and total use the
// exact subtotal; only the reported amounts are rounded.
func Calculate(lines []Line) Breakdown {
	items := decimal.Zero
	for _, l := range lines {
		items = items.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	shipping := FlatShippingFee
	if items.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := items.Mul(TaxRate).Round(2)
	total := items.Add(shipping).Add(tax).Round(2)

	return Breakdown{
		Items:    items.Round(2),
		Shipping: shipping,
		Tax:      tax,
		Total:    total,
	}
}

// Format renders an amount with exactly two fraction digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
