package quote

import (
	"github.com/shopspring/decimal"

	"bks/internal"
)

var vatFactor = decimal.NewFromFloat(1.25)

// Totals returns the subtotal and the VAT-inclusive total, both rounded to
// whole kronor. Line totals and category sums stay exact; rounding happens
// only at this aggregate boundary.
func Totals(items []internal.QuoteItem) (subtotal, totalWithTax decimal.Decimal) {
	raw := decimal.Zero
	for _, it := range items {
		raw = raw.Add(it.LineTotal)
	}
	subtotal = raw.Round(0)
	totalWithTax = subtotal.Mul(vatFactor).Round(0)
	return subtotal, totalWithTax
}

// CategorySummary groups line totals by category, ordered by first
// appearance in the item list.
func CategorySummary(items []internal.QuoteItem) []internal.CategoryTotal {
	index := map[internal.Category]int{}
	out := make([]internal.CategoryTotal, 0, len(internal.AllCategories))
	for _, it := range items {
		i, ok := index[it.Category]
		if !ok {
			i = len(out)
			index[it.Category] = i
			out = append(out, internal.CategoryTotal{Category: it.Category, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(it.LineTotal)
	}
	return out
}
