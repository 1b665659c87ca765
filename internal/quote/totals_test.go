package quote

import (
	"testing"

	"github.com/shopspring/decimal"

	"bks/internal"
)

func item(name string, cat internal.Category, lineTotal string) internal.QuoteItem {
	total, _ := decimal.NewFromString(lineTotal)
	return internal.QuoteItem{Name: name, Category: cat, LineTotal: total}
}

func TestTotalsRoundsOnlyAtTheBoundary(t *testing.T) {
	items := []internal.QuoteItem{
		item("a", internal.CategoryPaving, "10.40"),
		item("b", internal.CategoryPaving, "10.40"),
	}

	subtotal, total := Totals(items)
	// raw 20.80 rounds to 21; VAT applies to the rounded subtotal
	if subtotal.String() != "21" {
		t.Fatalf("subtotal %s, want 21", subtotal)
	}
	if total.String() != "26" {
		t.Fatalf("total %s, want 26", total)
	}
}

func TestTotalsEmpty(t *testing.T) {
	subtotal, total := Totals(nil)
	if !subtotal.IsZero() || !total.IsZero() {
		t.Fatalf("empty quote must total zero, got %s / %s", subtotal, total)
	}
}

func TestCategorySummaryKeepsFirstSeenOrder(t *testing.T) {
	items := []internal.QuoteItem{
		item("etab", internal.CategoryMobilization, "100"),
		item("pav1", internal.CategoryPaving, "50.5"),
		item("fog", internal.CategoryJointing, "25"),
		item("pav2", internal.CategoryPaving, "49.5"),
	}

	summary := CategorySummary(items)
	if len(summary) != 3 {
		t.Fatalf("got %d categories, want 3", len(summary))
	}

	wantOrder := []internal.Category{
		internal.CategoryMobilization, internal.CategoryPaving, internal.CategoryJointing,
	}
	for i, cat := range wantOrder {
		if summary[i].Category != cat {
			t.Fatalf("category %d is %q, want %q", i, summary[i].Category, cat)
		}
	}
	// paving lines merge unrounded
	if summary[1].Total.String() != "100" {
		t.Fatalf("paving total %s, want 100", summary[1].Total)
	}
}
