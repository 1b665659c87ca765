package offer

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"bks/internal"
)

// ExportQuoteXLSX writes a quote as a spreadsheet: one row per item,
// followed by the category summary and the totals block.
func ExportQuoteXLSX(q internal.Quote, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	set := func(col, row int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Beskrivning", "Kategori", "Antal", "Enhet", "Á-pris", "Summa"}
	for i, h := range headers {
		set(i+1, 1, h)
	}

	r := 2
	for _, item := range q.Items {
		set(1, r, item.Name)
		set(2, r, string(item.Category))
		set(3, r, item.Quantity)
		set(4, r, item.Unit)
		set(5, r, item.UnitPrice.InexactFloat64())
		set(6, r, item.LineTotal.InexactFloat64())
		r++
	}

	r++
	set(1, r, "Kategori")
	set(2, r, "Summa")
	r++
	for _, ct := range q.CategorySummary {
		set(1, r, string(ct.Category))
		set(2, r, ct.Total.InexactFloat64())
		r++
	}

	r++
	set(1, r, "Offertnummer")
	set(2, r, q.ID)
	r++
	set(1, r, "Summa exkl. moms")
	set(2, r, q.Subtotal.InexactFloat64())
	r++
	set(1, r, "Summa inkl. moms")
	set(2, r, q.TotalWithTax.InexactFloat64())
	r++
	set(1, r, "Uppskattad arbetstid (dagar)")
	set(2, r, q.EstimatedDays)
	r++
	set(1, r, "Giltig till")
	set(2, r, q.ValidUntil.Format("2006-01-02"))

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
