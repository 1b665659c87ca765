package catalog

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"bks/internal"
)

// Column headers accepted in the contractor's price list. The sheet is the
// source of truth for component names, so names are only trimmed, never
// rewritten.
var headerAliases = map[string][]string{
	"id":     {"id", "artikelnr", "artikel"},
	"name":   {"namn", "name", "komponent", "benämning"},
	"unit":   {"enhet", "unit"},
	"price":  {"pris", "á-pris", "a-pris", "unit_price", "enhetspris"},
	"labor":  {"arbetsdagar", "labor_max", "dagar/enhet"},
	"active": {"aktiv", "active", "kalkyl"},
}

// ImportPriceListFile reads an xlsx price list from disk. An empty sheet
// name means the first sheet.
func ImportPriceListFile(path, sheet string) ([]internal.PricingComponent, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePriceList(blob, sheet)
}

// ParsePriceList decodes pricing components from xlsx bytes. Rows without a
// name or a parsable price are skipped; a missing active column defaults to
// active.
func ParsePriceList(blob []byte, sheet string) ([]internal.PricingComponent, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("open price list: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	cols := locateColumns(rows[0])
	if cols["name"] < 0 || cols["price"] < 0 {
		return nil, fmt.Errorf("sheet %q is missing a name or price column", sheet)
	}

	out := make([]internal.PricingComponent, 0, len(rows)-1)
	for i, row := range rows[1:] {
		name := strings.TrimSpace(cell(row, cols["name"]))
		if name == "" {
			continue
		}

		price, err := parsePrice(cell(row, cols["price"]))
		if err != nil {
			continue
		}

		id := strings.TrimSpace(cell(row, cols["id"]))
		if id == "" {
			id = fmt.Sprintf("row-%d", i+2)
		}

		component := internal.PricingComponent{
			ID:        id,
			Name:      name,
			Unit:      strings.TrimSpace(cell(row, cols["unit"])),
			UnitPrice: price,
			Active:    true,
		}
		if cols["labor"] >= 0 {
			if labor, err := strconv.ParseFloat(normalizeNumber(cell(row, cols["labor"])), 64); err == nil && labor > 0 {
				component.LaborMax = &labor
			}
		}
		if cols["active"] >= 0 {
			component.Active = parseActive(cell(row, cols["active"]))
		}
		out = append(out, component)
	}

	return out, nil
}

func locateColumns(header []string) map[string]int {
	cols := map[string]int{}
	for key := range headerAliases {
		cols[key] = -1
	}
	for i, h := range header {
		normalized := strings.ToLower(strings.TrimSpace(h))
		for key, aliases := range headerAliases {
			if cols[key] >= 0 {
				continue
			}
			for _, alias := range aliases {
				if normalized == alias {
					cols[key] = i
				}
			}
		}
	}
	return cols
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parsePrice(raw string) (decimal.Decimal, error) {
	cleaned := normalizeNumber(raw)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty price")
	}
	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, err
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative price")
	}
	return price, nil
}

// normalizeNumber strips currency noise and converts decimal commas.
func normalizeNumber(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "kr", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return s
}

func parseActive(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "ja", "1", "true", "yes", "x":
		return true
	default:
		return false
	}
}
