package quote

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bks/internal"
	"bks/internal/catalog"
	"bks/internal/config"
)

// lineRequest is one logical line the decision tree asks for, before the
// catalog lookup prices it.
type lineRequest struct {
	component string
	quantity  float64
	unit      string
	category  internal.Category
}

// step is one entry of the ordered decision table.
type step struct {
	name     string
	generate func(t Tables, a internal.FormAnswers) []lineRequest
}

// Evaluation order is fixed: fixed components, curbing, preparation,
// material, grouting, cleanup. Quote item order follows it.
var steps = []step{
	{"fixed", genFixed},
	{"curb", genCurb},
	{"preparation", genPreparation},
	{"material", genMaterial},
	{"grout", genGrout},
	{"cleanup", genCleanup},
}

func genFixed(t Tables, _ internal.FormAnswers) []lineRequest {
	out := make([]lineRequest, 0, len(t.Fixed))
	for _, f := range t.Fixed {
		out = append(out, lineRequest{component: f.Component, quantity: f.Quantity, unit: f.Unit, category: f.Category})
	}
	return out
}

// genCurb only produces a line when the customer asked for curbing and both
// conditional fields arrived. Upstream validation enforces the dependency;
// a hole here skips the line rather than failing the quote.
func genCurb(t Tables, a internal.FormAnswers) []lineRequest {
	if !a.WantsCurb() || a.CurbLength == nil || a.CurbMaterial == nil {
		return nil
	}
	name, ok := t.Curb[*a.CurbMaterial]
	if !ok {
		return nil
	}
	return []lineRequest{
		{component: name, quantity: *a.CurbLength, unit: UnitLinearMeter, category: internal.CategoryPaving},
	}
}

func genPreparation(t Tables, a internal.FormAnswers) []lineRequest {
	switch a.Preparation {
	case internal.PreparationLightLeveling:
		return []lineRequest{
			{component: t.LightLeveling, quantity: a.Area, unit: UnitSquareMeter, category: internal.CategoryExcavation},
		}
	case internal.PreparationNotPrepared:
		excavation := t.TopsoilRemoval
		depth := 0.2
		if a.Usage == internal.UsageTraffic {
			excavation = t.ExcavationTraffic
			depth = 0.4
		}
		return []lineRequest{
			{component: excavation, quantity: a.Area, unit: UnitSquareMeter, category: internal.CategoryExcavation},
			{component: t.SubBasePlacement, quantity: a.Area, unit: UnitSquareMeter, category: internal.CategorySubBase},
			{component: t.SubBaseCompaction, quantity: a.Area, unit: UnitSquareMeter, category: internal.CategorySubBase},
			{component: t.WasteRemoval, quantity: wasteQuantity(a.Area, depth), unit: UnitCubicMeter, category: internal.CategoryWaste},
		}
	default:
		// already excavated and ready
		return nil
	}
}

// wasteQuantity is the excavated volume at the given depth times a 10%
// haul-away factor, floored at one load.
func wasteQuantity(area, depth float64) float64 {
	return math.Max(1, math.Round(area*depth*0.1))
}

func genMaterial(t Tables, a internal.FormAnswers) []lineRequest {
	area := a.Area
	switch a.Material {
	case internal.MaterialAsfalt:
		return []lineRequest{
			{component: t.Material[a.Material], quantity: area, unit: UnitSquareMeter, category: internal.CategoryPaving},
		}
	case internal.MaterialMarksten, internal.MaterialBetongplattor,
		internal.MaterialSmagatsten, internal.MaterialStorgatsten:
		return []lineRequest{
			{component: t.StoneDustFill, quantity: area, unit: UnitSquareMeter, category: internal.CategorySubBase},
			{component: t.Material[a.Material], quantity: area, unit: UnitSquareMeter, category: internal.CategoryPaving},
			{component: t.SurfaceCompaction, quantity: area, unit: UnitSquareMeter, category: internal.CategoryPaving},
		}
	case internal.MaterialSkiffer, internal.MaterialGranithallar:
		// slab surfaces are laid on stone dust but never machine compacted
		return []lineRequest{
			{component: t.StoneDustFill, quantity: area, unit: UnitSquareMeter, category: internal.CategorySubBase},
			{component: t.Material[a.Material], quantity: area, unit: UnitSquareMeter, category: internal.CategoryPaving},
		}
	default:
		return nil
	}
}

func genGrout(t Tables, a internal.FormAnswers) []lineRequest {
	name, ok := t.Grout[a.Grout]
	if !ok {
		return nil
	}
	return []lineRequest{
		{component: name, quantity: a.Area, unit: UnitSquareMeter, category: internal.CategoryJointing},
	}
}

func genCleanup(t Tables, _ internal.FormAnswers) []lineRequest {
	return []lineRequest{
		{component: t.Cleanup, quantity: 1, unit: UnitPiece, category: internal.CategoryWaste},
	}
}

// Calculator evaluates form answers against a catalog snapshot. It holds no
// mutable state, so one instance may serve concurrent calculations.
type Calculator struct {
	cfg      config.Config
	snapshot *catalog.Snapshot
	tables   Tables
	log      *zap.SugaredLogger
}

func NewCalculator(cfg config.Config, snapshot *catalog.Snapshot, tables Tables, log *zap.SugaredLogger) *Calculator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Calculator{cfg: cfg, snapshot: snapshot, tables: tables, log: log}
}

// LineResult is the outcome of pricing one logical line: either a priced
// item or the name of the component the catalog was missing.
type LineResult struct {
	Item    *internal.QuoteItem
	Missing string
}

func (r LineResult) Priced() bool {
	return r.Item != nil
}

// Calculate always returns a quote, even a degenerate one. Lines whose
// component is absent from the catalog are dropped with a warning; the
// quote is then smaller than the decision tree intended.
func (c *Calculator) Calculate(answers internal.FormAnswers) internal.Quote {
	q, lines := c.CalculateDetailed(answers)
	for _, line := range lines {
		if !line.Priced() {
			c.log.Warnw("pricing component missing from catalog",
				"component", line.Missing, "quote_id", q.ID)
		}
	}
	return q
}

// CalculateDetailed additionally returns the per-line results so callers
// can tell an intentionally small quote from one with unpriced lines.
func (c *Calculator) CalculateDetailed(answers internal.FormAnswers) (internal.Quote, []LineResult) {
	now := time.Now()

	results := make([]LineResult, 0, 16)
	items := make([]internal.QuoteItem, 0, 16)
	for _, st := range steps {
		for _, req := range st.generate(c.tables, answers) {
			res := c.priceLine(req)
			results = append(results, res)
			if res.Item != nil {
				items = append(items, *res.Item)
			}
		}
	}

	subtotal, totalWithTax := Totals(items)
	q := internal.Quote{
		ID:              NewQuoteID(now),
		CreatedAt:       now,
		ValidUntil:      ValidUntil(now, c.cfg.QuoteValidDays),
		Items:           items,
		CategorySummary: CategorySummary(items),
		Subtotal:        subtotal,
		TotalWithTax:    totalWithTax,
		EstimatedDays:   EstimateDays(items),
	}
	return q, results
}

func (c *Calculator) priceLine(req lineRequest) LineResult {
	component, ok := c.snapshot.ByName(req.component)
	if !ok {
		return LineResult{Missing: req.component}
	}

	unit := component.Unit
	if unit == "" {
		unit = req.unit
	}

	item := internal.QuoteItem{
		Name:      component.Name,
		Category:  req.category,
		Quantity:  req.quantity,
		Unit:      unit,
		UnitPrice: component.UnitPrice,
		LineTotal: component.UnitPrice.Mul(decimal.NewFromFloat(req.quantity)),
		LaborMax:  component.LaborMax,
	}
	return LineResult{Item: &item}
}
