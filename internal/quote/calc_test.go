package quote

import (
	"testing"

	"github.com/shopspring/decimal"

	"bks/internal"
	"bks/internal/catalog"
	"bks/internal/config"
)

func fp(v float64) *float64 { return &v }

func cm(v internal.CurbMaterial) *internal.CurbMaterial { return &v }

// testComponents builds a catalog that covers every name the default
// tables reference, priced at a flat 100 kr per unit.
func testComponents() []internal.PricingComponent {
	t := DefaultTables()
	var out []internal.PricingComponent
	add := func(name, unit string) {
		out = append(out, internal.PricingComponent{
			ID: name, Name: name, Unit: unit,
			UnitPrice: decimal.NewFromInt(100), Active: true,
		})
	}
	for _, f := range t.Fixed {
		add(f.Component, f.Unit)
	}
	for _, name := range t.Curb {
		add(name, UnitLinearMeter)
	}
	for _, name := range t.Material {
		add(name, UnitSquareMeter)
	}
	for _, name := range t.Grout {
		add(name, UnitSquareMeter)
	}
	add(t.LightLeveling, UnitSquareMeter)
	add(t.ExcavationTraffic, UnitSquareMeter)
	add(t.TopsoilRemoval, UnitSquareMeter)
	add(t.SubBasePlacement, UnitSquareMeter)
	add(t.SubBaseCompaction, UnitSquareMeter)
	add(t.WasteRemoval, UnitCubicMeter)
	add(t.StoneDustFill, UnitSquareMeter)
	add(t.SurfaceCompaction, UnitSquareMeter)
	add(t.Cleanup, UnitPiece)
	return out
}

func newTestCalculator(components []internal.PricingComponent) *Calculator {
	cfg := config.Config{QuoteValidDays: 30}
	return NewCalculator(cfg, catalog.NewSnapshot(components), DefaultTables(), nil)
}

func TestCalculateAsphaltOnPreparedGround(t *testing.T) {
	calc := newTestCalculator(testComponents())
	answers := internal.FormAnswers{
		Material:    internal.MaterialAsfalt,
		Area:        100,
		Preparation: internal.PreparationReady,
		Usage:       internal.UsagePedestrian,
		Grout:       internal.GroutSand,
		CurbNeeded:  internal.AnswerNo,
	}

	q := calc.Calculate(answers)

	wantNames := []string{
		"Etablering av maskiner och verktyg",
		"Utsättning och mätning",
		"Transportkostnader",
		"Asfaltering",
		"Fogning med ögreshämande fogsand",
		"Städning och bortforsling av byggavfall",
	}
	if len(q.Items) != len(wantNames) {
		t.Fatalf("got %d items, want %d", len(q.Items), len(wantNames))
	}
	for i, name := range wantNames {
		if q.Items[i].Name != name {
			t.Fatalf("item %d is %q, want %q", i, q.Items[i].Name, name)
		}
	}

	// 2+1+1 fixed pieces, 100 m² paving, 100 m² grouting, 1 cleanup, all at 100 kr
	if got := q.Subtotal.String(); got != "20500" {
		t.Fatalf("subtotal %s, want 20500", got)
	}
	if got := q.TotalWithTax.String(); got != "25625" {
		t.Fatalf("total %s, want 25625", got)
	}

	wantCategories := []internal.Category{
		internal.CategoryMobilization, internal.CategoryPaving,
		internal.CategoryJointing, internal.CategoryWaste,
	}
	if len(q.CategorySummary) != len(wantCategories) {
		t.Fatalf("got %d categories, want %d", len(q.CategorySummary), len(wantCategories))
	}
	for i, cat := range wantCategories {
		if q.CategorySummary[i].Category != cat {
			t.Fatalf("category %d is %q, want %q", i, q.CategorySummary[i].Category, cat)
		}
	}

	sum := decimal.Zero
	for _, ct := range q.CategorySummary {
		sum = sum.Add(ct.Total)
	}
	if !sum.Equal(decimal.NewFromInt(20500)) {
		t.Fatalf("category sums add to %s, want 20500", sum)
	}

	wantValid := q.CreatedAt.AddDate(0, 0, 30)
	if q.ValidUntil.Year() != wantValid.Year() || q.ValidUntil.YearDay() != wantValid.YearDay() {
		t.Fatalf("validUntil %v, want the date 30 days after %v", q.ValidUntil, q.CreatedAt)
	}
	if q.ValidUntil.Hour() != 0 || q.ValidUntil.Minute() != 0 {
		t.Fatalf("validUntil not truncated to a date: %v", q.ValidUntil)
	}
}

func TestCalculateStoneWithFullPreparationAndCurb(t *testing.T) {
	calc := newTestCalculator(testComponents())
	answers := internal.FormAnswers{
		Material:     internal.MaterialMarksten,
		Area:         50,
		Preparation:  internal.PreparationNotPrepared,
		Usage:        internal.UsageTraffic,
		Grout:        internal.GroutHardJoint,
		CurbNeeded:   internal.AnswerYes,
		CurbLength:   fp(20),
		CurbMaterial: cm(internal.CurbGranite),
	}

	q := calc.Calculate(answers)

	// 3 fixed + 1 curb + 4 preparation + 3 material + 1 grout + 1 cleanup
	if len(q.Items) != 13 {
		t.Fatalf("got %d items, want 13", len(q.Items))
	}
	if q.Items[3].Name != "Sättning av granitkantsten" || q.Items[3].Quantity != 20 {
		t.Fatalf("curb line wrong: %+v", q.Items[3])
	}
	if q.Items[4].Name != "Schaktning 400 mm djup" {
		t.Fatalf("traffic surface must use deep excavation, got %q", q.Items[4].Name)
	}

	var waste *internal.QuoteItem
	for i := range q.Items {
		if q.Items[i].Name == "Bortforsling av schaktmassor" {
			waste = &q.Items[i]
		}
	}
	if waste == nil {
		t.Fatalf("no waste removal line")
	}
	// round(50 * 0.4 * 0.1) = 2 loads
	if waste.Quantity != 2 {
		t.Fatalf("waste quantity %v, want 2", waste.Quantity)
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	calc := newTestCalculator(testComponents())
	answers := internal.FormAnswers{
		Material:    internal.MaterialSkiffer,
		Area:        75,
		Preparation: internal.PreparationLightLeveling,
		Usage:       internal.UsagePedestrian,
		Grout:       internal.GroutHardJoint,
		CurbNeeded:  internal.AnswerNo,
	}

	first := calc.Calculate(answers)
	second := calc.Calculate(answers)

	if len(first.Items) != len(second.Items) {
		t.Fatalf("item counts differ: %d vs %d", len(first.Items), len(second.Items))
	}
	for i := range first.Items {
		if first.Items[i].Name != second.Items[i].Name {
			t.Fatalf("item %d differs: %q vs %q", i, first.Items[i].Name, second.Items[i].Name)
		}
	}
	if !first.Subtotal.Equal(second.Subtotal) || !first.TotalWithTax.Equal(second.TotalWithTax) {
		t.Fatalf("totals differ between runs")
	}
}

func TestPreparationVariants(t *testing.T) {
	cases := []struct {
		name           string
		preparation    internal.Preparation
		usage          internal.Usage
		wantItems      int
		wantExcavation string
	}{
		{name: "ready", preparation: internal.PreparationReady, usage: internal.UsagePedestrian, wantItems: 6},
		{name: "light leveling", preparation: internal.PreparationLightLeveling, usage: internal.UsagePedestrian, wantItems: 7, wantExcavation: "Lättare avjämning av yta"},
		{name: "not prepared pedestrian", preparation: internal.PreparationNotPrepared, usage: internal.UsagePedestrian, wantItems: 10, wantExcavation: "Avtagning av vegetation och matjord"},
		{name: "not prepared traffic", preparation: internal.PreparationNotPrepared, usage: internal.UsageTraffic, wantItems: 10, wantExcavation: "Schaktning 400 mm djup"},
	}

	calc := newTestCalculator(testComponents())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			answers := internal.FormAnswers{
				Material:    internal.MaterialAsfalt,
				Area:        100,
				Preparation: tc.preparation,
				Usage:       tc.usage,
				Grout:       internal.GroutSand,
				CurbNeeded:  internal.AnswerNo,
			}
			q := calc.Calculate(answers)
			if len(q.Items) != tc.wantItems {
				t.Fatalf("got %d items, want %d", len(q.Items), tc.wantItems)
			}
			if tc.wantExcavation == "" {
				for _, it := range q.Items {
					if it.Category == internal.CategoryExcavation {
						t.Fatalf("prepared ground must not excavate, got %q", it.Name)
					}
				}
				return
			}
			found := false
			for _, it := range q.Items {
				if it.Name == tc.wantExcavation {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected line %q", tc.wantExcavation)
			}
		})
	}
}

func TestMaterialLineShapes(t *testing.T) {
	cases := []struct {
		material       internal.Material
		wantPavingName string
		wantCompaction bool
	}{
		{material: internal.MaterialAsfalt, wantPavingName: "Asfaltering", wantCompaction: false},
		{material: internal.MaterialMarksten, wantPavingName: "Läggning av marksten", wantCompaction: true},
		{material: internal.MaterialSmagatsten, wantPavingName: "Sättning av smågatsten", wantCompaction: true},
		{material: internal.MaterialSkiffer, wantPavingName: "Läggning av skifferhällar", wantCompaction: false},
		{material: internal.MaterialGranithallar, wantPavingName: "Läggning av granithällar", wantCompaction: false},
	}

	calc := newTestCalculator(testComponents())
	for _, tc := range cases {
		t.Run(string(tc.material), func(t *testing.T) {
			answers := internal.FormAnswers{
				Material:    tc.material,
				Area:        40,
				Preparation: internal.PreparationReady,
				Usage:       internal.UsagePedestrian,
				Grout:       internal.GroutSand,
				CurbNeeded:  internal.AnswerNo,
			}
			q := calc.Calculate(answers)

			havePaving, haveCompaction := false, false
			for _, it := range q.Items {
				if it.Name == tc.wantPavingName {
					havePaving = true
				}
				if it.Name == "Paddning av yta" {
					haveCompaction = true
				}
			}
			if !havePaving {
				t.Fatalf("missing paving line %q", tc.wantPavingName)
			}
			if haveCompaction != tc.wantCompaction {
				t.Fatalf("compaction line present=%v, want %v", haveCompaction, tc.wantCompaction)
			}
		})
	}
}

func TestMissingComponentSkipsLine(t *testing.T) {
	components := testComponents()
	filtered := components[:0]
	for _, c := range components {
		if c.Name != "Asfaltering" {
			filtered = append(filtered, c)
		}
	}

	calc := newTestCalculator(filtered)
	answers := internal.FormAnswers{
		Material:    internal.MaterialAsfalt,
		Area:        100,
		Preparation: internal.PreparationReady,
		Usage:       internal.UsagePedestrian,
		Grout:       internal.GroutSand,
		CurbNeeded:  internal.AnswerNo,
	}

	q, lines := calc.CalculateDetailed(answers)

	if len(q.Items) != 5 {
		t.Fatalf("got %d items, want 5 with the paving line dropped", len(q.Items))
	}
	var missing []string
	for _, l := range lines {
		if !l.Priced() {
			missing = append(missing, l.Missing)
		}
	}
	if len(missing) != 1 || missing[0] != "Asfaltering" {
		t.Fatalf("missing = %v, want [Asfaltering]", missing)
	}
	// 4 pieces + 100 m² grouting at 100 kr
	if got := q.Subtotal.String(); got != "10500" {
		t.Fatalf("subtotal %s, want 10500", got)
	}
}

func TestCurbRequiresBothConditionalFields(t *testing.T) {
	calc := newTestCalculator(testComponents())
	base := internal.FormAnswers{
		Material:    internal.MaterialAsfalt,
		Area:        100,
		Preparation: internal.PreparationReady,
		Usage:       internal.UsagePedestrian,
		Grout:       internal.GroutSand,
		CurbNeeded:  internal.AnswerYes,
	}

	cases := []struct {
		name     string
		length   *float64
		material *internal.CurbMaterial
		want     bool
	}{
		{name: "both set", length: fp(12), material: cm(internal.CurbConcrete), want: true},
		{name: "no length", length: nil, material: cm(internal.CurbConcrete), want: false},
		{name: "no material", length: fp(12), material: nil, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			answers := base
			answers.CurbLength = tc.length
			answers.CurbMaterial = tc.material
			q := calc.Calculate(answers)

			have := false
			for _, it := range q.Items {
				if it.Name == "Sättning av betongkantsten" {
					have = true
				}
			}
			if have != tc.want {
				t.Fatalf("curb line present=%v, want %v", have, tc.want)
			}
		})
	}
}

func TestCalculateWithZeroArea(t *testing.T) {
	calc := newTestCalculator(testComponents())
	answers := internal.FormAnswers{
		Material:    internal.MaterialAsfalt,
		Area:        0,
		Preparation: internal.PreparationNotPrepared,
		Usage:       internal.UsageTraffic,
		Grout:       internal.GroutSand,
		CurbNeeded:  internal.AnswerNo,
	}

	q := calc.Calculate(answers)

	// 3 fixed + 4 preparation + 1 material + 1 grout + 1 cleanup, the
	// area-scaled lines simply carry quantity zero
	if len(q.Items) != 10 {
		t.Fatalf("got %d items, want 10", len(q.Items))
	}

	var waste *internal.QuoteItem
	for i := range q.Items {
		if q.Items[i].Name == "Bortforsling av schaktmassor" {
			waste = &q.Items[i]
		}
	}
	if waste == nil {
		t.Fatal("no waste removal line")
	}
	// the haul-away volume floors at one load even for a zero area
	if waste.Quantity != 1 {
		t.Fatalf("waste quantity %v, want 1", waste.Quantity)
	}

	if q.EstimatedDays != 1 {
		t.Fatalf("estimatedDays %d, want 1", q.EstimatedDays)
	}
	// 2+1+1 fixed pieces, 1 waste load, 1 cleanup at 100 kr
	if got := q.Subtotal.String(); got != "600" {
		t.Fatalf("subtotal %s, want 600", got)
	}
}

func TestCalculateWithEmptyCatalog(t *testing.T) {
	calc := newTestCalculator(nil)
	answers := internal.FormAnswers{
		Material:    internal.MaterialAsfalt,
		Area:        100,
		Preparation: internal.PreparationReady,
		Usage:       internal.UsagePedestrian,
		Grout:       internal.GroutSand,
		CurbNeeded:  internal.AnswerNo,
	}

	q, lines := calc.CalculateDetailed(answers)

	if len(q.Items) != 0 {
		t.Fatalf("got %d items, want none", len(q.Items))
	}
	if !q.Subtotal.IsZero() || !q.TotalWithTax.IsZero() {
		t.Fatalf("empty quote must total zero, got %s / %s", q.Subtotal, q.TotalWithTax)
	}
	if q.EstimatedDays != 1 {
		t.Fatalf("estimatedDays %d, want 1", q.EstimatedDays)
	}
	if len(lines) != 6 {
		t.Fatalf("got %d line results, want 6", len(lines))
	}
	for _, l := range lines {
		if l.Priced() {
			t.Fatalf("line %q priced against an empty catalog", l.Item.Name)
		}
	}
}

func TestWasteQuantity(t *testing.T) {
	cases := []struct {
		area  float64
		depth float64
		want  float64
	}{
		{area: 50, depth: 0.4, want: 2},
		{area: 10, depth: 0.2, want: 1},
		{area: 100, depth: 0.4, want: 4},
		{area: 500, depth: 0.4, want: 20},
	}
	for _, tc := range cases {
		if got := wasteQuantity(tc.area, tc.depth); got != tc.want {
			t.Fatalf("wasteQuantity(%v, %v) = %v, want %v", tc.area, tc.depth, got, tc.want)
		}
	}
}
