// Package quote turns a set of form answers into a priced quote. The
// decision logic is data driven: all component names the tree references
// live in a Tables value that is validated once at startup.
package quote

import (
	"fmt"

	"bks/internal"
)

// Units used by the line generators. Components may carry their own unit
// label; these are the fallbacks per line kind.
const (
	UnitPiece       = "st"
	UnitSquareMeter = "m²"
	UnitLinearMeter = "lpm"
	UnitCubicMeter  = "m³"
)

// FixedLine is a component added to every quote regardless of answers.
type FixedLine struct {
	Component string
	Quantity  float64
	Unit      string
	Category  internal.Category
}

// Tables maps every form enumeration to the catalog component names the
// decision tree selects. The zero value is unusable; start from
// DefaultTables and Validate before calculating.
type Tables struct {
	Fixed []FixedLine

	Curb     map[internal.CurbMaterial]string
	Material map[internal.Material]string
	Grout    map[internal.Grout]string

	LightLeveling     string
	ExcavationTraffic string
	TopsoilRemoval    string
	SubBasePlacement  string
	SubBaseCompaction string
	WasteRemoval      string

	StoneDustFill     string
	SurfaceCompaction string

	Cleanup string
}

// DefaultTables returns the shipped component-name mapping. The names match
// the contractor's price list verbatim.
func DefaultTables() Tables {
	return Tables{
		Fixed: []FixedLine{
			{Component: "Etablering av maskiner och verktyg", Quantity: 2, Unit: UnitPiece, Category: internal.CategoryMobilization},
			{Component: "Utsättning och mätning", Quantity: 1, Unit: UnitPiece, Category: internal.CategoryMobilization},
			{Component: "Transportkostnader", Quantity: 1, Unit: UnitPiece, Category: internal.CategoryMobilization},
		},

		Curb: map[internal.CurbMaterial]string{
			internal.CurbConcrete: "Sättning av betongkantsten",
			internal.CurbGranite:  "Sättning av granitkantsten",
		},
		Material: map[internal.Material]string{
			internal.MaterialAsfalt:        "Asfaltering",
			internal.MaterialMarksten:      "Läggning av marksten",
			internal.MaterialBetongplattor: "Läggning av betongplattor",
			internal.MaterialSmagatsten:    "Sättning av smågatsten",
			internal.MaterialStorgatsten:   "Sättning av storgatsten",
			internal.MaterialSkiffer:       "Läggning av skifferhällar",
			internal.MaterialGranithallar:  "Läggning av granithällar",
		},
		Grout: map[internal.Grout]string{
			internal.GroutSand:      "Fogning med ögreshämande fogsand",
			internal.GroutHardJoint: "Fogning med flexibel hårdfog",
		},

		LightLeveling:     "Lättare avjämning av yta",
		ExcavationTraffic: "Schaktning 400 mm djup",
		TopsoilRemoval:    "Avtagning av vegetation och matjord",
		SubBasePlacement:  "Utläggning och justering av bärlager",
		SubBaseCompaction: "Packning av bärlager",
		WasteRemoval:      "Bortforsling av schaktmassor",

		StoneDustFill:     "Utläggning och justering av stenmjöl",
		SurfaceCompaction: "Paddning av yta",

		Cleanup: "Städning och bortforsling av byggavfall",
	}
}

// Validate checks that every enumeration case resolves to a component name.
// Run once at startup so a truncated mapping fails fast instead of silently
// shrinking quotes.
func (t Tables) Validate() error {
	if len(t.Fixed) == 0 {
		return fmt.Errorf("tables: no fixed components defined")
	}
	for i, f := range t.Fixed {
		if f.Component == "" {
			return fmt.Errorf("tables: fixed component %d has no name", i)
		}
		if f.Quantity <= 0 {
			return fmt.Errorf("tables: fixed component %q has non-positive quantity", f.Component)
		}
	}

	for _, m := range internal.AllMaterials {
		if t.Material[m] == "" {
			return fmt.Errorf("tables: material %q has no component mapping", m)
		}
	}
	for _, g := range internal.AllGrouts {
		if t.Grout[g] == "" {
			return fmt.Errorf("tables: grout %q has no component mapping", g)
		}
	}
	for _, c := range internal.AllCurbMaterials {
		if t.Curb[c] == "" {
			return fmt.Errorf("tables: curb material %q has no component mapping", c)
		}
	}

	named := map[string]string{
		"light leveling":      t.LightLeveling,
		"traffic excavation":  t.ExcavationTraffic,
		"topsoil removal":     t.TopsoilRemoval,
		"sub-base placement":  t.SubBasePlacement,
		"sub-base compaction": t.SubBaseCompaction,
		"waste removal":       t.WasteRemoval,
		"stone dust fill":     t.StoneDustFill,
		"surface compaction":  t.SurfaceCompaction,
		"cleanup":             t.Cleanup,
	}
	for what, name := range named {
		if name == "" {
			return fmt.Errorf("tables: %s has no component name", what)
		}
	}

	return nil
}
