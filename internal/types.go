package internal

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingComponent is one entry of the external pricing catalog. Components
// are matched by exact name against the names the decision tables reference.
type PricingComponent struct {
	ID        string
	Name      string
	Unit      string
	UnitPrice decimal.Decimal
	LaborMax  *float64 // labor days per unit quantity, absent for some components
	Active    bool     // eligible for automatic quoting
}

type Material string

const (
	MaterialAsfalt        Material = "Asfalt"
	MaterialMarksten      Material = "Marksten"
	MaterialBetongplattor Material = "Betongplattor"
	MaterialSmagatsten    Material = "Smågatsten"
	MaterialStorgatsten   Material = "Storgatsten"
	MaterialSkiffer       Material = "Skiffer"
	MaterialGranithallar  Material = "Granithällar"
)

var AllMaterials = []Material{
	MaterialAsfalt, MaterialMarksten, MaterialBetongplattor,
	MaterialSmagatsten, MaterialStorgatsten, MaterialSkiffer, MaterialGranithallar,
}

type Preparation string

const (
	PreparationNotPrepared   Preparation = "Området har inte förberetts än"
	PreparationLightLeveling Preparation = "Kräver lättare avjämning"
	PreparationReady         Preparation = "Utgrävt och klart"
)

var AllPreparations = []Preparation{
	PreparationNotPrepared, PreparationLightLeveling, PreparationReady,
}

type Usage string

const (
	UsageTraffic    Usage = "Trafikyta"
	UsagePedestrian Usage = "Gångyta"
)

var AllUsages = []Usage{UsageTraffic, UsagePedestrian}

type Grout string

const (
	GroutSand      Grout = "Ögreshämande fogsand"
	GroutHardJoint Grout = "Flexibel hårdfog"
)

var AllGrouts = []Grout{GroutSand, GroutHardJoint}

type CurbMaterial string

const (
	CurbConcrete CurbMaterial = "Betongkantsten"
	CurbGranite  CurbMaterial = "Granitkantsten"
)

var AllCurbMaterials = []CurbMaterial{CurbConcrete, CurbGranite}

const (
	AnswerYes = "Ja"
	AnswerNo  = "Nej"
)

// FormAnswers is one validated submission of the quote form. The conditional
// curb fields stay nil unless the customer asked for curbing.
type FormAnswers struct {
	Material     Material      `json:"material"`
	Area         float64       `json:"area"`
	Preparation  Preparation   `json:"preparation"`
	Usage        Usage         `json:"usage"`
	Grout        Grout         `json:"grout"`
	CurbNeeded   string        `json:"curbNeeded"`
	CurbLength   *float64      `json:"curbLength,omitempty"`
	CurbMaterial *CurbMaterial `json:"curbMaterial,omitempty"`
}

func (a FormAnswers) WantsCurb() bool {
	return a.CurbNeeded == AnswerYes
}

type Category string

const (
	CategoryMobilization Category = "etablering"
	CategoryExcavation   Category = "schakt"
	CategorySubBase      Category = "underarbete"
	CategoryPaving       Category = "beläggning"
	CategoryJointing     Category = "fogning"
	CategoryWaste        Category = "bortforsling"
)

var AllCategories = []Category{
	CategoryMobilization, CategoryExcavation, CategorySubBase,
	CategoryPaving, CategoryJointing, CategoryWaste,
}

// QuoteItem is one priced row of a quote, tied to exactly one catalog
// component.
type QuoteItem struct {
	Name      string
	Category  Category
	Quantity  float64
	Unit      string
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
	LaborMax  *float64
}

// CategoryTotal pairs a category with the sum of its line totals. The
// summary keeps first-seen order from the item list.
type CategoryTotal struct {
	Category Category
	Total    decimal.Decimal
}

type Quote struct {
	ID              string
	CreatedAt       time.Time
	ValidUntil      time.Time
	Items           []QuoteItem
	CategorySummary []CategoryTotal
	Subtotal        decimal.Decimal
	TotalWithTax    decimal.Decimal
	EstimatedDays   int
}

// Lead is the contact behind a quote request.
type Lead struct {
	ID      int64
	Name    string
	Email   *string
	Phone   *string
	Address *string
}

// QuoteSummary is the listing row for stored quotes.
type QuoteSummary struct {
	ID            string
	CreatedAt     string
	TotalWithTax  decimal.Decimal
	EstimatedDays int
	LeadName      *string
}
