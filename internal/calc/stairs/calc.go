package stairs

import (
	"fmt"
	"math"

	"Stairs/internal/calc/layout"
	"Stairs/internal/calc/pricer"
	"Stairs/internal/calc/stringer"
	"Stairs/internal/catalog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fixed articles of the modular steel frame.
const (
	ArticleSupportShort = "15762374"
	ArticleSupportLong  = "15762382"
	ArticleCorner       = "15762391"
)

const (
	unitPiece = "шт."
	unitKit   = "компл."

	handrailSegmentMM = 3000.0
)

type LineItem struct {
	Name      string          `json:"name"`
	Article   string          `json:"article,omitempty"`
	Quantity  float64         `json:"quantity"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Matched   bool            `json:"matched"`
}

type Result struct {
	ID              string          `json:"id"`
	Request         Request         `json:"request"`
	Layout          layout.Result   `json:"layout"`
	CutPlan         *stringer.Plan  `json:"cut_plan,omitempty"`
	Materials       []LineItem      `json:"materials"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	MissingArticles []string        `json:"missing_articles,omitempty"`
}

// NewID stamps a result for logs and report file names.
func NewID() string {
	return uuid.NewString()
}

type Calculator struct {
	Pricer       *pricer.Pricer
	StepHeightMM float64
}

func NewCalculator(src catalog.Source, stepHeightMM float64) *Calculator {
	return &Calculator{Pricer: pricer.New(src), StepHeightMM: stepHeightMM}
}

// Calculate builds the priced bill of materials. The request must already
// be validated; unknown enum values panic. The result depends only on the
// request and the catalog snapshot; ID is left empty for callers to stamp.
func (c *Calculator) Calculate(req Request) Result {
	lay := layout.Resolve(layout.Input{
		HeightMM:     req.HeightMM,
		Config:       req.Config,
		StairType:    string(req.StairType),
		StepHeightMM: c.StepHeightMM,
	})
	b := &bom{pricer: c.Pricer, category: req.Category()}
	res := Result{
		Request: req,
		Layout:  lay,
	}

	switch req.StairType {
	case Wood:
		plan := stringer.Optimize(lay.StringerRunLengthMM, stringer.DefaultSides)
		res.CutPlan = &plan
		c.wood(b, req, lay, plan)
	case Modular:
		c.modular(b, req, lay)
	}

	res.Materials = b.items
	res.TotalCost = b.total
	res.MissingArticles = b.missing
	return res
}

func (c *Calculator) wood(b *bom, req Request, lay layout.Result, plan stringer.Plan) {
	steps := float64(lay.StepsCount)
	platforms := float64(lay.PlatformsCount)
	w := req.StepWidthMM

	for _, cut := range plan.Cuts {
		def := int64(9518)
		if cut.StockLengthMM == stringer.Long {
			def = 10215
		}
		b.pattern(fmt.Sprintf("Тетива %dмм", cut.StockLengthMM), float64(cut.Quantity), unitPiece,
			fmt.Sprintf("Тетива %d", cut.StockLengthMM), def)
	}
	b.pattern(fmt.Sprintf("Ступень %d×300мм", w), steps, unitPiece, fmt.Sprintf("СТУПЕНЬ ПРЯМАЯ %d", w), 1500)
	b.pattern(fmt.Sprintf("Подступенок %d×200мм", w), steps, unitPiece, fmt.Sprintf("Подступенок %d", w), 600)
	b.pattern("Столб опорный", float64(postsFor(req.Config)), unitPiece, "Столб", 1931)
	b.pattern("Балясина", steps+platforms, unitPiece, "Балясина", 400)
	b.pattern("Поручень 3000мм", math.Ceil(lay.StringerRunLengthMM/handrailSegmentMM), unitPiece, "ПОРУЧЕНЬ", 2108)
	if lay.PlatformsCount > 0 {
		b.pattern(fmt.Sprintf("Площадка %dx%d", w, w), platforms, unitPiece, "Площадка", 8000)
	}
	b.pattern("Крепежный комплект", float64(max(1, lay.StepsCount/10)), unitKit, "Крепежный комплект", 1500)
	b.pattern("Саморезы", steps*12, unitPiece, "Саморез", 5)
}

func (c *Calculator) modular(b *bom, req Request, lay layout.Result) {
	steps := float64(lay.StepsCount)
	platforms := float64(lay.PlatformsCount)
	w := req.StepWidthMM

	b.article(ArticleSupportShort, 1)
	b.article(ArticleSupportLong, 1)
	b.pattern("Промежуточный элемент", float64(max(0, lay.StepsCount-1)), unitPiece, "Промежуточный элемент", 4076)
	b.pattern("Верхний и нижний элемент", 1, unitPiece, "Верхний и нижний элемент", 7590)
	if corners := cornersFor(req.Config); corners > 0 {
		b.article(ArticleCorner, float64(corners))
	}
	if lay.PlatformsCount > 0 {
		b.pattern(fmt.Sprintf("Площадка %dx%d", w, w), platforms, unitPiece, "Площадка", 8000)
	}
	b.pattern(fmt.Sprintf("Ступень %d×300мм", w), steps, unitPiece, fmt.Sprintf("СТУПЕНЬ ПРЯМАЯ %d", w), 1500)
	b.pattern("Опора под поручень", steps+platforms, unitPiece, "Опора под поручень", 900)

	lengthM := math.Hypot(req.HeightMM, steps*layout.TreadDepthMM) / 1000
	b.pattern("Поручень 3000мм", math.Ceil(lengthM/(handrailSegmentMM/1000)), unitPiece, "ПОРУЧЕНЬ", 2108)
}

func postsFor(cfg layout.Config) int {
	switch cfg {
	case layout.LShape:
		return 3
	case layout.UShape:
		return 4
	}
	return 2
}

func cornersFor(cfg layout.Config) int {
	switch cfg {
	case layout.LShape:
		return 1
	case layout.UShape:
		return 2
	}
	return 0
}

// bom accumulates line items and their running total.
type bom struct {
	pricer   *pricer.Pricer
	category catalog.Category
	items    []LineItem
	missing  []string
	total    decimal.Decimal
}

func (b *bom) pattern(name string, qty float64, unit, pattern string, def int64) {
	p := b.pricer.ByPattern(b.category, pattern, decimal.NewFromInt(def))
	b.add(LineItem{Name: name, Article: p.Article, Quantity: qty, Unit: unit, UnitPrice: p.Amount, Matched: p.Matched})
}

// article adds a line priced from an exact catalog entry. A missing entry
// drops the line and is reported in Result.MissingArticles.
func (b *bom) article(article string, qty float64) {
	e, ok := b.pricer.ByArticle(article)
	if !ok {
		b.missing = append(b.missing, article)
		return
	}
	unit := e.Unit
	if unit == "" {
		unit = unitPiece
	}
	b.add(LineItem{Name: e.Name, Article: e.Article, Quantity: qty, Unit: unit, UnitPrice: e.Price, Matched: true})
}

func (b *bom) add(item LineItem) {
	if item.Quantity < 0 {
		item.Quantity = 0
	}
	item.LineTotal = item.UnitPrice.Mul(decimal.NewFromFloat(item.Quantity))
	b.items = append(b.items, item)
	b.total = b.total.Add(item.LineTotal)
}

