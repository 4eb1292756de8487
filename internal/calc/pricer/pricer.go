package pricer

import (
	"strings"

	"Stairs/internal/catalog"

	"github.com/shopspring/decimal"
)

// Price is a resolved unit price. Matched is false when the catalog had no
// entry and the caller's default was used.
type Price struct {
	Amount  decimal.Decimal
	Matched bool
	Article string
	Name    string
	Unit    string
}

type Pricer struct {
	Source catalog.Source
}

func New(src catalog.Source) *Pricer {
	return &Pricer{Source: src}
}

// ByPattern returns the first entry of the category whose name contains
// pattern, ignoring case. When several entries match, the one loaded first wins.
func (p *Pricer) ByPattern(category catalog.Category, pattern string, def decimal.Decimal) Price {
	needle := strings.ToLower(pattern)
	for _, e := range p.Source.All() {
		if e.Category != category {
			continue
		}
		if strings.Contains(strings.ToLower(e.Name), needle) {
			return Price{Amount: e.Price, Matched: true, Article: e.Article, Name: e.Name, Unit: e.Unit}
		}
	}
	return Price{Amount: def}
}

func (p *Pricer) ByArticle(article string) (catalog.Entry, bool) {
	return catalog.FindArticle(p.Source.All(), article)
}
