// Package catalog holds the price list the stair calculators read from.
//
// Entries are immutable; a Store publishes them as a snapshot that is swapped
// wholesale on refresh, so readers never see a half-loaded list.
package catalog

import (
	"strings"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryWood    Category = "wood"
	CategoryModular Category = "modular"
)

type Entry struct {
	Article  string          `json:"article"`
	Name     string          `json:"name"`
	Category Category        `json:"category"`
	SizeSpec string          `json:"size_spec"`
	Unit     string          `json:"unit"`
	Price    decimal.Decimal `json:"price"`
}

// Source is the read side of the catalog as the calculators see it.
type Source interface {
	All() []Entry
}

type snapshot struct {
	entries []Entry
}

// Store keeps the current snapshot. The zero value is an empty catalog.
type Store struct {
	current atomic.Pointer[snapshot]
}

func NewStore(entries []Entry) *Store {
	s := &Store{}
	s.Refresh(entries)
	return s
}

// All returns the current snapshot in load order. Callers must not modify it.
func (s *Store) All() []Entry {
	snap := s.current.Load()
	if snap == nil {
		return nil
	}
	return snap.entries
}

// Refresh replaces the whole catalog. The slice is copied so later changes
// by the caller do not leak into the published snapshot.
func (s *Store) Refresh(entries []Entry) {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	s.current.Store(&snapshot{entries: cp})
}

func (s *Store) Len() int {
	return len(s.All())
}

// Lookup finds an entry by article. "15762374.0" and "15762374" are the same
// article: spreadsheets hand numeric identifiers back as floats.
func (s *Store) Lookup(article string) (Entry, bool) {
	return FindArticle(s.All(), article)
}

// Search returns entries whose article or name contains term, ignoring case.
func (s *Store) Search(term string) []Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	var out []Entry
	for _, e := range s.All() {
		if strings.Contains(strings.ToLower(e.Article), term) ||
			strings.Contains(strings.ToLower(e.Name), term) {
			out = append(out, e)
		}
	}
	return out
}

func FindArticle(entries []Entry, article string) (Entry, bool) {
	clean := NormalizeArticle(article)
	if clean == "" {
		return Entry{}, false
	}
	for _, e := range entries {
		if e.Article == clean {
			return e, true
		}
	}
	return Entry{}, false
}

// NormalizeArticle trims whitespace and drops a fractional suffix ("123.0" -> "123").
func NormalizeArticle(article string) string {
	article = strings.TrimSpace(article)
	if i := strings.IndexByte(article, '.'); i >= 0 {
		article = article[:i]
	}
	return article
}

// ParseCategory maps the labels used in the price workbook onto a Category.
func ParseCategory(label string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "wood", "деревянная", "дерево":
		return CategoryWood, true
	case "modular", "металлическая", "модульная", "металл":
		return CategoryModular, true
	default:
		return "", false
	}
}
