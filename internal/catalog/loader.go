package catalog

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// HeaderRows is the number of title rows above the data in the price workbook.
const HeaderRows = 3

const defaultUnit = "шт."

// Loader produces a full list of entries for a refresh.
type Loader interface {
	Load(ctx context.Context) ([]Entry, error)
}

// WorkbookLoader reads the first sheet of an xlsx price list.
type WorkbookLoader struct {
	Path string
}

func (l WorkbookLoader) Load(ctx context.Context) ([]Entry, error) {
	f, err := excelize.OpenFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", l.Path, err)
	}
	defer f.Close()
	return ReadWorkbook(f)
}

// ReadWorkbookFrom parses an uploaded workbook.
func ReadWorkbookFrom(r io.Reader) ([]Entry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return ReadWorkbook(f)
}

func ReadWorkbook(f *excelize.File) ([]Entry, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	// Raw values: formatted cells come back as "10,215" otherwise.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return ParseRows(rows), nil
}

// ParseRows converts sheet rows (header rows included) into entries.
// Columns: article, name, category label, sizes, unit, price. Rows without
// an article, a name or a non-zero price are skipped.
func ParseRows(rows [][]string) []Entry {
	var out []Entry
	for i := HeaderRows; i < len(rows); i++ {
		row := rows[i]
		article := NormalizeArticle(cell(row, 0))
		name := cell(row, 1)
		price, ok := parsePrice(cell(row, 5))
		if article == "" || name == "" || !ok {
			continue
		}
		category, known := ParseCategory(cell(row, 2))
		if !known {
			log.Printf("catalog: row %d article %s: unknown category %q, pattern lookups will skip it", i+1, article, cell(row, 2))
		}
		unit := cell(row, 4)
		if unit == "" {
			unit = defaultUnit
		}
		out = append(out, Entry{
			Article:  article,
			Name:     name,
			Category: category,
			SizeSpec: cell(row, 3),
			Unit:     unit,
			Price:    price,
		})
	}
	return out
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parsePrice accepts "1504", "3 700,50" and "10,215.00". A single comma with
// no dot is a decimal comma; otherwise commas group thousands.
func parsePrice(s string) (decimal.Decimal, bool) {
	s = strings.NewReplacer(" ", "", "\u00a0", "").Replace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// FallbackEntries is the built-in price list used when nothing could be loaded.
func FallbackEntries() []Entry {
	p := decimal.NewFromInt
	return []Entry{
		{Article: "15762294", Name: "Верхний и нижний элемент сталь ЛЭ-01-01", Category: CategoryModular, Unit: "штука", Price: p(7590)},
		{Article: "15762307", Name: "Промежуточный элемент сталь ЛЭ-01-02", Category: CategoryModular, Unit: "штука", Price: p(4076)},
		{Article: "15762374", Name: "Опора лестницы 1000мм сталь ЛЭ-01-09", Category: CategoryModular, Unit: "штука", Price: p(3647)},
		{Article: "15762382", Name: "Опора лестницы 2000 сталь ЛЭ-01-10", Category: CategoryModular, Unit: "штука", Price: p(5490)},
		{Article: "15762391", Name: "Угловой элемент сталь ЛЭ-01-14", Category: CategoryModular, Unit: "штука", Price: p(12411)},
		{Article: "83850952", Name: "СТУПЕНЬ ПРЯМАЯ 900x300", Category: CategoryWood, Unit: "штука", Price: p(1504)},
		{Article: "83850953", Name: "СТУПЕНЬ ПРЯМАЯ 1000x300", Category: CategoryWood, Unit: "штука", Price: p(1282)},
		{Article: "83850954", Name: "СТУПЕНЬ ПРЯМАЯ 1200x300", Category: CategoryWood, Unit: "штука", Price: p(1358)},
		{Article: "83850961", Name: "Тетива 3000x300x60", Category: CategoryWood, Unit: "штука", Price: p(9518)},
		{Article: "83850962", Name: "Тетива 4000x300x60", Category: CategoryWood, Unit: "штука", Price: p(10215)},
		{Article: "83850939", Name: "Поручень 3000мм", Category: CategoryWood, Unit: "штука", Price: p(2108)},
		{Article: "89426866", Name: "Столб Хюгге", Category: CategoryWood, Unit: "штука", Price: p(1931)},
		{Article: "89426868", Name: "Балясина Хюгге", Category: CategoryWood, Unit: "штука", Price: p(400)},
	}
}
