package report

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"Stairs/internal/calc/stairs"

	"github.com/phpdave11/gofpdf"
)

type Handler struct {
	Calc *stairs.Calculator
	// FontPath points to a UTF-8 TTF; core Helvetica has no Cyrillic glyphs.
	FontPath string
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input stairs.Request
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res := h.Calc.Calculate(input)
	res.ID = stairs.NewID()
	stairs.LogMissing(res)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"stairs-%s.pdf\"", res.ID[:8]))
	if err := Render(w, res, h.FontPath, time.Now()); err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
}

var typeNames = map[stairs.StairType]string{
	stairs.Wood:    "Деревянная",
	stairs.Modular: "Модульная",
}

var configNames = map[string]string{
	"straight": "Прямая",
	"l_shape":  "Г-образная",
	"u_shape":  "П-образная",
}

// Render writes the bill of materials as a one-table A4 document.
func Render(out io.Writer, res stairs.Result, fontPath string, at time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	family := "Helvetica"
	tr := func(s string) string { return s }
	if fontPath != "" {
		pdf.AddUTF8Font("Report", "", fontPath)
		pdf.AddUTF8Font("Report", "B", fontPath)
		family = "Report"
	} else {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.AddPage()
	pdf.SetFont(family, "B", 16)
	pdf.Cell(0, 10, tr("Расчет лестницы"))
	pdf.Ln(12)

	pdf.SetFont(family, "", 11)
	lay := res.Layout
	lines := []string{
		fmt.Sprintf("Тип: %s", typeNames[res.Request.StairType]),
		fmt.Sprintf("Конфигурация: %s", configNames[string(res.Request.Config)]),
		fmt.Sprintf("Высота: %.0f мм", res.Request.HeightMM),
		fmt.Sprintf("Количество ступеней: %d", lay.StepsCount),
		fmt.Sprintf("Высота ступени: %.1f мм", lay.ActualStepHeightMM),
	}
	if lay.PlatformsCount > 0 {
		lines = append(lines, fmt.Sprintf("Количество площадок: %d", lay.PlatformsCount))
	}
	if res.CutPlan != nil {
		lines = append(lines, fmt.Sprintf("Длина тетивы: %.0f мм", lay.StringerRunLengthMM))
	}
	lines = append(lines, fmt.Sprintf("Дата: %s", at.Format("02.01.2006")))
	for _, l := range lines {
		pdf.Cell(0, 6, tr(l))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	widths := []float64{80, 20, 20, 30, 30}
	pdf.SetFont(family, "B", 10)
	for i, head := range []string{"Наименование", "Кол-во", "Ед.", "Цена", "Сумма"} {
		pdf.CellFormat(widths[i], 7, tr(head), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 10)
	for _, m := range res.Materials {
		pdf.CellFormat(widths[0], 6, tr(m.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprintf("%g", m.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(m.Unit), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, m.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, m.LineTotal.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont(family, "B", 11)
	pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3], 8, tr("Общая стоимость, руб."), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4], 8, res.TotalCost.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont(family, "", 9)
	pdf.MultiCell(0, 5, tr("Стоимость является ориентировочной."), "", "L", false)

	return pdf.Output(out)
}
