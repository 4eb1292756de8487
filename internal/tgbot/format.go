package tgbot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"Stairs/internal/calc/stairs"
	"Stairs/internal/catalog"

	"github.com/shopspring/decimal"
)

var typeNames = map[stairs.StairType]string{
	stairs.Wood:    "Деревянная",
	stairs.Modular: "Модульная",
}

var configNames = map[string]string{
	"straight": "Прямая",
	"l_shape":  "Г-образная",
	"u_shape":  "П-образная",
}

// FormatResult renders a calculation as a Telegram Markdown message.
func FormatResult(res stairs.Result, at time.Time) string {
	lay := res.Layout
	var sb strings.Builder
	sb.WriteString("🏠 *РАСЧЕТ ЛЕСТНИЦЫ*\n\n")
	fmt.Fprintf(&sb, "📋 *Тип:* %s\n", typeNames[res.Request.StairType])
	fmt.Fprintf(&sb, "📐 *Конфигурация:* %s\n", configNames[string(res.Request.Config)])
	fmt.Fprintf(&sb, "📏 *Высота:* %.0f мм\n", res.Request.HeightMM)
	fmt.Fprintf(&sb, "🪜 *Количество ступеней:* %d\n", lay.StepsCount)
	fmt.Fprintf(&sb, "📊 *Высота ступени:* %.1f мм\n", lay.ActualStepHeightMM)
	if lay.PlatformsCount > 0 {
		fmt.Fprintf(&sb, "🔄 *Количество площадок:* %d\n", lay.PlatformsCount)
	}
	if res.CutPlan != nil {
		fmt.Fprintf(&sb, "📐 *Длина тетивы:* %.0f мм\n", lay.StringerRunLengthMM)
	}

	sb.WriteString("\n💎 *МАТЕРИАЛЫ:*\n\n")
	for _, m := range res.Materials {
		fmt.Fprintf(&sb, "• %s\n", escapeMarkdown(m.Name))
		fmt.Fprintf(&sb, "  Кол-во: %s %s\n", strconv.FormatFloat(m.Quantity, 'f', -1, 64), m.Unit)
		fmt.Fprintf(&sb, "  Цена: %s руб.\n", m.UnitPrice.StringFixed(2))
		fmt.Fprintf(&sb, "  Сумма: %s руб.\n\n", m.LineTotal.StringFixed(2))
	}

	fmt.Fprintf(&sb, "💰 *ОБЩАЯ СТОИМОСТЬ:* %s руб.\n\n", groupThousands(res.TotalCost))
	fmt.Fprintf(&sb, "_Цены актуальны на %s_\n", at.Format("02.01.2006"))
	sb.WriteString("_Стоимость является ориентировочной_")
	return sb.String()
}

func formatEntry(e catalog.Entry) string {
	return fmt.Sprintf("%s - %s, %s руб./%s", e.Article, e.Name, e.Price.StringFixed(2), e.Unit)
}

// groupThousands rounds to whole roubles and separates thousands with commas.
func groupThousands(d decimal.Decimal) string {
	s := d.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
