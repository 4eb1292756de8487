// Package tgbot is the chat front end of the stair calculator: a per-chat
// dialogue that collects a request step by step and answers with the priced
// bill of materials.
package tgbot

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"Stairs/internal/calc/layout"
	"Stairs/internal/calc/stairs"
	"Stairs/internal/catalog"
)

type state int

const (
	stateIdle state = iota
	stateType
	stateConfig
	stateHeight
	stateWidth
)

const (
	btnWood     = "🏠 Деревянная"
	btnModular  = "⚡ Модульная"
	btnStraight = "📏 Прямая"
	btnLShape   = "📐 Г-образная"
	btnUShape   = "🔄 П-образная"
	btnRestart  = "🔄 Перезапустить"

	cbCalculate = "calculate_stairs"
	cbRestart   = "restart"

	maxSearchResults = 10
)

var typeChoices = map[string]stairs.StairType{
	btnWood:    stairs.Wood,
	btnModular: stairs.Modular,
}

var configChoices = map[string]layout.Config{
	btnStraight: layout.Straight,
	btnLShape:   layout.LShape,
	btnUShape:   layout.UShape,
}

// Button is an inline button; Data comes back as a callback.
type Button struct {
	Text string
	Data string
}

// Reply is one outgoing message. Keyboard is a one-time reply keyboard,
// Inline a column of inline buttons.
type Reply struct {
	Text     string
	Markdown bool
	Keyboard [][]string
	Inline   []Button
}

type session struct {
	state state
	req   stairs.Request
}

type Bot struct {
	Calc    *stairs.Calculator
	Catalog *catalog.Store
	Now     func() time.Time

	mu       sync.Mutex
	sessions map[int64]*session
}

func New(calc *stairs.Calculator, store *catalog.Store) *Bot {
	return &Bot{Calc: calc, Catalog: store, Now: time.Now, sessions: make(map[int64]*session)}
}

// HandleMessage answers a text message from a chat. name is the sender's first name.
func (b *Bot) HandleMessage(chatID int64, name, text string) []Reply {
	text = strings.TrimSpace(text)
	cmd, arg, _ := strings.Cut(text, " ")
	switch {
	case cmd == "/start" || text == btnRestart:
		b.reset(chatID)
		return []Reply{welcome(name)}
	case cmd == "/article":
		return []Reply{b.article(strings.TrimSpace(arg))}
	case cmd == "/search":
		return []Reply{b.search(strings.TrimSpace(arg))}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok || s.state == stateIdle {
		return []Reply{{Text: "Нажмите /start, чтобы начать расчет."}}
	}

	switch s.state {
	case stateType:
		t, ok := typeChoices[text]
		if !ok {
			return []Reply{typePrompt()}
		}
		s.req.StairType = t
		s.state = stateConfig
		return []Reply{configPrompt()}

	case stateConfig:
		c, ok := configChoices[text]
		if !ok {
			return []Reply{configPrompt()}
		}
		s.req.Config = c
		s.state = stateHeight
		return []Reply{heightPrompt()}

	case stateHeight:
		h, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
		if err != nil {
			return []Reply{{Text: "❌ Пожалуйста, введите число", Keyboard: restartKeyboard()}}
		}
		if h < stairs.MinHeightMM || h > stairs.MaxHeightMM {
			return []Reply{{
				Text:     fmt.Sprintf("❌ Высота должна быть от %d до %d мм", stairs.MinHeightMM, stairs.MaxHeightMM),
				Keyboard: restartKeyboard(),
			}}
		}
		s.req.HeightMM = h
		s.state = stateWidth
		lay := layout.Resolve(layout.Input{HeightMM: h, Config: s.req.Config, StepHeightMM: b.Calc.StepHeightMM})
		return []Reply{widthPrompt(lay)}

	case stateWidth:
		w, err := strconv.Atoi(text)
		if err != nil || !stairs.ValidStepWidth(w) {
			return []Reply{{Text: "❌ Пожалуйста, выберите ширину ступени из предложенных вариантов", Keyboard: widthKeyboard()}}
		}
		s.req.StepWidthMM = w
		req := s.req
		delete(b.sessions, chatID)

		res := b.Calc.Calculate(req)
		res.ID = stairs.NewID()
		stairs.LogMissing(res)
		return []Reply{
			{Text: FormatResult(res, b.Now()), Markdown: true},
			{Text: "Хотите выполнить новый расчет?", Inline: menuButtons()},
		}
	}
	return nil
}

// HandleCallback answers an inline button press.
func (b *Bot) HandleCallback(chatID int64, name, data string) []Reply {
	switch data {
	case cbCalculate:
		b.mu.Lock()
		b.sessions[chatID] = &session{state: stateType}
		b.mu.Unlock()
		return []Reply{typePrompt()}
	case cbRestart:
		b.reset(chatID)
		return []Reply{welcome(name)}
	}
	return nil
}

func (b *Bot) reset(chatID int64) {
	b.mu.Lock()
	delete(b.sessions, chatID)
	b.mu.Unlock()
}

func (b *Bot) article(article string) Reply {
	if article == "" {
		return Reply{Text: "Использование: /article <артикул>"}
	}
	e, ok := b.Catalog.Lookup(article)
	if !ok {
		return Reply{Text: fmt.Sprintf("Артикул %s не найден", article)}
	}
	return Reply{Text: formatEntry(e)}
}

func (b *Bot) search(term string) Reply {
	if term == "" {
		return Reply{Text: "Использование: /search <название>"}
	}
	found := b.Catalog.Search(term)
	if len(found) == 0 {
		return Reply{Text: "Ничего не найдено"}
	}
	var sb strings.Builder
	for i, e := range found {
		if i == maxSearchResults {
			fmt.Fprintf(&sb, "… и еще %d", len(found)-maxSearchResults)
			break
		}
		sb.WriteString(formatEntry(e))
		sb.WriteString("\n")
	}
	return Reply{Text: strings.TrimRight(sb.String(), "\n")}
}

func welcome(name string) Reply {
	greeting := "👋 Добро пожаловать!"
	if name != "" {
		greeting = fmt.Sprintf("👋 Добро пожаловать, %s!", escapeMarkdown(name))
	}
	return Reply{
		Text: greeting + "\nЯ твой помощник в расчете лестниц.\n\n" +
			"📋 *Выберите тип лестницы:*\n" +
			"• 🏠 *Деревянная* - из отдельных элементов\n" +
			"• ⚡ *Модульная* - металлическая система",
		Markdown: true,
		Inline:   menuButtons(),
	}
}

func menuButtons() []Button {
	return []Button{
		{Text: "🔄 Рассчитать лестницу", Data: cbCalculate},
		{Text: btnRestart, Data: cbRestart},
	}
}

func restartKeyboard() [][]string {
	return [][]string{{btnRestart}}
}

func typePrompt() Reply {
	return Reply{
		Text: "📋 *Выберите тип лестницы:*\n" +
			"• 🏠 *Деревянная* - из отдельных элементов\n" +
			"• ⚡ *Модульная* - металлическая система",
		Markdown: true,
		Keyboard: [][]string{{btnWood, btnModular}, {btnRestart}},
	}
}

func configPrompt() Reply {
	return Reply{
		Text: "📐 *Выберите конфигурацию лестницы:*\n\n" +
			"• 📏 *Прямая* - одномаршевая лестница\n" +
			"• 📐 *Г-образная* - с поворотом на 90°\n" +
			"• 🔄 *П-образная* - с поворотом на 180°",
		Markdown: true,
		Keyboard: [][]string{{btnStraight, btnLShape, btnUShape}, {btnRestart}},
	}
}

func heightPrompt() Reply {
	return Reply{
		Text: "📏 *Введите высоту лестницы (мм):*\n\n" +
			"Пример: 2800 (для высоты 2.8 метра)\n" +
			fmt.Sprintf("Диапазон: %d-%d мм", stairs.MinHeightMM, stairs.MaxHeightMM),
		Markdown: true,
		Keyboard: restartKeyboard(),
	}
}

func widthKeyboard() [][]string {
	row := make([]string, 0, len(stairs.StepWidthsMM))
	for _, w := range stairs.StepWidthsMM {
		row = append(row, strconv.Itoa(w))
	}
	return [][]string{row, {btnRestart}}
}

func widthPrompt(lay layout.Result) Reply {
	return Reply{
		Text: "📊 *Расчет ступеней:*\n\n" +
			fmt.Sprintf("• Высота: %.0f мм\n", lay.HeightMM) +
			fmt.Sprintf("• Количество ступеней: %d\n", lay.StepsCount) +
			fmt.Sprintf("• Высота ступени: %.1f мм\n\n", lay.ActualStepHeightMM) +
			"📏 *Выберите ширину ступени:*\n" +
			"• 900 мм - компактная\n" +
			"• 1000 мм - стандартная\n" +
			"• 1200 мм - широкая",
		Markdown: true,
		Keyboard: widthKeyboard(),
	}
}
