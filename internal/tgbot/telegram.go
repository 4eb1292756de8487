package tgbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

const apiURL = "https://api.telegram.org"

type Update struct {
	UpdateID      int            `json:"update_id"`
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

type Message struct {
	MessageID int    `json:"message_id"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Data    string   `json:"data"`
	Message *Message `json:"message"`
}

type UpdateResponse struct {
	OK          bool     `json:"ok"`
	Description string   `json:"description"`
	Result      []Update `json:"result"`
}

// Client is a minimal Bot API client: long polling, sending and callback acks.
type Client struct {
	Token   string
	BaseURL string
	HTTP    *http.Client
}

func NewClient(token string) *Client {
	return &Client{Token: token, BaseURL: apiURL, HTTP: &http.Client{Timeout: 30 * time.Second}}
}

func (c *Client) method(name string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.BaseURL, c.Token, name)
}

func (c *Client) GetUpdates(ctx context.Context, offset int) ([]Update, error) {
	url := fmt.Sprintf("%s?timeout=20&offset=%d", c.method("getUpdates"), offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	var out UpdateResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	if !out.OK {
		return nil, fmt.Errorf("getUpdates: %s", out.Description)
	}
	return out.Result, nil
}

type keyboardButton struct {
	Text string `json:"text"`
}

type replyKeyboard struct {
	Keyboard        [][]keyboardButton `json:"keyboard"`
	OneTimeKeyboard bool               `json:"one_time_keyboard"`
	ResizeKeyboard  bool               `json:"resize_keyboard"`
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type sendMessage struct {
	ChatID      int64  `json:"chat_id"`
	Text        string `json:"text"`
	ParseMode   string `json:"parse_mode,omitempty"`
	ReplyMarkup any    `json:"reply_markup,omitempty"`
}

func newSendMessage(chatID int64, r Reply) sendMessage {
	msg := sendMessage{ChatID: chatID, Text: r.Text}
	if r.Markdown {
		msg.ParseMode = "Markdown"
	}
	switch {
	case len(r.Inline) > 0:
		kb := inlineKeyboard{}
		for _, b := range r.Inline {
			kb.InlineKeyboard = append(kb.InlineKeyboard, []inlineButton{{Text: b.Text, CallbackData: b.Data}})
		}
		msg.ReplyMarkup = kb
	case len(r.Keyboard) > 0:
		kb := replyKeyboard{OneTimeKeyboard: true, ResizeKeyboard: true}
		for _, row := range r.Keyboard {
			var buttons []keyboardButton
			for _, text := range row {
				buttons = append(buttons, keyboardButton{Text: text})
			}
			kb.Keyboard = append(kb.Keyboard, buttons)
		}
		msg.ReplyMarkup = kb
	}
	return msg
}

func (c *Client) Send(ctx context.Context, chatID int64, r Reply) error {
	return c.post(ctx, "sendMessage", newSendMessage(chatID, r))
}

func (c *Client) AnswerCallback(ctx context.Context, id string) error {
	return c.post(ctx, "answerCallbackQuery", map[string]any{"callback_query_id": id})
}

func (c *Client) post(ctx context.Context, method string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.method(method), bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d", method, res.StatusCode)
	}
	return nil
}

// Dispatch routes one update to the bot and sends its replies.
func Dispatch(ctx context.Context, c *Client, b *Bot, u Update) {
	var chatID int64
	var replies []Reply
	switch {
	case u.CallbackQuery != nil:
		cb := u.CallbackQuery
		if err := c.AnswerCallback(ctx, cb.ID); err != nil {
			log.Println("answerCallback error:", err)
		}
		if cb.Message == nil {
			return
		}
		chatID = cb.Message.Chat.ID
		replies = b.HandleCallback(chatID, cb.From.FirstName, cb.Data)
	case u.Message != nil && u.Message.Text != "":
		chatID = u.Message.Chat.ID
		name := ""
		if u.Message.From != nil {
			name = u.Message.From.FirstName
		}
		replies = b.HandleMessage(chatID, name, u.Message.Text)
	default:
		return
	}
	for _, r := range replies {
		if err := c.Send(ctx, chatID, r); err != nil {
			log.Printf("sendMessage to %d error: %v", chatID, err)
		}
	}
}

// Run long-polls for updates until ctx is done.
func Run(ctx context.Context, c *Client, b *Bot) {
	offset := 0
	for ctx.Err() == nil {
		updates, err := c.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Println("getUpdates error:", err)
			sleep(ctx, 2*time.Second)
			continue
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			Dispatch(ctx, c, b, u)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
