// Package scrape refreshes catalog prices from the retailer's search page.
package scrape

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"Stairs/internal/catalog"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

type Scraper struct {
	BaseURL string
	Client  *http.Client
	Limiter *rate.Limiter
}

// New paces requests at rps so the retailer does not block us.
func New(baseURL string, rps float64) *Scraper {
	if rps <= 0 {
		rps = 1
	}
	return &Scraper{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
		Limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Price looks the article up and returns the first price shown on the page.
// ok is false when the page has no price element or shows a zero price.
func (s *Scraper) Price(ctx context.Context, article string) (decimal.Decimal, bool, error) {
	if err := s.Limiter.Wait(ctx); err != nil {
		return decimal.Zero, false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+url.QueryEscape(article), nil)
	if err != nil {
		return decimal.Zero, false, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	res, err := s.Client.Do(req)
	if err != nil {
		return decimal.Zero, false, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return decimal.Zero, false, fmt.Errorf("search %s: status %d", article, res.StatusCode)
	}
	doc, err := html.Parse(res.Body)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parse %s: %w", article, err)
	}
	digits := findPrice(doc)
	if digits == "" {
		return decimal.Zero, false, nil
	}
	price, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, false, err
	}
	if !price.IsPositive() {
		return decimal.Zero, false, nil
	}
	return price, true, nil
}

// Update returns a copy of entries with prices replaced where the retailer
// shows a different one, and how many changed. Lookup failures keep the old price.
func (s *Scraper) Update(ctx context.Context, entries []catalog.Entry) ([]catalog.Entry, int) {
	out := make([]catalog.Entry, len(entries))
	copy(out, entries)
	updated := 0
	for i, e := range out {
		if ctx.Err() != nil {
			break
		}
		price, ok, err := s.Price(ctx, e.Article)
		if err != nil {
			log.Printf("scrape: article %s: %v", e.Article, err)
			continue
		}
		if !ok {
			log.Printf("scrape: no price for article %s", e.Article)
			continue
		}
		if !price.Equal(e.Price) {
			out[i].Price = price
			updated++
			log.Printf("scrape: article %s price %s -> %s", e.Article, e.Price, price)
		}
	}
	return out, updated
}

// findPrice walks the document in order and returns the digits of the first
// element that looks like a price: a class containing "price" or a data-price attribute.
func findPrice(n *html.Node) string {
	if n.Type == html.ElementNode && isPriceNode(n) {
		if d := digitsOnly(text(n)); d != "" {
			return d
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if d := findPrice(c); d != "" {
			return d
		}
	}
	return ""
}

func isPriceNode(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key == "data-price" {
			return true
		}
		if a.Key == "class" && strings.Contains(strings.ToLower(a.Val), "price") {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(text(c))
	}
	return b.String()
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
