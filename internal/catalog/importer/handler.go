package importer

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"Stairs/internal/auth"
	"Stairs/internal/catalog"
)

const maxUpload = 10 << 20

// Persister stores an imported catalog so it survives restarts.
type Persister interface {
	ReplaceEntries(ctx context.Context, entries []catalog.Entry) error
}

// PriceUpdater returns entries with current retailer prices and the number changed.
type PriceUpdater interface {
	Update(ctx context.Context, entries []catalog.Entry) ([]catalog.Entry, int)
}

type Handler struct {
	Store   *catalog.Store
	Repo    Persister // nil when no database is configured
	Scraper PriceUpdater
}

type ImportResult struct {
	Count   int  `json:"count"`
	Updated int  `json:"updated,omitempty"`
	Stored  bool `json:"stored"`
}

// Import replaces the catalog with an uploaded xlsx price list (form field "file").
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	entries, err := catalog.ReadWorkbookFrom(file)
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	if len(entries) == 0 {
		http.Error(w, "No valid rows", http.StatusBadRequest)
		return
	}
	h.publish(w, r, entries, 0)
}

// Scrape refreshes prices of the current catalog from the retailer site.
func (h *Handler) Scrape(w http.ResponseWriter, r *http.Request) {
	if h.Scraper == nil {
		http.Error(w, "Scraper not configured", http.StatusServiceUnavailable)
		return
	}
	current := h.Store.All()
	if len(current) == 0 {
		http.Error(w, "Catalog is empty", http.StatusConflict)
		return
	}
	entries, updated := h.Scraper.Update(r.Context(), current)
	if updated == 0 {
		writeJSON(w, ImportResult{Count: len(entries)})
		return
	}
	h.publish(w, r, entries, updated)
}

func (h *Handler) publish(w http.ResponseWriter, r *http.Request, entries []catalog.Entry, updated int) {
	res := ImportResult{Count: len(entries), Updated: updated}
	if h.Repo != nil {
		if err := h.Repo.ReplaceEntries(r.Context(), entries); err != nil {
			log.Printf("catalog import: store: %v", err)
			http.Error(w, "DB error", http.StatusInternalServerError)
			return
		}
		res.Stored = true
	}
	h.Store.Refresh(entries)

	login, _ := auth.AdminLogin(r.Context())
	log.Printf("catalog import by %q: %d entries, %d prices updated", login, res.Count, updated)
	writeJSON(w, res)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
