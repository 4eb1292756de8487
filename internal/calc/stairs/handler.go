package stairs

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type Handler struct {
	Calc *Calculator
}

func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var input Request
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res := h.Calc.Calculate(input)
	res.ID = NewID()
	LogMissing(res)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var input BatchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := h.Calc.CalculateBatch(input)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) || errors.Is(err, ErrNoItems) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Calculation error", http.StatusInternalServerError)
		return
	}
	for i := range res.Results {
		res.Results[i].ID = NewID()
		LogMissing(res.Results[i])
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// LogMissing reports fixed articles the catalog could not resolve.
func LogMissing(res Result) {
	for _, a := range res.MissingArticles {
		log.Printf("catalog: article %s not found, line omitted from %s", a, res.ID)
	}
}
