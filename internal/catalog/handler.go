package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type Handler struct {
	Store *Store
}

func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	article := mux.Vars(r)["article"]
	entry, ok := h.Store.Lookup(article)
	if !ok {
		http.Error(w, "Material not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		http.Error(w, "Query parameter q required", http.StatusBadRequest)
		return
	}
	res := h.Store.Search(term)
	if res == nil {
		res = []Entry{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
