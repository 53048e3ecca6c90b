package handlers

import (
	"net/http"
	"strings"
)

// NormalizeResponse is returned by NormalizeSearch.
type NormalizeResponse struct {
	Query      string `json:"query"`
	Normalized string `json:"normalized"`
	Converted  bool   `json:"converted"`
}

// NormalizeSearch converts a search query from Traditional to Simplified
// Chinese so titles match regardless of the script they were typed in.
// Conversion failures return the query unchanged.
func (h *Handlers) NormalizeSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	normalized := query
	if h.text != nil {
		normalized = h.text.Convert(query)
	}

	writeJSONCode(w, NormalizeResponse{
		Query:      query,
		Normalized: normalized,
		Converted:  normalized != query,
	}, http.StatusOK)
}
