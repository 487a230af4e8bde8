package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/studydeck/studydeck-api/store"
)

// View display preferences (variant choice, sort/filter modes, panel widths)
// are an opaque JSON object owned by the clients; the core only persists it.

// GET /api/preferences
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.KV.Get(store.KeyPreferences)
	if !ok {
		raw = "{}"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, raw)
}

// PUT /api/preferences
func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		logrus.Warn("PutPreferences: invalid JSON body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.KV.Set(store.KeyPreferences, string(body))
	writeJSON(w, http.StatusOK, map[string]string{"message": "success"})
}
