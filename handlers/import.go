package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/studydeck/studydeck-api/importer"
)

// POST /api/import
//
// Runs the full import pipeline: parse, deck replace, parallel AI grouping
// and description with fallbacks, then save. With editingId set, the existing
// saved set is rewritten under its id instead of creating a new entry.
func (h *Handler) ImportSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title      string `json:"title"`
		Content    string `json:"content"`
		TesterName string `json:"testerName"`
		EditingID  string `json:"editingId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.WithError(err).Warn("ImportSet: invalid request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.Importer.Import(r.Context(), importer.Request{
		Title:      req.Title,
		Text:       req.Content,
		TesterName: req.TesterName,
		EditingID:  req.EditingID,
	})
	if errors.Is(err, importer.ErrNoCards) {
		http.Error(w, "Could not parse any flashcards from the content. Make sure each line has a term and definition separated by a tab character.", http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		logrus.WithError(err).Error("ImportSet: import failed")
		http.Error(w, "Failed to import set", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}
