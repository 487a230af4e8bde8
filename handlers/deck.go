package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

// GET /api/deck
func (h *Handler) GetDeck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Deck.Snapshot())
}

// POST /api/deck/advance
func (h *Handler) AdvanceDeck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.WithError(err).Warn("AdvanceDeck: invalid request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Delta == 0 {
		req.Delta = 1
	}

	idx := h.Deck.Advance(req.Delta)
	writeJSON(w, http.StatusOK, map[string]int{"currentIndex": idx})
}

// POST /api/deck/cards/{index}/star
func (h *Handler) ToggleStar(w http.ResponseWriter, r *http.Request) {
	idx, ok := cardIndex(w, r)
	if !ok {
		return
	}
	h.Deck.ToggleStar(idx)
	writeJSON(w, http.StatusOK, h.Deck.Snapshot())
}

// POST /api/deck/cards/{index}/viewed
func (h *Handler) MarkViewed(w http.ResponseWriter, r *http.Request) {
	idx, ok := cardIndex(w, r)
	if !ok {
		return
	}
	h.Deck.MarkViewed(idx)
	writeJSON(w, http.StatusOK, h.Deck.Snapshot())
}

// POST /api/deck/reset
func (h *Handler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	h.Deck.ResetProgress()
	writeJSON(w, http.StatusOK, h.Deck.Snapshot())
}

// cardIndex parses the {index} path value. A negative or non-numeric index is
// a client error; an in-range check is left to the deck, where stale indices
// after a deck replace are silently ignored.
func cardIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || idx < 0 {
		http.Error(w, "Invalid card index", http.StatusBadRequest)
		return 0, false
	}
	return idx, true
}
