package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/studydeck/studydeck-api/catalog"
	"github.com/studydeck/studydeck-api/models"
)

// GET /api/catalog
func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	sets, err := h.Catalog.List(r.Context())
	if err != nil {
		// Storage trouble degrades to an empty listing, never an error page.
		logrus.WithError(err).Error("ListCatalog: list failed")
		sets = []models.SavedSet{}
	}

	catalog.FlagActive(sets, h.Deck.Title(), h.Deck.Len())

	if sets == nil {
		sets = []models.SavedSet{}
	}
	writeJSON(w, http.StatusOK, sets)
}

type savedSetRequest struct {
	Title       string           `json:"title"`
	Flashcards  []models.Card    `json:"flashcards"`
	Grouping    *models.Grouping `json:"grouping,omitempty"`
	Description string           `json:"description,omitempty"`
	TesterName  string           `json:"testerName,omitempty"`
}

// POST /api/catalog
func (h *Handler) CreateSavedSet(w http.ResponseWriter, r *http.Request) {
	var req savedSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.WithError(err).Warn("CreateSavedSet: invalid request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Flashcards) == 0 {
		http.Error(w, "A set needs at least one flashcard", http.StatusBadRequest)
		return
	}

	id, err := h.Catalog.Create(r.Context(), req.Title, req.Flashcards, req.Grouping, req.Description, req.TesterName)
	if err != nil {
		logrus.WithError(err).Error("CreateSavedSet: create failed")
		http.Error(w, "Failed to save set", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// PUT /api/catalog/{contentID}
func (h *Handler) UpdateSavedSet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("contentID")
	if id == "" {
		http.Error(w, "Content ID is required", http.StatusBadRequest)
		return
	}

	var req savedSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.WithError(err).Warn("UpdateSavedSet: invalid request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Flashcards) == 0 {
		http.Error(w, "A set needs at least one flashcard", http.StatusBadRequest)
		return
	}

	err := h.Catalog.Update(r.Context(), id, req.Title, req.Flashcards, req.Grouping, req.Description, req.TesterName)
	if err != nil {
		logrus.WithError(err).Error("UpdateSavedSet: update failed")
		http.Error(w, "Failed to update set", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// DELETE /api/catalog/{contentID}?confirm=true
//
// Deleting is the one destructive action here, so the client must send the
// explicit confirmation flag gathered from the user.
func (h *Handler) DeleteSavedSet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("contentID")
	if id == "" {
		http.Error(w, "Content ID is required", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("confirm") != "true" {
		http.Error(w, "Deletion requires confirmation", http.StatusBadRequest)
		return
	}

	deleted, found := h.Catalog.Get(r.Context(), id)

	if err := h.Catalog.Delete(r.Context(), id); err != nil {
		logrus.WithError(err).Error("DeleteSavedSet: delete failed")
		http.Error(w, "Failed to delete set", http.StatusInternalServerError)
		return
	}

	// If the deleted set backs the currently loaded deck, drop the persisted
	// current-content blob so it does not resurface next session.
	if found && deleted.Title == h.Deck.Title() {
		h.Deck.ClearCurrent()
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "success"})
}

// POST /api/catalog/{contentID}/load
func (h *Handler) LoadSavedSet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("contentID")
	set, ok := h.Catalog.Get(r.Context(), id)
	if !ok {
		logrus.WithField("id", id).Warn("LoadSavedSet: not found")
		http.Error(w, fmt.Sprintf("Set with ID %s not found", id), http.StatusNotFound)
		return
	}

	h.Deck.LoadSaved(set)
	writeJSON(w, http.StatusOK, h.Deck.Snapshot())
}
