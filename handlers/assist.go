package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/studydeck/studydeck-api/ai"
)

// Study-mode assistance routes: thin pass-throughs to the AI collaborator.
// The collaborator's tagged success/error envelope is returned as-is, so a
// failed call is still a 200 with {"success": false} — clients fall back on
// their own, same as every other AI-backed feature.

// GET /api/assist/health
func (h *Handler) AssistHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.AI.Health(r.Context()))
}

// POST /api/assist/chat
func (h *Handler) AssistChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Messages []ai.Message `json:"messages"`
		Model    string       `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.WithError(err).Warn("AssistChat: invalid request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.AI.Chat(r.Context(), req.Messages, req.Model))
}

// POST /api/assist/explain
func (h *Handler) AssistExplain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Term       string `json:"term"`
		Definition string `json:"definition"`
		Question   string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.WithError(err).Warn("AssistExplain: invalid request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.AI.Explain(r.Context(), req.Term, req.Definition, req.Question))
}

// POST /api/assist/quiz
func (h *Handler) AssistQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Term       string `json:"term"`
		Definition string `json:"definition"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.WithError(err).Warn("AssistQuiz: invalid request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.AI.GenerateQuiz(r.Context(), req.Term, req.Definition))
}

// POST /api/assist/generate-flashcards
func (h *Handler) AssistGenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text  string `json:"text"`
		Count int    `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.WithError(err).Warn("AssistGenerateFlashcards: invalid request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Count <= 0 {
		req.Count = 10
	}
	writeJSON(w, http.StatusOK, h.AI.GenerateFlashcards(r.Context(), req.Text, req.Count))
}
