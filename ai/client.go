// Package ai is the client for the external text-generation service that
// groups cards into topics, writes set descriptions, and powers study-mode
// assistance. Every call returns a tagged success/failure envelope instead of
// an error: a collaborator failure is never fatal to the operation around it,
// callers adopt fallback content and move on. No retries; one attempt per
// request.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/studydeck/studydeck-api/models"
)

// DefaultChatModel is used when a chat request does not name a model.
const DefaultChatModel = "gpt-4o-mini"

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the collaborator service rooted at baseURL
// (e.g. "http://localhost:3000/api"). No client-side timeout is imposed; a
// hung call delays the caller's fallback decision until the transport gives
// up.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type HealthResult struct {
	Status    string `json:"status"`
	HasAPIKey bool   `json:"hasApiKey"`
}

type ChatResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type FlashcardsResult struct {
	Success    bool          `json:"success"`
	Flashcards []models.Card `json:"flashcards,omitempty"`
	Error      string        `json:"error,omitempty"`
}

type ExplainResult struct {
	Success     bool   `json:"success"`
	Explanation string `json:"explanation,omitempty"`
	Error       string `json:"error,omitempty"`
}

type QuizResult struct {
	Success bool   `json:"success"`
	Quiz    string `json:"quiz,omitempty"`
	Error   string `json:"error,omitempty"`
}

type GroupResult struct {
	Success  bool             `json:"success"`
	Grouping *models.Grouping `json:"grouping,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type DescriptionResult struct {
	Success     bool   `json:"success"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Health reports whether the collaborator is reachable and configured.
func (c *Client) Health(ctx context.Context) HealthResult {
	var result HealthResult
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthResult{Status: "error"}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		logrus.WithError(err).Warn("ai health check failed")
		return HealthResult{Status: "error"}
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logrus.WithError(err).Warn("ai health check: bad response")
		return HealthResult{Status: "error"}
	}
	return result
}

// Chat sends a conversation to the collaborator. An empty model selects
// DefaultChatModel.
func (c *Client) Chat(ctx context.Context, messages []Message, model string) ChatResult {
	if model == "" {
		model = DefaultChatModel
	}
	var result ChatResult
	if err := c.post(ctx, "/chat", map[string]any{"messages": messages, "model": model}, &result); err != nil {
		return ChatResult{Error: err.Error()}
	}
	return result
}

// GenerateFlashcards asks the collaborator to draft cards from free text.
func (c *Client) GenerateFlashcards(ctx context.Context, text string, count int) FlashcardsResult {
	var result FlashcardsResult
	if err := c.post(ctx, "/generate-flashcards", map[string]any{"text": text, "count": count}, &result); err != nil {
		return FlashcardsResult{Error: err.Error()}
	}
	return result
}

// Explain asks for an explanation of one card, optionally answering a
// follow-up question.
func (c *Client) Explain(ctx context.Context, term, definition, question string) ExplainResult {
	body := map[string]any{"term": term, "definition": definition}
	if question != "" {
		body["question"] = question
	}
	var result ExplainResult
	if err := c.post(ctx, "/explain", body, &result); err != nil {
		return ExplainResult{Error: err.Error()}
	}
	return result
}

// GenerateQuiz asks for a quiz question over one card.
func (c *Client) GenerateQuiz(ctx context.Context, term, definition string) QuizResult {
	var result QuizResult
	if err := c.post(ctx, "/quiz", map[string]any{"term": term, "definition": definition}, &result); err != nil {
		return QuizResult{Error: err.Error()}
	}
	return result
}

// GroupFlashcards asks the collaborator to partition a deck into topics.
func (c *Client) GroupFlashcards(ctx context.Context, cards []models.Card) GroupResult {
	var result GroupResult
	if err := c.post(ctx, "/group-flashcards", map[string]any{"flashcards": cards}, &result); err != nil {
		logrus.WithError(err).Warn("group flashcards call failed")
		return GroupResult{Error: err.Error()}
	}
	return result
}

// GenerateDescription asks for a short description of a set.
func (c *Client) GenerateDescription(ctx context.Context, title string, cards []models.Card) DescriptionResult {
	var result DescriptionResult
	if err := c.post(ctx, "/generate-description", map[string]any{"title": title, "flashcards": cards}, &result); err != nil {
		logrus.WithError(err).Warn("generate description call failed")
		return DescriptionResult{Error: err.Error()}
	}
	return result
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("ai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("ai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ai: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ai: parse response from %s: %w", path, err)
	}
	return nil
}
