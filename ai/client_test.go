package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studydeck/studydeck-api/models"
)

func TestGroupFlashcardsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/group-flashcards", r.URL.Path)

		var req struct {
			Flashcards []models.Card `json:"flashcards"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Flashcards, 2)

		json.NewEncoder(w).Encode(GroupResult{
			Success: true,
			Grouping: &models.Grouping{Groups: []models.Group{
				{Title: "Pets", CardIndices: []int{0, 1}},
			}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result := client.GroupFlashcards(context.Background(), []models.Card{
		{Term: "Cat", Definition: "feline"},
		{Term: "Dog", Definition: "canine"},
	})

	require.True(t, result.Success)
	require.NotNil(t, result.Grouping)
	assert.Equal(t, "Pets", result.Grouping.Groups[0].Title)
}

func TestFailureEnvelopePassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "no API key configured"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result := client.GenerateDescription(context.Background(), "Pets", nil)

	assert.False(t, result.Success)
	assert.Equal(t, "no API key configured", result.Error)
}

func TestMalformedResponseBecomesFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result := client.GroupFlashcards(context.Background(), nil)

	assert.False(t, result.Success, "undecodable payload is a failed call, not a panic or error return")
	assert.NotEmpty(t, result.Error)
}

func TestUnreachableServiceBecomesFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(server.URL)

	group := client.GroupFlashcards(context.Background(), nil)
	assert.False(t, group.Success)
	assert.NotEmpty(t, group.Error)

	desc := client.GenerateDescription(context.Background(), "Pets", nil)
	assert.False(t, desc.Success)

	health := client.Health(context.Background())
	assert.Equal(t, "error", health.Status)
	assert.False(t, health.HasAPIKey)
}

func TestChatDefaultsModel(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string    `json:"model"`
			Messages []Message `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel = req.Model
		json.NewEncoder(w).Encode(ChatResult{Success: true, Message: "hi"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result := client.Chat(context.Background(), []Message{{Role: "user", Content: "hello"}}, "")

	require.True(t, result.Success)
	assert.Equal(t, DefaultChatModel, gotModel)
}

func TestHealthReportsServiceStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)
		json.NewEncoder(w).Encode(HealthResult{Status: "ok", HasAPIKey: true})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	health := client.Health(context.Background())

	assert.Equal(t, "ok", health.Status)
	assert.True(t, health.HasAPIKey)
}
