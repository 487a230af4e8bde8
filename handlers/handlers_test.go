package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studydeck/studydeck-api/ai"
	"github.com/studydeck/studydeck-api/catalog"
	"github.com/studydeck/studydeck-api/deck"
	"github.com/studydeck/studydeck-api/importer"
	"github.com/studydeck/studydeck-api/models"
	"github.com/studydeck/studydeck-api/store"
)

type fakeKV struct {
	m map[string]string
}

func (f *fakeKV) Get(key string) (string, bool) {
	v, ok := f.m[key]
	return v, ok
}

func (f *fakeKV) Set(key, value string) {
	f.m[key] = value
}

func (f *fakeKV) Remove(key string) {
	delete(f.m, key)
}

type fakeRecords struct {
	mu    sync.Mutex
	items []models.SavedSet
}

func (f *fakeRecords) List(ctx context.Context) ([]models.SavedSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SavedSet(nil), f.items...), nil
}

func (f *fakeRecords) Insert(ctx context.Context, set models.SavedSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, set)
	return nil
}

func (f *fakeRecords) Update(ctx context.Context, id string, set models.SavedSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			set.ID = id
			f.items[i] = set
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeRecords) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.items[:0]
	for _, item := range f.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	f.items = kept
	return nil
}

type fakeAI struct{}

func (fakeAI) GroupFlashcards(ctx context.Context, cards []models.Card) ai.GroupResult {
	return ai.GroupResult{Error: "service unavailable"}
}

func (fakeAI) GenerateDescription(ctx context.Context, title string, cards []models.Card) ai.DescriptionResult {
	return ai.DescriptionResult{Error: "service unavailable"}
}

func newTestServer() (*http.ServeMux, *Handler) {
	records := &fakeRecords{}
	cat := catalog.New(records)
	kv := &fakeKV{m: make(map[string]string)}
	deckState := deck.NewState(kv)
	h := &Handler{
		Deck:     deckState,
		Catalog:  cat,
		Importer: importer.New(deckState, cat, fakeAI{}),
		KV:       kv,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/catalog", h.ListCatalog)
	mux.HandleFunc("POST /api/catalog", h.CreateSavedSet)
	mux.HandleFunc("PUT /api/catalog/{contentID}", h.UpdateSavedSet)
	mux.HandleFunc("DELETE /api/catalog/{contentID}", h.DeleteSavedSet)
	mux.HandleFunc("POST /api/catalog/{contentID}/load", h.LoadSavedSet)
	mux.HandleFunc("GET /api/deck", h.GetDeck)
	mux.HandleFunc("POST /api/deck/advance", h.AdvanceDeck)
	mux.HandleFunc("POST /api/deck/cards/{index}/star", h.ToggleStar)
	mux.HandleFunc("POST /api/deck/cards/{index}/viewed", h.MarkViewed)
	mux.HandleFunc("POST /api/deck/reset", h.ResetProgress)
	mux.HandleFunc("POST /api/import", h.ImportSet)
	mux.HandleFunc("GET /api/preferences", h.GetPreferences)
	mux.HandleFunc("PUT /api/preferences", h.PutPreferences)
	return mux, h
}

func do(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func importPets(t *testing.T, mux *http.ServeMux) importer.Result {
	t.Helper()
	w := do(t, mux, http.MethodPost, "/api/import",
		`{"title":"Pets","content":"Cat\tA small domesticated feline\nDog\tA domesticated canine","testerName":"sam"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result importer.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func TestImportThenListAndStudy(t *testing.T) {
	mux, _ := newTestServer()

	result := importPets(t, mux)
	assert.Equal(t, 2, result.CardCount)
	assert.Equal(t, "A study set with 2 terms to help you learn and review key concepts.", result.Description)

	// The catalog gained exactly one entry, flagged active.
	w := do(t, mux, http.MethodGet, "/api/catalog", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sets []models.SavedSet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sets))
	require.Len(t, sets, 1)
	assert.Equal(t, "Pets", sets[0].Title)
	assert.Equal(t, 2, sets[0].CardCount)
	assert.True(t, sets[0].Active)

	// The deck is live with the parsed cards and the default grouping.
	w = do(t, mux, http.MethodGet, "/api/deck", "")
	require.Equal(t, http.StatusOK, w.Code)
	var snap deck.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.Len(t, snap.Cards, 2)
	assert.Equal(t, "Cat", snap.Cards[0].Term)
	require.Len(t, snap.Grouping.Groups, 1)
	assert.Equal(t, []int{0, 1}, snap.Grouping.Groups[0].CardIndices)
	assert.Equal(t, 0, snap.Progress)

	// Study one card; progress moves.
	w = do(t, mux, http.MethodPost, "/api/deck/cards/0/viewed", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, []int{0}, snap.Viewed)
	assert.Equal(t, 50, snap.Progress)
	assert.True(t, snap.HasEngaged)
}

func TestImportUnparseableContent(t *testing.T) {
	mux, _ := newTestServer()

	w := do(t, mux, http.MethodPost, "/api/import", `{"title":"Oops","content":"no tabs in here"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Nothing was committed.
	list := do(t, mux, http.MethodGet, "/api/catalog", "")
	var sets []models.SavedSet
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &sets))
	assert.Empty(t, sets)
}

func TestAdvanceWrapsAround(t *testing.T) {
	mux, _ := newTestServer()
	importPets(t, mux)

	w := do(t, mux, http.MethodPost, "/api/deck/advance", `{"delta":-1}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp["currentIndex"], "backward from the first of two cards wraps to the last")
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	mux, _ := newTestServer()
	result := importPets(t, mux)

	w := do(t, mux, http.MethodDelete, "/api/catalog/"+result.ID, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "unconfirmed delete is rejected")

	w = do(t, mux, http.MethodDelete, "/api/catalog/"+result.ID+"?confirm=true", "")
	require.Equal(t, http.StatusOK, w.Code)

	list := do(t, mux, http.MethodGet, "/api/catalog", "")
	var sets []models.SavedSet
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &sets))
	assert.Empty(t, sets)
}

func TestEditViaImportKeepsCatalogSize(t *testing.T) {
	mux, _ := newTestServer()
	result := importPets(t, mux)

	w := do(t, mux, http.MethodPost, "/api/import",
		`{"title":"Pets v2","content":"Cat\tfeline","editingId":"`+result.ID+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	list := do(t, mux, http.MethodGet, "/api/catalog", "")
	var sets []models.SavedSet
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &sets))
	require.Len(t, sets, 1)
	assert.Equal(t, result.ID, sets[0].ID)
	assert.Equal(t, "Pets v2", sets[0].Title)
}

func TestLoadSavedSet(t *testing.T) {
	mux, h := newTestServer()
	result := importPets(t, mux)

	// Point the deck elsewhere, then load the saved set back.
	h.Deck.ReplaceDeck([]models.Card{{Term: "x", Definition: "y"}})

	w := do(t, mux, http.MethodPost, "/api/catalog/"+result.ID+"/load", "")
	require.Equal(t, http.StatusOK, w.Code)

	var snap deck.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "Pets", snap.Title)
	assert.Len(t, snap.Cards, 2)
	assert.Equal(t, 0, snap.CurrentIndex)
}

func TestLoadMissingSetIs404(t *testing.T) {
	mux, _ := newTestServer()

	w := do(t, mux, http.MethodPost, "/api/catalog/ghost/load", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreferencesRoundTrip(t *testing.T) {
	mux, _ := newTestServer()

	w := do(t, mux, http.MethodGet, "/api/preferences", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "{}", w.Body.String(), "empty object before anything is stored")

	w = do(t, mux, http.MethodPut, "/api/preferences", `{"variant":"option-b","sort":"starred"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, mux, http.MethodGet, "/api/preferences", "")
	assert.JSONEq(t, `{"variant":"option-b","sort":"starred"}`, w.Body.String())
}

func TestPutPreferencesRejectsInvalidJSON(t *testing.T) {
	mux, _ := newTestServer()

	w := do(t, mux, http.MethodPut, "/api/preferences", "not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStarOnStaleIndexIsNoOp(t *testing.T) {
	mux, _ := newTestServer()
	importPets(t, mux)

	w := do(t, mux, http.MethodPost, "/api/deck/cards/99/star", "")
	require.Equal(t, http.StatusOK, w.Code)

	var snap deck.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Empty(t, snap.Starred)
}
