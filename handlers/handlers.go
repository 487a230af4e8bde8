// Package handlers exposes the study core over JSON/HTTP. The view variants
// are clients of this surface; every state-changing route funnels into the
// deck, catalog, or import pipeline so all views observe the same state.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/studydeck/studydeck-api/ai"
	"github.com/studydeck/studydeck-api/catalog"
	"github.com/studydeck/studydeck-api/deck"
	"github.com/studydeck/studydeck-api/importer"
	"github.com/studydeck/studydeck-api/store"
)

type Handler struct {
	Deck     *deck.State
	Catalog  *catalog.Catalog
	AI       *ai.Client
	Importer *importer.Pipeline
	KV       store.KeyValue
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("encode response failed")
	}
}
