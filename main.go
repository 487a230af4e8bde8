package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/studydeck/studydeck-api/ai"
	"github.com/studydeck/studydeck-api/catalog"
	"github.com/studydeck/studydeck-api/config"
	"github.com/studydeck/studydeck-api/deck"
	"github.com/studydeck/studydeck-api/handlers"
	"github.com/studydeck/studydeck-api/importer"
	"github.com/studydeck/studydeck-api/middleware"
	"github.com/studydeck/studydeck-api/store"
)

func init() {
	// Load .env file if not in a hosted environment
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		if err := godotenv.Load(); err != nil {
			logrus.WithError(err).Warn(".env file not found, environment variables might not be loaded")
		}
	}
}

func main() {
	env := config.LoadEnvironment()

	// The local store must exist; the remote one is best-effort. When the
	// remote database is missing or unreachable the service runs local-only
	// and the user never sees the difference.
	localDB, err := config.ConnectLocal(env.LocalDBPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open local store")
	}

	var remote store.RecordStore
	if env.RemoteDBURL == "" {
		logrus.Info("DB_URL not set, running with local persistence only")
	} else if remoteDB, err := config.ConnectRemote(env.RemoteDBURL); err != nil {
		logrus.WithError(err).Warn("remote database unavailable, running with local persistence only")
	} else {
		remote = store.NewRecordStore(remoteDB, "remote")
	}

	kv, err := store.NewKV(localDB)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open key/value store")
	}
	store.Migrate(kv)

	records := store.NewFallback(remote, store.NewRecordStore(localDB, "local"))
	cat := catalog.New(records)

	deckState := deck.NewState(kv)
	deckState.Restore()

	aiClient := ai.NewClient(env.AIBaseURL)
	pipeline := importer.New(deckState, cat, aiClient)

	h := &handlers.Handler{
		Deck:     deckState,
		Catalog:  cat,
		AI:       aiClient,
		Importer: pipeline,
		KV:       kv,
	}

	mux := http.NewServeMux()

	// Catalog
	mux.HandleFunc("GET /api/catalog", h.ListCatalog)
	mux.HandleFunc("POST /api/catalog", h.CreateSavedSet)
	mux.HandleFunc("PUT /api/catalog/{contentID}", h.UpdateSavedSet)
	mux.HandleFunc("DELETE /api/catalog/{contentID}", h.DeleteSavedSet)
	mux.HandleFunc("POST /api/catalog/{contentID}/load", h.LoadSavedSet)

	// Deck
	mux.HandleFunc("GET /api/deck", h.GetDeck)
	mux.HandleFunc("POST /api/deck/advance", h.AdvanceDeck)
	mux.HandleFunc("POST /api/deck/cards/{index}/star", h.ToggleStar)
	mux.HandleFunc("POST /api/deck/cards/{index}/viewed", h.MarkViewed)
	mux.HandleFunc("POST /api/deck/reset", h.ResetProgress)

	// Import
	mux.HandleFunc("POST /api/import", h.ImportSet)

	// View preferences
	mux.HandleFunc("GET /api/preferences", h.GetPreferences)
	mux.HandleFunc("PUT /api/preferences", h.PutPreferences)

	// AI assistance
	mux.HandleFunc("GET /api/assist/health", h.AssistHealth)
	mux.HandleFunc("POST /api/assist/chat", h.AssistChat)
	mux.HandleFunc("POST /api/assist/explain", h.AssistExplain)
	mux.HandleFunc("POST /api/assist/quiz", h.AssistQuiz)
	mux.HandleFunc("POST /api/assist/generate-flashcards", h.AssistGenerateFlashcards)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   env.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(middleware.RequestLogger(mux))

	addr := "0.0.0.0:" + env.Port
	logrus.WithField("addr", addr).Info("studydeck API listening")
	if err := http.ListenAndServe(addr, corsHandler); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
