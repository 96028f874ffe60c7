package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/acmei/landgrab/internal/api/handler"
	apimiddleware "github.com/acmei/landgrab/internal/api/middleware"
	"github.com/acmei/landgrab/internal/bus"
	"github.com/acmei/landgrab/internal/middleware"
	"github.com/acmei/landgrab/internal/services/game"
	"github.com/acmei/landgrab/internal/services/lobby"
	"github.com/acmei/landgrab/internal/services/maps"
	"github.com/acmei/landgrab/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	Storage         storage.Storage
	LobbyController *lobby.Controller
	GameController  *game.Controller
	MapService      *maps.Service
	Bus             *bus.Bus
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(cfg.LobbyController)
	gameHandler := handler.NewGameHandler(cfg.GameController)
	mapsHandler := handler.NewMapsHandler(cfg.MapService)
	eventsHandler := handler.NewEventsHandler(cfg.Bus)

	// Create middleware
	authMiddleware := apimiddleware.Auth(cfg.Storage)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Entry points: creating mints tokens, joining spends a join token
	api.HandleFunc("/games", sessionHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/games/join", sessionHandler.Join).Methods(http.MethodPost)

	// Session-scoped routes, authenticated by the caller's player token
	me := api.PathPrefix("/games/me").Subrouter()
	me.Use(authMiddleware)
	me.HandleFunc("", sessionHandler.Get).Methods(http.MethodGet)
	me.HandleFunc("", gameHandler.Save).Methods(http.MethodPut)
	me.HandleFunc("/name", sessionHandler.Rename).Methods(http.MethodPatch)
	me.HandleFunc("/color", sessionHandler.Recolor).Methods(http.MethodPatch)
	me.HandleFunc("/map", sessionHandler.UpdateMap).Methods(http.MethodPut)
	me.HandleFunc("/start", sessionHandler.Start).Methods(http.MethodPost)
	me.HandleFunc("/state", gameHandler.Get).Methods(http.MethodGet)
	me.HandleFunc("/events", eventsHandler.Stream).Methods(http.MethodGet)

	// Map catalog
	api.HandleFunc("/maps", mapsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/maps", mapsHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/maps/{kind}/{id}", mapsHandler.Get).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
