package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordrooms/internal/api/handler"
	"github.com/mcoot/wordrooms/internal/api/middleware"
	"github.com/mcoot/wordrooms/internal/services/registry"
	"github.com/mcoot/wordrooms/internal/services/session"
	"github.com/mcoot/wordrooms/internal/services/validator"
	"github.com/mcoot/wordrooms/internal/web/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger    *slog.Logger
	Validator *validator.Service
	Registry  *registry.Registry
	Results   handler.ResultStore
	Sessions  *session.Manager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	wordHandler := handler.NewWordHandler(cfg.Validator)
	roomHandler := handler.NewRoomHandler(cfg.Registry)
	resultsHandler := handler.NewResultsHandler(cfg.Results)
	wsHandler := ws.NewHandler(cfg.Sessions, cfg.Logger)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	r.Use(recoveryMiddleware)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)
	api.HandleFunc("/check_word", wordHandler.CheckWord).Methods(http.MethodGet)
	api.HandleFunc("/players/id", handler.GeneratePlayerID).Methods(http.MethodGet)
	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/results", resultsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/results/{id}", resultsHandler.Get).Methods(http.MethodGet)

	// Unversioned paths kept for existing browser clients
	r.HandleFunc("/check_word", wordHandler.CheckWord).Methods(http.MethodGet)
	r.HandleFunc("/generate_player_id", handler.GeneratePlayerID).Methods(http.MethodGet)

	// WebSocket game channel
	r.Handle("/ws/{player_id}", loggingMiddleware(wsHandler)).Methods(http.MethodGet)

	return r
}
