package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/grandline/server/internal/api/handler"
	"github.com/grandline/server/internal/api/middleware"
	"github.com/grandline/server/internal/realtime"
	"github.com/grandline/server/internal/services/auth"
	"github.com/grandline/server/internal/services/character"
	"github.com/grandline/server/internal/services/shop"
	"github.com/grandline/server/internal/services/worldmap"
)

// DefaultRequestTimeout bounds handler time on REST routes.
// The websocket route sits outside the timeout since connections are
// long-lived.
const DefaultRequestTimeout = 10 * time.Second

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	AuthService      *auth.Service
	CharacterService *character.Service
	ShopService      *shop.Service
	WorldMapService  *worldmap.Service
	Gateway          *realtime.Gateway

	// RequestTimeout overrides DefaultRequestTimeout when nonzero
	RequestTimeout time.Duration
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	characterHandler := handler.NewCharacterHandler(cfg.CharacterService)
	shopHandler := handler.NewShopHandler(cfg.ShopService)
	worldmapHandler := handler.NewWorldMapHandler(cfg.WorldMapService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	requestTimeout := cfg.RequestTimeout
	if requestTimeout == 0 {
		requestTimeout = DefaultRequestTimeout
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	api.Use(middleware.Timeout(requestTimeout))

	// Auth routes (no token required)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	// The shop catalog is browsable without an account
	api.HandleFunc("/inventory/shop", shopHandler.Catalog).Methods(http.MethodGet)

	// Character routes
	characters := api.PathPrefix("/character").Subrouter()
	characters.Use(authMiddleware)
	characters.HandleFunc("", characterHandler.Get).Methods(http.MethodGet)
	characters.HandleFunc("/create", characterHandler.Create).Methods(http.MethodPost)

	// Inventory and shop routes
	inventory := api.PathPrefix("/inventory").Subrouter()
	inventory.Use(authMiddleware)
	inventory.HandleFunc("", shopHandler.Inventory).Methods(http.MethodGet)
	inventory.HandleFunc("/buy", shopHandler.Buy).Methods(http.MethodPost)

	// Map routes
	worldMap := api.PathPrefix("/map").Subrouter()
	worldMap.Use(authMiddleware)
	worldMap.HandleFunc("", worldmapHandler.Get).Methods(http.MethodGet)
	worldMap.HandleFunc("/move", worldmapHandler.Move).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Realtime gateway does its own token check before the upgrade
	if cfg.Gateway != nil {
		r.Handle("/ws", cfg.Gateway).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
