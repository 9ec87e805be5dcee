package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/grandline/server/internal/dependencies/clock"
	"github.com/grandline/server/internal/realtime"
	"github.com/grandline/server/internal/services/auth"
	"github.com/grandline/server/internal/services/character"
	"github.com/grandline/server/internal/services/shop"
	"github.com/grandline/server/internal/services/worldmap"
	"github.com/grandline/server/internal/storage"
	"github.com/grandline/server/internal/storage/memory"
	redisstorage "github.com/grandline/server/internal/storage/redis"
	"github.com/grandline/server/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeSQLite = "sqlite"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Store

	// External dependencies
	Clock clock.Clock

	// Services
	AuthService      *auth.Service
	CharacterService *character.Service
	ShopService      *shop.Service
	WorldMapService  *worldmap.Service

	// Realtime
	Hub     *realtime.Hub
	Gateway *realtime.Gateway
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "sqlite" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// SQLitePath is the database file path (required if StorageType is "sqlite")
	SQLitePath string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Store
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'sqlite' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()

	// auth.New fills in defaults for any zero-valued auth config fields
	return newWithDependencies(store, clk, cfg.AuthConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, clk clock.Clock, authCfg auth.Config, logger *slog.Logger) *App {
	hub := realtime.NewHub(logger)
	go hub.Run()

	authService := auth.New(store, clk, authCfg, logger)
	characterService := character.New(store, clk, logger)
	shopService := shop.New(store, logger)
	worldmapService := worldmap.New(store, clk, hub, logger)
	gateway := realtime.NewGateway(hub, authService, logger)

	return &App{
		Storage:          store,
		Clock:            clk,
		AuthService:      authService,
		CharacterService: characterService,
		ShopService:      shopService,
		WorldMapService:  worldmapService,
		Hub:              hub,
		Gateway:          gateway,
	}
}
