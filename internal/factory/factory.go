package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/acmei/landgrab/internal/bus"
	"github.com/acmei/landgrab/internal/dependencies/clock"
	"github.com/acmei/landgrab/internal/dependencies/random"
	"github.com/acmei/landgrab/internal/dependencies/token"
	"github.com/acmei/landgrab/internal/services/game"
	"github.com/acmei/landgrab/internal/services/lobby"
	"github.com/acmei/landgrab/internal/services/maps"
	"github.com/acmei/landgrab/internal/storage"
	"github.com/acmei/landgrab/internal/storage/memory"
	"github.com/acmei/landgrab/internal/storage/postgres"
	redisstorage "github.com/acmei/landgrab/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Token  token.Generator

	// Event bus
	Bus *bus.Bus

	// Services
	MapService      *maps.Service
	GameController  *game.Controller
	LobbyController *lobby.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend
	// ("memory", "redis" or "postgres"); if empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds Postgres connection settings (required if
	// StorageType is "postgres")
	PostgresConfig *postgres.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := postgres.New(ctx, *cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		if err := pgStore.EnsureSchema(ctx); err != nil {
			pgStore.Close()
			return nil, err
		}
		store = pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()
	tok := token.New()

	return newWithDependencies(store, clk, rnd, tok, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, tok token.Generator, logger *slog.Logger) *App {
	eventBus := bus.New(logger)

	mapService := maps.NewService(store, tok)
	gameController := game.NewController(store, eventBus, clk)
	lobbyController := lobby.NewController(store, gameController, mapService, eventBus, clk, rnd, tok)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Token:           tok,
		Bus:             eventBus,
		MapService:      mapService,
		GameController:  gameController,
		LobbyController: lobbyController,
	}
}

// Close releases the app's resources
func (a *App) Close() {
	a.Bus.Close()
	if closer, ok := a.Storage.(interface{ Close() error }); ok {
		_ = closer.Close()
	} else if closer, ok := a.Storage.(interface{ Close() }); ok {
		closer.Close()
	}
}
