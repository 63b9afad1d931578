package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/wordrooms/internal/dependencies/clock"
	"github.com/mcoot/wordrooms/internal/dependencies/random"
	"github.com/mcoot/wordrooms/internal/services/dictionary"
	"github.com/mcoot/wordrooms/internal/services/registry"
	"github.com/mcoot/wordrooms/internal/services/session"
	"github.com/mcoot/wordrooms/internal/services/validator"
	"github.com/mcoot/wordrooms/internal/services/verifier"
	"github.com/mcoot/wordrooms/internal/storage"
	"github.com/mcoot/wordrooms/internal/storage/memory"
	redisstorage "github.com/mcoot/wordrooms/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	DictionaryService *dictionary.Service
	Verifier          verifier.Verifier
	Validator         *validator.Service
	Registry          *registry.Registry
	Sessions          *session.Manager

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Registry holds room defaults and sweep timing (optional)
	// If zero value, defaults to registry.DefaultConfig()
	Registry registry.Config
	// Validator selects the word existence policy (optional)
	Validator validator.Config
	// Verifier configures the remote dictionary lookup (optional)
	Verifier verifier.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
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
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, withDefaults(cfg), logger), nil
}

// withDefaults fills zero-valued sections with their defaults
func withDefaults(cfg Config) Config {
	if cfg.Registry.SweepInterval == 0 {
		cfg.Registry = registry.DefaultConfig()
	}
	if cfg.Validator.Mode == "" {
		cfg.Validator = validator.DefaultConfig()
	}
	if len(cfg.Verifier.Languages) == 0 {
		cfg.Verifier = verifier.DefaultConfig()
	}
	return cfg
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	dictService := dictionary.New(store, rnd, logger)
	wiktionary := verifier.NewWiktionary(cfg.Verifier, nil, logger)
	validatorService := validator.New(cfg.Validator, dictService, wiktionary, logger)
	roomRegistry := registry.New(cfg.Registry, dictService, validatorService, store, clk, rnd, logger)
	sessions := session.NewManager(roomRegistry, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		DictionaryService: dictService,
		Verifier:          wiktionary,
		Validator:         validatorService,
		Registry:          roomRegistry,
		Sessions:          sessions,
		Logger:            logger,
	}
}

// LoadDictionary loads the word list from path, falling back to the copy
// kept in storage when the file cannot be read
func (a *App) LoadDictionary(ctx context.Context, path string) error {
	if path != "" {
		err := a.DictionaryService.LoadFromFile(ctx, path)
		if err == nil {
			return nil
		}
		a.Logger.Warn("failed to load dictionary file, trying storage",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
	return a.DictionaryService.LoadFromStorage(ctx)
}

// Close releases storage connections
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
