// Package config provides Viper-based configuration loading for the game server.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mcoot/wordrooms/internal/api"
	"github.com/mcoot/wordrooms/internal/factory"
	"github.com/mcoot/wordrooms/internal/model"
	"github.com/mcoot/wordrooms/internal/services/registry"
	"github.com/mcoot/wordrooms/internal/services/validator"
	"github.com/mcoot/wordrooms/internal/services/verifier"
	redisstorage "github.com/mcoot/wordrooms/internal/storage/redis"
)

// EnvPrefix is prepended to every environment override, e.g. WORDROOMS_SERVER_PORT
const EnvPrefix = "WORDROOMS"

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "text".
	Format string `mapstructure:"format"`
}

// StorageConfig selects and configures the results store.
type StorageConfig struct {
	Type       string        `mapstructure:"type"`
	RedisURL   string        `mapstructure:"redis_url"`
	SummaryTTL time.Duration `mapstructure:"summary_ttl"`
}

// DictionaryConfig locates the word list.
type DictionaryConfig struct {
	Path string `mapstructure:"path"`
}

// GameConfig holds per-room defaults.
type GameConfig struct {
	AvailableCells int           `mapstructure:"available_cells"`
	TimeLimit      time.Duration `mapstructure:"time_limit"`
	MaxPlayers     int           `mapstructure:"max_players"`
	MainWordLength int           `mapstructure:"main_word_length"`
	MainWordSpan   int           `mapstructure:"main_word_span"`
	FallbackWord   string        `mapstructure:"fallback_word"`
}

// SweepConfig holds expiration sweep timing.
type SweepConfig struct {
	Interval          time.Duration `mapstructure:"interval"`
	FinishTimeout     time.Duration `mapstructure:"finish_timeout"`
	FinishedRetention time.Duration `mapstructure:"finished_retention"`
}

// VerificationConfig holds the word existence policy and remote lookup settings.
type VerificationConfig struct {
	// Mode is "local", "remote" or "fallback".
	Mode      string        `mapstructure:"mode"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Endpoint  string        `mapstructure:"endpoint"`
	Languages []string      `mapstructure:"languages"`
}

// Config is the top-level application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Dictionary   DictionaryConfig   `mapstructure:"dictionary"`
	Game         GameConfig         `mapstructure:"game"`
	Sweep        SweepConfig        `mapstructure:"sweep"`
	Verification VerificationConfig `mapstructure:"verification"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	for _, check := range []func() []string{
		c.validateServer,
		c.validateLogging,
		c.validateStorage,
		c.validateGame,
		c.validateSweep,
		c.validateVerification,
	} {
		errs = append(errs, check()...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c Config) validateServer() []string {
	var errs []string
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "server.read_timeout must not be negative")
	}
	if c.Server.WriteTimeout < 0 {
		errs = append(errs, "server.write_timeout must not be negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "server.shutdown_timeout must be positive")
	}
	return errs
}

func (c Config) validateLogging() []string {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, text], got %q", c.Logging.Format))
	}
	return errs
}

func (c Config) validateStorage() []string {
	var errs []string
	switch c.Storage.Type {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if _, err := url.Parse(c.Storage.RedisURL); err != nil || c.Storage.RedisURL == "" {
			errs = append(errs, fmt.Sprintf("storage.redis_url must be a valid URL, got %q", c.Storage.RedisURL))
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.type must be one of [memory, redis], got %q", c.Storage.Type))
	}
	if c.Storage.SummaryTTL <= 0 {
		errs = append(errs, "storage.summary_ttl must be positive")
	}
	return errs
}

func (c Config) validateGame() []string {
	var errs []string
	g := c.Game
	if g.AvailableCells < 1 {
		errs = append(errs, fmt.Sprintf("game.available_cells must be >= 1, got %d", g.AvailableCells))
	}
	if g.TimeLimit < time.Second {
		errs = append(errs, fmt.Sprintf("game.time_limit must be at least 1s, got %s", g.TimeLimit))
	}
	if g.MaxPlayers < 2 {
		errs = append(errs, fmt.Sprintf("game.max_players must be >= 2, got %d", g.MaxPlayers))
	}
	if g.MainWordLength < model.MinWordLength {
		errs = append(errs, fmt.Sprintf("game.main_word_length must be >= %d, got %d", model.MinWordLength, g.MainWordLength))
	}
	if g.MainWordSpan < 0 {
		errs = append(errs, fmt.Sprintf("game.main_word_span must be >= 0, got %d", g.MainWordSpan))
	}
	if len([]rune(strings.TrimSpace(g.FallbackWord))) < model.MinWordLength {
		errs = append(errs, fmt.Sprintf("game.fallback_word must have at least %d letters", model.MinWordLength))
	}
	return errs
}

func (c Config) validateSweep() []string {
	var errs []string
	if c.Sweep.Interval <= 0 {
		errs = append(errs, "sweep.interval must be positive")
	}
	if c.Sweep.FinishTimeout <= 0 {
		errs = append(errs, "sweep.finish_timeout must be positive")
	}
	if c.Sweep.FinishedRetention < 0 {
		errs = append(errs, "sweep.finished_retention must not be negative")
	}
	return errs
}

func (c Config) validateVerification() []string {
	var errs []string
	if _, err := validator.ParseMode(c.Verification.Mode); err != nil {
		errs = append(errs, fmt.Sprintf("verification.mode must be one of [local, remote, fallback], got %q", c.Verification.Mode))
	}
	if c.Verification.Timeout <= 0 {
		errs = append(errs, "verification.timeout must be positive")
	}
	if c.Verification.Endpoint == "" {
		errs = append(errs, "verification.endpoint must not be empty")
	}
	if len(c.Verification.Languages) == 0 {
		errs = append(errs, "verification.languages must not be empty")
	}
	return errs
}

// Load reads configuration from the optional file at path, applies
// environment variable overrides, and validates the result.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with WORDROOMS_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.Storage.Type = strings.ToLower(cfg.Storage.Type)
	cfg.Verification.Mode = strings.ToLower(cfg.Verification.Mode)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("storage.type", factory.StorageTypeMemory)
	v.SetDefault("storage.redis_url", "redis://localhost:6379")
	v.SetDefault("storage.summary_ttl", "168h")

	v.SetDefault("dictionary.path", "data/words.txt")

	v.SetDefault("game.available_cells", 20)
	v.SetDefault("game.time_limit", "300s")
	v.SetDefault("game.max_players", 8)
	v.SetDefault("game.main_word_length", 10)
	v.SetDefault("game.main_word_span", 4)
	v.SetDefault("game.fallback_word", model.FallbackMainWord)

	v.SetDefault("sweep.interval", "1s")
	v.SetDefault("sweep.finish_timeout", "5s")
	v.SetDefault("sweep.finished_retention", "10m")

	v.SetDefault("verification.mode", string(validator.ModeLocal))
	v.SetDefault("verification.timeout", "3s")
	v.SetDefault("verification.endpoint", verifier.DefaultEndpoint)
	v.SetDefault("verification.languages", []string{"ru", "en"})
}

// SlogLevel parses the configured log level.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the application logger writing to w.
func (l LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if l.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// APIServer returns the HTTP server settings.
func (c Config) APIServer() api.ServerConfig {
	return api.ServerConfig{
		Host:            c.Server.Host,
		Port:            c.Server.Port,
		ReadTimeout:     c.Server.ReadTimeout,
		WriteTimeout:    c.Server.WriteTimeout,
		ShutdownTimeout: c.Server.ShutdownTimeout,
	}
}

// Factory converts the configuration into factory settings.
//
// Precondition: c has passed Validate.
func (c Config) Factory(logger *slog.Logger) factory.Config {
	mode, _ := validator.ParseMode(c.Verification.Mode)

	cfg := factory.Config{
		Logger:      logger,
		StorageType: c.Storage.Type,
		Registry: registry.Config{
			Room: model.RoomConfig{
				AvailableCells: c.Game.AvailableCells,
				TimeLimit:      c.Game.TimeLimit,
				MaxPlayers:     c.Game.MaxPlayers,
			},
			MainWordLength:    c.Game.MainWordLength,
			MainWordSpan:      c.Game.MainWordSpan,
			FallbackWord:      strings.ToLower(strings.TrimSpace(c.Game.FallbackWord)),
			SweepInterval:     c.Sweep.Interval,
			FinishTimeout:     c.Sweep.FinishTimeout,
			FinishedRetention: c.Sweep.FinishedRetention,
			MaxConcurrent:     registry.DefaultConfig().MaxConcurrent,
		},
		Validator: validator.Config{
			Mode:    mode,
			Timeout: c.Verification.Timeout,
		},
		Verifier: verifier.Config{
			Endpoint:  c.Verification.Endpoint,
			Languages: c.Verification.Languages,
			Timeout:   c.Verification.Timeout,
		},
	}

	if c.Storage.Type == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.Storage.RedisURL
		redisCfg.SummaryTTL = c.Storage.SummaryTTL
		cfg.RedisConfig = &redisCfg
	}

	return cfg
}
