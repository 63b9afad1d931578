package validator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mcoot/wordrooms/internal/model"
	"github.com/mcoot/wordrooms/internal/services/verifier"
)

// Mode selects which sources decide whether a word exists
type Mode string

const (
	ModeLocal    Mode = "local"    // Dictionary only
	ModeRemote   Mode = "remote"   // Remote verifier only
	ModeFallback Mode = "fallback" // Dictionary, then the verifier on a miss
)

// ParseMode converts a configuration string to a Mode
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeLocal, ModeRemote, ModeFallback:
		return m, nil
	default:
		return "", fmt.Errorf("unknown verification mode %q", s)
	}
}

// Dictionary is the local word list used for existence checks
type Dictionary interface {
	Exists(word string) bool
}

// Config holds validation policy settings
type Config struct {
	Mode    Mode
	Timeout time.Duration
}

// DefaultConfig returns the default validation policy
func DefaultConfig() Config {
	return Config{
		Mode:    ModeLocal,
		Timeout: 3 * time.Second,
	}
}

// Verdict is the outcome of a standalone word check
type Verdict struct {
	Word   string
	Valid  bool
	Reason string
}

// Service decides whether a submitted word is a real word
type Service struct {
	cfg        Config
	dictionary Dictionary
	verifier   verifier.Verifier
	logger     *slog.Logger
}

// New creates a validator. The verifier may be nil in local mode.
func New(cfg Config, dictionary Dictionary, v verifier.Verifier, logger *slog.Logger) *Service {
	return &Service{
		cfg:        cfg,
		dictionary: dictionary,
		verifier:   v,
		logger:     logger.With(slog.String("component", "validator")),
	}
}

// Normalize trims whitespace and lowercases a raw word
func (s *Service) Normalize(raw string) string {
	return model.NormalizeWord(raw)
}

// MinLength returns the shortest acceptable word length in runes
func (s *Service) MinLength() int {
	return model.MinWordLength
}

// Exists reports whether a normalized word is known under the configured mode.
// Remote failures are returned as ErrVerificationUnavailable.
func (s *Service) Exists(ctx context.Context, word string) (bool, error) {
	switch s.cfg.Mode {
	case ModeRemote:
		return s.remote(ctx, word)
	case ModeFallback:
		if s.dictionary.Exists(word) {
			return true, nil
		}
		return s.remote(ctx, word)
	default:
		return s.dictionary.Exists(word), nil
	}
}

func (s *Service) remote(ctx context.Context, word string) (bool, error) {
	if s.verifier == nil {
		return false, model.ErrVerificationUnavailable
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	found, err := s.verifier.Exists(ctx, word)
	if err != nil {
		s.logger.Warn("remote verification failed",
			slog.String("word", word),
			slog.String("error", err.Error()),
		)
		return false, fmt.Errorf("%w: %v", model.ErrVerificationUnavailable, err)
	}
	return found, nil
}

// CheckWord applies normalization, the length rule and the existence policy
func (s *Service) CheckWord(ctx context.Context, raw string) Verdict {
	word := s.Normalize(raw)

	if model.CheckWordLength(word) != nil {
		return Verdict{Word: word, Reason: model.ReasonTooShort}
	}

	found, err := s.Exists(ctx, word)
	if err != nil {
		return Verdict{Word: word, Reason: model.ReasonCouldNotCheck}
	}
	if !found {
		return Verdict{Word: word, Reason: model.ReasonUnknownWord}
	}
	return Verdict{Word: word, Valid: true}
}
