package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/wordrooms/internal/dependencies/mocks"
	"github.com/mcoot/wordrooms/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(Config{})
}

// NewTestAppWithConfig is NewTestApp with room, sweep and validation settings
func NewTestAppWithConfig(cfg Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	app := newWithDependencies(store, mockClock, mockRandom, withDefaults(cfg), logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// LoadTestDictionary loads a small dictionary for testing.
// With the mock random's default pick, new rooms get "библиотека" as their main word.
func (t *TestApp) LoadTestDictionary() error {
	words := []string{
		// Too short, dropped on load
		"да", "on",
		// Buildable from "библиотека"
		"бак", "кит", "лоб", "тело", "билет", "колит", "лето", "обет",
		// Buildable from "программирование"
		"мир", "пир", "игра", "рама", "гора", "нора", "грамм", "норма", "роман", "программа",
		// Known words that cannot be built from either main word
		"папа", "метр", "сыр", "дом",
		// Main word candidates (10 to 14 letters)
		"библиотека", "обновление", "программист", "путешествие", "университет",
		// Too long to be a main word
		"программирование",
	}
	return t.DictionaryService.LoadWords(words)
}
