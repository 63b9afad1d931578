package dictionary

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/mcoot/wordrooms/internal/dependencies/random"
	"github.com/mcoot/wordrooms/internal/model"
	"github.com/mcoot/wordrooms/internal/storage"
)

// Service is the local word list: membership checks and main-word generation
type Service struct {
	storage storage.Storage
	random  random.Random
	logger  *slog.Logger

	mu     sync.RWMutex
	words  map[string]struct{}
	sorted []string // same words, ordered by length then alphabetically
	loaded bool
}

// New creates a new dictionary Service
func New(storage storage.Storage, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		random:  random,
		logger:  logger.With(slog.String("component", "dictionary")),
		words:   make(map[string]struct{}),
	}
}

// LoadFromStorage loads dictionary words from storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	words, err := s.storage.GetDictionaryWords(ctx)
	if err != nil {
		return err
	}
	return s.loadWords(words)
}

// LoadFromFile loads dictionary words from a file (one word per line)
// and saves them to storage
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if word := model.NormalizeWord(scanner.Text()); word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading dictionary %s: %w", path, err)
	}

	if err := s.storage.SaveDictionaryWords(ctx, words); err != nil {
		return fmt.Errorf("saving dictionary: %w", err)
	}

	if err := s.loadWords(words); err != nil {
		return err
	}
	s.logger.Info("dictionary loaded",
		slog.String("path", path),
		slog.Int("words", s.WordCount()))
	return nil
}

// LoadWords directly loads a slice of words (useful for testing)
func (s *Service) LoadWords(words []string) error {
	return s.loadWords(words)
}

func (s *Service) loadWords(words []string) error {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		word = model.NormalizeWord(word)
		// Too-short words can never be submitted, so they are not kept
		if model.CheckWordLength(word) != nil {
			continue
		}
		set[word] = struct{}{}
	}

	sorted := make([]string, 0, len(set))
	for word := range set {
		sorted = append(sorted, word)
	}
	sort.Slice(sorted, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(sorted[i]), utf8.RuneCountInString(sorted[j])
		if li != lj {
			return li < lj
		}
		return sorted[i] < sorted[j]
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.words = set
	s.sorted = sorted
	s.loaded = true
	return nil
}

// Exists reports whether a word is in the dictionary, ignoring case
func (s *Service) Exists(word string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return false
	}
	_, ok := s.words[model.NormalizeWord(word)]
	return ok
}

// RandomWord picks a word whose length is within [minLength, maxLength].
// Returns false if no loaded word fits.
func (s *Service) RandomWord(minLength, maxLength int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lo := sort.Search(len(s.sorted), func(i int) bool {
		return utf8.RuneCountInString(s.sorted[i]) >= minLength
	})
	hi := sort.Search(len(s.sorted), func(i int) bool {
		return utf8.RuneCountInString(s.sorted[i]) > maxLength
	})
	if lo >= hi {
		return "", false
	}
	return s.sorted[lo+s.random.Intn(hi-lo)], true
}

// IsLoaded returns whether the dictionary has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// WordCount returns the number of words in the dictionary
func (s *Service) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// ServiceInterface is the dictionary surface used by the rest of the app
type ServiceInterface interface {
	Exists(word string) bool
	RandomWord(minLength, maxLength int) (string, bool)
	IsLoaded() bool
	WordCount() int
	LoadFromStorage(ctx context.Context) error
	LoadFromFile(ctx context.Context, path string) error
	LoadWords(words []string) error
}

var _ ServiceInterface = (*Service)(nil)
