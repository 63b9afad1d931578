package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/wordrooms/internal/model"
	"github.com/mcoot/wordrooms/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	summaries       map[string]*model.GameSummary
	dictionaryWords []string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		summaries: make(map[string]*model.GameSummary),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Dictionary operations

func (s *Storage) GetDictionaryWords(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dictionaryWords == nil {
		return nil, model.ErrDictionaryNotLoaded
	}
	result := make([]string, len(s.dictionaryWords))
	copy(result, s.dictionaryWords)
	return result, nil
}

func (s *Storage) SaveDictionaryWords(ctx context.Context, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dictionaryWords = make([]string, len(words))
	copy(s.dictionaryWords, words)
	return nil
}

// Results operations

func (s *Storage) SaveGameSummary(ctx context.Context, summary *model.GameSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[summary.ID] = cloneSummary(summary)
	return nil
}

func (s *Storage) GetGameSummary(ctx context.Context, id string) (*model.GameSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.summaries[id]
	if !ok {
		return nil, model.ErrSummaryNotFound
	}
	return cloneSummary(summary), nil
}

func (s *Storage) ListGameSummaries(ctx context.Context, limit int) ([]*model.GameSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*model.GameSummary, 0, len(s.summaries))
	for _, summary := range s.summaries {
		all = append(all, summary)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].EndedAt.Equal(all[j].EndedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].EndedAt.After(all[j].EndedAt)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	result := make([]*model.GameSummary, len(all))
	for i, summary := range all {
		result[i] = cloneSummary(summary)
	}
	return result, nil
}

// cloneSummary copies a summary so callers cannot mutate stored state
func cloneSummary(src *model.GameSummary) *model.GameSummary {
	dst := *src
	dst.Standings = make([]model.Standing, len(src.Standings))
	for i, st := range src.Standings {
		st.Words = append([]string(nil), st.Words...)
		dst.Standings[i] = st
	}
	return &dst
}
