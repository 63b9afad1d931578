package storage

import (
	"context"

	"github.com/mcoot/wordrooms/internal/model"
)

// Storage defines the interface for data persistence.
// Live rooms are never stored; only the dictionary and finished-game results are.
type Storage interface {
	// Dictionary operations
	GetDictionaryWords(ctx context.Context) ([]string, error)
	SaveDictionaryWords(ctx context.Context, words []string) error

	// Results operations
	SaveGameSummary(ctx context.Context, summary *model.GameSummary) error
	GetGameSummary(ctx context.Context, id string) (*model.GameSummary, error)
	// ListGameSummaries returns up to limit summaries, most recently ended first
	ListGameSummaries(ctx context.Context, limit int) ([]*model.GameSummary, error)
}
