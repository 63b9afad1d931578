package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/wordrooms/internal/dependencies/clock"
	"github.com/mcoot/wordrooms/internal/dependencies/random"
	"github.com/mcoot/wordrooms/internal/model"
	"github.com/mcoot/wordrooms/internal/services/room"
)

const (
	// RoomCodeAlphabet omits characters that are easy to confuse (I, O, 0, 1)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	RoomCodeLength   = 6

	maxCodeAttempts = 100
	saveTimeout     = 5 * time.Second
)

// WordSource supplies main words
type WordSource interface {
	RandomWord(minLength, maxLength int) (string, bool)
}

// SummaryStore records finished games
type SummaryStore interface {
	SaveGameSummary(ctx context.Context, summary *model.GameSummary) error
}

// Config holds room defaults and sweep timing
type Config struct {
	Room           model.RoomConfig
	MainWordLength int
	MainWordSpan   int
	FallbackWord   string

	SweepInterval     time.Duration
	FinishTimeout     time.Duration
	FinishedRetention time.Duration
	MaxConcurrent     int // finishes running at once during a sweep
}

// DefaultConfig returns the default registry configuration
func DefaultConfig() Config {
	return Config{
		Room:              model.DefaultRoomConfig(),
		MainWordLength:    10,
		MainWordSpan:      4,
		FallbackWord:      model.FallbackMainWord,
		SweepInterval:     time.Second,
		FinishTimeout:     5 * time.Second,
		FinishedRetention: 10 * time.Minute,
		MaxConcurrent:     8,
	}
}

// Registry owns every live room and expires them on a timer
type Registry struct {
	cfg     Config
	words   WordSource
	checker room.Checker
	store   SummaryStore
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu    sync.RWMutex
	rooms map[model.RoomID]*room.Room
}

// New creates a Registry. store may be nil, in which case summaries are dropped.
func New(
	cfg Config,
	words WordSource,
	checker room.Checker,
	store SummaryStore,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Registry {
	return &Registry{
		cfg:     cfg,
		words:   words,
		checker: checker,
		store:   store,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "registry")),
		rooms:   make(map[model.RoomID]*room.Room),
	}
}

// Create opens a new room with the creator as its only player
func (r *Registry) Create(ctx context.Context, creator model.PlayerID, name string, notifier room.Notifier) (*room.Room, error) {
	mainWord := r.pickMainWord()

	r.mu.Lock()
	id, err := r.newRoomID()
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	rm := room.New(room.Params{
		ID:       id,
		MainWord: mainWord,
		Config:   r.cfg.Room,
		Clock:    r.clock,
		Checker:  r.checker,
		Notifier: notifier,
		OnFinish: r.recordSummary,
		Logger:   r.logger,
	}, creator, name)
	r.rooms[id] = rm
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "room created",
		slog.String("room_id", string(id)),
		slog.String("player_id", string(creator)),
		slog.String("main_word", mainWord),
	)

	rm.AnnounceCreated()
	return rm, nil
}

// newRoomID must be called with mu held
func (r *Registry) newRoomID() (model.RoomID, error) {
	for range maxCodeAttempts {
		id := model.RoomID(r.random.String(RoomCodeLength, RoomCodeAlphabet))
		if _, taken := r.rooms[id]; !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("allocating room code: %d attempts collided", maxCodeAttempts)
}

func (r *Registry) pickMainWord() string {
	minLength := r.cfg.MainWordLength
	if word, ok := r.words.RandomWord(minLength, minLength+r.cfg.MainWordSpan); ok {
		return word
	}
	r.logger.Warn("no main word candidates, using fallback",
		slog.Int("min_length", minLength),
		slog.Int("max_length", minLength+r.cfg.MainWordSpan),
	)
	if r.cfg.FallbackWord != "" {
		return r.cfg.FallbackWord
	}
	return model.FallbackMainWord
}

// Get returns a live room
func (r *Registry) Get(id model.RoomID) (*room.Room, error) {
	r.mu.RLock()
	rm, ok := r.rooms[id]
	r.mu.RUnlock()

	if !ok || rm.Closed() {
		return nil, model.ErrRoomNotFound
	}
	return rm, nil
}

// Delete removes a room, reporting whether it was present
func (r *Registry) Delete(id model.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[id]; !ok {
		return false
	}
	delete(r.rooms, id)
	r.logger.Info("room deleted", slog.String("room_id", string(id)))
	return true
}

// RemovePlayer takes a player out of a room and deletes the room once empty
func (r *Registry) RemovePlayer(id model.RoomID, playerID model.PlayerID) error {
	r.mu.RLock()
	rm, ok := r.rooms[id]
	r.mu.RUnlock()
	if !ok {
		return model.ErrRoomNotFound
	}

	remaining, err := rm.RemovePlayer(playerID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		r.deleteRoom(rm)
	}
	return nil
}

// deleteRoom removes rm unless its code now belongs to another room
func (r *Registry) deleteRoom(rm *room.Room) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[rm.ID()] != rm {
		return false
	}
	delete(r.rooms, rm.ID())
	r.logger.Info("room deleted", slog.String("room_id", string(rm.ID())))
	return true
}

// Count returns the number of live rooms
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// List returns live rooms, oldest first
func (r *Registry) List() []model.RoomInfo {
	rooms := r.snapshot()

	infos := make([]model.RoomInfo, 0, len(rooms))
	for _, rm := range rooms {
		if rm.Closed() {
			continue
		}
		infos = append(infos, rm.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

func (r *Registry) snapshot() []*room.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]*room.Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		rooms = append(rooms, rm)
	}
	return rooms
}

// Sweep finishes every room whose time is up and drops stale rooms.
// It returns how many rooms it finished.
func (r *Registry) Sweep(ctx context.Context) int {
	now := r.clock.Now()
	cutoff := now.Add(-r.cfg.FinishedRetention)

	var finished atomic.Int64
	var stale []*room.Room

	var g errgroup.Group
	if r.cfg.MaxConcurrent > 0 {
		g.SetLimit(r.cfg.MaxConcurrent)
	}

	for _, rm := range r.snapshot() {
		switch {
		case rm.Closed(), rm.FinishedBefore(cutoff):
			stale = append(stale, rm)
		case rm.Expired(now):
			g.Go(func() error {
				if r.finish(ctx, rm) {
					finished.Add(1)
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	if len(stale) > 0 {
		r.mu.Lock()
		for _, rm := range stale {
			// The code may have been reused since the snapshot
			if r.rooms[rm.ID()] == rm {
				delete(r.rooms, rm.ID())
			}
		}
		r.mu.Unlock()
		r.logger.Debug("stale rooms dropped", slog.Int("count", len(stale)))
	}

	return int(finished.Load())
}

// finish runs Finish in its own goroutine so that a panic or a stuck
// finish hook only costs this room
func (r *Registry) finish(ctx context.Context, rm *room.Room) bool {
	logger := r.logger.With(slog.String("room_id", string(rm.ID())))
	done := make(chan bool, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("room finish panicked", slog.Any("panic", p))
				done <- false
			}
		}()
		ok, err := rm.Finish()
		if err != nil {
			logger.Debug("room finish skipped", slog.String("error", err.Error()))
		}
		done <- ok
	}()

	timer := time.NewTimer(r.cfg.FinishTimeout)
	defer timer.Stop()

	select {
	case ok := <-done:
		return ok
	case <-timer.C:
		logger.Warn("room finish timed out", slog.Duration("timeout", r.cfg.FinishTimeout))
		return false
	case <-ctx.Done():
		return false
	}
}

// Run sweeps on every tick until ctx is cancelled
func (r *Registry) Run(ctx context.Context) error {
	ticker := r.clock.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	r.logger.Info("sweep started", slog.Duration("interval", r.cfg.SweepInterval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("sweep stopped")
			return nil
		case <-ticker.C():
			if n := r.Sweep(ctx); n > 0 {
				r.logger.Info("rooms expired", slog.Int("count", n))
			}
		}
	}
}

func (r *Registry) recordSummary(summary *model.GameSummary) {
	if r.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := r.store.SaveGameSummary(ctx, summary); err != nil {
		r.logger.Error("failed to save game summary",
			slog.String("room_id", string(summary.RoomID)),
			slog.String("summary_id", summary.ID),
			slog.String("error", err.Error()),
		)
	}
}
