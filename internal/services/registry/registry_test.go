package registry

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordrooms/internal/dependencies/mocks"
	"github.com/mcoot/wordrooms/internal/model"
	"github.com/mcoot/wordrooms/internal/services/room"
	"github.com/mcoot/wordrooms/internal/storage/memory"
	"github.com/mcoot/wordrooms/internal/testutil"
)

type fixedWords struct {
	word string
}

func (f fixedWords) RandomWord(minLength, maxLength int) (string, bool) {
	return f.word, f.word != ""
}

// hookStore panics or blocks for chosen rooms and records everything else
type hookStore struct {
	mu      sync.Mutex
	saved   []model.RoomID
	panicOn model.RoomID
	blockOn model.RoomID
	release chan struct{}
}

func (h *hookStore) SaveGameSummary(ctx context.Context, summary *model.GameSummary) error {
	switch summary.RoomID {
	case h.panicOn:
		panic("summary store exploded")
	case h.blockOn:
		<-h.release
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.saved = append(h.saved, summary.RoomID)
	return nil
}

type RegistrySuite struct {
	suite.Suite
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	notifier *mocks.Notifier
	storage  *memory.Storage
	registry *Registry
	ctx      context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) testConfig() Config {
	cfg := DefaultConfig()
	cfg.Room.TimeLimit = 5 * time.Second
	cfg.FinishTimeout = 100 * time.Millisecond
	return cfg
}

func (s *RegistrySuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.notifier = mocks.NewNotifier()
	s.storage = memory.New()
	s.ctx = context.Background()
	s.registry = s.newRegistry(fixedWords{"программирование"}, s.storage)
}

func (s *RegistrySuite) newRegistry(words WordSource, store SummaryStore) *Registry {
	return s.newRegistryWithLogger(words, store, testutil.NopLogger())
}

func (s *RegistrySuite) newRegistryWithLogger(words WordSource, store SummaryStore, logger *slog.Logger) *Registry {
	return New(s.testConfig(), words, mocks.NewWordChecker("игра"), store, s.clock, s.random, logger)
}

// startGame creates a room for owner and starts it with a second player
func (s *RegistrySuite) startGame(owner model.PlayerID) *room.Room {
	rm, err := s.registry.Create(s.ctx, owner, "", s.notifier)
	s.Require().NoError(err)
	s.Require().NoError(rm.Join(owner+"-2", ""))
	return rm
}

func (s *RegistrySuite) TestCreate() {
	s.random.QueueString("ABC234")

	rm, err := s.registry.Create(s.ctx, "A", "Аня", s.notifier)
	s.Require().NoError(err)

	s.Equal(model.RoomID("ABC234"), rm.ID())
	s.Equal("программирование", rm.MainWord())
	s.Equal(model.RoomStatusWaiting, rm.Status())
	s.Equal([]model.EventKind{model.EventRoomCreated, model.EventGameState}, s.notifier.Kinds("A"))

	got, err := s.registry.Get("ABC234")
	s.Require().NoError(err)
	s.Same(rm, got)
	s.Equal(1, s.registry.Count())
}

func (s *RegistrySuite) TestCreateAvoidsCodeCollision() {
	s.random.QueueString("ABC234", "ABC234", "XYZ789")

	first, err := s.registry.Create(s.ctx, "A", "", s.notifier)
	s.Require().NoError(err)
	second, err := s.registry.Create(s.ctx, "B", "", s.notifier)
	s.Require().NoError(err)

	s.Equal(model.RoomID("ABC234"), first.ID())
	s.Equal(model.RoomID("XYZ789"), second.ID())
}

func (s *RegistrySuite) TestCreateUsesFallbackWord() {
	reg := s.newRegistry(fixedWords{}, s.storage)

	rm, err := reg.Create(s.ctx, "A", "", s.notifier)
	s.Require().NoError(err)
	s.Equal(model.FallbackMainWord, rm.MainWord())
}

func (s *RegistrySuite) TestGetUnknown() {
	_, err := s.registry.Get("NOPE22")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestRemovePlayerDeletesEmptyRoom() {
	rm := s.startGame("A")

	s.Require().NoError(s.registry.RemovePlayer(rm.ID(), "A"))
	s.Equal(1, s.registry.Count())

	s.Require().NoError(s.registry.RemovePlayer(rm.ID(), "A-2"))
	s.Equal(0, s.registry.Count())

	_, err := s.registry.Get(rm.ID())
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.ErrorIs(s.registry.RemovePlayer(rm.ID(), "A"), model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestStaleRemovalKeepsReusedCode() {
	s.random.QueueString("SAME22")
	old, err := s.registry.Create(s.ctx, "A", "", s.notifier)
	s.Require().NoError(err)
	s.Require().True(s.registry.Delete("SAME22"))

	s.random.QueueString("SAME22")
	fresh, err := s.registry.Create(s.ctx, "B", "", s.notifier)
	s.Require().NoError(err)
	s.Require().Equal(old.ID(), fresh.ID())

	s.False(s.registry.deleteRoom(old), "Old room must not evict the new holder of its code")
	got, err := s.registry.Get("SAME22")
	s.Require().NoError(err)
	s.Same(fresh, got)

	s.True(s.registry.deleteRoom(fresh))
	s.Equal(0, s.registry.Count())
}

func (s *RegistrySuite) TestDeleteTwice() {
	rm := s.startGame("A")

	s.True(s.registry.Delete(rm.ID()))
	s.False(s.registry.Delete(rm.ID()))
}

func (s *RegistrySuite) TestList() {
	s.random.QueueString("BBBBBB", "AAAAAA")
	_, _ = s.registry.Create(s.ctx, "A", "", s.notifier)
	s.clock.Advance(time.Second)
	second, _ := s.registry.Create(s.ctx, "B", "", s.notifier)
	s.Require().NoError(second.Join("C", ""))

	infos := s.registry.List()
	s.Require().Len(infos, 2)
	s.Equal(model.RoomID("BBBBBB"), infos[0].ID)
	s.Equal(model.RoomID("AAAAAA"), infos[1].ID)
	s.Equal(model.RoomStatusPlaying, infos[1].Status)
	s.Equal(2, infos[1].PlayerCount)
}

func (s *RegistrySuite) TestSweepExpiresAtTimeLimit() {
	rm := s.startGame("A")

	s.clock.Advance(4999 * time.Millisecond)
	s.Equal(0, s.registry.Sweep(s.ctx))
	s.Equal(model.RoomStatusPlaying, rm.Status())

	s.clock.Advance(time.Millisecond)
	s.Equal(1, s.registry.Sweep(s.ctx))
	s.Equal(model.RoomStatusFinished, rm.Status())
	s.Equal(1, s.notifier.Count("A", model.EventGameEnd))

	// A second sweep does not finish it again
	s.Equal(0, s.registry.Sweep(s.ctx))
	s.Equal(1, s.notifier.Count("A", model.EventGameEnd))

	summaries, err := s.storage.ListGameSummaries(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(summaries, 1)
	s.Equal(rm.ID(), summaries[0].RoomID)
}

func (s *RegistrySuite) TestSweepIgnoresWaitingRooms() {
	rm, err := s.registry.Create(s.ctx, "A", "", s.notifier)
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	s.Equal(0, s.registry.Sweep(s.ctx))
	s.Equal(model.RoomStatusWaiting, rm.Status())
	s.Equal(1, s.registry.Count())
}

func (s *RegistrySuite) TestSweepDropsOldFinishedRooms() {
	rm := s.startGame("A")
	_, err := rm.Finish()
	s.Require().NoError(err)

	s.clock.Advance(9 * time.Minute)
	s.registry.Sweep(s.ctx)
	s.Equal(1, s.registry.Count())

	s.clock.Advance(time.Minute)
	s.registry.Sweep(s.ctx)
	s.Equal(0, s.registry.Count())
}

func (s *RegistrySuite) TestSweepIsolatesPanickingAndSlowFinishes() {
	store := &hookStore{panicOn: "PANIC2", blockOn: "SLOW22", release: make(chan struct{})}
	defer close(store.release)
	logger, logs := testutil.CaptureLogger()
	s.registry = s.newRegistryWithLogger(fixedWords{"программирование"}, store, logger)

	s.random.QueueString("PANIC2", "SLOW22", "GOOD22", "GOOD33")
	rooms := []*room.Room{s.startGame("A"), s.startGame("B"), s.startGame("C"), s.startGame("D")}

	s.clock.Advance(5 * time.Second)
	finished := s.registry.Sweep(s.ctx)

	s.Equal(2, finished)
	for _, rm := range rooms {
		s.Equal(model.RoomStatusFinished, rm.Status(), "room %s", rm.ID())
	}

	s.True(logs.Contains("room finish panicked"))
	s.True(logs.Contains("room finish timed out"))

	store.mu.Lock()
	defer store.mu.Unlock()
	s.ElementsMatch([]model.RoomID{"GOOD22", "GOOD33"}, store.saved)
}

func (s *RegistrySuite) TestRunSweepsOnTick() {
	rm := s.startGame("A")

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- s.registry.Run(ctx) }()

	s.Eventually(func() bool {
		s.clock.Advance(time.Second)
		return rm.Status() == model.RoomStatusFinished
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("Run did not stop after cancel")
	}
}
