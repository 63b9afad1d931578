package room

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/wordrooms/internal/dependencies/clock"
	"github.com/mcoot/wordrooms/internal/model"
	"github.com/mcoot/wordrooms/internal/services/scoring"
)

// Notifier delivers events to individual players. Send must not block.
type Notifier interface {
	Send(playerID model.PlayerID, ev model.Event)
}

// Checker decides whether a normalized word exists
type Checker interface {
	Exists(ctx context.Context, word string) (bool, error)
}

// FinishHook receives the summary of a game once it finishes
type FinishHook func(summary *model.GameSummary)

// Params holds everything a Room needs at creation
type Params struct {
	ID       model.RoomID
	MainWord string
	Config   model.RoomConfig
	Clock    clock.Clock
	Checker  Checker
	Notifier Notifier
	OnFinish FinishHook
	Logger   *slog.Logger
}

// Room is one game: its players, main word and status.
// All state changes and event deliveries happen under mu, so events for a
// room reach each player in the order the changes were made.
type Room struct {
	id       model.RoomID
	mainWord string
	cfg      model.RoomConfig
	clock    clock.Clock
	checker  Checker
	notifier Notifier
	onFinish FinishHook
	logger   *slog.Logger

	mu        sync.Mutex
	players   []*model.Player
	status    model.RoomStatus
	closed    bool // emptied; never reopened
	createdAt time.Time
	startedAt time.Time
	endedAt   time.Time
}

// New creates a waiting room containing only the creator
func New(p Params, creator model.PlayerID, creatorName string) *Room {
	if p.MainWord == "" {
		p.MainWord = model.FallbackMainWord
	}
	return &Room{
		id:        p.ID,
		mainWord:  p.MainWord,
		cfg:       p.Config,
		clock:     p.Clock,
		checker:   p.Checker,
		notifier:  p.Notifier,
		onFinish:  p.OnFinish,
		logger:    p.Logger.With(slog.String("room_id", string(p.ID))),
		players:   []*model.Player{newPlayer(creator, creatorName)},
		status:    model.RoomStatusWaiting,
		createdAt: p.Clock.Now(),
	}
}

func newPlayer(id model.PlayerID, name string) *model.Player {
	if name == "" {
		name = string(id)
	}
	return &model.Player{ID: id, DisplayName: name, Words: []string{}}
}

// ID returns the room code
func (r *Room) ID() model.RoomID {
	return r.id
}

// MainWord returns the word players build from
func (r *Room) MainWord() string {
	return r.mainWord
}

// Status returns the current phase
func (r *Room) Status() model.RoomStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Closed reports whether the last player has left
func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Info returns a listing view of the room
func (r *Room) Info() model.RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return model.RoomInfo{
		ID:          r.id,
		Status:      r.status,
		PlayerCount: len(r.players),
		CreatedAt:   r.createdAt,
	}
}

// HasPlayer reports whether the player is a member
func (r *Room) HasPlayer(playerID model.PlayerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findPlayer(playerID) != nil
}

// Player returns a copy of a member's state
func (r *Room) Player(playerID model.PlayerID) (model.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.findPlayer(playerID)
	if p == nil {
		return model.Player{}, false
	}
	cp := *p
	cp.Words = append([]string(nil), p.Words...)
	return cp, true
}

// Expired reports whether a playing room has used up its time limit
func (r *Room) Expired(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status == model.RoomStatusPlaying && now.Sub(r.startedAt) >= r.cfg.TimeLimit
}

// FinishedBefore reports whether the room finished at or before cutoff
func (r *Room) FinishedBefore(cutoff time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status == model.RoomStatusFinished && !r.endedAt.After(cutoff)
}

// AnnounceCreated sends the creator ROOM_CREATED and a first state snapshot
func (r *Room) AnnounceCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.players) == 0 {
		return
	}
	creator := r.players[0].ID
	r.notifier.Send(creator, model.RoomCreatedEvent{RoomID: r.id})
	r.notifier.Send(creator, model.GameStateEvent{State: r.stateFor(creator)})
}

// CanJoin reports the error Join would return right now, without joining
func (r *Room) CanJoin(playerID model.PlayerID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.joinable(playerID)
}

func (r *Room) joinable(playerID model.PlayerID) error {
	if r.closed {
		return model.ErrRoomNotFound
	}
	if r.findPlayer(playerID) != nil {
		return model.ErrAlreadyInRoom
	}
	if r.status != model.RoomStatusWaiting {
		return model.ErrGameAlreadyStarted
	}
	if len(r.players) >= r.cfg.MaxPlayers {
		return model.ErrRoomFull
	}
	return nil
}

// Join adds a player to a waiting room. The second player starts the game.
func (r *Room) Join(playerID model.PlayerID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.joinable(playerID); err != nil {
		return err
	}

	r.players = append(r.players, newPlayer(playerID, name))
	r.notifier.Send(playerID, model.RoomJoinedEvent{RoomID: r.id})

	r.logger.Info("player joined room",
		slog.String("player_id", string(playerID)),
		slog.Int("player_count", len(r.players)),
	)

	if len(r.players) == 2 {
		r.status = model.RoomStatusPlaying
		r.startedAt = r.clock.Now()
		r.broadcast(model.GameStartEvent{
			MainWord:       r.mainWord,
			AvailableCells: r.cfg.AvailableCells,
			TimeLimit:      int(r.cfg.TimeLimit / time.Second),
		}, "")
		r.logger.Info("game started", slog.String("main_word", r.mainWord))
	}

	r.broadcastState()
	return nil
}

// SubmitWord validates and scores a word for a player.
// Rejections are reported to the player as WORD_RESULT and return nil.
// The existence check runs without holding the room lock.
func (r *Room) SubmitWord(ctx context.Context, playerID model.PlayerID, raw string) error {
	word := model.NormalizeWord(raw)

	r.mu.Lock()
	if err := r.checkSubmission(playerID, word); err != nil {
		r.mu.Unlock()
		return err
	}
	if reason := r.precheck(playerID, word); reason != "" {
		r.reject(playerID, word, reason)
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	exists, err := r.checker.Exists(ctx, word)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkSubmission(playerID, word); err != nil {
		return err
	}

	switch {
	case err != nil:
		r.logger.Warn("word check failed",
			slog.String("player_id", string(playerID)),
			slog.String("word", word),
			slog.String("error", err.Error()),
		)
		r.reject(playerID, word, model.ReasonCouldNotCheck)
		return nil
	case !exists:
		r.reject(playerID, word, model.ReasonUnknownWord)
		return nil
	case !scoring.CanSpell(word, r.mainWord):
		r.reject(playerID, word, model.ReasonCannotSpell)
		return nil
	}

	// Another submission of the same word may have been accepted meanwhile
	player := r.findPlayer(playerID)
	if player.HasWord(word) {
		r.reject(playerID, word, model.ReasonAlreadyUsed)
		return nil
	}

	points := player.AddWord(word)
	r.notifier.Send(playerID, model.WordResultEvent{Word: word, Valid: true, Score: points})
	r.broadcast(model.WordFoundEvent{
		PlayerID: playerID,
		Username: player.Name(),
		Word:     word,
		Score:    points,
	}, playerID)
	r.broadcastState()

	r.logger.Debug("word accepted",
		slog.String("player_id", string(playerID)),
		slog.String("word", word),
		slog.Int("score", player.Score),
	)
	return nil
}

// checkSubmission returns an error when the player cannot submit at all
func (r *Room) checkSubmission(playerID model.PlayerID, word string) error {
	if r.status != model.RoomStatusPlaying || r.closed {
		return model.ErrGameNotInProgress
	}
	if r.findPlayer(playerID) == nil {
		return model.ErrNotInRoom
	}
	return nil
}

// precheck returns a rejection reason for the cheap rules, or ""
func (r *Room) precheck(playerID model.PlayerID, word string) string {
	if model.CheckWordLength(word) != nil {
		return model.ReasonTooShort
	}
	if r.findPlayer(playerID).HasWord(word) {
		return model.ReasonAlreadyUsed
	}
	return ""
}

func (r *Room) reject(playerID model.PlayerID, word, reason string) {
	r.notifier.Send(playerID, model.WordResultEvent{
		Word:    word,
		Valid:   false,
		Score:   0,
		Message: reason,
	})
}

// Finish ends a playing game and broadcasts the standings.
// It returns false if the game had already finished.
func (r *Room) Finish() (bool, error) {
	r.mu.Lock()

	switch {
	case r.closed || r.status == model.RoomStatusFinished:
		r.mu.Unlock()
		return false, nil
	case r.status != model.RoomStatusPlaying:
		r.mu.Unlock()
		return false, model.ErrGameNotInProgress
	}

	r.status = model.RoomStatusFinished
	r.endedAt = r.clock.Now()

	sort.SliceStable(r.players, func(i, j int) bool {
		return r.players[i].Score > r.players[j].Score
	})

	results := make([]model.Result, len(r.players))
	standings := make([]model.Standing, len(r.players))
	for i, p := range r.players {
		words := append([]string{}, p.Words...)
		results[i] = model.Result{Username: p.Name(), Score: p.Score, UserWords: words}
		standings[i] = model.Standing{PlayerID: p.ID, Username: p.Name(), Score: p.Score, Words: words}
	}
	r.broadcast(model.GameEndEvent{Results: results}, "")

	summary := &model.GameSummary{
		ID:        uuid.NewString(),
		RoomID:    r.id,
		MainWord:  r.mainWord,
		StartedAt: r.startedAt,
		EndedAt:   r.endedAt,
		Standings: standings,
	}

	r.logger.Info("game finished",
		slog.Int("player_count", len(r.players)),
		slog.Duration("duration", r.endedAt.Sub(r.startedAt)),
	)
	r.mu.Unlock()

	if r.onFinish != nil {
		r.onFinish(summary)
	}
	return true, nil
}

// RemovePlayer drops a member and returns how many remain.
// A room left empty is closed for good.
func (r *Room) RemovePlayer(playerID model.PlayerID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, p := range r.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return len(r.players), model.ErrNotInRoom
	}

	r.players = append(r.players[:idx], r.players[idx+1:]...)

	r.logger.Info("player left room",
		slog.String("player_id", string(playerID)),
		slog.Int("player_count", len(r.players)),
	)

	if len(r.players) == 0 {
		r.closed = true
		return 0, nil
	}

	r.broadcastState()
	return len(r.players), nil
}

// Broadcast delivers an event to every member except exclude
func (r *Room) Broadcast(ev model.Event, exclude model.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcast(ev, exclude)
}

// State returns a player's view of the room
func (r *Room) State(playerID model.PlayerID) model.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateFor(playerID)
}

func (r *Room) broadcast(ev model.Event, exclude model.PlayerID) {
	for _, p := range r.players {
		if p.ID != exclude {
			r.notifier.Send(p.ID, ev)
		}
	}
}

func (r *Room) broadcastState() {
	for _, p := range r.players {
		r.notifier.Send(p.ID, model.GameStateEvent{State: r.stateFor(p.ID)})
	}
}

func (r *Room) stateFor(playerID model.PlayerID) model.GameState {
	state := model.GameState{
		MainWord:       r.mainWord,
		AvailableCells: r.cfg.AvailableCells,
		TimeLeft:       r.timeLeft(),
		UserWords:      []string{},
		Opponents:      []model.Opponent{},
		RoomID:         r.id,
		Status:         r.status,
	}
	for _, p := range r.players {
		if p.ID == playerID {
			state.Score = p.Score
			state.UserWords = append(state.UserWords, p.Words...)
			continue
		}
		state.Opponents = append(state.Opponents, model.Opponent{
			Username:   p.Name(),
			Score:      p.Score,
			WordsCount: len(p.Words),
		})
	}
	return state
}

// timeLeft returns whole seconds remaining
func (r *Room) timeLeft() int {
	switch r.status {
	case model.RoomStatusWaiting:
		return int(r.cfg.TimeLimit / time.Second)
	case model.RoomStatusPlaying:
		remaining := r.cfg.TimeLimit - r.clock.Now().Sub(r.startedAt)
		if remaining < 0 {
			return 0
		}
		return int(remaining / time.Second)
	default:
		return 0
	}
}

func (r *Room) findPlayer(playerID model.PlayerID) *model.Player {
	for _, p := range r.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}
