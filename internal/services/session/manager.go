package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/mcoot/wordrooms/internal/model"
	"github.com/mcoot/wordrooms/internal/services/registry"
	"github.com/mcoot/wordrooms/internal/services/room"
)

// Sender pushes an encoded event to one client without blocking
type Sender interface {
	Send(data []byte) error
}

type connection struct {
	playerID    model.PlayerID
	displayName string
	roomID      model.RoomID
	sender      Sender
}

// Manager tracks connected players and routes their messages to rooms.
// It is also the room.Notifier for every room it creates.
type Manager struct {
	registry *registry.Registry
	logger   *slog.Logger

	mu    sync.RWMutex
	conns map[model.PlayerID]*connection
}

var _ room.Notifier = (*Manager)(nil)

// NewManager creates a session Manager
func NewManager(registry *registry.Registry, logger *slog.Logger) *Manager {
	return &Manager{
		registry: registry,
		logger:   logger.With(slog.String("component", "session")),
		conns:    make(map[model.PlayerID]*connection),
	}
}

// Connect registers a new connection that is not yet in any room
func (m *Manager) Connect(playerID model.PlayerID, displayName string, sender Sender) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.conns[playerID]; exists {
		return model.ErrPlayerAlreadyConnected
	}
	m.conns[playerID] = &connection{
		playerID:    playerID,
		displayName: strings.TrimSpace(displayName),
		sender:      sender,
	}

	m.logger.Info("player connected", slog.String("player_id", string(playerID)))
	return nil
}

// Disconnect removes the player from their room and forgets the connection
func (m *Manager) Disconnect(ctx context.Context, playerID model.PlayerID) {
	m.leaveCurrent(ctx, playerID)

	m.mu.Lock()
	delete(m.conns, playerID)
	m.mu.Unlock()

	m.logger.Info("player disconnected", slog.String("player_id", string(playerID)))
}

// IsConnected reports whether a connection record exists
func (m *Manager) IsConnected(playerID model.PlayerID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.conns[playerID]
	return ok
}

// CurrentRoom returns the room the player is in, or ""
func (m *Manager) CurrentRoom(playerID model.PlayerID) model.RoomID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.conns[playerID]; ok {
		return c.roomID
	}
	return ""
}

// ConnectionCount returns the number of connected players
func (m *Manager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Dispatch decodes one raw client message and handles it
func (m *Manager) Dispatch(ctx context.Context, playerID model.PlayerID, data []byte) {
	msg, err := model.DecodeInbound(data)
	switch {
	case errors.Is(err, model.ErrUnknownMessage):
		m.logger.Debug("ignoring unknown message",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		return
	case err != nil:
		m.logger.Debug("malformed message",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		m.sendError(playerID, model.ErrMalformedMessage)
		return
	}

	m.Handle(ctx, playerID, msg)
}

// Handle routes a decoded message by kind
func (m *Manager) Handle(ctx context.Context, playerID model.PlayerID, msg model.Inbound) {
	if !m.IsConnected(playerID) {
		m.logger.Warn("message from unknown player", slog.String("player_id", string(playerID)))
		return
	}

	switch msg := msg.(type) {
	case model.JoinMessage:
		m.handleJoin(playerID, msg)
	case model.CreateRoomMessage:
		m.handleCreateRoom(ctx, playerID)
	case model.JoinRoomMessage:
		m.handleJoinRoom(ctx, playerID, msg)
	case model.SubmitWordMessage:
		m.handleSubmitWord(ctx, playerID, msg)
	case model.FinishGameMessage:
		m.handleFinishGame(playerID, msg)
	case model.LeaveRoomMessage:
		m.handleLeaveRoom(ctx, playerID)
	}
}

func (m *Manager) handleJoin(playerID model.PlayerID, msg model.JoinMessage) {
	if name := strings.TrimSpace(msg.Username); name != "" {
		m.mu.Lock()
		if c, ok := m.conns[playerID]; ok {
			c.displayName = name
		}
		m.mu.Unlock()
	}
	m.Send(playerID, model.ConnectedEvent{PlayerID: playerID})
}

func (m *Manager) handleCreateRoom(ctx context.Context, playerID model.PlayerID) {
	m.leaveCurrent(ctx, playerID)

	rm, err := m.registry.Create(ctx, playerID, m.displayName(playerID), m)
	if err != nil {
		m.logger.Error("failed to create room",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		m.sendError(playerID, err)
		return
	}
	m.setRoom(playerID, rm.ID())
}

func (m *Manager) handleJoinRoom(ctx context.Context, playerID model.PlayerID, msg model.JoinRoomMessage) {
	roomID := model.RoomID(strings.ToUpper(strings.TrimSpace(string(msg.RoomID))))

	if roomID == m.CurrentRoom(playerID) && roomID != "" {
		m.sendError(playerID, model.ErrAlreadyInRoom)
		return
	}

	rm, err := m.registry.Get(roomID)
	if err != nil {
		m.sendError(playerID, err)
		return
	}
	// A rejected join must not cost the player their current room
	if err := rm.CanJoin(playerID); err != nil {
		m.sendError(playerID, err)
		return
	}

	m.leaveCurrent(ctx, playerID)

	if err := rm.Join(playerID, m.displayName(playerID)); err != nil {
		m.sendError(playerID, err)
		return
	}
	m.setRoom(playerID, roomID)
}

func (m *Manager) handleSubmitWord(ctx context.Context, playerID model.PlayerID, msg model.SubmitWordMessage) {
	roomID := m.CurrentRoom(playerID)
	if roomID == "" {
		m.sendError(playerID, model.ErrNotInRoom)
		return
	}

	rm, err := m.registry.Get(roomID)
	if err != nil {
		m.setRoom(playerID, "")
		m.sendError(playerID, model.ErrNotInRoom)
		return
	}

	err = rm.SubmitWord(ctx, playerID, msg.Word)
	switch {
	case err == nil, errors.Is(err, model.ErrGameNotInProgress):
		// Words sent outside a running game are dropped
	default:
		m.sendError(playerID, err)
	}
}

func (m *Manager) handleFinishGame(playerID model.PlayerID, msg model.FinishGameMessage) {
	roomID := model.RoomID(strings.ToUpper(strings.TrimSpace(string(msg.RoomID))))
	if roomID == "" {
		roomID = m.CurrentRoom(playerID)
	}
	if roomID == "" {
		m.sendError(playerID, model.ErrNotInRoom)
		return
	}

	rm, err := m.registry.Get(roomID)
	if err != nil {
		m.sendError(playerID, err)
		return
	}
	if !rm.HasPlayer(playerID) {
		m.sendError(playerID, model.ErrNotInRoom)
		return
	}

	if _, err := rm.Finish(); err != nil {
		m.sendError(playerID, err)
		return
	}
	m.logger.Info("game finished by player",
		slog.String("player_id", string(playerID)),
		slog.String("room_id", string(roomID)),
	)
}

func (m *Manager) handleLeaveRoom(ctx context.Context, playerID model.PlayerID) {
	roomID := m.leaveCurrent(ctx, playerID)
	if roomID == "" {
		m.sendError(playerID, model.ErrNotInRoom)
		return
	}
	m.Send(playerID, model.RoomLeftEvent{RoomID: roomID})
}

// leaveCurrent removes the player from their room, if any, and returns its ID
func (m *Manager) leaveCurrent(ctx context.Context, playerID model.PlayerID) model.RoomID {
	roomID := m.CurrentRoom(playerID)
	if roomID == "" {
		return ""
	}
	m.setRoom(playerID, "")

	err := m.registry.RemovePlayer(roomID, playerID)
	if err != nil && !errors.Is(err, model.ErrRoomNotFound) && !errors.Is(err, model.ErrNotInRoom) {
		m.logger.ErrorContext(ctx, "failed to leave room",
			slog.String("player_id", string(playerID)),
			slog.String("room_id", string(roomID)),
			slog.String("error", err.Error()),
		)
	}
	return roomID
}

func (m *Manager) setRoom(playerID model.PlayerID, roomID model.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.conns[playerID]; ok {
		c.roomID = roomID
	}
}

func (m *Manager) displayName(playerID model.PlayerID) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.conns[playerID]; ok && c.displayName != "" {
		return c.displayName
	}
	return string(playerID)
}

func (m *Manager) sendError(playerID model.PlayerID, err error) {
	m.Send(playerID, model.ErrorEvent{Message: errorMessage(err)})
}

// errorMessage strips wrapping so clients see the sentinel's text
func errorMessage(err error) string {
	for _, sentinel := range []error{
		model.ErrMalformedMessage,
		model.ErrRoomNotFound,
		model.ErrRoomFull,
		model.ErrAlreadyInRoom,
		model.ErrNotInRoom,
		model.ErrGameAlreadyStarted,
		model.ErrGameNotInProgress,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal error"
}

// Send encodes an event and pushes it to the player's connection.
// Delivery failures are logged and dropped.
func (m *Manager) Send(playerID model.PlayerID, ev model.Event) {
	data, err := model.EncodeEvent(ev)
	if err != nil {
		m.logger.Error("failed to encode event",
			slog.String("player_id", string(playerID)),
			slog.String("event", string(ev.Kind())),
			slog.String("error", err.Error()),
		)
		return
	}

	m.mu.RLock()
	c, ok := m.conns[playerID]
	m.mu.RUnlock()
	if !ok {
		m.logger.Debug("dropping event for disconnected player",
			slog.String("player_id", string(playerID)),
			slog.String("event", string(ev.Kind())),
		)
		return
	}

	if err := c.sender.Send(data); err != nil {
		m.logger.Warn("failed to deliver event",
			slog.String("player_id", string(playerID)),
			slog.String("event", string(ev.Kind())),
			slog.String("error", err.Error()),
		)
	}
}

// Broadcast delivers an event to every member of a room except exclude
func (m *Manager) Broadcast(roomID model.RoomID, ev model.Event, exclude model.PlayerID) error {
	rm, err := m.registry.Get(roomID)
	if err != nil {
		return err
	}
	rm.Broadcast(ev, exclude)
	return nil
}
