package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mcoot/wordrooms/internal/model"
	"github.com/mcoot/wordrooms/internal/services/session"
)

// Handler upgrades /ws/{player_id} and runs the connection against the session manager
type Handler struct {
	sessions *session.Manager
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a WebSocket Handler
func NewHandler(sessions *session.Manager, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP blocks for the lifetime of the connection
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(mux.Vars(r)["player_id"])
	if playerID == "" {
		http.Error(w, "missing player id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response
		h.logger.Warn("websocket upgrade failed",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		return
	}

	client := NewClient(conn, playerID, h.logger)

	if err := h.sessions.Connect(playerID, r.URL.Query().Get("username"), client); err != nil {
		reason := err.Error()
		if !errors.Is(err, model.ErrPlayerAlreadyConnected) {
			reason = "internal error"
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason))
		_ = conn.Close()
		return
	}

	ctx := context.WithoutCancel(r.Context())
	go client.writePump()

	client.readPump(ctx, func(ctx context.Context, data []byte) {
		h.sessions.Dispatch(ctx, playerID, data)
	})

	h.sessions.Disconnect(ctx, playerID)
	client.Close()
}
