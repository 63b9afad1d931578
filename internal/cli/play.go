package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/wordrooms/internal/model"
)

const writeWait = 10 * time.Second

// Commands typed at the play prompt
const (
	commandFinish = "/finish"
	commandLeave  = "/leave"
	commandQuit   = "/quit"
)

type playOptions struct {
	playerID string
	name     string
	create   bool
	join     string
}

func newPlayCmd() *cobra.Command {
	var opts playOptions

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game from the terminal",
		Long: `Connect to the game channel, create or join a room, and submit words.

Each line typed is submitted as a word. Special commands:
  /finish  end the game for everyone in the room
  /leave   leave the room
  /quit    disconnect

The session ends when the game is over, when stdin closes, or on Ctrl+C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.create == (opts.join != "") {
				return fmt.Errorf("exactly one of --create or --join is required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if opts.playerID == "" {
				var result PlayerIDResult
				if err := client.Get(ctx, "/api/v1/players/id", nil, &result); err != nil {
					return fmt.Errorf("failed to get a player ID: %w", err)
				}
				opts.playerID = result.PlayerID
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout()).Verbose(cfg.Verbose)
			return runPlay(ctx, opts, cmd.InOrStdin(), out)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "Display name (defaults to the player ID)")
	cmd.Flags().StringVar(&opts.playerID, "player", "", "Player ID (generated by the server if empty)")
	cmd.Flags().BoolVar(&opts.create, "create", false, "Create a new room")
	cmd.Flags().StringVar(&opts.join, "join", "", "Join the room with this code")

	return cmd
}

// gameConn serializes writes to the WebSocket
type gameConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (g *gameConn) send(msg model.Inbound) error {
	data, err := model.EncodeInbound(msg)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	_ = g.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return g.conn.WriteMessage(websocket.TextMessage, data)
}

func (g *gameConn) close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	_ = g.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = g.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = g.conn.Close()
}

func runPlay(ctx context.Context, opts playOptions, in io.Reader, out *Output) error {
	wsURL, err := cfg.WebSocketURL(opts.playerID, opts.name)
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	game := &gameConn{conn: conn}
	defer game.close()

	done := make(chan error, 1)
	go func() {
		done <- readEvents(conn, out)
	}()

	if opts.name != "" {
		if err := game.send(model.JoinMessage{Username: opts.name}); err != nil {
			return err
		}
	}
	if opts.create {
		err = game.send(model.CreateRoomMessage{})
	} else {
		err = game.send(model.JoinRoomMessage{RoomID: model.RoomID(opts.join)})
	}
	if err != nil {
		return err
	}

	lines := make(chan string)
	go scanLines(ctx, in, lines)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-done:
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			msg, quit := parseLine(line)
			if quit {
				return nil
			}
			if msg == nil {
				continue
			}
			if err := game.send(msg); err != nil {
				return fmt.Errorf("send failed: %w", err)
			}
		}
	}
}

// readEvents prints events until the game ends or the connection closes
func readEvents(conn *websocket.Conn, out *Output) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code != websocket.CloseNormalClosure {
				return fmt.Errorf("server closed the connection: %s", closeErr.Text)
			}
			return nil
		}

		ev, err := model.DecodeEvent(data)
		if err != nil {
			continue
		}
		out.PrintEvent(ev)

		switch ev.(type) {
		case model.GameEndEvent, model.RoomLeftEvent:
			return nil
		}
	}
}

func scanLines(ctx context.Context, in io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

// parseLine turns a prompt line into a message; quit is true for /quit
func parseLine(line string) (msg model.Inbound, quit bool) {
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "":
		return nil, false
	case commandQuit:
		return nil, true
	case commandFinish:
		return model.FinishGameMessage{}, false
	case commandLeave:
		return model.LeaveRoomMessage{}, false
	default:
		return model.SubmitWordMessage{Word: line}, false
	}
}
