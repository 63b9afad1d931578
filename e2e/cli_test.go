package e2e_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/wordrooms/internal/api"
	"github.com/mcoot/wordrooms/internal/factory"
	"github.com/mcoot/wordrooms/internal/model"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "wrgame-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/wrgame")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) command(args ...string) *exec.Cmd {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)
	return exec.Command(r.binaryPath, fullArgs...)
}

func (r *cliRunner) run(args ...string) (string, error) {
	output, err := r.command(args...).CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	app      *factory.App
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Listen on a free port; the server takes ownership of the listener
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// Create application
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	// Load dictionary
	projectRoot := findProjectRoot(t)
	require.NoError(t, app.LoadDictionary(context.Background(), filepath.Join(projectRoot, "data/words.txt")))

	router := api.NewRouter(api.RouterConfig{
		Logger:    logger,
		Validator: app.Validator,
		Registry:  app.Registry,
		Results:   app.Storage,
		Sessions:  app.Sessions,
	})
	server := api.NewServer(router, api.DefaultServerConfig(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = app.Registry.Run(ctx)
	}()

	// Start server
	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		app:  app,
		addr: serverURL,
		shutdown: func() {
			cancel()
			_ = server.Shutdown(context.Background())
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type healthResponse struct {
	Status string `json:"status"`
}

type checkResponse struct {
	Word    string `json:"word"`
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type playerIDResponse struct {
	PlayerID string `json:"player_id"`
}

type roomsResponse struct {
	Rooms []struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		PlayerCount int    `json:"player_count"`
	} `json:"rooms"`
}

type resultsResponse struct {
	Results []struct {
		ID        string `json:"id"`
		RoomID    string `json:"room_id"`
		MainWord  string `json:"main_word"`
		Standings []struct {
			Username string `json:"username"`
			Score    int    `json:"score"`
		} `json:"standings"`
	} `json:"results"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_CheckWord(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("check", "Библиотека")
	require.NoError(t, err, "output: %s", output)

	var resp checkResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "библиотека", resp.Word)
	assert.True(t, resp.Valid)

	output, err = cli.run("check", "ыыыы")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, "not a known word", resp.Message)
}

func TestCLI_PlayerID(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("player-id")
	require.NoError(t, err, "output: %s", output)

	var resp playerIDResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Len(t, resp.PlayerID, 8)
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("results", "show", "missing")
	assert.Error(t, err)
	assert.Contains(t, output, "RESULT_NOT_FOUND")

	output, err = cli.run("play")
	assert.Error(t, err)
	assert.Contains(t, output, "exactly one of --create or --join")
}

func TestCLI_PlayFullGame(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Host creates a room over a raw connection
	wsURL := "ws" + strings.TrimPrefix(ts.addr, "http") + "/ws/host?username=Host"
	host, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	defer func() { _ = host.Close() }()

	data, err := model.EncodeInbound(model.CreateRoomMessage{})
	require.NoError(t, err)
	require.NoError(t, host.WriteMessage(websocket.TextMessage, data))

	var roomID model.RoomID
	require.NoError(t, host.SetReadDeadline(time.Now().Add(5*time.Second)))
	for roomID == "" {
		_, raw, err := host.ReadMessage()
		require.NoError(t, err)
		ev, err := model.DecodeEvent(raw)
		require.NoError(t, err)
		if created, ok := ev.(model.RoomCreatedEvent); ok {
			roomID = created.RoomID
		}
	}

	// The room is listed while waiting
	output, err := cli.run("rooms")
	require.NoError(t, err, "output: %s", output)
	var rooms roomsResponse
	require.NoError(t, json.Unmarshal([]byte(output), &rooms))
	require.Len(t, rooms.Rooms, 1)
	assert.Equal(t, string(roomID), rooms.Rooms[0].ID)
	assert.Equal(t, "waiting", rooms.Rooms[0].Status)

	// The CLI joins, which starts the game, then ends it
	play := cli.command("play", "--join", string(roomID), "--name", "Cli")
	stdin, err := play.StdinPipe()
	require.NoError(t, err)
	var out strings.Builder
	play.Stdout = &out
	play.Stderr = &out
	require.NoError(t, play.Start())

	_, err = io.WriteString(stdin, "/finish\n")
	require.NoError(t, err)

	waitErr := make(chan error, 1)
	go func() { waitErr <- play.Wait() }()
	select {
	case err := <-waitErr:
		require.NoError(t, err, "output: %s", out.String())
	case <-time.After(10 * time.Second):
		_ = play.Process.Kill()
		t.Fatal("play did not exit after the game ended")
	}
	_ = stdin.Close()

	assert.Contains(t, out.String(), `"type":"GAME_START"`)
	assert.Contains(t, out.String(), `"type":"GAME_END"`)

	// The finished game shows up in results
	assert.Eventually(t, func() bool {
		output, err := cli.run("results", "--limit", "5")
		if err != nil {
			return false
		}
		var results resultsResponse
		if json.Unmarshal([]byte(output), &results) != nil || len(results.Results) != 1 {
			return false
		}
		return results.Results[0].RoomID == string(roomID) && len(results.Results[0].Standings) == 2
	}, 5*time.Second, 100*time.Millisecond)
}
