package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mcoot/wordrooms/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format  string
	w       io.Writer
	verbose bool
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Verbose enables opponent details in game state output
func (o *Output) Verbose(v bool) *Output {
	o.verbose = v
	return o
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

// PrintEvent outputs a game event: one JSON line each in json mode
func (o *Output) PrintEvent(ev model.Event) {
	if o.format == "json" {
		data, err := model.EncodeEvent(ev)
		if err != nil {
			o.PrintError(err)
			return
		}
		_, _ = fmt.Fprintln(o.w, string(data))
		return
	}
	o.printEventText(ev)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printf("Status: %s\n", v.Status)
	case WordCheck:
		o.printWordCheck(v)
	case PlayerIDResult:
		o.printf("%s\n", v.PlayerID)
	case RoomList:
		o.printRoomList(v)
	case ResultList:
		o.printResultList(v)
	case GameSummary:
		o.printGameSummary(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// WordCheck response type
type WordCheck struct {
	Word    string `json:"word"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// PlayerIDResult response type
type PlayerIDResult struct {
	PlayerID string `json:"player_id"`
}

// Room response type
type Room struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	PlayerCount int       `json:"player_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoomList response type
type RoomList struct {
	Rooms []Room `json:"rooms"`
}

// Standing response type
type Standing struct {
	PlayerID string   `json:"player_id"`
	Username string   `json:"username"`
	Score    int      `json:"score"`
	Words    []string `json:"words"`
}

// GameSummary response type
type GameSummary struct {
	ID        string     `json:"id"`
	RoomID    string     `json:"room_id"`
	MainWord  string     `json:"main_word"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   time.Time  `json:"ended_at"`
	Winner    *string    `json:"winner"`
	Standings []Standing `json:"standings"`
}

// ResultList response type
type ResultList struct {
	Results []GameSummary `json:"results"`
}

func (o *Output) printWordCheck(c WordCheck) {
	if c.Valid {
		o.printf("%s: valid\n", c.Word)
		return
	}
	o.printf("%s: invalid (%s)\n", c.Word, c.Message)
}

func (o *Output) printRoomList(l RoomList) {
	if len(l.Rooms) == 0 {
		o.printf("No live rooms\n")
		return
	}
	for _, r := range l.Rooms {
		o.printf("%s  %-8s  %d player(s)\n", r.ID, r.Status, r.PlayerCount)
	}
}

func (o *Output) printResultList(l ResultList) {
	if len(l.Results) == 0 {
		o.printf("No finished games\n")
		return
	}
	for _, g := range l.Results {
		winner := "-"
		if g.Winner != nil {
			winner = *g.Winner
		}
		o.printf("%s  %s  %s  room %s  winner: %s\n",
			g.EndedAt.Local().Format("2006-01-02 15:04"), g.ID, g.MainWord, g.RoomID, winner)
	}
}

func (o *Output) printGameSummary(g GameSummary) {
	o.printf("Game: %s\n", g.ID)
	o.printf("Room: %s\n", g.RoomID)
	o.printf("Main word: %s\n", g.MainWord)
	o.printf("Played: %s to %s\n",
		g.StartedAt.Local().Format("2006-01-02 15:04:05"), g.EndedAt.Local().Format("15:04:05"))
	o.printStandings(g.Standings)
}

func (o *Output) printStandings(standings []Standing) {
	o.printf("\nStandings:\n")
	for i, s := range standings {
		o.printf("  %d. %s: %d points\n", i+1, s.Username, s.Score)
		if len(s.Words) > 0 {
			o.printf("     %s\n", strings.Join(s.Words, ", "))
		}
	}
}

func (o *Output) printEventText(ev model.Event) {
	switch e := ev.(type) {
	case model.ConnectedEvent:
		o.printf("Connected as %s\n", e.PlayerID)
	case model.RoomCreatedEvent:
		o.printf("Room created: %s (share this code to invite players)\n", e.RoomID)
	case model.RoomJoinedEvent:
		o.printf("Joined room %s\n", e.RoomID)
	case model.RoomLeftEvent:
		o.printf("Left room %s\n", e.RoomID)
	case model.ErrorEvent:
		o.printf("Error: %s\n", e.Message)
	case model.GameStartEvent:
		o.printf("Game started! Main word: %s (%d seconds)\n", strings.ToUpper(e.MainWord), e.TimeLimit)
	case model.WordResultEvent:
		if e.Valid {
			o.printf("Accepted: %s (+%d)\n", e.Word, e.Score)
		} else {
			o.printf("Rejected: %s (%s)\n", e.Word, e.Message)
		}
	case model.WordFoundEvent:
		o.printf("%s found %s (+%d)\n", e.Username, e.Word, e.Score)
	case model.GameStateEvent:
		o.printGameState(e.State)
	case model.GameEndEvent:
		o.printf("Game over!\n")
		standings := make([]Standing, len(e.Results))
		for i, r := range e.Results {
			standings[i] = Standing{Username: r.Username, Score: r.Score, Words: r.UserWords}
		}
		o.printStandings(standings)
	}
}

func (o *Output) printGameState(s model.GameState) {
	if s.Status == model.RoomStatusWaiting {
		o.printf("Room %s waiting for players (%d joined)\n", s.RoomID, len(s.Opponents)+1)
		return
	}
	o.printf("[%s] %s | score %d | %d word(s) | %ds left\n",
		s.RoomID, strings.ToUpper(s.MainWord), s.Score, len(s.UserWords), s.TimeLeft)
	if o.verbose {
		for _, opp := range s.Opponents {
			o.printf("  %s: %d points, %d word(s)\n", opp.Username, opp.Score, opp.WordsCount)
		}
	}
}
