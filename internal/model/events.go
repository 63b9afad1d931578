package model

import (
	"encoding/json"
	"fmt"
)

// EventKind is the "type" tag of an outbound server event
type EventKind string

const (
	EventConnected   EventKind = "CONNECTED"
	EventRoomCreated EventKind = "ROOM_CREATED"
	EventRoomJoined  EventKind = "ROOM_JOINED"
	EventRoomLeft    EventKind = "ROOM_LEFT"
	EventError       EventKind = "ERROR"
	EventGameStart   EventKind = "GAME_START"
	EventWordResult  EventKind = "WORD_RESULT"
	EventWordFound   EventKind = "WORD_FOUND"
	EventGameState   EventKind = "GAME_STATE"
	EventGameEnd     EventKind = "GAME_END"
)

// Event is a message pushed to a client.
// The set of implementations is closed; see DecodeEvent.
type Event interface {
	Kind() EventKind
	event()
}

// ConnectedEvent acknowledges JOIN with the player's assigned ID
type ConnectedEvent struct {
	PlayerID PlayerID `json:"playerId"`
}

// RoomCreatedEvent is sent to the creator of a new room
type RoomCreatedEvent struct {
	RoomID RoomID `json:"roomId"`
}

// RoomJoinedEvent is sent to a player who joined a room
type RoomJoinedEvent struct {
	RoomID RoomID `json:"roomId"`
}

// RoomLeftEvent confirms a LEAVE_ROOM
type RoomLeftEvent struct {
	RoomID RoomID `json:"roomId"`
}

// ErrorEvent reports a failed request to its sender
type ErrorEvent struct {
	Message string `json:"message"`
}

// GameStartEvent is broadcast when a room starts playing
type GameStartEvent struct {
	MainWord       string `json:"mainWord"`
	AvailableCells int    `json:"availableCells"`
	TimeLimit      int    `json:"timeLimit"` // seconds
}

// WordResultEvent tells the submitter whether a word was accepted
type WordResultEvent struct {
	Word    string `json:"word"`
	Valid   bool   `json:"valid"`
	Score   int    `json:"score"`
	Message string `json:"message,omitempty"`
}

// WordFoundEvent tells the other players that someone scored a word
type WordFoundEvent struct {
	PlayerID PlayerID `json:"playerId"`
	Username string   `json:"username"`
	Word     string   `json:"word"`
	Score    int      `json:"score"`
}

// Opponent is another player as seen in a state snapshot; their words stay hidden
type Opponent struct {
	Username   string `json:"username"`
	Score      int    `json:"score"`
	WordsCount int    `json:"wordsCount"`
}

// GameState is one player's view of their room
type GameState struct {
	MainWord       string     `json:"mainWord"`
	AvailableCells int        `json:"availableCells"`
	TimeLeft       int        `json:"timeLeft"` // seconds
	Score          int        `json:"score"`
	UserWords      []string   `json:"userWords"`
	Opponents      []Opponent `json:"opponents"`
	RoomID         RoomID     `json:"roomId"`
	Status         RoomStatus `json:"status"`
}

// GameStateEvent carries a per-player state snapshot
type GameStateEvent struct {
	State GameState `json:"state"`
}

// Result is one row of the final standings
type Result struct {
	Username  string   `json:"username"`
	Score     int      `json:"score"`
	UserWords []string `json:"userWords"`
}

// GameEndEvent carries final standings, highest score first
type GameEndEvent struct {
	Results []Result `json:"results"`
}

func (ConnectedEvent) Kind() EventKind   { return EventConnected }
func (RoomCreatedEvent) Kind() EventKind { return EventRoomCreated }
func (RoomJoinedEvent) Kind() EventKind  { return EventRoomJoined }
func (RoomLeftEvent) Kind() EventKind    { return EventRoomLeft }
func (ErrorEvent) Kind() EventKind       { return EventError }
func (GameStartEvent) Kind() EventKind   { return EventGameStart }
func (WordResultEvent) Kind() EventKind  { return EventWordResult }
func (WordFoundEvent) Kind() EventKind   { return EventWordFound }
func (GameStateEvent) Kind() EventKind   { return EventGameState }
func (GameEndEvent) Kind() EventKind     { return EventGameEnd }

func (ConnectedEvent) event()   {}
func (RoomCreatedEvent) event() {}
func (RoomJoinedEvent) event()  {}
func (RoomLeftEvent) event()    {}
func (ErrorEvent) event()       {}
func (GameStartEvent) event()   {}
func (WordResultEvent) event()  {}
func (WordFoundEvent) event()   {}
func (GameStateEvent) event()   {}
func (GameEndEvent) event()     {}

// EncodeEvent serializes an event with its type tag
func EncodeEvent(ev Event) ([]byte, error) {
	return tagged(string(ev.Kind()), ev)
}

// DecodeEvent parses a server event, as received by clients
func DecodeEvent(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch EventKind(env.Type) {
	case EventConnected:
		return decodeAs[ConnectedEvent](data)
	case EventRoomCreated:
		return decodeAs[RoomCreatedEvent](data)
	case EventRoomJoined:
		return decodeAs[RoomJoinedEvent](data)
	case EventRoomLeft:
		return decodeAs[RoomLeftEvent](data)
	case EventError:
		return decodeAs[ErrorEvent](data)
	case EventGameStart:
		return decodeAs[GameStartEvent](data)
	case EventWordResult:
		return decodeAs[WordResultEvent](data)
	case EventWordFound:
		return decodeAs[WordFoundEvent](data)
	case EventGameState:
		return decodeAs[GameStateEvent](data)
	case EventGameEnd:
		return decodeAs[GameEndEvent](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type)
	}
}

func decodeAs[T Event](data []byte) (Event, error) {
	var ev T
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return ev, nil
}
