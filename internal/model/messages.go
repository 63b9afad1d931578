package model

import (
	"encoding/json"
	"fmt"
)

// MessageKind is the "type" tag of an inbound client message
type MessageKind string

const (
	MessageJoin         MessageKind = "JOIN"
	MessageCreateRoom   MessageKind = "CREATE_ROOM"
	MessageJoinRoom     MessageKind = "JOIN_ROOM"
	MessageSubmitWord   MessageKind = "SUBMIT_WORD"
	MessageGameFinished MessageKind = "GAME_FINISHED"
	MessageFinishGame   MessageKind = "FINISH_GAME" // Alias of GAME_FINISHED
	MessageLeaveRoom    MessageKind = "LEAVE_ROOM"
)

// Inbound is a message sent by a client over its connection.
// The set of implementations is closed; see DecodeInbound.
type Inbound interface {
	Kind() MessageKind
	inbound()
}

// JoinMessage sets the sender's display name
type JoinMessage struct {
	Username string `json:"username"`
}

// CreateRoomMessage asks for a new room with the sender as its first player
type CreateRoomMessage struct{}

// JoinRoomMessage asks to join an existing room
type JoinRoomMessage struct {
	RoomID RoomID `json:"roomId"`
}

// SubmitWordMessage submits a word in the sender's current room
type SubmitWordMessage struct {
	Word   string `json:"word"`
	RoomID RoomID `json:"roomId,omitempty"`
}

// FinishGameMessage forces a room to finish
type FinishGameMessage struct {
	RoomID RoomID `json:"roomId,omitempty"`
}

// LeaveRoomMessage leaves the sender's current room without disconnecting
type LeaveRoomMessage struct {
	RoomID RoomID `json:"roomId,omitempty"`
}

func (JoinMessage) Kind() MessageKind       { return MessageJoin }
func (CreateRoomMessage) Kind() MessageKind { return MessageCreateRoom }
func (JoinRoomMessage) Kind() MessageKind   { return MessageJoinRoom }
func (SubmitWordMessage) Kind() MessageKind { return MessageSubmitWord }
func (FinishGameMessage) Kind() MessageKind { return MessageGameFinished }
func (LeaveRoomMessage) Kind() MessageKind  { return MessageLeaveRoom }

func (JoinMessage) inbound()       {}
func (CreateRoomMessage) inbound() {}
func (JoinRoomMessage) inbound()   {}
func (SubmitWordMessage) inbound() {}
func (FinishGameMessage) inbound() {}
func (LeaveRoomMessage) inbound()  {}

type envelope struct {
	Type string `json:"type"`
}

// DecodeInbound parses a raw client message.
// Returns ErrMalformedMessage for invalid JSON and ErrUnknownMessage for an unrecognised type.
func DecodeInbound(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	var msg Inbound
	switch MessageKind(env.Type) {
	case MessageJoin:
		msg = &JoinMessage{}
	case MessageCreateRoom:
		return CreateRoomMessage{}, nil
	case MessageJoinRoom:
		msg = &JoinRoomMessage{}
	case MessageSubmitWord:
		msg = &SubmitWordMessage{}
	case MessageGameFinished, MessageFinishGame:
		msg = &FinishGameMessage{}
	case MessageLeaveRoom:
		msg = &LeaveRoomMessage{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return deref(msg), nil
}

// deref returns the value form of a decoded message so callers can type-switch on values
func deref(msg Inbound) Inbound {
	switch m := msg.(type) {
	case *JoinMessage:
		return *m
	case *JoinRoomMessage:
		return *m
	case *SubmitWordMessage:
		return *m
	case *FinishGameMessage:
		return *m
	case *LeaveRoomMessage:
		return *m
	}
	return msg
}

// EncodeInbound serializes a client message with its type tag
func EncodeInbound(msg Inbound) ([]byte, error) {
	return tagged(string(msg.Kind()), msg)
}

// tagged marshals v as a JSON object and adds a "type" field
func tagged(kind string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	typeField, err := json.Marshal(kind)
	if err != nil {
		return nil, err
	}
	fields["type"] = typeField
	return json.Marshal(fields)
}
