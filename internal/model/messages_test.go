package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type MessagesSuite struct {
	suite.Suite
}

func TestMessagesSuite(t *testing.T) {
	suite.Run(t, new(MessagesSuite))
}

func (s *MessagesSuite) TestDecodeInboundKinds() {
	cases := []struct {
		raw  string
		want Inbound
	}{
		{`{"type":"JOIN","username":"Аня"}`, JoinMessage{Username: "Аня"}},
		{`{"type":"CREATE_ROOM"}`, CreateRoomMessage{}},
		{`{"type":"JOIN_ROOM","roomId":"ABC234"}`, JoinRoomMessage{RoomID: "ABC234"}},
		{`{"type":"SUBMIT_WORD","word":"кот"}`, SubmitWordMessage{Word: "кот"}},
		{`{"type":"GAME_FINISHED","roomId":"ABC234"}`, FinishGameMessage{RoomID: "ABC234"}},
		{`{"type":"FINISH_GAME","roomId":"ABC234"}`, FinishGameMessage{RoomID: "ABC234"}},
		{`{"type":"LEAVE_ROOM"}`, LeaveRoomMessage{}},
	}

	for _, tc := range cases {
		msg, err := DecodeInbound([]byte(tc.raw))
		s.Require().NoError(err, tc.raw)
		s.Equal(tc.want, msg, tc.raw)
	}
}

func (s *MessagesSuite) TestDecodeInboundUnknownKind() {
	_, err := DecodeInbound([]byte(`{"type":"START_GAME","roomId":"X"}`))
	s.ErrorIs(err, ErrUnknownMessage)
}

func (s *MessagesSuite) TestDecodeInboundMalformed() {
	_, err := DecodeInbound([]byte(`{"type":`))
	s.ErrorIs(err, ErrMalformedMessage)

	_, err = DecodeInbound([]byte(`{"type":"SUBMIT_WORD","word":42}`))
	s.ErrorIs(err, ErrMalformedMessage)
}

func (s *MessagesSuite) TestEncodeInboundRoundTrip() {
	data, err := EncodeInbound(SubmitWordMessage{Word: "метр"})
	s.Require().NoError(err)

	msg, err := DecodeInbound(data)
	s.Require().NoError(err)
	s.Equal(SubmitWordMessage{Word: "метр"}, msg)
}

func (s *MessagesSuite) TestEncodeEventAddsTypeTag() {
	data, err := EncodeEvent(WordResultEvent{Word: "кот", Valid: true, Score: 3})
	s.Require().NoError(err)

	var fields map[string]any
	s.Require().NoError(json.Unmarshal(data, &fields))
	s.Equal("WORD_RESULT", fields["type"])
	s.Equal("кот", fields["word"])
	s.Equal(true, fields["valid"])
	s.EqualValues(3, fields["score"])
	s.NotContains(fields, "message")
}

func (s *MessagesSuite) TestEncodeGameStateNestsState() {
	data, err := EncodeEvent(GameStateEvent{State: GameState{
		MainWord:  "программирование",
		TimeLeft:  120,
		UserWords: []string{"рама"},
		Opponents: []Opponent{{Username: "Боря", Score: 4, WordsCount: 1}},
		RoomID:    "ROOM22",
		Status:    RoomStatusPlaying,
	}})
	s.Require().NoError(err)

	var fields struct {
		Type  string         `json:"type"`
		State map[string]any `json:"state"`
	}
	s.Require().NoError(json.Unmarshal(data, &fields))
	s.Equal("GAME_STATE", fields.Type)
	s.Equal("программирование", fields.State["mainWord"])
	s.Equal("playing", fields.State["status"])
	s.Len(fields.State["opponents"], 1)
}

func (s *MessagesSuite) TestDecodeEvent() {
	data, err := EncodeEvent(GameEndEvent{Results: []Result{
		{Username: "Аня", Score: 9, UserWords: []string{"программа"}},
	}})
	s.Require().NoError(err)

	ev, err := DecodeEvent(data)
	s.Require().NoError(err)
	end, ok := ev.(GameEndEvent)
	s.Require().True(ok)
	s.Equal(9, end.Results[0].Score)
}

func (s *MessagesSuite) TestPlayerAddWord() {
	p := &Player{ID: "p1"}
	s.Equal(3, p.AddWord("кот"))
	s.Equal(4, p.AddWord("метр"))
	s.Equal(7, p.Score)
	s.True(p.HasWord("кот"))
	s.False(p.HasWord("ток"))
	s.Equal("p1", p.Name())
}
