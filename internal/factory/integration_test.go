package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordrooms/internal/model"
)

// eventLog is a session.Sender that decodes what it receives
type eventLog struct {
	events []model.Event
}

func (l *eventLog) Send(data []byte) error {
	ev, err := model.DecodeEvent(data)
	if err != nil {
		return err
	}
	l.events = append(l.events, ev)
	return nil
}

func (l *eventLog) last(kind model.EventKind) model.Event {
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].Kind() == kind {
			return l.events[i]
		}
	}
	return nil
}

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.Require().NoError(s.app.LoadTestDictionary())
}

func (s *IntegrationSuite) connect(id model.PlayerID, name string) *eventLog {
	log := &eventLog{}
	s.Require().NoError(s.app.Sessions.Connect(id, name, log))
	return log
}

func (s *IntegrationSuite) send(id model.PlayerID, raw string) {
	s.app.Sessions.Dispatch(s.ctx, id, []byte(raw))
}

// Test: Complete game flow from room creation to expiry
func (s *IntegrationSuite) TestCompleteGameFlow() {
	s.app.MockRandom.QueueString("ROOM22")

	// Step 1: Two players connect and name themselves
	host := s.connect("host", "")
	guest := s.connect("guest", "")
	s.send("host", `{"type":"JOIN","username":"Хозяин"}`)
	s.send("guest", `{"type":"JOIN","username":"Гость"}`)
	s.NotNil(host.last(model.EventConnected))

	// Step 2: Host creates a room
	s.send("host", `{"type":"CREATE_ROOM"}`)
	created := host.last(model.EventRoomCreated)
	s.Require().NotNil(created)
	s.Equal(model.RoomID("ROOM22"), created.(model.RoomCreatedEvent).RoomID)

	// Step 3: Guest joins and the game starts
	s.send("guest", `{"type":"JOIN_ROOM","roomId":"ROOM22"}`)
	start := guest.last(model.EventGameStart)
	s.Require().NotNil(start)
	s.Equal("библиотека", start.(model.GameStartEvent).MainWord)
	s.Equal(300, start.(model.GameStartEvent).TimeLimit)

	// Step 4: Words are scored
	s.send("host", `{"type":"SUBMIT_WORD","word":"Билет"}`)
	s.True(host.last(model.EventWordResult).(model.WordResultEvent).Valid)
	s.send("guest", `{"type":"SUBMIT_WORD","word":"кит"}`)
	s.send("guest", `{"type":"SUBMIT_WORD","word":"дом"}`)
	s.Equal(model.ReasonCannotSpell, guest.last(model.EventWordResult).(model.WordResultEvent).Message)
	s.send("guest", `{"type":"SUBMIT_WORD","word":"бетон"}`)
	s.Equal(model.ReasonUnknownWord, guest.last(model.EventWordResult).(model.WordResultEvent).Message)

	state := guest.last(model.EventGameState).(model.GameStateEvent).State
	s.Equal(3, state.Score)
	s.Equal([]model.Opponent{{Username: "Хозяин", Score: 5, WordsCount: 1}}, state.Opponents)

	// Step 5: Time runs out
	s.app.MockClock.Advance(300 * time.Second)
	s.Equal(1, s.app.Registry.Sweep(s.ctx))

	end := host.last(model.EventGameEnd)
	s.Require().NotNil(end)
	results := end.(model.GameEndEvent).Results
	s.Require().Len(results, 2)
	s.Equal("Хозяин", results[0].Username)
	s.Equal(5, results[0].Score)
	s.Equal([]string{"кит"}, results[1].UserWords)

	// Step 6: The summary is recorded
	summaries, err := s.app.Storage.ListGameSummaries(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(summaries, 1)
	s.Equal("библиотека", summaries[0].MainWord)
	s.Equal(model.PlayerID("host"), summaries[0].Winner().PlayerID)
}

// Test: Rooms empty out when everyone disconnects
func (s *IntegrationSuite) TestDisconnectCleansUp() {
	s.connect("a", "Аня")
	s.connect("b", "Боря")
	s.send("a", `{"type":"CREATE_ROOM"}`)
	roomID := s.app.Sessions.CurrentRoom("a")
	s.send("b", `{"type":"JOIN_ROOM","roomId":"`+string(roomID)+`"}`)
	s.Equal(1, s.app.Registry.Count())

	s.app.Sessions.Disconnect(s.ctx, "a")
	s.Equal(1, s.app.Registry.Count())

	s.app.Sessions.Disconnect(s.ctx, "b")
	s.Equal(0, s.app.Registry.Count())
	s.Equal(0, s.app.Sessions.ConnectionCount())
}

// Test: Main word falls back when no dictionary word fits
func (s *IntegrationSuite) TestFallbackMainWord() {
	s.Require().NoError(s.app.DictionaryService.LoadWords([]string{"кот"}))
	log := s.connect("a", "")

	s.send("a", `{"type":"CREATE_ROOM"}`)

	state := log.last(model.EventGameState).(model.GameStateEvent).State
	s.Equal(model.FallbackMainWord, state.MainWord)
}

// Test: Dictionary loading falls back to storage
func (s *IntegrationSuite) TestLoadDictionaryFallsBackToStorage() {
	s.Require().NoError(s.app.Storage.SaveDictionaryWords(s.ctx, []string{"кот", "метр"}))

	err := s.app.LoadDictionary(s.ctx, "/nonexistent/words.txt")
	s.Require().NoError(err)
	s.Equal(2, s.app.DictionaryService.WordCount())
}
