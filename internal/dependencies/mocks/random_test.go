package mocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MocksSuite struct {
	suite.Suite
}

func TestMocksSuite(t *testing.T) {
	suite.Run(t, new(MocksSuite))
}

func (s *MocksSuite) TestRandomQueuesThenSequential() {
	r := NewMockRandom()
	r.QueueString("ROOM01")
	r.QueueIntn(2, 7)

	s.Equal("ROOM01", r.String(6, "AB"))
	s.Equal("AAA", r.String(3, "AB"))
	s.Equal("AAB", r.String(3, "AB"))
	s.Equal(2, r.Intn(5))
	s.Equal(2, r.Intn(5)) // 7 clamped into range
	s.Equal(0, r.Intn(5))
}

func (s *MocksSuite) TestClockAdvanceFiresTickers() {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMockClock(start)
	ticker := c.NewTicker(time.Second)

	c.Advance(time.Second)
	select {
	case tick := <-ticker.C():
		s.Equal(start.Add(time.Second), tick)
	default:
		s.Fail("expected a tick")
	}

	ticker.Stop()
	c.Advance(time.Second)
	select {
	case <-ticker.C():
		s.Fail("stopped ticker fired")
	default:
	}
	s.Equal(start.Add(2*time.Second), c.Now())
}
