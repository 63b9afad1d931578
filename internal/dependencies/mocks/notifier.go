package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/wordrooms/internal/model"
)

// Notifier records every event sent to each player
type Notifier struct {
	mu     sync.Mutex
	events map[model.PlayerID][]model.Event
}

// NewNotifier creates an empty recording notifier
func NewNotifier() *Notifier {
	return &Notifier{events: make(map[model.PlayerID][]model.Event)}
}

// Send records the event
func (n *Notifier) Send(playerID model.PlayerID, ev model.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events[playerID] = append(n.events[playerID], ev)
}

// Events returns the events sent to a player, oldest first
func (n *Notifier) Events(playerID model.PlayerID) []model.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Event(nil), n.events[playerID]...)
}

// Kinds returns the kinds of events sent to a player, oldest first
func (n *Notifier) Kinds(playerID model.PlayerID) []model.EventKind {
	events := n.Events(playerID)
	kinds := make([]model.EventKind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind()
	}
	return kinds
}

// Count returns how many events of a kind a player received
func (n *Notifier) Count(playerID model.PlayerID, kind model.EventKind) int {
	count := 0
	for _, k := range n.Kinds(playerID) {
		if k == kind {
			count++
		}
	}
	return count
}

// Last returns the most recent event of a kind sent to a player, or nil
func (n *Notifier) Last(playerID model.PlayerID, kind model.EventKind) model.Event {
	events := n.Events(playerID)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind() == kind {
			return events[i]
		}
	}
	return nil
}

// Reset forgets all recorded events
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = make(map[model.PlayerID][]model.Event)
}

// WordChecker answers existence checks from a fixed word set
type WordChecker struct {
	mu    sync.Mutex
	words map[string]bool
	err   error
}

// NewWordChecker creates a checker that knows the given words
func NewWordChecker(words ...string) *WordChecker {
	c := &WordChecker{words: make(map[string]bool)}
	for _, w := range words {
		c.words[w] = true
	}
	return c
}

// Exists reports whether the word is known, or the configured error
func (c *WordChecker) Exists(ctx context.Context, word string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	return c.words[word], nil
}

// SetError makes every following check fail with err
func (c *WordChecker) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}
