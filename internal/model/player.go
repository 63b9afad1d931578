package model

import "unicode/utf8"

// PlayerID uniquely identifies a connected player
type PlayerID string

// Player is a participant in a single room
type Player struct {
	ID          PlayerID
	DisplayName string
	Score       int
	Words       []string // accepted words, in submission order
}

// HasWord reports whether the player has already scored the given normalized word
func (p *Player) HasWord(word string) bool {
	for _, w := range p.Words {
		if w == word {
			return true
		}
	}
	return false
}

// AddWord records an accepted word and returns the points it earned
func (p *Player) AddWord(word string) int {
	points := utf8.RuneCountInString(word)
	p.Words = append(p.Words, word)
	p.Score += points
	return points
}

// Name returns the display name, falling back to the player ID
func (p *Player) Name() string {
	if p.DisplayName == "" {
		return string(p.ID)
	}
	return p.DisplayName
}
