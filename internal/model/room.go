package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// RoomID is the short code players use to join a room
type RoomID string

// RoomStatus represents the phase of a room's game
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"  // Created, fewer than two players
	RoomStatusPlaying  RoomStatus = "playing"  // Timer running, words accepted
	RoomStatusFinished RoomStatus = "finished" // Terminal, standings broadcast
)

const (
	// MinWordLength is the shortest word accepted anywhere in the game
	MinWordLength = 3

	// FallbackMainWord is used when the dictionary cannot supply a main word
	FallbackMainWord = "программирование"
)

// NormalizeWord trims whitespace and lowercases a raw word.
// Submissions, word checks and the dictionary all go through it.
func NormalizeWord(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// CheckWordLength returns ErrWordTooShort for a normalized word below MinWordLength
func CheckWordLength(word string) error {
	if utf8.RuneCountInString(word) < MinWordLength {
		return ErrWordTooShort
	}
	return nil
}

// RoomConfig holds the settings fixed at room creation
type RoomConfig struct {
	AvailableCells int
	TimeLimit      time.Duration
	MaxPlayers     int
}

// DefaultRoomConfig returns the default room configuration
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		AvailableCells: 20,
		TimeLimit:      300 * time.Second,
		MaxPlayers:     8,
	}
}

// RoomInfo is a read-only view of a live room for listings
type RoomInfo struct {
	ID          RoomID
	Status      RoomStatus
	PlayerCount int
	CreatedAt   time.Time
}
