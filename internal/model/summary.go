package model

import "time"

// Standing is one player's final result in a finished game
type Standing struct {
	PlayerID PlayerID `json:"player_id"`
	Username string   `json:"username"`
	Score    int      `json:"score"`
	Words    []string `json:"words"`
}

// GameSummary is the record of a finished game kept in the results store
type GameSummary struct {
	ID        string     `json:"id"`
	RoomID    RoomID     `json:"room_id"`
	MainWord  string     `json:"main_word"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   time.Time  `json:"ended_at"`
	Standings []Standing `json:"standings"` // Sorted by score, descending
}

// Winner returns the top standing, or nil if the game had no players
func (s *GameSummary) Winner() *Standing {
	if len(s.Standings) == 0 {
		return nil
	}
	return &s.Standings[0]
}
