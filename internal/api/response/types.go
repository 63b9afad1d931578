package response

import (
	"time"

	"github.com/mcoot/wordrooms/internal/model"
	"github.com/mcoot/wordrooms/internal/services/validator"
)

// Health is the response for the health endpoint
type Health struct {
	Status string `json:"status"`
}

// CheckWord is the response for the word check endpoint
type CheckWord struct {
	Word    string `json:"word"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// CheckWordFromVerdict converts a validator.Verdict
func CheckWordFromVerdict(v validator.Verdict) CheckWord {
	return CheckWord{
		Word:    v.Word,
		Valid:   v.Valid,
		Message: v.Reason,
	}
}

// PlayerID is the response for the player ID endpoint
type PlayerID struct {
	PlayerID string `json:"player_id"`
}

// Room represents a live room in listings
type Room struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	PlayerCount int       `json:"player_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoomFromModel converts model.RoomInfo
func RoomFromModel(info model.RoomInfo) Room {
	return Room{
		ID:          string(info.ID),
		Status:      string(info.Status),
		PlayerCount: info.PlayerCount,
		CreatedAt:   info.CreatedAt,
	}
}

// RoomList is the response for the room listing endpoint
type RoomList struct {
	Rooms []Room `json:"rooms"`
}

// Standing represents one player's final result
type Standing struct {
	PlayerID string   `json:"player_id"`
	Username string   `json:"username"`
	Score    int      `json:"score"`
	Words    []string `json:"words"`
}

// GameSummary represents a completed game summary
type GameSummary struct {
	ID        string     `json:"id"`
	RoomID    string     `json:"room_id"`
	MainWord  string     `json:"main_word"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   time.Time  `json:"ended_at"`
	Winner    *string    `json:"winner"`
	Standings []Standing `json:"standings"`
}

// GameSummaryFromModel converts model.GameSummary
func GameSummaryFromModel(g *model.GameSummary) GameSummary {
	standings := make([]Standing, len(g.Standings))
	for i, s := range g.Standings {
		standings[i] = Standing{
			PlayerID: string(s.PlayerID),
			Username: s.Username,
			Score:    s.Score,
			Words:    s.Words,
		}
	}
	var winner *string
	if w := g.Winner(); w != nil {
		name := w.Username
		winner = &name
	}
	return GameSummary{
		ID:        g.ID,
		RoomID:    string(g.RoomID),
		MainWord:  g.MainWord,
		StartedAt: g.StartedAt,
		EndedAt:   g.EndedAt,
		Winner:    winner,
		Standings: standings,
	}
}

// ResultList is the response for the results endpoint
type ResultList struct {
	Results []GameSummary `json:"results"`
}
