package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mcoot/wordrooms/internal/api/response"
)

// playerIDLength is how many characters of a UUID make up a player ID
const playerIDLength = 8

// GeneratePlayerID handles GET /api/v1/players/id.
// IDs are not reserved; clients pick them up and use them to open a WebSocket.
func GeneratePlayerID(w http.ResponseWriter, _ *http.Request) {
	id := uuid.NewString()[:playerIDLength]
	response.JSON(w, http.StatusOK, response.PlayerID{PlayerID: id})
}
