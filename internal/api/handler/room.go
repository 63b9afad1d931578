package handler

import (
	"net/http"

	"github.com/mcoot/wordrooms/internal/api/response"
	"github.com/mcoot/wordrooms/internal/services/registry"
)

// RoomHandler exposes read-only views of live rooms
type RoomHandler struct {
	registry *registry.Registry
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(registry *registry.Registry) *RoomHandler {
	return &RoomHandler{
		registry: registry,
	}
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, _ *http.Request) {
	infos := h.registry.List()

	rooms := make([]response.Room, len(infos))
	for i, info := range infos {
		rooms[i] = response.RoomFromModel(info)
	}

	response.JSON(w, http.StatusOK, response.RoomList{Rooms: rooms})
}
