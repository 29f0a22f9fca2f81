package handler

import (
	"net/http"

	"relay-chat/internal/services"
	"relay-chat/internal/storage"
	"relay-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RoomHandler serves the owner-only room mutations that sit outside the
// core route table.
type RoomHandler struct {
	rooms   *services.RoomService
	avatars *storage.AvatarStore
}

func NewRoomHandler(rooms *services.RoomService, avatars *storage.AvatarStore) *RoomHandler {
	return &RoomHandler{rooms: rooms, avatars: avatars}
}

// Update renames a room and/or changes its avatar URL.
func (h *RoomHandler) Update(c *gin.Context) {
	actor, ok := services.ActorFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid room id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	if req.Name == "" && req.AvatarURL == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("nothing to update", "INVALID_REQUEST"))
		return
	}

	rm, err := h.rooms.Get(c.Request.Context(), roomID)
	if err != nil {
		writeError(c, err)
		return
	}
	if req.Name != "" {
		if rm, err = h.rooms.Rename(c.Request.Context(), actor, roomID, req.Name); err != nil {
			writeError(c, err)
			return
		}
	}
	if req.AvatarURL != "" {
		if rm, err = h.rooms.SetAvatar(c.Request.Context(), actor, roomID, req.AvatarURL); err != nil {
			writeError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"room": rm}))
}

// UploadAvatar stores the request body as the room's avatar image.
func (h *RoomHandler) UploadAvatar(c *gin.Context) {
	if h.avatars == nil {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("avatar storage not configured", "UNAVAILABLE"))
		return
	}

	actor, ok := services.ActorFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid room id", "INVALID_REQUEST"))
		return
	}

	url, err := h.avatars.Upload(c.Request.Context(), roomID.String(), c.ContentType(), c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("upload failed", "INTERNAL_ERROR"))
		return
	}

	rm, err := h.rooms.SetAvatar(c.Request.Context(), actor, roomID, url)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"room": rm}))
}
