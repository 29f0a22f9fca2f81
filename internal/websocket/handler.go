package websocket

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"relay-chat/internal/services"
	"relay-chat/internal/transport/httpdto"
)

type Handler struct {
	identity *services.IdentityService
	rooms    *services.RoomService
	hub      *Hub
}

func NewHandler(identity *services.IdentityService, rooms *services.RoomService, hub *Hub) *Handler {
	return &Handler{identity: identity, rooms: rooms, hub: hub}
}

// Connect upgrades the request and subscribes the caller to a room's event
// channel. Members only.
func (h *Handler) Connect(c *gin.Context) {
	actor, err := h.identity.Resolve(c.Request.Context(), c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	roomID, err := uuid.Parse(c.Query("room"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid room id", "INVALID_REQUEST"))
		return
	}
	member, err := h.rooms.IsMember(c.Request.Context(), roomID, actor.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("internal error", "INTERNAL_ERROR"))
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("not a member of this room", "FORBIDDEN"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, actor.ID.String())
	client.Subscribe(fmt.Sprintf("room:%s:events", roomID))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}

	h.hub.Unregister(client)
}
