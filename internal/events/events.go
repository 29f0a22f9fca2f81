package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"relay-chat/internal/domain/message"
	"relay-chat/internal/domain/room"
)

const (
	EventRoomCreated    = "RoomCreated"
	EventMessageSent    = "MessageSent"
	EventMessageEdited  = "MessageEdited"
	EventMessageDeleted = "MessageDeleted"
)

// Envelope is the wire shape pushed to room subscribers.
type Envelope struct {
	Type       string    `json:"type"`
	RoomID     string    `json:"room_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func (e Envelope) Channel() string {
	return fmt.Sprintf("room:%s:events", e.RoomID)
}

func RoomCreated(rm room.ChatRoom) Envelope {
	return Envelope{
		Type:       EventRoomCreated,
		RoomID:     rm.ID.String(),
		OccurredAt: time.Now(),
		Payload:    map[string]any{"room": rm},
	}
}

func MessageSent(m message.Message) Envelope {
	return Envelope{
		Type:       EventMessageSent,
		RoomID:     m.RoomID.String(),
		OccurredAt: time.Now(),
		Payload:    map[string]any{"message": m},
	}
}

func MessageEdited(m message.Message) Envelope {
	return Envelope{
		Type:       EventMessageEdited,
		RoomID:     m.RoomID.String(),
		OccurredAt: time.Now(),
		Payload:    map[string]any{"message": m},
	}
}

func MessageDeleted(roomID, messageID uuid.UUID) Envelope {
	return Envelope{
		Type:       EventMessageDeleted,
		RoomID:     roomID.String(),
		OccurredAt: time.Now(),
		Payload:    map[string]any{"room_id": roomID, "message_id": messageID},
	}
}

// Publisher fans an event out to room subscribers. Publishing is
// fire-and-forget; a failed fan-out never fails the request that caused it.
type Publisher interface {
	Publish(ctx context.Context, env Envelope)
}

// Broadcaster is the subset of the websocket hub the publishers need.
type Broadcaster interface {
	Broadcast(channel string, payload []byte)
}

// HubPublisher delivers events to the local websocket hub directly. Used
// when no Redis is configured (single instance deployments).
type HubPublisher struct {
	hub Broadcaster
}

func NewHubPublisher(hub Broadcaster) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(ctx context.Context, env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	p.hub.Broadcast(env.Channel(), data)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, env Envelope) {}
