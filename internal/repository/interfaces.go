package repository

import (
	"context"

	"github.com/google/uuid"

	"relay-chat/internal/domain/message"
	"relay-chat/internal/domain/room"
	"relay-chat/internal/domain/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByName(ctx context.Context, name string) (user.User, error)
}

type RoomRepository interface {
	// Create persists the room together with its owner membership in one
	// transaction, so a room can never exist without its owner as member.
	Create(ctx context.Context, r *room.ChatRoom, ownerMembership *room.Membership) error
	GetByID(ctx context.Context, id uuid.UUID) (room.ChatRoom, error)
	List(ctx context.Context, opts room.ListOptions) ([]room.ChatRoom, error)
	Update(ctx context.Context, r room.ChatRoom) error

	AddMember(ctx context.Context, m *room.Membership) error
	RemoveMember(ctx context.Context, roomID, userID uuid.UUID) error
	IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
}

type MessageRepository interface {
	// Append assigns the next per-room sequence number and persists the
	// message. Sequence assignment is serialized per room; concurrent
	// appends to different rooms do not contend.
	Append(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, roomID, messageID uuid.UUID) (message.Message, error)
	// Update persists m only when the stored row still carries m's
	// previous Version. Returns a conflict error otherwise.
	Update(ctx context.Context, m message.Message) (message.Message, error)
	// ListByRoom returns non-deleted messages in descending sequence
	// order, strictly below beforeSeq when beforeSeq > 0.
	ListByRoom(ctx context.Context, roomID uuid.UUID, beforeSeq int64, limit int) ([]message.Message, error)
}
