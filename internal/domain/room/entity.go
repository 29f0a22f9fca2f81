package room

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ChatRoom represents the chat_rooms table. Rooms are never physically
// deleted; Deleted is a reserved soft-delete flag.
type ChatRoom struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name" gorm:"uniqueIndex:idx_rooms_owner_name"`
	AvatarURL sql.NullString `json:"avatar_url"`
	OwnerID   uuid.UUID      `json:"owner_id" gorm:"uniqueIndex:idx_rooms_owner_name"`
	Deleted   bool           `json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Membership represents the room_memberships table, linking a user to a
// room. At most one row may exist per (room, user) pair.
type Membership struct {
	RoomID    uuid.UUID      `json:"room_id" gorm:"primaryKey"`
	UserID    uuid.UUID      `json:"user_id" gorm:"primaryKey"`
	JoinedAt  time.Time      `json:"joined_at"`
	Name      sql.NullString `json:"name"`
	AvatarURL sql.NullString `json:"avatar_url"`
}

// ListOptions narrows a room listing. The zero value lists every room in
// creation order; After and Limit leave space for cursor pagination.
type ListOptions struct {
	After time.Time
	Limit int
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}

func (Membership) TableName() string {
	return "room_memberships"
}
