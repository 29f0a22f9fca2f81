package message

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Message represents the messages table. Seq is strictly increasing within
// a room and never reused. Deleted messages stay in the table as tombstones
// so ordering and ids survive deletion.
type Message struct {
	ID        uuid.UUID    `json:"id"`
	RoomID    uuid.UUID    `json:"room_id" gorm:"uniqueIndex:idx_messages_room_seq"`
	Seq       int64        `json:"seq" gorm:"uniqueIndex:idx_messages_room_seq"`
	AuthorID  uuid.UUID    `json:"author_id"`
	Body      string       `json:"body"`
	CreatedAt time.Time    `json:"created_at"`
	EditedAt  sql.NullTime `json:"edited_at"`
	Deleted   bool         `json:"-"`
	Version   int64        `json:"-"` // bumped on every mutation, guards read-modify-write
}

// RoomSequence represents the room_sequences table, one counter row per
// room backing Seq assignment.
type RoomSequence struct {
	RoomID       uuid.UUID `gorm:"primaryKey"`
	LastSequence int64
	UpdatedAt    time.Time
}

func (Message) TableName() string {
	return "messages"
}

func (RoomSequence) TableName() string {
	return "room_sequences"
}
