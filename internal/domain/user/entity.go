package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents the users table. A user record is immutable once created.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name" gorm:"uniqueIndex"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
