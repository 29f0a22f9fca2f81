package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"relay-chat/internal/domain/user"
	relay_errors "relay-chat/pkg/errors"
)

type PostgresUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	res := r.db.WithContext(ctx).Create(u)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return relay_errors.Conflict("user name already taken")
		}
		return relay_errors.Storage(res.Error)
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, relay_errors.NotFound("no such user found")
		}
		return user.User{}, relay_errors.Storage(err)
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByName(ctx context.Context, name string) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, relay_errors.NotFound("no such user found")
		}
		return user.User{}, relay_errors.Storage(err)
	}
	return u, nil
}
