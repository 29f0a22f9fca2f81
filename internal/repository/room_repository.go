package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"relay-chat/internal/domain/room"
	relay_errors "relay-chat/pkg/errors"
)

type PostgresRoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &PostgresRoomRepository{db: db}
}

func (r *PostgresRoomRepository) Create(ctx context.Context, rm *room.ChatRoom, ownerMembership *room.Membership) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rm).Error; err != nil {
			return err
		}
		return tx.Create(ownerMembership).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return relay_errors.Conflict("room name already taken")
		}
		return relay_errors.Storage(err)
	}
	return nil
}

func (r *PostgresRoomRepository) GetByID(ctx context.Context, id uuid.UUID) (room.ChatRoom, error) {
	var rm room.ChatRoom
	err := r.db.WithContext(ctx).Where("id = ? AND deleted = false", id).First(&rm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return room.ChatRoom{}, relay_errors.NotFound("no such room found")
		}
		return room.ChatRoom{}, relay_errors.Storage(err)
	}
	return rm, nil
}

func (r *PostgresRoomRepository) List(ctx context.Context, opts room.ListOptions) ([]room.ChatRoom, error) {
	var rooms []room.ChatRoom
	q := r.db.WithContext(ctx).Where("deleted = false")
	if !opts.After.IsZero() {
		q = q.Where("created_at > ?", opts.After)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if err := q.Order("created_at ASC").Find(&rooms).Error; err != nil {
		return nil, relay_errors.Storage(err)
	}
	return rooms, nil
}

func (r *PostgresRoomRepository) Update(ctx context.Context, rm room.ChatRoom) error {
	res := r.db.WithContext(ctx).Save(&rm)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return relay_errors.Conflict("room name already taken")
		}
		return relay_errors.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return relay_errors.NotFound("no such room found")
	}
	return nil
}

func (r *PostgresRoomRepository) AddMember(ctx context.Context, m *room.Membership) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return relay_errors.Conflict("already a member")
		}
		return relay_errors.Storage(res.Error)
	}
	return nil
}

func (r *PostgresRoomRepository) RemoveMember(ctx context.Context, roomID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Delete(&room.Membership{}, "room_id = ? AND user_id = ?", roomID, userID)
	if res.Error != nil {
		return relay_errors.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return relay_errors.NotFound("no such membership found")
	}
	return nil
}

func (r *PostgresRoomRepository) IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&room.Membership{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, relay_errors.Storage(err)
	}
	return count > 0, nil
}
