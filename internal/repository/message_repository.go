package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"relay-chat/internal/domain/message"
	relay_errors "relay-chat/pkg/errors"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Append(ctx context.Context, m *message.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq message.RoomSequence
		// The row lock serializes sequence assignment per room.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_id = ?", m.RoomID).
			First(&seq).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			seq = message.RoomSequence{RoomID: m.RoomID, LastSequence: 0}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
		}

		seq.LastSequence++
		seq.UpdatedAt = time.Now()
		if err := tx.Save(&seq).Error; err != nil {
			return err
		}

		m.Seq = seq.LastSequence
		return tx.Create(m).Error
	})
	if err != nil {
		return relay_errors.Storage(err)
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, roomID, messageID uuid.UUID) (message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).
		Where("id = ? AND room_id = ?", messageID, roomID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, relay_errors.NotFound("no such message found")
		}
		return message.Message{}, relay_errors.Storage(err)
	}
	return m, nil
}

func (r *PostgresMessageRepository) Update(ctx context.Context, m message.Message) (message.Message, error) {
	previous := m.Version
	m.Version++
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("id = ? AND version = ?", m.ID, previous).
		Updates(map[string]interface{}{
			"body":      m.Body,
			"edited_at": m.EditedAt,
			"deleted":   m.Deleted,
			"version":   m.Version,
		})
	if res.Error != nil {
		return message.Message{}, relay_errors.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return message.Message{}, relay_errors.Conflict("message was modified concurrently")
	}
	return m, nil
}

func (r *PostgresMessageRepository) ListByRoom(ctx context.Context, roomID uuid.UUID, beforeSeq int64, limit int) ([]message.Message, error) {
	var messages []message.Message
	q := r.db.WithContext(ctx).
		Where("room_id = ? AND deleted = false", roomID)
	if beforeSeq > 0 {
		q = q.Where("seq < ?", beforeSeq)
	}
	err := q.Order("seq DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, relay_errors.Storage(err)
	}
	return messages, nil
}
