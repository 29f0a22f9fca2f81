package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"relay-chat/internal/domain/message"
	"relay-chat/internal/domain/user"
	"relay-chat/internal/events"
	"relay-chat/internal/policy"
	"relay-chat/internal/repository"
	relay_errors "relay-chat/pkg/errors"
)

const (
	// DefaultPageSize applies when a listing names no limit.
	DefaultPageSize = 50
	// MaxPageSize caps client-supplied limits.
	MaxPageSize = 100
)

type MessageService struct {
	messages  repository.MessageRepository
	rooms     repository.RoomRepository
	publisher events.Publisher
}

func NewMessageService(messages repository.MessageRepository, rooms repository.RoomRepository, publisher events.Publisher) *MessageService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &MessageService{messages: messages, rooms: rooms, publisher: publisher}
}

// Append adds a message to the room's log. The sequence number is assigned
// by the repository under a per-room single-writer discipline.
func (s *MessageService) Append(ctx context.Context, author user.User, roomID uuid.UUID, body string) (message.Message, error) {
	if strings.TrimSpace(body) == "" {
		return message.Message{}, relay_errors.Validation("message body must not be empty")
	}

	rm, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return message.Message{}, err
	}
	member, err := s.rooms.IsMember(ctx, roomID, author.ID)
	if err != nil {
		return message.Message{}, err
	}
	target := policy.Target{RoomOwnerID: rm.OwnerID, ActorIsMember: member}
	if !policy.Can(author, policy.ActionSendMessage, target) {
		return message.Message{}, relay_errors.Authorization("not a member of this room")
	}

	m := message.Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		AuthorID:  author.ID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Append(ctx, &m); err != nil {
		return message.Message{}, err
	}

	s.publisher.Publish(ctx, events.MessageSent(m))
	return m, nil
}

// Edit replaces a message's body. Author only; id, sequence and creation
// time are preserved, EditedAt is stamped.
func (s *MessageService) Edit(ctx context.Context, editor user.User, roomID, messageID uuid.UUID, newBody string) (message.Message, error) {
	if strings.TrimSpace(newBody) == "" {
		return message.Message{}, relay_errors.Validation("message body must not be empty")
	}

	m, err := s.messages.GetByID(ctx, roomID, messageID)
	if err != nil {
		return message.Message{}, err
	}
	if m.Deleted {
		return message.Message{}, relay_errors.NotFound("no such message found")
	}
	if !policy.Can(editor, policy.ActionEditMessage, policy.Target{MessageAuthorID: m.AuthorID}) {
		return message.Message{}, relay_errors.Authorization("only the author may edit a message")
	}

	m.Body = newBody
	m.EditedAt = sql.NullTime{Time: time.Now(), Valid: true}
	updated, err := s.messages.Update(ctx, m)
	if err != nil {
		return message.Message{}, err
	}

	s.publisher.Publish(ctx, events.MessageEdited(updated))
	return updated, nil
}

// Delete tombstones a message. The author or the room owner may delete;
// deleting an already deleted message is a no-op success.
func (s *MessageService) Delete(ctx context.Context, actor user.User, roomID, messageID uuid.UUID) error {
	m, err := s.messages.GetByID(ctx, roomID, messageID)
	if err != nil {
		return err
	}
	if m.Deleted {
		return nil
	}

	rm, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	target := policy.Target{RoomOwnerID: rm.OwnerID, MessageAuthorID: m.AuthorID}
	if !policy.Can(actor, policy.ActionDeleteMessage, target) {
		return relay_errors.Authorization("only the author or room owner may delete a message")
	}

	m.Deleted = true
	if _, err := s.messages.Update(ctx, m); err != nil {
		return err
	}

	s.publisher.Publish(ctx, events.MessageDeleted(roomID, messageID))
	return nil
}

// List returns non-deleted messages in descending sequence order. A
// beforeSeq of 0 starts at the newest message.
func (s *MessageService) List(ctx context.Context, roomID uuid.UUID, beforeSeq int64, limit int) ([]message.Message, error) {
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return s.messages.ListByRoom(ctx, roomID, beforeSeq, limit)
}
