package memory

import (
	"context"

	"github.com/google/uuid"

	"relay-chat/internal/domain/message"
	"relay-chat/internal/domain/room"
	"relay-chat/internal/repository"
)

// Users exposes the store as a repository.UserRepository.
func (s *Store) Users() repository.UserRepository {
	return s
}

// Rooms exposes the store as a repository.RoomRepository.
func (s *Store) Rooms() repository.RoomRepository {
	return roomStore{s}
}

// Messages exposes the store as a repository.MessageRepository.
func (s *Store) Messages() repository.MessageRepository {
	return messageStore{s}
}

type roomStore struct {
	s *Store
}

func (r roomStore) Create(ctx context.Context, rm *room.ChatRoom, ownerMembership *room.Membership) error {
	return r.s.CreateRoom(ctx, rm, ownerMembership)
}

func (r roomStore) GetByID(ctx context.Context, id uuid.UUID) (room.ChatRoom, error) {
	return r.s.GetRoomByID(ctx, id)
}

func (r roomStore) List(ctx context.Context, opts room.ListOptions) ([]room.ChatRoom, error) {
	return r.s.ListRooms(ctx, opts)
}

func (r roomStore) Update(ctx context.Context, rm room.ChatRoom) error {
	return r.s.UpdateRoom(ctx, rm)
}

func (r roomStore) AddMember(ctx context.Context, m *room.Membership) error {
	return r.s.AddMember(ctx, m)
}

func (r roomStore) RemoveMember(ctx context.Context, roomID, userID uuid.UUID) error {
	return r.s.RemoveMember(ctx, roomID, userID)
}

func (r roomStore) IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	return r.s.IsMember(ctx, roomID, userID)
}

type messageStore struct {
	s *Store
}

func (m messageStore) Append(ctx context.Context, msg *message.Message) error {
	return m.s.Append(ctx, msg)
}

func (m messageStore) GetByID(ctx context.Context, roomID, messageID uuid.UUID) (message.Message, error) {
	return m.s.GetMessageByID(ctx, roomID, messageID)
}

func (m messageStore) Update(ctx context.Context, msg message.Message) (message.Message, error) {
	return m.s.UpdateMessage(ctx, msg)
}

func (m messageStore) ListByRoom(ctx context.Context, roomID uuid.UUID, beforeSeq int64, limit int) ([]message.Message, error) {
	return m.s.ListMessagesByRoom(ctx, roomID, beforeSeq, limit)
}
