package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"relay-chat/internal/domain/room"
	"relay-chat/internal/domain/user"
	"relay-chat/internal/events"
	"relay-chat/internal/policy"
	redisstore "relay-chat/internal/redis"
	"relay-chat/internal/repository"
	relay_errors "relay-chat/pkg/errors"
)

type RoomService struct {
	rooms     repository.RoomRepository
	cache     *redisstore.RoomCache
	publisher events.Publisher
}

func NewRoomService(rooms repository.RoomRepository, cache *redisstore.RoomCache, publisher events.Publisher) *RoomService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &RoomService{rooms: rooms, cache: cache, publisher: publisher}
}

// Create registers a new room owned by owner. The owner membership is
// written in the same transaction, so the owner-is-always-a-member
// invariant holds from the first instant the room is visible.
func (s *RoomService) Create(ctx context.Context, owner user.User, name, avatarURL string) (room.ChatRoom, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return room.ChatRoom{}, relay_errors.Validation("room name must not be empty")
	}
	if !policy.Can(owner, policy.ActionCreateRoom, policy.Target{}) {
		return room.ChatRoom{}, relay_errors.Authorization("not allowed to create rooms")
	}

	now := time.Now()
	rm := room.ChatRoom{
		ID:        uuid.New(),
		Name:      name,
		AvatarURL: toNullString(avatarURL),
		OwnerID:   owner.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	membership := room.Membership{
		RoomID:   rm.ID,
		UserID:   owner.ID,
		JoinedAt: now,
	}
	if err := s.rooms.Create(ctx, &rm, &membership); err != nil {
		return room.ChatRoom{}, err
	}

	s.publisher.Publish(ctx, events.RoomCreated(rm))
	return rm, nil
}

func (s *RoomService) Get(ctx context.Context, id uuid.UUID) (room.ChatRoom, error) {
	if s.cache != nil {
		if rm, ok := s.cache.Get(ctx, id); ok {
			return rm, nil
		}
	}
	rm, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return room.ChatRoom{}, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, rm)
	}
	return rm, nil
}

func (s *RoomService) List(ctx context.Context, opts room.ListOptions) ([]room.ChatRoom, error) {
	return s.rooms.List(ctx, opts)
}

// Rename changes a room's name. Owner only.
func (s *RoomService) Rename(ctx context.Context, actor user.User, roomID uuid.UUID, newName string) (room.ChatRoom, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return room.ChatRoom{}, relay_errors.Validation("room name must not be empty")
	}
	return s.mutate(ctx, actor, roomID, func(rm *room.ChatRoom) {
		rm.Name = newName
	})
}

// SetAvatar changes a room's avatar URL. Owner only.
func (s *RoomService) SetAvatar(ctx context.Context, actor user.User, roomID uuid.UUID, avatarURL string) (room.ChatRoom, error) {
	return s.mutate(ctx, actor, roomID, func(rm *room.ChatRoom) {
		rm.AvatarURL = toNullString(avatarURL)
	})
}

func (s *RoomService) IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	return s.rooms.IsMember(ctx, roomID, userID)
}

func (s *RoomService) mutate(ctx context.Context, actor user.User, roomID uuid.UUID, apply func(*room.ChatRoom)) (room.ChatRoom, error) {
	rm, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return room.ChatRoom{}, err
	}
	if rm.OwnerID != actor.ID {
		return room.ChatRoom{}, relay_errors.Authorization("only the room owner may change the room")
	}

	apply(&rm)
	rm.UpdatedAt = time.Now()
	if err := s.rooms.Update(ctx, rm); err != nil {
		return room.ChatRoom{}, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, rm.ID)
	}
	return rm, nil
}

func toNullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
