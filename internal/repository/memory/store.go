// Package memory holds mutex-guarded implementations of the repository
// interfaces. They back the test suite and the database-free dev mode; the
// semantics mirror the Postgres implementations, including per-room
// sequence serialization and version checks on message updates.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"relay-chat/internal/domain/message"
	"relay-chat/internal/domain/room"
	"relay-chat/internal/domain/user"
	relay_errors "relay-chat/pkg/errors"
)

type Store struct {
	mu sync.RWMutex

	users       map[uuid.UUID]user.User
	usersByName map[string]uuid.UUID

	rooms       map[uuid.UUID]room.ChatRoom
	memberships map[uuid.UUID]map[uuid.UUID]room.Membership // room id -> user id

	messages  map[uuid.UUID]map[uuid.UUID]message.Message // room id -> message id
	sequences map[uuid.UUID]*roomSequence
}

type roomSequence struct {
	mu   sync.Mutex
	last int64
}

func NewStore() *Store {
	return &Store{
		users:       make(map[uuid.UUID]user.User),
		usersByName: make(map[string]uuid.UUID),
		rooms:       make(map[uuid.UUID]room.ChatRoom),
		memberships: make(map[uuid.UUID]map[uuid.UUID]room.Membership),
		messages:    make(map[uuid.UUID]map[uuid.UUID]message.Message),
		sequences:   make(map[uuid.UUID]*roomSequence),
	}
}

// --- UserRepository ---

func (s *Store) Create(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.usersByName[u.Name]; exists {
		return relay_errors.Conflict("user name already taken")
	}
	s.users[u.ID] = *u
	s.usersByName[u.Name] = u.ID
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return user.User{}, relay_errors.NotFound("no such user found")
	}
	return u, nil
}

func (s *Store) GetByName(ctx context.Context, name string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByName[name]
	if !ok {
		return user.User{}, relay_errors.NotFound("no such user found")
	}
	return s.users[id], nil
}

// --- RoomRepository ---

func (s *Store) CreateRoom(ctx context.Context, rm *room.ChatRoom, ownerMembership *room.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rooms {
		if existing.OwnerID == rm.OwnerID && existing.Name == rm.Name {
			return relay_errors.Conflict("room name already taken")
		}
	}
	s.rooms[rm.ID] = *rm
	s.memberships[rm.ID] = map[uuid.UUID]room.Membership{
		ownerMembership.UserID: *ownerMembership,
	}
	return nil
}

func (s *Store) GetRoomByID(ctx context.Context, id uuid.UUID) (room.ChatRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rm, ok := s.rooms[id]
	if !ok || rm.Deleted {
		return room.ChatRoom{}, relay_errors.NotFound("no such room found")
	}
	return rm, nil
}

func (s *Store) ListRooms(ctx context.Context, opts room.ListOptions) ([]room.ChatRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]room.ChatRoom, 0, len(s.rooms))
	for _, rm := range s.rooms {
		if rm.Deleted || rm.CreatedAt.Before(opts.After) {
			continue
		}
		rooms = append(rooms, rm)
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	if opts.Limit > 0 && len(rooms) > opts.Limit {
		rooms = rooms[:opts.Limit]
	}
	return rooms, nil
}

func (s *Store) UpdateRoom(ctx context.Context, rm room.ChatRoom) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[rm.ID]; !ok {
		return relay_errors.NotFound("no such room found")
	}
	for _, existing := range s.rooms {
		if existing.ID != rm.ID && existing.OwnerID == rm.OwnerID && existing.Name == rm.Name {
			return relay_errors.Conflict("room name already taken")
		}
	}
	s.rooms[rm.ID] = rm
	return nil
}

func (s *Store) AddMember(ctx context.Context, m *room.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	members, ok := s.memberships[m.RoomID]
	if !ok {
		return relay_errors.NotFound("no such room found")
	}
	if _, exists := members[m.UserID]; exists {
		return relay_errors.Conflict("already a member")
	}
	members[m.UserID] = *m
	return nil
}

func (s *Store) RemoveMember(ctx context.Context, roomID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	members, ok := s.memberships[roomID]
	if !ok {
		return relay_errors.NotFound("no such membership found")
	}
	if _, exists := members[userID]; !exists {
		return relay_errors.NotFound("no such membership found")
	}
	delete(members, userID)
	return nil
}

func (s *Store) IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members, ok := s.memberships[roomID]
	if !ok {
		return false, nil
	}
	_, exists := members[userID]
	return exists, nil
}

// --- MessageRepository ---

func (s *Store) Append(ctx context.Context, m *message.Message) error {
	seq := s.sequenceFor(m.RoomID)

	// Holding only the per-room counter here keeps appends to different
	// rooms independent.
	seq.mu.Lock()
	seq.last++
	m.Seq = seq.last
	seq.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	msgs, ok := s.messages[m.RoomID]
	if !ok {
		msgs = make(map[uuid.UUID]message.Message)
		s.messages[m.RoomID] = msgs
	}
	msgs[m.ID] = *m
	return nil
}

func (s *Store) GetMessageByID(ctx context.Context, roomID, messageID uuid.UUID) (message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[roomID][messageID]
	if !ok {
		return message.Message{}, relay_errors.NotFound("no such message found")
	}
	return m, nil
}

func (s *Store) UpdateMessage(ctx context.Context, m message.Message) (message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.messages[m.RoomID][m.ID]
	if !ok {
		return message.Message{}, relay_errors.NotFound("no such message found")
	}
	if stored.Version != m.Version {
		return message.Message{}, relay_errors.Conflict("message was modified concurrently")
	}
	m.Version++
	s.messages[m.RoomID][m.ID] = m
	return m, nil
}

func (s *Store) ListMessagesByRoom(ctx context.Context, roomID uuid.UUID, beforeSeq int64, limit int) ([]message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages := make([]message.Message, 0)
	for _, m := range s.messages[roomID] {
		if m.Deleted {
			continue
		}
		if beforeSeq > 0 && m.Seq >= beforeSeq {
			continue
		}
		messages = append(messages, m)
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Seq > messages[j].Seq
	})
	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

func (s *Store) sequenceFor(roomID uuid.UUID) *roomSequence {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq, ok := s.sequences[roomID]
	if !ok {
		seq = &roomSequence{}
		s.sequences[roomID] = seq
	}
	return seq
}
