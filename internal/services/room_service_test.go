package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"relay-chat/internal/domain/room"
	"relay-chat/internal/domain/user"
	"relay-chat/internal/repository/memory"
	relay_errors "relay-chat/pkg/errors"
)

func newTestUser(name string) user.User {
	return user.User{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
}

func TestRoomService_CreateThenGet(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	svc := NewRoomService(store.Rooms(), nil, nil)
	owner := newTestUser("alice")
	ctx := context.Background()

	// When the owner creates a room
	created, err := svc.Create(ctx, owner, "general", "")
	req.NoError(err)

	// Then the room is retrievable with the same name and owner
	got, err := svc.Get(ctx, created.ID)
	req.NoError(err)
	req.Equal("general", got.Name)
	req.Equal(owner.ID, got.OwnerID)

	// And the owner is a member from the start
	member, err := svc.IsMember(ctx, created.ID, owner.ID)
	req.NoError(err)
	req.True(member)
}

func TestRoomService_CreateEmptyName(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	svc := NewRoomService(store.Rooms(), nil, nil)

	_, err := svc.Create(context.Background(), newTestUser("alice"), "   ", "")
	req.Error(err)
	req.Equal(relay_errors.KindValidation, relay_errors.KindOf(err))
}

func TestRoomService_NameUniquePerOwner(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	svc := NewRoomService(store.Rooms(), nil, nil)
	alice := newTestUser("alice")
	bob := newTestUser("bob")
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, "general", "")
	req.NoError(err)

	// The same owner cannot reuse a name
	_, err = svc.Create(ctx, alice, "general", "")
	req.Equal(relay_errors.KindConflict, relay_errors.KindOf(err))

	// A different owner can
	_, err = svc.Create(ctx, bob, "general", "")
	req.NoError(err)
}

func TestRoomService_ListOrderedByCreation(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	svc := NewRoomService(store.Rooms(), nil, nil)
	owner := newTestUser("alice")
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := svc.Create(ctx, owner, name, "")
		req.NoError(err)
		time.Sleep(time.Millisecond)
	}

	rooms, err := svc.List(ctx, room.ListOptions{})
	req.NoError(err)
	req.Len(rooms, 3)
	req.Equal("first", rooms[0].Name)
	req.Equal("third", rooms[2].Name)
}

func TestRoomService_RenameOwnerOnly(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	svc := NewRoomService(store.Rooms(), nil, nil)
	owner := newTestUser("alice")
	other := newTestUser("bob")
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, "general", "")
	req.NoError(err)

	_, err = svc.Rename(ctx, other, created.ID, "hijacked")
	req.Equal(relay_errors.KindAuthorization, relay_errors.KindOf(err))

	renamed, err := svc.Rename(ctx, owner, created.ID, "announcements")
	req.NoError(err)
	req.Equal("announcements", renamed.Name)
}

func TestRoomService_GetUnknownRoom(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	svc := NewRoomService(store.Rooms(), nil, nil)

	_, err := svc.Get(context.Background(), uuid.New())
	req.Equal(relay_errors.KindNotFound, relay_errors.KindOf(err))
}
