package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"relay-chat/internal/domain/room"
	"relay-chat/internal/domain/user"
	"relay-chat/internal/repository/memory"
	relay_errors "relay-chat/pkg/errors"
)

type chatFixture struct {
	rooms    *RoomService
	messages *MessageService
}

func newChatFixture() *chatFixture {
	store := memory.NewStore()
	return &chatFixture{
		rooms:    NewRoomService(store.Rooms(), nil, nil),
		messages: NewMessageService(store.Messages(), store.Rooms(), nil),
	}
}

func (f *chatFixture) createRoom(t *testing.T, owner user.User) room.ChatRoom {
	t.Helper()
	rm, err := f.rooms.Create(context.Background(), owner, "general", "")
	require.NoError(t, err)
	return rm
}

func TestMessageService_AppendAssignsIncreasingSeq(t *testing.T) {
	req := require.New(t)
	f := newChatFixture()
	owner := newTestUser("alice")
	rm := f.createRoom(t, owner)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		m, err := f.messages.Append(ctx, owner, rm.ID, fmt.Sprintf("message %d", i))
		req.NoError(err)
		req.Greater(m.Seq, last)
		last = m.Seq
	}
	req.Equal(int64(5), last)
}

func TestMessageService_ConcurrentAppendsKeepSeqUnique(t *testing.T) {
	req := require.New(t)
	f := newChatFixture()
	owner := newTestUser("alice")
	rm := f.createRoom(t, owner)
	ctx := context.Background()

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	seqs := make(chan int64, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				m, err := f.messages.Append(ctx, owner, rm.ID, "hi")
				if err == nil {
					seqs <- m.Seq
				}
			}
		}()
	}
	wg.Wait()
	close(seqs)

	seen := make(map[int64]bool)
	for seq := range seqs {
		req.False(seen[seq], "sequence %d assigned twice", seq)
		seen[seq] = true
	}
	req.Len(seen, writers*perWriter)
}

func TestMessageService_AppendValidation(t *testing.T) {
	req := require.New(t)
	f := newChatFixture()
	owner := newTestUser("alice")
	rm := f.createRoom(t, owner)
	ctx := context.Background()

	// Empty body is rejected
	_, err := f.messages.Append(ctx, owner, rm.ID, "  ")
	req.Equal(relay_errors.KindValidation, relay_errors.KindOf(err))

	// Unknown room is rejected
	_, err = f.messages.Append(ctx, owner, uuid.New(), "hi")
	req.Equal(relay_errors.KindNotFound, relay_errors.KindOf(err))

	// A non-member may not send
	stranger := newTestUser("mallory")
	_, err = f.messages.Append(ctx, stranger, rm.ID, "hi")
	req.Equal(relay_errors.KindAuthorization, relay_errors.KindOf(err))
}

func TestMessageService_EditAuthorOnly(t *testing.T) {
	req := require.New(t)
	f := newChatFixture()
	owner := newTestUser("alice")
	rm := f.createRoom(t, owner)
	ctx := context.Background()

	m, err := f.messages.Append(ctx, owner, rm.ID, "hi")
	req.NoError(err)

	// A different user cannot edit, even the room owner check does not apply
	other := newTestUser("bob")
	_, err = f.messages.Edit(ctx, other, rm.ID, m.ID, "tampered")
	req.Equal(relay_errors.KindAuthorization, relay_errors.KindOf(err))

	// The author can, and identity fields survive the edit
	edited, err := f.messages.Edit(ctx, owner, rm.ID, m.ID, "hello")
	req.NoError(err)
	req.Equal("hello", edited.Body)
	req.Equal(m.ID, edited.ID)
	req.Equal(m.Seq, edited.Seq)
	req.Equal(m.CreatedAt, edited.CreatedAt)
	req.True(edited.EditedAt.Valid)
}

func TestMessageService_EditDeletedMessage(t *testing.T) {
	req := require.New(t)
	f := newChatFixture()
	owner := newTestUser("alice")
	rm := f.createRoom(t, owner)
	ctx := context.Background()

	m, err := f.messages.Append(ctx, owner, rm.ID, "hi")
	req.NoError(err)
	req.NoError(f.messages.Delete(ctx, owner, rm.ID, m.ID))

	_, err = f.messages.Edit(ctx, owner, rm.ID, m.ID, "hello")
	req.Equal(relay_errors.KindNotFound, relay_errors.KindOf(err))
}

func TestMessageService_DeleteIsIdempotent(t *testing.T) {
	req := require.New(t)
	f := newChatFixture()
	owner := newTestUser("alice")
	rm := f.createRoom(t, owner)
	ctx := context.Background()

	m, err := f.messages.Append(ctx, owner, rm.ID, "hi")
	req.NoError(err)

	req.NoError(f.messages.Delete(ctx, owner, rm.ID, m.ID))
	// Deleting again succeeds without an error
	req.NoError(f.messages.Delete(ctx, owner, rm.ID, m.ID))
}

func TestMessageService_RoomOwnerModerationOverride(t *testing.T) {
	req := require.New(t)
	f := newChatFixture()
	owner := newTestUser("alice")
	rm := f.createRoom(t, owner)
	ctx := context.Background()

	// A member posts a message
	member := newTestUser("bob")
	req.NoError(f.rooms.rooms.AddMember(ctx, &room.Membership{RoomID: rm.ID, UserID: member.ID}))
	m, err := f.messages.Append(ctx, member, rm.ID, "spam")
	req.NoError(err)

	// A third user cannot delete it
	stranger := newTestUser("mallory")
	err = f.messages.Delete(ctx, stranger, rm.ID, m.ID)
	req.Equal(relay_errors.KindAuthorization, relay_errors.KindOf(err))

	// The room owner can
	req.NoError(f.messages.Delete(ctx, owner, rm.ID, m.ID))
}

func TestMessageService_ListExcludesTombstones(t *testing.T) {
	req := require.New(t)
	f := newChatFixture()
	owner := newTestUser("alice")
	rm := f.createRoom(t, owner)
	ctx := context.Background()

	first, err := f.messages.Append(ctx, owner, rm.ID, "first")
	req.NoError(err)
	second, err := f.messages.Append(ctx, owner, rm.ID, "second")
	req.NoError(err)

	req.NoError(f.messages.Delete(ctx, owner, rm.ID, first.ID))

	listed, err := f.messages.List(ctx, rm.ID, 0, 0)
	req.NoError(err)
	req.Len(listed, 1)
	req.Equal(second.ID, listed[0].ID)
	for _, m := range listed {
		req.False(m.Deleted)
	}
}

func TestMessageService_ListPagination(t *testing.T) {
	req := require.New(t)
	f := newChatFixture()
	owner := newTestUser("alice")
	rm := f.createRoom(t, owner)
	ctx := context.Background()

	for i := 0; i < 120; i++ {
		_, err := f.messages.Append(ctx, owner, rm.ID, fmt.Sprintf("message %d", i))
		req.NoError(err)
	}

	// Default page size applies when no limit is given
	page, err := f.messages.List(ctx, rm.ID, 0, 0)
	req.NoError(err)
	req.Len(page, DefaultPageSize)
	req.Equal(int64(120), page[0].Seq) // newest first

	// The server caps oversize limits
	page, err = f.messages.List(ctx, rm.ID, 0, 1000)
	req.NoError(err)
	req.Len(page, MaxPageSize)

	// A before cursor pages further back
	page, err = f.messages.List(ctx, rm.ID, 21, 0)
	req.NoError(err)
	req.Len(page, 20)
	req.Equal(int64(20), page[0].Seq)
	req.Equal(int64(1), page[len(page)-1].Seq)
}
