package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"relay-chat/config"
	"relay-chat/internal/domain/message"
	"relay-chat/internal/domain/room"
	"relay-chat/internal/repository/memory"
	"relay-chat/internal/services"
	relay_errors "relay-chat/pkg/errors"
)

func TestMatch(t *testing.T) {
	roomID := uuid.New()
	messageID := uuid.New()

	cases := []struct {
		verb string
		path string
		want Route
		kind relay_errors.Kind
	}{
		{verb: "POST", path: "/rooms", want: CreateRoomRoute{}},
		{verb: "GET", path: "/rooms", want: ListRoomsRoute{}},
		{verb: "GET", path: "/rooms/" + roomID.String(), want: GetRoomRoute{RoomID: roomID}},
		{verb: "POST", path: fmt.Sprintf("/rooms/%s/messages", roomID), want: AppendMessageRoute{RoomID: roomID}},
		{verb: "GET", path: fmt.Sprintf("/rooms/%s/messages", roomID), want: ListMessagesRoute{RoomID: roomID}},
		{verb: "PUT", path: fmt.Sprintf("/rooms/%s/messages/%s", roomID, messageID), want: EditMessageRoute{RoomID: roomID, MessageID: messageID}},
		{verb: "DELETE", path: fmt.Sprintf("/rooms/%s/messages/%s", roomID, messageID), want: DeleteMessageRoute{RoomID: roomID, MessageID: messageID}},

		// Trailing slashes are tolerated
		{verb: "POST", path: "/rooms/", want: CreateRoomRoute{}},

		// Shapes that fit no route
		{verb: "PATCH", path: "/rooms", kind: relay_errors.KindRouteNotFound},
		{verb: "DELETE", path: "/rooms/" + roomID.String(), kind: relay_errors.KindRouteNotFound},
		{verb: "GET", path: "/", kind: relay_errors.KindRouteNotFound},
		{verb: "GET", path: "/users", kind: relay_errors.KindRouteNotFound},
		{verb: "GET", path: fmt.Sprintf("/rooms/%s/members", roomID), kind: relay_errors.KindRouteNotFound},

		// Shapes that fit but carry malformed ids
		{verb: "GET", path: "/rooms/not-a-uuid", kind: relay_errors.KindValidation},
		{verb: "POST", path: "/rooms/not-a-uuid/messages", kind: relay_errors.KindValidation},
		{verb: "PUT", path: fmt.Sprintf("/rooms/%s/messages/not-a-uuid", roomID), kind: relay_errors.KindValidation},
	}

	for _, tc := range cases {
		t.Run(tc.verb+" "+tc.path, func(t *testing.T) {
			req := require.New(t)
			got, err := Match(tc.verb, tc.path)
			if tc.kind != relay_errors.KindUnknown {
				req.Error(err)
				req.Equal(tc.kind, relay_errors.KindOf(err))
				return
			}
			req.NoError(err)
			req.Equal(tc.want, got)
		})
	}
}

type routerFixture struct {
	router   *Router
	identity *services.IdentityService
}

func newRouterFixture() *routerFixture {
	store := memory.NewStore()
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiryMin: 60}
	identity := services.NewIdentityService(store.Users(), cfg)
	rooms := services.NewRoomService(store.Rooms(), nil, nil)
	messages := services.NewMessageService(store.Messages(), store.Rooms(), nil)
	return &routerFixture{
		router:   New(identity, rooms, messages, nil),
		identity: identity,
	}
}

func (f *routerFixture) register(t *testing.T, name string) string {
	t.Helper()
	_, token, err := f.identity.Register(context.Background(), name, "hunter2hunter2")
	require.NoError(t, err)
	return token
}

func (f *routerFixture) do(token, verb, path string, body any, query url.Values) Response {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	return f.router.Handle(context.Background(), Request{
		Verb:        verb,
		Path:        path,
		Query:       query,
		Body:        raw,
		CallerToken: token,
	})
}

func errorCode(resp Response) string {
	body := resp.Body.(map[string]any)
	return body["error"].(string)
}

func TestRouter_RejectsUnauthenticatedCalls(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture()

	resp := f.do("", "GET", "/rooms", nil, nil)
	req.Equal(http.StatusUnauthorized, resp.Status)
	req.Equal("AUTHENTICATION", errorCode(resp))

	resp = f.do("bogus-token", "POST", "/rooms", map[string]string{"name": "general"}, nil)
	req.Equal(http.StatusUnauthorized, resp.Status)
}

func TestRouter_UnknownRouteIs404(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture()

	// The route phase runs before authentication, so no token is needed
	// to learn a path does not exist.
	resp := f.do("", "GET", "/nowhere", nil, nil)
	req.Equal(http.StatusNotFound, resp.Status)
	req.Equal("ROUTE_NOT_FOUND", errorCode(resp))
}

func TestRouter_MalformedIDIs400(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture()

	resp := f.do("", "GET", "/rooms/not-a-uuid", nil, nil)
	req.Equal(http.StatusBadRequest, resp.Status)
	req.Equal("VALIDATION", errorCode(resp))
}

func TestRouter_CreateRoomValidation(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture()
	token := f.register(t, "alice")

	// Missing body
	resp := f.router.Handle(context.Background(), Request{
		Verb: "POST", Path: "/rooms", CallerToken: token,
	})
	req.Equal(http.StatusBadRequest, resp.Status)

	// Malformed JSON
	resp = f.router.Handle(context.Background(), Request{
		Verb: "POST", Path: "/rooms", Body: []byte("{not json"), CallerToken: token,
	})
	req.Equal(http.StatusBadRequest, resp.Status)

	// Blank name
	resp = f.do(token, "POST", "/rooms", map[string]string{"name": "   "}, nil)
	req.Equal(http.StatusBadRequest, resp.Status)
	req.Equal("VALIDATION", errorCode(resp))
}

func TestRouter_GetUnknownRoomIs404(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture()
	token := f.register(t, "alice")

	resp := f.do(token, "GET", "/rooms/"+uuid.NewString(), nil, nil)
	req.Equal(http.StatusNotFound, resp.Status)
	req.Equal("NOT_FOUND", errorCode(resp))
}

func TestRouter_DuplicateRoomNameIs409(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture()
	token := f.register(t, "alice")

	resp := f.do(token, "POST", "/rooms", map[string]string{"name": "general"}, nil)
	req.Equal(http.StatusOK, resp.Status)

	resp = f.do(token, "POST", "/rooms", map[string]string{"name": "general"}, nil)
	req.Equal(http.StatusConflict, resp.Status)
	req.Equal("CONFLICT", errorCode(resp))
}

// TestRouter_MessageLifecycle walks one message through its whole life:
// created by its author, rejected for edit by a stranger, edited by the
// author, deleted twice, and finally absent from the listing.
func TestRouter_MessageLifecycle(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture()

	aliceToken := f.register(t, "alice")
	bobToken := f.register(t, "bob")

	resp := f.do(aliceToken, "POST", "/rooms", map[string]string{"name": "general"}, nil)
	req.Equal(http.StatusOK, resp.Status)
	rm := resp.Body.(map[string]any)["room"].(room.ChatRoom)

	roomPath := "/rooms/" + rm.ID.String()

	resp = f.do(aliceToken, "POST", roomPath+"/messages", map[string]string{"body": "hi"}, nil)
	req.Equal(http.StatusOK, resp.Status)
	msg := resp.Body.(map[string]any)["message"].(message.Message)
	req.Equal(int64(1), msg.Seq)
	req.Equal("hi", msg.Body)

	msgPath := roomPath + "/messages/" + msg.ID.String()

	// Bob never joined, so the append is forbidden too
	resp = f.do(bobToken, "POST", roomPath+"/messages", map[string]string{"body": "intruding"}, nil)
	req.Equal(http.StatusForbidden, resp.Status)
	req.Equal("AUTHORIZATION", errorCode(resp))

	// Only the author may edit
	resp = f.do(bobToken, "PUT", msgPath, map[string]string{"body": "hacked"}, nil)
	req.Equal(http.StatusForbidden, resp.Status)

	resp = f.do(aliceToken, "PUT", msgPath, map[string]string{"body": "hello"}, nil)
	req.Equal(http.StatusOK, resp.Status)
	edited := resp.Body.(map[string]any)["message"].(message.Message)
	req.Equal(msg.ID, edited.ID)
	req.Equal(msg.Seq, edited.Seq)
	req.Equal("hello", edited.Body)
	req.True(edited.EditedAt.Valid)

	// Delete is idempotent
	resp = f.do(aliceToken, "DELETE", msgPath, nil, nil)
	req.Equal(http.StatusOK, resp.Status)
	resp = f.do(aliceToken, "DELETE", msgPath, nil, nil)
	req.Equal(http.StatusOK, resp.Status)

	// Editing the tombstone fails as not found
	resp = f.do(aliceToken, "PUT", msgPath, map[string]string{"body": "too late"}, nil)
	req.Equal(http.StatusNotFound, resp.Status)

	resp = f.do(aliceToken, "GET", roomPath+"/messages", nil, nil)
	req.Equal(http.StatusOK, resp.Status)
	listed := resp.Body.(map[string]any)["messages"].([]message.Message)
	req.Empty(listed)
}

func TestRouter_ListMessagesPagination(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture()

	token := f.register(t, "alice")

	resp := f.do(token, "POST", "/rooms", map[string]string{"name": "general"}, nil)
	req.Equal(http.StatusOK, resp.Status)
	rm := resp.Body.(map[string]any)["room"].(room.ChatRoom)
	roomPath := "/rooms/" + rm.ID.String()

	for i := 0; i < 60; i++ {
		resp = f.do(token, "POST", roomPath+"/messages", map[string]string{"body": fmt.Sprintf("msg %d", i+1)}, nil)
		req.Equal(http.StatusOK, resp.Status)
	}

	// Default page is 50, newest first
	resp = f.do(token, "GET", roomPath+"/messages", nil, nil)
	req.Equal(http.StatusOK, resp.Status)
	listed := resp.Body.(map[string]any)["messages"].([]message.Message)
	req.Len(listed, 50)
	req.Equal(int64(60), listed[0].Seq)

	// Cursor walks backwards
	q := url.Values{"before": {"11"}}
	resp = f.do(token, "GET", roomPath+"/messages", nil, q)
	listed = resp.Body.(map[string]any)["messages"].([]message.Message)
	req.Len(listed, 10)
	req.Equal(int64(10), listed[0].Seq)

	// Bad cursor values are rejected
	q = url.Values{"before": {"abc"}}
	resp = f.do(token, "GET", roomPath+"/messages", nil, q)
	req.Equal(http.StatusBadRequest, resp.Status)

	q = url.Values{"limit": {"abc"}}
	resp = f.do(token, "GET", roomPath+"/messages", nil, q)
	req.Equal(http.StatusBadRequest, resp.Status)
}
