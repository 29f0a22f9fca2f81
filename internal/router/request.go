package router

import (
	"net/url"
	"strings"

	"github.com/google/uuid"

	relay_errors "relay-chat/pkg/errors"
)

// Request is the transport-independent shape delivered by the HTTP layer:
// the verb, the raw path, query parameters, an optional body and the opaque
// caller token.
type Request struct {
	Verb        string
	Path        string
	Query       url.Values
	Body        []byte
	CallerToken string
}

// Response is handed back to the transport layer, which writes Body as
// JSON with the given status.
type Response struct {
	Status int
	Body   any
}

// Route is the closed set of operations a (verb, path) pair can map to.
// The switch in Router.execute consumes it exhaustively.
type Route interface {
	isRoute()
}

type CreateRoomRoute struct{}

type ListRoomsRoute struct{}

type GetRoomRoute struct {
	RoomID uuid.UUID
}

type AppendMessageRoute struct {
	RoomID uuid.UUID
}

type ListMessagesRoute struct {
	RoomID uuid.UUID
}

type EditMessageRoute struct {
	RoomID    uuid.UUID
	MessageID uuid.UUID
}

type DeleteMessageRoute struct {
	RoomID    uuid.UUID
	MessageID uuid.UUID
}

func (CreateRoomRoute) isRoute()    {}
func (ListRoomsRoute) isRoute()     {}
func (GetRoomRoute) isRoute()       {}
func (AppendMessageRoute) isRoute() {}
func (ListMessagesRoute) isRoute()  {}
func (EditMessageRoute) isRoute()   {}
func (DeleteMessageRoute) isRoute() {}

// Match maps a (verb, path) pair onto a Route. Paths that do not fit any
// shape fail with a route-not-found error; shapes that fit but carry a
// malformed id fail with a validation error.
func Match(verb, path string) (Route, error) {
	segments := splitPath(path)

	switch {
	case len(segments) == 1 && segments[0] == "rooms":
		switch verb {
		case "POST":
			return CreateRoomRoute{}, nil
		case "GET":
			return ListRoomsRoute{}, nil
		}

	case len(segments) == 2 && segments[0] == "rooms":
		if verb == "GET" {
			roomID, err := parseID(segments[1], "room id")
			if err != nil {
				return nil, err
			}
			return GetRoomRoute{RoomID: roomID}, nil
		}

	case len(segments) == 3 && segments[0] == "rooms" && segments[2] == "messages":
		roomID, err := parseID(segments[1], "room id")
		if err != nil {
			return nil, err
		}
		switch verb {
		case "POST":
			return AppendMessageRoute{RoomID: roomID}, nil
		case "GET":
			return ListMessagesRoute{RoomID: roomID}, nil
		}

	case len(segments) == 4 && segments[0] == "rooms" && segments[2] == "messages":
		roomID, err := parseID(segments[1], "room id")
		if err != nil {
			return nil, err
		}
		messageID, err := parseID(segments[3], "message id")
		if err != nil {
			return nil, err
		}
		switch verb {
		case "PUT":
			return EditMessageRoute{RoomID: roomID, MessageID: messageID}, nil
		case "DELETE":
			return DeleteMessageRoute{RoomID: roomID, MessageID: messageID}, nil
		}
	}

	return nil, relay_errors.RouteNotFound(verb, path)
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func parseID(value, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, relay_errors.Validation("invalid " + what)
	}
	return id, nil
}
