package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"relay-chat/internal/domain/room"
	"relay-chat/internal/domain/user"
	"relay-chat/internal/services"
	relay_errors "relay-chat/pkg/errors"
	"relay-chat/pkg/logger"
)

// Router drives a request through its phases: match the route,
// authenticate the caller, then execute the operation (which authorizes
// before any side effect). Any failed phase short-circuits to the error
// response, so no partial work survives a failure.
type Router struct {
	identity *services.IdentityService
	rooms    *services.RoomService
	messages *services.MessageService
	log      *logger.Logger
}

func New(identity *services.IdentityService, rooms *services.RoomService, messages *services.MessageService, log *logger.Logger) *Router {
	return &Router{identity: identity, rooms: rooms, messages: messages, log: log}
}

func (r *Router) Handle(ctx context.Context, req Request) Response {
	route, err := Match(req.Verb, req.Path)
	if err != nil {
		return r.errorResponse(ctx, err)
	}

	actor, err := r.identity.Resolve(ctx, req.CallerToken)
	if err != nil {
		return r.errorResponse(ctx, err)
	}

	body, err := r.execute(ctx, actor, route, req)
	if err != nil {
		return r.errorResponse(ctx, err)
	}
	return Response{Status: http.StatusOK, Body: body}
}

type createRoomBody struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type messageBody struct {
	Body string `json:"body"`
}

func (r *Router) execute(ctx context.Context, actor user.User, route Route, req Request) (any, error) {
	switch rt := route.(type) {
	case CreateRoomRoute:
		var body createRoomBody
		if err := decodeBody(req.Body, &body); err != nil {
			return nil, err
		}
		rm, err := r.rooms.Create(ctx, actor, body.Name, body.AvatarURL)
		if err != nil {
			return nil, err
		}
		return map[string]any{"room": rm}, nil

	case ListRoomsRoute:
		rooms, err := r.rooms.List(ctx, room.ListOptions{})
		if err != nil {
			return nil, err
		}
		return map[string]any{"rooms": rooms}, nil

	case GetRoomRoute:
		rm, err := r.rooms.Get(ctx, rt.RoomID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"room": rm}, nil

	case AppendMessageRoute:
		var body messageBody
		if err := decodeBody(req.Body, &body); err != nil {
			return nil, err
		}
		m, err := r.messages.Append(ctx, actor, rt.RoomID, body.Body)
		if err != nil {
			return nil, err
		}
		return map[string]any{"message": m}, nil

	case ListMessagesRoute:
		beforeSeq, err := queryInt64(req.Query.Get("before"))
		if err != nil {
			return nil, relay_errors.Validation("invalid before cursor")
		}
		limit, err := queryInt64(req.Query.Get("limit"))
		if err != nil {
			return nil, relay_errors.Validation("invalid limit")
		}
		messages, err := r.messages.List(ctx, rt.RoomID, beforeSeq, int(limit))
		if err != nil {
			return nil, err
		}
		return map[string]any{"room_id": rt.RoomID, "messages": messages}, nil

	case EditMessageRoute:
		var body messageBody
		if err := decodeBody(req.Body, &body); err != nil {
			return nil, err
		}
		m, err := r.messages.Edit(ctx, actor, rt.RoomID, rt.MessageID, body.Body)
		if err != nil {
			return nil, err
		}
		return map[string]any{"message": m}, nil

	case DeleteMessageRoute:
		if err := r.messages.Delete(ctx, actor, rt.RoomID, rt.MessageID); err != nil {
			return nil, err
		}
		return map[string]any{"room_id": rt.RoomID, "message_id": rt.MessageID}, nil

	default:
		return nil, relay_errors.RouteNotFound(req.Verb, req.Path)
	}
}

// errorResponse translates an error kind into the response envelope.
// Storage and unknown faults are logged with their cause but surface as a
// bare 500.
func (r *Router) errorResponse(ctx context.Context, err error) Response {
	kind := relay_errors.KindOf(err)
	status, message := http.StatusInternalServerError, "internal error"

	switch kind {
	case relay_errors.KindValidation:
		status, message = http.StatusBadRequest, errMessage(err)
	case relay_errors.KindAuthentication:
		status, message = http.StatusUnauthorized, errMessage(err)
	case relay_errors.KindAuthorization:
		status, message = http.StatusForbidden, errMessage(err)
	case relay_errors.KindNotFound, relay_errors.KindRouteNotFound:
		status, message = http.StatusNotFound, errMessage(err)
	case relay_errors.KindConflict:
		status, message = http.StatusConflict, errMessage(err)
	default:
		if r.log != nil {
			r.log.WithContext(ctx).Sugar().Errorf("request failed: %v", err)
		}
	}

	return Response{
		Status: status,
		Body: map[string]any{
			"error":   kind.String(),
			"message": message,
		},
	}
}

func errMessage(err error) string {
	var e *relay_errors.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func decodeBody(data []byte, into any) error {
	if len(data) == 0 {
		return relay_errors.Validation("request body required")
	}
	if err := json.Unmarshal(data, into); err != nil {
		return relay_errors.Validation("malformed request body")
	}
	return nil
}

func queryInt64(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseInt(value, 10, 64)
}
