package services

import (
	"context"

	"relay-chat/internal/domain/user"
)

type ctxKey int

const actorKey ctxKey = iota

func WithActor(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, actorKey, u)
}

func ActorFromContext(ctx context.Context) (user.User, bool) {
	value := ctx.Value(actorKey)
	if value == nil {
		return user.User{}, false
	}
	u, ok := value.(user.User)
	return u, ok
}
