// Package actorctx carries the authenticated user and request id through a
// request's context.Context.
package actorctx

import (
	"context"

	"github.com/geocoder89/coursehub/internal/domain/user"
)

type ctxKey string

const (
	keyUser      ctxKey = "user"
	keyRequestID ctxKey = "request_id"
)

func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, keyUser, u)
}

func UserFrom(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(keyUser).(*user.User)

	return u, ok && u != nil
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func RequestIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)

	return v, ok && v != ""
}
