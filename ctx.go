package session

import (
	"context"
)

var sessionCtxKey = &contextKey{"session"}
var retriedCtxKey = &contextKey{"retried"}

type contextKey struct {
	name string
}

// WithSessionContext sets the session snapshot in the given context so app
// layers can carry it alongside a request.
func WithSessionContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, s)
}

// SessionFromContext finds the session snapshot in the context.
func SessionFromContext(ctx context.Context) (Session, bool) {
	raw, ok := ctx.Value(sessionCtxKey).(Session)
	return raw, ok
}

// markRetried flags the context of a replayed request. The flag is what
// bounds the 401/refresh cycle to a single attempt per originating request.
func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedCtxKey, true)
}

func wasRetried(ctx context.Context) bool {
	flag, ok := ctx.Value(retriedCtxKey).(bool)
	return ok && flag
}
