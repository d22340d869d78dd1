package middleware

import (
	"context"

	"github.com/safariconnector/backend/internal/authz"
)

type contextKey string

const (
	ctxActor    contextKey = "actor"
	ctxAccessID contextKey = "access_id"
)

// ActorFromContext returns the authenticated principal, or a zero Actor when
// the request was not authenticated.
func ActorFromContext(ctx context.Context) authz.Actor {
	if ctx == nil {
		return authz.Actor{}
	}
	if v, ok := ctx.Value(ctxActor).(authz.Actor); ok {
		return v
	}
	return authz.Actor{}
}

// AccessIDFromContext returns the session identifier minted into the token.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithActor injects the principal into the context.
func WithActor(ctx context.Context, actor authz.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}

// WithAccessID injects the session identifier into the context.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccessID, accessID)
}
