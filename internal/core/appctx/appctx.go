// Package appctx provides request-scoped values extraction.
package appctx

import (
	"context"

	"github.com/google/uuid"
)

// TraceContext contains request tracing information.
type TraceContext struct {
	TraceID   string
	RequestID string
}

type traceContextKey struct{}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns TraceContext from context.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetRequestID returns request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// NewTraceContext creates a new TraceContext with generated IDs.
func NewTraceContext() *TraceContext {
	return &TraceContext{
		TraceID:   uuid.New().String(),
		RequestID: uuid.New().String(),
	}
}

// Actor identifies who performs an operation. Every stock mutation is
// attributed to an actor in the movement and audit logs.
type Actor struct {
	UserID   string
	Username string
	Role     string
}

type actorContextKey struct{}

// System is the actor used by scheduled jobs (daily close, low-stock scan).
var System = Actor{UserID: "system", Username: "system", Role: "system"}

// WithActor adds Actor to context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// GetActor returns Actor from context, or the zero Actor.
func GetActor(ctx context.Context) Actor {
	if v, ok := ctx.Value(actorContextKey{}).(Actor); ok {
		return v
	}
	return Actor{}
}

// ActorName returns the username from context, or "unknown".
func ActorName(ctx context.Context) string {
	a := GetActor(ctx)
	if a.Username == "" {
		return "unknown"
	}
	return a.Username
}
