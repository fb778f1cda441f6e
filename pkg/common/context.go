package common

import (
	"context"
	"time"
)

// ContextKey is the type of the context keys set by the HTTP layer.
type ContextKey string

const (
	ContextKeyUserID    ContextKey = "user_id"
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyStartTime ContextKey = "start_time"
	ContextKeyState     ContextKey = "state"
)

// WithUserID adds the authenticated user id to ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// GetUserID returns the authenticated user id.
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	return userID, ok
}

// WithRequestID adds the request id to ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// GetRequestID returns the request id.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(ContextKeyRequestID).(string)
	return requestID, ok
}

// WithStartTime records when request processing started.
func WithStartTime(ctx context.Context, startTime time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyStartTime, startTime)
}

// GetElapsedTime returns the time since WithStartTime, or zero.
func GetElapsedTime(ctx context.Context) time.Duration {
	if startTime, ok := ctx.Value(ContextKeyStartTime).(time.Time); ok {
		return time.Since(startTime)
	}
	return 0
}

// State is the per-request key/value bag that middleware fills for handlers
// and their dependencies.
type State map[string]any

// WithState returns ctx carrying a copy of the current state with key set to
// value. Middleware further down the chain sees the addition; the parent
// context is unchanged.
func WithState(ctx context.Context, key string, value any) context.Context {
	current := GetState(ctx)
	next := make(State, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[key] = value
	return context.WithValue(ctx, ContextKeyState, next)
}

// GetState returns the request state, which may be nil.
func GetState(ctx context.Context) State {
	state, _ := ctx.Value(ContextKeyState).(State)
	return state
}

// ContextMetadata is the loggable summary of a request context.
type ContextMetadata struct {
	UserID    string        `json:"user_id,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// ExtractMetadata collects the metadata present in ctx.
func ExtractMetadata(ctx context.Context) ContextMetadata {
	meta := ContextMetadata{Duration: GetElapsedTime(ctx)}
	if userID, ok := GetUserID(ctx); ok {
		meta.UserID = userID
	}
	if requestID, ok := GetRequestID(ctx); ok {
		meta.RequestID = requestID
	}
	return meta
}
