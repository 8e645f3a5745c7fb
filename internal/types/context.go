package types

import "context"

type contextKey string

const (
	requestIDKey      contextKey = "request_id"
	invocationModeKey contextKey = "invocation_mode"
)

// WithRequestID stores the invocation ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID retrieves the invocation ID from the context.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithInvocationMode records the active invocation mode so collaborators can
// tag their log lines and metrics with it.
func WithInvocationMode(ctx context.Context, mode InvocationMode) context.Context {
	return context.WithValue(ctx, invocationModeKey, mode)
}

// GetInvocationMode returns the mode stored by WithInvocationMode, or the
// empty string.
func GetInvocationMode(ctx context.Context) InvocationMode {
	m, _ := ctx.Value(invocationModeKey).(InvocationMode)
	return m
}
