package services

import "context"

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	commandKey   contextKey = "command"
)

// WithSessionID annotates context with the mining session identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext extracts the mining session identifier if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sessionIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCommand annotates context with the daemon command name being invoked.
func WithCommand(ctx context.Context, command string) context.Context {
	if command == "" {
		return ctx
	}
	return context.WithValue(ctx, commandKey, command)
}

// CommandFromContext returns the daemon command name if present.
func CommandFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(commandKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
