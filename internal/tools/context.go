package tools

import (
	"context"
	"errors"

	"github.com/prodsight/yield-mcp-server/internal/session"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// sessionContextKey is the context key for the session state store.
const sessionContextKey contextKey = "session_state"

// ErrNoSessionInContext is returned when no session state is found in the context.
var ErrNoSessionInContext = errors.New("no session state in context")

// WithSession adds a session state store to the context. The server
// injects the conversation's store into every tool call, which keeps the
// tools free of global state and easy to test.
func WithSession(ctx context.Context, st *session.State) context.Context {
	return context.WithValue(ctx, sessionContextKey, st)
}

// SessionFromContext retrieves the session state store from the context.
// Returns ErrNoSessionInContext if no store is present.
func SessionFromContext(ctx context.Context) (*session.State, error) {
	st, ok := ctx.Value(sessionContextKey).(*session.State)
	if !ok || st == nil {
		return nil, ErrNoSessionInContext
	}
	return st, nil
}
