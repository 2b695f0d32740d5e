// Package reqctx carries per-request values (request ID, authenticated
// user) through context without importing transport packages.
package reqctx

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
	roleKey      contextKey = "role"
)

// WithRequestID injects the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID extracts the request ID, or "" when absent.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithUser injects the authenticated subject after token verification.
func WithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// UserID extracts the authenticated user ID, or "" when unauthenticated.
func UserID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// Role extracts the authenticated role, or "" when unauthenticated.
func Role(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if r, ok := ctx.Value(roleKey).(string); ok {
		return r
	}
	return ""
}
