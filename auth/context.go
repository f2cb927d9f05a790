// Package auth, as part of the authentication module.
// This file, `context.go`, carries the authenticated user id through the
// request's `context.Context`, from JWTMiddleware to the handlers.
package auth

import "context"

// contextKey is unexported so no other package can collide with it.
type contextKey string

const userIDContextKey contextKey = "auth_user_id"

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok && userID > 0
}
