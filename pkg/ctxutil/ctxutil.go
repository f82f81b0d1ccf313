// Package ctxutil carries request-scoped identifiers through contexts.
package ctxutil

import "context"

type ctxKey string

const userIDKey ctxKey = "user_id"

// WithUserID stores the user ID in the context. The dispatcher tags
// every op context with the queue owner before running it.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromCtx extracts the user ID from the context.
// Returns 0 and false if the value is missing or has the wrong type.
func UserIDFromCtx(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}
