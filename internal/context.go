package internal

import (
	"context"
)

type ctxKey string

const ContextOwnerKey ctxKey = "ownerID"

// OwnerFromContext returns the authenticated owner id placed by the auth
// middleware.
func OwnerFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	owner, ok := ctx.Value(ContextOwnerKey).(string)
	if !ok || owner == "" {
		return "", false
	}
	return owner, true
}

func ContextWithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ContextOwnerKey, owner)
}
