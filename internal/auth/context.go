package auth

import (
	"context"

	"github.com/serroba/shortlinks/internal/shortener"
)

type ownerKey struct{}

// ContextWithOwner stores the authenticated owner in ctx.
func ContextWithOwner(ctx context.Context, owner shortener.OwnerID) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFromContext returns the authenticated owner or ErrUnauthenticated.
func OwnerFromContext(ctx context.Context) (shortener.OwnerID, error) {
	owner, ok := ctx.Value(ownerKey{}).(shortener.OwnerID)
	if !ok || owner == "" {
		return "", ErrUnauthenticated
	}

	return owner, nil
}
