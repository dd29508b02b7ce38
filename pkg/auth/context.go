package auth

import (
	"context"
	"errors"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const identityKey contextKey = "identity"

// ErrIdentityNotFound is returned when no Identity exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrIdentityNotFound = errors.New("identity not found in context")

// Identity is the authenticated caller as supplied by the identity provider.
// Email and Role are raw; the domain normalizes them.
type Identity struct {
	Email string
	Role  string
}

// IdentityFromCtx extracts the authenticated identity from the request context.
// Returns ErrIdentityNotFound if none is set (unauthenticated request).
func IdentityFromCtx(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.Email == "" {
		return Identity{}, ErrIdentityNotFound
	}
	return id, nil
}

// WithIdentity returns a new context with the given Identity attached.
// Used by authentication middleware after validating the session.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
