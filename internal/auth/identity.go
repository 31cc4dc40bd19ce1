// Package auth resolves caller identity for both entry points: API
// credentials (static key or signed token) for the open API, and bearer
// sessions for the dashboard API. Resolution is read-only and runs before
// any operation handler.
package auth

import (
	"context"

	"github.com/dmitrymomot/uploadhub/internal/store"
)

// Identity is the typed, immutable request context produced by credential
// resolution: the tenant app a credential is bound to and the user owning
// that app. It is created once per request and passed explicitly to
// operation handlers.
type Identity struct {
	App  store.App
	User store.User
}

type identityCtxKey struct{}

// WithIdentity returns a context carrying the resolved identity.
func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, ident)
}

// IdentityFromContext extracts the resolved identity from the context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	ident, ok := ctx.Value(identityCtxKey{}).(*Identity)
	return ident, ok
}

type userCtxKey struct{}

// WithUser returns a context carrying the session-authenticated user.
func WithUser(ctx context.Context, user *store.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// UserFromContext extracts the session-authenticated user from the
// context.
func UserFromContext(ctx context.Context) (*store.User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(*store.User)
	return user, ok
}
