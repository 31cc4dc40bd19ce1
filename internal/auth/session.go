package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/uploadhub/internal/httperr"
	"github.com/dmitrymomot/uploadhub/internal/store"
)

// SessionStore is the read-only store surface session authentication
// needs. Sessions are minted by the login system; this service only
// validates them.
type SessionStore interface {
	FindSession(ctx context.Context, sessionToken string) (*store.Session, error)
	FindUser(ctx context.Context, id string) (*store.User, error)
}

// SessionAuth validates dashboard bearer sessions.
type SessionAuth struct {
	store SessionStore
	now   func() time.Time
}

// NewSessionAuth creates a session authenticator over the given store.
func NewSessionAuth(s SessionStore) *SessionAuth {
	return &SessionAuth{store: s, now: time.Now}
}

// Authenticate resolves a bearer session token to its user.
func (a *SessionAuth) Authenticate(ctx context.Context, sessionToken string) (*store.User, error) {
	if sessionToken == "" {
		return nil, httperr.ErrUnauthorized("session required")
	}

	sess, err := a.store.FindSession(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, httperr.ErrUnauthorized("invalid session")
		}
		return nil, httperr.ErrInternal("failed to resolve session", httperr.WithError(err))
	}

	if !sess.ExpiresAt.After(a.now()) {
		return nil, httperr.ErrUnauthorized("session expired")
	}

	user, err := a.store.FindUser(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, httperr.ErrUnauthorized("invalid session")
		}
		return nil, httperr.ErrInternal("failed to resolve session user", httperr.WithError(err))
	}

	return user, nil
}
