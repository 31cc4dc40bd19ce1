package auth

import (
	"context"
	"errors"

	"github.com/dmitrymomot/uploadhub/internal/httperr"
	"github.com/dmitrymomot/uploadhub/internal/store"
	"github.com/dmitrymomot/uploadhub/pkg/token"
)

// Open API credential headers.
const (
	HeaderAPIKey      = "api-key"
	HeaderSignedToken = "signed-token"
)

// CredentialStore is the read-only store surface the resolver needs.
type CredentialStore interface {
	FindAPIKeyBySecret(ctx context.Context, secret string) (*store.APIKey, error)
	FindAPIKeyByClientID(ctx context.Context, clientID string) (*store.APIKey, error)
	FindApp(ctx context.Context, id string) (*store.App, error)
	FindUser(ctx context.Context, id string) (*store.User, error)
}

// Resolver multiplexes the two open-API credential schemes.
type Resolver struct {
	store CredentialStore
}

// NewResolver creates a credential resolver over the given store.
func NewResolver(s CredentialStore) *Resolver {
	return &Resolver{store: s}
}

// Resolve produces the caller's identity from the request's credential
// headers. When both headers are present the static key wins.
func (r *Resolver) Resolve(ctx context.Context, apiKey, signedToken string) (*Identity, error) {
	switch {
	case apiKey != "":
		return r.resolveStaticKey(ctx, apiKey)
	case signedToken != "":
		return r.resolveSignedToken(ctx, signedToken)
	default:
		return nil, httperr.ErrUnauthorized("credential required")
	}
}

// resolveStaticKey authenticates by exact match on a credential's secret.
func (r *Resolver) resolveStaticKey(ctx context.Context, apiKey string) (*Identity, error) {
	key, err := r.store.FindAPIKeyBySecret(ctx, apiKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, httperr.ErrUnauthorized("invalid api key")
		}
		return nil, httperr.ErrInternal("failed to resolve credential", httperr.WithError(err))
	}
	return r.identityFor(ctx, key, "invalid api key")
}

// resolveSignedToken authenticates a self-describing HMAC token. The
// signing secret is per-credential, so the token must be decoded first to
// learn which credential it claims, and only then verified with that
// credential's secret. The order is load-bearing: never verify blind.
func (r *Resolver) resolveSignedToken(ctx context.Context, signedToken string) (*Identity, error) {
	clientID, err := token.DecodeClientID(signedToken)
	if err != nil {
		return nil, httperr.ErrBadRequest("clientId not found in token", httperr.WithError(err))
	}

	key, err := r.store.FindAPIKeyByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, httperr.ErrUnauthorized("invalid client id")
		}
		return nil, httperr.ErrInternal("failed to resolve credential", httperr.WithError(err))
	}

	if _, err := token.Verify(signedToken, key.Secret); err != nil {
		return nil, httperr.ErrUnauthorized("invalid token signature", httperr.WithError(err))
	}

	return r.identityFor(ctx, key, "invalid token signature")
}

// identityFor resolves the credential's app and owning user. A credential
// pointing at a deleted app is as good as no credential, so the lookup
// failure surfaces with the scheme's own unauthorized message.
func (r *Resolver) identityFor(ctx context.Context, key *store.APIKey, unauthorizedMsg string) (*Identity, error) {
	app, err := r.store.FindApp(ctx, key.AppID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, httperr.ErrUnauthorized(unauthorizedMsg)
		}
		return nil, httperr.ErrInternal("failed to resolve credential", httperr.WithError(err))
	}

	user, err := r.store.FindUser(ctx, app.UserID)
	if err != nil {
		return nil, httperr.ErrInternal("failed to resolve credential owner", httperr.WithError(err))
	}

	return &Identity{App: *app, User: *user}, nil
}
