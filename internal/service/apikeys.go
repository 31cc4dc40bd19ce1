package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/dmitrymomot/uploadhub/internal/httperr"
	"github.com/dmitrymomot/uploadhub/internal/store"
	"github.com/dmitrymomot/uploadhub/pkg/token"
)

// Credential entropy in bytes before hex encoding.
const (
	secretByteLen   = 32
	clientIDByteLen = 16
)

const maxKeyNameLen = 255

// APIKeyStore is the store surface the credential service needs.
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, key store.APIKey) (*store.APIKey, error)
	FindAPIKey(ctx context.Context, id int64) (*store.APIKey, error)
	FindAPIKeyByClientID(ctx context.Context, clientID string) (*store.APIKey, error)
	ListAPIKeysByApp(ctx context.Context, appID string) ([]store.APIKey, error)
	SoftDeleteAPIKey(ctx context.Context, id int64) error
	FindAppForUser(ctx context.Context, id, userID string) (*store.App, error)
}

// APIKeyService manages open-API credentials and issues signed tokens.
type APIKeyService struct {
	store    APIKeyStore
	tokenTTL time.Duration
}

// NewAPIKeyService creates a credential service. tokenTTL bounds issued
// signed tokens (token.DefaultTTL when zero).
func NewAPIKeyService(s APIKeyStore, tokenTTL time.Duration) *APIKeyService {
	if tokenTTL <= 0 {
		tokenTTL = token.DefaultTTL
	}
	return &APIKeyService{store: s, tokenTTL: tokenTTL}
}

// Create mints a new credential for an app the user owns. The secret and
// client id are high-entropy random hex and never derivable from each
// other.
func (s *APIKeyService) Create(ctx context.Context, appID, userID, name string) (*store.APIKey, error) {
	if name == "" || len(name) > maxKeyNameLen {
		return nil, httperr.ErrBadRequest("name must be 1-255 characters")
	}

	if _, err := s.store.FindAppForUser(ctx, appID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, httperr.ErrNotFound("app not found")
		}
		return nil, httperr.ErrInternal("failed to load app", httperr.WithError(err))
	}

	secret, err := randomHex(secretByteLen)
	if err != nil {
		return nil, httperr.ErrInternal("failed to generate credential", httperr.WithError(err))
	}
	clientID, err := randomHex(clientIDByteLen)
	if err != nil {
		return nil, httperr.ErrInternal("failed to generate credential", httperr.WithError(err))
	}

	key, err := s.store.CreateAPIKey(ctx, store.APIKey{
		Name:     name,
		Secret:   secret,
		ClientID: clientID,
		AppID:    appID,
	})
	if err != nil {
		return nil, httperr.ErrInternal("failed to create api key", httperr.WithError(err))
	}
	return key, nil
}

// List returns the credentials of an app the user owns.
func (s *APIKeyService) List(ctx context.Context, appID, userID string) ([]store.APIKey, error) {
	if _, err := s.store.FindAppForUser(ctx, appID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, httperr.ErrNotFound("app not found")
		}
		return nil, httperr.ErrInternal("failed to load app", httperr.WithError(err))
	}

	keys, err := s.store.ListAPIKeysByApp(ctx, appID)
	if err != nil {
		return nil, httperr.ErrInternal("failed to list api keys", httperr.WithError(err))
	}
	return keys, nil
}

// Delete soft-deletes a credential. Credentials of other users' apps are
// indistinguishable from missing ones.
func (s *APIKeyService) Delete(ctx context.Context, id int64, userID string) error {
	key, err := s.store.FindAPIKey(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperr.ErrNotFound("api key not found")
		}
		return httperr.ErrInternal("failed to load api key", httperr.WithError(err))
	}

	if _, err := s.store.FindAppForUser(ctx, key.AppID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperr.ErrNotFound("api key not found")
		}
		return httperr.ErrInternal("failed to load app", httperr.WithError(err))
	}

	if err := s.store.SoftDeleteAPIKey(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperr.ErrNotFound("api key not found")
		}
		return httperr.ErrInternal("failed to delete api key", httperr.WithError(err))
	}
	return nil
}

// IssueToken signs a transient bearer token for the credential with the
// given client id. The HMAC key is the credential's stored secret, so the
// token verifies under the same key the resolver later selects.
func (s *APIKeyService) IssueToken(ctx context.Context, clientID string) (string, time.Duration, error) {
	if clientID == "" {
		return "", 0, httperr.ErrBadRequest("clientId is required")
	}

	key, err := s.store.FindAPIKeyByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", 0, httperr.ErrUnauthorized("invalid client id")
		}
		return "", 0, httperr.ErrInternal("failed to load credential", httperr.WithError(err))
	}

	signed, err := token.Issue(clientID, key.Secret, s.tokenTTL)
	if err != nil {
		return "", 0, httperr.ErrInternal("failed to issue token", httperr.WithError(err))
	}
	return signed, s.tokenTTL, nil
}

// randomHex returns n random bytes hex-encoded.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
