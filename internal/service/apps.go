// Package service implements the business operations shared by both entry
// points: the api-key/signed-token open API and the session-authenticated
// dashboard API. Handlers differ only in how they resolve the caller;
// everything below that line lives here.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/uploadhub/internal/httperr"
	"github.com/dmitrymomot/uploadhub/internal/store"
)

// Input length limits, mirroring the schema's column sizes.
const (
	maxAppNameLen        = 100
	maxAppDescriptionLen = 500
)

// AppStore is the store surface the app service needs.
type AppStore interface {
	CreateApp(ctx context.Context, app store.App) (*store.App, error)
	FindAppForUser(ctx context.Context, id, userID string) (*store.App, error)
	ListAppsByUser(ctx context.Context, userID string) ([]store.App, error)
	SetAppStorage(ctx context.Context, appID string, storageID *int64) (*store.App, error)
	SoftDeleteApp(ctx context.Context, id string) error
	CountFilesByApp(ctx context.Context, appID string) (int64, error)
	FindStorageConfigForUser(ctx context.Context, id int64, userID string) (*store.StorageConfig, error)
}

// AppService manages tenant apps for dashboard users.
type AppService struct {
	store AppStore
}

// NewAppService creates an app service.
func NewAppService(s AppStore) *AppService {
	return &AppService{store: s}
}

// Create provisions a new tenant app owned by the given user.
func (s *AppService) Create(ctx context.Context, userID, name, description string) (*store.App, error) {
	if name == "" || len(name) > maxAppNameLen {
		return nil, httperr.ErrBadRequest("name must be 1-100 characters")
	}
	if len(description) > maxAppDescriptionLen {
		return nil, httperr.ErrBadRequest("description must be at most 500 characters")
	}

	app, err := s.store.CreateApp(ctx, store.App{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		UserID:      userID,
	})
	if err != nil {
		return nil, httperr.ErrInternal("failed to create app", httperr.WithError(err))
	}
	return app, nil
}

// Get returns the user's app with the given id.
func (s *AppService) Get(ctx context.Context, id, userID string) (*store.App, error) {
	app, err := s.store.FindAppForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, httperr.ErrNotFound("app not found")
		}
		return nil, httperr.ErrInternal("failed to load app", httperr.WithError(err))
	}
	return app, nil
}

// List returns the user's non-deleted apps, newest first.
func (s *AppService) List(ctx context.Context, userID string) ([]store.App, error) {
	apps, err := s.store.ListAppsByUser(ctx, userID)
	if err != nil {
		return nil, httperr.ErrInternal("failed to list apps", httperr.WithError(err))
	}
	return apps, nil
}

// SetStorage updates the app's default storage reference. A nil storageID
// clears the reference, dropping the app back to the deployment default.
func (s *AppService) SetStorage(ctx context.Context, appID, userID string, storageID *int64) (*store.App, error) {
	if _, err := s.Get(ctx, appID, userID); err != nil {
		return nil, err
	}

	if storageID != nil {
		if _, err := s.store.FindStorageConfigForUser(ctx, *storageID, userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, httperr.ErrNotFound("storage config not found")
			}
			return nil, httperr.ErrInternal("failed to load storage config", httperr.WithError(err))
		}
	}

	app, err := s.store.SetAppStorage(ctx, appID, storageID)
	if err != nil {
		return nil, httperr.ErrInternal("failed to update app storage", httperr.WithError(err))
	}
	return app, nil
}

// Delete soft-deletes an app. Apps still owning non-deleted files cannot
// be deleted; the deletion is irreversible through the API.
func (s *AppService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}

	n, err := s.store.CountFilesByApp(ctx, id)
	if err != nil {
		return httperr.ErrInternal("failed to count app files", httperr.WithError(err))
	}
	if n > 0 {
		return httperr.ErrConflict("app still owns files")
	}

	if err := s.store.SoftDeleteApp(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperr.ErrNotFound("app not found")
		}
		return httperr.ErrInternal("failed to delete app", httperr.WithError(err))
	}
	return nil
}
