package service

import (
	"context"
	"errors"

	"github.com/dmitrymomot/uploadhub/internal/httperr"
	"github.com/dmitrymomot/uploadhub/internal/store"
)

const maxStorageNameLen = 100

// StorageConfigStore is the store surface the storage config service needs.
type StorageConfigStore interface {
	CreateStorageConfig(ctx context.Context, cfg store.StorageConfig) (*store.StorageConfig, error)
	FindStorageConfigForUser(ctx context.Context, id int64, userID string) (*store.StorageConfig, error)
	ListStorageConfigsByUser(ctx context.Context, userID string) ([]store.StorageConfig, error)
	UpdateStorageConfig(ctx context.Context, cfg store.StorageConfig) (*store.StorageConfig, error)
	CountAppsUsingStorage(ctx context.Context, storageID int64) (int64, error)
	SoftDeleteStorageConfig(ctx context.Context, id int64, userID string) error
}

// StorageConfigInput carries the user-editable fields of a storage config.
type StorageConfigInput struct {
	Name            string
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

func (in StorageConfigInput) validate() error {
	if in.Name == "" || len(in.Name) > maxStorageNameLen {
		return httperr.ErrBadRequest("name must be 1-100 characters")
	}
	if in.Bucket == "" {
		return httperr.ErrBadRequest("bucket is required")
	}
	if in.Region == "" {
		return httperr.ErrBadRequest("region is required")
	}
	if in.AccessKeyID == "" || in.SecretAccessKey == "" {
		return httperr.ErrBadRequest("access credentials are required")
	}
	return nil
}

// StorageConfigService manages per-user storage backends.
type StorageConfigService struct {
	store StorageConfigStore
}

func NewStorageConfigService(s StorageConfigStore) *StorageConfigService {
	return &StorageConfigService{store: s}
}

func (s *StorageConfigService) Create(ctx context.Context, userID string, in StorageConfigInput) (*store.StorageConfig, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	cfg, err := s.store.CreateStorageConfig(ctx, store.StorageConfig{
		Name:            in.Name,
		UserID:          userID,
		Bucket:          in.Bucket,
		Region:          in.Region,
		AccessKeyID:     in.AccessKeyID,
		SecretAccessKey: in.SecretAccessKey,
		Endpoint:        in.Endpoint,
	})
	if err != nil {
		return nil, httperr.ErrInternal("failed to create storage config", httperr.WithError(err))
	}
	return cfg, nil
}

func (s *StorageConfigService) Get(ctx context.Context, id int64, userID string) (*store.StorageConfig, error) {
	cfg, err := s.store.FindStorageConfigForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, httperr.ErrNotFound("storage config not found")
		}
		return nil, httperr.ErrInternal("failed to load storage config", httperr.WithError(err))
	}
	return cfg, nil
}

func (s *StorageConfigService) List(ctx context.Context, userID string) ([]store.StorageConfig, error) {
	cfgs, err := s.store.ListStorageConfigsByUser(ctx, userID)
	if err != nil {
		return nil, httperr.ErrInternal("failed to list storage configs", httperr.WithError(err))
	}
	return cfgs, nil
}

func (s *StorageConfigService) Update(ctx context.Context, id int64, userID string, in StorageConfigInput) (*store.StorageConfig, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	cfg, err := s.store.UpdateStorageConfig(ctx, store.StorageConfig{
		ID:              id,
		Name:            in.Name,
		UserID:          userID,
		Bucket:          in.Bucket,
		Region:          in.Region,
		AccessKeyID:     in.AccessKeyID,
		SecretAccessKey: in.SecretAccessKey,
		Endpoint:        in.Endpoint,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, httperr.ErrNotFound("storage config not found")
		}
		return nil, httperr.ErrInternal("failed to update storage config", httperr.WithError(err))
	}
	return cfg, nil
}

// Delete soft-deletes a storage config unless any non-deleted app still
// points at it.
func (s *StorageConfigService) Delete(ctx context.Context, id int64, userID string) error {
	if _, err := s.store.FindStorageConfigForUser(ctx, id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperr.ErrNotFound("storage config not found")
		}
		return httperr.ErrInternal("failed to load storage config", httperr.WithError(err))
	}

	inUse, err := s.store.CountAppsUsingStorage(ctx, id)
	if err != nil {
		return httperr.ErrInternal("failed to check storage usage", httperr.WithError(err))
	}
	if inUse > 0 {
		return httperr.ErrConflict("storage config is in use")
	}

	if err := s.store.SoftDeleteStorageConfig(ctx, id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperr.ErrNotFound("storage config not found")
		}
		return httperr.ErrInternal("failed to delete storage config", httperr.WithError(err))
	}
	return nil
}
