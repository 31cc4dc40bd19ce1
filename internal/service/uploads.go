package service

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/uploadhub/internal/auth"
	"github.com/dmitrymomot/uploadhub/internal/httperr"
	"github.com/dmitrymomot/uploadhub/internal/store"
	"github.com/dmitrymomot/uploadhub/pkg/storage"
)

// UploadStorageStore is the store surface storage resolution needs.
type UploadStorageStore interface {
	FindStorageConfigForUser(ctx context.Context, id int64, userID string) (*store.StorageConfig, error)
}

// presignFunc signs one upload against a resolved backend. Injected so
// tests can observe resolution without AWS credentials.
type presignFunc func(ctx context.Context, cfg storage.Config, params storage.UploadParams, expiry time.Duration) (*storage.PresignedUpload, error)

// UploadService resolves a tenant's effective storage backend and issues
// presigned upload URLs against it.
type UploadService struct {
	store    UploadStorageStore
	fallback storage.Config
	expiry   time.Duration
	presign  presignFunc
}

// NewUploadService creates an upload service. fallback holds the
// deployment-wide default storage parameters and may be incomplete when
// the deployment provides none.
func NewUploadService(s UploadStorageStore, fallback storage.Config) *UploadService {
	return &UploadService{
		store:    s,
		fallback: fallback,
		expiry:   storage.DefaultUploadExpiry,
		presign: func(ctx context.Context, cfg storage.Config, params storage.UploadParams, expiry time.Duration) (*storage.PresignedUpload, error) {
			// Stateless factory: a fresh signer per issuance, safe for
			// concurrent requests using different tenant backends.
			signer, err := storage.New(cfg)
			if err != nil {
				return nil, err
			}
			return signer.PresignUpload(ctx, params, expiry)
		},
	}
}

// UploadRequest describes one createPresignedUrl call.
type UploadRequest struct {
	Filename    string
	ContentType string
	Size        int64
	StorageID   *int64
}

// CreatePresignedUpload resolves the effective storage backend for the
// caller and issues a time-boxed signed PUT URL. No retries: a signing
// failure surfaces immediately and the caller decides whether to retry.
func (s *UploadService) CreatePresignedUpload(ctx context.Context, ident *auth.Identity, req UploadRequest) (*storage.PresignedUpload, error) {
	if req.Filename == "" {
		return nil, httperr.ErrBadRequest("filename is required")
	}
	if req.ContentType == "" {
		return nil, httperr.ErrBadRequest("contentType is required")
	}
	if req.Size <= 0 {
		return nil, httperr.ErrBadRequest("size must be positive")
	}

	cfg, err := s.ResolveConfig(ctx, ident, req.StorageID)
	if err != nil {
		return nil, err
	}

	up, err := s.presign(ctx, cfg, storage.UploadParams{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        req.Size,
	}, s.expiry)
	if err != nil {
		return nil, httperr.ErrInternal("failed to sign upload url", httperr.WithError(err))
	}
	return up, nil
}

// ResolveConfig determines which storage backend to use, re-resolving on
// every call so configuration changes take effect mid-session. Priority:
//
//  1. explicit storage id from the request, scoped to the owning user;
//  2. the app's default storage reference, same scoping;
//  3. deployment-wide default parameters from the environment.
func (s *UploadService) ResolveConfig(ctx context.Context, ident *auth.Identity, storageID *int64) (storage.Config, error) {
	switch {
	case storageID != nil:
		sc, err := s.store.FindStorageConfigForUser(ctx, *storageID, ident.User.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return storage.Config{}, httperr.ErrNotFound("storage config not found")
			}
			return storage.Config{}, httperr.ErrInternal("failed to resolve storage config", httperr.WithError(err))
		}
		return backendConfig(sc), nil

	case ident.App.StorageID != nil:
		sc, err := s.store.FindStorageConfigForUser(ctx, *ident.App.StorageID, ident.User.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return storage.Config{}, httperr.ErrNotFound("app storage missing")
			}
			return storage.Config{}, httperr.ErrInternal("failed to resolve storage config", httperr.WithError(err))
		}
		return backendConfig(sc), nil

	default:
		if !s.fallback.Complete() {
			return storage.Config{}, httperr.ErrBadRequest("no storage configured")
		}
		return s.fallback, nil
	}
}

// backendConfig maps a stored configuration row to connection parameters.
func backendConfig(sc *store.StorageConfig) storage.Config {
	return storage.Config{
		Bucket:          sc.Bucket,
		Region:          sc.Region,
		AccessKeyID:     sc.AccessKeyID,
		SecretAccessKey: sc.SecretAccessKey,
		Endpoint:        sc.Endpoint,
	}
}
