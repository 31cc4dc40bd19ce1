package service

import (
	"context"
	"errors"
	"net/url"

	"github.com/google/uuid"

	"github.com/dmitrymomot/uploadhub/internal/auth"
	"github.com/dmitrymomot/uploadhub/internal/httperr"
	"github.com/dmitrymomot/uploadhub/internal/store"
)

// Pagination defaults for file listings.
const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// FileStore is the store surface the file record service needs.
type FileStore interface {
	InsertFile(ctx context.Context, f store.File) (*store.File, error)
	ListFilesByApp(ctx context.Context, appID string, limit, offset int) ([]store.File, error)
	CountFilesByApp(ctx context.Context, appID string) (int64, error)
	SoftDeleteFile(ctx context.Context, fileID string) (*store.File, error)
	FindFileInApp(ctx context.Context, fileID, appID string) (*store.File, error)
}

// FileService persists and lists file metadata scoped to a tenant app.
// It never touches object storage: records are created only after the
// client reports a completed upload, and trust is placed in that report.
type FileService struct {
	store FileStore
}

// NewFileService creates a file record service.
func NewFileService(s FileStore) *FileService {
	return &FileService{store: s}
}

// FileList is one page of an app's files.
type FileList struct {
	Files []store.File
	Total int64
	Page  int
	Limit int
}

// Save persists a file record for an upload the client claims to have
// completed. path must be an absolute URL; its path component becomes the
// storage path and its full form the canonical URL.
func (s *FileService) Save(ctx context.Context, ident *auth.Identity, name, path, contentType string) (*store.File, error) {
	if name == "" {
		return nil, httperr.ErrBadRequest("name is required")
	}

	u, err := url.Parse(path)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, httperr.ErrBadRequest("path must be an absolute URL")
	}

	f, err := s.store.InsertFile(ctx, store.File{
		ID:          uuid.NewString(),
		Name:        name,
		ContentType: contentType,
		Path:        u.Path,
		URL:         u.String(),
		AppID:       ident.App.ID,
		UserID:      ident.User.ID,
	})
	if err != nil {
		return nil, httperr.ErrInternal("failed to save file record", httperr.WithError(err))
	}
	return f, nil
}

// List returns one page of the app's non-deleted files, newest first,
// with the total count for pagination.
func (s *FileService) List(ctx context.Context, appID string, page, limit int) (*FileList, error) {
	if page <= 0 || limit <= 0 {
		return nil, httperr.ErrBadRequest("page and limit must be positive")
	}

	offset := (page - 1) * limit

	files, err := s.store.ListFilesByApp(ctx, appID, limit, offset)
	if err != nil {
		return nil, httperr.ErrInternal("failed to list files", httperr.WithError(err))
	}

	total, err := s.store.CountFilesByApp(ctx, appID)
	if err != nil {
		return nil, httperr.ErrInternal("failed to count files", httperr.WithError(err))
	}

	return &FileList{Files: files, Total: total, Page: page, Limit: limit}, nil
}

// Delete soft-deletes a file scoped to the app. Missing, out-of-scope and
// already-deleted files all surface as not found; the soft delete itself
// is idempotent at the storage layer.
func (s *FileService) Delete(ctx context.Context, appID, fileID string) (*store.File, error) {
	if _, err := s.store.FindFileInApp(ctx, fileID, appID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, httperr.ErrNotFound("file not found")
		}
		return nil, httperr.ErrInternal("failed to delete file", httperr.WithError(err))
	}

	f, err := s.store.SoftDeleteFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Lost a race with a concurrent delete; soft delete is
			// idempotent so this is a benign not-found.
			return nil, httperr.ErrNotFound("file not found")
		}
		return nil, httperr.ErrInternal("failed to delete file", httperr.WithError(err))
	}
	return f, nil
}
