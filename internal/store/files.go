package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const fileColumns = `id, name, content_type, path, url, app_id, user_id, created_at, deleted_at`

func scanFile(row pgx.Row) (*File, error) {
	var f File
	err := row.Scan(&f.ID, &f.Name, &f.ContentType, &f.Path, &f.URL, &f.AppID, &f.UserID, &f.CreatedAt, &f.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// InsertFile persists a file record after the client completed its upload.
func (p *Postgres) InsertFile(ctx context.Context, f File) (*File, error) {
	row := p.pool.QueryRow(ctx,
		`INSERT INTO files (id, name, content_type, path, url, app_id, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+fileColumns,
		f.ID, f.Name, f.ContentType, f.Path, f.URL, f.AppID, f.UserID,
	)
	return scanFile(row)
}

// ListFilesByApp returns a page of the app's non-deleted files, newest
// created first.
func (p *Postgres) ListFilesByApp(ctx context.Context, appID string, limit, offset int) ([]File, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+fileColumns+` FROM files
		 WHERE app_id = $1 AND deleted_at IS NULL
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		appID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.Name, &f.ContentType, &f.Path, &f.URL, &f.AppID, &f.UserID, &f.CreatedAt, &f.DeletedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// CountFilesByApp counts the app's non-deleted files.
func (p *Postgres) CountFilesByApp(ctx context.Context, appID string) (int64, error) {
	var n int64
	err := p.pool.QueryRow(ctx,
		`SELECT count(*) FROM files WHERE app_id = $1 AND deleted_at IS NULL`,
		appID,
	).Scan(&n)
	return n, err
}

// FindFileInApp returns the non-deleted file with the given id belonging
// to the given app.
func (p *Postgres) FindFileInApp(ctx context.Context, fileID, appID string) (*File, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+fileColumns+` FROM files
		 WHERE id = $1 AND app_id = $2 AND deleted_at IS NULL`,
		fileID, appID,
	)
	return scanFile(row)
}

// SoftDeleteFile marks the file deleted and returns the updated row.
// Already-deleted rows are not matched, which keeps concurrent deletes
// harmless: the loser of the race gets ErrNotFound.
func (p *Postgres) SoftDeleteFile(ctx context.Context, fileID string) (*File, error) {
	row := p.pool.QueryRow(ctx,
		`UPDATE files SET deleted_at = now()
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING `+fileColumns,
		fileID,
	)
	return scanFile(row)
}
