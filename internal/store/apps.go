package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const appColumns = `id, name, description, user_id, storage_id, created_at, deleted_at`

func scanApp(row pgx.Row) (*App, error) {
	var a App
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.UserID, &a.StorageID, &a.CreatedAt, &a.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateApp inserts a new tenant app.
func (p *Postgres) CreateApp(ctx context.Context, app App) (*App, error) {
	row := p.pool.QueryRow(ctx,
		`INSERT INTO apps (id, name, description, user_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+appColumns,
		app.ID, app.Name, app.Description, app.UserID,
	)
	return scanApp(row)
}

// FindApp returns the non-deleted app with the given id.
func (p *Postgres) FindApp(ctx context.Context, id string) (*App, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+appColumns+` FROM apps WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	return scanApp(row)
}

// FindAppForUser returns the non-deleted app with the given id owned by
// the given user.
func (p *Postgres) FindAppForUser(ctx context.Context, id, userID string) (*App, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+appColumns+` FROM apps
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`,
		id, userID,
	)
	return scanApp(row)
}

// ListAppsByUser returns the user's non-deleted apps, newest first.
func (p *Postgres) ListAppsByUser(ctx context.Context, userID string) ([]App, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+appColumns+` FROM apps
		 WHERE user_id = $1 AND deleted_at IS NULL
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []App
	for rows.Next() {
		var a App
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.UserID, &a.StorageID, &a.CreatedAt, &a.DeletedAt); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// SetAppStorage updates the app's default storage reference. A nil
// storageID clears it.
func (p *Postgres) SetAppStorage(ctx context.Context, appID string, storageID *int64) (*App, error) {
	row := p.pool.QueryRow(ctx,
		`UPDATE apps SET storage_id = $2
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING `+appColumns,
		appID, storageID,
	)
	return scanApp(row)
}

// SoftDeleteApp marks the app deleted. Callers enforce the zero-files rule
// before calling.
func (p *Postgres) SoftDeleteApp(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE apps SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
