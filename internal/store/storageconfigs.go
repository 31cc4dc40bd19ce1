package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const storageConfigColumns = `id, name, user_id, bucket, region, access_key_id, secret_access_key, endpoint, created_at, deleted_at`

func scanStorageConfig(row pgx.Row) (*StorageConfig, error) {
	var sc StorageConfig
	err := row.Scan(&sc.ID, &sc.Name, &sc.UserID, &sc.Bucket, &sc.Region,
		&sc.AccessKeyID, &sc.SecretAccessKey, &sc.Endpoint, &sc.CreatedAt, &sc.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// CreateStorageConfig inserts a new storage configuration for a user.
func (p *Postgres) CreateStorageConfig(ctx context.Context, sc StorageConfig) (*StorageConfig, error) {
	row := p.pool.QueryRow(ctx,
		`INSERT INTO storage_configs (name, user_id, bucket, region, access_key_id, secret_access_key, endpoint)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+storageConfigColumns,
		sc.Name, sc.UserID, sc.Bucket, sc.Region, sc.AccessKeyID, sc.SecretAccessKey, sc.Endpoint,
	)
	return scanStorageConfig(row)
}

// FindStorageConfigForUser returns the non-deleted config with the given
// id owned by the given user.
func (p *Postgres) FindStorageConfigForUser(ctx context.Context, id int64, userID string) (*StorageConfig, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+storageConfigColumns+` FROM storage_configs
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`,
		id, userID,
	)
	return scanStorageConfig(row)
}

// ListStorageConfigsByUser returns the user's non-deleted configs, newest
// first.
func (p *Postgres) ListStorageConfigsByUser(ctx context.Context, userID string) ([]StorageConfig, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+storageConfigColumns+` FROM storage_configs
		 WHERE user_id = $1 AND deleted_at IS NULL
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []StorageConfig
	for rows.Next() {
		var sc StorageConfig
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.UserID, &sc.Bucket, &sc.Region,
			&sc.AccessKeyID, &sc.SecretAccessKey, &sc.Endpoint, &sc.CreatedAt, &sc.DeletedAt); err != nil {
			return nil, err
		}
		configs = append(configs, sc)
	}
	return configs, rows.Err()
}

// UpdateStorageConfig replaces the name and connection parameters of a
// config, scoped to its owning user.
func (p *Postgres) UpdateStorageConfig(ctx context.Context, sc StorageConfig) (*StorageConfig, error) {
	row := p.pool.QueryRow(ctx,
		`UPDATE storage_configs
		 SET name = $3, bucket = $4, region = $5, access_key_id = $6, secret_access_key = $7, endpoint = $8
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		 RETURNING `+storageConfigColumns,
		sc.ID, sc.UserID, sc.Name, sc.Bucket, sc.Region, sc.AccessKeyID, sc.SecretAccessKey, sc.Endpoint,
	)
	return scanStorageConfig(row)
}

// CountAppsUsingStorage counts non-deleted apps referencing the config.
// A config cannot be deleted while this is non-zero.
func (p *Postgres) CountAppsUsingStorage(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := p.pool.QueryRow(ctx,
		`SELECT count(*) FROM apps WHERE storage_id = $1 AND deleted_at IS NULL`,
		id,
	).Scan(&n)
	return n, err
}

// SoftDeleteStorageConfig marks the config deleted, scoped to its owner.
func (p *Postgres) SoftDeleteStorageConfig(ctx context.Context, id int64, userID string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE storage_configs SET deleted_at = now()
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
