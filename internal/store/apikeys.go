package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const apiKeyColumns = `id, name, secret, client_id, app_id, created_at, deleted_at`

func scanAPIKey(row pgx.Row) (*APIKey, error) {
	var k APIKey
	err := row.Scan(&k.ID, &k.Name, &k.Secret, &k.ClientID, &k.AppID, &k.CreatedAt, &k.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// CreateAPIKey inserts a new credential bound to an app.
func (p *Postgres) CreateAPIKey(ctx context.Context, key APIKey) (*APIKey, error) {
	row := p.pool.QueryRow(ctx,
		`INSERT INTO api_keys (name, secret, client_id, app_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+apiKeyColumns,
		key.Name, key.Secret, key.ClientID, key.AppID,
	)
	return scanAPIKey(row)
}

// FindAPIKeyBySecret returns the non-deleted credential whose static
// secret equals the given value.
func (p *Postgres) FindAPIKeyBySecret(ctx context.Context, secret string) (*APIKey, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys
		 WHERE secret = $1 AND deleted_at IS NULL`,
		secret,
	)
	return scanAPIKey(row)
}

// FindAPIKeyByClientID returns the non-deleted credential with the given
// public client identifier.
func (p *Postgres) FindAPIKeyByClientID(ctx context.Context, clientID string) (*APIKey, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys
		 WHERE client_id = $1 AND deleted_at IS NULL`,
		clientID,
	)
	return scanAPIKey(row)
}

// FindAPIKey returns the non-deleted credential with the given id.
func (p *Postgres) FindAPIKey(ctx context.Context, id int64) (*APIKey, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys
		 WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	return scanAPIKey(row)
}

// ListAPIKeysByApp returns the app's non-deleted credentials, newest first.
func (p *Postgres) ListAPIKeysByApp(ctx context.Context, appID string) ([]APIKey, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys
		 WHERE app_id = $1 AND deleted_at IS NULL
		 ORDER BY created_at DESC`,
		appID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		var k APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.Secret, &k.ClientID, &k.AppID, &k.CreatedAt, &k.DeletedAt); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// SoftDeleteAPIKey marks the credential deleted.
func (p *Postgres) SoftDeleteAPIKey(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`,
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
