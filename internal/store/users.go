package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// FindUser returns the user with the given id.
func (p *Postgres) FindUser(ctx context.Context, id string) (*User, error) {
	var u User
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, email FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindSession returns the session with the given bearer token. Expiry is
// checked by the caller; the row itself never changes after creation.
func (p *Postgres) FindSession(ctx context.Context, sessionToken string) (*Session, error) {
	var s Session
	err := p.pool.QueryRow(ctx,
		`SELECT token, user_id, expires_at FROM sessions WHERE token = $1`,
		sessionToken,
	).Scan(&s.Token, &s.UserID, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
