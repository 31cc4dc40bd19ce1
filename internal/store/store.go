// Package store persists the service's relational data: users, sessions,
// tenant apps, API credentials, storage configurations and file records.
//
// All deletions are soft: rows gain a deleted_at timestamp and every read
// filters them out. Queries are simple point reads and writes; cross-row
// coordination is left to PostgreSQL's transactional guarantees.
package store

import (
	"embed"
	"errors"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations returns the embedded SQL migrations for pkg/db's migrator.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		// Unreachable unless the embed directive and directory drift apart.
		panic(err)
	}
	return sub
}

// ErrNotFound is returned when a query matches no non-deleted row.
var ErrNotFound = errors.New("store: not found")

// User is a dashboard account. Accounts are provisioned by the login
// system, which this service treats as an opaque identity provider; the
// store only reads them.
type User struct {
	ID    string
	Name  string
	Email string
}

// Session is an opaque bearer session minted by the login system.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// App is a tenant: a logical namespace owning files and credentials.
type App struct {
	ID          string
	Name        string
	Description string
	UserID      string
	StorageID   *int64
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

// APIKey is an open-API credential bound to exactly one app. Secret is
// the static key; ClientID is the public identifier named by signed
// tokens, whose HMAC key is this row's Secret.
type APIKey struct {
	ID        int64
	Name      string
	Secret    string
	ClientID  string
	AppID     string
	CreatedAt time.Time
	DeletedAt *time.Time
}

// StorageConfig is a named bundle of S3-compatible connection parameters
// owned by a user and shared by any number of apps.
type StorageConfig struct {
	ID              int64
	Name            string
	UserID          string
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	CreatedAt       time.Time
	DeletedAt       *time.Time
}

// File is metadata for an object a client uploaded directly to storage.
type File struct {
	ID          string
	Name        string
	ContentType string
	Path        string
	URL         string
	AppID       string
	UserID      string
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

// Postgres implements the repositories over a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store backed by the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}
