package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies all pending SQL migrations from the given filesystem
// (typically an embed.FS) against the pool's database.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, migrationsTable string, log *slog.Logger) error {
	// goose speaks database/sql; stdlib.OpenDBFromPool bridges the pgx
	// pool without owning the underlying connections, so the pool must
	// not be closed through the returned *sql.DB.
	sqlDB := stdlib.OpenDBFromPool(pool)

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLogger{log})
	goose.SetTableName(migrationsTable)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}

	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g *gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

func (g *gooseLogger) Fatalf(format string, args ...any) {
	// Error level only; goose propagates the failure as a return value
	// and os.Exit here would skip shutdown hooks.
	g.log.Error(fmt.Sprintf(format, args...))
}
