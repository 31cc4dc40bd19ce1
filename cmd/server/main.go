package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/uploadhub/internal/auth"
	"github.com/dmitrymomot/uploadhub/internal/config"
	"github.com/dmitrymomot/uploadhub/internal/handler"
	"github.com/dmitrymomot/uploadhub/internal/service"
	"github.com/dmitrymomot/uploadhub/internal/store"
	"github.com/dmitrymomot/uploadhub/pkg/db"
	"github.com/dmitrymomot/uploadhub/pkg/health"
	"github.com/dmitrymomot/uploadhub/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewWithSentry(cfg.Sentry, handler.RequestIDExtractor())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, store.Migrations(), cfg.DB.MigrationsTable, log); err != nil {
		return err
	}

	st := store.NewPostgres(pool)

	files := service.NewFileService(st)
	uploads := service.NewUploadService(st, cfg.Storage)
	apps := service.NewAppService(st)
	configs := service.NewStorageConfigService(st)
	keys := service.NewAPIKeyService(st, cfg.TokenTTL)

	router := handler.NewRouter(handler.Deps{
		Log:       log,
		Resolver:  auth.NewResolver(st),
		Sessions:  auth.NewSessionAuth(st),
		Open:      handler.NewOpen(files, uploads, log),
		Dashboard: handler.NewDashboard(apps, configs, keys, files, uploads, log),
		Token:     handler.NewToken(keys, log),
		ReadyChecks: health.Checks{
			"postgres": db.Healthcheck(pool),
		},
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "server listening", slog.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := db.Shutdown(pool)(shutdownCtx); err != nil {
		return err
	}

	log.Info("shutdown complete")
	return nil
}
