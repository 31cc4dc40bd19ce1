// Package config loads the server configuration from environment
// variables. One flat struct, parsed once at startup; anything invalid
// fails the boot instead of limping along.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"

	"github.com/dmitrymomot/uploadhub/pkg/db"
	"github.com/dmitrymomot/uploadhub/pkg/logger"
	"github.com/dmitrymomot/uploadhub/pkg/storage"
)

// Server holds the HTTP listener settings.
type Server struct {
	Addr            string        `env:"SERVER_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Config aggregates every component's settings.
type Config struct {
	Server  Server
	DB      db.Config
	Sentry  logger.SentryConfig
	Storage storage.Config

	// TokenTTL bounds the lifetime of issued signed tokens.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

// Load parses the full configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	for _, target := range []any{&cfg, &cfg.Server, &cfg.DB, &cfg.Sentry, &cfg.Storage} {
		if err := env.Parse(target); err != nil {
			return Config{}, fmt.Errorf("parse environment: %w", err)
		}
	}
	return cfg, nil
}
