// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ivanlelis-27/amesco-plus-be/internal/auth"
	"github.com/ivanlelis-27/amesco-plus-be/internal/auth/postgres"
	"github.com/ivanlelis-27/amesco-plus-be/internal/config"
	"github.com/ivanlelis-27/amesco-plus-be/internal/httpapi"
	"github.com/ivanlelis-27/amesco-plus-be/internal/mail"
	"github.com/ivanlelis-27/amesco-plus-be/internal/observability"
	"github.com/ivanlelis-27/amesco-plus-be/internal/ratelimit"
	"github.com/ivanlelis-27/amesco-plus-be/internal/store"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// DatabaseFactory opens the connection pool.
	// Default: store.OpenPool
	DatabaseFactory func(ctx context.Context, url string) (Database, error)

	// MigratorFactory creates a schema migrator.
	// Default: store.NewMigrator
	MigratorFactory func(url string) (AutoMigrator, error)

	// RedisFactory connects to the throttle store.
	// Default: ratelimit.OpenClient
	RedisFactory func(ctx context.Context, opts ratelimit.ClientOptions) (RedisClient, error)

	// MailerFactory creates the outgoing mail sender.
	// Default: newMailer
	MailerFactory func(cfg config.SMTPConfig, logger *slog.Logger) (auth.EmailSender, error)

	// TracingSetup installs the tracer provider.
	// Default: observability.SetupTracing
	TracingSetup func(ctx context.Context, cfg observability.TracingConfig) (observability.ShutdownFunc, error)

	// HTTPServerFactory creates the API server.
	// Default: httpapi.NewServer
	HTTPServerFactory func(addr string, handler http.Handler, logger *slog.Logger) LifecycleServer

	// ObservabilityServerFactory creates the metrics and health server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer
}

// Database is the subset of *pgxpool.Pool the serve command uses.
type Database interface {
	postgres.DB
	Ping(ctx context.Context) error
	Close()
}

// AutoMigrator wraps the store.Migrator methods used at startup.
type AutoMigrator interface {
	Up() error
	Close() error
}

// RedisClient wraps the *redis.Client methods the throttle needs.
type RedisClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	ExpireNX(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Close() error
}

// LifecycleServer is a server that starts in the background and stops
// gracefully.
type LifecycleServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	LifecycleServer
	Metrics() *observability.Metrics
}

// withDefaults returns a copy of d with nil fields set to the production
// implementations.
func (d *ServeDeps) withDefaults() *ServeDeps {
	out := ServeDeps{}
	if d != nil {
		out = *d
	}
	if out.DatabaseFactory == nil {
		out.DatabaseFactory = func(ctx context.Context, url string) (Database, error) {
			return store.OpenPool(ctx, url, store.DefaultPoolOptions())
		}
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(url string) (AutoMigrator, error) {
			return store.NewMigrator(url)
		}
	}
	if out.RedisFactory == nil {
		out.RedisFactory = func(ctx context.Context, opts ratelimit.ClientOptions) (RedisClient, error) {
			return ratelimit.OpenClient(ctx, opts)
		}
	}
	if out.MailerFactory == nil {
		out.MailerFactory = newMailer
	}
	if out.TracingSetup == nil {
		out.TracingSetup = observability.SetupTracing
	}
	if out.HTTPServerFactory == nil {
		out.HTTPServerFactory = func(addr string, handler http.Handler, logger *slog.Logger) LifecycleServer {
			return httpapi.NewServer(addr, handler, logger)
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, rc observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, rc)
		}
	}
	return &out
}

// newMailer sends through SMTP when a host is configured and logs otherwise.
func newMailer(cfg config.SMTPConfig, logger *slog.Logger) (auth.EmailSender, error) {
	if cfg.Host == "" {
		logger.Warn("smtp host not configured, outgoing mail will only be logged")
		return mail.NewLogSender(logger), nil
	}
	return mail.NewSMTPSender(mail.SMTPConfig{
		Host:        cfg.Host,
		Port:        cfg.Port,
		Username:    cfg.Username,
		Password:    cfg.Password,
		SenderName:  cfg.SenderName,
		SenderEmail: cfg.SenderEmail,
	})
}
