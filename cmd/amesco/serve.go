// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/ivanlelis-27/amesco-plus-be/internal/auth"
	"github.com/ivanlelis-27/amesco-plus-be/internal/auth/postgres"
	"github.com/ivanlelis-27/amesco-plus-be/internal/config"
	"github.com/ivanlelis-27/amesco-plus-be/internal/httpapi"
	"github.com/ivanlelis-27/amesco-plus-be/internal/logging"
	"github.com/ivanlelis-27/amesco-plus-be/internal/observability"
	"github.com/ivanlelis-27/amesco-plus-be/internal/ratelimit"
	"github.com/ivanlelis-27/amesco-plus-be/internal/token"
	"github.com/ivanlelis-27/amesco-plus-be/pkg/errutil"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API that handles member registration, login,
sessions and password recovery, plus the metrics and health listener.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.LoadOptions{Path: configFile, Flags: cmd.Flags()})
			if err != nil {
				return err
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}

	config.BindFlags(cmd.Flags())
	return cmd
}

// runServeWithDeps wires the service from cfg and serves until a signal
// arrives, ctx is cancelled or a server fails.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	deps = deps.withDefaults()
	logger := logging.SetDefault(serviceName, version, cfg.Log.Format, cfg.Log.Level)

	shutdownTracing, err := deps.TracingSetup(ctx, observability.TracingConfig{
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRate:  cfg.Tracing.SampleRate,
		ServiceName: serviceName,
		Version:     version,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			errutil.LogError(logger, "failed to flush traces", err)
		}
	}()

	if cfg.Migrate.Auto {
		if err := autoMigrate(deps, cfg.Database.URL, logger); err != nil {
			return err
		}
	}

	db, err := deps.DatabaseFactory(ctx, cfg.Database.URL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer db.Close()
	logger.Info("connected to database")

	mailer, err := deps.MailerFactory(cfg.SMTP, logger)
	if err != nil {
		return err
	}

	codec, err := token.NewHMACCodec([]byte(cfg.JWT.Secret), cfg.JWT.Issuer)
	if err != nil {
		return err
	}

	opts := []auth.Option{
		auth.WithLogger(logger),
		auth.WithTokenTTL(cfg.JWT.TTL),
	}
	if cfg.Redis.Addr != "" {
		client, err := deps.RedisFactory(ctx, ratelimit.ClientOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Debug("error closing redis client", "error", err)
			}
		}()
		opts = append(opts, auth.WithResetThrottle(ratelimit.NewThrottle(client, cfg.Reset.MaxAttempts, cfg.Reset.Window)))
		logger.Info("forgot-password throttling enabled",
			"max_attempts", cfg.Reset.MaxAttempts,
			"window", cfg.Reset.Window,
		)
	}

	svc, err := auth.NewService(auth.Dependencies{
		Users:       postgres.NewUserRepository(db),
		Memberships: postgres.NewMembershipRepository(db),
		Sessions:    postgres.NewSessionRepository(db),
		Points:      postgres.NewPointsLedger(db),
		Transactor:  postgres.NewTransactor(db),
		Hasher:      auth.NewPBKDF2Hasher(),
		Tokens:      codec,
		Mailer:      mailer,
	}, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopCtx := func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	}

	var metrics *observability.Metrics
	var obsServer ObservabilityServer
	if cfg.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, db.Ping)
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").With("addr", cfg.Metrics.Addr).Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		metrics = obsServer.Metrics()
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	router := httpapi.NewRouter(svc, httpapi.Options{
		Logger:      logger,
		Metrics:     metrics,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})
	apiServer := deps.HTTPServerFactory(cfg.HTTP.Addr, router, logger)
	apiErrChan, err := apiServer.Start()
	if err != nil {
		if obsServer != nil {
			sctx, scancel := stopCtx()
			defer scancel()
			if stopErr := obsServer.Stop(sctx); stopErr != nil {
				logger.Warn("failed to stop observability server during cleanup", "error", stopErr)
			}
		}
		return oops.Code("HTTP_START_FAILED").With("addr", cfg.HTTP.Addr).Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, apiErrChan, "http")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Amesco Plus API started")
	logger.Info("api ready", "addr", apiServer.Addr())

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	sctx, scancel := stopCtx()
	defer scancel()

	if err := apiServer.Stop(sctx); err != nil {
		logger.Warn("error stopping http server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(sctx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// autoMigrate applies pending migrations and always closes the migrator.
func autoMigrate(deps *ServeDeps, url string, logger *slog.Logger) (err error) {
	migrator, err := deps.MigratorFactory(url)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("failed to close migrator", "error", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "apply migrations").Wrap(err)
	}
	logger.Info("database migrations applied")
	return nil
}

// monitorServerErrors cancels ctx when a server reports an error. It exits
// when the channel closes or ctx is done.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
