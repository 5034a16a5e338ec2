// Copyright (c) 2026 Rootline. All rights reserved.
// Author: pham.ducminh.dev@gmail.com

// Command api is the entry point for the Rootline HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phamducminh/rootline/internal/api"
	"github.com/phamducminh/rootline/internal/core/event"
	"github.com/phamducminh/rootline/internal/core/media"
	"github.com/phamducminh/rootline/internal/core/person"
	"github.com/phamducminh/rootline/internal/core/relationship"
	"github.com/phamducminh/rootline/internal/core/source"
	"github.com/phamducminh/rootline/internal/core/tree"
	"github.com/phamducminh/rootline/internal/platform/config"
	"github.com/phamducminh/rootline/internal/platform/constants"
	"github.com/phamducminh/rootline/internal/platform/migration"
	pgstore "github.com/phamducminh/rootline/internal/platform/postgres"
	redisstore "github.com/phamducminh/rootline/internal/platform/redis"
	"github.com/phamducminh/rootline/internal/platform/sec"
	"github.com/phamducminh/rootline/internal/revision"
	"github.com/phamducminh/rootline/internal/users/account"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "rootline"))
	slog.SetDefault(log)

	log.Info("[Rootline] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "rootline"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Service ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	// The revision repository is shared: every entity store appends ledger
	// rows inside its own mutation transaction.
	revisionRepository := revision.NewPostgresRepository(pool)
	revisionService := revision.NewService(revisionRepository, log)

	accountRepository := account.NewPostgresRepository(pool)
	sessionRepository := account.NewRedisSessionRepository(rdb)
	accountService := account.NewService(accountRepository, sessionRepository, jwtSvc, log)

	personRepository := person.NewPostgresRepository(pool, revisionRepository)
	personService := person.NewService(personRepository, revisionRepository, log)

	relationshipRepository := relationship.NewPostgresRepository(pool, revisionRepository)
	relationshipService := relationship.NewService(relationshipRepository, log)

	eventRepository := event.NewPostgresRepository(pool, revisionRepository)
	eventService := event.NewService(eventRepository, log)

	mediaRepository := media.NewPostgresRepository(pool, revisionRepository)
	mediaService := media.NewService(mediaRepository, log)

	sourceRepository := source.NewPostgresRepository(pool, revisionRepository)
	sourceService := source.NewService(sourceRepository, log)

	treeRepository := tree.NewPostgresRepository(pool)
	treeService := tree.NewService(treeRepository, log)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Auth:         account.NewHandler(accountService),
		Person:       person.NewHandler(personService),
		Relationship: relationship.NewHandler(relationshipService),
		Event:        event.NewHandler(eventService),
		Media:        media.NewHandler(mediaService),
		Source:       source.NewHandler(sourceService),
		Revision:     revision.NewHandler(revisionService),
		Tree:         tree.NewHandler(treeService),
	}

	// Long-lived context for background middleware (rate limiter cleanup).
	// Canceled when main returns, after the graceful shutdown below.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	server := api.NewServer(appCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
