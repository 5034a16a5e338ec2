// Copyright (c) 2026 Rootline. All rights reserved.
// Author: pham.ducminh.dev@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/phamducminh/rootline/internal/core/event"
	"github.com/phamducminh/rootline/internal/core/media"
	"github.com/phamducminh/rootline/internal/core/person"
	"github.com/phamducminh/rootline/internal/core/relationship"
	"github.com/phamducminh/rootline/internal/core/source"
	"github.com/phamducminh/rootline/internal/core/tree"
	"github.com/phamducminh/rootline/internal/platform/config"
	"github.com/phamducminh/rootline/internal/platform/constants"
	"github.com/phamducminh/rootline/internal/platform/middleware"
	"github.com/phamducminh/rootline/internal/revision"
	"github.com/phamducminh/rootline/internal/users/account"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles account registration, login, and session rotation.
	Auth *account.Handler

	// Person manages the people records of an account.
	Person *person.Handler

	// Relationship manages graph edges and their invariants.
	Relationship *relationship.Handler

	// Event manages life events and their participants.
	Event *event.Handler

	// Media manages media records and generic entity links.
	Media *media.Handler

	// Source manages source citations and generic entity links.
	Source *source.Handler

	// Revision serves the append-only ledger and point-in-time replay.
	Revision *revision.Handler

	// Tree serves lineage walks and full-tree exports.
	Tree *tree.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix. Everything
	// except /auth requires an authenticated account: the account id from the
	// verified claims is the tenant boundary for every record operation.
	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", h.Auth.RegisterRoutes)

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth)

			protected.Route("/people", h.Person.RegisterRoutes)
			protected.Route("/relationships", h.Relationship.RegisterRoutes)
			protected.Route("/events", h.Event.RegisterRoutes)
			protected.Route("/media", h.Media.RegisterRoutes)
			protected.Route("/sources", h.Source.RegisterRoutes)
			protected.Route("/revisions", h.Revision.RegisterRoutes)
			protected.Route("/tree", h.Tree.RegisterTreeRoutes)
			protected.Route("/export", h.Tree.RegisterExportRoutes)
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
