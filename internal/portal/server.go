// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

/*
Package portal wires the session core into a browsable web surface.

It reproduces the clinic front desk as a thin server: a login form, one
dashboard per role, and redirects that always land an operator on the page
their role owns. All patient data stays in the clinic CMS; the portal only
relays it over the authenticated transport.

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/portald are allowed to import net/http server primitives.
*/
package portal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/afyacare/clinic-go/internal/clinic"
	"github.com/afyacare/clinic-go/internal/platform/config"
	"github.com/afyacare/clinic-go/internal/platform/constants"
	"github.com/afyacare/clinic-go/internal/platform/middleware"
	"github.com/afyacare/clinic-go/internal/platform/sec"
	"github.com/afyacare/clinic-go/internal/routing"
	"github.com/afyacare/clinic-go/internal/session"
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

// Handler carries the portal's domain dependencies.
type Handler struct {
	sessions *session.Manager
	records  *clinic.Service
	log      *slog.Logger

	// checkStore pings the session store backend for the /ready probe.
	checkStore func(context.Context) error
}

// NewHandler constructs the portal handler set.
func NewHandler(sessions *session.Manager, records *clinic.Service, checkStore func(context.Context) error, log *slog.Logger) *Handler {
	return &Handler{
		sessions:   sessions,
		records:    records,
		checkStore: checkStore,
		log:        log,
	}
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all portal routes.
func NewServer(cfg *config.Config, log *slog.Logger, handler *Handler) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.PanicRecovery(log))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", handler.liveness)
	r.Get("/ready", handler.readiness)

	// # Session Surface
	r.Get("/", handler.root)
	r.Get(routing.LoginPath, handler.loginPage)
	r.Post(routing.LoginPath, handler.login)
	r.Post("/logout", handler.logout)

	// # Role Dashboards
	// One route per role, each gated to exactly its owner.
	for _, role := range sec.AllRoles() {
		role := role
		r.Group(func(gated chi.Router) {
			gated.Use(handler.guard(role))
			gated.Get(routing.HomeFor(role), handler.dashboard(role))
		})
	}

	// Any unrecognized path lands on the login page, mirroring the
	// catch-all of the operator-facing flow.
	r.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		http.Redirect(writer, request, routing.LoginPath, http.StatusFound)
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.PortalPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Router exposes the handler tree for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("portal starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
