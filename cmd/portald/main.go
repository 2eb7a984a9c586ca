// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

// Command portald is the entry point for the AfyaCare clinic portal server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Build the session store backend (encrypted file or Redis).
//  4. Wire the session manager and clinic data layer.
//  5. Resume any persisted session.
//  6. Start the portal HTTP server with graceful shutdown.
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

	"github.com/common-nighthawk/go-figure"

	"github.com/afyacare/clinic-go/internal/clinic"
	"github.com/afyacare/clinic-go/internal/platform/config"
	"github.com/afyacare/clinic-go/internal/platform/constants"
	"github.com/afyacare/clinic-go/internal/portal"
	"github.com/afyacare/clinic-go/internal/session"
	"github.com/afyacare/clinic-go/internal/tokenstore"
)

func main() {
	figure.NewFigure("AfyaCare", "cybermedium", true).Print()

	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("portal_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.PortalPort),
		slog.String("store_backend", cfg.StoreBackend),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Session Store ──────────────────────────────────────────────────
	store, cleanup, err := tokenstore.FromConfig(startupCtx, cfg, log)
	must(log, err, "build session store")
	defer cleanup()

	// ── 4. Session Manager & Clinic Data ──────────────────────────────────
	sessions, err := session.NewManager(cfg.APIBaseURL, store, log)
	must(log, err, "wire session manager")

	records := clinic.NewService(sessions.Client())

	// ── 5. Session Resume ─────────────────────────────────────────────────
	// A portal restart should not log the operator out: rehydrate whatever
	// session the store still holds. Failure is not fatal — the portal
	// simply starts anonymous.
	if profile, err := sessions.Resume(startupCtx); err != nil {
		log.Warn("session_resume_failed", slog.Any("error", err))
	} else if profile != nil {
		log.Info("session_resumed", slog.String("username", profile.Username))
	}

	// ── 6. Portal Server ──────────────────────────────────────────────────
	checkStore := func(ctx context.Context) error {
		_, err := store.Get(ctx, constants.StoreKeyAccessToken)
		if errors.Is(err, tokenstore.ErrNotFound) {
			return nil
		}
		return err
	}

	handler := portal.NewHandler(sessions, records, checkStore, log)
	server := portal.NewServer(cfg, log, handler)

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
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
	log.Info("shutting down portal", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("portal stopped cleanly")
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
