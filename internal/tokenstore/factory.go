// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

package tokenstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/afyacare/clinic-go/internal/platform/config"
	redisstore "github.com/afyacare/clinic-go/internal/platform/redis"
)

// defaultSessionLifetime bounds how long an abandoned shared-terminal session
// survives in Redis. File sessions have no lifetime; the refresh token's own
// expiry governs them.
const defaultSessionLifetime = 0

// FromConfig builds the configured store backend.
//
// The returned cleanup function releases backend resources (the Redis
// connection pool); for the file backend it is a no-op. Both binaries call
// this once at startup.
func FromConfig(context context.Context, cfg *config.Config, logger *slog.Logger) (Store, func(), error) {
	switch cfg.StoreBackend {

	case config.StoreBackendFile:
		path := cfg.StorePath
		if path == "" {
			defaultPath, err := DefaultPath()
			if err != nil {
				return nil, nil, err
			}
			path = defaultPath
		}

		store, err := NewFileStore(path, cfg.StoreSecret)
		if err != nil {
			return nil, nil, err
		}

		logger.Info("session store ready",
			slog.String("backend", config.StoreBackendFile),
			slog.String("path", path),
		)
		return store, func() {}, nil

	case config.StoreBackendRedis:
		client, err := redisstore.NewClient(context, cfg.RedisURL, logger)
		if err != nil {
			return nil, nil, err
		}

		cleanup := func() {
			if err := client.Close(); err != nil {
				logger.Error("redis close error", slog.Any("error", err))
			}
		}

		logger.Info("session store ready",
			slog.String("backend", config.StoreBackendRedis),
		)
		return NewRedisStore(client, "default", defaultSessionLifetime), cleanup, nil

	default:
		return nil, nil, fmt.Errorf("tokenstore: unknown backend %q", cfg.StoreBackend)
	}
}
