// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (token store, transport) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures both binaries (afyactl, portald) are Twelve-Factor compliant by
storing config in the env.
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// # Store Backends

const (
	// StoreBackendFile persists the session to an encrypted file on disk.
	StoreBackendFile = "file"

	// StoreBackendRedis persists the session to Redis, for shared-terminal
	// deployments where several portal replicas serve the same operator.
	StoreBackendRedis = "redis"
)

// # Configuration Schema

// Config holds all runtime configuration for the AfyaCare client binaries.
type Config struct {

	// Remote clinic CMS API, e.g. "http://127.0.0.1:8000/api/"
	APIBaseURL string `env:"API_BASE_URL,required"`

	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG"       envDefault:"false"`

	// Session persistence
	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"`

	// StorePath is the encrypted session file location. Empty means a
	// per-user default under the OS config directory.
	StorePath string `env:"STORE_PATH"`

	// StoreSecret seals tokens at rest. Required for the file backend.
	StoreSecret string `env:"STORE_SECRET"`

	// Key-Value Store (Redis), required when STORE_BACKEND=redis
	RedisURL string `env:"REDIS_URL"`

	// Portal server
	PortalPort string `env:"PORTAL_PORT" envDefault:"3000"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// Cross-field constraints that struct tags cannot express.
	switch cfg.StoreBackend {
	case StoreBackendFile:
		if cfg.StoreSecret == "" {
			return nil, fmt.Errorf("config: STORE_SECRET is required for the file store backend")
		}
	case StoreBackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("config: REDIS_URL is required for the redis store backend")
		}
	default:
		return nil, fmt.Errorf("config: unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

// IsDevelopment reports whether the client is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the client is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
