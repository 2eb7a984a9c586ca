// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

/*
Package constants provides centralized, immutable values for the entire client.

It defines default timeouts, remote endpoint paths, storage keys, and
cross-cutting header names shared between the transport, session, and portal
layers.

Categories:

  - Remote API: Relative endpoint paths consumed by the session core.
  - Storage: The three logical keys persisted by the token store.
  - Timing: HTTP client and portal server timeouts.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the session logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "afyacare-client"
	AppVersion = "0.1.0-dev"
)

// # Remote API Endpoints

// Relative to the configured API base URL. Trailing slashes are significant:
// the clinic CMS redirects slash-less paths, which would drop POST bodies.
const (
	EndpointToken        = "auth/token/"
	EndpointTokenRefresh = "auth/token/refresh/"
	EndpointMe           = "me/"

	EndpointUsers        = "users/"
	EndpointPatients     = "patients/"
	EndpointAppointments = "appointments/"
	EndpointInvoices     = "billing/invoices/"
)

// # Persisted Session Keys

// The three logical keys of the token store. They are always written and
// cleared as a unit; no other component may touch persistence directly.
const (
	StoreKeyAccessToken  = "access_token"
	StoreKeyRefreshToken = "refresh_token"
	StoreKeyUser         = "user"
)

// # HTTP Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderContentType   = "Content-Type"

	ContentTypeJSON = "application/json"

	// BearerPrefix is prepended to the access token in the Authorization header.
	BearerPrefix = "Bearer "
)

// # Client Timing

const (
	// DefaultRequestTimeout bounds a single round trip to the clinic API.
	DefaultRequestTimeout = 15 * time.Second

	// DefaultRefreshTimeout bounds the token refresh call. Kept tighter than
	// the request timeout so a dead auth endpoint fails fast.
	DefaultRefreshTimeout = 10 * time.Second
)

// # Egress Rate Limiting

const (
	// DefaultEgressRPS is the sustained requests per second toward the API.
	DefaultEgressRPS = 20.0

	// DefaultEgressBurst is the maximum burst allowed by the egress limiter.
	DefaultEgressBurst = 40
)

// # Portal Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire portal request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Redis Prefixes (Shared-Terminal Session Store)

const (
	RedisPrefixSession = "afyacare:session:"
)

// # JSON Field Identifiers

const (
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
)
