// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

/*
Package transport implements the authenticated HTTP client for the clinic API.

Every remote call in the AfyaCare client funnels through [Client], which makes
authentication invisible to callers: it attaches the bearer token, recovers
from expiry by rotating the access token through the refresh endpoint, and
retries the original request exactly once. Callers see only their payload or a
terminal error.

# Recovery Pipeline

 1. Egress rate limit (token bucket).
 2. Proactive refresh when the access token's exp claim is already past.
 3. Request with bearer + correlation ID.
 4. On 401: deduplicated refresh, persist the new token, retry once.
 5. On refresh failure: total session teardown + expiry notification.

# Concurrency

Safe for concurrent use. Concurrent 401s collapse into a single refresh call
via singleflight; losers reuse the winner's token.
*/
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/afyacare/clinic-go/internal/platform/apperr"
	"github.com/afyacare/clinic-go/internal/platform/constants"
	"github.com/afyacare/clinic-go/internal/platform/sec"
	"github.com/afyacare/clinic-go/internal/tokenstore"
)

// refreshKey is the singleflight key: one logical refresh per client.
const refreshKey = "token-refresh"

// Config carries the dependencies for a [Client].
type Config struct {
	// BaseURL is the clinic API root, e.g. "https://cms.afyacare.health/api".
	BaseURL string

	// Store persists the token pair between calls.
	Store tokenstore.Store

	// Logger receives transport-level events. Required.
	Logger *slog.Logger

	// HTTPClient overrides the underlying client. Defaults to a client with
	// the standard request timeout.
	HTTPClient *http.Client

	// OnSessionExpired is invoked (once per teardown) after the refresh token
	// itself is rejected and the store has been cleared. The session layer
	// uses it to flip its state machine; the portal redirects to login.
	OnSessionExpired func(context.Context)

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Client is the authenticated HTTP client for the clinic API.
type Client struct {
	baseURL          string
	store            tokenstore.Store
	httpClient       *http.Client
	logger           *slog.Logger
	limiter          *rate.Limiter
	refreshGroup     singleflight.Group
	onSessionExpired func(context.Context)
	now              func() time.Time
}

// New creates a [Client] from cfg, applying defaults for optional fields.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("transport: base URL is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("transport: token store is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("transport: logger is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.DefaultRequestTimeout}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		baseURL:          strings.TrimRight(cfg.BaseURL, "/") + "/",
		store:            cfg.Store,
		httpClient:       httpClient,
		logger:           cfg.Logger,
		limiter:          rate.NewLimiter(rate.Limit(constants.DefaultEgressRPS), constants.DefaultEgressBurst),
		onSessionExpired: cfg.OnSessionExpired,
		now:              now,
	}, nil
}

// # Typed Helpers

/*
GetJSON performs an authenticated GET and decodes the JSON response into out.

Parameters:
  - context: context.Context
  - path: string — endpoint path relative to the base URL
  - out: interface{} — decode target, may be nil to discard the body

Returns:
  - error: *apperr.AppError on any failure
*/
func (client *Client) GetJSON(context context.Context, path string, out interface{}) error {
	return client.do(context, http.MethodGet, path, nil, out, true)
}

// PostJSON performs an authenticated POST with a JSON body.
func (client *Client) PostJSON(context context.Context, path string, body, out interface{}) error {
	return client.do(context, http.MethodPost, path, body, out, true)
}

// PutJSON performs an authenticated PUT with a JSON body.
func (client *Client) PutJSON(context context.Context, path string, body, out interface{}) error {
	return client.do(context, http.MethodPut, path, body, out, true)
}

// PatchJSON performs an authenticated PATCH with a JSON body.
func (client *Client) PatchJSON(context context.Context, path string, body, out interface{}) error {
	return client.do(context, http.MethodPatch, path, body, out, true)
}

// Delete performs an authenticated DELETE.
func (client *Client) Delete(context context.Context, path string) error {
	return client.do(context, http.MethodDelete, path, nil, nil, true)
}

// PostJSONBare performs an unauthenticated POST: no bearer token is attached
// and a 401 is returned as-is instead of triggering a refresh. Used for the
// login and refresh endpoints themselves.
func (client *Client) PostJSONBare(context context.Context, path string, body, out interface{}) error {
	return client.do(context, http.MethodPost, path, body, out, false)
}

// # Request Pipeline

// do runs the full request pipeline described in the package documentation.
func (client *Client) do(ctx context.Context, method, path string, body, out interface{}, authenticated bool) error {
	if err := client.limiter.Wait(ctx); err != nil {
		return apperr.Unreachable(fmt.Errorf("transport: rate limiter aborted: %w", err))
	}

	// The body is marshaled once up front so the 401 retry can resend it.
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperr.Internal(fmt.Errorf("transport: failed to encode request body: %w", err))
		}
		payload = encoded
	}

	token := ""
	if authenticated {
		token = client.currentAccessToken(ctx)

		// Proactive rotation: a token already past its exp claim would only
		// bounce off the server with a 401, so refresh before sending.
		if token != "" && sec.Expired(token, client.now()) {
			if refreshed, err := client.refreshAccessToken(ctx); err == nil {
				token = refreshed
			}
			// A failed proactive refresh is not terminal here: the request
			// goes out anyway and the 401 path below decides.
		}
	}

	status, responseBody, err := client.send(ctx, method, path, payload, token)
	if err != nil {
		return err
	}

	// One retry after a successful refresh, never more. A second 401 means
	// the new token is also bad, which is a server problem we surface as-is.
	if status == http.StatusUnauthorized && authenticated {
		refreshed, refreshErr := client.refreshAccessToken(ctx)
		if refreshErr != nil {
			return client.teardownSession(ctx, refreshErr)
		}

		status, responseBody, err = client.send(ctx, method, path, payload, refreshed)
		if err != nil {
			return err
		}
	}

	if status < 200 || status > 299 {
		return apperr.FromStatus(status, remoteDetail(responseBody))
	}

	if out != nil && len(responseBody) > 0 {
		if err := json.Unmarshal(responseBody, out); err != nil {
			return apperr.Internal(fmt.Errorf("transport: failed to decode response: %w", err))
		}
	}

	return nil
}

// send performs one HTTP round trip and slurps the response body.
func (client *Client) send(ctx context.Context, method, path string, payload []byte, token string) (int, []byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, bodyReader)
	if err != nil {
		return 0, nil, apperr.Internal(fmt.Errorf("transport: failed to build request: %w", err))
	}

	request.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	request.Header.Set(constants.HeaderXRequestID, newRequestID())
	if token != "" {
		request.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+token)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		client.logger.WarnContext(ctx, "clinic_api_unreachable",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return 0, nil, apperr.Unreachable(err)
	}
	defer func() { _ = response.Body.Close() }()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return 0, nil, apperr.Unreachable(fmt.Errorf("transport: failed to read response: %w", err))
	}

	return response.StatusCode, responseBody, nil
}

// # Token Rotation

// refreshResponse is the refresh endpoint's payload.
type refreshResponse struct {
	Access string `json:"access"`
}

/*
refreshAccessToken rotates the access token through the refresh endpoint.

Concurrent callers are collapsed into one network call: the first caller
performs the rotation, the rest block and receive the same new token. The new
token is persisted before anyone proceeds, so every retry observes it.

Returns:
  - string: The new access token
  - error: Missing refresh token or remote rejection — both terminal
*/
func (client *Client) refreshAccessToken(ctx context.Context) (string, error) {
	result, err, shared := client.refreshGroup.Do(refreshKey, func() (interface{}, error) {
		refreshToken, err := client.store.Get(ctx, constants.StoreKeyRefreshToken)
		if err != nil {
			return nil, fmt.Errorf("transport: no refresh token available: %w", err)
		}

		refreshCtx, cancel := context.WithTimeout(ctx, constants.DefaultRefreshTimeout)
		defer cancel()

		var refreshed refreshResponse
		requestBody := map[string]string{"refresh": refreshToken}
		if err := client.PostJSONBare(refreshCtx, constants.EndpointTokenRefresh, requestBody, &refreshed); err != nil {
			return nil, fmt.Errorf("transport: token refresh rejected: %w", err)
		}
		if refreshed.Access == "" {
			return nil, fmt.Errorf("transport: token refresh returned empty access token")
		}

		if err := client.store.Set(ctx, constants.StoreKeyAccessToken, refreshed.Access); err != nil {
			return nil, fmt.Errorf("transport: failed to persist refreshed token: %w", err)
		}

		client.logger.InfoContext(ctx, "access_token_rotated")
		return refreshed.Access, nil
	})
	if err != nil {
		return "", err
	}

	if shared {
		client.logger.DebugContext(ctx, "token_refresh_deduplicated")
	}

	return result.(string), nil
}

// teardownSession wipes all persisted credentials and notifies the session
// layer. Called exactly when the refresh path fails, which is the one signal
// that the session cannot be recovered locally.
func (client *Client) teardownSession(ctx context.Context, cause error) error {
	if err := client.store.ClearAll(ctx); err != nil {
		client.logger.ErrorContext(ctx, "session_teardown_clear_failed",
			slog.String("error", err.Error()),
		)
	}

	client.logger.InfoContext(ctx, "session_expired_teardown")

	if client.onSessionExpired != nil {
		client.onSessionExpired(ctx)
	}

	return apperr.SessionExpired(cause)
}

// # Helpers

// currentAccessToken reads the persisted access token; absence is "".
func (client *Client) currentAccessToken(ctx context.Context) string {
	token, err := client.store.Get(ctx, constants.StoreKeyAccessToken)
	if err != nil {
		return ""
	}
	return token
}

// newRequestID mints a time-sortable correlation ID for outbound requests.
func newRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.New().String()
}

// remoteDetailEnvelope matches the error shapes the clinic CMS emits.
type remoteDetailEnvelope struct {
	Detail  string `json:"detail"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// remoteDetail extracts the most specific human-readable message from an
// error response body, or "" when none is present.
func remoteDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var envelope remoteDetailEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}

	switch {
	case envelope.Detail != "":
		return envelope.Detail
	case envelope.Error != "":
		return envelope.Error
	default:
		return envelope.Message
	}
}
