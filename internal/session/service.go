// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/afyacare/clinic-go/internal/platform/apperr"
	"github.com/afyacare/clinic-go/internal/platform/constants"
	"github.com/afyacare/clinic-go/internal/routing"
	"github.com/afyacare/clinic-go/internal/tokenstore"
	"github.com/afyacare/clinic-go/internal/transport"
)

// LoginFailedMessage is the operator-facing fallback when the clinic CMS
// rejects a login without a usable detail message.
const LoginFailedMessage = "Login failed. Check credentials or server connection."

// tokenPair is the login endpoint's response.
type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Manager drives the session state machine.
//
// It constructs its own [transport.Client] so the expiry callback is wired
// before the first request can fire; callers reach the clinic API through
// [Manager.Client].
//
// # Concurrency
//
// Safe for concurrent use. The mutex guards only the state snapshot, never a
// network call, so a slow login cannot block Current or a supervening Login.
type Manager struct {
	client *transport.Client
	store  tokenstore.Store
	logger *slog.Logger

	mu      sync.RWMutex
	state   State
	profile *Profile
}

// NewManager wires a session manager over the given store and API base URL.
func NewManager(baseURL string, store tokenstore.Store, logger *slog.Logger) (*Manager, error) {
	manager := &Manager{
		store:  store,
		logger: logger,
		state:  Anonymous,
	}

	client, err := transport.New(transport.Config{
		BaseURL:          baseURL,
		Store:            store,
		Logger:           logger,
		OnSessionExpired: manager.handleExpired,
	})
	if err != nil {
		return nil, err
	}
	manager.client = client

	return manager, nil
}

// Client exposes the authenticated API client for the data layers.
func (manager *Manager) Client() *transport.Client {
	return manager.client
}

// Current returns a snapshot of the session state and profile. The profile is
// nil unless the state is Authenticated.
func (manager *Manager) Current() (State, *Profile) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.state, manager.profile
}

// # Lifecycle Operations

/*
Login authenticates with the clinic CMS and loads the account profile.

Any previous session is wiped before the attempt, so a failed login never
leaves stale credentials behind, and a second concurrent Login simply
supersedes the first: the pair written last wins.

Parameters:
  - context: context.Context
  - username: string
  - password: string

Returns:
  - *Profile: The signed-in account with normalized role
  - string: The landing path for the account's role
  - error: *apperr.AppError — UNAUTHORIZED for credential failures,
    UNREACHABLE when the server cannot be contacted
*/
func (manager *Manager) Login(context context.Context, username, password string) (*Profile, string, error) {
	manager.transition(Authenticating, nil)

	// Stale credentials from a previous operator must never leak into the
	// new session, so the wipe happens before the attempt, not after.
	if err := manager.store.ClearAll(context); err != nil {
		manager.transition(Anonymous, nil)
		return nil, "", apperr.Internal(err)
	}

	credentials := map[string]string{"username": username, "password": password}
	var pair tokenPair
	if err := manager.client.PostJSONBare(context, constants.EndpointToken, credentials, &pair); err != nil {
		manager.transition(Anonymous, nil)
		return nil, "", loginError(err)
	}

	if err := manager.store.Set(context, constants.StoreKeyAccessToken, pair.Access); err != nil {
		return nil, "", manager.abortLogin(context, err)
	}
	if err := manager.store.Set(context, constants.StoreKeyRefreshToken, pair.Refresh); err != nil {
		return nil, "", manager.abortLogin(context, err)
	}

	profile, err := manager.fetchProfile(context)
	if err != nil {
		return nil, "", manager.abortLogin(context, err)
	}

	manager.transition(Authenticated, profile)
	manager.logger.InfoContext(context, "session_established",
		slog.String("username", profile.Username),
		slog.String("role", string(profile.Role)),
	)

	return profile, routing.HomeFor(profile.Role), nil
}

/*
Logout tears the session down. It is idempotent: logging out of an anonymous
session is a no-op, and a storage failure still leaves the in-memory state
Anonymous.

Parameters:
  - context: context.Context

Returns:
  - error: Storage failures during the wipe
*/
func (manager *Manager) Logout(context context.Context) error {
	manager.transition(LoggingOut, nil)

	err := manager.store.ClearAll(context)

	manager.transition(Anonymous, nil)
	manager.logger.InfoContext(context, "session_closed")

	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

/*
Resume rehydrates a persisted session after a process restart.

With no stored access token the session is simply Anonymous. With a token and
a stored profile the session resumes without touching the network. With a
token but no profile (interrupted login) the profile is re-fetched; the
transport layer transparently rotates an expired token during that fetch.

Parameters:
  - context: context.Context

Returns:
  - *Profile: The resumed account, or nil when no session exists
  - error: SESSION_EXPIRED when the stored tokens are no longer usable
*/
func (manager *Manager) Resume(context context.Context) (*Profile, error) {
	if _, err := manager.store.Get(context, constants.StoreKeyAccessToken); err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			manager.transition(Anonymous, nil)
			return nil, nil
		}
		return nil, apperr.Internal(err)
	}

	// Fast path: token and profile both survived the restart.
	if encoded, err := manager.store.Get(context, constants.StoreKeyUser); err == nil {
		profile, decodeErr := decodeProfile(encoded)
		if decodeErr == nil {
			manager.transition(Authenticated, profile)
			manager.logger.InfoContext(context, "session_resumed",
				slog.String("username", profile.Username),
			)
			return profile, nil
		}
		// A corrupt profile falls through to a fresh fetch.
		manager.logger.WarnContext(context, "stored_profile_corrupt",
			slog.String("error", decodeErr.Error()),
		)
	}

	profile, err := manager.fetchProfile(context)
	if err != nil {
		// The transport layer already cleared the store on expiry.
		manager.transition(Anonymous, nil)
		return nil, err
	}

	manager.transition(Authenticated, profile)
	manager.logger.InfoContext(context, "session_resumed",
		slog.String("username", profile.Username),
	)
	return profile, nil
}

// # Internals

// fetchProfile loads `me/`, normalizes the role, and persists the result.
func (manager *Manager) fetchProfile(ctx context.Context) (*Profile, error) {
	var raw rawProfile
	if err := manager.client.GetJSON(ctx, constants.EndpointMe, &raw); err != nil {
		return nil, err
	}

	profile := raw.normalize()

	encoded, err := encodeProfile(profile)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := manager.store.Set(ctx, constants.StoreKeyUser, encoded); err != nil {
		return nil, apperr.Internal(err)
	}

	return profile, nil
}

// abortLogin rolls a half-completed login back to a clean Anonymous state.
func (manager *Manager) abortLogin(ctx context.Context, cause error) error {
	if err := manager.store.ClearAll(ctx); err != nil {
		manager.logger.ErrorContext(ctx, "login_rollback_failed",
			slog.String("error", err.Error()),
		)
	}
	manager.transition(Anonymous, nil)

	if apperr.IsAppError(cause) {
		return cause
	}
	return apperr.Internal(cause)
}

// handleExpired is the transport layer's expiry callback. The store is
// already cleared by the time it fires; only the in-memory state remains.
func (manager *Manager) handleExpired(ctx context.Context) {
	manager.transition(Anonymous, nil)
	manager.logger.InfoContext(ctx, "session_expired")
}

// transition atomically updates the state snapshot.
func (manager *Manager) transition(state State, profile *Profile) {
	manager.mu.Lock()
	previous := manager.state
	manager.state = state
	manager.profile = profile
	manager.mu.Unlock()

	manager.logger.Debug("session_state_changed",
		slog.String("from", previous.String()),
		slog.String("to", state.String()),
	)
}

// loginError maps a raw login failure onto the operator-facing taxonomy.
func loginError(err error) error {
	appError := apperr.As(err)
	if appError == nil {
		return apperr.Internal(err)
	}

	switch appError.Code {
	case "UNREACHABLE":
		return appError
	case "UNAUTHORIZED":
		// Keep the server's detail when it sent one; fall back otherwise.
		if appError.Message == "" || appError.Message == "Unauthorized" {
			return apperr.Unauthorized(LoginFailedMessage)
		}
		return appError
	default:
		return apperr.Unauthorized(LoginFailedMessage)
	}
}
