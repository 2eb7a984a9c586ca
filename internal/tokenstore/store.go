// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

/*
Package tokenstore implements durable persistence for the session credentials.

It holds exactly three logical keys — the access token, the refresh token, and
the serialized user profile — and survives process restarts, so an operator
stays signed in across CLI invocations and portal redeploys.

# Architecture

  - Store: A narrow key-value contract; no network or validation logic.
  - FileStore: Encrypted single-file backend for workstation installs.
  - RedisStore: Shared backend for multi-replica portal deployments.

No other component touches persistence directly. Every read and write of a
credential anywhere in the client goes through this interface, so clearing a
session is a single, total operation.
*/
package tokenstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by [Store.Get] when the key holds no value.
// Callers treat it as "absent", not as a failure.
var ErrNotFound = errors.New("tokenstore: key not found")

// Store defines the persistence contract for session state.
type Store interface {

	/*
		Get returns the value stored under key.

		Parameters:
		  - context: context.Context
		  - key: string

		Returns:
		  - string: Stored value
		  - error: ErrNotFound when absent, or backend failures
	*/
	Get(context context.Context, key string) (string, error)

	/*
		Set stores value under key, replacing any previous value.

		Parameters:
		  - context: context.Context
		  - key: string
		  - value: string

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, key string, value string) error

	/*
		ClearAll wipes every persisted session key atomically from the
		caller's point of view. Used on logout and before every fresh login
		attempt to prevent stale-credential leakage.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Persistence failures
	*/
	ClearAll(context context.Context) error
}
