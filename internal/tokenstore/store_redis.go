// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/afyacare/clinic-go/internal/platform/constants"
)

// RedisStore keeps the session in a single Redis hash, so a reception desk
// running several portal replicas shares one operator session.
//
// All keys live in one hash under a per-terminal name. ClearAll is a single
// DEL, which makes the wipe atomic: no replica can observe a half-cleared
// session.
type RedisStore struct {
	client   *redis.Client
	hashKey  string
	lifetime time.Duration
}

// NewRedisStore creates a Redis-backed store for the given terminal name.
// lifetime bounds how long an abandoned session survives; zero disables
// expiry.
func NewRedisStore(client *redis.Client, terminal string, lifetime time.Duration) *RedisStore {
	return &RedisStore{
		client:   client,
		hashKey:  constants.RedisPrefixSession + terminal,
		lifetime: lifetime,
	}
}

/*
Get returns the value stored under key.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - string: Stored value
  - error: ErrNotFound when absent, or Redis failures
*/
func (store *RedisStore) Get(context context.Context, key string) (string, error) {
	value, err := store.client.HGet(context, store.hashKey, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("tokenstore: redis read failed: %w", err)
	}

	return value, nil
}

/*
Set stores value under key and refreshes the session lifetime.

Parameters:
  - context: context.Context
  - key: string
  - value: string

Returns:
  - error: Redis failures
*/
func (store *RedisStore) Set(context context.Context, key string, value string) error {
	if err := store.client.HSet(context, store.hashKey, key, value).Err(); err != nil {
		return fmt.Errorf("tokenstore: redis write failed: %w", err)
	}

	// Every write renews the idle expiry; an active terminal never loses
	// its session to the TTL.
	if store.lifetime > 0 {
		if err := store.client.Expire(context, store.hashKey, store.lifetime).Err(); err != nil {
			return fmt.Errorf("tokenstore: redis expire failed: %w", err)
		}
	}

	return nil
}

/*
ClearAll deletes the whole session hash in one command.

Parameters:
  - context: context.Context

Returns:
  - error: Redis failures
*/
func (store *RedisStore) ClearAll(context context.Context) error {
	if err := store.client.Del(context, store.hashKey).Err(); err != nil {
		return fmt.Errorf("tokenstore: redis clear failed: %w", err)
	}
	return nil
}
