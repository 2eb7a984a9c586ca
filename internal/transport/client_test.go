// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afyacare/clinic-go/internal/platform/apperr"
	"github.com/afyacare/clinic-go/internal/platform/constants"
	"github.com/afyacare/clinic-go/internal/tokenstore"
)

// memStore is an in-memory Store for tests. The file and Redis backends have
// their own suites; transport tests only need the contract.
type memStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (store *memStore) Get(_ context.Context, key string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	value, ok := store.values[key]
	if !ok {
		return "", tokenstore.ErrNotFound
	}
	return value, nil
}

func (store *memStore) Set(_ context.Context, key, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.values[key] = value
	return nil
}

func (store *memStore) ClearAll(_ context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.values = map[string]string{}
	return nil
}

func (store *memStore) snapshot() map[string]string {
	store.mu.Lock()
	defer store.mu.Unlock()
	copied := map[string]string{}
	for key, value := range store.values {
		copied[key] = value
	}
	return copied
}

func newTestClient(t *testing.T, serverURL string, store tokenstore.Store, onExpired func(context.Context)) *Client {
	t.Helper()

	client, err := New(Config{
		BaseURL:          serverURL,
		Store:            store,
		Logger:           slog.New(slog.NewTextHandler(testWriter{t}, nil)),
		OnSessionExpired: onExpired,
	})
	require.NoError(t, err)

	return client
}

type testWriter struct{ t *testing.T }

func (writer testWriter) Write(p []byte) (int, error) {
	writer.t.Log(string(p))
	return len(p), nil
}

// signedToken mints an HS256 token with the given expiry. Signature validity
// is irrelevant: the client only peeks claims.
func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-only"))
	require.NoError(t, err)

	return signed
}

/*
TestClient_AttachesBearerAndDecodes verifies the happy path: the stored access
token rides along as a bearer header with a correlation ID, and the JSON
response lands in the caller's struct.
*/
func TestClient_AttachesBearerAndDecodes(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	require.NoError(t, store.Set(ctx, constants.StoreKeyAccessToken, "token-abc"))

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, constants.BearerPrefix+"token-abc", request.Header.Get(constants.HeaderAuthorization))
		assert.NotEmpty(t, request.Header.Get(constants.HeaderXRequestID))
		assert.Equal(t, "/api/me/", request.URL.Path)

		_ = json.NewEncoder(writer).Encode(map[string]string{"username": "drjane"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL+"/api", store, nil)

	var profile struct {
		Username string `json:"username"`
	}
	require.NoError(t, client.GetJSON(ctx, constants.EndpointMe, &profile))
	assert.Equal(t, "drjane", profile.Username)
}

/*
TestClient_RefreshOn401_RetriesOnce verifies the recovery pipeline: a 401
triggers one refresh, the new token is persisted, and the original request is
replayed exactly once with the rotated token.
*/
func TestClient_RefreshOn401_RetriesOnce(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	require.NoError(t, store.Set(ctx, constants.StoreKeyAccessToken, "stale"))
	require.NoError(t, store.Set(ctx, constants.StoreKeyRefreshToken, "refresh-ok"))

	var dataCalls, refreshCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/"+constants.EndpointTokenRefresh, func(writer http.ResponseWriter, request *http.Request) {
		refreshCalls.Add(1)

		var body map[string]string
		require.NoError(t, json.NewDecoder(request.Body).Decode(&body))
		assert.Equal(t, "refresh-ok", body["refresh"])

		_ = json.NewEncoder(writer).Encode(map[string]string{"access": "fresh"})
	})
	mux.HandleFunc("/"+constants.EndpointPatients, func(writer http.ResponseWriter, request *http.Request) {
		dataCalls.Add(1)

		if request.Header.Get(constants.HeaderAuthorization) != constants.BearerPrefix+"fresh" {
			writer.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(writer).Encode([]map[string]string{{"id": "1"}})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, store, nil)

	var patients []map[string]string
	require.NoError(t, client.GetJSON(ctx, constants.EndpointPatients, &patients))

	assert.Len(t, patients, 1)
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, int32(2), dataCalls.Load(), "original + one retry")
	assert.Equal(t, "fresh", store.snapshot()[constants.StoreKeyAccessToken])
}

/*
TestClient_SecondUnauthorizedSurfaces verifies that a 401 on the retried
request is surfaced as-is. One refresh, one retry, no loop.
*/
func TestClient_SecondUnauthorizedSurfaces(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	require.NoError(t, store.Set(ctx, constants.StoreKeyAccessToken, "stale"))
	require.NoError(t, store.Set(ctx, constants.StoreKeyRefreshToken, "refresh-ok"))

	var dataCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/"+constants.EndpointTokenRefresh, func(writer http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(writer).Encode(map[string]string{"access": "fresh"})
	})
	mux.HandleFunc("/"+constants.EndpointPatients, func(writer http.ResponseWriter, _ *http.Request) {
		dataCalls.Add(1)
		writer.WriteHeader(http.StatusUnauthorized)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, store, nil)

	err := client.GetJSON(ctx, constants.EndpointPatients, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))
	assert.Equal(t, int32(2), dataCalls.Load(), "must not retry a second time")
}

/*
TestClient_RefreshRejected_TearsDownSession verifies the terminal path: when
the refresh token itself is rejected, every persisted key is wiped, the expiry
hook fires, and the caller receives SESSION_EXPIRED.
*/
func TestClient_RefreshRejected_TearsDownSession(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	require.NoError(t, store.Set(ctx, constants.StoreKeyAccessToken, "stale"))
	require.NoError(t, store.Set(ctx, constants.StoreKeyRefreshToken, "revoked"))
	require.NoError(t, store.Set(ctx, constants.StoreKeyUser, "profile"))

	mux := http.NewServeMux()
	mux.HandleFunc("/"+constants.EndpointTokenRefresh, func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/"+constants.EndpointPatients, func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	var expiredCalls atomic.Int32
	client := newTestClient(t, server.URL, store, func(context.Context) {
		expiredCalls.Add(1)
	})

	err := client.GetJSON(ctx, constants.EndpointPatients, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "SESSION_EXPIRED"))
	assert.Empty(t, store.snapshot(), "every session key must be wiped")
	assert.Equal(t, int32(1), expiredCalls.Load())
}

/*
TestClient_NoRefreshToken_TearsDownSession verifies that a 401 with no stored
refresh token skips the refresh call entirely and tears the session down.
*/
func TestClient_NoRefreshToken_TearsDownSession(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	require.NoError(t, store.Set(ctx, constants.StoreKeyAccessToken, "stale"))

	var refreshCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/"+constants.EndpointTokenRefresh, func(writer http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
		writer.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/"+constants.EndpointPatients, func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, store, nil)

	err := client.GetJSON(ctx, constants.EndpointPatients, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "SESSION_EXPIRED"))
	assert.Equal(t, int32(0), refreshCalls.Load(), "no refresh attempt without a refresh token")
	assert.Empty(t, store.snapshot())
}

/*
TestClient_ConcurrentUnauthorized_SingleRefresh verifies the refresh dedup:
several requests failing with 401 at the same moment produce exactly one
refresh call, and every request succeeds with the rotated token.
*/
func TestClient_ConcurrentUnauthorized_SingleRefresh(t *testing.T) {
	const workers = 8

	ctx := context.Background()
	store := newMemStore()
	require.NoError(t, store.Set(ctx, constants.StoreKeyAccessToken, "stale"))
	require.NoError(t, store.Set(ctx, constants.StoreKeyRefreshToken, "refresh-ok"))

	var refreshCalls, staleArrivals atomic.Int32
	allStale := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/"+constants.EndpointTokenRefresh, func(writer http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
		_ = json.NewEncoder(writer).Encode(map[string]string{"access": "fresh"})
	})
	mux.HandleFunc("/"+constants.EndpointPatients, func(writer http.ResponseWriter, request *http.Request) {
		if request.Header.Get(constants.HeaderAuthorization) != constants.BearerPrefix+"fresh" {
			// Hold every stale request until all workers have arrived, so
			// their 401 recoveries overlap and must share one refresh.
			if staleArrivals.Add(1) == workers {
				close(allStale)
			}
			<-allStale
			writer.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(writer).Encode(map[string]string{"ok": "true"})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, store, nil)

	var waitGroup sync.WaitGroup
	errs := make([]error, workers)
	for worker := 0; worker < workers; worker++ {
		waitGroup.Add(1)
		go func(index int) {
			defer waitGroup.Done()
			errs[index] = client.GetJSON(ctx, constants.EndpointPatients, nil)
		}(worker)
	}
	waitGroup.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), refreshCalls.Load(), "concurrent 401s must share one refresh")
}

/*
TestClient_ProactiveRefresh verifies that an access token whose exp claim is
already past is rotated before the request goes out: the data endpoint never
sees the expired token.
*/
func TestClient_ProactiveRefresh(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	expired := signedToken(t, time.Now().Add(-time.Hour))
	require.NoError(t, store.Set(ctx, constants.StoreKeyAccessToken, expired))
	require.NoError(t, store.Set(ctx, constants.StoreKeyRefreshToken, "refresh-ok"))

	mux := http.NewServeMux()
	mux.HandleFunc("/"+constants.EndpointTokenRefresh, func(writer http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(writer).Encode(map[string]string{"access": "fresh"})
	})
	mux.HandleFunc("/"+constants.EndpointMe, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, constants.BearerPrefix+"fresh", request.Header.Get(constants.HeaderAuthorization),
			"expired token must be rotated before the request is sent")
		_ = json.NewEncoder(writer).Encode(map[string]string{"username": "drjane"})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, store, nil)
	require.NoError(t, client.GetJSON(ctx, constants.EndpointMe, nil))
}

/*
TestClient_NetworkFailure verifies that an unreachable server maps to the
UNREACHABLE taxonomy rather than a raw transport error.
*/
func TestClient_NetworkFailure(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	// A server that is already closed refuses connections.
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := newTestClient(t, server.URL, store, nil)

	err := client.GetJSON(ctx, constants.EndpointMe, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "UNREACHABLE"))
}

/*
TestClient_BarePostSkipsRecovery verifies that unauthenticated posts neither
attach a bearer token nor trigger the refresh pipeline on 401.
*/
func TestClient_BarePostSkipsRecovery(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	require.NoError(t, store.Set(ctx, constants.StoreKeyAccessToken, "token-abc"))
	require.NoError(t, store.Set(ctx, constants.StoreKeyRefreshToken, "refresh-ok"))

	var refreshCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/"+constants.EndpointTokenRefresh, func(writer http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
		writer.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/"+constants.EndpointToken, func(writer http.ResponseWriter, request *http.Request) {
		assert.Empty(t, request.Header.Get(constants.HeaderAuthorization))
		writer.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(writer).Encode(map[string]string{"detail": "No active account found"})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, store, nil)

	err := client.PostJSONBare(ctx, constants.EndpointToken, map[string]string{"username": "x", "password": "y"}, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))
	assert.Equal(t, "No active account found", apperr.As(err).Message)
	assert.Equal(t, int32(0), refreshCalls.Load())
	assert.NotEmpty(t, store.snapshot(), "bare 401 must not wipe the session")
}
