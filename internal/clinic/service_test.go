// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

package clinic

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afyacare/clinic-go/internal/platform/apperr"
	"github.com/afyacare/clinic-go/internal/platform/constants"
	"github.com/afyacare/clinic-go/internal/tokenstore"
	"github.com/afyacare/clinic-go/internal/transport"
)

type memStore struct {
	mu     sync.Mutex
	values map[string]string
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

func newTestService(t *testing.T, serverURL string) *Service {
	t.Helper()

	store := &memStore{values: map[string]string{
		constants.StoreKeyAccessToken: "access-token",
	}}

	client, err := transport.New(transport.Config{
		BaseURL: serverURL,
		Store:   store,
		Logger:  slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	return NewService(client)
}

/*
TestService_ListPatients verifies list decoding and bearer propagation.
*/
func TestService_ListPatients(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/patients/", request.URL.Path)
		assert.Equal(t, constants.BearerPrefix+"access-token", request.Header.Get(constants.HeaderAuthorization))

		_ = json.NewEncoder(writer).Encode([]Patient{
			{ID: 1, FirstName: "Amina", LastName: "Otieno", Status: PatientActive},
			{ID: 2, FirstName: "Joseph", LastName: "Kamau", Status: PatientDischarged},
		})
	}))
	defer server.Close()

	service := newTestService(t, server.URL)

	patients, err := service.ListPatients(context.Background())
	require.NoError(t, err)
	require.Len(t, patients, 2)
	assert.Equal(t, PatientActive, patients[0].Status)
}

/*
TestService_SetAppointmentStatus verifies the PATCH shape of the approval flow.
*/
func TestService_SetAppointmentStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPatch, request.Method)
		assert.Equal(t, "/appointments/7/", request.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(request.Body).Decode(&body))
		assert.Equal(t, "ACCEPTED", body["status"])

		_ = json.NewEncoder(writer).Encode(Appointment{ID: 7, Status: AppointmentAccepted})
	}))
	defer server.Close()

	service := newTestService(t, server.URL)

	updated, err := service.SetAppointmentStatus(context.Background(), 7, AppointmentAccepted)
	require.NoError(t, err)
	assert.Equal(t, AppointmentAccepted, updated.Status)
}

/*
TestService_GetPatient_NotFound verifies remote 404 mapping.
*/
func TestService_GetPatient_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(writer).Encode(map[string]string{"detail": "Not found."})
	}))
	defer server.Close()

	service := newTestService(t, server.URL)

	_, err := service.GetPatient(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}

/*
TestService_RequestAppointment verifies that new appointments always enter in
the REQUESTED state regardless of what the caller set.
*/
func TestService_RequestAppointment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		var body Appointment
		require.NoError(t, json.NewDecoder(request.Body).Decode(&body))
		assert.Equal(t, AppointmentRequested, body.Status)

		body.ID = 12
		_ = json.NewEncoder(writer).Encode(body)
	}))
	defer server.Close()

	service := newTestService(t, server.URL)

	created, err := service.RequestAppointment(context.Background(), Appointment{
		PatientID:    1,
		DoctorID:     2,
		ScheduledFor: "2026-09-01T09:00:00Z",
		Status:       AppointmentCompleted, // must be overridden
	})
	require.NoError(t, err)
	assert.Equal(t, 12, created.ID)
	assert.Equal(t, AppointmentRequested, created.Status)
}
