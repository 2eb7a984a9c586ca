// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

/*
Package apperr defines the centralized error handling framework for the
AfyaCare client.

It provides a rich error type that bridges the gap between low-level
transport/storage errors and the messages surfaced to an operator (CLI) or a
browser (portal).

Architecture:

  - AppError: A struct containing a machine-readable Code and a user-friendly message.
  - Taxonomy: Credential, network, session-expiry, and authorization failures
    are distinguished by code so callers can react without string matching.
  - Mapping: Explicit mapping from AppError to standard HTTP status codes.

Every error that leaves the session or transport layer should be wrapped as an
[AppError] to ensure consistent handling.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for the AfyaCare client.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for logging only and is never rendered to the portal
// user to avoid leaking internal implementation details.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "UNAUTHORIZED", "UNREACHABLE").
	Code string `json:"code"`
	// Message is a human-readable description safe to show to the user.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status associated with this error.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Authentication & Authorization

// Unauthorized creates a 401 [AppError] for credential failures.
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// SessionExpired creates a 401 [AppError] marking a terminal session failure:
// the refresh token itself was rejected, so the only recovery is a fresh login.
func SessionExpired(cause error) *AppError {
	return &AppError{
		Code:       "SESSION_EXPIRED",
		Message:    "Your session has expired. Please sign in again.",
		HTTPStatus: http.StatusUnauthorized,
		Cause:      cause,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Patient") // Returns "Patient not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// # Network & Server Errors

// Unreachable creates a 503 [AppError] for transport-level failures where the
// clinic API could not be reached at all (DNS, refused connection, timeout).
func Unreachable(cause error) *AppError {
	return &AppError{
		Code:       "UNREACHABLE",
		Message:    "Could not reach the clinic server. Please try again.",
		HTTPStatus: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected error.
// The cause is stored for logging but is never shown to the user.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Remote Status Mapping

// FromStatus converts a non-2xx clinic API response into an [AppError].
// The remote detail message is preferred when present; otherwise a generic
// message derived from the status code is used.
func FromStatus(status int, detail string) *AppError {
	if detail == "" {
		detail = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized:
		return Unauthorized(detail)
	case status == http.StatusForbidden:
		return Forbidden(detail)
	case status == http.StatusNotFound:
		return &AppError{Code: "NOT_FOUND", Message: detail, HTTPStatus: status}
	case status >= 500:
		return &AppError{
			Code:       "REMOTE_ERROR",
			Message:    "The clinic server reported an error",
			HTTPStatus: status,
			Cause:      fmt.Errorf("remote status %d: %s", status, detail),
		}
	default:
		return &AppError{Code: "REQUEST_FAILED", Message: detail, HTTPStatus: status}
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsCode reports whether err carries the given machine-readable code.
func IsCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
