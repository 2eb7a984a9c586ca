// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Access Token Inspection

// The client never verifies JWT signatures: the clinic CMS is the sole
// authority and validates every token server-side. Claims are peeked without
// verification purely to make local scheduling decisions (e.g. refreshing a
// token that is already past its expiry instead of provoking a 401).

// PeekExpiry extracts the `exp` claim from an access token without verifying
// its signature. It returns the zero time if the token carries no expiry.
func PeekExpiry(tokenString string) (time.Time, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, fmt.Errorf("sec: malformed access token: %w", err)
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("sec: invalid exp claim: %w", err)
	}
	if expiry == nil {
		return time.Time{}, nil
	}

	return expiry.Time, nil
}

// Expired reports whether the token's `exp` claim is in the past.
//
// A token that cannot be parsed, or that carries no expiry, is reported as
// NOT expired: the authoritative check is the server's 401, and the transport
// layer recovers from that path anyway.
func Expired(tokenString string, now time.Time) bool {
	expiry, err := PeekExpiry(tokenString)
	if err != nil || expiry.IsZero() {
		return false
	}
	return expiry.Before(now)
}
