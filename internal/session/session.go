// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

/*
Package session owns the authentication lifecycle of the AfyaCare client.

It drives a four-state machine (Anonymous → Authenticating → Authenticated →
LoggingOut → Anonymous) and is the only writer of the persisted profile. The
transport layer reports terminal token failures through a callback, which this
package translates into a clean fall back to Anonymous.

# State Machine

  - Anonymous: No credentials; only Login is meaningful.
  - Authenticating: A login attempt is in flight. A second Login supersedes
    the first (last writer wins).
  - Authenticated: A profile is loaded; API calls carry the bearer token.
  - LoggingOut: Teardown in progress; ends in Anonymous.
*/
package session

import (
	"encoding/json"
	"fmt"

	"github.com/afyacare/clinic-go/internal/platform/sec"
)

// State is the session lifecycle phase.
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
	LoggingOut
)

// String implements fmt.Stringer for log output.
func (state State) String() string {
	switch state {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case LoggingOut:
		return "logging_out"
	default:
		return fmt.Sprintf("state(%d)", int(state))
	}
}

// Profile is the signed-in account as reported by the clinic CMS `me/`
// endpoint, with the role already normalized.
type Profile struct {
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Role           sec.Role `json:"role"`
	Specialization string   `json:"specialization,omitempty"`
}

// DisplayName returns the human-friendly name for greetings and logs.
func (profile *Profile) DisplayName() string {
	if profile.FirstName == "" && profile.LastName == "" {
		return profile.Username
	}
	if profile.LastName == "" {
		return profile.FirstName
	}
	return profile.FirstName + " " + profile.LastName
}

// rawProfile is the wire shape of `me/`, before role normalization.
type rawProfile struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Role           string `json:"role"`
	Specialization string `json:"specialization"`
}

// normalize converts the wire profile into the client's [Profile], running
// the role through the single normalization point.
func (raw rawProfile) normalize() *Profile {
	return &Profile{
		Username:       raw.Username,
		Email:          raw.Email,
		FirstName:      raw.FirstName,
		LastName:       raw.LastName,
		Role:           sec.ParseRole(raw.Role),
		Specialization: raw.Specialization,
	}
}

// encodeProfile serializes a profile for the token store.
func encodeProfile(profile *Profile) (string, error) {
	encoded, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("session: failed to encode profile: %w", err)
	}
	return string(encoded), nil
}

// decodeProfile deserializes a profile read back from the token store.
func decodeProfile(encoded string) (*Profile, error) {
	var profile Profile
	if err := json.Unmarshal([]byte(encoded), &profile); err != nil {
		return nil, fmt.Errorf("session: corrupt stored profile: %w", err)
	}

	// Stored profiles predating a role taxonomy change re-normalize on read.
	profile.Role = sec.ParseRole(string(profile.Role))

	return &profile, nil
}
