// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

/*
Package routing decides where an account lands inside the portal.

It owns the role→dashboard map and the access verdict for every gated path.
The logic is pure: no HTTP, no storage, no side effects, which keeps the
routing rules trivially testable and reusable between the portal server and
the CLI.

# Routing Rules

  - Every known role has exactly one home dashboard.
  - Anonymous or unknown principals always land on the login page.
  - A signed-in account visiting a dashboard it does not own is sent to its
    own home, never to login (it IS authenticated, just misplaced).
*/
package routing

import (
	"github.com/afyacare/clinic-go/internal/platform/sec"
)

// LoginPath is the portal's sign-in page and the fallback for every
// unrecognized destination.
const LoginPath = "/login"

// homes maps each clinic role to its dashboard path.
var homes = map[sec.Role]string{
	sec.RoleAdmin:        "/admin-dashboard",
	sec.RoleDoctor:       "/doctor-dashboard",
	sec.RoleNurse:        "/nurse-dashboard",
	sec.RolePatient:      "/patient-dashboard",
	sec.RoleReceptionist: "/receptionist-dashboard",
	sec.RolePharmacist:   "/pharmacist-dashboard",
	sec.RoleLab:          "/lab-dashboard",
}

// HomeFor returns the dashboard path for the given role. Unknown roles land
// on the login page.
func HomeFor(role sec.Role) string {
	if home, ok := homes[role]; ok {
		return home
	}
	return LoginPath
}

// RequiredRole returns the role that owns the given dashboard path, or
// [sec.RoleUnknown] when the path is not a gated dashboard.
func RequiredRole(path string) sec.Role {
	for role, home := range homes {
		if home == path {
			return role
		}
	}
	return sec.RoleUnknown
}

// # Access Verdicts

// Verdict is the outcome of resolving a navigation attempt.
type Verdict int

const (
	// Render means the principal may see the requested page.
	Render Verdict = iota

	// RedirectLogin means the principal is not signed in (or carries an
	// unrecognized role) and must authenticate first.
	RedirectLogin

	// RedirectHome means the principal is signed in but asked for a page
	// belonging to a different role; Target carries its own dashboard.
	RedirectHome
)

// Decision pairs a [Verdict] with the redirect target, when one applies.
type Decision struct {
	Verdict Verdict
	Target  string
}

/*
Resolve decides whether a principal with the given role may view a page gated
to required.

A required role of [sec.RoleUnknown] marks a public page: everyone may render
it. Otherwise only the exact owning role renders; authenticated strangers are
sent home rather than to login, so a nurse typing a doctor URL ends up on the
nurse dashboard instead of being bounced out of the session.

Parameters:
  - userRole: sec.Role of the current principal (RoleUnknown if anonymous)
  - required: sec.Role that owns the page (RoleUnknown for public pages)

Returns:
  - Decision: The verdict plus redirect target where applicable
*/
func Resolve(userRole sec.Role, required sec.Role) Decision {
	// Public pages render for everyone, signed in or not.
	if !required.Known() {
		return Decision{Verdict: Render}
	}

	if !userRole.Known() {
		return Decision{Verdict: RedirectLogin, Target: LoginPath}
	}

	if userRole == required {
		return Decision{Verdict: Render}
	}

	return Decision{Verdict: RedirectHome, Target: HomeFor(userRole)}
}
