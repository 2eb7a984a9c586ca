// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

package portal

import (
	"context"
	"net/http"

	"github.com/afyacare/clinic-go/internal/platform/respond"
	"github.com/afyacare/clinic-go/internal/platform/sec"
	"github.com/afyacare/clinic-go/internal/routing"
	"github.com/afyacare/clinic-go/internal/session"
)

// profileKey scopes the signed-in profile in the request context. It lives
// here rather than in ctxutil because only gated portal handlers may rely on
// a profile being present.
type profileKey struct{}

// withProfile attaches the signed-in profile to the request context.
func withProfile(ctx context.Context, profile *session.Profile) context.Context {
	return context.WithValue(ctx, profileKey{}, profile)
}

// profileFrom returns the signed-in profile. Handlers behind [Handler.guard]
// may assume it is non-nil.
func profileFrom(ctx context.Context) *session.Profile {
	profile, _ := ctx.Value(profileKey{}).(*session.Profile)
	return profile
}

// guard gates a route group to exactly one role.
//
// The verdict comes from the pure routing table: anonymous visitors go to
// login, signed-in visitors of the wrong role go to their own dashboard.
// Redirects flow through [respond.Redirect], which refuses to redirect a
// request to the path it is already on.
func (handler *Handler) guard(required sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			state, profile := handler.sessions.Current()

			role := sec.RoleUnknown
			if state == session.Authenticated && profile != nil {
				role = profile.Role
			}

			decision := routing.Resolve(role, required)
			switch decision.Verdict {
			case routing.Render:
				next.ServeHTTP(writer, request.WithContext(withProfile(request.Context(), profile)))
			default:
				respond.Redirect(writer, request, decision.Target)
			}
		})
	}
}
