// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

package portal

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/afyacare/clinic-go/internal/platform/apperr"
	requestutil "github.com/afyacare/clinic-go/internal/platform/request"
	"github.com/afyacare/clinic-go/internal/platform/respond"
	"github.com/afyacare/clinic-go/internal/platform/sec"
	"github.com/afyacare/clinic-go/internal/platform/validate"
	"github.com/afyacare/clinic-go/internal/routing"
	"github.com/afyacare/clinic-go/internal/session"
)

// loginTemplate is the operator sign-in form. The portal intentionally ships
// no asset pipeline; one inline template covers its only HTML page.
var loginTemplate = template.Must(template.New("login").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>AfyaCare — Sign in</title></head>
<body>
  <h1>AfyaCare Clinic Portal</h1>
  {{if .Error}}<p role="alert">{{.Error}}</p>{{end}}
  <form method="post" action="/login">
    <label>Username <input name="username" autocomplete="username" required></label>
    <label>Password <input name="password" type="password" autocomplete="current-password" required></label>
    <button type="submit">Sign in</button>
  </form>
</body>
</html>
`))

// renderLogin writes the sign-in form, optionally with an error banner.
func renderLogin(writer http.ResponseWriter, status int, message string) {
	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(status)
	_ = loginTemplate.Execute(writer, struct{ Error string }{Error: message})
}

// # Session Surface

// root handles GET /: signed-in operators land on their dashboard, everyone
// else on the login page.
func (handler *Handler) root(writer http.ResponseWriter, request *http.Request) {
	state, profile := handler.sessions.Current()
	if state == session.Authenticated && profile != nil {
		respond.Redirect(writer, request, routing.HomeFor(profile.Role))
		return
	}
	respond.Redirect(writer, request, routing.LoginPath)
}

// loginPage handles GET /login. An already signed-in operator with a known
// role is sent home instead of seeing the form again.
func (handler *Handler) loginPage(writer http.ResponseWriter, request *http.Request) {
	state, profile := handler.sessions.Current()
	if state == session.Authenticated && profile != nil && profile.Role.Known() {
		respond.Redirect(writer, request, routing.HomeFor(profile.Role))
		return
	}
	renderLogin(writer, http.StatusOK, "")
}

// login handles POST /login.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	username := requestutil.FormValue(request, "username")
	// Passwords are never trimmed; surrounding whitespace can be legitimate.
	password := request.FormValue("password")

	validator := validate.New().
		Required("username", username).
		Required("password", password)
	if validator.HasErrors() {
		renderLogin(writer, http.StatusBadRequest, "Username and password are required.")
		return
	}

	_, landing, err := handler.sessions.Login(request.Context(), username, password)
	if err != nil {
		status := http.StatusUnauthorized
		message := session.LoginFailedMessage
		if appError := apperr.As(err); appError != nil {
			status = appError.HTTPStatus
			message = appError.Message
		}
		renderLogin(writer, status, message)
		return
	}

	// 303 turns the form POST into a clean GET of the dashboard.
	http.Redirect(writer, request, landing, http.StatusSeeOther)
}

// logout handles POST /logout. Always lands on the login page, even when the
// session was already gone.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if err := handler.sessions.Logout(request.Context()); err != nil {
		respond.Error(writer, request, err)
		return
	}
	http.Redirect(writer, request, routing.LoginPath, http.StatusSeeOther)
}

// # Role Dashboards

// dashboardPayload is the JSON summary served on every role dashboard.
type dashboardPayload struct {
	Welcome  string                 `json:"welcome"`
	Role     sec.Role               `json:"role"`
	Sections map[string]interface{} `json:"sections,omitempty"`
}

// dashboard builds the summary handler for one role. Sections are fetched
// over the authenticated transport; an expired session mid-fetch redirects to
// login instead of surfacing an API error.
func (handler *Handler) dashboard(role sec.Role) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		profile := profileFrom(request.Context())

		sections, err := handler.sections(request.Context(), role)
		if err != nil {
			if apperr.IsCode(err, "SESSION_EXPIRED") {
				respond.Redirect(writer, request, routing.LoginPath)
				return
			}
			respond.Error(writer, request, err)
			return
		}

		respond.OK(writer, dashboardPayload{
			Welcome:  profile.DisplayName(),
			Role:     role,
			Sections: sections,
		})
	}
}

// sections assembles the role-specific dashboard content.
func (handler *Handler) sections(ctx context.Context, role sec.Role) (map[string]interface{}, error) {
	sections := map[string]interface{}{}

	switch role {
	case sec.RoleAdmin:
		accounts, err := handler.records.ListAccounts(ctx)
		if err != nil {
			return nil, err
		}
		sections["accounts"] = accounts

	case sec.RoleDoctor, sec.RoleNurse:
		appointments, err := handler.records.ListAppointments(ctx)
		if err != nil {
			return nil, err
		}
		sections["appointments"] = appointments

	case sec.RoleReceptionist:
		patients, err := handler.records.ListPatients(ctx)
		if err != nil {
			return nil, err
		}
		appointments, err := handler.records.ListAppointments(ctx)
		if err != nil {
			return nil, err
		}
		sections["patients"] = patients
		sections["appointments"] = appointments

	case sec.RolePatient:
		appointments, err := handler.records.ListAppointments(ctx)
		if err != nil {
			return nil, err
		}
		invoices, err := handler.records.ListInvoices(ctx)
		if err != nil {
			return nil, err
		}
		sections["appointments"] = appointments
		sections["invoices"] = invoices

	case sec.RolePharmacist, sec.RoleLab:
		// These stations work queue-driven inside the CMS itself; the portal
		// dashboard is a landing page only.
	}

	return sections, nil
}

// # Health Probes

// liveness handles GET /health — always 200 while the process is alive.
func (handler *Handler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok"})
}

// readiness handles GET /ready — 200 when the session store is reachable.
func (handler *Handler) readiness(writer http.ResponseWriter, request *http.Request) {
	type checkResult struct {
		Name  string `json:"name"`
		IsOK  bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}

	result := checkResult{Name: "session-store", IsOK: true}
	isSystemReady := true

	if handler.checkStore != nil {
		if err := handler.checkStore(request.Context()); err != nil && !errors.Is(err, context.Canceled) {
			result.IsOK = false
			result.Error = err.Error()
			isSystemReady = false
			handler.log.Error("readiness_check_failed",
				"dependency", "session-store",
				"error", err.Error(),
			)
		}
	}

	status := "ready"
	if !isSystemReady {
		status = "degraded"
		respond.JSON(writer, http.StatusServiceUnavailable, respond.SuccessEnvelope{Data: map[string]interface{}{
			"status": status,
			"checks": []checkResult{result},
		}})
		return
	}

	respond.OK(writer, map[string]interface{}{
		"status": status,
		"checks": []checkResult{result},
	})
}
