// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/afyacare/clinic-go/internal/platform/sec"
)

/*
TestHomeFor verifies the role→dashboard map covers every clinic role and that
unknown roles fall back to the login page.
*/
func TestHomeFor(t *testing.T) {
	testCases := []struct {
		role     sec.Role
		expected string
	}{
		{sec.RoleAdmin, "/admin-dashboard"},
		{sec.RoleDoctor, "/doctor-dashboard"},
		{sec.RoleNurse, "/nurse-dashboard"},
		{sec.RolePatient, "/patient-dashboard"},
		{sec.RoleReceptionist, "/receptionist-dashboard"},
		{sec.RolePharmacist, "/pharmacist-dashboard"},
		{sec.RoleLab, "/lab-dashboard"},
		{sec.RoleUnknown, LoginPath},
	}

	for _, testCase := range testCases {
		t.Run(string(testCase.role), func(t *testing.T) {
			assert.Equal(t, testCase.expected, HomeFor(testCase.role))
		})
	}
}

/*
TestHomeFor_EveryRoleHasHome guards against a new role being added to the
taxonomy without a dashboard assignment.
*/
func TestHomeFor_EveryRoleHasHome(t *testing.T) {
	for _, role := range sec.AllRoles() {
		assert.NotEqual(t, LoginPath, HomeFor(role),
			"role %s has no dashboard", role)
	}
}

/*
TestRequiredRole verifies the reverse lookup from path to owning role.
*/
func TestRequiredRole(t *testing.T) {
	assert.Equal(t, sec.RoleDoctor, RequiredRole("/doctor-dashboard"))
	assert.Equal(t, sec.RoleLab, RequiredRole("/lab-dashboard"))
	assert.Equal(t, sec.RoleUnknown, RequiredRole("/login"))
	assert.Equal(t, sec.RoleUnknown, RequiredRole("/no-such-page"))
}

/*
TestResolve verifies the access verdict table: public pages render for all,
anonymous principals go to login, misplaced principals go to their own home.
*/
func TestResolve(t *testing.T) {
	testCases := []struct {
		name     string
		userRole sec.Role
		required sec.Role
		expected Decision
	}{
		{
			name:     "owner renders own dashboard",
			userRole: sec.RoleDoctor,
			required: sec.RoleDoctor,
			expected: Decision{Verdict: Render},
		},
		{
			name:     "anonymous visitor is sent to login",
			userRole: sec.RoleUnknown,
			required: sec.RoleAdmin,
			expected: Decision{Verdict: RedirectLogin, Target: LoginPath},
		},
		{
			name:     "nurse on doctor page is sent to nurse home",
			userRole: sec.RoleNurse,
			required: sec.RoleDoctor,
			expected: Decision{Verdict: RedirectHome, Target: "/nurse-dashboard"},
		},
		{
			name:     "patient on admin page is sent to patient home",
			userRole: sec.RolePatient,
			required: sec.RoleAdmin,
			expected: Decision{Verdict: RedirectHome, Target: "/patient-dashboard"},
		},
		{
			name:     "public page renders for anonymous",
			userRole: sec.RoleUnknown,
			required: sec.RoleUnknown,
			expected: Decision{Verdict: Render},
		},
		{
			name:     "public page renders for signed-in account",
			userRole: sec.RoleReceptionist,
			required: sec.RoleUnknown,
			expected: Decision{Verdict: Render},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, Resolve(testCase.userRole, testCase.required))
		})
	}
}
