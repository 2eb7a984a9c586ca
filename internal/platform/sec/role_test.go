// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

package sec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestParseRole verifies that raw role strings from the API normalize into the
enumerated set regardless of casing, and that strangers map to RoleUnknown.
*/
func TestParseRole(t *testing.T) {
	testCases := []struct {
		raw      string
		expected Role
	}{
		{"ADMIN", RoleAdmin},
		{"doctor", RoleDoctor},
		{"Doctor", RoleDoctor},
		{"nUrSe", RoleNurse},
		{"receptionist", RoleReceptionist},
		{"PATIENT", RolePatient},
		{"lab", RoleLab},
		{"pharmacist", RolePharmacist},
		{"ghost", RoleUnknown},
		{"", RoleUnknown},
		{"  DOCTOR", RoleUnknown}, // whitespace is the server's bug to fix, not ours to mask
	}

	for _, testCase := range testCases {
		t.Run(testCase.raw, func(t *testing.T) {
			assert.Equal(t, testCase.expected, ParseRole(testCase.raw))
		})
	}
}

/*
TestRole_Known verifies the Known predicate against the whole taxonomy.
*/
func TestRole_Known(t *testing.T) {
	for _, role := range AllRoles() {
		assert.True(t, role.Known(), "role %s should be known", role)
	}
	assert.False(t, RoleUnknown.Known())
}
