// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

// Package sec provides security-adjacent primitives for the client: the
// clinic role taxonomy and access-token inspection.
//
// # Architecture
//
// This package isolates identity-sensitive code from the session logic. It
// has no network dependencies and is safe to use from any layer.
package sec

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// # Clinic Roles

// Role represents the authorization category assigned to an account by the
// clinic CMS. Values are always stored upper-case; [ParseRole] is the single
// normalization point for the whole client.
type Role string

const (
	// Unrestricted system access; manages staff accounts
	RoleAdmin Role = "ADMIN"

	// Treats patients, owns medical records and prescriptions
	RoleDoctor Role = "DOCTOR"

	// Assists doctors, records vitals and notes
	RoleNurse Role = "NURSE"

	// Registers patients, manages appointments and billing
	RoleReceptionist Role = "RECEPTIONIST"

	// Default role; limited to the patient's own data
	RolePatient Role = "PATIENT"

	// Lab technician; manages lab results
	RoleLab Role = "LAB"

	// Handles prescription dispensing
	RolePharmacist Role = "PHARMACIST"

	// RoleUnknown marks an unrecognized or absent role. For routing purposes
	// it is treated the same as an unauthenticated principal.
	RoleUnknown Role = ""
)

// upper performs Unicode-aware upper-casing, so locale-specific role spellings
// coming back from the API ("doctor", "Doctor") all collapse to one form.
var upper = cases.Upper(language.Und)

// ParseRole normalizes a raw role string from the remote API into the
// enumerated [Role] set. Anything outside the set maps to [RoleUnknown].
//
// # Normalization Point
//
// The clinic CMS stores roles upper-case but historically leaked mixed-case
// values through some endpoints. All comparisons elsewhere in the client
// assume this function has already run.
func ParseRole(raw string) Role {
	switch Role(upper.String(raw)) {
	case RoleAdmin:
		return RoleAdmin
	case RoleDoctor:
		return RoleDoctor
	case RoleNurse:
		return RoleNurse
	case RoleReceptionist:
		return RoleReceptionist
	case RolePatient:
		return RolePatient
	case RoleLab:
		return RoleLab
	case RolePharmacist:
		return RolePharmacist
	default:
		return RoleUnknown
	}
}

// Known reports whether the role belongs to the enumerated clinic set.
func (r Role) Known() bool {
	return r != RoleUnknown
}

// AllRoles returns the enumerated clinic roles in a stable order.
func AllRoles() []Role {
	return []Role{
		RoleAdmin,
		RoleDoctor,
		RoleNurse,
		RoleReceptionist,
		RolePatient,
		RoleLab,
		RolePharmacist,
	}
}
