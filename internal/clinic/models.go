// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

/*
Package clinic provides typed access to the clinic CMS resources.

Every call rides the authenticated transport, so token rotation and session
expiry are handled below this layer; callers only ever see domain payloads or
an *apperr.AppError.
*/
package clinic

import (
	"github.com/afyacare/clinic-go/internal/platform/sec"
)

// # Patients

// PatientStatus is the lifecycle state of a patient record.
type PatientStatus string

const (
	PatientActive     PatientStatus = "ACTIVE"
	PatientInactive   PatientStatus = "INACTIVE"
	PatientDischarged PatientStatus = "DISCHARGED"
)

// Patient is a clinic patient record.
type Patient struct {
	ID          int           `json:"id"`
	FirstName   string        `json:"first_name"`
	LastName    string        `json:"last_name"`
	DateOfBirth string        `json:"date_of_birth"`
	Phone       string        `json:"phone"`
	Status      PatientStatus `json:"status"`
}

// # Appointments

// AppointmentStatus tracks an appointment through its approval flow.
type AppointmentStatus string

const (
	AppointmentRequested AppointmentStatus = "REQUESTED"
	AppointmentAccepted  AppointmentStatus = "ACCEPTED"
	AppointmentDeclined  AppointmentStatus = "DECLINED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
)

// Appointment links a patient to a doctor at a scheduled time.
type Appointment struct {
	ID           int               `json:"id"`
	PatientID    int               `json:"patient"`
	DoctorID     int               `json:"doctor"`
	ScheduledFor string            `json:"scheduled_for"`
	Reason       string            `json:"reason"`
	Status       AppointmentStatus `json:"status"`
}

// # Staff Accounts

// Account is a staff or patient login as managed by an administrator.
type Account struct {
	ID        int      `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Role      sec.Role `json:"role"`
}

// # Billing

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceUnpaid InvoiceStatus = "UNPAID"
	InvoicePaid   InvoiceStatus = "PAID"
	InvoiceVoid   InvoiceStatus = "VOID"
)

// Invoice is a billing record attached to a patient.
type Invoice struct {
	ID        int           `json:"id"`
	PatientID int           `json:"patient"`
	Amount    string        `json:"amount"`
	IssuedAt  string        `json:"issued_at"`
	Status    InvoiceStatus `json:"status"`
}
