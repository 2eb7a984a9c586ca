// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

package clinic

import (
	"context"
	"fmt"

	"github.com/afyacare/clinic-go/internal/platform/constants"
	"github.com/afyacare/clinic-go/internal/transport"
)

// Service exposes the clinic CMS resources over the authenticated transport.
type Service struct {
	client *transport.Client
}

// NewService wraps an authenticated client.
func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

// itemPath builds a detail path like "patients/42/". The trailing slash is
// significant: the CMS redirects slash-less paths.
func itemPath(collection string, id int) string {
	return fmt.Sprintf("%s%d/", collection, id)
}

// # Patients

// ListPatients returns all patient records visible to the current role.
func (service *Service) ListPatients(context context.Context) ([]Patient, error) {
	var patients []Patient
	if err := service.client.GetJSON(context, constants.EndpointPatients, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}

// GetPatient returns a single patient record.
func (service *Service) GetPatient(context context.Context, id int) (*Patient, error) {
	var patient Patient
	if err := service.client.GetJSON(context, itemPath(constants.EndpointPatients, id), &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// CreatePatient registers a new patient record.
func (service *Service) CreatePatient(context context.Context, patient Patient) (*Patient, error) {
	var created Patient
	if err := service.client.PostJSON(context, constants.EndpointPatients, patient, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePatient replaces a patient record.
func (service *Service) UpdatePatient(context context.Context, patient Patient) (*Patient, error) {
	var updated Patient
	if err := service.client.PutJSON(context, itemPath(constants.EndpointPatients, patient.ID), patient, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// # Appointments

// ListAppointments returns the appointments visible to the current role.
func (service *Service) ListAppointments(context context.Context) ([]Appointment, error) {
	var appointments []Appointment
	if err := service.client.GetJSON(context, constants.EndpointAppointments, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

// RequestAppointment creates an appointment in the REQUESTED state.
func (service *Service) RequestAppointment(context context.Context, appointment Appointment) (*Appointment, error) {
	appointment.Status = AppointmentRequested

	var created Appointment
	if err := service.client.PostJSON(context, constants.EndpointAppointments, appointment, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// SetAppointmentStatus moves an appointment through its approval flow.
func (service *Service) SetAppointmentStatus(context context.Context, id int, status AppointmentStatus) (*Appointment, error) {
	var updated Appointment
	body := map[string]AppointmentStatus{"status": status}
	if err := service.client.PatchJSON(context, itemPath(constants.EndpointAppointments, id), body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// # Staff Accounts (admin only; the CMS enforces the gate)

// ListAccounts returns all login accounts.
func (service *Service) ListAccounts(context context.Context) ([]Account, error) {
	var accounts []Account
	if err := service.client.GetJSON(context, constants.EndpointUsers, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// DeleteAccount removes a login account.
func (service *Service) DeleteAccount(context context.Context, id int) error {
	return service.client.Delete(context, itemPath(constants.EndpointUsers, id))
}

// # Billing

// ListInvoices returns the invoices visible to the current role.
func (service *Service) ListInvoices(context context.Context) ([]Invoice, error) {
	var invoices []Invoice
	if err := service.client.GetJSON(context, constants.EndpointInvoices, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// MarkInvoicePaid settles an invoice.
func (service *Service) MarkInvoicePaid(context context.Context, id int) (*Invoice, error) {
	var updated Invoice
	body := map[string]InvoiceStatus{"status": InvoicePaid}
	if err := service.client.PatchJSON(context, itemPath(constants.EndpointInvoices, id), body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
