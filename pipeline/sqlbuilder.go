// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"errors"

	"github.com/medequip-solutions/support-orchestrator/datatypes"
)

// TemplateID identifies one member of the closed structured-query set.
//
// Template selection is a tagged dispatch, not string-keyed lookup: a
// missing case in the builder switch is a test-time gap, not a runtime
// surprise.
type TemplateID int

const (
	TemplateNone TemplateID = iota
	TemplateOrderShipmentLookup
	TemplateOrderList
	TemplateTicketHistory
	TemplateTicketList
	TemplateInvoiceLookup
	TemplateInvoiceList
	TemplateWarrantyBySerial
	TemplateWarrantyByClient
	TemplatePartsSearch
	TemplateAppointmentList
)

// String returns the template name used in logs and error values.
func (t TemplateID) String() string {
	switch t {
	case TemplateOrderShipmentLookup:
		return "order_shipment_lookup"
	case TemplateOrderList:
		return "order_list"
	case TemplateTicketHistory:
		return "ticket_history"
	case TemplateTicketList:
		return "ticket_list"
	case TemplateInvoiceLookup:
		return "invoice_lookup"
	case TemplateInvoiceList:
		return "invoice_list"
	case TemplateWarrantyBySerial:
		return "warranty_by_serial"
	case TemplateWarrantyByClient:
		return "warranty_by_client"
	case TemplatePartsSearch:
		return "parts_search"
	case TemplateAppointmentList:
		return "appointment_list"
	default:
		return "none"
	}
}

// StructuredQuery is a fully parameterized query request for the structured
// collaborator: template id, SQL text and bound parameters. The executor
// never interpolates values into SQL.
type StructuredQuery struct {
	Template TemplateID
	SQL      string
	Params   []any
}

// ErrIdentityRequired is returned when an identity-scoped template is
// requested without a verified identity on the plan. The auth gate prevents
// this in normal operation; the builder re-checks so the invariant cannot
// be bypassed by a caller skipping the gate.
var ErrIdentityRequired = errors.New("structured query requires a verified identity")

// templateSQL holds the SQL text per template. Every identity-scoped
// template filters on a client_id parameter bound from the authenticated
// identity, never from extracted entities.
var templateSQL = map[TemplateID]string{
	TemplateOrderShipmentLookup: `
		SELECT o.order_id, o.status, o.order_date, o.total_amount,
		       s.carrier, s.tracking_number, s.delivery_status, s.expected_delivery_date
		FROM orders o
		LEFT JOIN shipments s ON o.order_id = s.order_id
		WHERE o.order_id = ? AND o.client_id = ?`,
	TemplateOrderList: `
		SELECT o.order_id, o.status, o.order_date, o.total_amount,
		       s.delivery_status, s.expected_delivery_date
		FROM orders o
		LEFT JOIN shipments s ON o.order_id = s.order_id
		WHERE o.client_id = ?
		ORDER BY o.order_date DESC`,
	TemplateTicketHistory: `
		SELECT t.ticket_id, t.status, t.severity, t.category,
		       h.event_time, h.status AS history_status, h.notes
		FROM support_tickets t
		LEFT JOIN ticket_history h ON t.ticket_id = h.ticket_id
		WHERE t.ticket_id = ? AND t.client_id = ?
		ORDER BY h.event_time DESC`,
	TemplateTicketList: `
		SELECT ticket_id, status, severity, category, created_at, updated_at
		FROM support_tickets
		WHERE client_id = ?
		ORDER BY created_at DESC`,
	TemplateInvoiceLookup: `
		SELECT invoice_id, order_id, amount, issue_date, due_date, status
		FROM invoices
		WHERE invoice_id = ? AND client_id = ?`,
	TemplateInvoiceList: `
		SELECT invoice_id, order_id, amount, issue_date, due_date, status
		FROM invoices
		WHERE client_id = ?
		ORDER BY issue_date DESC`,
	TemplateWarrantyBySerial: `
		SELECT w.warranty_id, w.serial_number, w.start_date, w.end_date, w.coverage_level
		FROM warranties w
		JOIN equipment_registry er ON w.serial_number = er.serial_number
		WHERE w.serial_number = ? AND er.client_id = ?`,
	TemplateWarrantyByClient: `
		SELECT w.warranty_id, w.serial_number, w.start_date, w.end_date, w.coverage_level
		FROM warranties w
		JOIN equipment_registry er ON w.serial_number = er.serial_number
		WHERE er.client_id = ?
		ORDER BY w.end_date DESC`,
	TemplatePartsSearch: `
		SELECT part_number, name, description, stock_quantity, unit_price
		FROM parts_catalog
		WHERE name LIKE ? OR description LIKE ?
		ORDER BY name`,
	TemplateAppointmentList: `
		SELECT a.appointment_id, a.serial_number, a.scheduled_date, a.priority, a.status,
		       t.name AS technician
		FROM service_appointments a
		LEFT JOIN technicians t ON a.tech_id = t.tech_id
		WHERE a.client_id = ?
		ORDER BY a.scheduled_date`,
}

// BuildStructuredQuery selects and parameterizes the query template for a
// plan with a structured leg. It returns (nil, nil) when the plan's intent
// has no structured template.
//
// Templates missing their keying entity degrade to a broader
// identity-scoped listing rather than failing: an issue-resolution turn
// with no ticket id lists the client's tickets, a financial turn with no
// invoice id lists the client's invoices, and so on.
//
// Extracted client ids are never bound: identity scoping always uses the
// authenticated Identity.ClientID.
func BuildStructuredQuery(plan datatypes.QueryPlan) (*StructuredQuery, error) {
	var tmpl TemplateID
	var params []any

	switch plan.Intent {
	case datatypes.IntentOrderDelivery:
		clientID, err := authenticatedClientID(plan)
		if err != nil {
			return nil, err
		}
		if orderID := plan.Entities.Get(datatypes.EntityOrderID); orderID != "" {
			tmpl, params = TemplateOrderShipmentLookup, []any{orderID, clientID}
		} else {
			tmpl, params = TemplateOrderList, []any{clientID}
		}

	case datatypes.IntentIssueResolution:
		clientID, err := authenticatedClientID(plan)
		if err != nil {
			return nil, err
		}
		if ticketID := plan.Entities.Get(datatypes.EntityTicketID); ticketID != "" {
			tmpl, params = TemplateTicketHistory, []any{ticketID, clientID}
		} else {
			tmpl, params = TemplateTicketList, []any{clientID}
		}

	case datatypes.IntentFinancial:
		clientID, err := authenticatedClientID(plan)
		if err != nil {
			return nil, err
		}
		if invoiceID := plan.Entities.Get(datatypes.EntityInvoiceID); invoiceID != "" {
			tmpl, params = TemplateInvoiceLookup, []any{invoiceID, clientID}
		} else {
			tmpl, params = TemplateInvoiceList, []any{clientID}
		}

	case datatypes.IntentWarrantyCoverage:
		clientID, err := authenticatedClientID(plan)
		if err != nil {
			return nil, err
		}
		if serial := plan.Entities.Get(datatypes.EntitySerialNumber); serial != "" {
			tmpl, params = TemplateWarrantyBySerial, []any{serial, clientID}
		} else {
			tmpl, params = TemplateWarrantyByClient, []any{clientID}
		}

	case datatypes.IntentServiceScheduling:
		clientID, err := authenticatedClientID(plan)
		if err != nil {
			return nil, err
		}
		tmpl, params = TemplateAppointmentList, []any{clientID}

	case datatypes.IntentSpareParts:
		// Parts stock is catalog data, not identity-scoped, but the intent
		// is still auth-gated upstream to match account support policy.
		pattern := "%"
		if model := plan.Entities.Get(datatypes.EntityProductModel); model != "" {
			pattern = "%" + model + "%"
		}
		tmpl, params = TemplatePartsSearch, []any{pattern, pattern}

	default:
		return nil, nil
	}

	return &StructuredQuery{Template: tmpl, SQL: templateSQL[tmpl], Params: params}, nil
}

// authenticatedClientID returns the verified client id for identity-scoped
// templates, enforcing the invariant that extracted client_id entities are
// never substituted for the authenticated identifier.
func authenticatedClientID(plan datatypes.QueryPlan) (string, error) {
	if plan.Identity == nil || plan.Identity.ClientID == "" {
		return "", ErrIdentityRequired
	}
	return plan.Identity.ClientID, nil
}
