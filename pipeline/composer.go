// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"fmt"
	"strings"

	"github.com/medequip-solutions/support-orchestrator/datatypes"
)

// Pre-composed user-visible fallback strings. No internal error detail,
// identifier or query text ever reaches the end user; these are the only
// failure surfaces.
const (
	// AuthPromptReply is returned whenever an auth-gated intent arrives on
	// a session with no verified identity.
	AuthPromptReply = "This request requires authentication. Please sign in with your " +
		"registered email and Client ID (ME-XXXXX) to continue."

	// CapabilityMenuReply is the fixed fallback for unrecognized input.
	CapabilityMenuReply = "I can help you with order and delivery status, product " +
		"specifications, service scheduling, warranty and AMC coverage, support " +
		"tickets, invoices and payments, spare parts availability, and compliance " +
		"documentation. What would you like to know?"

	// NoInformationReply is returned when the knowledge corpus has nothing
	// relevant for an unstructured-only turn.
	NoInformationReply = "I don't have information on that topic yet. Our support team " +
		"can help directly: call +1-800-555-0100 or email support@medequip-solutions.com."

	// UnavailableReply is the generic apology used when every data source
	// a turn needed is unreachable.
	UnavailableReply = "We're sorry, our systems are temporarily unable to retrieve your " +
		"information. Please try again shortly or contact support at +1-800-555-0100."

	// QueryErrorReply masks malformed-query failures.
	QueryErrorReply = "We were unable to retrieve the requested data. Please try " +
		"rephrasing your request, or contact support if the problem persists."
)

// Composer assembles the final reply from the query plan, the structured
// result, the retrieved passages and the collaborator errors of the turn.
type Composer struct{}

// NewComposer returns a Composer.
func NewComposer() Composer { return Composer{} }

// Compose produces the reply text for one turn.
//
// Rules by data plan:
//   - structured: format rows per intent template; empty rows yield a
//     deterministic "not found" reply naming the missing entity.
//   - unstructured: concatenate passages in relevance order with titles;
//     empty set yields the fixed no-information reply.
//   - both: structured rows first, passages appended as supporting context;
//     a failed leg is dropped and the surviving leg answers alone.
//
// Collaborator failures never surface raw: when everything a plan needed
// failed, the reply is the generic apology (or the query-error message for
// malformed structured queries).
func (Composer) Compose(
	plan datatypes.QueryPlan,
	structured *datatypes.StructuredResult,
	passages []datatypes.RetrievedPassage,
	structuredErr, retrievalErr error,
) string {
	switch plan.Plan {
	case datatypes.PlanStructured:
		if structuredErr != nil {
			return structuredFailureReply(structuredErr)
		}
		return composeStructured(plan, structured)

	case datatypes.PlanUnstructured:
		if retrievalErr != nil {
			return UnavailableReply
		}
		return composeUnstructured(passages)

	case datatypes.PlanBoth:
		if structuredErr != nil && retrievalErr != nil {
			return UnavailableReply
		}

		var parts []string
		if structuredErr == nil {
			parts = append(parts, composeStructured(plan, structured))
		}
		if retrievalErr == nil && len(passages) > 0 {
			parts = append(parts, "Related guidance:\n"+passageText(passages))
		}
		if len(parts) == 0 {
			return composeStructured(plan, structured)
		}
		return strings.Join(parts, "\n\n")

	default:
		return CapabilityMenuReply
	}
}

// structuredFailureReply maps a structured-leg error to its user-visible
// fallback.
func structuredFailureReply(err error) string {
	if datatypes.IsQueryError(err) {
		return QueryErrorReply
	}
	return UnavailableReply
}

// composeStructured formats the rows for the plan's intent, or the
// "not found" reply naming the entity the lookup keyed on.
func composeStructured(plan datatypes.QueryPlan, result *datatypes.StructuredResult) string {
	if result == nil || len(result.Rows) == 0 {
		return notFoundReply(plan)
	}

	switch plan.Intent {
	case datatypes.IntentOrderDelivery:
		return formatOrders(result.Rows)
	case datatypes.IntentIssueResolution:
		return formatTickets(plan, result.Rows)
	case datatypes.IntentFinancial:
		return formatInvoices(result.Rows)
	case datatypes.IntentWarrantyCoverage:
		return formatWarranties(result.Rows)
	case datatypes.IntentSpareParts:
		return formatParts(result.Rows)
	case datatypes.IntentServiceScheduling:
		return formatAppointments(result.Rows)
	default:
		return notFoundReply(plan)
	}
}

// notFoundReply names the record the user asked about; it is never blank.
func notFoundReply(plan datatypes.QueryPlan) string {
	type lookup struct {
		kind  datatypes.EntityKind
		label string
	}
	lookups := map[datatypes.Intent]lookup{
		datatypes.IntentOrderDelivery:    {datatypes.EntityOrderID, "order"},
		datatypes.IntentIssueResolution:  {datatypes.EntityTicketID, "ticket"},
		datatypes.IntentFinancial:        {datatypes.EntityInvoiceID, "invoice"},
		datatypes.IntentWarrantyCoverage: {datatypes.EntitySerialNumber, "equipment with serial"},
	}

	if l, ok := lookups[plan.Intent]; ok {
		if id := plan.Entities.Get(l.kind); id != "" {
			return fmt.Sprintf("I couldn't find %s %s on your account. "+
				"Please check the identifier and try again.", l.label, id)
		}
	}

	switch plan.Intent {
	case datatypes.IntentOrderDelivery:
		return "I couldn't find any orders on your account."
	case datatypes.IntentIssueResolution:
		return "I couldn't find any support tickets on your account."
	case datatypes.IntentFinancial:
		return "I couldn't find any invoices on your account."
	case datatypes.IntentWarrantyCoverage:
		return "I couldn't find any warranty coverage registered to your account."
	case datatypes.IntentSpareParts:
		return "I couldn't find any matching parts in the catalog."
	case datatypes.IntentServiceScheduling:
		return "I couldn't find any service appointments on your account."
	default:
		return NoInformationReply
	}
}

// composeUnstructured joins passage texts in relevance order with titles.
func composeUnstructured(passages []datatypes.RetrievedPassage) string {
	if len(passages) == 0 {
		return NoInformationReply
	}
	return passageText(passages)
}

func passageText(passages []datatypes.RetrievedPassage) string {
	lines := make([]string, 0, len(passages))
	for _, p := range passages {
		lines = append(lines, fmt.Sprintf("[%s] %s", p.Title, p.Text))
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// Per-intent row formatting
// =============================================================================

func formatOrders(rows []datatypes.Row) string {
	first := rows[0]
	status := rowString(first, "delivery_status")
	if status == "" {
		status = rowString(first, "status")
	}

	if len(rows) == 1 {
		reply := fmt.Sprintf("Order %s is currently '%s'.", rowString(first, "order_id"), status)
		if eta := rowString(first, "expected_delivery_date"); eta != "" {
			reply += fmt.Sprintf(" Expected delivery date: %s.", eta)
		}
		if tracking := rowString(first, "tracking_number"); tracking != "" {
			reply += fmt.Sprintf(" Tracking number: %s.", tracking)
		}
		return reply
	}

	var b strings.Builder
	b.WriteString("Your recent orders:\n")
	for _, r := range rows {
		s := rowString(r, "delivery_status")
		if s == "" {
			s = rowString(r, "status")
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", rowString(r, "order_id"), rowString(r, "order_date"), s)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatTickets(plan datatypes.QueryPlan, rows []datatypes.Row) string {
	if ticketID := plan.Entities.Get(datatypes.EntityTicketID); ticketID != "" {
		latest := rows[0]
		reply := fmt.Sprintf("Ticket %s is currently '%s'.", ticketID, rowString(latest, "status"))
		if when := rowString(latest, "event_time"); when != "" {
			reply += fmt.Sprintf(" Most recent update at %s: %s", when, rowString(latest, "notes"))
		}
		return reply
	}

	var b strings.Builder
	b.WriteString("Your open support tickets:\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "- %s [%s/%s]: %s\n",
			rowString(r, "ticket_id"), rowString(r, "severity"),
			rowString(r, "status"), rowString(r, "category"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatInvoices(rows []datatypes.Row) string {
	if len(rows) == 1 {
		r := rows[0]
		return fmt.Sprintf("Invoice %s for order %s has status '%s' and amount %s (due %s).",
			rowString(r, "invoice_id"), rowString(r, "order_id"), rowString(r, "status"),
			rowString(r, "amount"), rowString(r, "due_date"))
	}

	var b strings.Builder
	b.WriteString("Your invoices:\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "- %s: %s, status '%s', due %s\n",
			rowString(r, "invoice_id"), rowString(r, "amount"),
			rowString(r, "status"), rowString(r, "due_date"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatWarranties(rows []datatypes.Row) string {
	if len(rows) == 1 {
		r := rows[0]
		return fmt.Sprintf("Serial %s is covered under warranty %s from %s to %s (level: %s).",
			rowString(r, "serial_number"), rowString(r, "warranty_id"),
			rowString(r, "start_date"), rowString(r, "end_date"), rowString(r, "coverage_level"))
	}

	var b strings.Builder
	b.WriteString("Warranty coverage on your equipment:\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "- %s: %s coverage until %s\n",
			rowString(r, "serial_number"), rowString(r, "coverage_level"), rowString(r, "end_date"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatParts(rows []datatypes.Row) string {
	var b strings.Builder
	b.WriteString("Available parts:\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "- %s (Part %s): %s in stock at %s each\n",
			rowString(r, "name"), rowString(r, "part_number"),
			rowString(r, "stock_quantity"), rowString(r, "unit_price"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatAppointments(rows []datatypes.Row) string {
	var b strings.Builder
	b.WriteString("Your scheduled service visits:\n")
	for _, r := range rows {
		line := fmt.Sprintf("- %s on %s (%s, %s)",
			rowString(r, "appointment_id"), rowString(r, "scheduled_date"),
			rowString(r, "priority"), rowString(r, "status"))
		if tech := rowString(r, "technician"); tech != "" {
			line += ", technician " + tech
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// rowString renders a row value as display text; nil renders empty.
func rowString(r datatypes.Row, key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return fmt.Sprintf("%.2f", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
