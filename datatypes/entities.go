// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// EntityKind names a structured identifier recognizable in free text.
type EntityKind string

const (
	EntityOrderID      EntityKind = "order_id"
	EntityTicketID     EntityKind = "ticket_id"
	EntityInvoiceID    EntityKind = "invoice_id"
	EntityClientID     EntityKind = "client_id"
	EntitySerialNumber EntityKind = "serial_number"
	EntityProductModel EntityKind = "product_model"
)

// EntitySet maps entity kinds to the matched string. Keys are present only
// when a pattern matched; when the same kind matches more than once, the
// extractor keeps the leftmost occurrence.
//
// Entity values are display data, never authorization data: a client_id
// typed by the user is carried here for the reply text but is never bound
// into an identity-scoped query filter.
type EntitySet map[EntityKind]string

// Get returns the value for kind, or "" when absent.
func (e EntitySet) Get(kind EntityKind) string {
	if e == nil {
		return ""
	}
	return e[kind]
}

// Has reports whether kind was matched.
func (e EntitySet) Has(kind EntityKind) bool {
	_, ok := e[kind]
	return ok
}

// Clone returns an independent copy so a QueryPlan snapshot cannot be
// mutated by later extraction work.
func (e EntitySet) Clone() EntitySet {
	if e == nil {
		return nil
	}
	out := make(EntitySet, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
