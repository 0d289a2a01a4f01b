// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"testing"

	"github.com/medequip-solutions/support-orchestrator/datatypes"
)

func TestExtractAllKinds(t *testing.T) {
	e := NewExtractor()

	text := "Client ME-10001 asked about order ORD-2024-0001, ticket TKT-2024-0001, " +
		"invoice INV-2024-3456 and serial US-2022-1234 on the PM-800"
	got := e.Extract(text)

	want := map[datatypes.EntityKind]string{
		datatypes.EntityClientID:     "ME-10001",
		datatypes.EntityOrderID:      "ORD-2024-0001",
		datatypes.EntityTicketID:     "TKT-2024-0001",
		datatypes.EntityInvoiceID:    "INV-2024-3456",
		datatypes.EntitySerialNumber: "US-2022-1234",
		datatypes.EntityProductModel: "PM-800",
	}
	for kind, value := range want {
		if got.Get(kind) != value {
			t.Errorf("Extract: %s = %q, want %q", kind, got.Get(kind), value)
		}
	}
}

func TestExtractKeepsLeftmost(t *testing.T) {
	e := NewExtractor()

	got := e.Extract("compare ORD-2024-0002 with ORD-2024-0001")
	if got.Get(datatypes.EntityOrderID) != "ORD-2024-0002" {
		t.Errorf("got %q, want the leftmost order id", got.Get(datatypes.EntityOrderID))
	}
}

func TestExtractSerialNotMistakenForModel(t *testing.T) {
	e := NewExtractor()

	// CT-2023-4000 is a serial number; its CT-2023 prefix must not be
	// reported as a product model.
	got := e.Extract("the scanner with serial CT-2023-4000 is down")
	if got.Get(datatypes.EntitySerialNumber) != "CT-2023-4000" {
		t.Errorf("serial = %q, want CT-2023-4000", got.Get(datatypes.EntitySerialNumber))
	}
	if got.Has(datatypes.EntityProductModel) {
		t.Errorf("model = %q, want no model match", got.Get(datatypes.EntityProductModel))
	}

	// A bare model elsewhere in the text still surfaces.
	got = e.Extract("serial CT-2023-4000 is a CT-4000 unit")
	if got.Get(datatypes.EntityProductModel) != "CT-4000" {
		t.Errorf("model = %q, want CT-4000", got.Get(datatypes.EntityProductModel))
	}
}

func TestExtractNoMatches(t *testing.T) {
	e := NewExtractor()

	got := e.Extract("what are your support hours?")
	if len(got) != 0 {
		t.Errorf("expected empty entity set, got %v", got)
	}
}

func TestExtractRequiresWordBoundaries(t *testing.T) {
	e := NewExtractor()

	got := e.Extract("XORD-2024-0001Y is not an identifier")
	if got.Has(datatypes.EntityOrderID) {
		t.Errorf("matched an embedded token: %q", got.Get(datatypes.EntityOrderID))
	}
}
