// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"fmt"
)

type seedStatement struct {
	sql    string
	params []any
}

// Seed loads the deterministic sample dataset used by demos and tests:
// one known client with equipment, an in-transit order, an open ticket
// with its event trail, a paid invoice and a small parts catalog.
// Every insert is idempotent (INSERT OR IGNORE on the business key).
func (s *Store) Seed(ctx context.Context) error {
	statements := []seedStatement{
		{`INSERT OR IGNORE INTO clients (client_id, name, email, client_type, city, country)
			VALUES (?, ?, ?, ?, ?, ?)`,
			[]any{"ME-10001", "City General Hospital", "contact@cityhospital.com", "Hospital", "Metropolis", "USA"}},
		{`INSERT OR IGNORE INTO clients (client_id, name, email, client_type, city, country)
			VALUES (?, ?, ?, ?, ?, ?)`,
			[]any{"ME-10002", "Lakeside Imaging Center", "admin@lakesideimaging.com", "Imaging Center", "Lakeside", "USA"}},

		{`INSERT OR IGNORE INTO products (sku, model, category, name, description, power_requirements, specifications)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]any{"MRI-3000", "MRI-3000", "Imaging", "MRI Scanner 3000", "High-field MRI scanner.", "220-240V, 50/60Hz", "Field strength: 3T; Bore: 70cm"}},
		{`INSERT OR IGNORE INTO products (sku, model, category, name, description, power_requirements, specifications)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]any{"CT-4000", "CT-4000", "Imaging", "CT Scanner 4000", "Multi-slice CT scanner.", "400V, 3-phase", "Slice count: 128; Gantry: 78cm"}},
		{`INSERT OR IGNORE INTO products (sku, model, category, name, description, power_requirements, specifications)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]any{"PM-800", "PM-800", "Patient Monitor", "Patient Monitor PM-800", "Bedside patient monitor.", "100-240V AC", "SpO2, NIBP, ECG, TEMP"}},

		{`INSERT OR IGNORE INTO equipment_registry (serial_number, client_id, product_id, install_date, status)
			VALUES (?, ?, (SELECT id FROM products WHERE sku = ?), ?, ?)`,
			[]any{"US-2022-1234", "ME-10001", "PM-800", "2022-06-15", "Active"}},
		{`INSERT OR IGNORE INTO equipment_registry (serial_number, client_id, product_id, install_date, status)
			VALUES (?, ?, (SELECT id FROM products WHERE sku = ?), ?, ?)`,
			[]any{"CT-2023-4000", "ME-10001", "CT-4000", "2023-01-20", "Active"}},

		{`INSERT OR IGNORE INTO orders (order_id, client_id, order_date, status, total_amount)
			VALUES (?, ?, ?, ?, ?)`,
			[]any{"ORD-2024-0001", "ME-10001", "2024-03-01", "Shipped", 250000.0}},
		{`INSERT OR IGNORE INTO shipments (shipment_id, order_id, carrier, tracking_number, shipped_date, expected_delivery_date, delivery_status)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]any{"SHP-2024-0001", "ORD-2024-0001", "MedEquip Logistics", "TRK123456789", "2024-03-02", "2024-03-10", "In Transit"}},

		{`INSERT OR IGNORE INTO warranties (warranty_id, serial_number, start_date, end_date, coverage_level)
			VALUES (?, ?, ?, ?, ?)`,
			[]any{"WAR-2022-0001", "US-2022-1234", "2022-06-15", "2025-06-14", "Standard"}},
		{`INSERT OR IGNORE INTO amc_contracts (amc_id, serial_number, tier, start_date, end_date)
			VALUES (?, ?, ?, ?, ?)`,
			[]any{"AMC-2023-0001", "CT-2023-4000", "Gold", "2023-01-20", "2026-01-19"}},

		{`INSERT OR IGNORE INTO support_tickets (ticket_id, client_id, serial_number, category, severity, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			[]any{"TKT-2024-0001", "ME-10001", "US-2022-1234", "Device Failure", "High", "Open", "2024-02-01", "2024-02-02"}},
		{`INSERT OR IGNORE INTO ticket_history (id, ticket_id, event_time, status, notes)
			VALUES (?, ?, ?, ?, ?)`,
			[]any{1, "TKT-2024-0001", "2024-02-01T09:15:00", "Open", "Ticket created by customer portal"}},
		{`INSERT OR IGNORE INTO ticket_history (id, ticket_id, event_time, status, notes)
			VALUES (?, ?, ?, ?, ?)`,
			[]any{2, "TKT-2024-0001", "2024-02-01T10:00:00", "In Progress", "Technician assigned"}},
		{`INSERT OR IGNORE INTO ticket_history (id, ticket_id, event_time, status, notes)
			VALUES (?, ?, ?, ?, ?)`,
			[]any{3, "TKT-2024-0001", "2024-02-02T14:30:00", "Open", "Awaiting spare part"}},

		{`INSERT OR IGNORE INTO invoices (invoice_id, client_id, order_id, amount, issue_date, due_date, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]any{"INV-2024-3456", "ME-10001", "ORD-2024-0001", 250000.0, "2024-03-05", "2024-04-05", "Paid"}},
		{`INSERT OR IGNORE INTO payments (payment_id, invoice_id, amount, payment_date, method, status)
			VALUES (?, ?, ?, ?, ?, ?)`,
			[]any{"PAY-2024-0001", "INV-2024-3456", 250000.0, "2024-03-20", "Wire Transfer", "Completed"}},

		{`INSERT OR IGNORE INTO service_regions (region_code, name, country) VALUES (?, ?, ?)`,
			[]any{"US-NE", "Northeast", "USA"}},
		{`INSERT OR IGNORE INTO technicians (tech_id, name, region_code, phone) VALUES (?, ?, ?, ?)`,
			[]any{"TECH-001", "Dana Reyes", "US-NE", "+1-800-555-0142"}},
		{`INSERT OR IGNORE INTO service_appointments (appointment_id, client_id, serial_number, tech_id, scheduled_date, priority, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]any{"APT-2024-0001", "ME-10001", "CT-2023-4000", "TECH-001", "2024-04-12", "Routine", "Scheduled"}},

		{`INSERT OR IGNORE INTO parts_catalog (part_number, name, description, stock_quantity, unit_price)
			VALUES (?, ?, ?, ?, ?)`,
			[]any{"ECG-ELECT-001", "ECG Electrodes", "Disposable ECG electrodes", 500, 2.5}},
		{`INSERT OR IGNORE INTO parts_catalog (part_number, name, description, stock_quantity, unit_price)
			VALUES (?, ?, ?, ?, ?)`,
			[]any{"VENT-FILTER-010", "Ventilator Filter", "Bacterial/viral filter for ventilators", 120, 45.0}},
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt.sql, stmt.params...); err != nil {
			return fmt.Errorf("seed sample data: %w", err)
		}
	}
	return nil
}
