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

// schemaStatements creates the operational tables. Statements are ordered
// so foreign-key targets exist before their referrers.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		client_type TEXT NOT NULL,
		city TEXT,
		country TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sku TEXT UNIQUE NOT NULL,
		model TEXT NOT NULL,
		category TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		power_requirements TEXT,
		specifications TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS equipment_registry (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		serial_number TEXT UNIQUE NOT NULL,
		client_id TEXT NOT NULL REFERENCES clients(client_id),
		product_id INTEGER NOT NULL REFERENCES products(id),
		install_date TEXT,
		status TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id TEXT UNIQUE NOT NULL,
		client_id TEXT NOT NULL REFERENCES clients(client_id),
		order_date TEXT,
		status TEXT,
		total_amount REAL
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id TEXT NOT NULL REFERENCES orders(order_id),
		product_id INTEGER NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL,
		unit_price REAL NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS shipments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		shipment_id TEXT UNIQUE NOT NULL,
		order_id TEXT NOT NULL REFERENCES orders(order_id),
		carrier TEXT,
		tracking_number TEXT,
		shipped_date TEXT,
		expected_delivery_date TEXT,
		delivery_status TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS service_regions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		region_code TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		country TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS technicians (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tech_id TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		region_code TEXT NOT NULL REFERENCES service_regions(region_code),
		phone TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS service_appointments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		appointment_id TEXT UNIQUE NOT NULL,
		client_id TEXT NOT NULL REFERENCES clients(client_id),
		serial_number TEXT REFERENCES equipment_registry(serial_number),
		tech_id TEXT REFERENCES technicians(tech_id),
		scheduled_date TEXT,
		priority TEXT,
		status TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS warranties (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		warranty_id TEXT UNIQUE NOT NULL,
		serial_number TEXT NOT NULL REFERENCES equipment_registry(serial_number),
		start_date TEXT,
		end_date TEXT,
		coverage_level TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS amc_contracts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		amc_id TEXT UNIQUE NOT NULL,
		serial_number TEXT NOT NULL REFERENCES equipment_registry(serial_number),
		tier TEXT,
		start_date TEXT,
		end_date TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS coverage_claims (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		claim_id TEXT UNIQUE NOT NULL,
		serial_number TEXT NOT NULL REFERENCES equipment_registry(serial_number),
		claim_date TEXT,
		status TEXT,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS support_tickets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticket_id TEXT UNIQUE NOT NULL,
		client_id TEXT NOT NULL REFERENCES clients(client_id),
		serial_number TEXT,
		category TEXT,
		severity TEXT,
		status TEXT,
		created_at TEXT,
		updated_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS ticket_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticket_id TEXT NOT NULL REFERENCES support_tickets(ticket_id),
		event_time TEXT,
		status TEXT,
		notes TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invoice_id TEXT UNIQUE NOT NULL,
		client_id TEXT NOT NULL REFERENCES clients(client_id),
		order_id TEXT REFERENCES orders(order_id),
		amount REAL,
		issue_date TEXT,
		due_date TEXT,
		status TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		payment_id TEXT UNIQUE NOT NULL,
		invoice_id TEXT NOT NULL REFERENCES invoices(invoice_id),
		amount REAL,
		payment_date TEXT,
		method TEXT,
		status TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS parts_catalog (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		part_number TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		stock_quantity INTEGER NOT NULL DEFAULT 0,
		unit_price REAL NOT NULL DEFAULT 0.0
	)`,
}

// EnsureSchema creates any missing tables. Safe to call on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
