// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store provides the operational SQLite store: schema management,
// sample data seeding, identity lookup and template query execution.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/medequip-solutions/support-orchestrator/datatypes"
	"github.com/medequip-solutions/support-orchestrator/pipeline"
)

// Store wraps the operational database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path with WAL
// journaling and a busy timeout suited to concurrent sessions.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the raw handle for schema and seed helpers.
func (s *Store) DB() *sql.DB { return s.db }

// LookupIdentity verifies an (email, client_id) pair against registered
// clients. Email comparison is case-insensitive; client ids are exact.
// Returns datatypes.ErrNotFound when no client matches.
func (s *Store) LookupIdentity(ctx context.Context, email, clientID string) (*datatypes.Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT client_id, name, email FROM clients WHERE LOWER(email) = LOWER(?) AND client_id = ?`,
		strings.TrimSpace(email), strings.TrimSpace(clientID),
	)

	var identity datatypes.Identity
	if err := row.Scan(&identity.ClientID, &identity.Name, &identity.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, datatypes.ErrNotFound
		}
		return nil, &datatypes.DataUnavailableError{Collaborator: "structured-store", Err: err}
	}
	return &identity, nil
}

// Execute runs a parameterized template query and materializes every row.
//
// Error mapping: context expiry and connectivity failures become
// DataUnavailableError; anything the database rejects about the query
// itself becomes QueryError. Zero rows is a normal result, not an error.
func (s *Store) Execute(ctx context.Context, q *pipeline.StructuredQuery) (*datatypes.StructuredResult, error) {
	rows, err := s.db.QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, classifyExecError(q, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &datatypes.QueryError{Template: q.Template.String(), Err: err}
	}

	result := &datatypes.StructuredResult{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &datatypes.QueryError{Template: q.Template.String(), Err: err}
		}

		row := make(datatypes.Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyExecError(q, err)
	}
	return result, nil
}

// classifyExecError separates "the store is unreachable right now" from
// "the database rejected this query". Context expiry, dead connections and
// sqlite busy/lock/I-O conditions are transient store trouble; everything
// else is the query's fault.
func classifyExecError(q *pipeline.StructuredQuery, err error) error {
	if isStoreUnavailable(err) {
		return &datatypes.DataUnavailableError{Collaborator: "structured-store", Err: err}
	}
	return &datatypes.QueryError{Template: q.Template.String(), Err: err}
}

func isStoreUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_IOERR,
			sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_FULL:
			return true
		}
	}
	return false
}
