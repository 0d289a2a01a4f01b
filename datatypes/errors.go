// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned by the identity store and the session
// when an (email, client_id) pair matches no client. It is recovered
// locally and surfaced to the user as a retry prompt, never as a raw error.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNotFound is returned by lookup operations when the requested record
// does not exist. Not-found is a normal outcome, not a failure.
var ErrNotFound = errors.New("not found")

// DataUnavailableError indicates a collaborator (structured store or
// semantic-search service) is unreachable. The pipeline degrades to
// whichever side succeeded; only when every leg fails does the user see a
// generic apology.
type DataUnavailableError struct {
	Collaborator string // "structured-store" or "knowledge-base"
	Err          error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Collaborator, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

// IsDataUnavailable checks whether err is (or wraps) a DataUnavailableError.
func IsDataUnavailable(err error) bool {
	var due *DataUnavailableError
	return errors.As(err, &due)
}

// QueryError indicates a structured query was malformed (bad template
// parameters, scan failure). It is logged with the template id but the
// user-visible message never exposes internal identifiers or query text.
type QueryError struct {
	Template string
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s failed: %v", e.Template, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// IsQueryError checks whether err is (or wraps) a QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}
