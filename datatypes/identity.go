// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// Identity is the authenticated account context bound to a session.
// Created on successful credential verification, replaced on
// re-authentication, cleared on explicit logout.
type Identity struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// QueryPlan is the resolved decision for one turn. It is constructed fresh
// per turn and never persisted beyond it.
//
// Identity is a snapshot taken after the auth gate: a plan with
// RequiresAuth set carries a non-nil Identity only when the gate verified
// one on the session. The builder trusts Identity.ClientID exclusively for
// identity-scoped filters.
type QueryPlan struct {
	Intent       Intent
	Entities     EntitySet
	Identity     *Identity
	RequiresAuth bool
	Plan         DataPlan
	RawText      string
}

// Row is one row-like mapping returned by the structured store, indexed by
// column name. Reply templates pick the columns they need by name.
type Row map[string]any

// StructuredResult is the row set for one structured query. An empty Rows
// slice is a valid, non-error outcome.
type StructuredResult struct {
	Rows []Row
}

// RetrievedPassage is a scored snippet returned by semantic search over the
// knowledge corpus. Retrievers return passages ordered by descending Score.
type RetrievedPassage struct {
	Title string  `json:"title"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}
