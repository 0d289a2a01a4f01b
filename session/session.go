// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package session manages per-conversation state: bounded history, the
// verified identity, and the per-session turn lock that serializes turns
// within one conversation while leaving different conversations concurrent.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/medequip-solutions/support-orchestrator/datatypes"
	"github.com/medequip-solutions/support-orchestrator/observability"
)

// IdentityStore verifies a credential pair against registered clients.
// Lookup returns datatypes.ErrNotFound when the pair matches no client.
type IdentityStore interface {
	LookupIdentity(ctx context.Context, email, clientID string) (*datatypes.Identity, error)
}

// Session holds one conversation's mutable state.
//
// The turn lock (AcquireTurn/ReleaseTurn) is held for the full duration of
// turn processing; the inner mutex guards the identity pointer for the
// short reads and writes from auth handlers.
type Session struct {
	id      string
	store   IdentityStore
	history *datatypes.ConversationHistory

	turnMu sync.Mutex

	mu       sync.RWMutex
	identity *datatypes.Identity
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// History returns the session's conversation history.
func (s *Session) History() *datatypes.ConversationHistory { return s.history }

// AcquireTurn blocks until this session's turn slot is free.
func (s *Session) AcquireTurn() { s.turnMu.Lock() }

// ReleaseTurn frees the turn slot.
func (s *Session) ReleaseTurn() { s.turnMu.Unlock() }

// Identity returns the verified identity, or nil when unauthenticated.
func (s *Session) Identity() *datatypes.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Authenticate verifies the credential pair and binds the resulting
// identity to the session.
//
//   - Both fields empty clears any existing identity and never fails
//     (explicit logout through the auth operation).
//   - A pair matching no client returns ErrInvalidCredentials and leaves a
//     previously verified identity untouched.
//   - A valid pair replaces whatever identity was previously bound.
func (s *Session) Authenticate(ctx context.Context, email, clientID string) (*datatypes.Identity, error) {
	if email == "" && clientID == "" {
		s.Logout()
		observability.AuthAttemptsTotal.WithLabelValues("logout").Inc()
		return nil, nil
	}

	identity, err := s.store.LookupIdentity(ctx, email, clientID)
	if err != nil {
		if errors.Is(err, datatypes.ErrNotFound) {
			observability.AuthAttemptsTotal.WithLabelValues("invalid").Inc()
			return nil, datatypes.ErrInvalidCredentials
		}
		observability.AuthAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()
	observability.AuthAttemptsTotal.WithLabelValues("success").Inc()
	return identity, nil
}

// Logout clears the verified identity. History is retained; only the
// account binding is dropped.
func (s *Session) Logout() {
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()
}

// Manager creates and returns sessions keyed by id. Sessions are created on
// first use; an unknown id is a new conversation, not an error.
type Manager struct {
	store           IdentityStore
	historyCapacity int

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager returns a manager whose sessions carry histories of the given
// capacity.
func NewManager(store IdentityStore, historyCapacity int) *Manager {
	return &Manager{
		store:           store,
		historyCapacity: historyCapacity,
		sessions:        make(map[string]*Session),
	}
}

// Get returns the session for id, creating it if absent.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := &Session{
		id:      id,
		store:   m.store,
		history: datatypes.NewConversationHistory(m.historyCapacity),
	}
	m.sessions[id] = s
	return s
}

// Lookup returns the session for id without creating one.
func (m *Manager) Lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// IDs returns the ids of all live sessions.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}
