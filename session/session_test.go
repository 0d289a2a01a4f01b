// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/medequip-solutions/support-orchestrator/datatypes"
)

type fakeIdentityStore struct {
	identities map[string]*datatypes.Identity // keyed by email|client_id
	err        error
}

func (f *fakeIdentityStore) LookupIdentity(_ context.Context, email, clientID string) (*datatypes.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id, ok := f.identities[email+"|"+clientID]; ok {
		return id, nil
	}
	return nil, datatypes.ErrNotFound
}

func demoStore() *fakeIdentityStore {
	return &fakeIdentityStore{identities: map[string]*datatypes.Identity{
		"contact@cityhospital.com|ME-10001": {
			ClientID: "ME-10001", Name: "City General Hospital", Email: "contact@cityhospital.com",
		},
		"admin@lakesideimaging.com|ME-10002": {
			ClientID: "ME-10002", Name: "Lakeside Imaging Center", Email: "admin@lakesideimaging.com",
		},
	}}
}

func TestAuthenticateSuccess(t *testing.T) {
	m := NewManager(demoStore(), 20)
	sess := m.Get("s1")

	identity, err := sess.Authenticate(context.Background(), "contact@cityhospital.com", "ME-10001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ClientID != "ME-10001" {
		t.Errorf("identity = %+v", identity)
	}
	if sess.Identity() == nil {
		t.Error("identity not bound to the session")
	}
}

func TestAuthenticateInvalidKeepsPriorIdentity(t *testing.T) {
	m := NewManager(demoStore(), 20)
	sess := m.Get("s1")

	if _, err := sess.Authenticate(context.Background(), "contact@cityhospital.com", "ME-10001"); err != nil {
		t.Fatalf("setup auth failed: %v", err)
	}

	_, err := sess.Authenticate(context.Background(), "wrong@example.com", "ME-10001")
	if !errors.Is(err, datatypes.ErrInvalidCredentials) {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}
	if got := sess.Identity(); got == nil || got.ClientID != "ME-10001" {
		t.Errorf("failed attempt disturbed the prior identity: %+v", got)
	}
}

func TestAuthenticateReplacesIdentity(t *testing.T) {
	m := NewManager(demoStore(), 20)
	sess := m.Get("s1")
	ctx := context.Background()

	if _, err := sess.Authenticate(ctx, "contact@cityhospital.com", "ME-10001"); err != nil {
		t.Fatalf("first auth failed: %v", err)
	}
	if _, err := sess.Authenticate(ctx, "admin@lakesideimaging.com", "ME-10002"); err != nil {
		t.Fatalf("second auth failed: %v", err)
	}
	if got := sess.Identity(); got.ClientID != "ME-10002" {
		t.Errorf("identity = %s, want the replacement", got.ClientID)
	}
}

func TestAuthenticateEmptyPairClears(t *testing.T) {
	m := NewManager(demoStore(), 20)
	sess := m.Get("s1")
	ctx := context.Background()

	if _, err := sess.Authenticate(ctx, "contact@cityhospital.com", "ME-10001"); err != nil {
		t.Fatalf("setup auth failed: %v", err)
	}

	identity, err := sess.Authenticate(ctx, "", "")
	if err != nil {
		t.Fatalf("empty-pair auth must never fail: %v", err)
	}
	if identity != nil || sess.Identity() != nil {
		t.Error("empty pair did not clear the identity")
	}
}

func TestLogoutRetainsHistory(t *testing.T) {
	m := NewManager(demoStore(), 20)
	sess := m.Get("s1")

	sess.History().Append(datatypes.Turn{Role: datatypes.RoleUser, Text: "hello"})
	if _, err := sess.Authenticate(context.Background(), "contact@cityhospital.com", "ME-10001"); err != nil {
		t.Fatalf("auth failed: %v", err)
	}

	sess.Logout()
	if sess.Identity() != nil {
		t.Error("identity survived logout")
	}
	if sess.History().Len() != 1 {
		t.Error("logout must not drop history")
	}
}

func TestManagerReturnsSameSession(t *testing.T) {
	m := NewManager(demoStore(), 20)

	if m.Get("s1") != m.Get("s1") {
		t.Error("same id returned distinct sessions")
	}
	if m.Get("s1") == m.Get("s2") {
		t.Error("different ids shared a session")
	}

	if _, ok := m.Lookup("s2"); !ok {
		t.Error("Lookup missed a created session")
	}
	if _, ok := m.Lookup("never-seen"); ok {
		t.Error("Lookup invented a session")
	}
}
