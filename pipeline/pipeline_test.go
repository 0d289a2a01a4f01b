// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medequip-solutions/support-orchestrator/datatypes"
)

// fakeSession implements Session without the session package, which would
// be an import cycle in tests.
type fakeSession struct {
	id       string
	identity *datatypes.Identity
	history  *datatypes.ConversationHistory
	mu       sync.Mutex
}

func newFakeSession(identity *datatypes.Identity) *fakeSession {
	return &fakeSession{
		id:       "sess-1",
		identity: identity,
		history:  datatypes.NewConversationHistory(datatypes.DefaultHistoryCapacity),
	}
}

func (s *fakeSession) ID() string                              { return s.id }
func (s *fakeSession) Identity() *datatypes.Identity           { return s.identity }
func (s *fakeSession) History() *datatypes.ConversationHistory { return s.history }
func (s *fakeSession) AcquireTurn()                            { s.mu.Lock() }
func (s *fakeSession) ReleaseTurn()                            { s.mu.Unlock() }

type fakeExecutor struct {
	result *datatypes.StructuredResult
	err    error
	calls  int
	lastQ  *StructuredQuery
}

func (f *fakeExecutor) Execute(_ context.Context, q *StructuredQuery) (*datatypes.StructuredResult, error) {
	f.calls++
	f.lastQ = q
	return f.result, f.err
}

type fakeSearcher struct {
	passages []datatypes.RetrievedPassage
	err      error
	calls    int
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int) ([]datatypes.RetrievedPassage, error) {
	f.calls++
	return f.passages, f.err
}

func TestProcessTurnGeneralSupport(t *testing.T) {
	searcher := &fakeSearcher{passages: []datatypes.RetrievedPassage{
		{Title: "Support Hours", Text: "Phone support is available 24/7 at +1-800-555-0100.", Score: 0.9},
	}}
	executor := &fakeExecutor{}
	pipe := New(executor, searcher, Options{}, nil)
	sess := newFakeSession(nil)

	result, err := pipe.ProcessTurn(context.Background(), sess, "What are your support hours?")
	require.NoError(t, err)

	assert.Equal(t, datatypes.IntentGeneralSupport, result.Intent)
	assert.Equal(t, datatypes.PlanUnstructured, result.DataPlan)
	assert.False(t, result.AuthNeeded)
	assert.Contains(t, result.Reply, "24/7")
	assert.Equal(t, 0, executor.calls, "no structured query for an informational turn")
	assert.Equal(t, 2, sess.History().Len(), "user and assistant turns appended")
}

func TestProcessTurnAuthGate(t *testing.T) {
	executor := &fakeExecutor{}
	searcher := &fakeSearcher{}
	pipe := New(executor, searcher, Options{}, nil)
	sess := newFakeSession(nil)

	result, err := pipe.ProcessTurn(context.Background(), sess, "When will my order ORD-2024-0001 arrive?")
	require.NoError(t, err)

	assert.Equal(t, datatypes.IntentOrderDelivery, result.Intent)
	assert.True(t, result.AuthNeeded)
	assert.Equal(t, AuthPromptReply, result.Reply)
	assert.Equal(t, "ORD-2024-0001", result.Entities.Get(datatypes.EntityOrderID),
		"entities are extracted even when the turn is gated")
	assert.Equal(t, 0, executor.calls, "no data source touched before authentication")
	assert.Equal(t, 0, searcher.calls)
	assert.Equal(t, 2, sess.History().Len(), "the gated exchange is still recorded")
}

func TestProcessTurnAuthenticatedOrderLookup(t *testing.T) {
	executor := &fakeExecutor{result: &datatypes.StructuredResult{
		Rows: []datatypes.Row{{
			"order_id":               "ORD-2024-0001",
			"delivery_status":        "In Transit",
			"expected_delivery_date": "2024-03-10",
		}},
	}}
	pipe := New(executor, &fakeSearcher{}, Options{}, nil)
	sess := newFakeSession(&datatypes.Identity{ClientID: "ME-10001", Name: "City General Hospital"})

	result, err := pipe.ProcessTurn(context.Background(), sess, "When will my order ORD-2024-0001 arrive?")
	require.NoError(t, err)

	assert.False(t, result.AuthNeeded)
	assert.Contains(t, result.Reply, "In Transit")
	assert.Contains(t, result.Reply, "2024-03-10")
	require.NotNil(t, executor.lastQ)
	assert.Equal(t, TemplateOrderShipmentLookup, executor.lastQ.Template)
	assert.Contains(t, executor.lastQ.Params, "ME-10001")
}

func TestProcessTurnBothPlanDegradesPerLeg(t *testing.T) {
	executor := &fakeExecutor{result: &datatypes.StructuredResult{
		Rows: []datatypes.Row{{"ticket_id": "TKT-2024-0001", "status": "Open"}},
	}}
	searcher := &fakeSearcher{err: &datatypes.DataUnavailableError{
		Collaborator: "knowledge-base", Err: errors.New("connection refused"),
	}}
	pipe := New(executor, searcher, Options{}, nil)
	sess := newFakeSession(&datatypes.Identity{ClientID: "ME-10001"})

	result, err := pipe.ProcessTurn(context.Background(), sess, "What's the status of ticket TKT-2024-0001?")
	require.NoError(t, err)

	assert.Equal(t, datatypes.PlanBoth, result.DataPlan)
	assert.Equal(t, 1, executor.calls)
	assert.Equal(t, 1, searcher.calls)
	assert.Contains(t, result.Reply, "TKT-2024-0001", "surviving leg answers alone")
	assert.False(t, strings.Contains(result.Reply, "refused"), "no raw error in the reply")
}

func TestProcessTurnLightweightMode(t *testing.T) {
	// Nil collaborators behave like unreachable backends.
	pipe := New(nil, nil, Options{}, nil)
	sess := newFakeSession(&datatypes.Identity{ClientID: "ME-10001"})

	result, err := pipe.ProcessTurn(context.Background(), sess, "Show me invoice INV-2024-3456")
	require.NoError(t, err)
	assert.Equal(t, UnavailableReply, result.Reply)
}

func TestProcessTurnCancelledContextSkipsHistory(t *testing.T) {
	pipe := New(&fakeExecutor{}, &fakeSearcher{}, Options{}, nil)
	sess := newFakeSession(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipe.ProcessTurn(ctx, sess, "What are your support hours?")
	require.Error(t, err)
	assert.Equal(t, 0, sess.History().Len(), "no partial turn recorded after cancellation")
}

func TestProcessTurnUnknownIntent(t *testing.T) {
	executor := &fakeExecutor{}
	searcher := &fakeSearcher{}
	pipe := New(executor, searcher, Options{}, nil)
	sess := newFakeSession(nil)

	result, err := pipe.ProcessTurn(context.Background(), sess, "   ")
	require.NoError(t, err)

	assert.Equal(t, datatypes.IntentUnknown, result.Intent)
	assert.Equal(t, CapabilityMenuReply, result.Reply)
	assert.Equal(t, 0, executor.calls)
	assert.Equal(t, 0, searcher.calls)
}

func TestProcessTurnHistoryEviction(t *testing.T) {
	searcher := &fakeSearcher{passages: []datatypes.RetrievedPassage{{Title: "T", Text: "x"}}}
	pipe := New(&fakeExecutor{}, searcher, Options{}, nil)
	sess := newFakeSession(nil)

	turns := datatypes.DefaultHistoryCapacity/2 + 3
	for i := 0; i < turns; i++ {
		_, err := pipe.ProcessTurn(context.Background(), sess, "what are your support hours?")
		require.NoError(t, err)
	}

	assert.Equal(t, datatypes.DefaultHistoryCapacity, sess.History().Len(),
		"history stays at capacity, oldest turns evicted")
}
