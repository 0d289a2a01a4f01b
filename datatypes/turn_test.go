// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"fmt"
	"testing"
)

func TestHistoryFIFOEviction(t *testing.T) {
	h := NewConversationHistory(4)

	for i := 0; i < 6; i++ {
		h.Append(Turn{Role: RoleUser, Text: fmt.Sprintf("turn-%d", i)})
	}

	if h.Len() != 4 {
		t.Fatalf("len = %d, want capacity 4", h.Len())
	}
	turns := h.Snapshot()
	if turns[0].Text != "turn-2" || turns[3].Text != "turn-5" {
		t.Errorf("eviction order wrong: first=%s last=%s", turns[0].Text, turns[3].Text)
	}
}

func TestHistoryPairAppendAtomic(t *testing.T) {
	h := NewConversationHistory(4)
	h.Append(
		Turn{Role: RoleUser, Text: "q1"}, Turn{Role: RoleAssistant, Text: "a1"},
		Turn{Role: RoleUser, Text: "q2"}, Turn{Role: RoleAssistant, Text: "a2"},
	)
	h.Append(Turn{Role: RoleUser, Text: "q3"}, Turn{Role: RoleAssistant, Text: "a3"})

	turns := h.Snapshot()
	if turns[0].Text != "q2" {
		t.Errorf("oldest retained turn = %s, want q2", turns[0].Text)
	}
	if turns[len(turns)-1].Text != "a3" {
		t.Errorf("newest turn = %s, want a3", turns[len(turns)-1].Text)
	}
}

func TestHistorySnapshotIsCopy(t *testing.T) {
	h := NewConversationHistory(4)
	h.Append(Turn{Role: RoleUser, Text: "original"})

	snap := h.Snapshot()
	snap[0].Text = "mutated"

	if h.Snapshot()[0].Text != "original" {
		t.Error("snapshot mutation leaked into the history")
	}
}

func TestHistoryDefaultCapacity(t *testing.T) {
	for _, capacity := range []int{0, -5} {
		h := NewConversationHistory(capacity)
		if h.Capacity() != DefaultHistoryCapacity {
			t.Errorf("capacity(%d) = %d, want default %d", capacity, h.Capacity(), DefaultHistoryCapacity)
		}
	}
}

func TestIntentPlans(t *testing.T) {
	cases := []struct {
		intent   Intent
		plan     DataPlan
		needAuth bool
	}{
		{IntentOrderDelivery, PlanStructured, true},
		{IntentServiceScheduling, PlanStructured, true},
		{IntentWarrantyCoverage, PlanStructured, true},
		{IntentFinancial, PlanStructured, true},
		{IntentSpareParts, PlanStructured, true},
		{IntentIssueResolution, PlanBoth, true},
		{IntentProductInfo, PlanUnstructured, false},
		{IntentCompliance, PlanUnstructured, false},
		{IntentGeneralSupport, PlanUnstructured, false},
		{IntentUnknown, PlanNone, false},
	}

	for _, tc := range cases {
		if got := tc.intent.Plan(); got != tc.plan {
			t.Errorf("%s.Plan() = %s, want %s", tc.intent, got, tc.plan)
		}
		if got := tc.intent.RequiresAuth(); got != tc.needAuth {
			t.Errorf("%s.RequiresAuth() = %v, want %v", tc.intent, got, tc.needAuth)
		}
	}
}

func TestChatTurnRequestValidation(t *testing.T) {
	req := &ChatTurnRequest{SessionID: "s1", Message: "hello"}
	if err := req.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	req.EnsureDefaults()
	if req.RequestID == "" || req.Timestamp == 0 {
		t.Error("EnsureDefaults left fields empty")
	}

	missing := &ChatTurnRequest{Message: "hello"}
	if err := missing.Validate(); err == nil {
		t.Error("missing session id accepted")
	}

	oversize := &ChatTurnRequest{SessionID: "s1", Message: string(make([]byte, MaxMessageContentBytes+1))}
	if err := oversize.Validate(); err == nil {
		t.Error("oversize message accepted")
	}
}
