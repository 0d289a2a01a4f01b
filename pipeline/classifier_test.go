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

func TestClassifyByKeyword(t *testing.T) {
	c := NewClassifier(DefaultRules())

	cases := []struct {
		text string
		want datatypes.Intent
	}{
		{"When will my order ORD-2024-0001 arrive?", datatypes.IntentOrderDelivery},
		{"I need a copy of invoice INV-2024-3456", datatypes.IntentFinancial},
		{"Is my patient monitor still under warranty?", datatypes.IntentWarrantyCoverage},
		{"The ventilator is not working", datatypes.IntentIssueResolution},
		{"Can you schedule a technician visit?", datatypes.IntentServiceScheduling},
		{"Do you have ECG electrodes in stock?", datatypes.IntentSpareParts},
		{"What are the power requirements for the MRI-3000?", datatypes.IntentProductInfo},
		{"Is the CT-4000 FDA approved?", datatypes.IntentCompliance},
		{"What are your support hours?", datatypes.IntentGeneralSupport},
	}

	for _, tc := range cases {
		if got := c.Classify(tc.text); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestClassifyPluralPhrasings(t *testing.T) {
	c := NewClassifier(DefaultRules())

	// Plural account-scoped phrasings must reach the auth-gated
	// structured intents, not fall through to general support.
	cases := []struct {
		text string
		want datatypes.Intent
	}{
		{"Where are my orders?", datatypes.IntentOrderDelivery},
		{"Show me my invoices", datatypes.IntentFinancial},
		{"List my open tickets", datatypes.IntentIssueResolution},
		{"What warranties do I have?", datatypes.IntentWarrantyCoverage},
		{"Show my upcoming appointments", datatypes.IntentServiceScheduling},
	}

	for _, tc := range cases {
		got := c.Classify(tc.text)
		if got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
		}
		if !got.RequiresAuth() {
			t.Errorf("Classify(%q) landed on an unauthenticated path", tc.text)
		}
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	c := NewClassifier(DefaultRules())

	// "invoice" (financial, 90) must beat "order" (order_delivery, 75)
	// when both keywords appear.
	got := c.Classify("Where is the invoice for my order?")
	if got != datatypes.IntentFinancial {
		t.Errorf("mixed keywords classified as %s, want %s", got, datatypes.IntentFinancial)
	}

	// "warranty" (85) must beat "problem" (80).
	got = c.Classify("There is a problem with my warranty")
	if got != datatypes.IntentWarrantyCoverage {
		t.Errorf("mixed keywords classified as %s, want %s", got, datatypes.IntentWarrantyCoverage)
	}
}

func TestClassifyFallbacks(t *testing.T) {
	c := NewClassifier(DefaultRules())

	if got := c.Classify(""); got != datatypes.IntentUnknown {
		t.Errorf("empty input classified as %s, want %s", got, datatypes.IntentUnknown)
	}
	if got := c.Classify("   \t  "); got != datatypes.IntentUnknown {
		t.Errorf("whitespace input classified as %s, want %s", got, datatypes.IntentUnknown)
	}
	if got := c.Classify("tell me something interesting"); got != datatypes.IntentGeneralSupport {
		t.Errorf("unmatched input classified as %s, want %s", got, datatypes.IntentGeneralSupport)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	c := NewClassifier(DefaultRules())

	text := "The scanner is broken, please open a ticket"
	first := c.Classify(text)
	for i := 0; i < 10; i++ {
		if got := c.Classify(text); got != first {
			t.Fatalf("classification changed between calls: %s then %s", first, got)
		}
	}
}

func TestClassifySingleWordsMatchWholeTokens(t *testing.T) {
	c := NewClassifier(DefaultRules())

	// "iso" must not fire inside "comparison".
	got := c.Classify("a comparison of imaging modalities")
	if got == datatypes.IntentCompliance {
		t.Errorf("substring keyword matched inside a larger token")
	}
}

func TestClassifierIgnoresRuleInputOrder(t *testing.T) {
	rules := DefaultRules()
	// Reverse the table; sorting must restore priority order.
	for i, j := 0, len(rules)-1; i < j; i, j = i+1, j-1 {
		rules[i], rules[j] = rules[j], rules[i]
	}
	c := NewClassifier(rules)

	got := c.Classify("Where is the invoice for my order?")
	if got != datatypes.IntentFinancial {
		t.Errorf("reversed rule table changed the outcome: got %s", got)
	}
}
