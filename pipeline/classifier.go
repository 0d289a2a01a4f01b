// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package pipeline implements the turn-processing pipeline: intent
// classification, entity extraction, auth gating, data-source routing,
// structured-query templating, retrieval invocation and response assembly.
//
// The pipeline is deterministic control logic. It decides what data to
// fetch and how to assemble it; the actual stores are collaborators behind
// the StructuredExecutor and KnowledgeSearcher interfaces.
package pipeline

import (
	"sort"
	"strings"
	"unicode"

	"github.com/medequip-solutions/support-orchestrator/datatypes"
)

// IntentRule binds a keyword set to an intent with a fixed priority.
//
// Rules are evaluated deterministically: the highest-priority rule with at
// least one keyword hit wins, and equal priorities fall back to rule order.
// Authentication-sensitive intents carry higher priorities than
// informational ones so account-scoped phrasing never leaks into an
// unauthenticated retrieval-only path.
type IntentRule struct {
	Intent   datatypes.Intent
	Priority int
	Keywords []string
}

// DefaultRules returns the production rule table.
//
// Multi-word keywords match as phrases on the normalized text; single words
// match whole tokens only, so "iso" does not fire inside "comparison".
// Whole-token matching means plural forms must be listed explicitly, or
// account-scoped phrasings like "my orders" would fall through to the
// unauthenticated general-support path.
func DefaultRules() []IntentRule {
	return []IntentRule{
		{Intent: datatypes.IntentFinancial, Priority: 90,
			Keywords: []string{"invoice", "invoices", "payment", "payments", "bill", "bills",
				"billing", "outstanding balance"}},
		{Intent: datatypes.IntentWarrantyCoverage, Priority: 85,
			Keywords: []string{"warranty", "warranties", "amc", "coverage", "maintenance contract"}},
		{Intent: datatypes.IntentIssueResolution, Priority: 80,
			Keywords: []string{"ticket", "tickets", "issue", "issues", "problem", "problems",
				"error", "errors", "fault", "faults", "broken", "not working"}},
		{Intent: datatypes.IntentOrderDelivery, Priority: 75,
			Keywords: []string{"order", "orders", "shipment", "shipments", "delivery",
				"deliveries", "tracking", "shipped"}},
		{Intent: datatypes.IntentServiceScheduling, Priority: 70,
			Keywords: []string{"schedule", "appointment", "appointments", "technician",
				"technicians", "service visit", "preventive maintenance"}},
		{Intent: datatypes.IntentSpareParts, Priority: 65,
			Keywords: []string{"part", "parts", "spare", "spares", "stock", "consumable",
				"consumables"}},
		{Intent: datatypes.IntentProductInfo, Priority: 40,
			Keywords: []string{"spec", "specs", "specification", "specifications", "manual",
				"manuals", "datasheet", "datasheets", "power requirements"}},
		{Intent: datatypes.IntentCompliance, Priority: 35,
			Keywords: []string{"fda", "iso", "compliance", "certification", "certifications",
				"ce mark", "certified"}},
		{Intent: datatypes.IntentGeneralSupport, Priority: 30,
			Keywords: []string{"hours", "contact", "phone", "support", "help"}},
	}
}

// Classifier maps raw user text to a single Intent.
//
// It is a pure function over its rule table: no hidden state, no side
// effects, and reclassifying the same text always yields the same tag.
// Classification never fails; unmatched text degrades to general_support.
type Classifier struct {
	rules []IntentRule
}

// NewClassifier builds a classifier from an explicit rule table. The table
// is copied and stably sorted by descending priority so callers can pass
// rules in any order without changing the outcome.
func NewClassifier(rules []IntentRule) *Classifier {
	sorted := make([]IntentRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return &Classifier{rules: sorted}
}

// Classify returns the intent for the given raw text.
//
// Empty or whitespace-only input classifies as unknown, which downstream
// bypasses data fetch entirely. Any other text that matches no rule
// classifies as general_support with an unstructured-only plan.
func (c *Classifier) Classify(text string) datatypes.Intent {
	normalized, tokens := normalizeText(text)
	if len(tokens) == 0 {
		return datatypes.IntentUnknown
	}

	for _, rule := range c.rules {
		if matchCount(normalized, tokens, rule.Keywords) > 0 {
			return rule.Intent
		}
	}
	return datatypes.IntentGeneralSupport
}

// normalizeText lowercases the input and splits it into alphanumeric
// tokens. The joined token string is used for phrase keywords.
func normalizeText(text string) (string, map[string]bool) {
	lower := strings.ToLower(text)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make(map[string]bool, len(fields))
	for _, f := range fields {
		tokens[f] = true
	}
	return strings.Join(fields, " "), tokens
}

// matchCount counts keyword hits: whole-token matches for single words,
// substring matches on the normalized text for phrases.
func matchCount(normalized string, tokens map[string]bool, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(normalized, kw) {
				count++
			}
		} else if tokens[kw] {
			count++
		}
	}
	return count
}
