// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides the data model for the support orchestrator.
//
// This file defines the closed intent enumeration and its derived routing
// attributes. Intents are assigned by the rule-based classifier in the
// pipeline package; everything downstream (auth gating, data-source routing,
// SQL template selection, response composition) keys off the values here.
package datatypes

// Intent is a closed category describing what the user is asking for.
//
// The set is fixed: adding a member means adding a classifier rule, a
// routing decision, and usually a SQL template. IntentGeneralSupport absorbs
// anything the rules don't recognize.
type Intent string

const (
	IntentOrderDelivery     Intent = "order_delivery"
	IntentProductInfo       Intent = "product_info"
	IntentServiceScheduling Intent = "service_scheduling"
	IntentWarrantyCoverage  Intent = "warranty_coverage"
	IntentIssueResolution   Intent = "issue_resolution"
	IntentFinancial         Intent = "financial"
	IntentSpareParts        Intent = "spare_parts"
	IntentCompliance        Intent = "compliance"
	IntentGeneralSupport    Intent = "general_support"
	IntentUnknown           Intent = "unknown"
)

// DataPlan is the decision of which backing store(s) answer a turn.
type DataPlan string

const (
	// PlanStructured answers from the relational store only.
	PlanStructured DataPlan = "structured"

	// PlanUnstructured answers from the knowledge corpus only.
	PlanUnstructured DataPlan = "unstructured"

	// PlanBoth fetches from both stores; the legs run independently and a
	// failure of one never blocks the other.
	PlanBoth DataPlan = "both"

	// PlanNone skips data fetch entirely (unknown intent).
	PlanNone DataPlan = "none"
)

// RequiresAuth reports whether the intent touches identity-scoped records.
//
// Account-scoped intents (orders, warranties, tickets, invoices, parts
// stock, service visits) must never reach the structured store without a
// verified identity on the session.
func (i Intent) RequiresAuth() bool {
	switch i {
	case IntentOrderDelivery, IntentServiceScheduling, IntentWarrantyCoverage,
		IntentIssueResolution, IntentFinancial, IntentSpareParts:
		return true
	default:
		return false
	}
}

// Plan returns the data-source plan derived from the intent.
//
// The mapping is fixed at classification time; the router dispatches on it
// without re-deciding.
func (i Intent) Plan() DataPlan {
	switch i {
	case IntentOrderDelivery, IntentServiceScheduling, IntentWarrantyCoverage,
		IntentFinancial, IntentSpareParts:
		return PlanStructured
	case IntentIssueResolution:
		return PlanBoth
	case IntentProductInfo, IntentCompliance, IntentGeneralSupport:
		return PlanUnstructured
	default:
		return PlanNone
	}
}

// Valid reports whether i is a member of the closed intent set.
func (i Intent) Valid() bool {
	switch i {
	case IntentOrderDelivery, IntentProductInfo, IntentServiceScheduling,
		IntentWarrantyCoverage, IntentIssueResolution, IntentFinancial,
		IntentSpareParts, IntentCompliance, IntentGeneralSupport, IntentUnknown:
		return true
	}
	return false
}
