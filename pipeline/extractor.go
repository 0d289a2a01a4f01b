// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"regexp"

	"github.com/medequip-solutions/support-orchestrator/datatypes"
)

// entityPattern binds an entity kind to its fixed-format identifier regex.
type entityPattern struct {
	kind datatypes.EntityKind
	re   *regexp.Regexp
}

// Identifier formats follow the MedEquip record numbering scheme: a literal
// prefix, then a year group and a sequence number (ORD-2024-0001), or a
// prefix plus digits for client ids (ME-10001). Product models are short
// prefix-number tokens (CT-4000, PM-800).
var entityPatterns = []entityPattern{
	{datatypes.EntityOrderID, regexp.MustCompile(`\bORD-\d{4}-\d{4}\b`)},
	{datatypes.EntityTicketID, regexp.MustCompile(`\bTKT-\d{4}-\d{4}\b`)},
	{datatypes.EntityInvoiceID, regexp.MustCompile(`\bINV-\d{4}-\d{4}\b`)},
	{datatypes.EntityClientID, regexp.MustCompile(`\bME-\d{5}\b`)},
	{datatypes.EntitySerialNumber, regexp.MustCompile(`\b(?:US|CT)-\d{4}-\d{4}\b`)},
	{datatypes.EntityProductModel, regexp.MustCompile(`\b(?:MRI|CT|PM|DL|SR)-\d{3,4}\b`)},
}

// Extractor scans raw text for structured identifiers.
//
// Extraction never requires authentication and operates on the raw text
// only; absence of a pattern is not an error. When the same kind matches
// more than once, the leftmost occurrence is kept (documented tie-break).
type Extractor struct {
	patterns []entityPattern
}

// NewExtractor returns an extractor over the fixed identifier formats.
func NewExtractor() *Extractor {
	return &Extractor{patterns: entityPatterns}
}

// Extract returns the entity set recognized in text. Kinds with no match
// are simply absent from the result.
func (e *Extractor) Extract(text string) datatypes.EntitySet {
	out := datatypes.EntitySet{}
	for _, p := range e.patterns {
		if p.kind == datatypes.EntityProductModel {
			if m := firstModelMatch(p.re, text); m != "" {
				out[p.kind] = m
			}
			continue
		}
		if loc := p.re.FindStringIndex(text); loc != nil {
			out[p.kind] = text[loc[0]:loc[1]]
		}
	}
	return out
}

// firstModelMatch returns the leftmost product-model match that is not the
// leading half of a serial number. CT-2023-4000 is a serial; its "CT-2023"
// prefix must not surface as a model.
func firstModelMatch(re *regexp.Regexp, text string) string {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		end := loc[1]
		if end+1 < len(text) && text[end] == '-' && isDigit(text[end+1]) {
			continue
		}
		return text[loc[0]:loc[1]]
	}
	return ""
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
