// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package knowledge

import (
	"strings"
	"testing"
)

func TestChunkTextShortInput(t *testing.T) {
	chunks := chunkText("a short document", 500, 50)
	if len(chunks) != 1 || chunks[0] != "a short document" {
		t.Errorf("chunks = %v", chunks)
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	if chunks := chunkText("   ", 500, 50); chunks != nil {
		t.Errorf("expected nil for blank input, got %v", chunks)
	}
}

func TestChunkTextCoversWholeDocument(t *testing.T) {
	text := strings.Repeat("warranty coverage terms and exclusions apply ", 40)
	chunks := chunkText(text, 200, 40)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) == 0 {
			t.Errorf("chunk %d is empty", i)
		}
		if len(c) > 200 {
			t.Errorf("chunk %d exceeds size: %d", i, len(c))
		}
	}

	// The final chunk must reach the end of the document.
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(strings.TrimSpace(text), last) {
		t.Error("final chunk does not end the document")
	}
}

func TestChunkTextWordBoundaries(t *testing.T) {
	text := strings.Repeat("electrode ", 100)
	for _, c := range chunkText(text, 95, 20) {
		for _, w := range strings.Fields(c) {
			if w != "electrode" {
				t.Fatalf("chunk split a word: %q", w)
			}
		}
	}
}
