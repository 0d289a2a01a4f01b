// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	chunkSize    = 500
	chunkOverlap = 50
)

// Ingest splits a document into overlapping chunks, embeds each chunk and
// stores it under the SupportDocument class. Returns the number of chunks
// written.
func (s *Searcher) Ingest(ctx context.Context, title, text string) (int, error) {
	ctx, span := tracer.Start(ctx, "knowledge.Ingest")
	defer span.End()

	chunks := chunkText(text, chunkSize, chunkOverlap)
	for i, chunk := range chunks {
		vector, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			return i, fmt.Errorf("embed chunk %d of %q: %w", i, title, err)
		}

		_, err = s.client.Data().Creator().
			WithClassName(className).
			WithProperties(map[string]any{
				"title":       title,
				"content":     chunk,
				"chunk_index": i,
			}).
			WithVector(vector).
			Do(ctx)
		if err != nil {
			return i, fmt.Errorf("store chunk %d of %q: %w", i, title, err)
		}
	}

	slog.Info("Ingested document", "title", title, "chunks", len(chunks))
	return len(chunks), nil
}

// chunkText splits text into whole-word chunks of at most size bytes, with
// roughly overlap bytes of trailing words repeated at the start of the next
// chunk. A single word longer than size becomes its own chunk.
func chunkText(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	joined := strings.Join(words, " ")
	if size <= 0 || len(joined) <= size {
		return []string{joined}
	}
	if overlap >= size {
		overlap = size / 4
	}

	var chunks []string
	start := 0
	for start < len(words) {
		length := 0
		end := start
		for end < len(words) && length+len(words[end])+1 <= size+1 {
			length += len(words[end]) + 1
			end++
		}
		if end == start {
			end++
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}

		// Step back a few words for overlap, always making progress.
		back := end
		carried := 0
		for back > start+1 && carried < overlap {
			back--
			carried += len(words[back]) + 1
		}
		start = back
	}
	return chunks
}
