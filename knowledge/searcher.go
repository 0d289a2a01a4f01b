// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
	"go.opentelemetry.io/otel"

	"github.com/medequip-solutions/support-orchestrator/datatypes"
)

var tracer = otel.Tracer("medequip/knowledge")

// className is the Weaviate class holding support document chunks.
const className = "SupportDocument"

// Searcher performs vector retrieval over the support document corpus.
//
// Safe for concurrent use; the Weaviate client pools connections.
type Searcher struct {
	client   *weaviate.Client
	embedder Embedder
}

// NewSearcher returns a searcher over the given client and embedder.
func NewSearcher(client *weaviate.Client, embedder Embedder) *Searcher {
	return &Searcher{client: client, embedder: embedder}
}

// documentSchema defines the SupportDocument class. Vectors are supplied by
// the embedding sidecar, so the class vectorizer stays "none".
func documentSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       className,
		Description: "A chunk of a support, compliance or product document.",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{
				Name:         "title",
				DataType:     []string{"text"},
				Description:  "Title of the source document.",
				Tokenization: "word",
			},
			{
				Name:         "content",
				DataType:     []string{"text"},
				Description:  "Chunk text.",
				Tokenization: "word",
			},
			{
				Name:            "chunk_index",
				DataType:        []string{"int"},
				Description:     "Position of this chunk within the source document.",
				IndexFilterable: indexFilterable,
			},
		},
	}
}

// EnsureSchema creates the SupportDocument class if it does not exist.
func (s *Searcher) EnsureSchema(ctx context.Context) error {
	class := documentSchema()

	_, err := s.client.Schema().ClassGetter().WithClassName(class.Class).Do(ctx)
	if err == nil {
		slog.Info("Schema already exists", "class", class.Class)
		return nil
	}

	slog.Info("Schema not found, creating it", "class", class.Class)
	if err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("create schema for class %s: %w", class.Class, err)
	}
	return nil
}

// Search embeds the query and returns up to topK passages ordered by
// certainty. An empty corpus returns an empty slice; any transport or
// backend failure surfaces as DataUnavailableError.
func (s *Searcher) Search(ctx context.Context, query string, topK int) ([]datatypes.RetrievedPassage, error) {
	ctx, span := tracer.Start(ctx, "knowledge.Search")
	defer span.End()

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &datatypes.DataUnavailableError{Collaborator: "knowledge-base", Err: err}
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	// Certainty is requested instead of distance: it is always in [0,1]
	// regardless of the index metric.
	fields := []graphql.Field{
		{Name: "title"},
		{Name: "content"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "certainty"},
		}},
	}

	result, err := s.client.GraphQL().Get().
		WithClassName(className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		slog.Error("Failed to search support documents", "error", err)
		return nil, &datatypes.DataUnavailableError{Collaborator: "knowledge-base", Err: err}
	}
	if len(result.Errors) > 0 {
		err := fmt.Errorf("graphql error: %s", result.Errors[0].Message)
		return nil, &datatypes.DataUnavailableError{Collaborator: "knowledge-base", Err: err}
	}

	passages, err := parseSearchResults(result.Data)
	if err != nil {
		return nil, &datatypes.DataUnavailableError{Collaborator: "knowledge-base", Err: err}
	}
	slog.Debug("Retrieved support passages", "count", len(passages))
	return passages, nil
}

// searchResponse mirrors the GraphQL Get payload for SupportDocument.
type searchResponse struct {
	Get struct {
		SupportDocument []struct {
			Title      string `json:"title"`
			Content    string `json:"content"`
			Additional struct {
				Certainty *float64 `json:"certainty"`
			} `json:"_additional"`
		} `json:"SupportDocument"`
	} `json:"Get"`
}

func parseSearchResults(data map[string]models.JSONObject) ([]datatypes.RetrievedPassage, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("re-marshal search response: %w", err)
	}
	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}

	passages := make([]datatypes.RetrievedPassage, 0, len(parsed.Get.SupportDocument))
	for _, doc := range parsed.Get.SupportDocument {
		score := 0.0
		if doc.Additional.Certainty != nil {
			score = *doc.Additional.Certainty
		}
		passages = append(passages, datatypes.RetrievedPassage{
			Title: doc.Title,
			Text:  doc.Content,
			Score: score,
		})
	}
	return passages, nil
}
