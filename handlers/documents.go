// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"

	"github.com/medequip-solutions/support-orchestrator/datatypes"
	"github.com/medequip-solutions/support-orchestrator/knowledge"
)

// CreateDocument ingests a support document into the knowledge corpus.
// Returns 503 when the knowledge backend is not configured.
func CreateDocument(searcher *knowledge.Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := chatTracer.Start(c.Request.Context(), "CreateDocument")
		defer span.End()

		if searcher == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "knowledge base is not configured"})
			return
		}

		var req datatypes.IngestDocumentRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		chunks, err := searcher.Ingest(ctx, req.Title, req.Text)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Document ingestion failed", "title", req.Title, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "document ingestion failed"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"title": req.Title, "chunks": chunks})
	}
}
