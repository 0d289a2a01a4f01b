// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/medequip-solutions/support-orchestrator/datatypes"
	"github.com/medequip-solutions/support-orchestrator/pipeline"
	"github.com/medequip-solutions/support-orchestrator/session"
)

var chatTracer = otel.Tracer("medequip.orchestrator.handlers")

// HandleChatTurn processes one conversation turn: validate the request,
// resolve (or create) the session, run the pipeline, and return the reply.
func HandleChatTurn(sessions *session.Manager, pipe *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := chatTracer.Start(c.Request.Context(), "HandleChatTurn")
		defer span.End()

		var req datatypes.ChatTurnRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to parse the chat turn request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.EnsureDefaults()

		sess := sessions.Get(req.SessionID)
		result, err := pipe.ProcessTurn(ctx, sess, req.Message)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				// Client went away; nothing useful to write.
				c.Status(http.StatusRequestTimeout)
				return
			}
			slog.Error("Turn processing failed", "session_id", req.SessionID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "turn processing failed"})
			return
		}

		resp := datatypes.NewChatTurnResponse(req.RequestID, req.SessionID, result.Reply)
		resp.Intent = result.Intent
		resp.DataPlan = result.DataPlan
		resp.AuthNeeded = result.AuthNeeded
		resp.Passages = result.Passages
		c.JSON(http.StatusOK, resp)
	}
}
