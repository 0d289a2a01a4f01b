// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"

	"github.com/medequip-solutions/support-orchestrator/datatypes"
	"github.com/medequip-solutions/support-orchestrator/session"
)

// HandleAuthenticate verifies a credential pair against the session.
//
// An empty pair is an explicit logout and always succeeds. Invalid
// credentials return 401 with a retry prompt and leave any previously
// verified identity untouched.
func HandleAuthenticate(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := chatTracer.Start(c.Request.Context(), "HandleAuthenticate")
		defer span.End()

		sessionID := c.Param("sessionId")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session id is required"})
			return
		}

		var req datatypes.AuthRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		sess := sessions.Get(sessionID)
		identity, err := sess.Authenticate(ctx, req.Email, req.ClientID)
		if err != nil {
			if errors.Is(err, datatypes.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, datatypes.AuthResponse{
					Authenticated: false,
					Message:       "We couldn't verify those credentials. Please check your email and Client ID and try again.",
				})
				return
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Authentication lookup failed", "session_id", sessionID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication unavailable"})
			return
		}

		if req.IsLogout() {
			c.JSON(http.StatusOK, datatypes.AuthResponse{
				Authenticated: false,
				Message:       "You have been signed out.",
			})
			return
		}

		slog.Info("Session authenticated", "session_id", sessionID, "client_id", identity.ClientID)
		c.JSON(http.StatusOK, datatypes.AuthResponse{
			Authenticated: true,
			Identity:      identity,
			Message:       "Welcome, " + identity.Name + ".",
		})
	}
}

// HandleLogout clears the session's verified identity.
func HandleLogout(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session id is required"})
			return
		}

		if sess, ok := sessions.Lookup(sessionID); ok {
			sess.Logout()
		}
		c.JSON(http.StatusOK, datatypes.AuthResponse{
			Authenticated: false,
			Message:       "You have been signed out.",
		})
	}
}
