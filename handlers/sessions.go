// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medequip-solutions/support-orchestrator/session"
)

// GetSessionHistory returns the retained turns of a session, oldest first.
// Unknown sessions return an empty list rather than 404: a session that
// was never spoken to is indistinguishable from one that aged out.
func GetSessionHistory(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session id is required"})
			return
		}

		sess, ok := sessions.Lookup(sessionID)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "turns": []any{}})
			return
		}

		turns := sess.History().Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"session_id":    sessionID,
			"turns":         turns,
			"authenticated": sess.Identity() != nil,
		})
	}
}

// ListSessions returns the ids of all live sessions.
func ListSessions(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sessions": sessions.IDs()})
	}
}
