// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package routes wires the HTTP surface onto a gin engine.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medequip-solutions/support-orchestrator/handlers"
	"github.com/medequip-solutions/support-orchestrator/knowledge"
	"github.com/medequip-solutions/support-orchestrator/pipeline"
	"github.com/medequip-solutions/support-orchestrator/session"
)

// SetupRoutes registers every endpoint on the router.
func SetupRoutes(
	router *gin.Engine,
	sessions *session.Manager,
	pipe *pipeline.Pipeline,
	searcher *knowledge.Searcher,
) {
	router.GET("/health", handlers.HealthCheck())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.POST("/chat", handlers.HandleChatTurn(sessions, pipe))
		v1.POST("/sessions/:sessionId/auth", handlers.HandleAuthenticate(sessions))
		v1.POST("/sessions/:sessionId/logout", handlers.HandleLogout(sessions))
		v1.GET("/sessions/:sessionId/history", handlers.GetSessionHistory(sessions))
		v1.GET("/sessions", handlers.ListSessions(sessions))
		v1.POST("/documents", handlers.CreateDocument(searcher))
	}
}
