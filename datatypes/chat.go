// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// This file contains request and response types for the chat, auth and
// ingest endpoints. Core model types live in intent.go, entities.go,
// turn.go and identity.go.
package datatypes

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MaxMessageContentBytes is the maximum size of a single user message.
// Larger payloads are rejected at validation time to bound memory use.
const MaxMessageContentBytes = 32 * 1024 // 32KB

// chatValidate is the shared validator instance for request datatypes.
var chatValidate *validator.Validate

func init() {
	chatValidate = validator.New()
	_ = chatValidate.RegisterValidation("maxbytes", validateMaxBytes)
}

// validateMaxBytes enforces the byte limit (not rune count) on message
// content so multi-byte text cannot sidestep the bound.
func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxMessageContentBytes
}

func generateUUID() string {
	return uuid.NewString()
}

// =============================================================================
// Chat Turn
// =============================================================================

// ChatTurnRequest is the body for POST /v1/chat.
//
// SessionID names the per-session state (auth identity + history) the turn
// runs against; turns for the same session are serialized by the session
// manager. Message is the raw user text fed to the classifier and
// extractor.
type ChatTurnRequest struct {
	RequestID string `json:"request_id" validate:"omitempty,uuid4"`
	Timestamp int64  `json:"timestamp" validate:"gte=0"`
	SessionID string `json:"session_id" validate:"required"`
	Message   string `json:"message" validate:"required,maxbytes"`
}

// Validate validates the request fields after JSON binding.
func (r *ChatTurnRequest) Validate() error {
	return chatValidate.Struct(r)
}

// EnsureDefaults populates RequestID and Timestamp when the client omitted
// them, so every turn is traceable in logs.
func (r *ChatTurnRequest) EnsureDefaults() {
	if r.RequestID == "" {
		r.RequestID = generateUUID()
	}
	if r.Timestamp == 0 {
		r.Timestamp = time.Now().UnixMilli()
	}
}

// ChatTurnResponse is the reply for one processed turn.
//
// Intent and DataPlan echo the pipeline's routing decision so front-ends
// can render auth prompts or source badges; Passages carries the retrieved
// snippets that backed the reply, when any.
type ChatTurnResponse struct {
	ResponseID string             `json:"response_id"`
	RequestID  string             `json:"request_id"`
	Timestamp  int64              `json:"timestamp"`
	SessionID  string             `json:"session_id"`
	Reply      string             `json:"reply"`
	Intent     Intent             `json:"intent"`
	DataPlan   DataPlan           `json:"data_plan"`
	AuthNeeded bool               `json:"auth_needed,omitempty"`
	Passages   []RetrievedPassage `json:"passages,omitempty"`
}

// NewChatTurnResponse creates a response with server-side ID and timestamp.
func NewChatTurnResponse(requestID, sessionID, reply string) *ChatTurnResponse {
	return &ChatTurnResponse{
		ResponseID: generateUUID(),
		RequestID:  requestID,
		Timestamp:  time.Now().UnixMilli(),
		SessionID:  sessionID,
		Reply:      reply,
	}
}

// =============================================================================
// Authentication
// =============================================================================

// AuthRequest is the body for POST /v1/sessions/:sessionId/auth.
//
// Submitting both fields empty is an explicit logout: it clears the held
// identity and never reports failure. Anything else is an exact-match
// credential check (email compared case-insensitively).
type AuthRequest struct {
	Email    string `json:"email"`
	ClientID string `json:"client_id"`
}

// IsLogout reports whether the request is an explicit clear.
func (r *AuthRequest) IsLogout() bool {
	return r.Email == "" && r.ClientID == ""
}

// AuthResponse reports the outcome of an authenticate or logout call.
type AuthResponse struct {
	Authenticated bool      `json:"authenticated"`
	Identity      *Identity `json:"identity,omitempty"`
	Message       string    `json:"message,omitempty"`
}

// =============================================================================
// Document Ingestion
// =============================================================================

// IngestDocumentRequest is the body for POST /v1/documents. The document is
// chunked and indexed into the knowledge corpus; the turn pipeline never
// calls this path, it only benefits from the resulting corpus.
type IngestDocumentRequest struct {
	Title string `json:"title" validate:"required"`
	Text  string `json:"text" validate:"required"`
}

// Validate validates the request fields after JSON binding.
func (r *IngestDocumentRequest) Validate() error {
	return chatValidate.Struct(r)
}
