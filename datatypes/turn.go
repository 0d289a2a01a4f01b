// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"sync"
	"time"
)

// Role identifies the speaker of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one utterance in a conversation. Turns are immutable once
// appended; ConversationHistory owns them exclusively.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// DefaultHistoryCapacity bounds a conversation to the last N turns when no
// explicit capacity is configured: ten exchanges, with user and assistant
// turns counted separately.
const DefaultHistoryCapacity = 20

// ConversationHistory is a capacity-bounded, ordered log of past turns.
//
// Append is the only mutation and is guarded against concurrent appends
// from the same session; when the buffer is full the oldest turn is evicted
// first (FIFO). Reads return a snapshot so composer code never observes a
// half-appended state.
type ConversationHistory struct {
	mu       sync.Mutex
	capacity int
	turns    []Turn
}

// NewConversationHistory creates a history bounded to capacity turns.
// A non-positive capacity falls back to DefaultHistoryCapacity.
func NewConversationHistory(capacity int) *ConversationHistory {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &ConversationHistory{
		capacity: capacity,
		turns:    make([]Turn, 0, capacity),
	}
}

// Append adds turns to the log atomically, evicting the oldest entries once
// the configured capacity is exceeded. Appending a user/assistant pair in
// one call keeps the two halves of an exchange adjacent even under
// eviction.
func (h *ConversationHistory) Append(turns ...Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.turns = append(h.turns, turns...)
	if len(h.turns) > h.capacity {
		h.turns = h.turns[len(h.turns)-h.capacity:]
	}
}

// Snapshot returns a copy of the current turns, oldest first.
func (h *ConversationHistory) Snapshot() []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of turns currently held.
func (h *ConversationHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

// Capacity returns the configured maximum length.
func (h *ConversationHistory) Capacity() int {
	return h.capacity
}
