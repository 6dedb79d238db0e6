// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for journal chat and entries.
package model

import (
	"strings"
	"time"
)

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is a persisted conversation thread between the user and the
// assistant. Sessions are created lazily on the first user message or
// explicitly; the backend owns the canonical copy and this struct mirrors
// it.
type Session struct {
	// ID is the backend-assigned session identifier.
	ID string `json:"id"`

	// Title summarizes the session, usually derived from the first user
	// message by the backend.
	Title string `json:"title"`

	// Timestamps.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastAccessed time.Time `json:"last_accessed,omitempty"`

	// ContextSummary is the backend's rolling summary of older turns,
	// when it maintains one.
	ContextSummary string `json:"context_summary,omitempty"`

	// TemporalFilter restricts retrieval to a date window, when set.
	TemporalFilter *TemporalFilter `json:"temporal_filter,omitempty"`

	// ReferenceCount is the number of entry references across the
	// session's assistant messages.
	ReferenceCount int `json:"reference_count,omitempty"`

	// PersonaID references the persona active for this session, if any.
	// A session references at most one persona at a time.
	PersonaID string `json:"persona_id,omitempty"`

	// MessageCount is reported by session listings without hydrating
	// messages. Zero-message sessions are candidates for cleanup.
	MessageCount int `json:"message_count,omitempty"`

	// Messages is the hydrated message list. Listings leave it nil;
	// opening a session fills it.
	Messages []*Message `json:"messages,omitempty"`
}

// TemporalFilter restricts assistant retrieval to entries in a date range.
type TemporalFilter struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

// NewSession creates a local session shell. The zero ID marks it as not
// yet persisted; the backend assigns the real id on lazy creation.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsPersisted reports whether the backend has assigned this session an id.
func (s *Session) IsPersisted() bool {
	return s.ID != ""
}

// IsEmpty reports whether the session holds no messages.
func (s *Session) IsEmpty() bool {
	return len(s.Messages) == 0 && s.MessageCount == 0
}

// Len returns the number of hydrated messages.
func (s *Session) Len() int {
	return len(s.Messages)
}

// AddMessage appends a message and maintains the session invariants:
// the message's SessionID is stamped and UpdatedAt advances.
func (s *Session) AddMessage(msg *Message) {
	if msg == nil {
		return
	}
	msg.SessionID = s.ID
	s.Messages = append(s.Messages, msg)
	s.MessageCount = len(s.Messages)
	s.UpdatedAt = time.Now()
	if s.Title == "" && msg.Role == RoleUser {
		s.Title = DeriveTitle(msg.Content)
	}
}

// LastMessage returns the most recent message, or nil when empty.
func (s *Session) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// LastAssistantMessage returns the most recent assistant message, or nil.
func (s *Session) LastAssistantMessage() *Message {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i]
		}
	}
	return nil
}

// RemoveMessage deletes the message with the given id from the hydrated
// list. Returns true if a message was removed.
func (s *Session) RemoveMessage(id string) bool {
	for i, msg := range s.Messages {
		if msg.ID == id {
			s.Messages = append(s.Messages[:i], s.Messages[i+1:]...)
			s.MessageCount = len(s.Messages)
			s.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// RemoveMessageRange deletes the contiguous index range [start, end]
// (inclusive) from the hydrated list, mirroring the backend's range
// delete. Out-of-bounds indices are clamped; an inverted range is a no-op.
func (s *Session) RemoveMessageRange(start, end int) int {
	if start < 0 {
		start = 0
	}
	if end >= len(s.Messages) {
		end = len(s.Messages) - 1
	}
	if start > end || len(s.Messages) == 0 {
		return 0
	}
	removed := end - start + 1
	s.Messages = append(s.Messages[:start], s.Messages[end+1:]...)
	s.MessageCount = len(s.Messages)
	s.UpdatedAt = time.Now()
	return removed
}

// Touch records access for recency-sorted listings.
func (s *Session) Touch() {
	s.LastAccessed = time.Now()
}

// DeriveTitle builds a session title from the first user message, the way
// the backend does, so the picker shows something sensible before the
// server-side title arrives.
func DeriveTitle(content string) string {
	title := strings.TrimSpace(strings.ReplaceAll(content, "\n", " "))
	if title == "" {
		return "New session"
	}
	runes := []rune(title)
	if len(runes) > 50 {
		return string(runes[:47]) + "..."
	}
	return title
}
