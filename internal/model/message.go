// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for journal chat and entries.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the role of a message sender.
type Role string

const (
	// RoleUser is a message from the journal owner.
	RoleUser Role = "user"

	// RoleAssistant is a reply from the backend assistant.
	RoleAssistant Role = "assistant"

	// RoleSystem is an instruction or notice not authored by either party.
	RoleSystem Role = "system"

	// RoleError is a locally appended placeholder describing a failed turn.
	// Error messages never round-trip to the backend.
	RoleError Role = "error"
)

// IsValid returns true if the role is a known value.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleError:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	case RoleError:
		return "Error"
	default:
		return string(r)
	}
}

// =============================================================================
// METADATA KEYS
// =============================================================================

// Well-known keys inside Message.Metadata. The backend treats metadata as
// free-form; these are the keys both sides actually exchange.
const (
	MetaEdited        = "edited"
	MetaHasReferences = "has_references"
	MetaToolUsage     = "tool_usage"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a chat session.
//
// A message always belongs to exactly one session. Assistant messages may
// carry entry references and tool-usage records; both arrive either inline
// in stream metadata or through a lazy per-message fetch.
type Message struct {
	// ID uniquely identifies the message. Backend-assigned for persisted
	// messages; locally generated for drafts and fallback cases.
	ID string `json:"id"`

	// SessionID is the owning session.
	SessionID string `json:"session_id,omitempty"`

	// Role identifies the sender.
	Role Role `json:"role"`

	// Content is the message text (markdown).
	Content string `json:"content"`

	// CreatedAt is when the message was created.
	CreatedAt time.Time `json:"created_at"`

	// Metadata is the backend's free-form metadata map. Known keys are the
	// Meta* constants; unknown keys round-trip untouched.
	Metadata map[string]any `json:"metadata,omitempty"`

	// TokenCount is the backend-reported token count, when provided.
	TokenCount int `json:"token_count,omitempty"`

	// References are journal entries that informed this message.
	// Hydrated from stream metadata or a lazy fetch; not part of the
	// message body the backend serves.
	References []EntryReference `json:"-"`

	// Tools are retrieval/search operations the backend ran for this turn.
	Tools []ToolUsage `json:"-"`

	// IsStreaming is true while the message is receiving fragments.
	IsStreaming bool `json:"-"`

	// streamContent accumulates fragments during streaming. Unexported so
	// it is never serialized; Content is set on finalize.
	streamContent strings.Builder

	// Stats records turn timing, populated for streamed assistant replies.
	Stats *Statistics `json:"-"`
}

// NewMessage creates a message with the given role and content.
func NewMessage(sessionID string, role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewUserMessage creates a user message for immediate local display.
// The backend assigns the persisted id; this one only has to be unique
// within the view.
func NewUserMessage(sessionID, content string) *Message {
	return NewMessage(sessionID, RoleUser, content)
}

// NewAssistantMessage creates an empty assistant message in streaming mode.
func NewAssistantMessage(sessionID string) *Message {
	m := NewMessage(sessionID, RoleAssistant, "")
	m.IsStreaming = true
	return m
}

// NewErrorMessage creates an error-role placeholder describing a failed
// turn. It is appended locally after the fallback path is exhausted.
func NewErrorMessage(sessionID, text string) *Message {
	return NewMessage(sessionID, RoleError, text)
}

// AppendFragment adds a streamed text fragment to the message.
// Uses a strings.Builder internally for efficient concatenation.
func (m *Message) AppendFragment(fragment string) {
	m.streamContent.WriteString(fragment)
}

// ResetStream discards the partial accumulation so a fallback attempt
// starts from an empty message instead of appending to the failed
// stream's fragments.
func (m *Message) ResetStream() {
	m.streamContent.Reset()
}

// FinalizeStream completes streaming: the accumulated fragments become the
// message content, in arrival order, and streaming mode ends. A nil stats
// is allowed for the non-streaming fallback path.
func (m *Message) FinalizeStream(stats *Statistics) {
	m.Content = m.streamContent.String()
	m.streamContent.Reset()
	m.IsStreaming = false
	m.Stats = stats
}

// GetDisplayContent returns the text to render: the partial accumulation
// while streaming, the final content otherwise.
func (m *Message) GetDisplayContent() string {
	if m.IsStreaming {
		return m.streamContent.String()
	}
	return m.Content
}

// Preview returns the first maxLen runes of content for list display,
// with newlines flattened to spaces.
func (m *Message) Preview(maxLen int) string {
	content := strings.ReplaceAll(m.GetDisplayContent(), "\n", " ")
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// Edited reports whether the message carries the edited marker.
func (m *Message) Edited() bool {
	return metaBool(m.Metadata, MetaEdited)
}

// MarkEdited sets the edited marker in metadata.
func (m *Message) MarkEdited() {
	m.SetMeta(MetaEdited, true)
}

// SetMeta sets one metadata key, allocating the map on first use.
func (m *Message) SetMeta(key string, value any) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

// HasReferences reports whether references exist, either hydrated or
// flagged in metadata (the flag arrives before the lazy fetch).
func (m *Message) HasReferences() bool {
	if len(m.References) > 0 {
		return true
	}
	return metaBool(m.Metadata, MetaHasReferences)
}

// EstimateTokens gives a rough token count when the backend did not supply
// one. Approximation: one token per four characters.
func (m *Message) EstimateTokens() int {
	if m.TokenCount > 0 {
		return m.TokenCount
	}
	return (len(m.GetDisplayContent()) + 3) / 4
}

func metaBool(meta map[string]any, key string) bool {
	if meta == nil {
		return false
	}
	v, ok := meta[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// generateID creates a unique local message id.
// Format: "msg_" + 16 hex chars from crypto/rand.
func generateID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// Degrade to a timestamp id rather than failing message creation.
		return "msg_" + hex.EncodeToString([]byte(time.Now().Format("150405.000")))
	}
	return "msg_" + hex.EncodeToString(b)
}

// =============================================================================
// TURN STATISTICS
// =============================================================================

// Statistics records timing for one streamed turn.
type Statistics struct {
	StartedAt     time.Time
	FirstFragment time.Time
	FinishedAt    time.Time
	FragmentCount int
}

// NewStatistics starts timing a turn.
func NewStatistics() *Statistics {
	return &Statistics{StartedAt: time.Now()}
}

// RecordFirstFragment captures time-to-first-fragment once; later calls
// only bump the fragment count.
func (s *Statistics) RecordFirstFragment() {
	if s.FirstFragment.IsZero() {
		s.FirstFragment = time.Now()
	}
	s.FragmentCount++
}

// Finalize marks the turn complete.
func (s *Statistics) Finalize() {
	s.FinishedAt = time.Now()
}

// TimeToFirst returns the delay before the first fragment arrived, or zero
// if none did.
func (s *Statistics) TimeToFirst() time.Duration {
	if s.FirstFragment.IsZero() {
		return 0
	}
	return s.FirstFragment.Sub(s.StartedAt)
}

// Total returns the full turn duration, or zero if not finalized.
func (s *Statistics) Total() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
