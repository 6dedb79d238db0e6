// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRole_IsValid(t *testing.T) {
	valid := []Role{RoleUser, RoleAssistant, RoleSystem, RoleError}
	for _, r := range valid {
		if !r.IsValid() {
			t.Errorf("Role %q should be valid", r)
		}
	}
	if Role("tool").IsValid() {
		t.Error("Role \"tool\" should not be valid")
	}
	if Role("").IsValid() {
		t.Error("Empty role should not be valid")
	}
}

func TestRole_DisplayName(t *testing.T) {
	testCases := []struct {
		role     Role
		expected string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{RoleSystem, "System"},
		{RoleError, "Error"},
		{Role("custom"), "custom"},
	}
	for _, tc := range testCases {
		if got := tc.role.DisplayName(); got != tc.expected {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.role, got, tc.expected)
		}
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("sess1", "hello")
	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want %q", msg.Role, RoleUser)
	}
	if msg.SessionID != "sess1" {
		t.Errorf("SessionID = %q, want sess1", msg.SessionID)
	}
	if msg.Content != "hello" {
		t.Errorf("Content = %q, want hello", msg.Content)
	}
	if msg.ID == "" {
		t.Error("ID should be generated")
	}
	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("ID = %q, want msg_ prefix", msg.ID)
	}
	if msg.IsStreaming {
		t.Error("User message should not be streaming")
	}
}

func TestNewAssistantMessage_Streaming(t *testing.T) {
	msg := NewAssistantMessage("sess1")
	if !msg.IsStreaming {
		t.Error("New assistant message should be streaming")
	}
	if msg.Content != "" {
		t.Errorf("Content should start empty, got %q", msg.Content)
	}
}

func TestMessage_AppendAndFinalize(t *testing.T) {
	msg := NewAssistantMessage("sess1")
	fragments := []string{"Hello", ", ", "world", "!"}
	for _, f := range fragments {
		msg.AppendFragment(f)
	}

	// Display content shows the accumulation while streaming.
	if got := msg.GetDisplayContent(); got != "Hello, world!" {
		t.Errorf("GetDisplayContent during streaming = %q, want %q", got, "Hello, world!")
	}
	if msg.Content != "" {
		t.Errorf("Content should be empty until finalize, got %q", msg.Content)
	}

	msg.FinalizeStream(nil)

	// Finalized content equals the exact in-order concatenation.
	if msg.Content != "Hello, world!" {
		t.Errorf("Content after finalize = %q, want %q", msg.Content, "Hello, world!")
	}
	if msg.IsStreaming {
		t.Error("Message should not be streaming after finalize")
	}
	if got := msg.GetDisplayContent(); got != "Hello, world!" {
		t.Errorf("GetDisplayContent after finalize = %q", got)
	}
}

func TestMessage_FinalizeEmpty(t *testing.T) {
	msg := NewAssistantMessage("sess1")
	msg.FinalizeStream(nil)
	if msg.Content != "" {
		t.Errorf("Empty stream should finalize to empty content, got %q", msg.Content)
	}
	if msg.IsStreaming {
		t.Error("Message should not be streaming after finalize")
	}
}

func TestMessage_UnicodeFragments(t *testing.T) {
	msg := NewAssistantMessage("sess1")
	msg.AppendFragment("日本")
	msg.AppendFragment("語の")
	msg.AppendFragment("テキスト 🎉")
	msg.FinalizeStream(nil)
	if msg.Content != "日本語のテキスト 🎉" {
		t.Errorf("Unicode content = %q", msg.Content)
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := NewUserMessage("s", "line one\nline two with more text than fits")
	preview := msg.Preview(20)
	if strings.Contains(preview, "\n") {
		t.Errorf("Preview should flatten newlines: %q", preview)
	}
	if len([]rune(preview)) > 20 {
		t.Errorf("Preview too long: %d runes", len([]rune(preview)))
	}
	if !strings.HasSuffix(preview, "...") {
		t.Errorf("Truncated preview should end in ellipsis: %q", preview)
	}

	short := NewUserMessage("s", "short")
	if got := short.Preview(20); got != "short" {
		t.Errorf("Short preview = %q, want short", got)
	}
}

func TestMessage_EditedMarker(t *testing.T) {
	msg := NewUserMessage("s", "original")
	if msg.Edited() {
		t.Error("New message should not be edited")
	}
	msg.MarkEdited()
	if !msg.Edited() {
		t.Error("MarkEdited should set the marker")
	}
	if v, ok := msg.Metadata[MetaEdited].(bool); !ok || !v {
		t.Error("Metadata should carry edited=true")
	}
}

func TestMessage_HasReferences(t *testing.T) {
	msg := NewAssistantMessage("s")
	if msg.HasReferences() {
		t.Error("No references expected")
	}

	// Flag arrives in metadata before the lazy fetch.
	msg.Metadata = map[string]any{MetaHasReferences: true}
	if !msg.HasReferences() {
		t.Error("Metadata flag should count as having references")
	}

	msg.Metadata = nil
	msg.References = []EntryReference{{EntryID: "e1", Score: 0.9}}
	if !msg.HasReferences() {
		t.Error("Hydrated references should count")
	}
}

func TestMessage_EstimateTokens(t *testing.T) {
	msg := NewUserMessage("s", "12345678") // 8 chars -> 2 tokens
	if got := msg.EstimateTokens(); got != 2 {
		t.Errorf("EstimateTokens = %d, want 2", got)
	}
	msg.TokenCount = 42
	if got := msg.EstimateTokens(); got != 42 {
		t.Errorf("EstimateTokens with backend count = %d, want 42", got)
	}
}

func TestGenerateID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := generateID()
		if seen[id] {
			t.Fatalf("Duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestSession_AddMessage(t *testing.T) {
	s := NewSession()
	s.ID = "sess1"
	msg := NewUserMessage("", "first message")
	s.AddMessage(msg)

	if msg.SessionID != "sess1" {
		t.Errorf("AddMessage should stamp SessionID, got %q", msg.SessionID)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	if s.MessageCount != 1 {
		t.Errorf("MessageCount = %d, want 1", s.MessageCount)
	}
	if s.Title != "first message" {
		t.Errorf("Title should derive from first user message, got %q", s.Title)
	}
}

func TestSession_IsPersisted(t *testing.T) {
	s := NewSession()
	if s.IsPersisted() {
		t.Error("Session without id should not be persisted")
	}
	s.ID = "abc"
	if !s.IsPersisted() {
		t.Error("Session with id should be persisted")
	}
}

func TestSession_RemoveMessage(t *testing.T) {
	s := NewSession()
	s.ID = "sess1"
	m1 := NewUserMessage("", "one")
	m2 := NewMessage("", RoleAssistant, "two")
	s.AddMessage(m1)
	s.AddMessage(m2)

	if !s.RemoveMessage(m1.ID) {
		t.Fatal("RemoveMessage should find m1")
	}
	if s.Len() != 1 {
		t.Errorf("Len after remove = %d, want 1", s.Len())
	}
	if s.Messages[0].ID != m2.ID {
		t.Error("Wrong message removed")
	}
	if s.RemoveMessage("nonexistent") {
		t.Error("RemoveMessage should return false for unknown id")
	}
}

func TestSession_RemoveMessageRange(t *testing.T) {
	s := NewSession()
	s.ID = "sess1"
	for i := 0; i < 5; i++ {
		s.AddMessage(NewUserMessage("", strings.Repeat("x", i+1)))
	}

	removed := s.RemoveMessageRange(1, 3)
	if removed != 3 {
		t.Errorf("RemoveMessageRange removed %d, want 3", removed)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	if s.Messages[0].Content != "x" || s.Messages[1].Content != "xxxxx" {
		t.Error("Range delete removed wrong messages")
	}

	// Clamping and inverted ranges.
	if got := s.RemoveMessageRange(5, 10); got != 0 {
		t.Errorf("Out-of-range delete removed %d, want 0", got)
	}
	if got := s.RemoveMessageRange(1, 0); got != 0 {
		t.Errorf("Inverted range removed %d, want 0", got)
	}
	if got := s.RemoveMessageRange(-5, 0); got != 1 {
		t.Errorf("Clamped range removed %d, want 1", got)
	}
}

func TestSession_LastAssistantMessage(t *testing.T) {
	s := NewSession()
	if s.LastAssistantMessage() != nil {
		t.Error("Empty session has no assistant message")
	}
	s.AddMessage(NewUserMessage("", "q1"))
	a1 := NewMessage("", RoleAssistant, "a1")
	s.AddMessage(a1)
	s.AddMessage(NewUserMessage("", "q2"))

	if got := s.LastAssistantMessage(); got == nil || got.ID != a1.ID {
		t.Error("LastAssistantMessage should return a1")
	}
}

func TestDeriveTitle(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "What did I write in May?", "What did I write in May?"},
		{"newlines", "line\none", "line one"},
		{"empty", "   ", "New session"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveTitle(tc.input); got != tc.expected {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}

	long := DeriveTitle(strings.Repeat("a", 100))
	if len([]rune(long)) != 50 {
		t.Errorf("Long title length = %d, want 50", len([]rune(long)))
	}
	if !strings.HasSuffix(long, "...") {
		t.Error("Long title should end in ellipsis")
	}
}

// =============================================================================
// STATISTICS TESTS
// =============================================================================

func TestStatistics_Lifecycle(t *testing.T) {
	stats := NewStatistics()
	if stats.TimeToFirst() != 0 {
		t.Error("TimeToFirst should be zero before first fragment")
	}
	if stats.Total() != 0 {
		t.Error("Total should be zero before finalize")
	}

	stats.RecordFirstFragment()
	first := stats.FirstFragment
	time.Sleep(time.Millisecond)
	stats.RecordFirstFragment()
	if !stats.FirstFragment.Equal(first) {
		t.Error("RecordFirstFragment should only capture the first time")
	}
	if stats.FragmentCount != 2 {
		t.Errorf("FragmentCount = %d, want 2", stats.FragmentCount)
	}

	stats.Finalize()
	if stats.Total() <= 0 {
		t.Error("Total should be positive after finalize")
	}
}

// =============================================================================
// ENTRY TESTS
// =============================================================================

func TestEntry_Preview(t *testing.T) {
	e := &Entry{Content: "First line\nsecond line of the entry"}
	p := e.Preview(15)
	if strings.Contains(p, "\n") {
		t.Errorf("Preview should flatten newlines: %q", p)
	}
	if len([]rune(p)) > 15 {
		t.Errorf("Preview too long: %q", p)
	}
}

func TestEntry_Words(t *testing.T) {
	e := &Entry{Content: "one two three"}
	if got := e.Words(); got != 3 {
		t.Errorf("Words = %d, want 3", got)
	}
	e.WordCount = 99
	if got := e.Words(); got != 99 {
		t.Errorf("Words with backend count = %d, want 99", got)
	}
}

func TestEntry_HasTag(t *testing.T) {
	e := &Entry{Tags: []string{"travel", "spring"}}
	if !e.HasTag("travel") {
		t.Error("HasTag(travel) should be true")
	}
	if e.HasTag("Travel") {
		t.Error("HasTag is exact match; Travel should be false")
	}
	if e.HasTag("winter") {
		t.Error("HasTag(winter) should be false")
	}
}
