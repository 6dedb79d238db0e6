// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat view.
package commands

import (
	"strings"
	"testing"
)

// TestCompleterComplete tests basic completion functionality
func TestCompleterComplete(t *testing.T) {
	registry := NewRegistry()
	completer := NewCompleter(registry)

	tests := []struct {
		name        string
		input       string
		cursorPos   int
		wantMinimum int    // minimum expected completions
		wantPrefix  string // expected prefix of first completion
	}{
		{
			name:        "bare slash lists everything",
			input:       "/",
			cursorPos:   1,
			wantMinimum: 15,
			wantPrefix:  "/",
		},
		{
			name:        "partial command",
			input:       "/se",
			cursorPos:   3,
			wantMinimum: 2, // /search and /sessions
			wantPrefix:  "/se",
		},
		{
			name:        "enum argument",
			input:       "/export ",
			cursorPos:   8,
			wantMinimum: 3, // markdown, md, json
		},
		{
			name:        "no match",
			input:       "/xyz",
			cursorPos:   4,
			wantMinimum: 0,
		},
		{
			name:        "plain journal text",
			input:       "thinking about the garden",
			cursorPos:   25,
			wantMinimum: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completions := completer.Complete(tt.input, tt.cursorPos)
			if len(completions) < tt.wantMinimum {
				t.Errorf("Complete() got %d completions, want at least %d", len(completions), tt.wantMinimum)
			}
			if tt.wantPrefix != "" && len(completions) > 0 {
				if !strings.HasPrefix(completions[0].Value, tt.wantPrefix) {
					t.Errorf("First completion %q doesn't start with %q", completions[0].Value, tt.wantPrefix)
				}
			}
		})
	}
}

// TestCompleterPlainTextReturnsNil verifies journal prose never triggers
// the popup
func TestCompleterPlainTextReturnsNil(t *testing.T) {
	completer := NewCompleter(NewRegistry())

	for _, input := range []string{"", "hello", "a sentence with / in it"} {
		if got := completer.Complete(input, len(input)); got != nil {
			t.Errorf("Complete(%q) = %v, want nil", input, got)
		}
	}
}

// TestCompleterEnumCase tests that enum completion is prefix
// case-insensitive
func TestCompleterEnumCase(t *testing.T) {
	completer := NewCompleter(NewRegistry())

	completions := completer.Complete("/export J", 9)
	if len(completions) != 1 {
		t.Fatalf("Complete(/export J) got %d completions, want 1", len(completions))
	}
	if completions[0].Value != "json" {
		t.Errorf("completion = %q, want %q", completions[0].Value, "json")
	}
}

// TestCompleterCallbacks tests dynamic completion callbacks
func TestCompleterCallbacks(t *testing.T) {
	completer := NewCompleter(NewRegistry())

	completer.SessionsFn = func() []SessionInfo {
		return []SessionInfo{
			{ID: "sess-1", Title: "Morning pages", UpdatedAt: "2025-05-20 09:00"},
			{ID: "sess-2", Title: "Trip notes", UpdatedAt: "2025-05-21 18:30"},
		}
	}
	completer.PersonasFn = func() []string {
		return []string{"Stoic", "Cheerleader"}
	}
	completer.TagsFn = func() []string {
		return []string{"gratitude", "work"}
	}
	completer.ConfigFn = func() []string {
		return []string{"appearance.theme", "chat.streaming"}
	}

	// Session id prefix.
	completions := completer.Complete("/load sess", 10)
	if len(completions) != 2 {
		t.Fatalf("session completion got %d results, want 2", len(completions))
	}

	// Session title substring.
	completions = completer.Complete("/load trip", 10)
	if len(completions) != 1 || completions[0].Value != "sess-2" {
		t.Errorf("title match = %v, want sess-2", completions)
	}

	// Persona names.
	completions = completer.Complete("/persona St", 12)
	if len(completions) != 1 || completions[0].Value != "Stoic" {
		t.Errorf("persona completion = %v, want Stoic", completions)
	}

	// Tag names.
	completions = completer.Complete("/entries g", 10)
	if len(completions) != 1 || completions[0].Value != "gratitude" {
		t.Errorf("tag completion = %v, want gratitude", completions)
	}

	// Config keys.
	completions = completer.Complete("/config app", 11)
	if len(completions) != 1 || completions[0].Value != "appearance.theme" {
		t.Errorf("config completion = %v, want appearance.theme", completions)
	}
}

// TestCompleterNilCallbacks tests that missing callbacks complete to
// nothing instead of panicking
func TestCompleterNilCallbacks(t *testing.T) {
	completer := NewCompleter(NewRegistry())

	for _, input := range []string{"/load x", "/persona x", "/entries x", "/config x"} {
		if got := completer.Complete(input, len(input)); len(got) != 0 {
			t.Errorf("Complete(%q) with nil callbacks = %v, want none", input, got)
		}
	}
}

// TestCompleterArgIndexBounds tests completion past the last defined
// argument
func TestCompleterArgIndexBounds(t *testing.T) {
	completer := NewCompleter(NewRegistry())
	completer.SessionsFn = func() []SessionInfo {
		return []SessionInfo{{ID: "sess-1"}}
	}

	// /load takes one argument; a second should complete to nothing.
	input := "/load sess-1 "
	if got := completer.Complete(input, len(input)); len(got) != 0 {
		t.Errorf("completion past final arg = %v, want none", got)
	}
}

// TestCalculateScore tests the scoring algorithm
func TestCalculateScore(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		partial    string
		wantHigher bool // true if score should be > 100
	}{
		{
			name:       "exact match",
			value:      "/help",
			partial:    "/help",
			wantHigher: true,
		},
		{
			name:       "prefix match",
			value:      "/help",
			partial:    "/hel",
			wantHigher: true,
		},
		{
			name:       "no match",
			value:      "/help",
			partial:    "xyz",
			wantHigher: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := calculateScore(tt.value, tt.partial)
			if tt.wantHigher && score <= 100 {
				t.Errorf("calculateScore() = %d, want > 100", score)
			}
			if !tt.wantHigher && score > 100 {
				t.Errorf("calculateScore() = %d, want <= 100", score)
			}
		})
	}
}

// TestSortCompletions tests that completions are sorted by score
func TestSortCompletions(t *testing.T) {
	completions := []Completion{
		{Value: "a", Score: 50},
		{Value: "b", Score: 150},
		{Value: "c", Score: 100},
	}

	sortCompletions(completions)

	if completions[0].Value != "b" {
		t.Errorf("First completion should be 'b' (highest score), got %q", completions[0].Value)
	}
	if completions[1].Value != "c" {
		t.Errorf("Second completion should be 'c', got %q", completions[1].Value)
	}
	if completions[2].Value != "a" {
		t.Errorf("Third completion should be 'a' (lowest score), got %q", completions[2].Value)
	}
}

// TestSortCompletions_TiesAlphabetical tests the tie-break
func TestSortCompletions_TiesAlphabetical(t *testing.T) {
	completions := []Completion{
		{Value: "zebra", Score: 100},
		{Value: "apple", Score: 100},
	}

	sortCompletions(completions)

	if completions[0].Value != "apple" {
		t.Errorf("Equal scores should sort alphabetically, got %q first", completions[0].Value)
	}
}

// TestTruncate tests the truncation helper
func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{
			name:   "no truncation needed",
			input:  "hello",
			maxLen: 10,
			want:   "hello",
		},
		{
			name:   "exact length",
			input:  "hello",
			maxLen: 5,
			want:   "hello",
		},
		{
			name:   "truncate with ellipsis",
			input:  "hello world",
			maxLen: 8,
			want:   "hello...",
		},
		{
			name:   "unicode no truncation",
			input:  "日記を書く",
			maxLen: 5,
			want:   "日記を書く",
		},
		{
			name:   "unicode truncation",
			input:  "日記を書く日",
			maxLen: 5,
			want:   "日記...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestCompletionState tests the CompletionState navigation
func TestCompletionState(t *testing.T) {
	cs := NewCompletionState()

	if cs.Visible {
		t.Error("New CompletionState should not be visible")
	}

	completions := []Completion{
		{Value: "a"},
		{Value: "b"},
		{Value: "c"},
	}
	cs.Update("test", completions)

	if !cs.Visible {
		t.Error("CompletionState should be visible after Update")
	}

	if cs.Selected != 0 {
		t.Errorf("Initial selection should be 0, got %d", cs.Selected)
	}

	cs.Next()
	if cs.Selected != 1 {
		t.Errorf("After Next(), selection should be 1, got %d", cs.Selected)
	}

	cs.Next()
	cs.Next() // wraps to 0
	if cs.Selected != 0 {
		t.Errorf("After wrapping, selection should be 0, got %d", cs.Selected)
	}

	cs.Prev() // wraps to last
	if cs.Selected != 2 {
		t.Errorf("After Prev() from 0, selection should be 2, got %d", cs.Selected)
	}

	accepted := cs.Accept()
	if accepted != "c" {
		t.Errorf("Accept() should return 'c', got %q", accepted)
	}

	if sel := cs.GetSelected(); sel == nil || sel.Value != "c" {
		t.Errorf("GetSelected() = %v, want c", sel)
	}

	cs.Clear()
	if cs.Visible {
		t.Error("CompletionState should not be visible after Clear")
	}
	if cs.GetSelected() != nil {
		t.Error("GetSelected() after Clear should be nil")
	}
}
