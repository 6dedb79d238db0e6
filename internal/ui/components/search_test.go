// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/model"
)

// =============================================================================
// SEARCH OVERLAY TESTS
// =============================================================================

func typeString(so *SearchOverlay, s string) *SearchOverlay {
	for _, r := range s {
		so, _ = so.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return so
}

func testSearchPage() *api.SearchPage {
	return &api.SearchPage{
		Results: []api.SearchResult{
			{
				Entry:   model.Entry{ID: "e1", Title: "Rainy morning"},
				Snippet: "Grateful for the rain today",
			},
			{
				Entry:   model.Entry{ID: "e2", Title: "Trip planning"},
				Score:   0.87,
				Snippet: "Thinking about the coast",
			},
		},
		Total:   2,
		Page:    1,
		PerPage: 20,
	}
}

func TestSearchOverlaySubmit(t *testing.T) {
	so := NewSearchOverlay(testTheme())
	so.Show()

	so = typeString(so, "rain")
	so, cmd := so.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter with a query should emit a command")
	}

	msg, ok := cmd().(SearchRequestMsg)
	if !ok {
		t.Fatalf("enter emitted %T, want SearchRequestMsg", cmd())
	}
	if msg.Query != "rain" {
		t.Errorf("SearchRequestMsg.Query = %q, want %q", msg.Query, "rain")
	}
	if msg.Semantic {
		t.Error("SearchRequestMsg.Semantic should default to false")
	}
	if msg.Page != 1 {
		t.Errorf("SearchRequestMsg.Page = %d, want 1", msg.Page)
	}
}

func TestSearchOverlayEmptySubmit(t *testing.T) {
	so := NewSearchOverlay(testTheme())
	so.Show()

	_, cmd := so.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("enter with an empty query should not emit a command")
	}
}

func TestSearchOverlayOpenResult(t *testing.T) {
	so := NewSearchOverlay(testTheme())
	so.Show()
	so = typeString(so, "rain")
	so.SetResults("rain", testSearchPage(), false)

	// Enter on clean results opens the selected hit.
	so, cmd := so.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter on results should emit a command")
	}
	msg, ok := cmd().(SearchOpenEntryMsg)
	if !ok {
		t.Fatalf("enter emitted %T, want SearchOpenEntryMsg", cmd())
	}
	if msg.Entry == nil || msg.Entry.ID != "e1" {
		t.Errorf("SearchOpenEntryMsg.Entry = %v, want e1", msg.Entry)
	}
	if so.Visible() {
		t.Error("overlay should close after opening a hit")
	}
}

func TestSearchOverlayDirtyResubmits(t *testing.T) {
	so := NewSearchOverlay(testTheme())
	so.Show()
	so = typeString(so, "rain")
	so.SetResults("rain", testSearchPage(), false)

	// Editing the query makes Enter search again instead of opening.
	so = typeString(so, "y")
	so, cmd := so.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter after editing should emit a command")
	}
	msg, ok := cmd().(SearchRequestMsg)
	if !ok {
		t.Fatalf("enter emitted %T, want SearchRequestMsg", cmd())
	}
	if msg.Query != "rainy" {
		t.Errorf("SearchRequestMsg.Query = %q, want %q", msg.Query, "rainy")
	}
}

func TestSearchOverlaySemanticToggle(t *testing.T) {
	so := NewSearchOverlay(testTheme())
	so.Show()

	// Toggle with an empty query only flips the mode.
	so, cmd := so.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Error("ctrl+s with empty query should not emit a command")
	}
	if !so.Semantic() {
		t.Error("ctrl+s should enable semantic mode")
	}

	// With a query it re-searches in the new mode.
	so = typeString(so, "growth")
	so, cmd = so.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("ctrl+s with a query should re-search")
	}
	msg, ok := cmd().(SearchRequestMsg)
	if !ok {
		t.Fatalf("ctrl+s emitted %T, want SearchRequestMsg", cmd())
	}
	if msg.Semantic {
		t.Error("second toggle should search in text mode again")
	}
}

func TestSearchOverlayNavigation(t *testing.T) {
	so := NewSearchOverlay(testTheme())
	so.Show()
	so.SetResults("rain", testSearchPage(), false)

	so, _ = so.Update(tea.KeyMsg{Type: tea.KeyDown})
	so, cmd := so.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should emit a command")
	}
	msg, ok := cmd().(SearchOpenEntryMsg)
	if !ok {
		t.Fatalf("enter emitted %T, want SearchOpenEntryMsg", cmd())
	}
	if msg.Entry == nil || msg.Entry.ID != "e2" {
		t.Errorf("SearchOpenEntryMsg.Entry = %v, want e2", msg.Entry)
	}
}

func TestSearchOverlayReference(t *testing.T) {
	so := NewSearchOverlay(testTheme())
	so.Show()
	so.SetResults("rain", testSearchPage(), false)

	so, cmd := so.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd == nil {
		t.Fatal("ctrl+r should emit a command")
	}
	msg, ok := cmd().(EntryRefMsg)
	if !ok {
		t.Fatalf("ctrl+r emitted %T, want EntryRefMsg", cmd())
	}
	if msg.ID != "e1" {
		t.Errorf("EntryRefMsg.ID = %q, want %q", msg.ID, "e1")
	}
}

func TestSearchOverlayView(t *testing.T) {
	so := NewSearchOverlay(testTheme())
	so.SetSize(100, 30)
	so.Show()
	so.SetResults("rain", testSearchPage(), true)

	view := so.View()
	if !strings.Contains(view, "Rainy morning") {
		t.Errorf("View() should contain result titles, got %q", view)
	}
	if !strings.Contains(view, "mirror") {
		t.Errorf("View() should show the mirror badge while offline, got %q", view)
	}
	// The semantic hit renders its score.
	if !strings.Contains(view, "87%") {
		t.Errorf("View() should show the semantic score, got %q", view)
	}
}

func TestHighlightSnippetPreservesText(t *testing.T) {
	so := NewSearchOverlay(testTheme())

	// Styling must never change the characters, only wrap them.
	tests := []struct {
		snippet string
		query   string
	}{
		{"Grateful for the rain today", "rain"},
		{"Grateful for the rain today", "RAIN grateful"},
		{"no matches here", "zzz"},
		{"", "rain"},
		{"日記を書く日", "日記"},
	}

	for _, tc := range tests {
		got := so.highlightSnippet(tc.snippet, tc.query)
		if got != tc.snippet {
			t.Errorf("highlightSnippet(%q, %q) = %q, want text unchanged",
				tc.snippet, tc.query, got)
		}
	}
}
