// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/inkwell-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR TESTS
// =============================================================================

func testTheme() *styles.Theme {
	return styles.NewTheme(styles.Options{ThemeName: styles.ThemeDark})
}

func TestNewStatusBar(t *testing.T) {
	bar := NewStatusBar(testTheme())

	if bar.Status != StatusReady {
		t.Errorf("NewStatusBar() Status = %v, want %v", bar.Status, StatusReady)
	}
	if bar.Width != 80 {
		t.Errorf("NewStatusBar() Width = %d, want 80", bar.Width)
	}
	if !bar.ShowShortcuts {
		t.Error("NewStatusBar() ShowShortcuts should be true")
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusReady, "Ready"},
		{StatusWriting, "Writing..."},
		{StatusThinking, "Thinking..."},
		{StatusLoading, "Loading..."},
		{StatusError, "Error"},
		{Status(99), "Unknown"},
	}

	for _, tc := range tests {
		if got := tc.status.String(); got != tc.want {
			t.Errorf("Status(%d).String() = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestStatusBarOffline(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.SetWidth(80)
	bar.SetOnline(false)

	view := bar.View()
	if !strings.Contains(view, "offline") {
		t.Errorf("View() should contain %q, got %q", "offline", view)
	}
}

func TestStatusBarOnline(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.SetWidth(80)
	bar.SetOnline(true)

	view := bar.View()
	if !strings.Contains(view, "online") {
		t.Errorf("View() should contain %q, got %q", "online", view)
	}
}

func TestStatusBarSession(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.SetWidth(80)
	bar.SetSession("Morning pages", 12)

	view := bar.View()
	if !strings.Contains(view, "Morning pages") {
		t.Errorf("View() should contain session title, got %q", view)
	}
	if !strings.Contains(view, "(12)") {
		t.Errorf("View() should contain message count, got %q", view)
	}
}

func TestStatusBarRelock(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.SetWidth(80)
	bar.SetRelockIn(4*time.Minute + 5*time.Second)

	view := bar.View()
	if !strings.Contains(view, "lock 4:05") {
		t.Errorf("View() should contain relock countdown, got %q", view)
	}

	bar.SetRelockIn(0)
	view = bar.View()
	if strings.Contains(view, "lock") {
		t.Errorf("View() with zero relock should hide countdown, got %q", view)
	}
}

func TestStatusBarNarrow(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.SetWidth(40)
	bar.SetOnline(true)
	bar.SetSession("A very long session title that will not fit", 3)

	view := bar.View()
	if !strings.Contains(view, "on") {
		t.Errorf("narrow View() should contain compact connection, got %q", view)
	}
	// The narrow layout truncates the title.
	if strings.Contains(view, "that will not fit") {
		t.Errorf("narrow View() should truncate long titles, got %q", view)
	}
}

func TestStatusBarWideShortcuts(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.SetWidth(150)
	bar.SetOnline(true)

	view := bar.View()
	if !strings.Contains(view, "/help") {
		t.Errorf("wide View() should contain shortcut hints, got %q", view)
	}
	if !strings.Contains(view, "Ctrl+C") {
		t.Errorf("wide View() should contain the stop hint, got %q", view)
	}
}

func TestStatusBarWideMirror(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.SetWidth(150)
	bar.SetCachedEntries(1234)

	view := bar.View()
	if !strings.Contains(view, "1,234 entries mirrored") {
		t.Errorf("wide View() should show mirror size, got %q", view)
	}
}

func TestFormatRelock(t *testing.T) {
	tests := []struct {
		input time.Duration
		want  string
	}{
		{0, "0:00"},
		{5 * time.Second, "0:05"},
		{65 * time.Second, "1:05"},
		{10 * time.Minute, "10:00"},
		{-30 * time.Second, "0:00"},
	}

	for _, tc := range tests {
		if got := formatRelock(tc.input); got != tc.want {
			t.Errorf("formatRelock(%v) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
