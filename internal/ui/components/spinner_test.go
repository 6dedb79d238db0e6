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
// SPINNER TESTS
// =============================================================================

func TestNewSpinner(t *testing.T) {
	s := NewSpinner(testTheme())

	if s.message != "Loading" {
		t.Errorf("NewSpinner() message = %q, want %q", s.message, "Loading")
	}
	if !s.showTimer {
		t.Error("NewSpinner() showTimer should be true")
	}
	if s.isActive {
		t.Error("NewSpinner() should not be active initially")
	}
}

func TestNewThinkingSpinner(t *testing.T) {
	s := NewThinkingSpinner(testTheme())

	if s.message != "Thinking" {
		t.Errorf("NewThinkingSpinner() message = %q, want %q", s.message, "Thinking")
	}
}

func TestNewConnectingSpinner(t *testing.T) {
	s := NewConnectingSpinner(testTheme())

	if s.message != "Connecting" {
		t.Errorf("NewConnectingSpinner() message = %q, want %q", s.message, "Connecting")
	}
	if s.showTimer {
		t.Error("NewConnectingSpinner() should not show the timer")
	}
}

func TestSpinnerStartStop(t *testing.T) {
	s := NewSpinner(testTheme())

	cmd := s.Start()
	if cmd == nil {
		t.Error("Start() should return the tick command")
	}
	if !s.IsActive() {
		t.Error("spinner should be active after Start()")
	}

	s.Stop()
	if s.IsActive() {
		t.Error("spinner should be inactive after Stop()")
	}
}

func TestSpinnerViewInactive(t *testing.T) {
	s := NewSpinner(testTheme())

	if got := s.View(); got != "" {
		t.Errorf("View() while inactive = %q, want empty", got)
	}
}

func TestSpinnerViewActive(t *testing.T) {
	s := NewSpinner(testTheme())
	s.SetMessage("Saving")
	s.Start()

	view := s.View()
	if !strings.Contains(view, "Saving") {
		t.Errorf("View() should contain the message, got %q", view)
	}
	if !strings.Contains(view, "...") {
		t.Errorf("View() should contain the ellipsis, got %q", view)
	}
}

func TestSpinnerDetail(t *testing.T) {
	s := NewSpinner(testTheme())
	s.SetDetail("3 of 7 entries")
	s.Start()

	view := s.View()
	if !strings.Contains(view, "3 of 7 entries") {
		t.Errorf("View() should contain the detail line, got %q", view)
	}
}

func TestSpinnerElapsed(t *testing.T) {
	s := NewSpinner(testTheme())

	if s.Elapsed() != 0 {
		t.Errorf("Elapsed() before Start() = %v, want 0", s.Elapsed())
	}

	s.Start()
	time.Sleep(10 * time.Millisecond)
	if s.Elapsed() <= 0 {
		t.Error("Elapsed() after Start() should be positive")
	}
}

func TestFromConfig(t *testing.T) {
	got := fromConfig(styles.LineSpinner)

	if len(got.Frames) != len(styles.LineSpinner.Frames) {
		t.Errorf("fromConfig() frames = %d, want %d",
			len(got.Frames), len(styles.LineSpinner.Frames))
	}
	if got.FPS != styles.LineSpinner.Duration() {
		t.Errorf("fromConfig() FPS = %v, want %v", got.FPS, styles.LineSpinner.Duration())
	}
}
