// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the inkwell TUI.
package styles

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// SPINNER TESTS
// =============================================================================

func TestSpinnerDuration(t *testing.T) {
	tests := []struct {
		name    string
		spinner SpinnerConfig
		want    time.Duration
	}{
		{"line", LineSpinner, 100 * time.Millisecond},
		{"dots", DotsSpinner, time.Second / 6},
		{"pulse", PulseSpinner, 125 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := tt.spinner.Duration(); got != tt.want {
			t.Errorf("%s Duration() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSpinnerFrame(t *testing.T) {
	s := LineSpinner

	if got := s.Frame(0); got != "|" {
		t.Errorf("Frame(0) = %q, want |", got)
	}
	if got := s.Frame(1); got != "/" {
		t.Errorf("Frame(1) = %q, want /", got)
	}

	// Wraps around.
	if got := s.Frame(len(s.Frames)); got != s.Frames[0] {
		t.Errorf("Frame(%d) = %q, want wrap to %q", len(s.Frames), got, s.Frames[0])
	}

	// Negative ticks do not panic.
	if got := s.Frame(-3); got == "" {
		t.Error("Frame(-3) returned empty frame")
	}

	// Empty config is safe.
	empty := SpinnerConfig{FPS: 10}
	if got := empty.Frame(5); got != "" {
		t.Errorf("empty Frame(5) = %q, want empty", got)
	}
}

func TestSpinnersAreASCII(t *testing.T) {
	for _, tc := range []struct {
		name    string
		spinner SpinnerConfig
	}{
		{"line", LineSpinner},
		{"dots", DotsSpinner},
		{"pulse", PulseSpinner},
	} {
		for i, frame := range tc.spinner.Frames {
			for _, r := range frame {
				if r > 127 {
					t.Errorf("%s frame %d contains non-ASCII rune %q", tc.name, i, r)
				}
			}
		}
	}
}

// =============================================================================
// PROGRESS BAR TESTS
// =============================================================================

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		percent float64
		want    string
	}{
		{"empty", 10, 0, "----------"},
		{"full", 10, 100, "##########"},
		{"half", 10, 50, "#####-----"},
		{"zero width", 0, 50, ""},
		{"negative width", -5, 50, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderProgressBar(tt.width, tt.percent)
			if got != tt.want {
				t.Errorf("RenderProgressBar(%d, %v) = %q, want %q", tt.width, tt.percent, got, tt.want)
			}
		})
	}
}

func TestRenderProgressBarClamps(t *testing.T) {
	if got := RenderProgressBar(10, 150); got != strings.Repeat("#", 10) {
		t.Errorf("RenderProgressBar(10, 150) = %q, want full bar", got)
	}
	if got := RenderProgressBar(10, -20); got != strings.Repeat("-", 10) {
		t.Errorf("RenderProgressBar(10, -20) = %q, want empty bar", got)
	}
}

func TestRenderProgressBarWidth(t *testing.T) {
	for _, percent := range []float64{0, 13, 37.5, 66.6, 99, 100} {
		got := RenderProgressBar(20, percent)
		if len(got) != 20 {
			t.Errorf("RenderProgressBar(20, %v) length = %d, want 20", percent, len(got))
		}
	}
}

// =============================================================================
// TREE CONNECTOR TESTS
// =============================================================================

func TestRenderTreeLine(t *testing.T) {
	if got := RenderTreeLine(false); got != "+- " {
		t.Errorf("RenderTreeLine(false) = %q, want %q", got, "+- ")
	}
	if got := RenderTreeLine(true); got != "`- " {
		t.Errorf("RenderTreeLine(true) = %q, want %q", got, "`- ")
	}
}
