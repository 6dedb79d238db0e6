// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the inkwell TUI.
package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/inkwell-tui/internal/ui/styles"
)

// =============================================================================
// SPINNER MODEL
// =============================================================================

// Spinner is a loading spinner with a message and an elapsed timer.
type Spinner struct {
	spinner spinner.Model

	message   string
	detail    string
	startTime time.Time

	isActive  bool
	showTimer bool

	theme *styles.Theme
}

// NewSpinner creates a spinner with the default line animation.
func NewSpinner(theme *styles.Theme) Spinner {
	s := spinner.New()
	s.Spinner = fromConfig(styles.LineSpinner)

	return Spinner{
		spinner:   s,
		message:   "Loading",
		showTimer: true,
		theme:     theme,
	}
}

// NewThinkingSpinner creates the spinner shown while the backend
// prepares a reply.
func NewThinkingSpinner(theme *styles.Theme) Spinner {
	s := NewSpinner(theme)
	s.message = "Thinking"
	s.SetConfig(styles.DotsSpinner)
	return s
}

// NewConnectingSpinner creates the spinner for connection tests.
func NewConnectingSpinner(theme *styles.Theme) Spinner {
	s := NewSpinner(theme)
	s.message = "Connecting"
	s.showTimer = false
	s.SetConfig(styles.PulseSpinner)
	return s
}

// fromConfig converts a styles spinner config to a bubbles spinner.
func fromConfig(cfg styles.SpinnerConfig) spinner.Spinner {
	return spinner.Spinner{
		Frames: cfg.Frames,
		FPS:    cfg.Duration(),
	}
}

// SetConfig switches the animation.
func (s *Spinner) SetConfig(cfg styles.SpinnerConfig) {
	s.spinner.Spinner = fromConfig(cfg)
}

// SetMessage sets the text displayed next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.message = msg
}

// SetDetail sets additional detail text below the spinner.
func (s *Spinner) SetDetail(detail string) {
	s.detail = detail
}

// SetShowTimer enables or disables the elapsed time display.
func (s *Spinner) SetShowTimer(show bool) {
	s.showTimer = show
}

// =============================================================================
// STATE MANAGEMENT
// =============================================================================

// Start activates the spinner and records the start time.
func (s *Spinner) Start() tea.Cmd {
	s.isActive = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.isActive = false
}

// IsActive returns whether the spinner is currently running.
func (s *Spinner) IsActive() bool {
	return s.isActive
}

// Elapsed returns the duration since the spinner started.
func (s *Spinner) Elapsed() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the spinner.
func (s Spinner) Init() tea.Cmd {
	return nil
}

// Update handles messages for the spinner.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.isActive {
		return s, nil
	}

	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner line.
func (s Spinner) View() string {
	if !s.isActive {
		return ""
	}

	result := s.theme.Spinner.Render(s.spinner.View()) +
		" " + s.theme.ThinkingText.Render(s.message) +
		s.theme.Spinner.Render("...")

	if s.showTimer && !s.startTime.IsZero() {
		result += s.theme.ThinkingTime.Render(" (" + formatElapsed(time.Since(s.startTime)) + ")")
	}

	if s.detail != "" {
		result += "\n" + s.theme.ThinkingTime.PaddingLeft(2).Render(s.detail)
	}

	return result
}
