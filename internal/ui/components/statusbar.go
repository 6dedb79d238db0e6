// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the inkwell TUI.
package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/inkwell-tui/internal/ui/styles"
	"github.com/jeranaias/inkwell-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusWriting
	StatusThinking
	StatusLoading
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusWriting:
		return "Writing..."
	case StatusThinking:
		return "Thinking..."
	case StatusLoading:
		return "Loading..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns a shape for the status.
// ACCESSIBILITY: shapes carry the state alongside color.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusWriting:
		return "~"
	case StatusThinking, StatusLoading:
		return styles.StatusIndicators.Pending
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// StatusBar is the bottom status bar: connection state, active session,
// mirror size, relock countdown, and key hints.
type StatusBar struct {
	Online        bool
	SessionTitle  string
	MessageCount  int
	CachedEntries int
	RelockIn      time.Duration // zero hides the countdown
	Status        Status
	Width         int
	ShowShortcuts bool

	theme *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetSession updates the active session display.
func (s *StatusBar) SetSession(title string, messages int) {
	s.SessionTitle = title
	s.MessageCount = messages
}

// SetOnline updates the backend reachability indicator.
func (s *StatusBar) SetOnline(online bool) {
	s.Online = online
}

// SetCachedEntries updates the local mirror size.
func (s *StatusBar) SetCachedEntries(n int) {
	s.CachedEntries = n
}

// SetRelockIn updates the lock countdown. Zero hides it.
func (s *StatusBar) SetRelockIn(d time.Duration) {
	s.RelockIn = d
}

// SetStatus updates the current status.
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the status bar.
func (s *StatusBar) View() string {
	if s.Width < 60 {
		return s.viewNarrow()
	}
	if s.Width < 100 {
		return s.viewMedium()
	}
	return s.viewWide()
}

// viewNarrow renders a compact bar: [online] title status
func (s *StatusBar) viewNarrow() string {
	parts := []string{
		s.renderConnection(true),
	}

	if s.SessionTitle != "" {
		parts = append(parts, util.TruncateWidth(s.SessionTitle, 18))
	}

	parts = append(parts, s.renderStatus(true))

	return s.theme.StatusBar.Width(s.Width).Render(strings.Join(parts, " "))
}

// viewMedium renders: conn | title (n) | status | hints
func (s *StatusBar) viewMedium() string {
	sep := s.theme.ShortcutDesc.Render(" | ")

	parts := []string{
		s.renderConnection(false),
	}

	if s.SessionTitle != "" {
		title := util.TruncateWidth(s.SessionTitle, 24)
		if s.MessageCount > 0 {
			title += " (" + fmtNumber(s.MessageCount) + ")"
		}
		parts = append(parts, title)
	}

	if s.RelockIn > 0 {
		parts = append(parts, s.renderRelock())
	}

	parts = append(parts, s.renderStatus(false))

	bar := strings.Join(parts, sep)
	return s.theme.StatusBar.Width(s.Width).Render(bar)
}

// viewWide renders everything plus shortcuts, hints right-aligned.
func (s *StatusBar) viewWide() string {
	sep := s.theme.ShortcutDesc.Render(" | ")

	parts := []string{
		s.renderConnection(false),
	}

	if s.SessionTitle != "" {
		title := util.TruncateWidth(s.SessionTitle, 32)
		if s.MessageCount > 0 {
			title += " (" + fmtNumber(s.MessageCount) + " messages)"
		}
		parts = append(parts, title)
	}

	if s.CachedEntries > 0 {
		parts = append(parts, fmtNumber(s.CachedEntries)+" entries mirrored")
	}

	if s.RelockIn > 0 {
		parts = append(parts, s.renderRelock())
	}

	parts = append(parts, s.renderStatus(false))

	left := strings.Join(parts, sep)

	right := ""
	if s.ShowShortcuts {
		right = s.renderShortcuts()
	}

	gap := s.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
		right = ""
	}

	bar := left + strings.Repeat(" ", gap) + right
	return s.theme.StatusBar.Width(s.Width).Render(bar)
}

// renderConnection renders the backend reachability segment.
func (s *StatusBar) renderConnection(compact bool) string {
	if s.Online {
		label := "online"
		if compact {
			label = "on"
		}
		return s.theme.StatusOnline.Render(styles.StatusIndicators.Active + " " + label)
	}

	label := "offline"
	if compact {
		label = "off"
	}
	return s.theme.StatusOffline.Render(styles.StatusIndicators.Warning + " " + label)
}

// renderRelock renders the lock countdown segment.
func (s *StatusBar) renderRelock() string {
	return s.theme.StatusLocked.Render("lock " + formatRelock(s.RelockIn))
}

// renderStatus renders the status segment.
func (s *StatusBar) renderStatus(compact bool) string {
	style := s.theme.InfoStyle
	switch s.Status {
	case StatusReady:
		style = s.theme.SuccessStyle
	case StatusError:
		style = s.theme.ErrorStyle
	}

	if compact {
		return style.Render(s.Status.Icon())
	}
	return style.Render(s.Status.Icon() + " " + s.Status.String())
}

// renderShortcuts renders the key hint cluster.
func (s *StatusBar) renderShortcuts() string {
	key := s.theme.ShortcutKey
	desc := s.theme.ShortcutDesc

	return key.Render("/help") + desc.Render(" commands  ") +
		key.Render("Tab") + desc.Render(" complete  ") +
		key.Render("Ctrl+C") + desc.Render(" stop")
}

// formatRelock formats the relock countdown as m:ss under an hour.
func formatRelock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	minutes := total / 60
	seconds := total % 60

	pad := ""
	if seconds < 10 {
		pad = "0"
	}
	return fmtNumber(minutes) + ":" + pad + fmtNumber(seconds)
}
