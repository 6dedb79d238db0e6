// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the inkwell TUI.
package components

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/ui/styles"
)

// =============================================================================
// ERROR CATEGORIES
// =============================================================================

// ErrorCategory groups errors by what the user can do about them.
type ErrorCategory int

const (
	CategoryUnknown ErrorCategory = iota
	CategoryNetwork               // backend unreachable
	CategoryAuth                  // bad or missing API key
	CategoryBackend               // backend answered with a failure
	CategoryRateLimit             // backend throttling
	CategoryStream                // turn failed mid-stream
	CategoryConfig                // local configuration problem
)

// String returns the display label for the category.
func (c ErrorCategory) String() string {
	switch c {
	case CategoryNetwork:
		return "Connection"
	case CategoryAuth:
		return "Authentication"
	case CategoryBackend:
		return "Backend"
	case CategoryRateLimit:
		return "Rate limit"
	case CategoryStream:
		return "Interrupted"
	case CategoryConfig:
		return "Configuration"
	default:
		return "Error"
	}
}

// Categorize maps an error to a category plus suggestions the display
// renders under the message.
func Categorize(err error) (ErrorCategory, []string) {
	if err == nil {
		return CategoryUnknown, nil
	}

	var streamErr *api.StreamError
	if errors.As(err, &streamErr) {
		return CategoryStream, []string{
			"Press r to try again; your message is kept",
			"Partial text stays in the transcript until you retry",
		}
	}

	switch {
	case errors.Is(err, api.ErrNotConfigured):
		return CategoryConfig, []string{
			"Run 'inkwell setup' to point at your journal backend",
			"Or set backend.base_url in ~/.inkwell/config.toml",
		}
	case errors.Is(err, api.ErrAuthFailed):
		return CategoryAuth, []string{
			"Check backend.api_key in your config",
			"Run 'inkwell setup' to re-enter the key",
		}
	case errors.Is(err, api.ErrRateLimited):
		return CategoryRateLimit, []string{
			"Wait a moment before retrying",
			"Lower llm.requests_per_minute if this keeps happening",
		}
	case errors.Is(err, api.ErrServerError):
		return CategoryBackend, []string{
			"The backend hit an internal error; retry usually works",
			"Check the backend logs if it persists",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return CategoryNetwork, []string{
			"The backend took too long to answer",
			"Raise backend.timeout_seconds for slow networks",
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return CategoryNetwork, []string{
			"Check that the backend is running",
			"Verify backend.base_url in your config",
			"Reads fall back to the local mirror while offline",
		}
	}

	return CategoryUnknown, nil
}

// =============================================================================
// ERROR DISPLAY MODEL
// =============================================================================

// ErrorDisplay is a styled error box with suggestions and, for stream
// failures, retry actions.
type ErrorDisplay struct {
	category    ErrorCategory
	title       string
	message     string
	suggestions []string
	tip         string

	// showActions adds the try again / reset footer used for failed
	// turns.
	showActions bool

	visible bool
	theme   *styles.Theme
}

// NewErrorDisplay creates an empty, hidden error display.
func NewErrorDisplay(theme *styles.Theme) ErrorDisplay {
	return ErrorDisplay{theme: theme}
}

// Show fills the display from an error and makes it visible.
func (e *ErrorDisplay) Show(title string, err error) {
	category, suggestions := Categorize(err)
	e.category = category
	e.title = title
	if e.title == "" {
		e.title = category.String()
	}
	e.message = ""
	if err != nil {
		e.message = err.Error()
	}
	e.tip = ""
	e.suggestions = suggestions
	e.showActions = category == CategoryStream
	e.visible = true
}

// ShowMessage fills the display from plain strings.
func (e *ErrorDisplay) ShowMessage(title, message, tip string) {
	e.category = CategoryUnknown
	e.title = title
	e.message = message
	e.tip = tip
	e.suggestions = nil
	e.showActions = false
	e.visible = true
}

// SetActions toggles the retry footer.
func (e *ErrorDisplay) SetActions(show bool) {
	e.showActions = show
}

// SetTip sets the one-line tip under the suggestions.
func (e *ErrorDisplay) SetTip(tip string) {
	e.tip = tip
}

// Dismiss hides the display.
func (e *ErrorDisplay) Dismiss() {
	e.visible = false
}

// Visible reports whether the display should be rendered.
func (e *ErrorDisplay) Visible() bool {
	return e.visible
}

// Category returns the current category.
func (e *ErrorDisplay) Category() ErrorCategory {
	return e.category
}

// Title returns the current title.
func (e *ErrorDisplay) Title() string {
	return e.title
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the error box at the given width.
func (e ErrorDisplay) View(width int) string {
	if !e.visible {
		return ""
	}

	boxWidth := width - 4
	if boxWidth < 30 {
		boxWidth = 30
	}
	if boxWidth > 76 {
		boxWidth = 76
	}

	var b strings.Builder

	title := e.title
	if title == "" {
		title = e.category.String()
	}
	b.WriteString(e.theme.ErrorTitle.Render(styles.StatusIndicators.Error + " " + title))

	if e.message != "" {
		b.WriteString("\n")
		b.WriteString(e.theme.ErrorMessage.Render(e.message))
	}

	if len(e.suggestions) > 0 {
		b.WriteString("\n")
		for i, s := range e.suggestions {
			b.WriteString("\n")
			b.WriteString(e.theme.SnippetText.Render(styles.RenderTreeLine(i == len(e.suggestions)-1) + s))
		}
	}

	if e.tip != "" {
		b.WriteString("\n\n")
		b.WriteString(e.theme.ErrorTip.Render("Tip: " + e.tip))
	}

	if e.showActions {
		b.WriteString("\n\n")
		b.WriteString(e.renderActions())
	}

	return e.theme.ErrorBox.Width(boxWidth).Render(b.String())
}

// renderActions renders the footer for failed turns.
func (e ErrorDisplay) renderActions() string {
	key := e.theme.ShortcutKey
	desc := e.theme.ShortcutDesc

	return lipgloss.JoinHorizontal(lipgloss.Left,
		key.Render("r"), desc.Render(" try again   "),
		key.Render("R"), desc.Render(" reset session   "),
		key.Render("esc"), desc.Render(" dismiss"),
	)
}
