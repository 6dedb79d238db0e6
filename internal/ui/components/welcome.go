// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the inkwell TUI.
package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/inkwell-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN MODEL
// =============================================================================

// Welcome is the first screen after launch (and after unlock). It shows
// where the journal lives and how to start writing.
type Welcome struct {
	version     string
	backendURL  string
	reachable   bool
	personaName string
	lockEnabled bool

	width  int
	height int

	theme *styles.Theme
}

// NewWelcome creates a new welcome screen.
func NewWelcome(theme *styles.Theme) Welcome {
	return Welcome{
		version: "dev",
		theme:   theme,
	}
}

// SetVersion sets the version string.
func (w *Welcome) SetVersion(version string) {
	w.version = version
}

// SetBackend sets the backend URL and whether it answered a ping.
func (w *Welcome) SetBackend(url string, reachable bool) {
	w.backendURL = url
	w.reachable = reachable
}

// SetPersona sets the default persona name shown on the info card.
func (w *Welcome) SetPersona(name string) {
	w.personaName = name
}

// SetLockEnabled marks the journal lock state.
func (w *Welcome) SetLockEnabled(enabled bool) {
	w.lockEnabled = enabled
}

// SetSize updates the dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the welcome screen.
func (w Welcome) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (w Welcome) Update(msg tea.Msg) (Welcome, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
	}
	return w, nil
}

// View renders the welcome screen.
// Responsive down to 80x24; below that the box shrinks before content
// is dropped.
func (w Welcome) View() string {
	width := w.width
	if width == 0 {
		width = 80
	}
	height := w.height
	if height == 0 {
		height = 24
	}

	boxWidth := 58
	if width < 66 {
		boxWidth = width - 8
	}
	if boxWidth < 36 {
		boxWidth = 36
	}
	if boxWidth > width-4 {
		boxWidth = width - 4
	}

	verticalPadding := 1
	horizontalPadding := 4
	if width < 66 {
		horizontalPadding = 2
	}

	boxOverhead := 2 + 2*verticalPadding
	availableLines := height - boxOverhead

	var content string
	switch {
	case availableLines >= 16:
		content = w.renderLogo()
		content += "\n\n" + w.renderVersion()
		content += "\n\n" + w.renderInfo()
		content += "\n\n" + w.renderPressKey()
	case availableLines >= 12:
		content = w.renderLogo()
		content += "\n" + w.renderVersion()
		content += "\n" + w.renderInfo()
		content += "\n" + w.renderPressKey()
	default:
		content = w.renderLogoCompact()
		content += "\n" + w.renderInfoCompact()
		content += "\n" + w.renderPressKey()
	}

	box := w.theme.WelcomeBox.
		Padding(verticalPadding, horizontalPadding).
		Width(boxWidth).
		Render(content)

	boxHeight := lipgloss.Height(box)
	if boxHeight >= height {
		// Align top so the logo is never cut off.
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, box)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// RENDER HELPERS
// =============================================================================

// renderLogo renders the ASCII art logo (6 lines).
func (w Welcome) renderLogo() string {
	if w.width >= 60 || w.width == 0 {
		logo := ` _       _                   _ _
(_)_ __ | | ____      _____| | |
| | '_ \| |/ /\ \ /\ / / _ \ | |
| | | | |   <  \ V  V /  __/ | |
|_|_| |_|_|\_\  \_/\_/ \___|_|_|`
		return w.theme.WelcomeLogo.Render(logo)
	}
	return w.renderLogoCompact()
}

// renderLogoCompact renders a text logo for narrow terminals.
func (w Welcome) renderLogoCompact() string {
	if w.width >= 36 {
		return w.theme.WelcomeLogo.Render(`+------------------+
|     inkwell      |
+------------------+`)
	}
	return w.theme.WelcomeLogo.Render("inkwell")
}

// renderVersion renders the version subtitle.
func (w Welcome) renderVersion() string {
	return w.theme.WelcomeVersion.Render("A quiet place to write. v" + w.version)
}

// renderInfo renders the backend, persona, and lock lines.
func (w Welcome) renderInfo() string {
	label := w.theme.WelcomeInfo.Width(10)

	lines := []string{
		label.Render("Journal:") + w.renderBackendIndicator(),
	}

	if w.personaName != "" {
		lines = append(lines,
			label.Render("Persona:")+w.theme.WelcomeKey.Render(w.personaName))
	}

	if w.lockEnabled {
		lines = append(lines,
			label.Render("Lock:")+w.theme.WelcomeInfo.Render("enabled"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderInfoCompact renders a single info line.
func (w Welcome) renderInfoCompact() string {
	return w.renderBackendIndicator()
}

// renderBackendIndicator renders the backend URL with its reachability.
func (w Welcome) renderBackendIndicator() string {
	if w.backendURL == "" {
		return w.theme.WarningStyle.Render("not configured") +
			w.theme.WelcomeInfo.Render("  (run 'inkwell setup')")
	}

	url := w.backendURL
	if runes := []rune(url); len(runes) > 32 {
		url = string(runes[:29]) + "..."
	}

	if w.reachable {
		return w.theme.SuccessStyle.Render(styles.StatusIndicators.Active+" ") +
			w.theme.WelcomeInfo.Render(url)
	}
	return w.theme.WarningStyle.Render(styles.StatusIndicators.Warning+" ") +
		w.theme.WelcomeInfo.Render(url+" (offline)")
}

// renderPressKey renders the start hint.
func (w Welcome) renderPressKey() string {
	return w.theme.WelcomeKey.Render("Enter") +
		w.theme.WelcomePressKey.Render(" start writing   ") +
		w.theme.WelcomeKey.Render("?") +
		w.theme.WelcomePressKey.Render(" help")
}
