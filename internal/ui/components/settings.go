// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/ui/styles"
)

// =============================================================================
// SETTINGS PANEL
// =============================================================================

// ConnectionTestRequestMsg asks the app to ping the backend.
type ConnectionTestRequestMsg struct{}

// connTestState tracks the in-panel connection test.
type connTestState int

const (
	connTestIdle connTestState = iota
	connTestRunning
	connTestOK
	connTestFailed
)

// SettingsPanel shows the active configuration, grouped by section.
// Values are read-only here; edits go through /config set so every
// change flows through the same validation path.
type SettingsPanel struct {
	cfg *config.Config

	testState   connTestState
	testLatency time.Duration
	testErr     string

	scroll  int
	width   int
	height  int
	visible bool

	theme *styles.Theme
}

// NewSettingsPanel creates a new settings panel.
func NewSettingsPanel(theme *styles.Theme) *SettingsPanel {
	return &SettingsPanel{theme: theme}
}

// =============================================================================
// STATE
// =============================================================================

// SetConfig installs the configuration snapshot to display.
func (s *SettingsPanel) SetConfig(cfg *config.Config) {
	s.cfg = cfg
}

// SetConnectionResult records the outcome of a backend ping.
func (s *SettingsPanel) SetConnectionResult(latency time.Duration, err error) {
	if err != nil {
		s.testState = connTestFailed
		s.testErr = err.Error()
		return
	}
	s.testState = connTestOK
	s.testLatency = latency
	s.testErr = ""
}

// SetSize sets the overlay dimensions.
func (s *SettingsPanel) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Show opens the panel.
func (s *SettingsPanel) Show() {
	s.visible = true
	s.scroll = 0
	s.testState = connTestIdle
}

// Hide closes the panel.
func (s *SettingsPanel) Hide() {
	s.visible = false
}

// Visible reports whether the panel is open.
func (s *SettingsPanel) Visible() bool {
	return s.visible
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the panel.
func (s *SettingsPanel) Init() tea.Cmd {
	return nil
}

// Update handles key messages while the panel is open.
func (s *SettingsPanel) Update(msg tea.Msg) (*SettingsPanel, tea.Cmd) {
	if !s.visible {
		return s, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch keyMsg.String() {
	case "esc", "q":
		s.Hide()
		return s, nil

	case "up", "k":
		if s.scroll > 0 {
			s.scroll--
		}
		return s, nil

	case "down", "j":
		s.scroll++
		return s, nil

	case "home", "g":
		s.scroll = 0
		return s, nil

	case "t":
		if s.testState != connTestRunning {
			s.testState = connTestRunning
			return s, func() tea.Msg {
				return ConnectionTestRequestMsg{}
			}
		}
		return s, nil
	}

	return s, nil
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the settings overlay.
func (s *SettingsPanel) View() string {
	if !s.visible {
		return ""
	}

	boxWidth := 64
	if s.width > 0 && s.width < boxWidth+6 {
		boxWidth = s.width - 6
	}
	if boxWidth < 44 {
		boxWidth = 44
	}
	innerWidth := boxWidth - 6

	header := s.theme.PickerHeader.Render("Settings")
	sep := lipgloss.NewStyle().Foreground(s.theme.Palette.OverlayDim).
		Render(strings.Repeat("-", innerWidth))

	var body string
	if s.cfg == nil {
		body = s.theme.PickerMeta.Render("No configuration loaded.")
	} else {
		body = s.renderSections(innerWidth)
	}

	footer := s.theme.PickerFooter.Render("t test connection   /config set edits   Esc close")

	parts := []string{header, sep, body, sep}
	if path, err := config.PathTOML(); err == nil {
		parts = append(parts, s.theme.SettingsHint.Render("Config file: "+path))
	}
	parts = append(parts, footer)

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	box := s.theme.SettingsBox.Width(boxWidth).Render(content)

	if s.width > 0 && s.height > 0 {
		return lipgloss.Place(
			s.width, s.height,
			lipgloss.Center, lipgloss.Center,
			box,
		)
	}
	return box
}

// renderSections renders every config section, windowed by scroll.
func (s *SettingsPanel) renderSections(width int) string {
	cfg := s.cfg

	var b strings.Builder

	section := func(name string) {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s.theme.SettingsSection.Render(name))
		b.WriteString("\n")
	}
	row := func(label, value string) {
		b.WriteString(s.theme.SettingsLabel.Render(label))
		b.WriteString(s.theme.SettingsValue.Render(value))
		b.WriteString("\n")
	}

	section("Backend")
	row("base_url", orUnset(cfg.Backend.BaseURL))
	row("api_key", maskKey(cfg.Backend.APIKey))
	row("timeout_secs", strconv.Itoa(cfg.Backend.TimeoutSecs))
	row("max_retries", strconv.Itoa(cfg.Backend.MaxRetries))
	row("rate_limit_rps", strconv.FormatFloat(cfg.Backend.RateLimitRPS, 'f', -1, 64))
	b.WriteString(s.renderConnTest())

	section("Chat")
	row("streaming", strconv.FormatBool(cfg.Chat.Streaming))
	row("default_persona_id", orUnset(cfg.Chat.DefaultPersonaID))
	row("text_size", cfg.Chat.TextSize)

	section("Appearance")
	row("theme", cfg.Appearance.Theme)
	if n := len(cfg.Appearance.CustomColors); n > 0 {
		row("custom_colors", fmtNumber(n)+" overrides")
	}
	if cfg.Appearance.MarkdownWidth > 0 {
		row("markdown_width", strconv.Itoa(cfg.Appearance.MarkdownWidth))
	} else {
		row("markdown_width", "terminal width")
	}

	section("Editor")
	if cfg.Editor.Command != "" {
		row("command", cfg.Editor.Command)
	} else {
		row("command", "$EDITOR")
	}

	section("Search")
	mode := "text"
	if cfg.Search.Semantic {
		mode = "semantic"
	}
	row("semantic", mode)
	row("page_size", strconv.Itoa(cfg.Search.PageSize))

	section("Log")
	row("level", cfg.Log.Level)
	row("file", orUnset(cfg.Log.File))

	section("Lock")
	row("enabled", strconv.FormatBool(cfg.Lock.Enabled))
	if cfg.Lock.Enabled {
		row("issuer", cfg.Lock.Issuer)
	}

	// Scroll window.
	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	height := s.height - 9
	if height < 5 {
		height = 5
	}
	maxScroll := len(lines) - height
	if maxScroll < 0 {
		maxScroll = 0
	}
	if s.scroll > maxScroll {
		s.scroll = maxScroll
	}
	end := s.scroll + height
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[s.scroll:end], "\n")
}

// renderConnTest renders the connection test line under the Backend
// section.
func (s *SettingsPanel) renderConnTest() string {
	label := s.theme.SettingsLabel.Render("connection")
	switch s.testState {
	case connTestRunning:
		return label + s.theme.InfoStyle.Render("testing...") + "\n"
	case connTestOK:
		ms := s.testLatency.Round(time.Millisecond)
		return label + s.theme.SuccessStyle.Render("[*] reachable ("+ms.String()+")") + "\n"
	case connTestFailed:
		return label + s.theme.ErrorStyle.Render("[X] "+s.testErr) + "\n"
	default:
		return label + s.theme.PickerMeta.Render("press t to test") + "\n"
	}
}

// maskKey hides all but the tail of the API key. Vault ciphertexts
// show as locked instead of leaking the blob.
func maskKey(key string) string {
	if key == "" {
		return "(none)"
	}
	if strings.HasPrefix(key, "ENC:") {
		return "(encrypted at rest)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}
