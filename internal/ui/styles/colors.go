// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the inkwell TUI.
// Colors come from named palettes selected by the configured theme;
// appearance.custom_colors overrides individual roles at theme build.
package styles

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// PALETTE
// =============================================================================

// Palette holds every color role the theme builds styles from. Each
// role can be overridden by name through appearance.custom_colors.
type Palette struct {
	// Accent colors
	Accent     lipgloss.Color // primary accent, prompts, selections
	AccentDeep lipgloss.Color // accent backgrounds
	Info       lipgloss.Color // informational text, links
	Success    lipgloss.Color // success states, online indicator
	Warning    lipgloss.Color // warnings, offline indicator
	Danger     lipgloss.Color // errors, destructive actions

	// Surface colors
	Surface       lipgloss.Color // main background
	SurfaceDim    lipgloss.Color // headers, footers, status bar
	SurfaceBright lipgloss.Color // highlights, hovered rows
	Overlay       lipgloss.Color // borders, separators
	OverlayDim    lipgloss.Color // prominent borders

	// Text colors
	TextPrimary   lipgloss.Color // body text
	TextSecondary lipgloss.Color // labels, supporting text
	TextMuted     lipgloss.Color // hints, timestamps
	TextInverse   lipgloss.Color // text on accent backgrounds

	// Message bubble colors
	UserBg          lipgloss.Color
	UserFg          lipgloss.Color
	UserBorder      lipgloss.Color
	AssistantBg     lipgloss.Color
	AssistantFg     lipgloss.Color
	AssistantBorder lipgloss.Color
	SystemBg        lipgloss.Color
	SystemFg        lipgloss.Color
	SystemBorder    lipgloss.Color

	// Special
	Link        lipgloss.Color
	SelectionBg lipgloss.Color
}

// InkwellDark is the default palette. Washed ink blues on a night
// surface (Tokyo Night adjacent).
func InkwellDark() Palette {
	return Palette{
		Accent:     "#8EA6E6",
		AccentDeep: "#2E3A5C",
		Info:       "#7DCFFF",
		Success:    "#9ECE6A",
		Warning:    "#E0AF68",
		Danger:     "#F7768E",

		Surface:       "#1A1B26",
		SurfaceDim:    "#16161E",
		SurfaceBright: "#24283B",
		Overlay:       "#2F334D",
		OverlayDim:    "#3B4261",

		TextPrimary:   "#C0CAF5",
		TextSecondary: "#9AA5CE",
		TextMuted:     "#565F89",
		TextInverse:   "#1A1B26",

		UserBg:          "#283457",
		UserFg:          "#C0CAF5",
		UserBorder:      "#7AA2F7",
		AssistantBg:     "#232839",
		AssistantFg:     "#C5CCE8",
		AssistantBorder: "#565F89",
		SystemBg:        "#2E2A1F",
		SystemFg:        "#E0AF68",
		SystemBorder:    "#E0AF68",

		Link:        "#7DCFFF",
		SelectionBg: "#2E3A5C",
	}
}

// InkwellLight is the light palette. Fountain-pen blue on cream paper.
func InkwellLight() Palette {
	return Palette{
		Accent:     "#4A5D94",
		AccentDeep: "#D6DCEC",
		Info:       "#2E7DE9",
		Success:    "#587539",
		Warning:    "#8C6C3E",
		Danger:     "#C64343",

		Surface:       "#FAF6EE",
		SurfaceDim:    "#F1ECE1",
		SurfaceBright: "#FFFDF7",
		Overlay:       "#E3DCCC",
		OverlayDim:    "#D4CBB8",

		TextPrimary:   "#3B3630",
		TextSecondary: "#6B635A",
		TextMuted:     "#9A9083",
		TextInverse:   "#FAF6EE",

		UserBg:          "#E2E7F4",
		UserFg:          "#30407A",
		UserBorder:      "#4A5D94",
		AssistantBg:     "#F4EFE4",
		AssistantFg:     "#4A443C",
		AssistantBorder: "#C9BFA8",
		SystemBg:        "#F0E8D2",
		SystemFg:        "#79683B",
		SystemBorder:    "#C4A95E",

		Link:        "#2E7DE9",
		SelectionBg: "#D5DEF2",
	}
}

// ThemeDark and ThemeLight are the theme names accepted by
// appearance.theme and the /theme command.
const (
	ThemeDark  = "inkwell-dark"
	ThemeLight = "inkwell-light"
)

// PaletteFor returns the palette for a theme name. The second return
// is false for unknown names.
func PaletteFor(theme string) (Palette, bool) {
	switch strings.ToLower(theme) {
	case ThemeDark:
		return InkwellDark(), true
	case ThemeLight:
		return InkwellLight(), true
	default:
		return Palette{}, false
	}
}

// DefaultThemeName picks a theme from the terminal background when the
// config does not name one.
func DefaultThemeName(dark bool) string {
	if dark {
		return ThemeDark
	}
	return ThemeLight
}

// ThemeNames returns the known theme names for completion and /theme.
func ThemeNames() []string {
	return []string{ThemeDark, ThemeLight}
}

// =============================================================================
// CUSTOM COLOR OVERRIDES
// =============================================================================

// roleMap maps custom_colors role names to palette slots.
func (p *Palette) roleMap() map[string]*lipgloss.Color {
	return map[string]*lipgloss.Color{
		"accent":           &p.Accent,
		"accent_deep":      &p.AccentDeep,
		"info":             &p.Info,
		"success":          &p.Success,
		"warning":          &p.Warning,
		"danger":           &p.Danger,
		"surface":          &p.Surface,
		"surface_dim":      &p.SurfaceDim,
		"surface_bright":   &p.SurfaceBright,
		"overlay":          &p.Overlay,
		"overlay_dim":      &p.OverlayDim,
		"text":             &p.TextPrimary,
		"text_secondary":   &p.TextSecondary,
		"text_muted":       &p.TextMuted,
		"text_inverse":     &p.TextInverse,
		"user_bg":          &p.UserBg,
		"user_fg":          &p.UserFg,
		"user_border":      &p.UserBorder,
		"assistant_bg":     &p.AssistantBg,
		"assistant_fg":     &p.AssistantFg,
		"assistant_border": &p.AssistantBorder,
		"system_bg":        &p.SystemBg,
		"system_fg":        &p.SystemFg,
		"system_border":    &p.SystemBorder,
		"link":             &p.Link,
		"selection_bg":     &p.SelectionBg,
	}
}

// Apply overwrites palette roles from appearance.custom_colors. Role
// names are case-insensitive. Unknown names are returned sorted so the
// caller can surface typos instead of silently ignoring them.
func (p *Palette) Apply(overrides map[string]string) []string {
	if len(overrides) == 0 {
		return nil
	}

	roles := p.roleMap()
	var unknown []string

	for name, hex := range overrides {
		slot, ok := roles[strings.ToLower(name)]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		*slot = lipgloss.Color(hex)
	}

	sort.Strings(unknown)
	return unknown
}

// ColorRoles returns every role name Apply accepts, sorted.
func ColorRoles() []string {
	p := InkwellDark()
	roles := p.roleMap()

	names := make([]string, 0, len(roles))
	for name := range roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// CLI OUTPUT COLORS
// =============================================================================
// One-shot commands print to stdout without building a Theme, so these
// stay adaptive and follow the terminal background rather than the
// configured theme.

// SuccessHighContrast - bright green, readable for most color vision types
var SuccessHighContrast = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#22C55E"}

// ErrorHighContrast - bright red, distinct from green even for colorblind users
var ErrorHighContrast = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"}

// WarningHighContrast - bright amber, deuteranopia-friendly
var WarningHighContrast = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"}

// InfoHighContrast - bright blue, off the red-green spectrum
var InfoHighContrast = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#3B82F6"}

// LinkColor - accessible link color with sufficient contrast
var LinkColor = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"}

// StatusIndicatorSet contains shape indicators for status states.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Warning string
	Info    string
	Pending string
	Active  string
}

// StatusIndicators provides shape cues alongside colors.
// ACCESSIBILITY: ASCII-only so the cue survives any terminal and is
// visible without color.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
	Pending: "[ ]",
	Active:  "[*]",
}

// RenderSuccess renders a success message with its shape indicator.
func RenderSuccess(message string) string {
	style := lipgloss.NewStyle().
		Foreground(SuccessHighContrast).
		Bold(true)
	return style.Render(StatusIndicators.Success + " " + message)
}

// RenderError renders an error message with its shape indicator.
func RenderError(message string) string {
	style := lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)
	return style.Render(StatusIndicators.Error + " " + message)
}

// RenderWarning renders a warning message with its shape indicator.
func RenderWarning(message string) string {
	style := lipgloss.NewStyle().
		Foreground(WarningHighContrast).
		Bold(true)
	return style.Render(StatusIndicators.Warning + " " + message)
}

// RenderInfo renders an info message with its shape indicator.
func RenderInfo(message string) string {
	style := lipgloss.NewStyle().
		Foreground(InfoHighContrast).
		Bold(true)
	return style.Render(StatusIndicators.Info + " " + message)
}

// RenderStatus renders a message as success or error.
func RenderStatus(success bool, message string) string {
	if success {
		return RenderSuccess(message)
	}
	return RenderError(message)
}

// RenderLink renders text as a link.
// ACCESSIBILITY: the underline is the cue, not just the color.
func RenderLink(text string) string {
	style := lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)
	return style.Render(text)
}
