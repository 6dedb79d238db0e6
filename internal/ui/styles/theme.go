// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the inkwell TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Text sizes accepted by chat.text_size. Larger sizes widen bubble
// padding and narrow the text column so the measure stays readable.
const (
	TextSizeSmall  = "small"
	TextSizeMedium = "medium"
	TextSizeLarge  = "large"
)

// Options selects the palette and scaling for a theme build. The app
// fills it from config; the zero value detects everything.
type Options struct {
	// ThemeName is an appearance.theme value. Empty or unknown names
	// fall back to the terminal background.
	ThemeName string

	// CustomColors overrides palette roles, from
	// appearance.custom_colors.
	CustomColors map[string]string

	// TextSize is a chat.text_size value. Empty means medium.
	TextSize string
}

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Name is the resolved theme name.
	Name string

	// Palette the styles were built from, after custom color overrides.
	Palette Palette

	// UnknownColorRoles lists custom_colors names that matched no role.
	UnknownColorRoles []string

	// TextSize is the normalized chat.text_size.
	TextSize string

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	SystemBubble    lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style
	CharCount        lipgloss.Style
	CharCountWarning lipgloss.Style
	CharCountDanger  lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar     lipgloss.Style
	StatusOnline  lipgloss.Style
	StatusOffline lipgloss.Style
	StatusLocked  lipgloss.Style
	ShortcutKey   lipgloss.Style
	ShortcutDesc  lipgloss.Style

	// ==========================================================================
	// COMPLETION POPUP STYLES
	// ==========================================================================

	CompletionPopup    lipgloss.Style
	CompletionItem     lipgloss.Style
	CompletionSelected lipgloss.Style
	CompletionMatch    lipgloss.Style

	// ==========================================================================
	// SPINNER AND STREAMING STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
	ThinkingTime lipgloss.Style
	StreamCursor lipgloss.Style

	// ==========================================================================
	// CODE BLOCK STYLES
	// ==========================================================================

	CodeBlock     lipgloss.Style
	CodeLangBadge lipgloss.Style
	CodeLineNum   lipgloss.Style

	// ==========================================================================
	// ERROR BOX STYLES
	// ==========================================================================

	ErrorBox     lipgloss.Style
	ErrorTitle   lipgloss.Style
	ErrorMessage lipgloss.Style
	ErrorTip     lipgloss.Style

	// ==========================================================================
	// PICKER AND BROWSER STYLES
	// ==========================================================================
	// Shared by the session picker, entry browser, and persona picker.

	PickerBox          lipgloss.Style
	PickerHeader       lipgloss.Style
	PickerItem         lipgloss.Style
	PickerItemSelected lipgloss.Style
	PickerID           lipgloss.Style
	PickerTitle        lipgloss.Style
	PickerMeta         lipgloss.Style
	PickerFooter       lipgloss.Style

	TagBadge       lipgloss.Style
	FavoriteMark   lipgloss.Style
	SnippetText    lipgloss.Style
	MatchHighlight lipgloss.Style
	ScoreText      lipgloss.Style

	// ==========================================================================
	// ANALYSIS VIEW STYLES
	// ==========================================================================

	AnalysisBox     lipgloss.Style
	AnalysisTitle   lipgloss.Style
	AnalysisSection lipgloss.Style
	AnalysisInsight lipgloss.Style

	// ==========================================================================
	// SETTINGS PANEL STYLES
	// ==========================================================================

	SettingsBox     lipgloss.Style
	SettingsSection lipgloss.Style
	SettingsLabel   lipgloss.Style
	SettingsValue   lipgloss.Style
	SettingsHint    lipgloss.Style

	// ==========================================================================
	// WELCOME SCREEN STYLES
	// ==========================================================================

	WelcomeBox      lipgloss.Style
	WelcomeLogo     lipgloss.Style
	WelcomeVersion  lipgloss.Style
	WelcomeInfo     lipgloss.Style
	WelcomeKey      lipgloss.Style
	WelcomePressKey lipgloss.Style

	// ==========================================================================
	// LOCK SCREEN STYLES
	// ==========================================================================

	LockBox    lipgloss.Style
	LockTitle  lipgloss.Style
	LockDigits lipgloss.Style
	LockHint   lipgloss.Style

	// ==========================================================================
	// STATUS INDICATOR STYLES
	// ==========================================================================

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
	LinkStyle    lipgloss.Style
}

// NewTheme builds a theme from the given options. Unknown theme names
// and color roles degrade to defaults rather than failing, so a stale
// config never blocks the UI from coming up.
func NewTheme(opts Options) *Theme {
	colorProfile := termenv.ColorProfile()
	isDark := termenv.HasDarkBackground()

	name := opts.ThemeName
	palette, ok := PaletteFor(name)
	if !ok {
		name = DefaultThemeName(isDark)
		palette, _ = PaletteFor(name)
	}

	unknown := palette.Apply(opts.CustomColors)

	textSize := opts.TextSize
	switch textSize {
	case TextSizeSmall, TextSizeMedium, TextSizeLarge:
	default:
		textSize = TextSizeMedium
	}

	t := &Theme{
		IsDark:            isDark,
		HasTrueColor:      colorProfile == termenv.TrueColor,
		ColorProfile:      colorProfile,
		Name:              name,
		Palette:           palette,
		UnknownColorRoles: unknown,
		TextSize:          textSize,
	}

	t.initStyles()
	return t
}

// bubblePadding returns horizontal and vertical bubble padding for the
// text size.
func (t *Theme) bubblePadding() (x, y int) {
	switch t.TextSize {
	case TextSizeSmall:
		return 1, 0
	case TextSizeLarge:
		return 3, 1
	default:
		return 2, 0
	}
}

// MessageWidth returns the wrap width for chat content at the given
// terminal width. Larger text gets a narrower column.
func (t *Theme) MessageWidth(total int) int {
	if total <= 0 {
		total = 80
	}

	frac := 0.85
	switch t.TextSize {
	case TextSizeSmall:
		frac = 0.92
	case TextSizeLarge:
		frac = 0.72
	}

	w := int(float64(total) * frac)
	if w < 20 {
		w = 20
	}
	return w
}

// initStyles initializes all the lip gloss styles from the palette.
func (t *Theme) initStyles() {
	p := t.Palette
	padX, padY := t.bubblePadding()

	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent).
		Background(p.SurfaceDim).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(p.TextSecondary).
		Italic(true)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(p.UserFg).
		Background(p.UserBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.UserBorder).
		Padding(padY, padX).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(p.AssistantFg).
		Background(p.AssistantBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.AssistantBorder).
		Padding(padY, padX).
		MarginRight(4)

	t.SystemBubble = lipgloss.NewStyle().
		Foreground(p.SystemFg).
		Background(p.SystemBg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.SystemBorder).
		BorderLeft(true).
		PaddingLeft(2)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(p.Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	t.InputText = lipgloss.NewStyle().
		Foreground(p.TextPrimary)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Italic(true)

	t.CharCount = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Align(lipgloss.Right)

	t.CharCountWarning = lipgloss.NewStyle().
		Foreground(p.Warning).
		Align(lipgloss.Right)

	t.CharCountDanger = lipgloss.NewStyle().
		Foreground(p.Danger).
		Align(lipgloss.Right)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(p.SurfaceDim).
		Foreground(p.TextSecondary).
		Padding(0, 1)

	t.StatusOnline = lipgloss.NewStyle().
		Foreground(p.Success).
		Bold(true)

	t.StatusOffline = lipgloss.NewStyle().
		Foreground(p.Warning).
		Bold(true)

	t.StatusLocked = lipgloss.NewStyle().
		Foreground(p.Danger).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(p.TextMuted)

	// Completion popup
	t.CompletionPopup = lipgloss.NewStyle().
		Background(p.Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Overlay).
		Padding(0, 1)

	t.CompletionItem = lipgloss.NewStyle().
		Foreground(p.TextPrimary)

	t.CompletionSelected = lipgloss.NewStyle().
		Background(p.Accent).
		Foreground(p.TextInverse).
		Bold(true)

	t.CompletionMatch = lipgloss.NewStyle().
		Foreground(p.Info).
		Bold(true)

	// Spinner and streaming
	t.Spinner = lipgloss.NewStyle().
		Foreground(p.Accent)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(p.TextSecondary)

	t.ThinkingTime = lipgloss.NewStyle().
		Foreground(p.TextMuted)

	t.StreamCursor = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	// Code blocks
	t.CodeBlock = lipgloss.NewStyle().
		Background(p.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Overlay).
		Padding(0, 2)

	t.CodeLangBadge = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Background(p.Overlay).
		Padding(0, 1).
		Bold(true)

	t.CodeLineNum = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Width(4).
		Align(lipgloss.Right).
		MarginRight(1)

	// Error boxes
	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(p.Danger).
		Padding(1, 2)

	t.ErrorTitle = lipgloss.NewStyle().
		Foreground(p.Danger).
		Bold(true)

	t.ErrorMessage = lipgloss.NewStyle().
		Foreground(p.TextPrimary)

	t.ErrorTip = lipgloss.NewStyle().
		Foreground(p.Info).
		Italic(true)

	// Pickers and browsers
	t.PickerBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Accent).
		Padding(1, 2)

	t.PickerHeader = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	t.PickerItem = lipgloss.NewStyle().
		Foreground(p.TextPrimary).
		Padding(0, 1)

	t.PickerItemSelected = lipgloss.NewStyle().
		Background(p.Accent).
		Foreground(p.TextInverse).
		Bold(true).
		Padding(0, 1)

	t.PickerID = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Width(12)

	t.PickerTitle = lipgloss.NewStyle().
		Foreground(p.TextPrimary).
		Bold(true)

	t.PickerMeta = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Italic(true)

	t.PickerFooter = lipgloss.NewStyle().
		Foreground(p.TextMuted)

	t.TagBadge = lipgloss.NewStyle().
		Foreground(p.TextInverse).
		Background(p.Accent).
		Padding(0, 1)

	t.FavoriteMark = lipgloss.NewStyle().
		Foreground(p.Warning).
		Bold(true)

	t.SnippetText = lipgloss.NewStyle().
		Foreground(p.TextSecondary)

	t.MatchHighlight = lipgloss.NewStyle().
		Foreground(p.TextInverse).
		Background(p.Warning).
		Bold(true)

	t.ScoreText = lipgloss.NewStyle().
		Foreground(p.TextMuted)

	// Analysis view
	t.AnalysisBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Accent).
		Padding(1, 2)

	t.AnalysisTitle = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	t.AnalysisSection = lipgloss.NewStyle().
		Foreground(p.TextSecondary).
		Bold(true)

	t.AnalysisInsight = lipgloss.NewStyle().
		Foreground(p.TextPrimary).
		PaddingLeft(2)

	// Settings panel
	t.SettingsBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Overlay).
		Padding(1, 2)

	t.SettingsSection = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	t.SettingsLabel = lipgloss.NewStyle().
		Foreground(p.TextSecondary).
		Width(24)

	t.SettingsValue = lipgloss.NewStyle().
		Foreground(p.TextPrimary)

	t.SettingsHint = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Italic(true)

	// Welcome screen
	t.WelcomeBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(p.Accent).
		Padding(2, 4).
		Align(lipgloss.Center)

	t.WelcomeLogo = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	t.WelcomeVersion = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Italic(true)

	t.WelcomeInfo = lipgloss.NewStyle().
		Foreground(p.TextSecondary)

	t.WelcomeKey = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	t.WelcomePressKey = lipgloss.NewStyle().
		Foreground(p.TextMuted)

	// Lock screen
	t.LockBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(p.Danger).
		Padding(1, 4).
		Align(lipgloss.Center)

	t.LockTitle = lipgloss.NewStyle().
		Foreground(p.Danger).
		Bold(true)

	t.LockDigits = lipgloss.NewStyle().
		Foreground(p.TextPrimary).
		Background(p.SurfaceBright).
		Padding(0, 2).
		Bold(true)

	t.LockHint = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Italic(true)

	// Status indicators
	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(p.Success).
		Bold(true)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(p.Danger).
		Bold(true)

	t.WarningStyle = lipgloss.NewStyle().
		Foreground(p.Warning).
		Bold(true)

	t.InfoStyle = lipgloss.NewStyle().
		Foreground(p.Info).
		Bold(true)

	t.LinkStyle = lipgloss.NewStyle().
		Foreground(p.Link).
		Underline(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
