// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the inkwell TUI.
package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme(t *testing.T) {
	theme := NewTheme(Options{ThemeName: ThemeDark})

	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}
	if theme.Name != ThemeDark {
		t.Errorf("Name = %q, want %q", theme.Name, ThemeDark)
	}
	if theme.TextSize != TextSizeMedium {
		t.Errorf("TextSize = %q, want %q", theme.TextSize, TextSizeMedium)
	}
	if theme.Palette.Accent == "" {
		t.Error("NewTheme() should resolve a palette")
	}
}

func TestNewTheme_UnknownNameFallsBack(t *testing.T) {
	theme := NewTheme(Options{ThemeName: "solarized"})

	if _, ok := PaletteFor(theme.Name); !ok {
		t.Errorf("fallback theme %q is not a known theme", theme.Name)
	}
}

func TestNewTheme_CustomColors(t *testing.T) {
	theme := NewTheme(Options{
		ThemeName: ThemeDark,
		CustomColors: map[string]string{
			"accent": "#C9A86A",
			"bogus":  "#000000",
		},
	})

	if string(theme.Palette.Accent) != "#C9A86A" {
		t.Errorf("Accent = %q, want override #C9A86A", theme.Palette.Accent)
	}
	if len(theme.UnknownColorRoles) != 1 || theme.UnknownColorRoles[0] != "bogus" {
		t.Errorf("UnknownColorRoles = %v, want [bogus]", theme.UnknownColorRoles)
	}
}

func TestNewTheme_TextSizeNormalized(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"small", TextSizeSmall},
		{"medium", TextSizeMedium},
		{"large", TextSizeLarge},
		{"", TextSizeMedium},
		{"enormous", TextSizeMedium},
	}

	for _, tt := range tests {
		theme := NewTheme(Options{ThemeName: ThemeDark, TextSize: tt.in})
		if theme.TextSize != tt.want {
			t.Errorf("TextSize(%q) = %q, want %q", tt.in, theme.TextSize, tt.want)
		}
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme(Options{ThemeName: ThemeDark})

	// Verify each style is initialized by rendering a test string.
	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"UserBubble", theme.UserBubble},
		{"AssistantBubble", theme.AssistantBubble},
		{"SystemBubble", theme.SystemBubble},
		{"InputContainer", theme.InputContainer},
		{"StatusBar", theme.StatusBar},
		{"CompletionPopup", theme.CompletionPopup},
		{"ErrorBox", theme.ErrorBox},
		{"CodeBlock", theme.CodeBlock},
		{"PickerBox", theme.PickerBox},
		{"AnalysisBox", theme.AnalysisBox},
		{"SettingsBox", theme.SettingsBox},
		{"WelcomeBox", theme.WelcomeBox},
		{"LockBox", theme.LockBox},
	}

	for _, s := range styles {
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s style should be initialized", s.name)
		}
	}
}

// =============================================================================
// TEXT SIZE SCALING TESTS
// =============================================================================

func TestThemeMessageWidth(t *testing.T) {
	small := NewTheme(Options{ThemeName: ThemeDark, TextSize: TextSizeSmall})
	medium := NewTheme(Options{ThemeName: ThemeDark, TextSize: TextSizeMedium})
	large := NewTheme(Options{ThemeName: ThemeDark, TextSize: TextSizeLarge})

	// Larger text gets a narrower column.
	if !(small.MessageWidth(100) > medium.MessageWidth(100)) {
		t.Errorf("small width %d should exceed medium width %d",
			small.MessageWidth(100), medium.MessageWidth(100))
	}
	if !(medium.MessageWidth(100) > large.MessageWidth(100)) {
		t.Errorf("medium width %d should exceed large width %d",
			medium.MessageWidth(100), large.MessageWidth(100))
	}

	// Floor and zero-width handling.
	if got := medium.MessageWidth(10); got != 20 {
		t.Errorf("MessageWidth(10) = %d, want floor 20", got)
	}
	if got := medium.MessageWidth(0); got <= 0 {
		t.Errorf("MessageWidth(0) = %d, want a positive default", got)
	}
}

func TestThemeBubblePadding(t *testing.T) {
	tests := []struct {
		size  string
		wantX int
		wantY int
	}{
		{TextSizeSmall, 1, 0},
		{TextSizeMedium, 2, 0},
		{TextSizeLarge, 3, 1},
	}

	for _, tt := range tests {
		theme := NewTheme(Options{ThemeName: ThemeDark, TextSize: tt.size})
		x, y := theme.bubblePadding()
		if x != tt.wantX || y != tt.wantY {
			t.Errorf("bubblePadding(%s) = (%d, %d), want (%d, %d)",
				tt.size, x, y, tt.wantX, tt.wantY)
		}
	}
}

// =============================================================================
// THEME SIZE TESTS
// =============================================================================

func TestThemeSetSize(t *testing.T) {
	theme := NewTheme(Options{ThemeName: ThemeDark})

	tests := []struct {
		width  int
		height int
	}{
		{80, 24},
		{120, 40},
		{200, 60},
		{40, 10},
	}

	for _, tc := range tests {
		theme.SetSize(tc.width, tc.height)
		if theme.Width != tc.width {
			t.Errorf("SetSize(%d, %d) Width = %d, want %d", tc.width, tc.height, theme.Width, tc.width)
		}
		if theme.Height != tc.height {
			t.Errorf("SetSize(%d, %d) Height = %d, want %d", tc.width, tc.height, theme.Height, tc.height)
		}
	}
}

func TestThemeGetLayoutMode(t *testing.T) {
	theme := NewTheme(Options{ThemeName: ThemeDark})

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{80, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{150, LayoutWide},
		{200, LayoutWide},
	}

	for _, tc := range tests {
		theme.SetSize(tc.width, 24)
		got := theme.GetLayoutMode()
		if got != tc.want {
			t.Errorf("GetLayoutMode() with width %d = %v, want %v", tc.width, got, tc.want)
		}
	}
}
