// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the inkwell TUI.

The package defines the color palettes, the Theme that turns a palette
into Lip Gloss styles, and the spinner and progress primitives the
components animate with.

# Palettes (colors.go)

Two built-in palettes match the appearance.theme config values:

	inkwell-dark  - washed ink blues on a night surface (default)
	inkwell-light - fountain-pen blue on cream paper

Every color is a named role (accent, surface, text, user_bg, ...) that
appearance.custom_colors can override individually:

	[appearance.custom_colors]
	accent = "#C9A86A"
	user_bg = "#26324F"

Unknown role names are collected rather than rejected so a typo shows a
warning instead of breaking startup. ColorRoles lists the valid names.

One-shot CLI output uses the adaptive high-contrast colors
(RenderSuccess, RenderError, ...) instead of a Theme; those follow the
terminal background, not the configured theme.

# Theme (theme.go)

The Theme struct resolves terminal capability with termenv and builds
every style the views render with:

	theme := styles.NewTheme(styles.Options{
		ThemeName:    cfg.Appearance.Theme,
		CustomColors: cfg.Appearance.CustomColors,
		TextSize:     cfg.Chat.TextSize,
	})
	bubble := theme.UserBubble.Width(theme.MessageWidth(width))

chat.text_size scales bubble padding and narrows the text column at
larger sizes. SetSize plus GetLayoutMode drive the responsive layout
(narrow under 60 columns, wide over 100).

# Animations (animations.go)

SpinnerConfig bundles frames with a frame rate; LineSpinner is the
default waiting indicator and DotsSpinner the "thinking" state.
RenderProgressBar and RenderTreeLine draw ASCII-only progress bars and
nested lists.
*/
package styles
