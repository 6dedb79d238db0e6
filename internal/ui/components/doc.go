// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the inkwell TUI.

This package contains the styled, interactive pieces the chat view is
assembled from, built on top of the Bubble Tea and Lip Gloss libraries.
Every component takes a *styles.Theme so the whole application follows
one palette.

# Display Components

StatusBar (statusbar.go) - Bottom bar with connection state, session
title, relock countdown, and shortcut hints.
CodeBlock (codeblock.go) - Syntax-highlighted code blocks using Chroma.
ErrorDisplay (error.go) - Categorized error messages with recovery
suggestions.
Welcome (welcome.go) - First-run welcome screen with backend status.
Spinner (spinner.go) - Animated thinking indicator with elapsed time.
CompletionPopup (completion.go) - Slash-command completion list.

# Overlays

SessionPicker (picker.go) - Browse and resume past conversations.
EntryBrowser (entries.go) - Read journal entries, filter by tag or
favorites, insert entry references into the chat input.
SearchOverlay (search.go) - Find entries by text match or by meaning,
with highlighted snippets.
AnalysisView (analysis.go) - Saved reflections: summaries, themes,
insights, and mood trends over groups of entries.
PersonaPicker (personas.go) - Choose the assistant's voice.
SettingsPanel (settings.go) - Read-only view of the active
configuration with a backend connection test.

# Theme Integration

All components accept a *styles.Theme:

	theme := styles.NewTheme(styles.Options{ThemeName: styles.ThemeDark})
	bar := components.NewStatusBar(theme)
	bar.SetWidth(80)
	bar.SetOnline(true)
	view := bar.View()

# Bubble Tea Integration

Interactive overlays implement the usual trio:

	Init() tea.Cmd
	Update(tea.Msg) (*Component, tea.Cmd)
	View() string

Overlays report user intent through messages (SessionPickedMsg,
EntryRefMsg, SearchRequestMsg, ...) instead of calling the API
themselves; the app model owns all I/O.

# Helper Functions

Shared helpers live in helpers.go:
  - fmtNumber() - Integer formatting with thousands separators
  - formatElapsed() - Human-readable elapsed time
  - relativeTime() - "just now" / "3h ago" style timestamps
*/
package components
