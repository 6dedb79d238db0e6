// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
//
// This file defines the keyboard bindings for the chat view. The input
// field keeps focus the whole time, so bindings avoid bare letters;
// scrolling and actions live on arrows, paging keys, and control
// chords.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP
// =============================================================================

// KeyMap defines the keyboard bindings for the chat view.
type KeyMap struct {
	ScrollUp   key.Binding
	ScrollDown key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Submit     key.Binding
	Complete   key.Binding
	CompleteUp key.Binding
	Stop       key.Binding
	Dismiss    key.Binding
	Search     key.Binding
	Copy       key.Binding
	Clear      key.Binding
	Help       key.Binding
}

// DefaultKeyMap returns the chat view bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ScrollUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("Up", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("Down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "complete"),
		),
		CompleteUp: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "previous completion"),
		),
		Stop: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "stop reply / quit"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "dismiss"),
		),
		Search: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("C-f", "find in conversation"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy last reply"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "jump to latest"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "help"),
		),
	}
}

// ShortHelp returns the bindings for the one-line help hint.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Complete, k.Stop, k.Help}
}

// FullHelp returns the bindings grouped for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ScrollUp, k.ScrollDown, k.PageUp, k.PageDown},
		{k.Submit, k.Complete, k.CompleteUp, k.Search},
		{k.Copy, k.Clear, k.Stop, k.Dismiss, k.Help},
	}
}

// =============================================================================
// HELP ENTRIES
// =============================================================================

// HelpEntry is one row of the help overlay.
type HelpEntry struct {
	Key  string
	Desc string
}

// HelpSection groups help entries under a heading.
type HelpSection struct {
	Title   string
	Entries []HelpEntry
}

// KeyHelpSections returns the keyboard portion of the help overlay.
// Slash commands are appended from the registry at render time so the
// overlay never drifts from what actually runs.
func KeyHelpSections() []HelpSection {
	return []HelpSection{
		{
			Title: "Writing",
			Entries: []HelpEntry{
				{"Enter", "Send the message"},
				{"Tab / Shift+Tab", "Cycle command completions"},
				{"Esc", "Close popup, search, or error"},
				{"Ctrl+C", "Stop the reply; quit when idle"},
			},
		},
		{
			Title: "Reading",
			Entries: []HelpEntry{
				{"Up / Down", "Scroll one line"},
				{"PgUp / PgDn", "Scroll one page"},
				{"Ctrl+L", "Jump to the latest message"},
				{"Ctrl+F", "Find in the conversation"},
				{"Ctrl+Y", "Copy the last reply"},
			},
		},
		{
			Title: "In search",
			Entries: []HelpEntry{
				{"Enter", "Next match"},
				{"Ctrl+P", "Previous match"},
				{"Esc", "Leave search"},
			},
		},
	}
}
