// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat view.
//
// This package handles parsing and executing slash commands typed into
// the chat input, providing autocomplete and command registration. The
// handlers talk to the backend through api.Client and report back to
// the app exclusively via tea.Msg values, so the Bubble Tea update loop
// stays the single owner of view state.
//
// # Key Types
//
//   - Registry: Command registry with all available commands
//   - Context: Dependency container handed to every handler
//   - ParseResult: Parsed command with name and arguments
//   - Completer: Tab completion for commands and arguments
//
// # Built-in Commands
//
//   - /help: Show available commands
//   - /sessions, /load, /rename, /delete: Session management
//   - /persona: Apply a system-prompt profile
//   - /search, /entries, /analyze: Journal browsing
//   - /theme, /config: Settings
//   - /lock, /status: Journal lock and health
//
// # Usage
//
// Parse and execute a command:
//
//	result := parser.Parse(input)
//	if result.IsCommand && result.Command != nil {
//	    return result.Command.Handler(ctx, result.Args)
//	}
//
// Get completions:
//
//	completions := completer.Complete("/se", 3)
//	// Returns /search and /sessions
package commands
