// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for inkwell.
//
// This package implements every non-TUI command of the inkwell binary,
// so the journal stays usable from scripts, cron jobs, and plain pipes
// as well as from the full-screen interface.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed command-line arguments with global and command-specific flags
//   - ArgParser: Subcommand flag parsing for handlers that own their own flags
//   - JSONResponse: Envelope for --json output
//
// # Usage
//
// Parse and dispatch commands:
//
//	args := cli.Parse()
//	switch args.Cmd {
//	case cli.CmdAsk:
//	    return cli.HandleAsk(args)
//	case cli.CmdChat:
//	    return cli.HandleChat(args)
//	// ... other commands
//	}
//
// # Commands Overview
//
// Core Commands:
//   - ask: One question, one answer, exit
//   - chat: Line-based conversation without the full TUI
//   - sessions: List, show, export, and delete conversations
//   - entries: Browse journal entries, offline-capable via the local cache
//   - search: Full-text and semantic entry search
//   - analyze: Batch reflections across many entries
//   - personas: List and choose companion personas
//
// Housekeeping Commands:
//   - status: Backend, model, and journal health
//   - config: Configuration management
//   - setup: First-run wizard
//   - lock: TOTP journal lock
//
// All commands support --json for scripting.
package cli
