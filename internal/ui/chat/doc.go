// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the conversation view for the inkwell TUI.

The chat package implements the journaling conversation screen on the
Bubble Tea framework: a scrolling transcript, a single-line composer
with slash commands, and live streaming of assistant replies from the
journaling backend.

# Key Components

## Model (model.go)

The Model struct holds all conversation state:
  - The local session mirror (messages, persona, lazy backend id)
  - Streaming state: the in-progress placeholder, fragment buffer, and
    cancellation handle for the turn goroutine
  - Input pipeline: text input, slash command registry, tab completion
  - Viewport with change tracking so unchanged transcripts are never
    re-rendered

## Update Loop (update.go)

Routes every message the view owns:
  - Keyboard input by precedence (help overlay, error banner,
    transcript search, global chords, composer)
  - Turn lifecycle messages from the stream goroutine
  - Slash command results (session switching, persona changes, export,
    retry, undo)
  - The flush tick that moves buffered fragments onto screen

## View Rendering (view.go)

Renders the fixed chrome and the transcript:
  - Header with session title and active persona
  - Role-styled message bubbles with timestamps, turn statistics, and
    journal reference footers
  - Code block syntax highlighting on finalized replies
  - Search hit highlighting with Unicode-safe offsets
  - Status bar with reachability, mirror size, and relock countdown

## Streaming (streaming.go)

Batched fragment rendering for smooth replies:
  - StreamingBuffer accumulates fragments between ticks
  - Flushes are capped at ~30 fps so a fast backend cannot starve the
    update loop
  - Thread-safe: the turn goroutine writes while the tick drains

## Turn Control (cancel.go, input.go)

One turn in flight at a time:
  - turnCancel arms a context.CancelFunc per turn; Ctrl+C stops the
    stream and keeps whatever text already arrived
  - Retry resends the last user message without duplicating it
  - Undo removes the last exchange locally and on the backend and puts
    the user's words back in the composer

# Usage

Create the view, hand it to a Bubble Tea program, then wire the turn
runner once the program exists:

	view := chat.New(theme, cfg, cmdCtx)
	p := tea.NewProgram(appModel{chat: view}, tea.WithAltScreen())
	view.SetRunner(turn.NewRunner(p, client, persist))
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
*/
package chat
