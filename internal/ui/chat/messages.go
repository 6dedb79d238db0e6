// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/storage"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamTickMsg drives the fragment flush cadence while a turn is
// streaming. Fragments accumulate in the StreamingBuffer between ticks
// so the viewport re-renders at most ~30 times a second regardless of
// how fast the backend emits.
type StreamTickMsg struct {
	Time time.Time
}

// streamTickCmd schedules the next flush tick.
func streamTickCmd() tea.Cmd {
	return tea.Tick(flushInterval, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}

// =============================================================================
// TRANSCRIPT MESSAGES
// =============================================================================

// ReferencesMsg carries the lazily fetched entry references for one
// assistant message. Each prefetch updates only its own message, so
// out-of-order arrival is harmless.
type ReferencesMsg struct {
	MessageID  string
	References []model.EntryReference
	Err        error
}

// MessageDeletedMsg reports the backend half of an undo: the last
// exchange's rows were removed from the server-side session.
type MessageDeletedMsg struct {
	Deleted int
	Err     error
}

// =============================================================================
// ACTION RESULT MESSAGES
// =============================================================================

// CopyResultMsg reports the outcome of copying the last assistant
// response to the clipboard.
type CopyResultMsg struct {
	Chars int
	Err   error
}

// ExportResultMsg reports the outcome of a conversation export.
type ExportResultMsg struct {
	Path   string
	Format storage.Format
	Err    error
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// NewReferencesMsg builds a reference prefetch result.
func NewReferencesMsg(messageID string, refs []model.EntryReference, err error) ReferencesMsg {
	return ReferencesMsg{MessageID: messageID, References: refs, Err: err}
}

// NewCopyResultMsg builds a clipboard copy result.
func NewCopyResultMsg(chars int, err error) CopyResultMsg {
	return CopyResultMsg{Chars: chars, Err: err}
}
