// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides chat session continuity across runs.
//
// The manager remembers which backend session the chat view was bound to
// and any unsent draft, restores both on the next run, drives the idle
// relock clock for the TOTP journal lock, and deletes sessions that were
// created but never received a message.
//
// # Key Types
//
//   - Manager: continuity manager with relock and auto-save tracking
//   - State: the on-disk record (~/.inkwell/state.json)
//   - RelockMsg / RelockWarningMsg: Bubble Tea messages for the idle lock
//   - AutoSaveMsg: Bubble Tea message requesting a state flush
//
// # Usage
//
// Create a manager and restore the previous session:
//
//	mgr := session.NewManager(session.DefaultConfig())
//	if id := mgr.ActiveSession(); id != "" {
//	    // resume this session
//	}
//
// Bind the session id the backend assigned during a lazy chat start:
//
//	if err := mgr.SetActiveSession(learnedID); err != nil {
//	    // the id must be durable before any follow-up request
//	}
//
// Drive the idle clock from the Bubble Tea update loop:
//
//	case session.TickMsg:
//	    return m, mgr.HandleTick()
//
// # Security
//
// The state file is written 0600; the session id keys into the user's
// private journal conversations. Placeholder ids with the mock- prefix
// are cleared on load and never sent to the backend.
package session
