// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"sync"
)

// =============================================================================
// TURN CANCELLATION
// =============================================================================

// turnCancel holds the cancel function for the in-flight turn. The
// update loop stores it when a turn starts and the Ctrl+C handler
// invokes it; the turn goroutine clears it on completion. The mutex
// covers that cross-goroutine access. Always hold as a pointer so the
// mutex survives Bubble Tea's model copying.
type turnCancel struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

func newTurnCancel() *turnCancel {
	return &turnCancel{}
}

// arm stores the cancel function for a newly started turn, cancelling
// any previous one first. The view prevents concurrent turns; the
// cancel here is a safeguard against a leaked context.
func (tc *turnCancel) arm(fn context.CancelFunc) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.cancel != nil {
		tc.cancel()
	}
	tc.cancel = fn
}

// stop cancels the in-flight turn. Safe to call when nothing is
// running. Reports whether a turn was actually cancelled.
func (tc *turnCancel) stop() bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.cancel == nil {
		return false
	}
	tc.cancel()
	tc.cancel = nil
	return true
}

// release cancels and clears the stored function once the turn has
// resolved, so the context is never leaked.
func (tc *turnCancel) release() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.cancel != nil {
		tc.cancel()
		tc.cancel = nil
	}
}
