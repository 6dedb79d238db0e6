// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
//
// This file implements fragment batching for streamed replies. The
// backend emits fragments far faster than a terminal can usefully
// repaint; rendering each one individually burns CPU on redraws nobody
// can see. The StreamingBuffer accumulates fragments and releases them
// in batches, capped at a frame rate the terminal can keep up with.
package chat

import (
	"strings"
	"sync"
	"time"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

// Flush tuning. A batch flushes when either threshold is met: enough
// fragments queued, or enough time since the last flush.
const (
	defaultBatchSize = 15
	defaultMaxFPS    = 30
)

// flushInterval is the tick cadence for the streaming flush loop,
// derived from the default frame cap.
const flushInterval = time.Second / defaultMaxFPS

// StreamingBuffer accumulates stream fragments between viewport
// repaints. Write happens on the turn goroutine via program.Send
// handling; Flush happens on the update loop. The mutex makes that
// safe. Use as a pointer so the mutex is never copied.
type StreamingBuffer struct {
	mu        sync.Mutex
	buf       strings.Builder
	pending   int
	lastFlush time.Time

	batchSize int
	maxFPS    int
}

// NewStreamingBuffer creates a buffer with the default batch size and
// frame cap.
func NewStreamingBuffer() *StreamingBuffer {
	return NewStreamingBufferWithConfig(defaultBatchSize, defaultMaxFPS)
}

// NewStreamingBufferWithConfig creates a buffer with explicit tuning.
// Values below 1 fall back to the defaults.
func NewStreamingBufferWithConfig(batchSize, maxFPS int) *StreamingBuffer {
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}
	if maxFPS < 1 {
		maxFPS = defaultMaxFPS
	}
	return &StreamingBuffer{
		batchSize: batchSize,
		maxFPS:    maxFPS,
		lastFlush: time.Now(),
	}
}

// Write queues one fragment.
func (sb *StreamingBuffer) Write(fragment string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.buf.WriteString(fragment)
	sb.pending++
}

// Flush returns the queued fragments if either flush threshold is met.
// The second return is false when nothing should be released yet.
func (sb *StreamingBuffer) Flush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.pending == 0 {
		return "", false
	}
	if sb.pending < sb.batchSize && time.Since(sb.lastFlush) < sb.minInterval() {
		return "", false
	}
	return sb.drain(), true
}

// ForceFlush returns whatever is queued regardless of thresholds. Used
// on finalize and cancel so no fragment is left behind.
func (sb *StreamingBuffer) ForceFlush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.pending == 0 {
		return "", false
	}
	return sb.drain(), true
}

// Pending returns the number of queued fragments.
func (sb *StreamingBuffer) Pending() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.pending
}

// Reset discards queued fragments and restarts the flush clock.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.buf.Reset()
	sb.pending = 0
	sb.lastFlush = time.Now()
}

// Config returns the batch size, frame cap, and derived minimum flush
// interval.
func (sb *StreamingBuffer) Config() (batchSize, maxFPS int, minInterval time.Duration) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.batchSize, sb.maxFPS, sb.minInterval()
}

// SetBatchSize adjusts the fragment threshold. Values below 1 are
// ignored.
func (sb *StreamingBuffer) SetBatchSize(n int) {
	if n < 1 {
		return
	}
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.batchSize = n
}

// SetMaxFPS adjusts the frame cap. Values below 1 are ignored.
func (sb *StreamingBuffer) SetMaxFPS(fps int) {
	if fps < 1 {
		return
	}
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.maxFPS = fps
}

// drain empties the buffer. Caller holds the lock.
func (sb *StreamingBuffer) drain() string {
	out := sb.buf.String()
	sb.buf.Reset()
	sb.pending = 0
	sb.lastFlush = time.Now()
	return out
}

// minInterval converts the frame cap to a duration. Caller holds the
// lock.
func (sb *StreamingBuffer) minInterval() time.Duration {
	return time.Second / time.Duration(sb.maxFPS)
}
