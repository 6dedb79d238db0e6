// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
package chat

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// STREAMING BUFFER TESTS
// =============================================================================

func TestNewStreamingBuffer(t *testing.T) {
	sb := NewStreamingBuffer()

	if sb == nil {
		t.Fatal("NewStreamingBuffer returned nil")
	}

	batchSize, maxFPS, minInterval := sb.Config()
	if batchSize != 15 {
		t.Errorf("default batch size = %d, want 15", batchSize)
	}
	if maxFPS != 30 {
		t.Errorf("default maxFPS = %d, want 30", maxFPS)
	}
	if minInterval != time.Second/30 {
		t.Errorf("default minInterval = %v, want %v", minInterval, time.Second/30)
	}
}

func TestStreamingBufferConfigFallbacks(t *testing.T) {
	sb := NewStreamingBufferWithConfig(0, -5)

	batchSize, maxFPS, _ := sb.Config()
	if batchSize != 15 {
		t.Errorf("batch size with invalid input = %d, want default 15", batchSize)
	}
	if maxFPS != 30 {
		t.Errorf("maxFPS with invalid input = %d, want default 30", maxFPS)
	}
}

func TestStreamingBufferWrite(t *testing.T) {
	sb := NewStreamingBuffer()

	sb.Write("Hello")
	sb.Write(" ")
	sb.Write("World")

	if pending := sb.Pending(); pending != 3 {
		t.Errorf("Pending() = %d, want 3", pending)
	}
}

func TestStreamingBufferFlushBySize(t *testing.T) {
	sb := NewStreamingBufferWithConfig(3, 30)

	sb.Write("A")
	sb.Write("B")

	// Two fragments, fresh clock: neither threshold is met.
	if _, ok := sb.Flush(); ok {
		t.Error("Flush released before the batch size was reached")
	}

	sb.Write("C")

	content, ok := sb.Flush()
	if !ok {
		t.Fatal("Flush did not release at the batch size")
	}
	if content != "ABC" {
		t.Errorf("flushed content = %q, want %q", content, "ABC")
	}
	if pending := sb.Pending(); pending != 0 {
		t.Errorf("Pending() after flush = %d, want 0", pending)
	}
}

func TestStreamingBufferFlushByTime(t *testing.T) {
	sb := NewStreamingBufferWithConfig(100, 30)

	sb.Write("A")

	if _, ok := sb.Flush(); ok {
		t.Error("Flush released immediately with one fragment")
	}

	// 30fps means a ~33ms minimum interval.
	time.Sleep(40 * time.Millisecond)

	content, ok := sb.Flush()
	if !ok {
		t.Fatal("Flush did not release after the interval elapsed")
	}
	if content != "A" {
		t.Errorf("flushed content = %q, want %q", content, "A")
	}
}

func TestStreamingBufferFlushEmpty(t *testing.T) {
	sb := NewStreamingBuffer()

	if _, ok := sb.Flush(); ok {
		t.Error("Flush released content from an empty buffer")
	}
	if _, ok := sb.ForceFlush(); ok {
		t.Error("ForceFlush released content from an empty buffer")
	}
}

func TestStreamingBufferForceFlush(t *testing.T) {
	sb := NewStreamingBuffer()

	sb.Write("Test")

	content, ok := sb.ForceFlush()
	if !ok {
		t.Fatal("ForceFlush returned no content")
	}
	if content != "Test" {
		t.Errorf("forced content = %q, want %q", content, "Test")
	}
	if pending := sb.Pending(); pending != 0 {
		t.Errorf("Pending() after force flush = %d, want 0", pending)
	}
}

func TestStreamingBufferReset(t *testing.T) {
	sb := NewStreamingBuffer()

	sb.Write("A")
	sb.Write("B")
	sb.Write("C")
	sb.Reset()

	if pending := sb.Pending(); pending != 0 {
		t.Errorf("Pending() after reset = %d, want 0", pending)
	}
	if _, ok := sb.ForceFlush(); ok {
		t.Error("buffer still held content after reset")
	}
}

func TestStreamingBufferOrderPreserved(t *testing.T) {
	sb := NewStreamingBufferWithConfig(1, 30)

	fragments := []string{"The ", "quick ", "brown ", "fox"}
	var got strings.Builder
	for _, f := range fragments {
		sb.Write(f)
		if chunk, ok := sb.Flush(); ok {
			got.WriteString(chunk)
		}
	}
	if leftover, ok := sb.ForceFlush(); ok {
		got.WriteString(leftover)
	}

	want := "The quick brown fox"
	if got.String() != want {
		t.Errorf("reassembled content = %q, want %q", got.String(), want)
	}
}

func TestStreamingBufferUnicode(t *testing.T) {
	sb := NewStreamingBuffer()

	sb.Write("Hello")
	sb.Write(" ")
	sb.Write("世界")
	sb.Write("!")

	content, ok := sb.ForceFlush()
	if !ok {
		t.Fatal("ForceFlush returned no content")
	}
	if content != "Hello 世界!" {
		t.Errorf("content = %q, want %q", content, "Hello 世界!")
	}
}

func TestStreamingBufferConcurrency(t *testing.T) {
	sb := NewStreamingBuffer()

	// Writer simulates the turn goroutine, flusher the update loop.
	done := make(chan bool)
	go func() {
		for i := 0; i < 100; i++ {
			sb.Write("x")
			time.Sleep(time.Millisecond)
		}
		done <- true
	}()

	flushed := 0
	go func() {
		for i := 0; i < 100; i++ {
			if chunk, ok := sb.Flush(); ok {
				flushed += len(chunk)
			}
			time.Sleep(time.Millisecond)
		}
		done <- true
	}()

	<-done
	<-done

	if leftover, ok := sb.ForceFlush(); ok {
		flushed += len(leftover)
	}
	if flushed != 100 {
		t.Errorf("total flushed bytes = %d, want 100", flushed)
	}
}

func TestStreamingBufferSetters(t *testing.T) {
	sb := NewStreamingBuffer()

	sb.SetBatchSize(20)
	batchSize, _, _ := sb.Config()
	if batchSize != 20 {
		t.Errorf("batch size after SetBatchSize = %d, want 20", batchSize)
	}

	sb.SetMaxFPS(60)
	_, maxFPS, minInterval := sb.Config()
	if maxFPS != 60 {
		t.Errorf("maxFPS after SetMaxFPS = %d, want 60", maxFPS)
	}
	if minInterval != time.Second/60 {
		t.Errorf("minInterval = %v, want %v", minInterval, time.Second/60)
	}

	// Invalid values leave tuning untouched.
	sb.SetBatchSize(0)
	sb.SetMaxFPS(-1)
	batchSize, maxFPS, _ = sb.Config()
	if batchSize != 20 || maxFPS != 60 {
		t.Errorf("tuning after invalid setters = (%d, %d), want (20, 60)", batchSize, maxFPS)
	}
}
