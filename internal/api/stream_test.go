// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// chunkReader yields data in fixed-size chunks so tests can force
// record and rune boundaries to land mid-read.
type chunkReader struct {
	data []byte
	size int
	off  int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.off >= len(r.data) {
		return 0, io.EOF
	}
	n := r.size
	if n > len(p) {
		n = len(p)
	}
	if r.off+n > len(r.data) {
		n = len(r.data) - r.off
	}
	copy(p, r.data[r.off:r.off+n])
	r.off += n
	return n, nil
}

func (r *chunkReader) Close() error { return nil }

// newTestStream builds a Stream over raw wire bytes with the given read
// chunk size.
func newTestStream(wire string, chunkSize int) *Stream {
	return NewStream(&chunkReader{data: []byte(wire), size: chunkSize})
}

// collectEvents drains a stream until io.EOF, failing the test on any
// other error.
func collectEvents(t *testing.T, s *Stream) []StreamEvent {
	t.Helper()
	var events []StreamEvent
	for {
		ev, err := s.Next()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		events = append(events, ev)
	}
}

// =============================================================================
// RECORD CLASSIFICATION TESTS
// =============================================================================

// TestStream_BasicTurn exercises the canonical turn: one metadata
// record, two text fragments, and the completion sentinel.
func TestStream_BasicTurn(t *testing.T) {
	wire := `data: {"message_id":"m1","session_id":"s1"}` + "\n\n" +
		`data: {"text":"Hello"}` + "\n\n" +
		`data: {"text":", world"}` + "\n\n" +
		`data: [DONE]` + "\n\n"

	s := newTestStream(wire, 4096)
	events := collectEvents(t, s)

	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d: %+v", len(events), events)
	}
	if events[0].Kind != EventMeta {
		t.Errorf("event 0: expected meta, got %s", events[0].Kind)
	}
	if events[0].Meta == nil || events[0].Meta.MessageID != "m1" || events[0].Meta.SessionID != "s1" {
		t.Errorf("event 0: wrong metadata: %+v", events[0].Meta)
	}
	if events[1].Kind != EventText || events[1].Text != "Hello" {
		t.Errorf("event 1: expected text %q, got %s %q", "Hello", events[1].Kind, events[1].Text)
	}
	if events[2].Kind != EventText || events[2].Text != ", world" {
		t.Errorf("event 2: expected text %q, got %s %q", ", world", events[2].Kind, events[2].Text)
	}
	if events[3].Kind != EventDone {
		t.Errorf("event 3: expected done, got %s", events[3].Kind)
	}
}

// TestStream_ErrorRecord verifies an error record surfaces the server
// detail and ends the stream.
func TestStream_ErrorRecord(t *testing.T) {
	wire := `data: {"error":"model unavailable"}` + "\n\n" +
		`data: {"text":"should never arrive"}` + "\n\n"

	s := newTestStream(wire, 4096)

	ev, err := s.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if ev.Kind != EventError || ev.Text != "model unavailable" {
		t.Fatalf("expected error event %q, got %s %q", "model unavailable", ev.Kind, ev.Text)
	}

	// Records after an error record must not be surfaced.
	if _, err := s.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after error record, got %v", err)
	}
}

// TestStream_EmptyStream verifies a stream with zero records returns
// io.EOF immediately instead of hanging; the caller finalizes an empty
// message.
func TestStream_EmptyStream(t *testing.T) {
	s := newTestStream("", 4096)
	if _, err := s.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF for empty stream, got %v", err)
	}
}

// TestStream_MetadataOnce verifies that only the first payload can be
// metadata; later payloads carrying message_id are classified as
// ordinary records.
func TestStream_MetadataOnce(t *testing.T) {
	wire := `data: {"message_id":"m1","session_id":"s1"}` + "\n\n" +
		`data: {"message_id":"m2","text":"still text"}` + "\n\n" +
		`data: {"message_id":"m3"}` + "\n\n" +
		`data: [DONE]` + "\n\n"

	s := newTestStream(wire, 4096)
	events := collectEvents(t, s)

	// The bare message_id record carries neither text nor error and is
	// skipped, so: meta, text, done.
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}
	if events[0].Kind != EventMeta || events[0].Meta.MessageID != "m1" {
		t.Errorf("event 0: expected meta m1, got %+v", events[0])
	}
	if events[1].Kind != EventText || events[1].Text != "still text" {
		t.Errorf("event 1: expected text %q, got %s %q", "still text", events[1].Kind, events[1].Text)
	}
	if events[2].Kind != EventDone {
		t.Errorf("event 2: expected done, got %s", events[2].Kind)
	}
}

// TestStream_MetadataAfterText verifies a metadata-shaped record that
// arrives after text has started is not accepted as metadata.
func TestStream_MetadataAfterText(t *testing.T) {
	wire := `data: {"text":"first"}` + "\n\n" +
		`data: {"message_id":"late","session_id":"ignored"}` + "\n\n" +
		`data: [DONE]` + "\n\n"

	s := newTestStream(wire, 4096)
	events := collectEvents(t, s)

	for _, ev := range events {
		if ev.Kind == EventMeta {
			t.Fatalf("metadata accepted after text started: %+v", ev.Meta)
		}
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events (text, done), got %d: %+v", len(events), events)
	}
}

// TestStream_PlainTextFallback verifies non-JSON payloads degrade to
// text fragments rather than being rejected.
func TestStream_PlainTextFallback(t *testing.T) {
	wire := "data: plain words, no JSON\n\n" +
		"data: [DONE]\n\n"

	s := newTestStream(wire, 4096)
	events := collectEvents(t, s)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].Kind != EventText || events[0].Text != "plain words, no JSON" {
		t.Errorf("expected raw payload as text, got %s %q", events[0].Kind, events[0].Text)
	}
}

// TestStream_DoneStopsReading verifies records after the sentinel are
// never surfaced.
func TestStream_DoneStopsReading(t *testing.T) {
	wire := `data: {"text":"before"}` + "\n\n" +
		"data: [DONE]\n\n" +
		`data: {"text":"after"}` + "\n\n"

	s := newTestStream(wire, 4096)
	events := collectEvents(t, s)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[1].Kind != EventDone {
		t.Errorf("expected done last, got %s", events[1].Kind)
	}
}

// TestStream_PrefixVariants verifies "data:" without a space and bare
// unprefixed records both yield their payloads.
func TestStream_PrefixVariants(t *testing.T) {
	wire := `data:{"text":"no space"}` + "\n\n" +
		`{"text":"no prefix"}` + "\n\n" +
		"data: [DONE]\n\n"

	s := newTestStream(wire, 4096)
	events := collectEvents(t, s)

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}
	if events[0].Text != "no space" {
		t.Errorf("data: without space: got %q", events[0].Text)
	}
	if events[1].Text != "no prefix" {
		t.Errorf("unprefixed record: got %q", events[1].Text)
	}
}

// TestStream_BlankRecordsDiscarded verifies blank records neither
// produce events nor consume the metadata slot.
func TestStream_BlankRecordsDiscarded(t *testing.T) {
	wire := "\n\n" +
		"   \n\n" +
		"data:\n\n" +
		`data: {"message_id":"m1"}` + "\n\n" +
		"data: [DONE]\n\n"

	s := newTestStream(wire, 4096)
	events := collectEvents(t, s)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].Kind != EventMeta || events[0].Meta.MessageID != "m1" {
		t.Errorf("metadata slot consumed by blank record: %+v", events[0])
	}
}

// TestStream_EOFWithoutSentinel verifies a stream the server closes
// without [DONE] still yields its records and then io.EOF.
func TestStream_EOFWithoutSentinel(t *testing.T) {
	wire := `data: {"text":"partial"}` + "\n\n"

	s := newTestStream(wire, 4096)
	events := collectEvents(t, s)

	if len(events) != 1 || events[0].Text != "partial" {
		t.Fatalf("expected single text event, got %+v", events)
	}
}

// TestStream_TruncatedFinalRecord verifies an unterminated trailing
// record is flushed at EOF.
func TestStream_TruncatedFinalRecord(t *testing.T) {
	wire := `data: {"text":"complete"}` + "\n\n" +
		`data: {"text":"truncated"}` // no record separator

	s := newTestStream(wire, 4096)
	events := collectEvents(t, s)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[1].Text != "truncated" {
		t.Errorf("trailing record lost: %+v", events[1])
	}
}

// TestStream_InlineReferences verifies metadata carries inline
// references and tool results through to the event.
func TestStream_InlineReferences(t *testing.T) {
	wire := `data: {"message_id":"m1","session_id":"s1",` +
		`"references":[{"entry_id":"e1","score":0.92,"title":"March trip"}],` +
		`"tool_usage":[{"tool":"journal_search","success":true,"result_count":3}]}` + "\n\n" +
		"data: [DONE]\n\n"

	s := newTestStream(wire, 4096)
	events := collectEvents(t, s)

	if len(events) != 2 || events[0].Kind != EventMeta {
		t.Fatalf("expected meta then done, got %+v", events)
	}
	meta := events[0].Meta
	if len(meta.References) != 1 || meta.References[0].EntryID != "e1" || meta.References[0].Score != 0.92 {
		t.Errorf("references not carried: %+v", meta.References)
	}
	if len(meta.Tools) != 1 || meta.Tools[0].Tool != "journal_search" || meta.Tools[0].ResultCount != 3 {
		t.Errorf("tool usage not carried: %+v", meta.Tools)
	}
}

// =============================================================================
// UTF-8 DECODING TESTS
// =============================================================================

// TestStream_SplitRunes verifies multi-byte characters split across
// read boundaries are reassembled. Reading one byte at a time forces
// every multi-byte sequence to split.
func TestStream_SplitRunes(t *testing.T) {
	wire := `data: {"text":"héllo 日本語 🎉"}` + "\n\n" +
		"data: [DONE]\n\n"

	for _, size := range []int{1, 2, 3, 5, 7} {
		s := newTestStream(wire, size)
		events := collectEvents(t, s)

		if len(events) != 2 {
			t.Fatalf("chunk size %d: expected 2 events, got %d", size, len(events))
		}
		if events[0].Text != "héllo 日本語 🎉" {
			t.Errorf("chunk size %d: corrupted text %q", size, events[0].Text)
		}
	}
}

// TestStream_SplitRunesRawPayload verifies the decoder also protects
// plain-text fallback payloads.
func TestStream_SplitRunesRawPayload(t *testing.T) {
	wire := "data: straße über alles\n\ndata: [DONE]\n\n"

	s := newTestStream(wire, 1)
	events := collectEvents(t, s)

	if len(events) != 2 || events[0].Text != "straße über alles" {
		t.Fatalf("raw payload corrupted: %+v", events)
	}
}

func TestSplitCompleteRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		complete string
		rest     string
	}{
		{"empty", []byte{}, "", ""},
		{"ascii", []byte("hello"), "hello", ""},
		{"complete multibyte", []byte("日本"), "日本", ""},
		{"split 2-byte", []byte{'a', 0xC3}, "a", "\xc3"},
		{"split 3-byte after 1", []byte{'a', 0xE6}, "a", "\xe6"},
		{"split 3-byte after 2", []byte{'a', 0xE6, 0x97}, "a", "\xe6\x97"},
		{"split 4-byte after 3", []byte{0xF0, 0x9F, 0x8E}, "", "\xf0\x9f\x8e"},
		{"complete 4-byte", []byte("🎉"), "🎉", ""},
		{"ascii tail", []byte("é!"), "é!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			complete, rest := splitCompleteRunes(tt.input)
			if string(complete) != tt.complete {
				t.Errorf("complete = %q, want %q", complete, tt.complete)
			}
			if string(rest) != tt.rest {
				t.Errorf("rest = %q, want %q", rest, tt.rest)
			}
		})
	}
}

// =============================================================================
// LIMIT TESTS
// =============================================================================

// TestStream_FrameSizeLimit verifies a record with no separator stops
// growing at MaxFrameSize instead of buffering without bound.
func TestStream_FrameSizeLimit(t *testing.T) {
	wire := "data: " + strings.Repeat("x", MaxFrameSize+1024)

	s := newTestStream(wire, 4096)
	_, err := s.Next()
	if err == nil || err == io.EOF {
		t.Fatalf("expected frame size error, got %v", err)
	}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("unexpected error: %v", err)
	}
}

// =============================================================================
// STREAM ENDPOINT TESTS
// =============================================================================

// TestStreamMessage verifies the full request path: headers, body, and
// event parsing against a live test server.
func TestStreamMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/stream" {
			t.Errorf("wrong path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("Accept = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"message_id\":\"m1\",\"session_id\":\"s9\"}\n\n")
		flusher.Flush()
		fmt.Fprint(w, "data: {\"text\":\"chunked\"}\n\n")
		flusher.Flush()
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient().WithBaseURL(server.URL).WithAPIKey("test-key")

	stream, err := client.StreamMessage(context.Background(), SendRequest{Content: "hello"})
	if err != nil {
		t.Fatalf("StreamMessage error: %v", err)
	}
	defer stream.Close()

	events := collectEvents(t, stream)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}
	if events[0].Meta == nil || events[0].Meta.SessionID != "s9" {
		t.Errorf("lazy session id not carried: %+v", events[0])
	}
}

// TestStreamMessage_ErrorStatus verifies a non-OK response converts to
// a typed failure without opening a stream.
func TestStreamMessage_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"unauthorized","detail":"bad token"}`)
	}))
	defer server.Close()

	client := NewClient().WithBaseURL(server.URL).WithAPIKey("bad-key")

	_, err := client.StreamMessage(context.Background(), SendRequest{Content: "hello"})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "bad token") {
		t.Errorf("server detail not preserved: %v", err)
	}
}

// =============================================================================
// BENCHMARKS
// =============================================================================

func BenchmarkStreamNext(b *testing.B) {
	var sb strings.Builder
	sb.WriteString(`data: {"message_id":"m1","session_id":"s1"}` + "\n\n")
	for i := 0; i < 200; i++ {
		sb.WriteString(`data: {"text":"a fragment of assistant prose "}` + "\n\n")
	}
	sb.WriteString("data: [DONE]\n\n")
	wire := []byte(sb.String())

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := NewStream(&chunkReader{data: wire, size: 1024})
		for {
			_, err := s.Next()
			if err != nil {
				break
			}
		}
	}
}
