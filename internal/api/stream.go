// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/jeranaias/inkwell-tui/internal/logging"
	"github.com/jeranaias/inkwell-tui/internal/model"
)

// STREAMING: Robust record parsing with incremental UTF-8 decoding.

// =============================================================================
// STREAMING CONSTANTS
// =============================================================================

const (
	// MaxFrameSize is the maximum allowed size for a single stream record
	// (256KB). Metadata records carry inline references and tool results,
	// so the cap is larger than a typical text fragment.
	MaxFrameSize = 256 * 1024

	// streamReadSize is the read buffer size for the stream body.
	streamReadSize = 4096
)

// recordSep separates records in the stream ("data: ..." framing).
var recordSep = []byte("\n\n")

// doneSentinel terminates a stream.
var doneSentinel = []byte("[DONE]")

// =============================================================================
// STREAM EVENTS
// =============================================================================

// EventKind classifies a single record read from a chat stream.
type EventKind int

const (
	// EventText carries an incremental text fragment.
	EventText EventKind = iota
	// EventMeta carries the turn's metadata record: the session and
	// message ids plus any inline references and tool results.
	EventMeta
	// EventError carries a server-reported error that ends the turn.
	EventError
	// EventDone signals the completion sentinel.
	EventDone
)

// String returns a human-readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventMeta:
		return "meta"
	case EventError:
		return "error"
	case EventDone:
		return "done"
	default:
		return "unknown"
	}
}

// StreamMeta is the metadata record of a streamed turn. The backend
// sends it first, before any text fragments; a lazily created session
// reports its new id here.
type StreamMeta struct {
	SessionID  string
	MessageID  string
	References []model.EntryReference
	Tools      []model.ToolUsage
}

// StreamEvent is one classified record from a chat stream.
type StreamEvent struct {
	Kind EventKind
	Text string      // EventText fragment, or EventError detail
	Meta *StreamMeta // set for EventMeta only
}

// StreamError represents an error that occurred during streaming,
// preserving any partial content received before the error.
type StreamError struct {
	Partial string // Content received before error
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// WIRE PAYLOADS
// =============================================================================

// metaPayload is the wire shape of a metadata record. MessageID is a
// pointer so field presence, not emptiness, selects the metadata path.
type metaPayload struct {
	MessageID  *string                `json:"message_id"`
	SessionID  string                 `json:"session_id"`
	References []model.EntryReference `json:"references"`
	Tools      []model.ToolUsage      `json:"tool_usage"`
}

// dataPayload is the wire shape of a text or error record.
type dataPayload struct {
	Text  *string `json:"text"`
	Error *string `json:"error"`
}

// =============================================================================
// STREAM READER
// =============================================================================

// Stream reads classified events from a streaming chat response.
//
// Records are framed as "data: <payload>\n\n". The first payload that
// carries a message_id field is the turn's metadata; every later
// payload is classified as text, error, or the completion sentinel,
// even if it happens to carry metadata-shaped fields. Payloads that are
// not valid JSON degrade to plain text fragments rather than being
// rejected.
//
// UNICODE: The body is decoded incrementally. A multi-byte UTF-8
// sequence split across network reads is held back until its trailing
// bytes arrive, so fragment boundaries never corrupt characters.
//
// Stream is not safe for concurrent use; one goroutine owns the read
// loop.
type Stream struct {
	body    io.ReadCloser
	scratch []byte // read buffer
	pending []byte // trailing bytes of a rune split across reads
	buf     []byte // decoded text awaiting record framing

	metaSeen bool // a payload has been inspected for metadata
	done     bool // sentinel, error record, or read failure reached
	readErr  error
}

// NewStream wraps a streaming response body. The caller must Close the
// stream to release the connection.
func NewStream(body io.ReadCloser) *Stream {
	return &Stream{
		body:    body,
		scratch: make([]byte, streamReadSize),
	}
}

// Next returns the next event from the stream. It returns io.EOF when
// the stream ends, whether by the completion sentinel, an error record,
// or the server closing the connection. An empty stream yields io.EOF
// immediately; the caller finalizes an empty message rather than
// hanging.
func (s *Stream) Next() (StreamEvent, error) {
	if s.done {
		return StreamEvent{}, io.EOF
	}

	for {
		// Drain complete records already buffered before reading more.
		for {
			rec, ok := s.cutRecord()
			if !ok {
				break
			}
			ev, ok := s.classify(rec)
			if !ok {
				continue
			}
			if ev.Kind == EventDone || ev.Kind == EventError {
				s.done = true
			}
			return ev, nil
		}

		if s.readErr != nil {
			s.done = true
			if s.readErr == io.EOF {
				return StreamEvent{}, io.EOF
			}
			return StreamEvent{}, s.readErr
		}

		if len(s.buf) > MaxFrameSize {
			s.done = true
			return StreamEvent{}, fmt.Errorf("stream record exceeds %d bytes", MaxFrameSize)
		}

		s.fill()
	}
}

// Close releases the underlying connection. Abandoning a turn closes
// the local reader only; no stop signal is sent to the server.
func (s *Stream) Close() error {
	s.done = true
	return s.body.Close()
}

// fill reads the next chunk from the body and appends the decodable
// prefix to the record buffer.
func (s *Stream) fill() {
	n, err := s.body.Read(s.scratch)
	if n > 0 {
		data := s.scratch[:n]
		if len(s.pending) > 0 {
			data = append(s.pending, data...)
			s.pending = nil
		}
		complete, rest := splitCompleteRunes(data)
		s.buf = append(s.buf, complete...)
		if len(rest) > 0 {
			s.pending = append([]byte(nil), rest...)
		}
	}
	if err != nil {
		// Flush any held-back bytes so a truncated final record is
		// still surfaced before EOF.
		if len(s.pending) > 0 {
			s.buf = append(s.buf, s.pending...)
			s.pending = nil
		}
		s.readErr = err
	}
}

// cutRecord removes the next complete record from the buffer. After a
// read failure the trailing unterminated record, if any, is returned as
// a final record.
func (s *Stream) cutRecord() ([]byte, bool) {
	if i := bytes.Index(s.buf, recordSep); i >= 0 {
		rec := s.buf[:i]
		s.buf = s.buf[i+len(recordSep):]
		return rec, true
	}
	if s.readErr != nil && len(s.buf) > 0 {
		rec := s.buf
		s.buf = nil
		return rec, true
	}
	return nil, false
}

// classify turns a raw record into an event. Blank records and JSON
// payloads carrying neither text nor error are skipped (ok=false).
func (s *Stream) classify(rec []byte) (StreamEvent, bool) {
	rec = bytes.TrimSpace(rec)
	if len(rec) == 0 {
		return StreamEvent{}, false
	}

	payload := rec
	switch {
	case bytes.HasPrefix(rec, []byte("data: ")):
		payload = rec[6:]
	case bytes.HasPrefix(rec, []byte("data:")):
		payload = bytes.TrimSpace(rec[5:])
	}
	if len(payload) == 0 {
		return StreamEvent{}, false
	}

	// Only the first payload of the turn may be metadata. Later
	// payloads fall through to ordinary classification even when they
	// carry a message_id field.
	if !s.metaSeen {
		s.metaSeen = true
		var mp metaPayload
		if err := json.Unmarshal(payload, &mp); err == nil && mp.MessageID != nil {
			return StreamEvent{
				Kind: EventMeta,
				Meta: &StreamMeta{
					SessionID:  mp.SessionID,
					MessageID:  *mp.MessageID,
					References: mp.References,
					Tools:      mp.Tools,
				},
			}, true
		}
	}

	if bytes.Equal(payload, doneSentinel) {
		return StreamEvent{Kind: EventDone}, true
	}

	var dp dataPayload
	if err := json.Unmarshal(payload, &dp); err == nil {
		if dp.Error != nil {
			return StreamEvent{Kind: EventError, Text: *dp.Error}, true
		}
		if dp.Text != nil {
			return StreamEvent{Kind: EventText, Text: *dp.Text}, true
		}
		// Valid JSON with neither field carries nothing to render.
		return StreamEvent{}, false
	}

	// Plain-text framing: the raw payload is the fragment.
	return StreamEvent{Kind: EventText, Text: string(payload)}, true
}

// splitCompleteRunes splits b into a prefix of complete UTF-8 sequences
// and the trailing bytes of an incomplete sequence, if any. Invalid
// sequences pass through unchanged; only a genuinely truncated trailing
// rune is held back.
func splitCompleteRunes(b []byte) (complete, rest []byte) {
	n := len(b)
	for i := n - 1; i >= 0 && i > n-utf8.UTFMax; i-- {
		c := b[i]
		if c < utf8.RuneSelf {
			break
		}
		if !utf8.RuneStart(c) {
			continue
		}
		if need := runeLen(c); n-i < need {
			return b[:i], b[i:]
		}
		break
	}
	return b, nil
}

// runeLen returns the encoded length implied by a UTF-8 leading byte.
func runeLen(b byte) int {
	switch {
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}

// =============================================================================
// CHAT ENDPOINTS
// =============================================================================

// SendRequest is a user turn submitted to the chat endpoints. An empty
// SessionID asks the backend to create a session lazily; the new id
// arrives in the turn's metadata record (streaming) or response body
// (non-streaming).
type SendRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Content   string `json:"content"`
	PersonaID string `json:"persona_id,omitempty"`
}

// StreamMessage opens a streaming chat turn and returns the record
// stream. Streaming requests are never retried here; on failure the
// turn layer falls back to ProcessMessage at most once.
func (c *Client) StreamMessage(ctx context.Context, req SendRequest) (*Stream, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat/stream", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := sharedStreamingClient.Do(httpReq)
	httpReq.Header.Del("Authorization")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	logging.Component("api").Debug().
		Str("method", http.MethodPost).
		Str("path", "/api/chat/stream").
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("stream opened")

	if resp.StatusCode != http.StatusOK {
		body, _ := readResponse(resp)
		resp.Body.Close()
		return nil, c.handleErrorResponse(resp, body)
	}

	return NewStream(resp.Body), nil
}

// ProcessMessage sends a chat turn over the non-streaming endpoint and
// returns the finished assistant message. The turn layer uses it as the
// single fallback after a failed stream; it is also the direct path
// when streaming is disabled. Never retried: turn submission is not
// idempotent, and a failed fallback must not issue further requests.
func (c *Client) ProcessMessage(ctx context.Context, req SendRequest) (*model.Message, error) {
	var msg model.Message
	if err := c.doSingle(ctx, http.MethodPost, "/api/chat/process", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
