// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package turn

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/logging"
	"github.com/jeranaias/inkwell-tui/internal/model"
)

// =============================================================================
// SENDER INTERFACE
// =============================================================================

// Sender delivers one user turn to the backend and reports the outcome
// as reducer events through emit. Implementations emit StartEvent
// first, then the turn's events in order; every outcome, including
// failure, arrives as an event. A canceled context emits nothing
// further: abandonment is silent.
type Sender interface {
	Send(ctx context.Context, req api.SendRequest, emit func(Event))
}

// =============================================================================
// STREAM SENDER
// =============================================================================

// StreamSender delivers a turn over the streaming endpoint.
type StreamSender struct {
	client *api.Client
}

// NewStreamSender creates a streaming sender over the given client.
func NewStreamSender(client *api.Client) *StreamSender {
	return &StreamSender{client: client}
}

// Send opens the stream and translates its records into events. The
// reader is dropped on context cancellation without signaling the
// server.
func (s *StreamSender) Send(ctx context.Context, req api.SendRequest, emit func(Event)) {
	emit(StartEvent{})

	stream, err := s.client.StreamMessage(ctx, req)
	if err != nil {
		if abandoned(ctx, err) {
			return
		}
		emit(ErrorEvent{Message: err.Error()})
		return
	}
	defer stream.Close()

	for {
		ev, err := stream.Next()
		if err == io.EOF {
			// Clean server close without a sentinel. An empty stream
			// lands here too and finalizes an empty message.
			emit(doneEvent())
			return
		}
		if err != nil {
			if abandoned(ctx, err) {
				return
			}
			logging.Component("turn").Warn().Err(err).Msg("stream read failed")
			emit(ErrorEvent{Message: err.Error()})
			return
		}

		switch ev.Kind {
		case api.EventMeta:
			emit(MetaEvent{
				SessionID:  ev.Meta.SessionID,
				MessageID:  ev.Meta.MessageID,
				References: ev.Meta.References,
				Tools:      ev.Meta.Tools,
			})
		case api.EventText:
			emit(TextEvent{Fragment: ev.Text})
		case api.EventError:
			emit(ErrorEvent{Message: ev.Text})
			return
		case api.EventDone:
			emit(doneEvent())
			return
		}
	}
}

// =============================================================================
// DIRECT SENDER
// =============================================================================

// DirectSender delivers a turn over the non-streaming endpoint. It is
// both the fallback after a failed stream and the primary path when
// streaming is disabled. The response is synthesized into the same
// event sequence a stream would produce, so finalization follows the
// identical code path.
type DirectSender struct {
	client *api.Client
}

// NewDirectSender creates a non-streaming sender over the given client.
func NewDirectSender(client *api.Client) *DirectSender {
	return &DirectSender{client: client}
}

// Send performs the single request/response round trip.
func (d *DirectSender) Send(ctx context.Context, req api.SendRequest, emit func(Event)) {
	emit(StartEvent{})

	msg, err := d.client.ProcessMessage(ctx, req)
	if err != nil {
		if abandoned(ctx, err) {
			return
		}
		emit(ErrorEvent{Message: err.Error()})
		return
	}

	if msg.Role == model.RoleError {
		emit(ErrorEvent{Message: msg.GetDisplayContent()})
		return
	}

	emit(MetaEvent{
		SessionID: msg.SessionID,
		MessageID: msg.ID,
	})
	if msg.Content != "" {
		emit(TextEvent{Fragment: msg.Content})
	}

	done := doneEvent()
	if !msg.CreatedAt.IsZero() {
		done.Now = msg.CreatedAt
	}
	emit(done)
}

// =============================================================================
// HELPERS
// =============================================================================

// doneEvent builds a DoneEvent with the impure inputs the reducer is
// not allowed to produce itself.
func doneEvent() DoneEvent {
	return DoneEvent{
		Now:        time.Now(),
		FallbackID: uuid.NewString(),
	}
}

// abandoned reports whether an error is the local reader being dropped
// rather than a turn failure.
func abandoned(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}
