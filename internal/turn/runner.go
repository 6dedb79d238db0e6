// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package turn

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/logging"
	"github.com/jeranaias/inkwell-tui/internal/model"
)

// =============================================================================
// MESSAGES
// =============================================================================

// StartedMsg reports a turn attempt opening. The view disables input
// and shows the thinking indicator until the turn resolves.
type StartedMsg struct {
	SessionID string
	StartTime time.Time
}

// SessionMsg reports a lazily created session id, already persisted to
// durable storage. The view adopts it for subsequent sends.
type SessionMsg struct {
	SessionID string
}

// FragmentMsg carries one text fragment of the in-progress message.
type FragmentMsg struct {
	Fragment string
	IsFirst  bool
}

// FinalizedMsg carries the completed assistant message; appending it is
// the only way streamed content enters the message list.
type FinalizedMsg struct {
	Message *model.Message
}

// ErrorMsg reports a turn failure. Retrying is true when the fallback
// attempt is about to run; the view keeps the loading state in that
// case instead of re-enabling input.
type ErrorMsg struct {
	Text     string
	Retrying bool
}

// PlaceholderMsg carries the error-role placeholder appended after
// both the stream and the fallback failed.
type PlaceholderMsg struct {
	Message *model.Message
}

// =============================================================================
// RUNNER
// =============================================================================

// Target receives the Bubble Tea messages a turn produces. *tea.Program
// satisfies it; tests substitute a recorder.
type Target interface {
	Send(tea.Msg)
}

// Runner executes turns against a target program. One turn runs at a
// time per chat view; the view guarantees that by disabling input
// while a turn is live.
type Runner struct {
	target  Target
	stream  Sender
	direct  Sender
	persist func(sessionID string) error

	// streaming selects the primary sender. When false every turn goes
	// straight to the direct endpoint and the fallback latch is
	// pre-consumed, so a failed direct turn is not retried.
	streaming bool
}

// NewRunner wires a runner over an API client. persist is invoked with
// a lazily created session id before any further request names that
// session; nil disables durable persistence.
func NewRunner(target Target, client *api.Client, persist func(string) error) *Runner {
	return &Runner{
		target:    target,
		stream:    NewStreamSender(client),
		direct:    NewDirectSender(client),
		persist:   persist,
		streaming: true,
	}
}

// SetStreaming toggles the primary delivery path.
func (r *Runner) SetStreaming(enabled bool) {
	r.streaming = enabled
}

// Run executes one user turn to completion. Call it on its own
// goroutine; results arrive at the target as messages. Cancel the
// context to abandon the turn silently.
func (r *Runner) Run(ctx context.Context, req api.SendRequest) {
	state := NewTurnState(req.SessionID)

	primary := r.stream
	if !r.streaming {
		primary = r.direct
		state.FallbackUsed = true
	}

	r.target.Send(StartedMsg{SessionID: req.SessionID, StartTime: time.Now()})

	if r.runSender(ctx, primary, req, &state) {
		// Fallback carries the identical content against the session id
		// as currently known, including one learned from metadata
		// before the stream failed.
		req.SessionID = state.SessionID
		r.runSender(ctx, r.direct, req, &state)
	}
}

// runSender drives one sender's events through the reducer and executes
// the resulting effects. It reports whether a fallback attempt was
// requested.
func (r *Runner) runSender(ctx context.Context, s Sender, req api.SendRequest, state *TurnState) bool {
	stats := model.NewStatistics()
	fallback := false

	s.Send(ctx, req, func(ev Event) {
		var effects []Effect
		*state, effects = Reduce(*state, ev)

		for _, eff := range effects {
			switch e := eff.(type) {
			case AppendTextEffect:
				first := stats.FragmentCount == 0
				stats.RecordFirstFragment()
				r.target.Send(FragmentMsg{Fragment: e.Fragment, IsFirst: first})

			case PersistSessionEffect:
				if r.persist != nil {
					if err := r.persist(e.SessionID); err != nil {
						logging.Component("turn").Warn().Err(err).
							Str("session_id", e.SessionID).
							Msg("session id persistence failed")
					}
				}
				r.target.Send(SessionMsg{SessionID: e.SessionID})

			case FinalizeEffect:
				stats.Finalize()
				e.Message.Stats = stats
				r.target.Send(FinalizedMsg{Message: e.Message})

			case SurfaceErrorEffect:
				r.target.Send(ErrorMsg{Text: e.Message, Retrying: e.Retrying})

			case RunFallbackEffect:
				fallback = true

			case AppendPlaceholderEffect:
				placeholder := model.NewErrorMessage(state.SessionID, placeholderText(e.Text))
				r.target.Send(PlaceholderMsg{Message: placeholder})
			}
		}
	})

	return fallback
}

// placeholderText is the body of the error-role placeholder message.
func placeholderText(detail string) string {
	text := "I couldn't respond to this message. The streaming and fallback requests both failed"
	if detail != "" {
		return text + ": " + detail
	}
	return text + "."
}
