// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package turn

import (
	"strings"
	"time"

	"github.com/jeranaias/inkwell-tui/internal/model"
)

// =============================================================================
// PHASES
// =============================================================================

// Phase is the accumulator's position in a turn's lifecycle.
type Phase int

const (
	// PhaseIdle is the state before the transport call is initiated.
	PhaseIdle Phase = iota
	// PhaseAwaitingMeta is the state after the call opens, before any
	// payload has arrived.
	PhaseAwaitingMeta
	// PhaseStreaming is the state while text fragments accumulate.
	PhaseStreaming
	// PhaseFinalized is the terminal success state; the assistant
	// message has been constructed.
	PhaseFinalized
	// PhaseErrored is reached from any live phase on failure. A turn
	// can leave it only by starting a fallback attempt.
	PhaseErrored
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingMeta:
		return "awaiting_metadata"
	case PhaseStreaming:
		return "streaming_text"
	case PhaseFinalized:
		return "finalized"
	case PhaseErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// =============================================================================
// EVENTS
// =============================================================================

// Event is one input to the reducer. Events carry everything impure the
// transition needs (ids, timestamps), so Reduce itself never touches
// the clock or randomness.
type Event interface {
	event()
}

// StartEvent marks the initiation of a transport call, either the
// original stream or the fallback attempt.
type StartEvent struct{}

// MetaEvent carries the turn's metadata record.
type MetaEvent struct {
	SessionID  string
	MessageID  string
	References []model.EntryReference
	Tools      []model.ToolUsage
}

// TextEvent carries one incremental text fragment.
type TextEvent struct {
	Fragment string
}

// DoneEvent signals end-of-turn. The caller supplies the timestamp for
// the finalized message and a locally generated id used when no
// metadata record named one.
type DoneEvent struct {
	Now        time.Time
	FallbackID string
}

// ErrorEvent carries a turn-ending failure: a server error record, a
// transport failure, or a malformed-irrecoverable payload.
type ErrorEvent struct {
	Message string
}

func (StartEvent) event() {}
func (MetaEvent) event()  {}
func (TextEvent) event()  {}
func (DoneEvent) event()  {}
func (ErrorEvent) event() {}

// =============================================================================
// EFFECTS
// =============================================================================

// Effect is one output of the reducer, executed by the runner in order.
type Effect interface {
	effect()
}

// AppendTextEffect asks the presentation to append a fragment to the
// in-progress message and re-render.
type AppendTextEffect struct {
	Fragment string
}

// PersistSessionEffect reports a lazily created session id. It must be
// persisted, in view state and on disk, before any further request is
// made against the session.
type PersistSessionEffect struct {
	SessionID string
}

// FinalizeEffect carries the constructed assistant message. Appending
// it to the session's message list is the only path by which streamed
// content becomes a message.
type FinalizeEffect struct {
	Message *model.Message
}

// SurfaceErrorEffect asks the presentation to show an error banner.
// Retrying is true when a fallback attempt follows.
type SurfaceErrorEffect struct {
	Message  string
	Retrying bool
}

// RunFallbackEffect asks the coordinator to re-send the turn over the
// non-streaming endpoint. Emitted at most once per turn.
type RunFallbackEffect struct{}

// AppendPlaceholderEffect asks the presentation to append an
// error-role placeholder message after the fallback also failed.
type AppendPlaceholderEffect struct {
	Text string
}

func (AppendTextEffect) effect()        {}
func (PersistSessionEffect) effect()    {}
func (FinalizeEffect) effect()          {}
func (SurfaceErrorEffect) effect()      {}
func (RunFallbackEffect) effect()       {}
func (AppendPlaceholderEffect) effect() {}

// =============================================================================
// TURN STATE
// =============================================================================

// TurnState is the accumulator for one user turn. It has value
// semantics and is threaded explicitly through Reduce; nothing here is
// package-global, so two views cannot share an accumulator by
// accident.
type TurnState struct {
	Phase     Phase
	SessionID string // known at turn start, or learned from metadata
	MessageID string // from metadata; empty until then

	// Fragments accumulates text in arrival order. Joined once at
	// finalization to avoid quadratic copying.
	Fragments []string

	References []model.EntryReference
	Tools      []model.ToolUsage

	// MetaAccepted latches after the metadata record so later
	// metadata-shaped events cannot rebind ids mid-turn.
	MetaAccepted bool

	// FallbackUsed latches after the fallback attempt is requested.
	// It survives the errored-to-awaiting restart, which is what
	// bounds a turn to a single automatic retry.
	FallbackUsed bool

	// ErrorText is the surfaced failure, set in PhaseErrored.
	ErrorText string
}

// NewTurnState returns the idle state for a turn against the given
// session. An empty session id means the backend creates the session
// lazily on first send.
func NewTurnState(sessionID string) TurnState {
	return TurnState{
		Phase:     PhaseIdle,
		SessionID: sessionID,
	}
}

// Content returns the accumulated text so far.
func (s TurnState) Content() string {
	return strings.Join(s.Fragments, "")
}

// Live reports whether the turn can still receive stream events.
func (s TurnState) Live() bool {
	return s.Phase == PhaseAwaitingMeta || s.Phase == PhaseStreaming
}

// =============================================================================
// REDUCER
// =============================================================================

// Reduce applies one event to the turn state. It is a pure function:
// no IO, no clock, no randomness; everything impure arrives inside the
// event. Unknown or out-of-phase events leave the state unchanged.
func Reduce(s TurnState, ev Event) (TurnState, []Effect) {
	switch e := ev.(type) {
	case StartEvent:
		return reduceStart(s)
	case MetaEvent:
		return reduceMeta(s, e)
	case TextEvent:
		return reduceText(s, e)
	case DoneEvent:
		return reduceDone(s, e)
	case ErrorEvent:
		return reduceError(s, e)
	default:
		return s, nil
	}
}

// reduceStart opens a turn attempt. From PhaseErrored it begins the
// fallback attempt: accumulated fragments and the error are discarded,
// the session id and the fallback latch survive.
func reduceStart(s TurnState) (TurnState, []Effect) {
	switch s.Phase {
	case PhaseIdle, PhaseErrored:
		s.Phase = PhaseAwaitingMeta
		s.Fragments = nil
		s.References = nil
		s.Tools = nil
		s.MessageID = ""
		s.MetaAccepted = false
		s.ErrorText = ""
		return s, nil
	default:
		return s, nil
	}
}

// reduceMeta accepts the turn's metadata. Only the first metadata
// event, and only before finalization, can bind ids; anything later is
// ignored.
func reduceMeta(s TurnState, e MetaEvent) (TurnState, []Effect) {
	if s.Phase != PhaseAwaitingMeta || s.MetaAccepted {
		return s, nil
	}

	s.MetaAccepted = true
	s.Phase = PhaseStreaming
	s.MessageID = e.MessageID
	s.References = e.References
	s.Tools = e.Tools

	var effects []Effect
	if s.SessionID == "" && e.SessionID != "" {
		// Lazy session creation: the id must reach durable storage
		// before any further request names this session.
		s.SessionID = e.SessionID
		effects = append(effects, PersistSessionEffect{SessionID: e.SessionID})
	}
	return s, effects
}

// reduceText appends a fragment. Metadata is optional: the first
// fragment moves an awaiting turn straight to streaming.
func reduceText(s TurnState, e TextEvent) (TurnState, []Effect) {
	if !s.Live() {
		return s, nil
	}
	if s.Phase == PhaseAwaitingMeta {
		s.Phase = PhaseStreaming
		s.MetaAccepted = true
	}

	fragments := make([]string, len(s.Fragments), len(s.Fragments)+1)
	copy(fragments, s.Fragments)
	s.Fragments = append(fragments, e.Fragment)

	return s, []Effect{AppendTextEffect{Fragment: e.Fragment}}
}

// reduceDone finalizes the turn. An empty stream finalizes an empty
// message; a missing metadata id falls back to the caller-supplied id.
func reduceDone(s TurnState, e DoneEvent) (TurnState, []Effect) {
	if !s.Live() {
		return s, nil
	}

	id := s.MessageID
	if id == "" {
		id = e.FallbackID
	}

	msg := &model.Message{
		ID:         id,
		SessionID:  s.SessionID,
		Role:       model.RoleAssistant,
		Content:    s.Content(),
		CreatedAt:  e.Now,
		References: s.References,
		Tools:      s.Tools,
	}
	if len(s.References) > 0 {
		msg.SetMeta(model.MetaHasReferences, true)
	}
	if len(s.Tools) > 0 {
		msg.SetMeta(model.MetaToolUsage, true)
	}

	s.Phase = PhaseFinalized
	s.Fragments = nil

	return s, []Effect{FinalizeEffect{Message: msg}}
}

// reduceError moves any live phase to errored. The first failure of a
// turn requests the fallback; the second appends the error-role
// placeholder instead. A finalized turn absorbs late errors so a
// completed message is never followed by a spurious banner.
func reduceError(s TurnState, e ErrorEvent) (TurnState, []Effect) {
	if s.Phase == PhaseFinalized {
		return s, nil
	}
	if s.Phase == PhaseErrored {
		return s, nil
	}

	s.Phase = PhaseErrored
	s.ErrorText = e.Message
	s.Fragments = nil

	if !s.FallbackUsed {
		s.FallbackUsed = true
		return s, []Effect{
			SurfaceErrorEffect{Message: e.Message, Retrying: true},
			RunFallbackEffect{},
		}
	}
	return s, []Effect{
		SurfaceErrorEffect{Message: e.Message},
		AppendPlaceholderEffect{Text: e.Message},
	}
}
