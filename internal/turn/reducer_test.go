// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package turn

import (
	"testing"
	"time"

	"github.com/jeranaias/inkwell-tui/internal/model"
)

// drive applies events in order and collects every emitted effect.
func drive(s TurnState, events ...Event) (TurnState, []Effect) {
	var all []Effect
	for _, ev := range events {
		var effects []Effect
		s, effects = Reduce(s, ev)
		all = append(all, effects...)
	}
	return s, all
}

// finalizedMessage pulls the message out of the single FinalizeEffect,
// or nil when none was emitted.
func finalizedMessage(effects []Effect) *model.Message {
	for _, eff := range effects {
		if fin, ok := eff.(FinalizeEffect); ok {
			return fin.Message
		}
	}
	return nil
}

func countFallbacks(effects []Effect) int {
	n := 0
	for _, eff := range effects {
		if _, ok := eff.(RunFallbackEffect); ok {
			n++
		}
	}
	return n
}

func countPlaceholders(effects []Effect) int {
	n := 0
	for _, eff := range effects {
		if _, ok := eff.(AppendPlaceholderEffect); ok {
			n++
		}
	}
	return n
}

func countPersists(effects []Effect) int {
	n := 0
	for _, eff := range effects {
		if _, ok := eff.(PersistSessionEffect); ok {
			n++
		}
	}
	return n
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func done() DoneEvent {
	return DoneEvent{Now: testNow, FallbackID: "local-id"}
}

// =============================================================================
// HAPPY PATH
// =============================================================================

func TestReduce_FullTurn(t *testing.T) {
	state, effects := drive(NewTurnState("sess1"),
		StartEvent{},
		MetaEvent{SessionID: "sess1", MessageID: "m1"},
		TextEvent{Fragment: "Hello"},
		TextEvent{Fragment: ", world"},
		done(),
	)

	if state.Phase != PhaseFinalized {
		t.Fatalf("Phase = %v, want finalized", state.Phase)
	}

	msg := finalizedMessage(effects)
	if msg == nil {
		t.Fatal("No FinalizeEffect emitted")
	}
	if msg.ID != "m1" {
		t.Errorf("Message ID = %q, want m1", msg.ID)
	}
	if msg.Content != "Hello, world" {
		t.Errorf("Content = %q, want %q", msg.Content, "Hello, world")
	}
	if msg.Role != model.RoleAssistant {
		t.Errorf("Role = %q, want assistant", msg.Role)
	}
	if msg.SessionID != "sess1" {
		t.Errorf("SessionID = %q, want sess1", msg.SessionID)
	}
	if !msg.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want %v", msg.CreatedAt, testNow)
	}

	// Each fragment surfaced exactly once, in order.
	var appended []string
	for _, eff := range effects {
		if a, ok := eff.(AppendTextEffect); ok {
			appended = append(appended, a.Fragment)
		}
	}
	if len(appended) != 2 || appended[0] != "Hello" || appended[1] != ", world" {
		t.Errorf("AppendTextEffects = %v, want [Hello, \", world\"]", appended)
	}
}

func TestReduce_PhaseProgression(t *testing.T) {
	s := NewTurnState("sess1")
	if s.Phase != PhaseIdle {
		t.Fatalf("Initial phase = %v, want idle", s.Phase)
	}

	s, _ = Reduce(s, StartEvent{})
	if s.Phase != PhaseAwaitingMeta {
		t.Errorf("After start: phase = %v, want awaiting_metadata", s.Phase)
	}

	s, _ = Reduce(s, MetaEvent{MessageID: "m1"})
	if s.Phase != PhaseStreaming {
		t.Errorf("After metadata: phase = %v, want streaming_text", s.Phase)
	}

	s, _ = Reduce(s, done())
	if s.Phase != PhaseFinalized {
		t.Errorf("After done: phase = %v, want finalized", s.Phase)
	}
}

// =============================================================================
// METADATA
// =============================================================================

func TestReduce_MetadataBindsOnce(t *testing.T) {
	state, effects := drive(NewTurnState("sess1"),
		StartEvent{},
		MetaEvent{MessageID: "m1"},
		TextEvent{Fragment: "text"},
		MetaEvent{MessageID: "m2"},
		done(),
	)

	if state.MessageID != "m1" {
		t.Errorf("MessageID = %q, want first binding m1", state.MessageID)
	}
	if msg := finalizedMessage(effects); msg.ID != "m1" {
		t.Errorf("Finalized ID = %q, want m1", msg.ID)
	}
}

func TestReduce_MetadataAfterTextIgnored(t *testing.T) {
	// A turn whose first payload is text has consumed its metadata
	// opportunity; a later metadata-shaped record cannot rebind ids.
	state, effects := drive(NewTurnState("sess1"),
		StartEvent{},
		TextEvent{Fragment: "leading text"},
		MetaEvent{MessageID: "late"},
		done(),
	)

	if state.MessageID != "" {
		t.Errorf("MessageID = %q, want empty (late metadata ignored)", state.MessageID)
	}
	msg := finalizedMessage(effects)
	if msg.ID != "local-id" {
		t.Errorf("Finalized ID = %q, want caller-supplied local-id", msg.ID)
	}
	if msg.Content != "leading text" {
		t.Errorf("Content = %q, want %q", msg.Content, "leading text")
	}
}

func TestReduce_LazySessionPersist(t *testing.T) {
	state, effects := drive(NewTurnState(""),
		StartEvent{},
		MetaEvent{SessionID: "srv-sess", MessageID: "m1"},
	)

	if state.SessionID != "srv-sess" {
		t.Errorf("SessionID = %q, want srv-sess", state.SessionID)
	}
	if n := countPersists(effects); n != 1 {
		t.Fatalf("PersistSessionEffect count = %d, want 1", n)
	}
	for _, eff := range effects {
		if p, ok := eff.(PersistSessionEffect); ok && p.SessionID != "srv-sess" {
			t.Errorf("PersistSessionEffect.SessionID = %q, want srv-sess", p.SessionID)
		}
	}
}

func TestReduce_KnownSessionNotRepersisted(t *testing.T) {
	_, effects := drive(NewTurnState("sess1"),
		StartEvent{},
		MetaEvent{SessionID: "sess1", MessageID: "m1"},
	)
	if n := countPersists(effects); n != 0 {
		t.Errorf("PersistSessionEffect count = %d, want 0 for known session", n)
	}
}

func TestReduce_ReferencesFlowToMessage(t *testing.T) {
	refs := []model.EntryReference{{EntryID: "e1", Score: 0.9}}
	tools := []model.ToolUsage{{Tool: "search_entries", Success: true}}

	_, effects := drive(NewTurnState("sess1"),
		StartEvent{},
		MetaEvent{MessageID: "m1", References: refs, Tools: tools},
		TextEvent{Fragment: "grounded"},
		done(),
	)

	msg := finalizedMessage(effects)
	if len(msg.References) != 1 || msg.References[0].EntryID != "e1" {
		t.Errorf("References = %+v, want the metadata's references", msg.References)
	}
	if len(msg.Tools) != 1 || msg.Tools[0].Tool != "search_entries" {
		t.Errorf("Tools = %+v, want the metadata's tool usage", msg.Tools)
	}
	if !msg.HasReferences() {
		t.Error("HasReferences should be set via metadata flag")
	}
}

// =============================================================================
// FINALIZATION
// =============================================================================

func TestReduce_EmptyStreamFinalizesEmptyMessage(t *testing.T) {
	state, effects := drive(NewTurnState("sess1"),
		StartEvent{},
		done(),
	)

	if state.Phase != PhaseFinalized {
		t.Fatalf("Phase = %v, want finalized", state.Phase)
	}
	msg := finalizedMessage(effects)
	if msg == nil {
		t.Fatal("Empty stream should still finalize a message")
	}
	if msg.Content != "" {
		t.Errorf("Content = %q, want empty", msg.Content)
	}
	if msg.ID != "local-id" {
		t.Errorf("ID = %q, want caller-supplied id", msg.ID)
	}
}

func TestReduce_MissingMetadataUsesFallbackID(t *testing.T) {
	_, effects := drive(NewTurnState("sess1"),
		StartEvent{},
		TextEvent{Fragment: "no metadata turn"},
		done(),
	)
	if msg := finalizedMessage(effects); msg.ID != "local-id" {
		t.Errorf("ID = %q, want local-id", msg.ID)
	}
}

func TestReduce_FinalizedAbsorbsLateEvents(t *testing.T) {
	state, _ := drive(NewTurnState("sess1"),
		StartEvent{},
		MetaEvent{MessageID: "m1"},
		TextEvent{Fragment: "body"},
		done(),
	)

	// Late stragglers after finalization must not disturb the result.
	late := []Event{TextEvent{Fragment: "x"}, ErrorEvent{Message: "late"}, done()}
	for _, ev := range late {
		next, effects := Reduce(state, ev)
		if next.Phase != PhaseFinalized {
			t.Errorf("Event %T moved phase to %v, want finalized", ev, next.Phase)
		}
		if len(effects) != 0 {
			t.Errorf("Event %T after finalize emitted %d effects, want 0", ev, len(effects))
		}
	}
}

// =============================================================================
// ERRORS AND FALLBACK
// =============================================================================

func TestReduce_FirstErrorRequestsFallback(t *testing.T) {
	state, effects := drive(NewTurnState("sess1"),
		StartEvent{},
		MetaEvent{MessageID: "m1"},
		TextEvent{Fragment: "partial"},
		ErrorEvent{Message: "connection reset"},
	)

	if state.Phase != PhaseErrored {
		t.Fatalf("Phase = %v, want errored", state.Phase)
	}
	if state.ErrorText != "connection reset" {
		t.Errorf("ErrorText = %q, want the failure text", state.ErrorText)
	}
	if !state.FallbackUsed {
		t.Error("FallbackUsed latch should be set on first error")
	}
	if n := countFallbacks(effects); n != 1 {
		t.Errorf("RunFallbackEffect count = %d, want 1", n)
	}
	if n := countPlaceholders(effects); n != 0 {
		t.Errorf("AppendPlaceholderEffect count = %d, want 0 on first error", n)
	}
	for _, eff := range effects {
		if se, ok := eff.(SurfaceErrorEffect); ok && !se.Retrying {
			t.Error("First error should surface with Retrying=true")
		}
	}
}

func TestReduce_SecondErrorAppendsPlaceholder(t *testing.T) {
	state, effects := drive(NewTurnState("sess1"),
		StartEvent{},
		ErrorEvent{Message: "stream failed"},
		StartEvent{}, // fallback attempt opens
		ErrorEvent{Message: "fallback failed"},
	)

	if state.Phase != PhaseErrored {
		t.Fatalf("Phase = %v, want errored", state.Phase)
	}
	if n := countFallbacks(effects); n != 1 {
		t.Errorf("RunFallbackEffect count = %d, want exactly 1 per turn", n)
	}
	if n := countPlaceholders(effects); n != 1 {
		t.Errorf("AppendPlaceholderEffect count = %d, want 1", n)
	}
	for _, eff := range effects {
		if p, ok := eff.(AppendPlaceholderEffect); ok && p.Text != "fallback failed" {
			t.Errorf("Placeholder text = %q, want the second failure", p.Text)
		}
	}
}

func TestReduce_NoPartialMessageOnError(t *testing.T) {
	state, effects := drive(NewTurnState("sess1"),
		StartEvent{},
		MetaEvent{MessageID: "m1"},
		TextEvent{Fragment: "Hello"},
		TextEvent{Fragment: ", wor"},
		ErrorEvent{Message: "cut off"},
	)

	if msg := finalizedMessage(effects); msg != nil {
		t.Errorf("Error mid-stream finalized a message: %+v", msg)
	}
	if state.Content() != "" {
		t.Errorf("Content after error = %q, want discarded", state.Content())
	}
}

func TestReduce_ErrorFromEachLivePhase(t *testing.T) {
	// From awaiting_metadata.
	s, _ := drive(NewTurnState("s"), StartEvent{}, ErrorEvent{Message: "e"})
	if s.Phase != PhaseErrored {
		t.Errorf("Error while awaiting metadata: phase = %v, want errored", s.Phase)
	}

	// From streaming_text.
	s, _ = drive(NewTurnState("s"), StartEvent{}, TextEvent{Fragment: "t"}, ErrorEvent{Message: "e"})
	if s.Phase != PhaseErrored {
		t.Errorf("Error while streaming: phase = %v, want errored", s.Phase)
	}
}

func TestReduce_FallbackRestartClearsTurnKeepsLatch(t *testing.T) {
	state, _ := drive(NewTurnState(""),
		StartEvent{},
		MetaEvent{SessionID: "srv-sess", MessageID: "m1"},
		TextEvent{Fragment: "partial"},
		ErrorEvent{Message: "stream died"},
		StartEvent{},
	)

	if state.Phase != PhaseAwaitingMeta {
		t.Errorf("Phase = %v, want awaiting_metadata after restart", state.Phase)
	}
	if !state.FallbackUsed {
		t.Error("FallbackUsed must survive the restart")
	}
	if state.SessionID != "srv-sess" {
		t.Errorf("SessionID = %q, want learned id to survive restart", state.SessionID)
	}
	if state.MessageID != "" || len(state.Fragments) != 0 || state.ErrorText != "" {
		t.Error("Restart should clear message id, fragments, and error text")
	}
	if state.MetaAccepted {
		t.Error("Restart should reopen the metadata opportunity")
	}
}

func TestReduce_FallbackSuccessFinalizesNormally(t *testing.T) {
	state, effects := drive(NewTurnState("sess1"),
		StartEvent{},
		ErrorEvent{Message: "stream died"},
		StartEvent{},
		MetaEvent{MessageID: "m2"},
		TextEvent{Fragment: "fallback reply"},
		done(),
	)

	if state.Phase != PhaseFinalized {
		t.Fatalf("Phase = %v, want finalized", state.Phase)
	}
	msg := finalizedMessage(effects)
	if msg == nil || msg.ID != "m2" || msg.Content != "fallback reply" {
		t.Errorf("Fallback result = %+v, want m2/\"fallback reply\"", msg)
	}
	if n := countPlaceholders(effects); n != 0 {
		t.Errorf("Placeholder count = %d, want 0 when fallback succeeds", n)
	}
}

func TestReduce_DuplicateErrorNoSecondFallback(t *testing.T) {
	// Two error events without an intervening restart must not request
	// two fallbacks or a placeholder.
	_, effects := drive(NewTurnState("sess1"),
		StartEvent{},
		ErrorEvent{Message: "first"},
		ErrorEvent{Message: "echo"},
	)
	if n := countFallbacks(effects); n != 1 {
		t.Errorf("RunFallbackEffect count = %d, want 1", n)
	}
	if n := countPlaceholders(effects); n != 0 {
		t.Errorf("AppendPlaceholderEffect count = %d, want 0", n)
	}
}

// =============================================================================
// OUT-OF-PHASE EVENTS
// =============================================================================

func TestReduce_EventsBeforeStartIgnored(t *testing.T) {
	s := NewTurnState("sess1")
	for _, ev := range []Event{MetaEvent{MessageID: "m1"}, TextEvent{Fragment: "x"}, done()} {
		next, effects := Reduce(s, ev)
		if next.Phase != PhaseIdle {
			t.Errorf("Event %T in idle moved phase to %v", ev, next.Phase)
		}
		if len(effects) != 0 {
			t.Errorf("Event %T in idle emitted effects", ev)
		}
	}
}

func TestReduce_ValueSemantics(t *testing.T) {
	base, _ := drive(NewTurnState("sess1"),
		StartEvent{},
		TextEvent{Fragment: "one"},
	)

	// Two divergent continuations from the same snapshot must not
	// observe each other's fragments.
	left, _ := Reduce(base, TextEvent{Fragment: " left"})
	right, _ := Reduce(base, TextEvent{Fragment: " right"})

	if got := left.Content(); got != "one left" {
		t.Errorf("Left content = %q, want %q", got, "one left")
	}
	if got := right.Content(); got != "one right" {
		t.Errorf("Right content = %q, want %q", got, "one right")
	}
	if got := base.Content(); got != "one" {
		t.Errorf("Base content mutated to %q", got)
	}
}

func TestPhase_String(t *testing.T) {
	testCases := []struct {
		phase    Phase
		expected string
	}{
		{PhaseIdle, "idle"},
		{PhaseAwaitingMeta, "awaiting_metadata"},
		{PhaseStreaming, "streaming_text"},
		{PhaseFinalized, "finalized"},
		{PhaseErrored, "errored"},
		{Phase(99), "unknown"},
	}
	for _, tc := range testCases {
		if got := tc.phase.String(); got != tc.expected {
			t.Errorf("Phase(%d).String() = %q, want %q", tc.phase, got, tc.expected)
		}
	}
}
