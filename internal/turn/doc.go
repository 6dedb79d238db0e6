// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn drives one chat turn from user input to a finalized
// assistant message.
//
// The center of the package is a pure state machine: Reduce maps a
// TurnState and one Event to the next TurnState plus a list of Effects.
// The reducer owns every protocol rule that is easy to get wrong with
// ad hoc flags: metadata is accepted once per turn, a streamed message
// enters the session only through finalization, a failed stream falls
// back to the non-streaming endpoint at most once, and a turn that
// already finalized absorbs stray late errors.
//
// Around the reducer sit two impure collaborators. A Sender performs
// the actual backend call and translates its outcome into reducer
// events: StreamSender consumes the record stream, DirectSender wraps
// the single request/response endpoint and synthesizes the equivalent
// event sequence, so both paths finalize through identical logic. The
// Runner executes senders on a goroutine, feeds events through the
// reducer, and translates effects into Bubble Tea messages delivered
// with program.Send.
//
// # Key Types
//
//   - TurnState: accumulator state for one turn, value semantics
//   - Event / Effect: reducer input and output unions
//   - Reduce: the pure transition function
//   - Sender: backend delivery strategy (stream or direct)
//   - Runner: goroutine driver bridging a turn into a tea.Program
//
// Abandoning a turn cancels the runner's context; the stream reader is
// dropped without signaling the server and no further messages are
// delivered for that turn.
package turn
