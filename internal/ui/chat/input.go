// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
//
// This file contains the input submission pipeline: slash command
// dispatch, turn startup, and tab completion.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/commands"
	"github.com/jeranaias/inkwell-tui/internal/model"
)

// =============================================================================
// SUBMISSION
// =============================================================================

// submitInput handles Enter: slash commands dispatch to their handlers,
// anything else becomes a turn against the backend.
func (m Model) submitInput() (Model, tea.Cmd) {
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}

	if commands.IsCommand(content) {
		return m.runCommand(content)
	}
	return m.sendMessage(content)
}

// runCommand parses and executes a slash command. Unknown commands and
// argument mistakes land in the transcript instead of a modal, so the
// flow of writing is never interrupted.
func (m Model) runCommand(raw string) (Model, tea.Cmd) {
	m.input.Reset()
	m.clearCompletions()
	m.clearDraft()

	result := m.parser.Parse(raw)
	if result.Command == nil {
		m.appendNotice("Unknown command " + result.CommandName + ". /help lists what I know.")
		return m, nil
	}

	if err := commands.ValidateArgs(result.Command, result.Args); err != nil {
		notice := err.Error()
		if result.Command.Usage != "" {
			notice += " (usage: " + result.Command.Usage + ")"
		}
		m.appendNotice(notice)
		return m, nil
	}

	if m.cmdCtx != nil {
		m.cmdCtx.RecordActivity()
	}
	return m, result.Command.Handler(m.cmdCtx, result.Args)
}

// sendMessage starts a turn for the given content, appending the user
// message first.
func (m Model) sendMessage(content string) (Model, tea.Cmd) {
	if m.runner == nil {
		m.errBox.ShowMessage(
			"Not connected",
			"The backend client is not configured.",
			"Run inkwell setup, or set backend.base_url in the config file.",
		)
		m.state = StateError
		return m, nil
	}

	m.input.Reset()
	m.clearCompletions()
	m.clearDraft()

	m.appendMessage(model.NewUserMessage(m.session.ID, content))
	return m.beginTurn(content)
}

// beginTurn appends the streaming placeholder and launches the turn
// goroutine. The user message, when one is wanted, is already in the
// transcript.
func (m Model) beginTurn(content string) (Model, tea.Cmd) {
	placeholder := model.NewAssistantMessage(m.session.ID)
	m.appendMessage(placeholder)
	m.inProgress = placeholder

	m.state = StateStreaming
	m.errBox.Dismiss()
	m.buffer.Reset()
	m.awaitingWord = true
	m.retrying = false
	m.lastSent = content

	if m.cmdCtx != nil && m.cmdCtx.Session != nil {
		m.cmdCtx.Session.RecordMessage()
		m.cmdCtx.Session.MarkDirty()
	}

	req := api.SendRequest{
		SessionID: m.session.ID,
		Content:   content,
		PersonaID: m.personaID,
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	m.cancel.arm(cancelFn)

	runner := m.runner
	launch := func() tea.Msg {
		go runner.Run(ctx, req)
		return nil
	}

	return m, tea.Batch(launch, m.spinner.Start(), streamTickCmd())
}

// resendLast retries the previous user message without duplicating it
// in the transcript. A trailing error placeholder from the failed
// attempt is removed first.
func (m Model) resendLast() (Model, tea.Cmd) {
	if m.lastSent == "" {
		m.appendNotice("Nothing to retry yet.")
		return m, nil
	}
	if m.state == StateStreaming {
		return m, nil
	}

	if n := len(m.session.Messages); n > 0 {
		if last := m.session.Messages[n-1]; last.Role == model.RoleError {
			m.session.Messages = m.session.Messages[:n-1]
			m.markTranscript()
		}
	}

	m.errBox.Dismiss()
	return m.beginTurn(m.lastSent)
}

// stopTurn cancels the in-flight turn. The stream goroutine goes
// silent after cancellation, so the view resolves its own state: the
// partial reply is kept when any of it arrived.
func (m Model) stopTurn() (Model, tea.Cmd) {
	if !m.cancel.stop() && m.state != StateStreaming {
		return m, nil
	}

	if leftover, ok := m.buffer.ForceFlush(); ok && m.inProgress != nil {
		m.inProgress.AppendFragment(leftover)
	}

	if m.inProgress != nil {
		if strings.TrimSpace(m.inProgress.GetDisplayContent()) == "" {
			m.dropInProgress()
			m.appendNotice("Reply stopped.")
		} else {
			m.inProgress.FinalizeStream(nil)
			m.inProgress = nil
			m.appendNotice("Reply stopped early; the partial text is kept.")
		}
	}

	m.buffer.Reset()
	m.spinner.Stop()
	m.awaitingWord = false
	m.retrying = false
	m.state = StateComposing
	m.input.Focus()
	m.syncViewport(true)
	return m, textinput.Blink
}

// clearDraft wipes the saved draft after a successful submit.
func (m *Model) clearDraft() {
	if m.cmdCtx != nil && m.cmdCtx.Session != nil {
		m.cmdCtx.Session.SetDraft("")
	}
}

// =============================================================================
// UNDO
// =============================================================================

// undoLastExchange removes the trailing reply and the user message
// that prompted it, then puts the user's words back in the input for
// editing. System notices in between are skipped, error placeholders
// only exist locally and need no server delete.
func (m Model) undoLastExchange() (Model, tea.Cmd, bool) {
	if m.state == StateStreaming {
		m.appendNotice("A reply is still arriving; stop it first with Ctrl+C.")
		return m, nil, true
	}

	msgs := m.session.Messages
	reply, user := -1, -1
	for i := len(msgs) - 1; i >= 0; i-- {
		switch msgs[i].Role {
		case model.RoleSystem:
			continue
		case model.RoleAssistant, model.RoleError:
			if reply == -1 && user == -1 {
				reply = i
				continue
			}
		case model.RoleUser:
			if user == -1 {
				user = i
			}
		}
		break
	}

	if reply == -1 && user == -1 {
		m.appendNotice("Nothing to take back yet.")
		return m, nil, true
	}

	// Count the server-side rows being removed before mutating. Only
	// user and assistant messages exist on the backend.
	serverRows := 0
	if reply != -1 && msgs[reply].Role == model.RoleAssistant {
		serverRows++
	}
	if user != -1 {
		serverRows++
	}
	serverTotal := 0
	for _, msg := range msgs {
		if msg.Role == model.RoleUser || msg.Role == model.RoleAssistant {
			serverTotal++
		}
	}

	restored := ""
	if reply != -1 {
		m.session.RemoveMessage(msgs[reply].ID)
	}
	if user != -1 {
		restored = msgs[user].GetDisplayContent()
		m.session.RemoveMessage(msgs[user].ID)
	}

	m.lastSent = ""
	m.errBox.Dismiss()
	m.state = StateComposing
	m.markTranscript()

	if restored != "" {
		m.input.SetValue(restored)
		m.input.CursorEnd()
		m.input.Focus()
		m.appendNotice("Took back the last exchange. Your words are back in the input.")
	} else {
		m.appendNotice("Took back the last reply.")
	}

	return m, m.deleteServerRows(serverTotal, serverRows), true
}

// deleteServerRows removes the trailing rows from the backend session
// off the update loop.
func (m *Model) deleteServerRows(total, rows int) tea.Cmd {
	if rows == 0 || total < rows || !m.session.IsPersisted() {
		return nil
	}
	if m.cmdCtx == nil || m.cmdCtx.Client == nil {
		return nil
	}

	client := m.cmdCtx.Client
	sessionID := m.session.ID
	start, end := total-rows, total-1
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		deleted, err := client.DeleteMessageRange(ctx, sessionID, start, end)
		return MessageDeletedMsg{Deleted: deleted, Err: err}
	}
}

// =============================================================================
// TAB COMPLETION
// =============================================================================

// handleCompletion drives Tab/Shift+Tab. The first press computes
// candidates; further presses cycle, rewriting the input each time so
// Enter always submits exactly what is shown.
func (m Model) handleCompletion(forward bool) (Model, tea.Cmd) {
	if m.completionState.Visible {
		if forward {
			m.completionState.Next()
		} else {
			m.completionState.Prev()
		}
		m.applyCompletion()
		return m, nil
	}

	completions := m.completer.Complete(m.input.Value(), m.input.Position())
	if len(completions) == 0 {
		return m, nil
	}

	m.completionState.Update(m.input.Value(), completions)
	m.applyCompletion()
	if len(completions) == 1 {
		m.completionState.Clear()
	}
	return m, nil
}

// applyCompletion rewrites the input with the selected candidate.
func (m *Model) applyCompletion() {
	selected := m.completionState.GetSelected()
	if selected == nil {
		return
	}

	original := m.completionState.OriginalInput
	start := completionStart(original, len(original))
	next := original[:start] + selected.Value

	// A command that takes arguments gets its separating space so the
	// user can keep typing.
	if strings.HasPrefix(selected.Value, "/") {
		if cmd := m.completer.GetCommand(selected.Value); cmd != nil && len(cmd.Args) > 0 {
			next += " "
		}
	}

	m.input.SetValue(next)
	m.input.CursorEnd()
}

// completionStart finds the rewrite point: the command's leading slash
// or the start of the argument being typed.
func completionStart(input string, cursor int) int {
	if cursor > len(input) {
		cursor = len(input)
	}

	for i := cursor - 1; i >= 0; i-- {
		switch input[i] {
		case ' ':
			return i + 1
		case '/':
			if i == 0 {
				return 0
			}
		}
	}
	return 0
}

// clearCompletions hides the completion popup.
func (m *Model) clearCompletions() {
	m.completionState.Clear()
}
