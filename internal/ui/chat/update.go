// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
//
// This file routes messages into the model: keyboard input, turn
// lifecycle events from the stream goroutine, slash command results,
// and the streaming flush tick.
package chat

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/inkwell-tui/internal/commands"
	"github.com/jeranaias/inkwell-tui/internal/logging"
	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/storage"
	"github.com/jeranaias/inkwell-tui/internal/turn"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update routes one message. The app model forwards everything the
// conversation view owns: keys while this view is active, all turn
// messages, and the command results that mutate the transcript.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case StreamTickMsg:
		return m.handleStreamTick()

	case turn.StartedMsg:
		m.state = StateStreaming
		m.turnStart = msg.StartTime
		return m, nil

	case turn.SessionMsg:
		m.adoptSessionID(msg.SessionID)
		return m, nil

	case turn.FragmentMsg:
		m.buffer.Write(msg.Fragment)
		if msg.IsFirst {
			m.awaitingWord = false
			m.spinner.Stop()
		}
		return m, nil

	case turn.FinalizedMsg:
		return m.handleFinalized(msg)

	case turn.ErrorMsg:
		return m.handleTurnError(msg)

	case turn.PlaceholderMsg:
		m.replaceInProgress(msg.Message)
		m.buffer.Reset()
		return m, nil

	case ReferencesMsg:
		m.handleReferences(msg)
		return m, nil

	case MessageDeletedMsg:
		if msg.Err != nil {
			m.appendNotice("The exchange is gone here but the server still has it: " + msg.Err.Error())
		}
		return m, nil

	case CopyResultMsg:
		if msg.Err != nil {
			m.appendNotice("Clipboard unavailable: " + msg.Err.Error())
		} else {
			m.appendNotice("Copied the last reply to the clipboard.")
		}
		return m, nil

	case ExportResultMsg:
		if msg.Err != nil {
			m.appendNotice("Export failed: " + msg.Err.Error())
		} else {
			m.appendNotice("Exported the conversation to " + msg.Path)
		}
		return m, nil
	}

	if next, cmd, handled := m.updateFromCommand(msg); handled {
		return next, cmd
	}

	// Everything else feeds the animated children: spinner frames and
	// cursor blinks.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.searchMode {
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// =============================================================================
// COMMAND RESULTS
// =============================================================================

// updateFromCommand handles the slash command results that belong to
// the conversation view. The third return is false for messages the
// app routes elsewhere.
func (m Model) updateFromCommand(msg tea.Msg) (Model, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case commands.NewSessionMsg:
		m.StartNew()
		m.appendNotice("Started a fresh conversation.")
		return m, nil, true

	case commands.SessionLoadedMsg:
		if msg.Error != nil {
			m.errBox.Show("Couldn't open the session", msg.Error)
			m.state = StateError
			return m, nil, true
		}
		m.LoadSession(msg.Session)
		title := msg.Session.Title
		if title == "" {
			title = msg.Session.ID
		}
		m.appendNotice("Resumed \"" + title + "\".")
		return m, nil, true

	case commands.SessionRenamedMsg:
		if msg.Error != nil {
			m.appendNotice("Rename failed: " + msg.Error.Error())
		} else if msg.Session != nil {
			m.session.Title = msg.Session.Title
			m.appendNotice("Renamed this conversation to \"" + msg.Session.Title + "\".")
		}
		return m, nil, true

	case commands.SessionDeletedMsg:
		if msg.Error != nil {
			m.appendNotice("Delete failed: " + msg.Error.Error())
		} else if msg.WasActive {
			m.StartNew()
			m.appendNotice("Deleted the conversation; starting fresh.")
		} else {
			m.appendNotice("Deleted session " + msg.ID + ".")
		}
		return m, nil, true

	case commands.PersonaAppliedMsg:
		if msg.Error != nil {
			m.appendNotice("Persona change failed: " + msg.Error.Error())
		} else if msg.Persona != nil {
			m.SetPersona(msg.Persona.ID, msg.Persona.Name)
			m.session.PersonaID = msg.Persona.ID
			m.appendNotice("Now writing with " + msg.Persona.Name + ".")
		}
		return m, nil, true

	case commands.CopyRequestMsg:
		return m.copyLastReply()

	case commands.ExportRequestMsg:
		return m.exportConversation(msg.Format)

	case commands.RetryRequestMsg:
		next, cmd := m.resendLast()
		return next, cmd, true

	case commands.UndoRequestMsg:
		return m.undoLastExchange()

	case commands.ResetRequestMsg:
		m.errBox.Dismiss()
		m.retrying = false
		m.state = StateComposing
		m.input.Focus()
		m.appendNotice("Cleared the failed turn. The transcript is untouched.")
		return m, textinput.Blink, true

	case commands.SystemNoticeMsg:
		m.appendNotice(msg.Content)
		return m, nil, true

	case commands.ErrorMsg:
		m.errBox.ShowMessage(msg.Title, msg.Message, msg.Tip)
		m.state = StateError
		return m, nil, true

	case commands.ShowHelpMsg:
		m.showHelp = true
		m.helpTopic = msg.Topic
		return m, nil, true

	case commands.ShowConfigMsg:
		if msg.Key != "" {
			m.appendNotice(msg.Key + " = " + msg.Value)
			return m, nil, true
		}
		// The bare /config opens the settings panel, which the app owns.
		return m, nil, false

	case commands.ConfigUpdateMsg:
		if msg.Error != nil {
			m.appendNotice("Config change failed: " + msg.Error.Error())
		} else {
			m.appendNotice("Set " + msg.Key + ".")
		}
		return m, nil, true

	case commands.ThemeChangedMsg:
		m.appendNotice("Theme switched to " + msg.Theme + ".")
		return m, nil, true

	case commands.LockStatusMsg:
		m.appendNotice(formatLockStatus(msg))
		return m, nil, true

	case commands.StatusInfoMsg:
		m.appendNotice(formatStatusInfo(msg))
		return m, nil, true
	}

	return m, nil, false
}

// =============================================================================
// TURN LIFECYCLE
// =============================================================================

// handleStreamTick flushes buffered fragments into the in-progress
// message and reschedules itself while the turn lives.
func (m Model) handleStreamTick() (Model, tea.Cmd) {
	if m.state != StateStreaming {
		return m, nil
	}

	if chunk, ok := m.buffer.Flush(); ok && m.inProgress != nil {
		m.inProgress.AppendFragment(chunk)
		m.markTranscript()
		m.syncViewport(true)
	}
	return m, streamTickCmd()
}

// handleFinalized installs the completed reply and re-opens input.
func (m Model) handleFinalized(msg turn.FinalizedMsg) (Model, tea.Cmd) {
	final := msg.Message
	m.replaceInProgress(final)

	m.state = StateComposing
	m.spinner.Stop()
	m.cancel.release()
	m.buffer.Reset()
	m.awaitingWord = false
	m.retrying = false
	m.session.UpdatedAt = time.Now()
	m.input.Focus()

	cmds := []tea.Cmd{textinput.Blink}
	if cmd := m.prefetchReferences(final); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// handleTurnError reacts to a failed attempt. A retrying error keeps
// the streaming state alive for the fallback; a final one raises the
// banner.
func (m Model) handleTurnError(msg turn.ErrorMsg) (Model, tea.Cmd) {
	if msg.Retrying {
		m.retrying = true
		m.awaitingWord = true
		// The fallback resends the whole turn, so the failed attempt's
		// partial text is discarded rather than appended to.
		m.buffer.Reset()
		if m.inProgress != nil {
			m.inProgress.ResetStream()
			m.markTranscript()
			m.syncViewport(true)
		}
		return m, nil
	}

	m.state = StateError
	m.spinner.Stop()
	m.cancel.release()
	m.awaitingWord = false
	m.retrying = false

	m.errBox.Show("The assistant couldn't reply", errors.New(msg.Text))
	m.errBox.SetActions(true)
	return m, nil
}

// adoptSessionID records the lazily created session id on the local
// mirror. Messages sent before the id existed pick it up too, so an
// export of this conversation names the right session throughout.
func (m *Model) adoptSessionID(id string) {
	if id == "" {
		return
	}
	m.session.ID = id
	for _, msg := range m.session.Messages {
		if msg.SessionID == "" {
			msg.SessionID = id
		}
	}
}

// =============================================================================
// REFERENCES
// =============================================================================

// prefetchReferences fetches entry references for a finalized reply
// whose metadata announces them but whose stream did not inline them.
// Fire-and-forget: a failure only costs the footer.
func (m *Model) prefetchReferences(msg *model.Message) tea.Cmd {
	if msg == nil || msg.ID == "" || len(msg.References) > 0 || !msg.HasReferences() {
		return nil
	}
	if m.cmdCtx == nil || m.cmdCtx.Client == nil || m.session.ID == "" {
		return nil
	}

	client := m.cmdCtx.Client
	sessionID := m.session.ID
	messageID := msg.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		refs, err := client.GetMessageReferences(ctx, sessionID, messageID)
		return NewReferencesMsg(messageID, refs, err)
	}
}

// handleReferences attaches fetched references to their message.
func (m *Model) handleReferences(msg ReferencesMsg) {
	if msg.Err != nil {
		logging.Component("chat").Debug().Err(msg.Err).
			Str("message_id", msg.MessageID).
			Msg("reference prefetch failed")
		return
	}
	for _, candidate := range m.session.Messages {
		if candidate.ID == msg.MessageID {
			candidate.References = msg.References
			m.markTranscript()
			m.syncViewport(false)
			return
		}
	}
}

// =============================================================================
// CLIPBOARD AND EXPORT
// =============================================================================

// copyLastReply copies the most recent assistant message.
func (m Model) copyLastReply() (Model, tea.Cmd, bool) {
	last := m.session.LastAssistantMessage()
	if last == nil || strings.TrimSpace(last.GetDisplayContent()) == "" {
		m.appendNotice("No reply to copy yet.")
		return m, nil, true
	}

	content := last.GetDisplayContent()
	cmd := func() tea.Msg {
		err := copyToClipboard(content)
		return NewCopyResultMsg(len(content), err)
	}
	return m, cmd, true
}

// exportConversation writes the transcript to disk off the update
// loop. The session is snapshotted first so typing during the write
// races nothing.
func (m Model) exportConversation(format storage.Format) (Model, tea.Cmd, bool) {
	if len(m.session.Messages) == 0 {
		m.appendNotice("Nothing to export yet.")
		return m, nil, true
	}

	snapshot := *m.session
	snapshot.Messages = make([]*model.Message, len(m.session.Messages))
	copy(snapshot.Messages, m.session.Messages)

	cmd := func() tea.Msg {
		path, err := storage.ExportSession(&snapshot, format, "")
		return ExportResultMsg{Path: path, Format: format, Err: err}
	}
	return m, cmd, true
}

// =============================================================================
// KEYBOARD
// =============================================================================

// handleKey routes one keypress by precedence: help overlay, error
// banner, transcript search, global chords, then the input field.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.cmdCtx != nil {
		m.cmdCtx.RecordActivity()
	}

	if m.showHelp {
		return m.handleHelpKey(msg)
	}
	if m.state == StateError {
		return m.handleErrorKey(msg)
	}
	if m.searchMode {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Stop):
		if m.state == StateStreaming {
			return m.stopTurn()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Search):
		if m.state != StateStreaming {
			m.searchMode = true
			m.searchInput.Focus()
			m.viewport.Height = m.viewportHeight()
			return m, textinput.Blink
		}
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		next, cmd, _ := m.copyLastReply()
		return next, cmd
	}

	// While a reply is streaming the composer is closed.
	if m.state == StateStreaming {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Complete):
		return m.handleCompletion(true)

	case key.Matches(msg, m.keys.CompleteUp):
		return m.handleCompletion(false)

	case key.Matches(msg, m.keys.Submit):
		m.clearCompletions()
		return m.submitInput()

	case key.Matches(msg, m.keys.Dismiss):
		m.clearCompletions()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.clearCompletions()
		if m.cmdCtx != nil && m.cmdCtx.Session != nil {
			m.cmdCtx.Session.SetDraft(m.input.Value())
		}
	}
	return m, cmd
}

// handleHelpKey closes the overlay on the usual keys and swallows the
// rest.
func (m Model) handleHelpKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter", "f1":
		m.showHelp = false
		m.helpTopic = ""
	}
	return m, nil
}

// handleErrorKey drives the banner actions: r retries, R resets, Esc
// or Enter dismisses.
func (m Model) handleErrorKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.errBox.Dismiss()
		m.state = StateComposing
		return m.resendLast()
	case "R":
		m.errBox.Dismiss()
		m.retrying = false
		m.state = StateComposing
		m.input.Focus()
		m.appendNotice("Cleared the failed turn. The transcript is untouched.")
		return m, textinput.Blink
	case "esc", "enter":
		m.errBox.Dismiss()
		m.state = StateComposing
		m.input.Focus()
		return m, textinput.Blink
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// handleSearchKey drives transcript search: live match updates while
// typing, Enter for the next hit, Ctrl+P for the previous.
func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.clearSearch()
		m.viewport.Height = m.viewportHeight()
		m.syncViewport(false)
		return m, nil
	case "enter":
		m.advanceMatch(1)
		return m, nil
	case "ctrl+p":
		m.advanceMatch(-1)
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() != before {
		m.refreshSearch()
	}
	return m, cmd
}

// refreshSearch recomputes matches for the current query and jumps to
// the first one.
func (m *Model) refreshSearch() {
	m.searchQuery = strings.TrimSpace(m.searchInput.Value())
	m.searchMatches = findMatches(m.session.Messages, m.searchQuery)
	m.searchIndex = 0
	m.markTranscript()
	m.syncViewport(false)
	if len(m.searchMatches) > 0 {
		m.scrollToMatch(m.searchMatches[0])
	}
}

// advanceMatch moves the match cursor and scrolls to it.
func (m *Model) advanceMatch(delta int) {
	if len(m.searchMatches) == 0 {
		return
	}
	m.searchIndex = (m.searchIndex + delta + len(m.searchMatches)) % len(m.searchMatches)
	m.markTranscript()
	m.syncViewport(false)
	m.scrollToMatch(m.searchMatches[m.searchIndex])
}

// formatLockStatus renders the /lock report.
func formatLockStatus(msg commands.LockStatusMsg) string {
	if !msg.Enabled {
		return "Journal lock is off. Enable it with: inkwell lock enable"
	}
	if !msg.Enrolled {
		return "Journal lock is enabled but not enrolled yet. Run: inkwell lock enable"
	}
	if msg.RelockIn == "" {
		return "Journal lock is on."
	}
	return "Journal lock is on. Relock in " + msg.RelockIn + "."
}

// formatStatusInfo renders the /status report as one system message.
func formatStatusInfo(msg commands.StatusInfoMsg) string {
	var b strings.Builder
	b.WriteString("Status\n")

	b.WriteString("  backend: " + msg.BaseURL)
	if msg.Reachable {
		b.WriteString(" (reachable)")
	} else if msg.PingError != nil {
		b.WriteString(" (unreachable: " + msg.PingError.Error() + ")")
	} else {
		b.WriteString(" (unreachable)")
	}
	b.WriteString("\n")

	if msg.SessionID != "" {
		b.WriteString("  session: " + msg.SessionID)
		if msg.MessageCount > 0 {
			b.WriteString(", " + pluralMessages(msg.MessageCount))
		}
		b.WriteString("\n")
		if msg.SessionStart != "" {
			b.WriteString("  started: " + msg.SessionStart + ", idle " + msg.IdleTime + "\n")
		}
	} else {
		b.WriteString("  session: none yet\n")
	}

	if msg.LockEnabled {
		state := "enrolled"
		if !msg.LockEnrolled {
			state = "not enrolled"
		}
		b.WriteString("  lock: on (" + state + ")")
		if msg.RelockIn != "" {
			b.WriteString(", relock in " + msg.RelockIn)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("  lock: off\n")
	}

	b.WriteString("  mirror: " + pluralEntries(msg.CachedEntries))
	return b.String()
}

func pluralMessages(n int) string {
	if n == 1 {
		return "1 message"
	}
	return strconv.Itoa(n) + " messages"
}

func pluralEntries(n int) string {
	if n == 1 {
		return "1 entry cached"
	}
	return strconv.Itoa(n) + " entries cached"
}

// =============================================================================
// SCROLLING TO MATCHES
// =============================================================================

// scrollToMatch positions the viewport at the message containing the
// match, using the rendered block heights for the offset.
func (m *Model) scrollToMatch(match searchMatch) {
	if match.MessageIndex < 0 || match.MessageIndex >= len(m.session.Messages) {
		return
	}

	// Blocks are joined with one blank line between them.
	blocks := m.renderMessageBlocks()
	offset := 0
	for i := 0; i < match.MessageIndex && i < len(blocks); i++ {
		offset += countLines(blocks[i]) + 1
	}

	max := m.viewport.TotalLineCount() - m.viewport.Height
	if offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	m.viewport.SetYOffset(offset)
}

// countLines counts rendered lines in a block.
func countLines(s string) int {
	return strings.Count(s, "\n") + 1
}
