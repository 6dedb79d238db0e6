// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
//
// This file defines the view model. The model owns the transcript and
// every piece of per-turn state; stream consumption happens on a
// background goroutine that reaches the model exclusively through
// program messages, so the update loop stays the single writer.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/inkwell-tui/internal/commands"
	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/turn"
	"github.com/jeranaias/inkwell-tui/internal/ui/components"
	"github.com/jeranaias/inkwell-tui/internal/ui/styles"
)

// =============================================================================
// STATE
// =============================================================================

// State is the conversation view's coarse mode.
type State int

const (
	// StateComposing accepts input; no turn is in flight.
	StateComposing State = iota

	// StateStreaming has a turn in flight. Input is disabled until the
	// turn resolves, which keeps one accumulator per view.
	StateStreaming

	// StateError shows the failed-turn banner with its retry actions.
	StateError
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateComposing:
		return "composing"
	case StateStreaming:
		return "streaming"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the conversation view.
type Model struct {
	theme  *styles.Theme
	cfg    *config.Config
	cmdCtx *commands.Context

	// runner executes turns; nil until the program exists and the app
	// wires it in.
	runner *turn.Runner

	// Active conversation. The backend owns the canonical copy; this is
	// the local mirror the view renders.
	session     *model.Session
	personaID   string
	personaName string

	// Streaming state. inProgress points at the placeholder inside
	// session.Messages while fragments arrive.
	state        State
	inProgress   *model.Message
	buffer       *StreamingBuffer
	cancel       *turnCancel
	turnStart    time.Time
	awaitingWord bool
	retrying     bool

	// lastSent is the previous user message, kept for /retry.
	lastSent string

	// Input pipeline.
	input           textinput.Model
	keys            KeyMap
	registry        *commands.Registry
	parser          *commands.Parser
	completer       *commands.Completer
	completionState *commands.CompletionState
	completionPopup *components.CompletionPopup

	// Display.
	viewport  viewport.Model
	statusBar *components.StatusBar
	spinner   components.Spinner
	errBox    components.ErrorDisplay
	width     int
	height    int

	// Viewport content tracking. transcriptRev bumps on every mutation;
	// syncViewport skips the re-render when nothing changed since the
	// last set, which matters at streaming flush cadence.
	transcriptRev uint64
	renderedRev   uint64
	renderedWidth int

	// Status bar inputs, pushed into the component at render time so a
	// theme swap can rebuild components without losing state.
	online        bool
	cachedEntries int
	relockIn      time.Duration

	// Transcript search.
	searchMode    bool
	searchInput   textinput.Model
	searchQuery   string
	searchMatches []searchMatch
	searchIndex   int

	showHelp  bool
	helpTopic string
}

// New creates a conversation view. The runner is wired in later via
// SetRunner once the Bubble Tea program exists.
func New(theme *styles.Theme, cfg *config.Config, cmdCtx *commands.Context) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Write here, or / for commands"
	input.CharLimit = 4096
	input.PromptStyle = theme.InputPrompt
	input.TextStyle = theme.InputText
	input.PlaceholderStyle = theme.InputPlaceholder
	input.Focus()

	searchInput := textinput.New()
	searchInput.Prompt = "find: "
	searchInput.CharLimit = 120
	searchInput.PromptStyle = theme.InputPrompt
	searchInput.TextStyle = theme.InputText

	registry := commands.NewRegistry()

	m := Model{
		theme:           theme,
		cfg:             cfg,
		cmdCtx:          cmdCtx,
		session:         model.NewSession(),
		state:           StateComposing,
		buffer:          NewStreamingBuffer(),
		cancel:          newTurnCancel(),
		input:           input,
		keys:            DefaultKeyMap(),
		registry:        registry,
		parser:          commands.NewParser(registry),
		completer:       commands.NewCompleter(registry),
		completionState: commands.NewCompletionState(),
		completionPopup: components.NewCompletionPopup(theme),
		viewport:        viewport.New(80, 20),
		statusBar:       components.NewStatusBar(theme),
		spinner:         components.NewThinkingSpinner(theme),
		errBox:          components.NewErrorDisplay(theme),
		searchInput:     searchInput,
		transcriptRev:   1,
	}

	if cfg != nil {
		m.personaID = cfg.Chat.DefaultPersonaID
	}

	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// WIRING
// =============================================================================

// SetRunner wires the turn runner. Until it is set, submitting a
// message reports the backend as not connected.
func (m *Model) SetRunner(r *turn.Runner) {
	m.runner = r
}

// Completer exposes the completer so the app can wire its dynamic
// sources (cached sessions, persona names, tags, config keys).
func (m *Model) Completer() *commands.Completer {
	return m.completer
}

// Registry exposes the slash command registry for the help surfaces.
func (m *Model) Registry() *commands.Registry {
	return m.registry
}

// SetSize resizes the view and its viewport.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	m.viewport.Width = width
	m.viewport.Height = m.viewportHeight()
	m.input.Width = width - 8
	m.searchInput.Width = width - 16
	m.completionPopup.SetWidth(width / 2)
	m.syncViewport(false)
}

// SetTheme swaps the color theme. Stateless components are rebuilt;
// transcript and turn state are untouched.
func (m *Model) SetTheme(theme *styles.Theme) {
	m.theme = theme
	m.input.PromptStyle = theme.InputPrompt
	m.input.TextStyle = theme.InputText
	m.input.PlaceholderStyle = theme.InputPlaceholder
	m.searchInput.PromptStyle = theme.InputPrompt
	m.searchInput.TextStyle = theme.InputText
	m.completionPopup = components.NewCompletionPopup(theme)
	m.statusBar = components.NewStatusBar(theme)
	m.spinner = components.NewThinkingSpinner(theme)
	m.errBox = components.NewErrorDisplay(theme)
	m.markTranscript()
}

// SetOnline records backend reachability for the status bar.
func (m *Model) SetOnline(online bool) {
	m.online = online
}

// SetCachedEntries records the local mirror size for the status bar.
func (m *Model) SetCachedEntries(n int) {
	m.cachedEntries = n
}

// SetRelockIn records the relock countdown for the status bar.
func (m *Model) SetRelockIn(d time.Duration) {
	m.relockIn = d
}

// SetPersona applies a persona for subsequent turns.
func (m *Model) SetPersona(id, name string) {
	m.personaID = id
	m.personaName = name
}

// SetDraft pre-fills the input, used to restore an unsent draft.
func (m *Model) SetDraft(text string) {
	m.input.SetValue(text)
	m.input.CursorEnd()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ActiveSessionID returns the backend id of the current conversation,
// empty before lazy creation.
func (m *Model) ActiveSessionID() string {
	return m.session.ID
}

// Busy reports whether a turn is in flight.
func (m *Model) Busy() bool {
	return m.state == StateStreaming
}

// TranscriptLen returns the number of messages on screen.
func (m *Model) TranscriptLen() int {
	return len(m.session.Messages)
}

// =============================================================================
// TRANSCRIPT MUTATION
// =============================================================================

// LoadSession replaces the transcript with a hydrated session.
func (m *Model) LoadSession(s *model.Session) {
	if s == nil {
		return
	}
	m.abortTurn()
	m.session = s
	m.personaID = s.PersonaID
	m.lastSent = ""
	m.clearSearch()
	m.errBox.Dismiss()
	m.state = StateComposing
	m.markTranscript()
	m.viewport.GotoBottom()

	if m.cmdCtx != nil && m.cmdCtx.Session != nil {
		m.cmdCtx.Session.SetMessageCount(len(s.Messages))
	}
}

// StartNew drops the transcript and begins a fresh conversation.
func (m *Model) StartNew() {
	m.abortTurn()
	m.session = model.NewSession()
	if m.cfg != nil && m.personaID == "" {
		m.personaID = m.cfg.Chat.DefaultPersonaID
	}
	m.lastSent = ""
	m.clearSearch()
	m.errBox.Dismiss()
	m.state = StateComposing
	m.markTranscript()
	m.viewport.GotoTop()
}

// appendMessage adds a message to the transcript and scrolls to it.
func (m *Model) appendMessage(msg *model.Message) {
	m.session.AddMessage(msg)
	m.markTranscript()
	m.syncViewport(true)
}

// appendNotice adds a system-role line to the transcript.
func (m *Model) appendNotice(text string) {
	m.appendMessage(model.NewMessage(m.session.ID, model.RoleSystem, text))
}

// replaceInProgress swaps the streaming placeholder for its final
// form, keeping its position in the transcript.
func (m *Model) replaceInProgress(final *model.Message) {
	if m.inProgress == nil {
		m.appendMessage(final)
		return
	}
	for i, msg := range m.session.Messages {
		if msg == m.inProgress {
			m.session.Messages[i] = final
			m.inProgress = nil
			m.markTranscript()
			m.syncViewport(true)
			return
		}
	}
	// Placeholder vanished (session swap mid-turn); append instead.
	m.inProgress = nil
	m.appendMessage(final)
}

// dropInProgress removes the streaming placeholder without replacement.
func (m *Model) dropInProgress() {
	if m.inProgress == nil {
		return
	}
	for i, msg := range m.session.Messages {
		if msg == m.inProgress {
			m.session.Messages = append(m.session.Messages[:i], m.session.Messages[i+1:]...)
			break
		}
	}
	m.inProgress = nil
	m.markTranscript()
}

// abortTurn cancels any in-flight turn and clears its view state.
// The stream goroutine goes silent on cancellation, so cleanup happens
// here rather than in a message handler.
func (m *Model) abortTurn() {
	m.cancel.stop()
	m.buffer.Reset()
	m.spinner.Stop()
	m.inProgress = nil
	m.awaitingWord = false
	m.retrying = false
}

// markTranscript notes a transcript mutation for syncViewport.
func (m *Model) markTranscript() {
	m.transcriptRev++
}

// syncViewport re-renders the transcript into the viewport when it has
// changed since the last render. follow pins the viewport to the
// bottom afterward; otherwise it only stays pinned if it already was.
func (m *Model) syncViewport(follow bool) {
	if m.width == 0 {
		return
	}
	if m.renderedRev == m.transcriptRev && m.renderedWidth == m.width {
		if follow {
			m.viewport.GotoBottom()
		}
		return
	}

	wasBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	m.renderedRev = m.transcriptRev
	m.renderedWidth = m.width

	if follow || wasBottom {
		m.viewport.GotoBottom()
	}
}

// viewportHeight computes the transcript height from the fixed chrome:
// header, input block, and status bar, plus the search bar when open.
func (m *Model) viewportHeight() int {
	h := m.height - headerHeight - inputHeight - statusHeight
	if m.searchMode {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

// clearSearch leaves transcript search mode.
func (m *Model) clearSearch() {
	m.searchMode = false
	m.searchQuery = ""
	m.searchMatches = nil
	m.searchIndex = 0
	m.searchInput.SetValue("")
	m.searchInput.Blur()
	m.markTranscript()
}
