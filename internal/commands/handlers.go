// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat view.
package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/session"
	"github.com/jeranaias/inkwell-tui/internal/storage"
)

// Timeouts for backend calls issued from command handlers. Handlers run
// on background goroutines via tea.Cmd, so these bound how long a stale
// result can arrive after the user has moved on.
const (
	apiTimeout  = 10 * time.Second
	pingTimeout = 2 * time.Second
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// These messages are sent by command handlers to update the application
// state. The app model routes them; handlers never touch view state.

// ShowHelpMsg triggers the help display.
type ShowHelpMsg struct {
	Topic string // Optional mode or category
}

// NewSessionMsg starts a fresh conversation.
type NewSessionMsg struct{}

// SessionInfo is one row of the session list.
type SessionInfo struct {
	ID        string
	Title     string
	PersonaID string
	UpdatedAt string
	MsgCount  int
}

// SessionListMsg carries the fetched session list.
type SessionListMsg struct {
	Sessions []SessionInfo
	Total    int
	Error    error
}

// SessionLoadedMsg carries a fully hydrated session.
type SessionLoadedMsg struct {
	ID      string
	Session *model.Session
	Error   error
}

// SessionRenamedMsg reports the outcome of /rename.
type SessionRenamedMsg struct {
	Session *model.Session
	Error   error
}

// SessionDeletedMsg reports the outcome of /delete. WasActive tells the
// app to also clear its transcript and persisted session id.
type SessionDeletedMsg struct {
	ID        string
	WasActive bool
	Error     error
}

// PersonaListMsg carries the fetched persona list.
type PersonaListMsg struct {
	Personas []*model.Persona
	Error    error
}

// PersonaAppliedMsg reports a persona switch. Session is nil when there
// was no active session to update; the app then holds the persona for
// the next lazily created session.
type PersonaAppliedMsg struct {
	Persona *model.Persona
	Session *model.Session
	Error   error
}

// CopyRequestMsg asks the app to copy the last assistant response. The
// transcript lives in the chat view, so the content is filled there.
type CopyRequestMsg struct{}

// ExportRequestMsg asks the app to export the current conversation.
type ExportRequestMsg struct {
	Format storage.Format
}

// RetryRequestMsg asks the app to resend the last user message.
type RetryRequestMsg struct{}

// UndoRequestMsg asks the conversation view to take back the last
// exchange: the reply is removed and the user's words return to the
// input for editing.
type UndoRequestMsg struct{}

// ResetRequestMsg asks the app to discard the failed turn state while
// keeping the transcript on screen.
type ResetRequestMsg struct{}

// ThemeChangedMsg reports a theme switch already applied to the config.
type ThemeChangedMsg struct {
	Theme string
}

// ShowConfigMsg triggers showing configuration. With a Key it shows one
// value; without, the whole settings view.
type ShowConfigMsg struct {
	Key   string
	Value string
}

// ConfigUpdateMsg reports a config set. The app persists the config and
// re-applies anything derived from it (theme, client options).
type ConfigUpdateMsg struct {
	Key      string
	Value    interface{}
	OldValue interface{}
	Error    error
}

// LockNowMsg relocks the journal immediately.
type LockNowMsg struct{}

// LockStatusMsg describes the journal lock state.
type LockStatusMsg struct {
	Enabled  bool
	Enrolled bool
	RelockIn string
}

// StatusInfoMsg contains the /status report.
type StatusInfoMsg struct {
	BaseURL       string
	Reachable     bool
	PingError     error
	SessionID     string
	MessageCount  int
	SessionStart  string
	IdleTime      string
	RelockIn      string
	LockEnabled   bool
	LockEnrolled  bool
	CachedEntries int
}

// ErrorMsg reports a command error with a recovery tip.
type ErrorMsg struct {
	Title   string
	Message string
	Tip     string
}

// SystemNoticeMsg adds an informational line to the transcript.
type SystemNoticeMsg struct {
	Content string
}

// =============================================================================
// NAVIGATION HANDLERS
// =============================================================================

// HandleHelp shows help information.
func HandleHelp(ctx *Context, args []string) tea.Cmd {
	topic := ""
	if len(args) > 0 {
		topic = args[0]
	}
	return func() tea.Msg {
		return ShowHelpMsg{Topic: topic}
	}
}

// HandleQuit exits the application.
func HandleQuit(ctx *Context, args []string) tea.Cmd {
	return tea.Quit
}

// HandleStatus gathers backend, session, cache, and lock state.
func HandleStatus(ctx *Context, args []string) tea.Cmd {
	if ctx == nil {
		return func() tea.Msg {
			return StatusInfoMsg{}
		}
	}

	client := ctx.Client
	manager := ctx.Session
	cache := ctx.Cache
	lock := ctx.Lock
	lockEnabled := ctx.Config != nil && ctx.Config.Lock.Enabled

	return func() tea.Msg {
		info := StatusInfoMsg{LockEnabled: lockEnabled}

		if client != nil {
			info.BaseURL = client.BaseURL()

			reqCtx, cancel := context.WithTimeout(context.Background(), pingTimeout)
			err := client.Ping(reqCtx)
			cancel()

			info.Reachable = err == nil
			info.PingError = err
		}

		if manager != nil {
			status := manager.GetStatus()
			info.SessionID = status.ActiveSessionID
			info.MessageCount = status.MessageCount
			info.SessionStart = status.StartTime.Format("15:04:05")
			info.IdleTime = session.FormatDuration(status.IdleTime)
			if status.RelockIn > 0 {
				info.RelockIn = session.FormatDuration(status.RelockIn)
			}
		}

		if cache != nil {
			if n, err := cache.Count(); err == nil {
				info.CachedEntries = n
			}
		}

		if lock != nil {
			info.LockEnrolled = lock.Enrolled()
		}

		return info
	}
}

// HandleLock shows lock status, or relocks immediately with "now".
func HandleLock(ctx *Context, args []string) tea.Cmd {
	enrolled := ctx != nil && ctx.Lock != nil && ctx.Lock.Enrolled()
	enabled := ctx != nil && ctx.Config != nil && ctx.Config.Lock.Enabled

	if len(args) > 0 && strings.EqualFold(args[0], "now") {
		if !enrolled || !enabled {
			return func() tea.Msg {
				return ErrorMsg{
					Title:   "Lock not enabled",
					Message: "The journal lock is not set up",
					Tip:     "Run 'inkwell lock enable' to enroll an authenticator",
				}
			}
		}
		return func() tea.Msg {
			return LockNowMsg{}
		}
	}

	relockIn := ""
	if ctx != nil && ctx.Session != nil {
		if d := ctx.Session.RelockIn(); d > 0 {
			relockIn = session.FormatDuration(d)
		}
	}
	return func() tea.Msg {
		return LockStatusMsg{Enabled: enabled, Enrolled: enrolled, RelockIn: relockIn}
	}
}

// =============================================================================
// CONVERSATION HANDLERS
// =============================================================================

// HandleNew starts a new conversation.
func HandleNew(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return NewSessionMsg{}
	}
}

// HandleSessions fetches and shows the session list.
func HandleSessions(ctx *Context, args []string) tea.Cmd {
	if ctx == nil || ctx.Client == nil {
		return notConnected("/sessions")
	}

	client := ctx.Client
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		page, err := client.ListSessions(reqCtx, api.ListOptions{})
		if err != nil {
			return SessionListMsg{Error: err}
		}

		sessions := make([]SessionInfo, len(page.Sessions))
		for i, s := range page.Sessions {
			sessions[i] = SessionInfo{
				ID:        s.ID,
				Title:     s.Title,
				PersonaID: s.PersonaID,
				UpdatedAt: s.UpdatedAt.Format("2006-01-02 15:04"),
				MsgCount:  s.MessageCount,
			}
		}

		return SessionListMsg{Sessions: sessions, Total: page.Total}
	}
}

// HandleLoad loads a saved session with its messages.
func HandleLoad(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		// No id given; show the picker instead.
		return HandleSessions(ctx, args)
	}
	if ctx == nil || ctx.Client == nil {
		return notConnected("/load")
	}

	client := ctx.Client
	id := args[0]
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		sess, err := client.GetSession(reqCtx, id)
		if err != nil {
			return SessionLoadedMsg{ID: id, Error: err}
		}

		if len(sess.Messages) == 0 && sess.MessageCount > 0 {
			msgs, err := client.ListMessages(reqCtx, sess.ID)
			if err != nil {
				return SessionLoadedMsg{ID: id, Error: err}
			}
			sess.Messages = msgs
		}

		return SessionLoadedMsg{ID: sess.ID, Session: sess}
	}
}

// HandleRename renames the active session.
func HandleRename(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return usageError("/rename", "/rename <title>", "a new title is required")
	}
	if ctx == nil || ctx.Client == nil {
		return notConnected("/rename")
	}

	activeID := ""
	if ctx.Session != nil {
		activeID = ctx.Session.ActiveSession()
	}
	if activeID == "" {
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "No active session",
				Message: "Nothing to rename yet",
				Tip:     "Send a message first, or /load a session",
			}
		}
	}

	client := ctx.Client
	title := strings.Join(args, " ")
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		sess, err := client.UpdateSession(reqCtx, activeID, api.UpdateSessionRequest{Title: &title})
		return SessionRenamedMsg{Session: sess, Error: err}
	}
}

// HandleDelete deletes the named session, or the active one.
func HandleDelete(ctx *Context, args []string) tea.Cmd {
	if ctx == nil || ctx.Client == nil {
		return notConnected("/delete")
	}

	activeID := ""
	if ctx.Session != nil {
		activeID = ctx.Session.ActiveSession()
	}

	id := activeID
	if len(args) > 0 {
		id = args[0]
	}
	if id == "" {
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "No session to delete",
				Message: "There is no active session",
				Tip:     "Usage: /delete [session_id]",
			}
		}
	}

	client := ctx.Client
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		err := client.DeleteSession(reqCtx, id)
		return SessionDeletedMsg{ID: id, WasActive: id == activeID, Error: err}
	}
}

// HandlePersona lists personas or applies one to the active session.
func HandlePersona(ctx *Context, args []string) tea.Cmd {
	if ctx == nil || ctx.Client == nil {
		return notConnected("/persona")
	}
	client := ctx.Client

	if len(args) == 0 {
		return func() tea.Msg {
			reqCtx, cancel := context.WithTimeout(context.Background(), apiTimeout)
			defer cancel()

			personas, err := client.ListPersonas(reqCtx)
			return PersonaListMsg{Personas: personas, Error: err}
		}
	}

	name := strings.Join(args, " ")
	activeID := ""
	if ctx.Session != nil {
		activeID = ctx.Session.ActiveSession()
	}

	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		personas, err := client.ListPersonas(reqCtx)
		if err != nil {
			return PersonaAppliedMsg{Error: err}
		}

		persona := matchPersona(personas, name)
		if persona == nil {
			return PersonaAppliedMsg{Error: fmt.Errorf("no persona named %q", name)}
		}

		// A session references at most one persona. Without an active
		// session the app holds the choice for the next one.
		if activeID == "" {
			return PersonaAppliedMsg{Persona: persona}
		}

		sess, err := client.UpdateSession(reqCtx, activeID, api.UpdateSessionRequest{PersonaID: &persona.ID})
		if err != nil {
			return PersonaAppliedMsg{Persona: persona, Error: err}
		}
		return PersonaAppliedMsg{Persona: persona, Session: sess}
	}
}

// matchPersona finds a persona by name (case-insensitive), falling back
// to id prefix so completion values resolve too.
func matchPersona(personas []*model.Persona, name string) *model.Persona {
	for _, p := range personas {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	for _, p := range personas {
		if strings.HasPrefix(p.ID, name) {
			return p
		}
	}
	return nil
}

// HandleCopy copies the last response to the clipboard.
func HandleCopy(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return CopyRequestMsg{}
	}
}

// HandleExport exports the conversation.
func HandleExport(ctx *Context, args []string) tea.Cmd {
	raw := ""
	if len(args) > 0 {
		raw = args[0]
	}

	format, err := storage.ParseFormat(raw)
	if err != nil {
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Invalid export format",
				Message: fmt.Sprintf("Unknown format: %s", raw),
				Tip:     "Supported formats: markdown, json",
			}
		}
	}

	return func() tea.Msg {
		return ExportRequestMsg{Format: format}
	}
}

// HandleRetry resends the last user message.
func HandleRetry(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return RetryRequestMsg{}
	}
}

// HandleReset discards the failed turn and keeps the transcript.
func HandleReset(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return ResetRequestMsg{}
	}
}

// HandleUndo takes back the most recent exchange.
func HandleUndo(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return UndoRequestMsg{}
	}
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// HandleTheme shows or changes the color theme.
func HandleTheme(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		theme := "inkwell-dark"
		if ctx != nil && ctx.Config != nil {
			theme = ctx.Config.Appearance.Theme
		}
		return func() tea.Msg {
			return SystemNoticeMsg{Content: "Current theme: " + theme}
		}
	}

	theme := strings.ToLower(args[0])
	// Pre-rename names still work.
	switch theme {
	case "dark":
		theme = "inkwell-dark"
	case "light":
		theme = "inkwell-light"
	}

	switch theme {
	case "inkwell-dark", "inkwell-light":
		if ctx != nil && ctx.Config != nil {
			ctx.Config.Appearance.Theme = theme
		}
		return func() tea.Msg {
			return ThemeChangedMsg{Theme: theme}
		}
	default:
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Invalid theme",
				Message: fmt.Sprintf("Unknown theme: %s", args[0]),
				Tip:     "Valid themes: inkwell-dark, inkwell-light",
			}
		}
	}
}

// HandleConfig shows or sets configuration.
func HandleConfig(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return func() tea.Msg {
			return ShowConfigMsg{}
		}
	}

	key := args[0]

	if len(args) == 1 {
		if ctx != nil && ctx.Config != nil {
			val, err := ctx.Config.Get(key)
			if err != nil {
				return func() tea.Msg {
					return ErrorMsg{
						Title:   "Config error",
						Message: err.Error(),
						Tip:     "Use /config to see all available keys",
					}
				}
			}
			return func() tea.Msg {
				return ShowConfigMsg{Key: key, Value: fmt.Sprintf("%v", val)}
			}
		}
		return func() tea.Msg {
			return ShowConfigMsg{Key: key}
		}
	}

	value := strings.Join(args[1:], " ")
	if ctx != nil && ctx.Config != nil {
		oldVal, _ := ctx.Config.Get(key)
		if err := ctx.Config.Set(key, value); err != nil {
			return func() tea.Msg {
				return ConfigUpdateMsg{Key: key, Error: err}
			}
		}
		newVal, _ := ctx.Config.Get(key)
		return func() tea.Msg {
			return ConfigUpdateMsg{Key: key, Value: newVal, OldValue: oldVal}
		}
	}
	return func() tea.Msg {
		return ShowConfigMsg{Key: key, Value: value}
	}
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// notConnected reports that a command needs the backend client.
func notConnected(cmd string) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{
			Title:   "Backend not configured",
			Message: cmd + " needs a backend connection",
			Tip:     "Run 'inkwell setup' or check backend.base_url in config",
		}
	}
}

// usageError reports a missing or malformed argument.
func usageError(cmd, usage, message string) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{
			Title:   "Missing argument",
			Message: cmd + ": " + message,
			Tip:     "Usage: " + usage,
		}
	}
}

// =============================================================================
// HELP TEXT GENERATION
// =============================================================================

// GenerateHelpText generates the help text for all commands.
// mode can be "quick", "all", or a category name (navigation,
// conversation, journal, settings).
func GenerateHelpText(r *Registry, mode string) string {
	mode = strings.ToLower(mode)

	if mode == "" {
		mode = "quick"
	}

	if mode == "quick" {
		return generateQuickHelp()
	}

	categoryMap := map[string]string{
		"navigation":   "Navigation",
		"conversation": "Conversation",
		"journal":      "Journal",
		"settings":     "Settings",
	}
	if canonical, ok := categoryMap[mode]; ok {
		return generateCategoryHelp(r, canonical)
	}

	return generateFullHelp(r)
}

// generateQuickHelp shows only the essential commands.
func generateQuickHelp() string {
	var sb strings.Builder

	sb.WriteString("Quick Help - Essential Commands\n")
	sb.WriteString("================================\n\n")

	sb.WriteString("  /help             Show this help (or try /help all)\n")
	sb.WriteString("  /new              Start a new conversation\n")
	sb.WriteString("  /sessions         List saved sessions\n")
	sb.WriteString("  /search           Search journal entries\n")
	sb.WriteString("  /entries          Browse journal entries\n")
	sb.WriteString("  /quit             Exit inkwell\n\n")

	sb.WriteString("Keyboard Shortcuts\n")
	sb.WriteString("------------------\n")
	sb.WriteString("  Ctrl+C            Stop generation / Cancel\n")
	sb.WriteString("  Tab               Auto-complete commands\n")
	sb.WriteString("  PgUp/PgDn         Scroll the transcript\n")
	sb.WriteString("  Esc               Close overlay / back\n\n")

	sb.WriteString("Want more? Try:\n")
	sb.WriteString("  /help all          - Show all available commands\n")
	sb.WriteString("  /help navigation   - Navigation commands\n")
	sb.WriteString("  /help conversation - Conversation management\n")
	sb.WriteString("  /help journal      - Entry search and analysis\n")
	sb.WriteString("  /help settings     - Settings and configuration\n")

	return sb.String()
}

// generateCategoryHelp generates help for a specific category.
func generateCategoryHelp(r *Registry, category string) string {
	var sb strings.Builder

	categories := r.ByCategory()
	cmds, ok := categories[category]
	if !ok || len(cmds) == 0 {
		return fmt.Sprintf("No commands found in category: %s\n\nTry /help all to see all categories.", category)
	}

	sb.WriteString(fmt.Sprintf("%s Commands\n", category))
	sb.WriteString(strings.Repeat("=", len(category)+9) + "\n\n")

	writeCommandLines(&sb, cmds)
	sb.WriteString("\n")

	switch category {
	case "Navigation":
		sb.WriteString("Tips:\n")
		sb.WriteString("  - Press Esc to close any overlay\n")
		sb.WriteString("  - /status shows backend health and the relock timer\n")
	case "Conversation":
		sb.WriteString("Tips:\n")
		sb.WriteString("  - Sessions are created on your first message, not before\n")
		sb.WriteString("  - /export writes to ~/.inkwell/exports\n")
		sb.WriteString("  - /retry resends after a failed turn\n")
	case "Journal":
		sb.WriteString("Tips:\n")
		sb.WriteString("  - Search falls back to the local mirror when offline\n")
		sb.WriteString("  - Toggle semantic search inside the search overlay\n")
		sb.WriteString("  - /entries <tag> filters by tag\n")
	case "Settings":
		sb.WriteString("Tips:\n")
		sb.WriteString("  - Config changes persist to ~/.inkwell/config.toml\n")
		sb.WriteString("  - Custom colors live under appearance.custom_colors\n")
	}

	sb.WriteString("\nUse /help all to see all commands, or /help quick for essentials.\n")

	return sb.String()
}

// generateFullHelp generates the complete help text with all commands.
func generateFullHelp(r *Registry) string {
	var sb strings.Builder

	sb.WriteString("Available Commands\n")
	sb.WriteString("==================\n\n")

	categories := r.ByCategory()
	categoryOrder := []string{"Navigation", "Conversation", "Journal", "Settings"}

	for _, category := range categoryOrder {
		cmds, ok := categories[category]
		if !ok || len(cmds) == 0 {
			continue
		}

		sb.WriteString(category + "\n")
		sb.WriteString(strings.Repeat("-", len(category)) + "\n")
		writeCommandLines(&sb, cmds)
		sb.WriteString("\n")
	}

	sb.WriteString("Keyboard Shortcuts\n")
	sb.WriteString("------------------\n")
	sb.WriteString("  Ctrl+C          Stop generation / Cancel\n")
	sb.WriteString("  Tab             Auto-complete commands\n")
	sb.WriteString("  PgUp/PgDn       Scroll the transcript\n")
	sb.WriteString("  Esc             Close overlay / back\n\n")

	sb.WriteString("Tip: Use /help <category> to see commands by category\n")
	sb.WriteString("Categories: navigation, conversation, journal, settings\n")

	return sb.String()
}

// writeCommandLines writes one aligned line per command plus its usage.
func writeCommandLines(sb *strings.Builder, cmds []*Command) {
	for _, cmd := range cmds {
		if cmd.Hidden {
			continue
		}

		line := "  " + cmd.Name
		if len(cmd.Aliases) > 0 {
			line += " (" + strings.Join(cmd.Aliases, ", ") + ")"
		}

		for len(line) < 30 {
			line += " "
		}

		line += cmd.Description
		sb.WriteString(line + "\n")

		if cmd.Usage != "" {
			sb.WriteString("      Usage: " + cmd.Usage + "\n")
		}
	}
}
