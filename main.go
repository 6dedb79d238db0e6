// inkwell - a terminal client for a self-hosted journaling backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/cli"
	"github.com/jeranaias/inkwell-tui/internal/commands"
	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/logging"
	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/session"
	"github.com/jeranaias/inkwell-tui/internal/storage"
	"github.com/jeranaias/inkwell-tui/internal/turn"
	"github.com/jeranaias/inkwell-tui/internal/ui/chat"
	"github.com/jeranaias/inkwell-tui/internal/ui/components"
	"github.com/jeranaias/inkwell-tui/internal/ui/styles"
	"github.com/jeranaias/inkwell-tui/internal/vault"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for goroutines that need to send messages
// back into the UI (the turn runner, the config watcher).
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

// programTarget satisfies turn.Target through programRef, so the
// runner can be built before the program exists.
type programTarget struct{}

func (programTarget) Send(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		exitOnError(cli.HandleAsk(args), args.JSON)
	case cli.CmdChat:
		exitOnError(cli.HandleChat(args), args.JSON)
	case cli.CmdSessions:
		exitOnError(cli.HandleSessions(args), args.JSON)
	case cli.CmdEntries:
		exitOnError(cli.HandleEntries(args), args.JSON)
	case cli.CmdSearch:
		exitOnError(cli.HandleSearch(args), args.JSON)
	case cli.CmdAnalyze:
		exitOnError(cli.HandleAnalyze(args), args.JSON)
	case cli.CmdPersonas:
		exitOnError(cli.HandlePersonas(args), args.JSON)
	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(args), args.JSON)
	case cli.CmdSetup:
		exitOnError(cli.HandleSetup(args), args.JSON)
	case cli.CmdLock:
		exitOnError(cli.HandleLock(args), args.JSON)
	case cli.CmdStatus:
		exitOnError(cli.HandleStatus(args), args.JSON)
	case cli.CmdVersion:
		exitOnError(cli.HandleVersion(args), args.JSON)
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		runTUI(args)
	}
}

// exitOnError reports a command failure with the shared error styling
// and exit code mapping.
func exitOnError(err error, jsonMode bool) {
	if err != nil {
		cli.HandleErrorAndExit(err, jsonMode)
	}
}

// =============================================================================
// TUI STARTUP
// =============================================================================

// runTUI starts the full-screen interface.
func runTUI(args cli.Args) {
	// An unknown command token falls through to here; suggest instead
	// of opening the TUI on a typo.
	if len(args.Raw) > 0 && !strings.HasPrefix(args.Raw[0], "-") {
		fmt.Fprintf(os.Stderr, "inkwell: unknown command %q\n", args.Raw[0])
		if s := cli.SuggestCommand(args.Raw[0]); s != "" {
			fmt.Fprintf(os.Stderr, "Did you mean: inkwell %s\n", s)
		}
		fmt.Fprintln(os.Stderr, "Run \"inkwell help\" for usage.")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\nContinuing with defaults.\n", err)
		cfg = config.Default()
	}

	logPath := cfg.Log.File
	if logPath == "" {
		if dir, derr := config.Dir(); derr == nil {
			logPath = filepath.Join(dir, logging.DefaultFileName)
		}
	}
	if err := logging.Init(logPath, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer logging.Close()

	theme := styles.NewTheme(styles.Options{
		ThemeName:    cfg.Appearance.Theme,
		CustomColors: cfg.Appearance.CustomColors,
		TextSize:     cfg.Chat.TextSize,
	})
	for _, role := range theme.UnknownColorRoles {
		logging.Component("main").Warn().Str("role", role).
			Msg("custom color names no theme role")
	}

	m := NewModel(theme, cfg, args)
	defer m.shutdown()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// Hot-reload appearance changes while the program runs. A watcher
	// failure only costs live reload.
	watcher, werr := config.NewWatcher(func(next *config.Config) {
		programTarget{}.Send(configReloadedMsg{cfg: next})
	})
	if werr == nil {
		if err := watcher.Watch(); err != nil {
			logging.Component("main").Warn().Err(err).Msg("config watch failed")
		}
		defer watcher.Close()
	}

	_, err = p.Run()

	programMu.Lock()
	programRef = nil
	programMu.Unlock()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// APP MODEL
// =============================================================================

// State is the app's top-level view.
type State int

const (
	// StateLocked shows the TOTP prompt. Nothing else renders until a
	// code verifies.
	StateLocked State = iota

	// StateWelcome is the landing screen shown until the first key.
	StateWelcome

	// StateChat is the conversation view. Overlays (sessions, entries,
	// search, analyses, personas, settings) draw on top of it.
	StateChat
)

// Model is the application model hosting every view.
type Model struct {
	state  State
	width  int
	height int

	theme *styles.Theme
	cfg   *config.Config

	client *api.Client
	sess   *session.Manager
	cache  *storage.EntryCache
	vlt    *vault.Vault
	lock   *vault.Lock
	cmdCtx *commands.Context
	runner *turn.Runner

	chat    chat.Model
	welcome components.Welcome

	sessionPicker *components.SessionPicker
	entryBrowser  *components.EntryBrowser
	searchOverlay *components.SearchOverlay
	analysisView  *components.AnalysisView
	personaPicker *components.PersonaPicker
	settingsPanel *components.SettingsPanel

	// Lock prompt state.
	lockInput textinput.Model
	lockError string

	// Caches backing tab completion. Refreshed whenever a listing
	// passes through the app.
	knownSessions []commands.SessionInfo
	knownPersonas []*model.Persona
	knownTags     []string

	online bool
}

// NewModel wires the application together from configuration.
func NewModel(theme *styles.Theme, cfg *config.Config, args cli.Args) *Model {
	log := logging.Component("main")

	client := cli.BuildClient(cfg)

	vlt, err := vault.Open()
	if err != nil {
		log.Warn().Err(err).Msg("vault unavailable")
	}
	var lock *vault.Lock
	if vlt != nil {
		if path, err := vault.DefaultLockPath(); err == nil {
			if lock, err = vault.NewLock(vlt, path); err != nil {
				log.Warn().Err(err).Msg("lock unavailable")
			}
		}
	}

	var cache *storage.EntryCache
	if path, err := storage.DefaultCachePath(); err == nil {
		if cache, err = storage.OpenCache(path); err != nil {
			log.Warn().Err(err).Msg("entry cache unavailable")
		}
	}

	sessCfg := session.DefaultConfig()
	if !cfg.Lock.Enabled {
		sessCfg.RelockAfter = 0
	}
	sess := session.NewManager(sessCfg)
	sess.SetCleanupCallback(func(sessionID string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return client.DeleteSession(ctx, sessionID)
	})

	cmdCtx := commands.NewContext(cfg, client, sess, cache, lock)

	chatModel := chat.New(theme, cfg, cmdCtx)

	runner := turn.NewRunner(programTarget{}, client, sess.SetActiveSession)
	runner.SetStreaming(cfg.Chat.Streaming)
	chatModel.SetRunner(runner)

	if d := sess.Draft(); d != "" {
		chatModel.SetDraft(d)
	}
	if args.Persona != "" {
		// Resolved against the backend list once it arrives; until
		// then the name rides along for display.
		chatModel.SetPersona("", args.Persona)
	}

	welcome := components.NewWelcome(theme)
	welcome.SetVersion(Version)
	welcome.SetBackend(cfg.Backend.BaseURL, false)
	welcome.SetLockEnabled(cfg.Lock.Enabled && lock != nil && lock.Enrolled())

	lockInput := textinput.New()
	lockInput.Prompt = ""
	lockInput.Placeholder = "6-digit code"
	lockInput.CharLimit = 6
	lockInput.Width = 12

	m := &Model{
		state:         StateWelcome,
		theme:         theme,
		cfg:           cfg,
		client:        client,
		sess:          sess,
		cache:         cache,
		vlt:           vlt,
		lock:          lock,
		cmdCtx:        cmdCtx,
		runner:        runner,
		chat:          chatModel,
		welcome:       welcome,
		sessionPicker: components.NewSessionPicker(theme),
		entryBrowser:  components.NewEntryBrowser(theme),
		searchOverlay: components.NewSearchOverlay(theme),
		analysisView:  components.NewAnalysisView(theme),
		personaPicker: components.NewPersonaPicker(theme),
		settingsPanel: components.NewSettingsPanel(theme),
		lockInput:     lockInput,
	}

	if cfg.Lock.Enabled && lock != nil && lock.Enrolled() {
		m.state = StateLocked
		m.lockInput.Focus()
	}

	// Completion sources read the app's caches; they never touch the
	// network from the input loop.
	completer := m.chat.Completer()
	completer.SessionsFn = func() []commands.SessionInfo { return m.knownSessions }
	completer.PersonasFn = func() []string {
		names := make([]string, len(m.knownPersonas))
		for i, p := range m.knownPersonas {
			names[i] = p.Name
		}
		return names
	}
	completer.TagsFn = func() []string { return m.knownTags }
	completer.ConfigFn = config.GetAllKeys

	return m
}

// =============================================================================
// APP MESSAGES
// =============================================================================

// backendPingMsg reports a reachability probe.
type backendPingMsg struct {
	latency time.Duration
	err     error
}

// pingTickMsg schedules the next reachability probe.
type pingTickMsg struct{}

// configReloadedMsg carries a config picked up by the file watcher.
type configReloadedMsg struct {
	cfg *config.Config
}

// cacheCountMsg carries the entry mirror size for the status bar.
type cacheCountMsg struct {
	n int
}

// tagsMsg carries the backend tag list for completion.
type tagsMsg struct {
	tags []model.Tag
	err  error
}

// defaultPersonaMsg carries the backend's default persona.
type defaultPersonaMsg struct {
	persona *model.Persona
	err     error
}

// sessionPageMsg carries one additional page for the session picker.
type sessionPageMsg struct {
	page *api.SessionPage
	err  error
}

// entryPageMsg carries one additional page for the entry browser.
type entryPageMsg struct {
	page *api.EntryPage
	err  error
}

// connTestMsg carries the settings panel's connection test result.
type connTestMsg struct {
	latency time.Duration
	err     error
}

// =============================================================================
// INIT
// =============================================================================

// Init kicks off the background fills: reachability, the entry tag
// list, the default persona, the mirror size, and the continuity
// session restore.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.chat.Init(),
		session.TickCmd(),
		m.pingCmd(),
		m.tagsCmd(),
		m.cacheCountCmd(),
	}

	if m.cfg.Chat.DefaultPersonaID == "" {
		cmds = append(cmds, m.defaultPersonaCmd())
	}

	// Continuity: reopen the conversation the last run was in.
	if id := m.sess.ActiveSession(); id != "" {
		cmds = append(cmds, commands.HandleLoad(m.cmdCtx, []string{id}))
	}

	return tea.Batch(cmds...)
}

func (m *Model) pingCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		start := time.Now()
		err := client.Ping(ctx)
		return backendPingMsg{latency: time.Since(start), err: err}
	}
}

func pingTickCmd() tea.Cmd {
	return tea.Tick(30*time.Second, func(time.Time) tea.Msg {
		return pingTickMsg{}
	})
}

func (m *Model) tagsCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		tags, err := client.ListTags(ctx)
		return tagsMsg{tags: tags, err: err}
	}
}

func (m *Model) cacheCountCmd() tea.Cmd {
	cache := m.cache
	if cache == nil {
		return nil
	}
	return func() tea.Msg {
		n, err := cache.Count()
		if err != nil {
			return nil
		}
		return cacheCountMsg{n: n}
	}
}

func (m *Model) defaultPersonaCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		p, err := client.GetDefaultPersona(ctx)
		return defaultPersonaMsg{persona: p, err: err}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update routes messages: app-level concerns here, everything the
// conversation view owns is forwarded to it at the bottom.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	// ---- background fills --------------------------------------------------

	case backendPingMsg:
		m.online = msg.err == nil
		m.chat.SetOnline(m.online)
		m.welcome.SetBackend(m.cfg.Backend.BaseURL, m.online)
		return m, pingTickCmd()

	case pingTickMsg:
		return m, m.pingCmd()

	case cacheCountMsg:
		m.chat.SetCachedEntries(msg.n)
		return m, nil

	case tagsMsg:
		if msg.err == nil {
			names := make([]string, len(msg.tags))
			for i, t := range msg.tags {
				names[i] = t.Name
			}
			m.knownTags = names
		}
		return m, nil

	case defaultPersonaMsg:
		if msg.err == nil && msg.persona != nil {
			m.chat.SetPersona(msg.persona.ID, msg.persona.Name)
			m.welcome.SetPersona(msg.persona.Name)
		}
		return m, nil

	// ---- session manager clock ---------------------------------------------

	case session.TickMsg:
		// HandleTick re-arms the tick itself.
		m.chat.SetRelockIn(m.sess.RelockIn())
		return m, m.sess.HandleTick()

	case session.RelockMsg:
		return m.relock()

	case session.RelockWarningMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(commands.SystemNoticeMsg{
			Content: "The journal will lock in " + msg.Remaining.Round(time.Second).String() + ".",
		})
		return m, cmd

	case session.AutoSaveMsg:
		if err := m.sess.Save(); err != nil {
			logging.Component("main").Warn().Err(err).Msg("continuity save failed")
		}
		return m, nil

	// ---- configuration -----------------------------------------------------

	case configReloadedMsg:
		return m, m.applyConfig(msg.cfg)

	case commands.ThemeChangedMsg:
		m.applyTheme()
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case commands.ConfigUpdateMsg:
		if msg.Error == nil {
			if err := config.Save(m.cfg); err != nil {
				logging.Component("main").Warn().Err(err).Msg("config save failed")
			}
			m.applyDerivedConfig()
		}
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case commands.ShowConfigMsg:
		if msg.Key != "" {
			var cmd tea.Cmd
			m.chat, cmd = m.chat.Update(msg)
			return m, cmd
		}
		m.settingsPanel.SetConfig(m.cfg)
		m.settingsPanel.Show()
		return m, nil

	case components.ConnectionTestRequestMsg:
		client := m.client
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			start := time.Now()
			err := client.Ping(ctx)
			return connTestMsg{latency: time.Since(start), err: err}
		}

	case connTestMsg:
		m.settingsPanel.SetConnectionResult(msg.latency, msg.err)
		return m, nil

	// ---- lock --------------------------------------------------------------

	case commands.LockNowMsg:
		return m.relock()

	// ---- session picker ----------------------------------------------------

	case commands.SessionListMsg:
		return m.handleSessionList(msg)

	case components.SessionPickedMsg:
		m.sessionPicker.Hide()
		return m, commands.HandleLoad(m.cmdCtx, []string{msg.ID})

	case components.SessionDeleteMsg:
		m.sessionPicker.Remove(msg.ID)
		return m, m.deleteSessionCmd(msg.ID)

	case components.SessionPageRequestMsg:
		return m, m.sessionPageCmd(msg.Offset)

	case sessionPageMsg:
		if msg.err == nil && msg.page != nil {
			m.sessionPicker.AppendSessions(msg.page.Sessions, msg.page.Total, msg.page.HasMore())
		}
		return m, nil

	case commands.SessionDeletedMsg:
		if msg.Error == nil && msg.WasActive {
			if err := m.sess.ClearActiveSession(); err != nil {
				logging.Component("main").Warn().Err(err).Msg("clearing active session failed")
			}
			m.sess.SetMessageCount(0)
		}
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case commands.SessionLoadedMsg:
		if msg.Error == nil && msg.Session != nil {
			if err := m.sess.SetActiveSession(msg.Session.ID); err != nil {
				logging.Component("main").Warn().Err(err).Msg("persisting active session failed")
			}
			m.sess.SetMessageCount(len(msg.Session.Messages))
			m.state = StateChat
		}
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	// ---- entry browser -----------------------------------------------------

	case commands.EntryListMsg:
		return m.handleEntryList(msg)

	case components.EntryPageRequestMsg:
		return m, m.entryPageCmd(msg.Tag, msg.Offset)

	case entryPageMsg:
		if msg.err == nil && msg.page != nil {
			m.entryBrowser.AppendEntries(msg.page.Entries, msg.page.Total, msg.page.HasMore())
		}
		return m, nil

	case components.EntryRefMsg:
		return m.handleEntryRef(msg)

	// ---- search ------------------------------------------------------------

	case commands.SearchResultsMsg:
		return m.handleSearchResults(msg)

	case components.SearchRequestMsg:
		return m, m.searchCmd(msg.Query, msg.Semantic, msg.Page)

	case components.SearchOpenEntryMsg:
		m.searchOverlay.Hide()
		if msg.Entry != nil {
			m.entryBrowser.Read(msg.Entry)
		}
		return m, nil

	// ---- analyses ----------------------------------------------------------

	case commands.AnalysisListMsg:
		return m.handleAnalysisList(msg)

	case components.AnalysisRequestMsg:
		return m, m.runAnalysisCmd(msg.PromptType)

	// ---- personas ----------------------------------------------------------

	case commands.PersonaListMsg:
		return m.handlePersonaList(msg)

	case components.PersonaChosenMsg:
		m.personaPicker.Hide()
		return m, commands.HandlePersona(m.cmdCtx, []string{msg.Name})

	case commands.PersonaAppliedMsg:
		if msg.Error == nil && msg.Persona != nil {
			m.personaPicker.SetActiveID(msg.Persona.ID)
		}
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	// ---- turn bookkeeping --------------------------------------------------

	case turn.SessionMsg:
		// The runner already persisted the id; mirror it in the manager
		// counters and the conversation view.
		m.sess.RecordMessage()
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case turn.FinalizedMsg:
		m.sess.RecordMessage()
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}

	// Everything else belongs to the conversation view: turn events,
	// stream ticks, command results, spinner frames, cursor blinks.
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

// =============================================================================
// RESIZE AND KEYS
// =============================================================================

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	m.chat.SetSize(msg.Width, msg.Height)
	m.welcome, _ = m.welcome.Update(msg)
	m.sessionPicker.SetSize(msg.Width, msg.Height)
	m.entryBrowser.SetSize(msg.Width, msg.Height)
	m.searchOverlay.SetSize(msg.Width, msg.Height)
	m.analysisView.SetSize(msg.Width, msg.Height)
	m.personaPicker.SetSize(msg.Width, msg.Height)
	m.settingsPanel.SetSize(msg.Width, msg.Height)
	return m, nil
}

// handleKeyPress routes keys by precedence: the lock screen swallows
// everything, then whichever overlay is open, then the active view.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state == StateLocked {
		return m.handleLockKey(msg)
	}

	m.sess.RecordActivity()

	var cmd tea.Cmd
	switch {
	case m.settingsPanel.Visible():
		m.settingsPanel, cmd = m.settingsPanel.Update(msg)
		return m, cmd
	case m.analysisView.Visible():
		m.analysisView, cmd = m.analysisView.Update(msg)
		return m, cmd
	case m.searchOverlay.Visible():
		m.searchOverlay, cmd = m.searchOverlay.Update(msg)
		return m, cmd
	case m.entryBrowser.Visible():
		m.entryBrowser, cmd = m.entryBrowser.Update(msg)
		return m, cmd
	case m.personaPicker.Visible():
		m.personaPicker, cmd = m.personaPicker.Update(msg)
		return m, cmd
	case m.sessionPicker.Visible():
		m.sessionPicker, cmd = m.sessionPicker.Update(msg)
		return m, cmd
	}

	if m.state == StateWelcome {
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		default:
			m.state = StateChat
			return m, nil
		}
	}

	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

// handleLockKey drives the TOTP prompt.
func (m *Model) handleLockKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		code := strings.TrimSpace(m.lockInput.Value())
		ok, err := m.lock.Verify(code)
		if err != nil {
			m.lockError = "Verification failed: " + err.Error()
		} else if !ok {
			m.lockError = "That code didn't match. Codes rotate every 30 seconds."
		} else {
			m.lockError = ""
			m.lockInput.SetValue("")
			m.sess.RecordActivity()
			m.state = StateChat
			return m, nil
		}
		m.lockInput.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.lockInput, cmd = m.lockInput.Update(msg)
	return m, cmd
}

// relock returns to the TOTP prompt, or explains why it can't.
func (m *Model) relock() (tea.Model, tea.Cmd) {
	if m.lock == nil || !m.lock.Enrolled() {
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(commands.SystemNoticeMsg{
			Content: "The journal lock isn't enrolled. Run: inkwell lock enable",
		})
		return m, cmd
	}
	m.state = StateLocked
	m.lockError = ""
	m.lockInput.SetValue("")
	m.lockInput.Focus()
	return m, textinput.Blink
}

// =============================================================================
// OVERLAY HANDLERS
// =============================================================================

func (m *Model) handleSessionList(msg commands.SessionListMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(commands.ErrorMsg{
			Title:   "Couldn't list sessions",
			Message: msg.Error.Error(),
			Tip:     "Check the backend with: inkwell status",
		})
		return m, cmd
	}

	m.knownSessions = msg.Sessions

	rows := make([]*model.Session, len(msg.Sessions))
	for i, info := range msg.Sessions {
		s := &model.Session{
			ID:           info.ID,
			Title:        info.Title,
			PersonaID:    info.PersonaID,
			MessageCount: info.MsgCount,
		}
		if t, err := time.Parse("2006-01-02 15:04", info.UpdatedAt); err == nil {
			s.UpdatedAt = t
		}
		rows[i] = s
	}

	m.sessionPicker.SetSessions(rows, msg.Total, len(rows) < msg.Total)
	m.sessionPicker.SetActiveID(m.sess.ActiveSession())
	m.sessionPicker.Show()
	m.state = StateChat
	return m, nil
}

func (m *Model) deleteSessionCmd(id string) tea.Cmd {
	client := m.client
	wasActive := id == m.sess.ActiveSession()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := client.DeleteSession(ctx, id)
		return commands.SessionDeletedMsg{ID: id, WasActive: wasActive, Error: err}
	}
}

func (m *Model) sessionPageCmd(offset int) tea.Cmd {
	client := m.client
	perPage := m.cfg.Search.PageSize
	if perPage <= 0 {
		perPage = 20
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		page, err := client.ListSessions(ctx, api.ListOptions{
			Page:    offset/perPage + 1,
			PerPage: perPage,
		})
		return sessionPageMsg{page: page, err: err}
	}
}

func (m *Model) handleEntryList(msg commands.EntryListMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(commands.ErrorMsg{
			Title:   "Couldn't list entries",
			Message: msg.Error.Error(),
			Tip:     "The local mirror answers when it has data: inkwell entries",
		})
		return m, cmd
	}

	m.entryBrowser.SetEntries(msg.Page.Entries, msg.Page.Total, msg.Page.HasMore(), msg.Tag)
	m.entryBrowser.SetOffline(msg.Offline)
	m.entryBrowser.Show()
	m.state = StateChat
	return m, tea.Batch(m.cacheCountCmd())
}

func (m *Model) entryPageCmd(tag string, offset int) tea.Cmd {
	client := m.client
	perPage := m.cfg.Search.PageSize
	if perPage <= 0 {
		perPage = 20
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		page, err := client.ListEntries(ctx, api.EntryListOptions{
			Page:    offset/perPage + 1,
			PerPage: perPage,
			Tag:     tag,
		})
		return entryPageMsg{page: page, err: err}
	}
}

// handleEntryRef folds a chosen entry into the composer so the next
// question can point the assistant at it.
func (m *Model) handleEntryRef(msg components.EntryRefMsg) (tea.Model, tea.Cmd) {
	m.entryBrowser.Hide()

	ref := fmt.Sprintf("about my entry %q: ", msg.Title)
	if msg.Title == "" {
		ref = fmt.Sprintf("about my entry %s: ", msg.ID)
	}

	draft := m.sess.Draft()
	if draft != "" && !strings.HasSuffix(draft, " ") {
		draft += " "
	}
	m.chat.SetDraft(draft + ref)
	m.state = StateChat
	return m, nil
}

func (m *Model) handleSearchResults(msg commands.SearchResultsMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(commands.ErrorMsg{
			Title:   "Search failed",
			Message: msg.Error.Error(),
			Tip:     "Check the backend with: inkwell status",
		})
		return m, cmd
	}

	m.searchOverlay.SetResults(msg.Query, msg.Page, msg.Offline)
	m.state = StateChat
	if !m.searchOverlay.Visible() {
		return m, m.searchOverlay.ShowQuery(msg.Query, m.cfg.Search.Semantic)
	}
	return m, nil
}

// searchCmd runs a search from the overlay, backend first with the
// local mirror as the degraded path.
func (m *Model) searchCmd(query string, semantic bool, page int) tea.Cmd {
	client := m.client
	cache := m.cache
	perPage := m.cfg.Search.PageSize
	if perPage <= 0 {
		perPage = 10
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		result, err := client.SearchEntries(ctx, query, api.SearchOptions{
			Semantic: semantic,
			Page:     page,
			PerPage:  perPage,
		})
		if err == nil {
			return commands.SearchResultsMsg{Query: query, Page: result}
		}

		if cache != nil {
			entries, cerr := cache.Search(query, perPage)
			if cerr == nil {
				results := make([]api.SearchResult, len(entries))
				for i, e := range entries {
					results[i] = api.SearchResult{Entry: *e, Snippet: e.Preview(160)}
				}
				offlinePage := &api.SearchPage{
					Results: results,
					Total:   len(results),
					Page:    1,
					PerPage: perPage,
				}
				return commands.SearchResultsMsg{Query: query, Page: offlinePage, Offline: true}
			}
		}

		return commands.SearchResultsMsg{Query: query, Error: err}
	}
}

func (m *Model) handleAnalysisList(msg commands.AnalysisListMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(commands.ErrorMsg{
			Title:   "Couldn't list analyses",
			Message: msg.Error.Error(),
			Tip:     "Check the backend with: inkwell status",
		})
		return m, cmd
	}

	m.analysisView.SetAnalyses(msg.Analyses)
	m.analysisView.Show()
	m.state = StateChat
	return m, nil
}

// runAnalysisCmd starts a batch analysis over the most recent entries
// and refreshes the list when the backend finishes.
func (m *Model) runAnalysisCmd(promptType string) tea.Cmd {
	client := m.client
	perPage := m.cfg.Search.PageSize
	if perPage <= 0 {
		perPage = 20
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		page, err := client.ListEntries(ctx, api.EntryListOptions{Page: 1, PerPage: perPage})
		if err != nil {
			return commands.AnalysisListMsg{Error: err}
		}
		if len(page.Entries) == 0 {
			return commands.AnalysisListMsg{Error: fmt.Errorf("no entries to analyze")}
		}

		ids := make([]string, len(page.Entries))
		for i, e := range page.Entries {
			ids[i] = e.ID
		}

		title := fmt.Sprintf("Reflection, %s", time.Now().Format("Jan 2 2006"))
		if _, err := client.CreateBatchAnalysis(ctx, ids, title, promptType); err != nil {
			return commands.AnalysisListMsg{Error: err}
		}

		analyses, err := client.ListBatchAnalyses(ctx)
		return commands.AnalysisListMsg{Analyses: analyses, Error: err}
	}
}

func (m *Model) handlePersonaList(msg commands.PersonaListMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(commands.ErrorMsg{
			Title:   "Couldn't list personas",
			Message: msg.Error.Error(),
			Tip:     "Check the backend with: inkwell status",
		})
		return m, cmd
	}

	m.knownPersonas = msg.Personas
	m.personaPicker.SetPersonas(msg.Personas)
	m.personaPicker.Show()
	m.state = StateChat
	return m, nil
}

// =============================================================================
// CONFIGURATION APPLICATION
// =============================================================================

// applyConfig adopts a config the file watcher picked up. The shared
// pointer is retargeted in place so every holder sees the new values.
func (m *Model) applyConfig(next *config.Config) tea.Cmd {
	if next == nil {
		return nil
	}
	*m.cfg = *next
	m.applyDerivedConfig()

	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(commands.SystemNoticeMsg{
		Content: "Configuration reloaded.",
	})
	return cmd
}

// applyDerivedConfig re-applies everything computed from config: the
// theme, the delivery path, and the relock clock.
func (m *Model) applyDerivedConfig() {
	m.applyTheme()
	m.runner.SetStreaming(m.cfg.Chat.Streaming)
	if m.cfg.Lock.Enabled {
		m.sess.SetRelockAfter(session.DefaultConfig().RelockAfter)
	} else {
		m.sess.SetRelockAfter(0)
	}
}

// applyTheme rebuilds the theme from the current config and pushes it
// into every view.
func (m *Model) applyTheme() {
	theme := styles.NewTheme(styles.Options{
		ThemeName:    m.cfg.Appearance.Theme,
		CustomColors: m.cfg.Appearance.CustomColors,
		TextSize:     m.cfg.Chat.TextSize,
	})
	m.theme = theme

	m.chat.SetTheme(theme)
	m.welcome = components.NewWelcome(theme)
	m.welcome.SetVersion(Version)
	m.welcome.SetBackend(m.cfg.Backend.BaseURL, m.online)
	m.welcome.SetLockEnabled(m.cfg.Lock.Enabled && m.lock != nil && m.lock.Enrolled())
	m.sessionPicker = components.NewSessionPicker(theme)
	m.entryBrowser = components.NewEntryBrowser(theme)
	m.searchOverlay = components.NewSearchOverlay(theme)
	m.analysisView = components.NewAnalysisView(theme)
	m.personaPicker = components.NewPersonaPicker(theme)
	m.settingsPanel = components.NewSettingsPanel(theme)

	if m.width > 0 {
		m.sessionPicker.SetSize(m.width, m.height)
		m.entryBrowser.SetSize(m.width, m.height)
		m.searchOverlay.SetSize(m.width, m.height)
		m.analysisView.SetSize(m.width, m.height)
		m.personaPicker.SetSize(m.width, m.height)
		m.settingsPanel.SetSize(m.width, m.height)
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the active view, with any open overlay on top.
func (m *Model) View() string {
	if m.state == StateLocked {
		return m.lockView()
	}

	switch {
	case m.settingsPanel.Visible():
		return m.settingsPanel.View()
	case m.analysisView.Visible():
		return m.analysisView.View()
	case m.searchOverlay.Visible():
		return m.searchOverlay.View()
	case m.entryBrowser.Visible():
		return m.entryBrowser.View()
	case m.personaPicker.Visible():
		return m.personaPicker.View()
	case m.sessionPicker.Visible():
		return m.sessionPicker.View()
	}

	if m.state == StateWelcome {
		return m.welcome.View()
	}
	return m.chat.View()
}

// lockView renders the TOTP prompt centered on screen.
func (m *Model) lockView() string {
	t := m.theme

	lines := []string{
		t.LockTitle.Render("Journal locked"),
		"",
		t.LockHint.Render("Enter the code from your authenticator app."),
		"",
		t.LockDigits.Render(m.lockInput.View()),
	}
	if m.lockError != "" {
		lines = append(lines, "", t.ErrorMessage.Render(m.lockError))
	}
	lines = append(lines, "", t.LockHint.Render("Enter verifies. Ctrl+C quits."))

	box := t.LockBox.Render(strings.Join(lines, "\n"))

	width := m.width
	if width == 0 {
		width = 80
	}
	height := m.height
	if height == 0 {
		height = 24
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// SHUTDOWN
// =============================================================================

// shutdown flushes continuity state and closes local resources. The
// session manager's cleanup callback deletes a session that never got
// a message, matching the empty-session cleanup the backend expects.
func (m *Model) shutdown() {
	if err := m.sess.Shutdown(); err != nil {
		logging.Component("main").Warn().Err(err).Msg("session shutdown failed")
	}
	if m.cache != nil {
		if err := m.cache.Close(); err != nil {
			logging.Component("main").Warn().Err(err).Msg("cache close failed")
		}
	}
}
