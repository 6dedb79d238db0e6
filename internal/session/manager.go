// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strconv"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/inkwell-tui/internal/logging"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager owns the active chat session across the life of one run: which
// backend session the chat view is bound to, the unsent draft, how many
// messages the session holds, and the idle clock that drives journal
// relocking and auto-save.
type Manager struct {
	mu sync.Mutex

	// Continuity state
	statePath    string
	activeID     string
	draft        string
	messageCount int

	// Run tracking
	startTime    time.Time
	lastActivity time.Time

	// Relock configuration. Zero relockAfter disables idle relocking.
	relockAfter  time.Duration
	warnBefore   time.Duration
	warningShown bool

	// Auto-save configuration
	autoSaveEnabled  bool
	autoSaveInterval time.Duration
	lastAutoSave     time.Time
	isDirty          bool

	// Callbacks
	onRelock   func()
	onWarning  func(remaining time.Duration)
	onAutoSave func() error
	onCleanup  func(sessionID string) error
}

// Config holds configuration for the session manager.
type Config struct {
	// StatePath overrides the continuity file location. Empty uses
	// ~/.inkwell/state.json.
	StatePath string

	// RelockAfter is how long the journal may sit idle before the TOTP
	// lock re-engages. Zero disables idle relocking.
	RelockAfter time.Duration

	// WarnBefore is how long before relock to surface a warning.
	WarnBefore time.Duration

	// AutoSaveEnabled enables periodic persistence of dirty state.
	AutoSaveEnabled bool

	// AutoSaveInterval is how often dirty state is flushed.
	AutoSaveInterval time.Duration
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		RelockAfter:      10 * time.Minute,
		WarnBefore:       1 * time.Minute,
		AutoSaveEnabled:  true,
		AutoSaveInterval: 30 * time.Second,
	}
}

// NewManager creates a session manager and restores persisted continuity
// state. A corrupt or unreadable state file degrades to a fresh start.
func NewManager(cfg Config) *Manager {
	now := time.Now()
	m := &Manager{
		statePath:        cfg.StatePath,
		startTime:        now,
		lastActivity:     now,
		relockAfter:      cfg.RelockAfter,
		warnBefore:       cfg.WarnBefore,
		autoSaveEnabled:  cfg.AutoSaveEnabled,
		autoSaveInterval: cfg.AutoSaveInterval,
		lastAutoSave:     now,
	}

	if m.statePath == "" {
		path, err := StatePath()
		if err != nil {
			logging.Component("session").Warn().Err(err).Msg("cannot resolve state path, continuity disabled")
			return m
		}
		m.statePath = path
	}

	st, err := LoadState(m.statePath)
	if err != nil {
		logging.Component("session").Warn().Err(err).Msg("failed to load continuity state, starting fresh")
		return m
	}
	m.activeID = st.ActiveSessionID
	m.draft = st.Draft

	return m
}

// =============================================================================
// ACTIVE SESSION
// =============================================================================

// ActiveSession returns the backend session id the chat view is bound to.
// Empty means a new chat whose session the backend has not created yet.
func (m *Manager) ActiveSession() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// SetActiveSession binds the chat view to a backend session and persists
// the binding immediately. The first metadata record of a lazily created
// chat must be durable before any follow-up request uses the id.
func (m *Manager) SetActiveSession(id string) error {
	m.mu.Lock()
	m.activeID = id
	m.mu.Unlock()
	return m.Save()
}

// ClearActiveSession detaches from the current session, next run starts a
// fresh chat.
func (m *Manager) ClearActiveSession() error {
	m.mu.Lock()
	m.activeID = ""
	m.messageCount = 0
	m.mu.Unlock()
	return m.Save()
}

// SetMessageCount seeds the message count when an existing session is
// opened from the picker.
func (m *Manager) SetMessageCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messageCount = n
}

// RecordMessage notes that a message was added to the active session.
func (m *Manager) RecordMessage() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messageCount++
}

// MessageCount returns how many messages the active session holds.
func (m *Manager) MessageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.messageCount
}

// EmptySession returns the active session id if it exists on the backend
// but holds no messages. Such sessions are deleted on shutdown so the
// session list does not fill with abandoned shells.
func (m *Manager) EmptySession() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeID == "" || m.messageCount > 0 {
		return "", false
	}
	return m.activeID, true
}

// =============================================================================
// DRAFT INPUT
// =============================================================================

// Draft returns input the user typed but has not sent.
func (m *Manager) Draft() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

// SetDraft records unsent input. Persistence rides on auto-save rather
// than every keystroke.
func (m *Manager) SetDraft(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft == s {
		return
	}
	m.draft = s
	m.isDirty = true
}

// =============================================================================
// RUN STATE
// =============================================================================

// StartTime returns when this run started.
func (m *Manager) StartTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startTime
}

// Duration returns how long this run has been active.
func (m *Manager) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.startTime)
}

// IdleTime returns how long since the user last did anything.
func (m *Manager) IdleTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.lastActivity)
}

// RelockIn returns time until the journal lock re-engages, or zero when
// idle relocking is disabled.
func (m *Manager) RelockIn() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.relockAfter <= 0 {
		return 0
	}
	remaining := m.relockAfter - time.Since(m.lastActivity)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// =============================================================================
// ACTIVITY TRACKING
// =============================================================================

// RecordActivity updates the last activity timestamp. Called on user
// input so an actively used journal never relocks mid-thought.
func (m *Manager) RecordActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = time.Now()
	m.warningShown = false
}

// MarkDirty indicates continuity state has unsaved changes.
func (m *Manager) MarkDirty() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isDirty = true
}

// MarkClean indicates continuity state has been saved.
func (m *Manager) MarkClean() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isDirty = false
	m.lastAutoSave = time.Now()
}

// IsDirty returns whether continuity state has unsaved changes.
func (m *Manager) IsDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isDirty
}

// =============================================================================
// CALLBACKS
// =============================================================================

// SetRelockCallback sets the function called when the idle relock fires.
func (m *Manager) SetRelockCallback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRelock = fn
}

// SetWarningCallback sets the function called when relock approaches.
func (m *Manager) SetWarningCallback(fn func(remaining time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onWarning = fn
}

// SetAutoSaveCallback sets the function called for auto-save. A nil
// callback falls back to persisting continuity state.
func (m *Manager) SetAutoSaveCallback(fn func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onAutoSave = fn
}

// SetCleanupCallback sets the function that deletes an empty session on
// shutdown, normally wired to the backend delete call.
func (m *Manager) SetCleanupCallback(fn func(sessionID string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCleanup = fn
}

// =============================================================================
// RELOCK CHECKING
// =============================================================================

// ShouldRelock returns true if the idle window has elapsed.
func (m *Manager) ShouldRelock() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.relockAfter > 0 && time.Since(m.lastActivity) >= m.relockAfter
}

// ShouldShowWarning returns true if the relock warning should be shown.
func (m *Manager) ShouldShowWarning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.relockAfter <= 0 || m.warningShown {
		return false
	}

	idle := time.Since(m.lastActivity)
	threshold := m.relockAfter - m.warnBefore

	return idle >= threshold && idle < m.relockAfter
}

// ShouldAutoSave returns true if auto-save should trigger.
func (m *Manager) ShouldAutoSave() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.autoSaveEnabled || !m.isDirty {
		return false
	}

	return time.Since(m.lastAutoSave) >= m.autoSaveInterval
}

// Check evaluates idle and dirty state and triggers the appropriate
// callbacks. Returns false once the relock window has elapsed.
func (m *Manager) Check() bool {
	m.mu.Lock()
	relocked := m.relockAfter > 0 && time.Since(m.lastActivity) >= m.relockAfter

	shouldWarn := false
	var remaining time.Duration
	if m.relockAfter > 0 && !m.warningShown && !relocked {
		idle := time.Since(m.lastActivity)
		threshold := m.relockAfter - m.warnBefore
		if idle >= threshold {
			shouldWarn = true
			remaining = m.relockAfter - idle
			m.warningShown = true
		}
	}

	shouldSave := m.autoSaveEnabled && m.isDirty &&
		time.Since(m.lastAutoSave) >= m.autoSaveInterval

	onRelock := m.onRelock
	onWarning := m.onWarning
	onAutoSave := m.onAutoSave
	m.mu.Unlock()

	// Callbacks run outside the lock: they are free to call back into
	// the manager.
	if shouldWarn && onWarning != nil {
		onWarning(remaining)
	}

	if shouldSave {
		if onAutoSave == nil {
			onAutoSave = m.Save
		}
		if err := onAutoSave(); err == nil {
			m.MarkClean()
		}
	}

	if relocked && onRelock != nil {
		onRelock()
	}

	return !relocked
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Save persists continuity state atomically.
func (m *Manager) Save() error {
	m.mu.Lock()
	path := m.statePath
	st := State{
		ActiveSessionID: m.activeID,
		Draft:           m.draft,
	}
	m.mu.Unlock()

	if path == "" {
		return nil
	}
	if err := SaveState(path, st); err != nil {
		return err
	}
	m.MarkClean()
	return nil
}

// Shutdown persists final state and deletes the active session from the
// backend if it never accumulated a message.
func (m *Manager) Shutdown() error {
	id, empty := m.EmptySession()

	m.mu.Lock()
	cleanup := m.onCleanup
	m.mu.Unlock()

	if empty && cleanup != nil {
		if err := cleanup(id); err != nil {
			logging.Component("session").Warn().Err(err).Str("session_id", id).
				Msg("empty session cleanup failed")
		} else {
			m.mu.Lock()
			m.activeID = ""
			m.mu.Unlock()
		}
	}

	return m.Save()
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent periodically to check session state.
type TickMsg struct {
	Time time.Time
}

// RelockWarningMsg indicates the journal is about to relock.
type RelockWarningMsg struct {
	Remaining time.Duration
}

// RelockMsg indicates the idle window elapsed and the lock screen should
// take over.
type RelockMsg struct{}

// AutoSaveMsg indicates auto-save should occur.
type AutoSaveMsg struct{}

// TickCmd returns a command that ticks once per second.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// HandleTick processes a tick and returns appropriate messages.
func (m *Manager) HandleTick() tea.Cmd {
	var cmds []tea.Cmd

	if m.ShouldShowWarning() {
		remaining := m.RelockIn()
		cmds = append(cmds, func() tea.Msg {
			return RelockWarningMsg{Remaining: remaining}
		})
		m.mu.Lock()
		m.warningShown = true
		m.mu.Unlock()
	}

	if m.ShouldRelock() {
		cmds = append(cmds, func() tea.Msg {
			return RelockMsg{}
		})
	}

	if m.ShouldAutoSave() {
		cmds = append(cmds, func() tea.Msg {
			return AutoSaveMsg{}
		})
	}

	cmds = append(cmds, TickCmd())

	return tea.Batch(cmds...)
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// SetRelockAfter updates the idle relock window. Zero disables it.
func (m *Manager) SetRelockAfter(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relockAfter = d
}

// SetAutoSaveEnabled enables or disables auto-save.
func (m *Manager) SetAutoSaveEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoSaveEnabled = enabled
}

// SetAutoSaveInterval updates the auto-save interval.
func (m *Manager) SetAutoSaveInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoSaveInterval = d
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status is a point-in-time snapshot for the status bar.
type Status struct {
	ActiveSessionID string
	StartTime       time.Time
	Duration        time.Duration
	IdleTime        time.Duration
	RelockIn        time.Duration
	MessageCount    int
	IsDirty         bool
}

// GetStatus returns the current session status.
func (m *Manager) GetStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	idle := now.Sub(m.lastActivity)

	var relockIn time.Duration
	if m.relockAfter > 0 {
		relockIn = m.relockAfter - idle
		if relockIn < 0 {
			relockIn = 0
		}
	}

	return Status{
		ActiveSessionID: m.activeID,
		StartTime:       m.startTime,
		Duration:        now.Sub(m.startTime),
		IdleTime:        idle,
		RelockIn:        relockIn,
		MessageCount:    m.messageCount,
		IsDirty:         m.isDirty,
	}
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Seconds())
		return strconv.Itoa(secs) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return strconv.Itoa(mins) + "m"
	}
	return strconv.Itoa(mins) + "m " + strconv.Itoa(secs) + "s"
}
