// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/ui/styles"
	"github.com/jeranaias/inkwell-tui/internal/util"
)

// =============================================================================
// SESSION PICKER
// =============================================================================

// Messages emitted by the picker. The app model owns the actual API
// calls; the picker only reports what the user chose.

// SessionPickedMsg reports the session the user chose to resume.
type SessionPickedMsg struct {
	ID string
}

// SessionDeleteMsg reports a confirmed session deletion request.
type SessionDeleteMsg struct {
	ID    string
	Title string
}

// SessionPageRequestMsg asks the app to fetch the next page of sessions.
type SessionPageRequestMsg struct {
	Offset int
}

// SessionPicker is an overlay for browsing and resuming past
// conversations. Rows are sorted by last access, most recent first.
type SessionPicker struct {
	sessions []*model.Session
	total    int
	hasMore  bool
	offline  bool
	loading  bool

	selected int
	activeID string

	// Pending delete confirmation. Empty when no confirmation is open.
	confirmID string

	width   int
	height  int
	visible bool

	theme *styles.Theme
}

// NewSessionPicker creates a new session picker.
func NewSessionPicker(theme *styles.Theme) *SessionPicker {
	return &SessionPicker{
		theme:    theme,
		selected: 0,
	}
}

// =============================================================================
// STATE
// =============================================================================

// SetSessions replaces the session list with a fresh first page.
func (sp *SessionPicker) SetSessions(sessions []*model.Session, total int, hasMore bool) {
	sp.sessions = sortSessions(sessions)
	sp.total = total
	sp.hasMore = hasMore
	sp.loading = false
	if sp.selected >= len(sp.sessions) {
		sp.selected = len(sp.sessions) - 1
	}
	if sp.selected < 0 {
		sp.selected = 0
	}
}

// AppendSessions adds a fetched page to the list.
func (sp *SessionPicker) AppendSessions(sessions []*model.Session, total int, hasMore bool) {
	sp.sessions = sortSessions(append(sp.sessions, sessions...))
	sp.total = total
	sp.hasMore = hasMore
	sp.loading = false
}

// SetOffline marks the list as served from the local mirror.
func (sp *SessionPicker) SetOffline(offline bool) {
	sp.offline = offline
}

// SetActiveID marks the currently loaded session so the list can flag it.
func (sp *SessionPicker) SetActiveID(id string) {
	sp.activeID = id
}

// SetSize sets the overlay dimensions.
func (sp *SessionPicker) SetSize(width, height int) {
	sp.width = width
	sp.height = height
}

// Show makes the picker visible.
func (sp *SessionPicker) Show() {
	sp.visible = true
	sp.confirmID = ""
}

// Hide closes the picker.
func (sp *SessionPicker) Hide() {
	sp.visible = false
	sp.confirmID = ""
}

// Visible reports whether the picker is open.
func (sp *SessionPicker) Visible() bool {
	return sp.visible
}

// Selected returns the currently highlighted session, or nil.
func (sp *SessionPicker) Selected() *model.Session {
	if sp.selected < 0 || sp.selected >= len(sp.sessions) {
		return nil
	}
	return sp.sessions[sp.selected]
}

// Remove drops a session from the list after a confirmed delete.
func (sp *SessionPicker) Remove(id string) {
	for i, s := range sp.sessions {
		if s.ID == id {
			sp.sessions = append(sp.sessions[:i], sp.sessions[i+1:]...)
			if sp.total > 0 {
				sp.total--
			}
			break
		}
	}
	if sp.selected >= len(sp.sessions) {
		sp.selected = len(sp.sessions) - 1
	}
	if sp.selected < 0 {
		sp.selected = 0
	}
}

// sortSessions orders sessions by last access, most recent first.
// Sessions the backend never touched fall back to UpdatedAt.
func sortSessions(sessions []*model.Session) []*model.Session {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessionStamp(sessions[i]).After(sessionStamp(sessions[j]))
	})
	return sessions
}

func sessionStamp(s *model.Session) time.Time {
	if !s.LastAccessed.IsZero() {
		return s.LastAccessed
	}
	return s.UpdatedAt
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the picker.
func (sp *SessionPicker) Init() tea.Cmd {
	return nil
}

// Update handles key messages while the picker is open.
func (sp *SessionPicker) Update(msg tea.Msg) (*SessionPicker, tea.Cmd) {
	if !sp.visible {
		return sp, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return sp, nil
	}

	// A delete confirmation swallows every key until answered.
	if sp.confirmID != "" {
		switch keyMsg.String() {
		case "y", "Y":
			id := sp.confirmID
			title := ""
			for _, s := range sp.sessions {
				if s.ID == id {
					title = s.Title
					break
				}
			}
			sp.confirmID = ""
			return sp, func() tea.Msg {
				return SessionDeleteMsg{ID: id, Title: title}
			}
		default:
			sp.confirmID = ""
			return sp, nil
		}
	}

	switch keyMsg.String() {
	case "esc", "q":
		sp.Hide()
		return sp, nil

	case "up", "k":
		if sp.selected > 0 {
			sp.selected--
		}
		return sp, nil

	case "down", "j":
		if sp.selected < len(sp.sessions)-1 {
			sp.selected++
			return sp, nil
		}
		// At the bottom with more pages on the backend: fetch the next
		// page instead of wrapping.
		if sp.hasMore && !sp.loading {
			sp.loading = true
			offset := len(sp.sessions)
			return sp, func() tea.Msg {
				return SessionPageRequestMsg{Offset: offset}
			}
		}
		return sp, nil

	case "pgdown":
		sp.selected += sp.maxVisible()
		if sp.selected >= len(sp.sessions) {
			sp.selected = len(sp.sessions) - 1
		}
		if sp.selected < 0 {
			sp.selected = 0
		}
		return sp, nil

	case "pgup":
		sp.selected -= sp.maxVisible()
		if sp.selected < 0 {
			sp.selected = 0
		}
		return sp, nil

	case "home", "g":
		sp.selected = 0
		return sp, nil

	case "end", "G":
		sp.selected = len(sp.sessions) - 1
		if sp.selected < 0 {
			sp.selected = 0
		}
		return sp, nil

	case "enter":
		s := sp.Selected()
		if s == nil {
			return sp, nil
		}
		sp.Hide()
		id := s.ID
		return sp, func() tea.Msg {
			return SessionPickedMsg{ID: id}
		}

	case "d", "x":
		s := sp.Selected()
		if s == nil {
			return sp, nil
		}
		sp.confirmID = s.ID
		return sp, nil
	}

	return sp, nil
}

// =============================================================================
// RENDERING
// =============================================================================

// maxVisible returns how many rows fit in the current height.
func (sp *SessionPicker) maxVisible() int {
	// Border, header, separator, footer and padding eat 8 lines.
	visible := sp.height - 8
	if visible < 3 {
		visible = 3
	}
	if visible > 15 {
		visible = 15
	}
	return visible
}

// View renders the picker overlay.
func (sp *SessionPicker) View() string {
	if !sp.visible {
		return ""
	}

	boxWidth := 70
	if sp.width > 0 && sp.width < boxWidth+6 {
		boxWidth = sp.width - 6
	}
	if boxWidth < 40 {
		boxWidth = 40
	}
	innerWidth := boxWidth - 6

	header := sp.renderHeader()
	separator := sp.theme.Palette.OverlayDim
	sepLine := lipgloss.NewStyle().Foreground(separator).Render(strings.Repeat("-", innerWidth))

	var body string
	switch {
	case sp.loading && len(sp.sessions) == 0:
		body = sp.theme.PickerMeta.Render("Loading sessions...")
	case len(sp.sessions) == 0:
		body = sp.theme.PickerMeta.Render("No sessions yet. Start writing and one will appear.")
	default:
		body = sp.renderList(innerWidth)
	}

	footer := sp.renderFooter()

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		sepLine,
		body,
		sepLine,
		footer,
	)

	box := sp.theme.PickerBox.Width(boxWidth).Render(content)

	if sp.width > 0 && sp.height > 0 {
		return lipgloss.Place(
			sp.width, sp.height,
			lipgloss.Center, lipgloss.Center,
			box,
		)
	}
	return box
}

// renderHeader renders the title row with counts and the offline badge.
func (sp *SessionPicker) renderHeader() string {
	title := sp.theme.PickerHeader.Render("Sessions")

	count := ""
	if sp.total > len(sp.sessions) {
		count = fmtNumber(len(sp.sessions)) + " of " + fmtNumber(sp.total)
	} else if len(sp.sessions) > 0 {
		count = fmtNumber(len(sp.sessions))
	}
	if count != "" {
		title += sp.theme.PickerMeta.Render("  (" + count + ")")
	}

	if sp.offline {
		title += "  " + sp.theme.StatusOffline.Render("[!] mirror")
	}

	return title
}

// renderList renders the visible window of session rows.
func (sp *SessionPicker) renderList(width int) string {
	maxVisible := sp.maxVisible()

	start := 0
	end := len(sp.sessions)
	if len(sp.sessions) > maxVisible {
		start = sp.selected - maxVisible/2
		if start < 0 {
			start = 0
		}
		end = start + maxVisible
		if end > len(sp.sessions) {
			end = len(sp.sessions)
			start = end - maxVisible
			if start < 0 {
				start = 0
			}
		}
	}

	now := time.Now()
	var rows []string
	for i := start; i < end; i++ {
		rows = append(rows, sp.renderRow(sp.sessions[i], i == sp.selected, width, now))
	}

	if sp.hasMore {
		more := "  ... more on the backend (down to fetch)"
		if sp.loading {
			more = "  ... fetching next page"
		}
		rows = append(rows, sp.theme.PickerMeta.Render(more))
	}

	return strings.Join(rows, "\n")
}

// renderRow renders one session line: title, message count, last access.
func (sp *SessionPicker) renderRow(s *model.Session, isSelected bool, width int, now time.Time) string {
	active := ""
	if s.ID == sp.activeID {
		active = " *"
	}

	meta := relativeTime(sessionStamp(s), now)
	if s.MessageCount > 0 {
		meta = fmtNumber(s.MessageCount) + " msgs, " + meta
	}

	title := s.Title
	if title == "" {
		title = "(untitled)"
	}
	titleWidth := width - 2 - util.StringWidth(meta) - len(active) - 2
	if titleWidth < 10 {
		titleWidth = 10
	}
	title = util.TruncateWidth(title, titleWidth)

	// The selected row gets a uniform background over plain text so the
	// highlight is unbroken.
	if isSelected {
		row := "> " + title + active + "  " + meta
		return sp.theme.PickerItemSelected.Width(width).Render(row)
	}

	row := "  " + sp.theme.PickerTitle.Render(title)
	if active != "" {
		row += sp.theme.SuccessStyle.Render(active)
	}
	return row + "  " + sp.theme.PickerMeta.Render(meta)
}

// renderFooter renders either the delete confirmation or the key hints.
func (sp *SessionPicker) renderFooter() string {
	if sp.confirmID != "" {
		title := ""
		for _, s := range sp.sessions {
			if s.ID == sp.confirmID {
				title = s.Title
				break
			}
		}
		title = util.TruncateRunes(title, 30)
		warn := sp.theme.WarningStyle.Render("Delete \"" + title + "\"? ")
		keys := sp.theme.PickerFooter.Render("y confirm, any other key cancels")
		return warn + keys
	}

	return sp.theme.PickerFooter.Render("Enter resume   d delete   Esc close")
}
