// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/ui/styles"
	"github.com/jeranaias/inkwell-tui/internal/util"
)

// =============================================================================
// ENTRY BROWSER
// =============================================================================

// EntryRefMsg asks the app to insert an entry reference into the input.
type EntryRefMsg struct {
	ID    string
	Title string
}

// EntryPageRequestMsg asks the app to fetch the next page of entries
// for the active tag filter.
type EntryPageRequestMsg struct {
	Tag    string
	Offset int
}

// EntryBrowser is an overlay for reading past journal entries. It has
// two layers: the list, and a full-entry reading pane opened with Enter.
type EntryBrowser struct {
	entries []*model.Entry
	total   int
	hasMore bool
	tag     string
	offline bool
	loading bool

	selected int
	favsOnly bool

	// reading holds the opened entry, nil while on the list.
	reading    *model.Entry
	readScroll int

	width   int
	height  int
	visible bool

	theme *styles.Theme
}

// NewEntryBrowser creates a new entry browser.
func NewEntryBrowser(theme *styles.Theme) *EntryBrowser {
	return &EntryBrowser{theme: theme}
}

// =============================================================================
// STATE
// =============================================================================

// SetEntries replaces the entry list with a fresh first page.
func (eb *EntryBrowser) SetEntries(entries []*model.Entry, total int, hasMore bool, tag string) {
	eb.entries = entries
	eb.total = total
	eb.hasMore = hasMore
	eb.tag = tag
	eb.loading = false
	eb.selected = 0
	eb.reading = nil
}

// AppendEntries adds a fetched page to the list.
func (eb *EntryBrowser) AppendEntries(entries []*model.Entry, total int, hasMore bool) {
	eb.entries = append(eb.entries, entries...)
	eb.total = total
	eb.hasMore = hasMore
	eb.loading = false
}

// SetOffline marks the list as served from the local mirror.
func (eb *EntryBrowser) SetOffline(offline bool) {
	eb.offline = offline
}

// SetSize sets the overlay dimensions.
func (eb *EntryBrowser) SetSize(width, height int) {
	eb.width = width
	eb.height = height
}

// Show opens the browser on the list layer.
func (eb *EntryBrowser) Show() {
	eb.visible = true
	eb.reading = nil
	eb.readScroll = 0
}

// Hide closes the browser.
func (eb *EntryBrowser) Hide() {
	eb.visible = false
	eb.reading = nil
}

// Read opens the browser straight onto one entry's reading pane. Esc
// falls back to whatever list was loaded before.
func (eb *EntryBrowser) Read(e *model.Entry) {
	eb.visible = true
	eb.reading = e
	eb.readScroll = 0
}

// Visible reports whether the browser is open.
func (eb *EntryBrowser) Visible() bool {
	return eb.visible
}

// Tag returns the active tag filter, empty for all entries.
func (eb *EntryBrowser) Tag() string {
	return eb.tag
}

// visibleEntries applies the favorites filter.
func (eb *EntryBrowser) visibleEntries() []*model.Entry {
	if !eb.favsOnly {
		return eb.entries
	}
	var out []*model.Entry
	for _, e := range eb.entries {
		if e.Favorite {
			out = append(out, e)
		}
	}
	return out
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the browser.
func (eb *EntryBrowser) Init() tea.Cmd {
	return nil
}

// Update handles key messages while the browser is open.
func (eb *EntryBrowser) Update(msg tea.Msg) (*EntryBrowser, tea.Cmd) {
	if !eb.visible {
		return eb, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return eb, nil
	}

	if eb.reading != nil {
		return eb.updateReading(keyMsg)
	}
	return eb.updateList(keyMsg)
}

// updateList handles keys on the list layer.
func (eb *EntryBrowser) updateList(msg tea.KeyMsg) (*EntryBrowser, tea.Cmd) {
	entries := eb.visibleEntries()

	switch msg.String() {
	case "esc", "q":
		eb.Hide()
		return eb, nil

	case "up", "k":
		if eb.selected > 0 {
			eb.selected--
		}
		return eb, nil

	case "down", "j":
		if eb.selected < len(entries)-1 {
			eb.selected++
			return eb, nil
		}
		if eb.hasMore && !eb.loading && !eb.favsOnly {
			eb.loading = true
			tag := eb.tag
			offset := len(eb.entries)
			return eb, func() tea.Msg {
				return EntryPageRequestMsg{Tag: tag, Offset: offset}
			}
		}
		return eb, nil

	case "pgdown":
		eb.selected += eb.maxVisible()
		if eb.selected >= len(entries) {
			eb.selected = len(entries) - 1
		}
		if eb.selected < 0 {
			eb.selected = 0
		}
		return eb, nil

	case "pgup":
		eb.selected -= eb.maxVisible()
		if eb.selected < 0 {
			eb.selected = 0
		}
		return eb, nil

	case "home", "g":
		eb.selected = 0
		return eb, nil

	case "end", "G":
		eb.selected = len(entries) - 1
		if eb.selected < 0 {
			eb.selected = 0
		}
		return eb, nil

	case "f":
		eb.favsOnly = !eb.favsOnly
		eb.selected = 0
		return eb, nil

	case "enter":
		if eb.selected >= 0 && eb.selected < len(entries) {
			eb.reading = entries[eb.selected]
			eb.readScroll = 0
		}
		return eb, nil

	case "r":
		// Insert a reference so the next prompt can point the
		// assistant at this entry.
		if eb.selected >= 0 && eb.selected < len(entries) {
			e := entries[eb.selected]
			eb.Hide()
			id, title := e.ID, e.Title
			return eb, func() tea.Msg {
				return EntryRefMsg{ID: id, Title: title}
			}
		}
		return eb, nil
	}

	return eb, nil
}

// updateReading handles keys on the reading pane.
func (eb *EntryBrowser) updateReading(msg tea.KeyMsg) (*EntryBrowser, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		eb.reading = nil
		eb.readScroll = 0
		return eb, nil

	case "up", "k":
		if eb.readScroll > 0 {
			eb.readScroll--
		}
		return eb, nil

	case "down", "j":
		eb.readScroll++
		return eb, nil

	case "pgup":
		eb.readScroll -= eb.readingHeight()
		if eb.readScroll < 0 {
			eb.readScroll = 0
		}
		return eb, nil

	case "pgdown":
		eb.readScroll += eb.readingHeight()
		return eb, nil

	case "home", "g":
		eb.readScroll = 0
		return eb, nil

	case "r":
		e := eb.reading
		eb.Hide()
		id, title := e.ID, e.Title
		return eb, func() tea.Msg {
			return EntryRefMsg{ID: id, Title: title}
		}
	}

	return eb, nil
}

// =============================================================================
// RENDERING
// =============================================================================

func (eb *EntryBrowser) maxVisible() int {
	// Each row takes two lines (title line plus preview line).
	visible := (eb.height - 9) / 2
	if visible < 2 {
		visible = 2
	}
	if visible > 10 {
		visible = 10
	}
	return visible
}

func (eb *EntryBrowser) readingHeight() int {
	h := eb.height - 10
	if h < 4 {
		h = 4
	}
	return h
}

// View renders the browser overlay.
func (eb *EntryBrowser) View() string {
	if !eb.visible {
		return ""
	}

	boxWidth := 76
	if eb.width > 0 && eb.width < boxWidth+6 {
		boxWidth = eb.width - 6
	}
	if boxWidth < 44 {
		boxWidth = 44
	}
	innerWidth := boxWidth - 6

	var content string
	if eb.reading != nil {
		content = eb.renderReading(innerWidth)
	} else {
		content = eb.renderListLayer(innerWidth)
	}

	box := eb.theme.PickerBox.Width(boxWidth).Render(content)

	if eb.width > 0 && eb.height > 0 {
		return lipgloss.Place(
			eb.width, eb.height,
			lipgloss.Center, lipgloss.Center,
			box,
		)
	}
	return box
}

// renderListLayer renders the header, the entry rows, and the footer.
func (eb *EntryBrowser) renderListLayer(width int) string {
	header := eb.theme.PickerHeader.Render("Journal entries")
	if eb.tag != "" {
		header += " " + eb.theme.TagBadge.Render("#"+eb.tag)
	}
	if eb.favsOnly {
		header += " " + eb.theme.FavoriteMark.Render("favorites")
	}
	if eb.total > 0 {
		header += eb.theme.PickerMeta.Render("  (" + fmtNumber(eb.total) + ")")
	}
	if eb.offline {
		header += "  " + eb.theme.StatusOffline.Render("[!] mirror")
	}

	sep := lipgloss.NewStyle().Foreground(eb.theme.Palette.OverlayDim).
		Render(strings.Repeat("-", width))

	entries := eb.visibleEntries()
	var body string
	switch {
	case eb.loading && len(entries) == 0:
		body = eb.theme.PickerMeta.Render("Loading entries...")
	case len(entries) == 0 && eb.favsOnly:
		body = eb.theme.PickerMeta.Render("No favorites on this page. f shows all again.")
	case len(entries) == 0:
		body = eb.theme.PickerMeta.Render("No entries found.")
	default:
		body = eb.renderRows(entries, width)
	}

	footer := eb.theme.PickerFooter.Render(
		"Enter read   r reference in chat   f favorites   Esc close")

	return lipgloss.JoinVertical(lipgloss.Left, header, sep, body, sep, footer)
}

// renderRows renders the visible window of entry rows.
func (eb *EntryBrowser) renderRows(entries []*model.Entry, width int) string {
	maxVisible := eb.maxVisible()

	start := 0
	end := len(entries)
	if len(entries) > maxVisible {
		start = eb.selected - maxVisible/2
		if start < 0 {
			start = 0
		}
		end = start + maxVisible
		if end > len(entries) {
			end = len(entries)
			start = end - maxVisible
			if start < 0 {
				start = 0
			}
		}
	}

	now := time.Now()
	var rows []string
	for i := start; i < end; i++ {
		rows = append(rows, eb.renderRow(entries[i], i == eb.selected, width, now))
	}

	if eb.hasMore && !eb.favsOnly {
		more := "  ... more on the backend (down to fetch)"
		if eb.loading {
			more = "  ... fetching next page"
		}
		rows = append(rows, eb.theme.PickerMeta.Render(more))
	}

	return strings.Join(rows, "\n")
}

// renderRow renders one entry as a title line and a preview line.
func (eb *EntryBrowser) renderRow(e *model.Entry, isSelected bool, width int, now time.Time) string {
	fav := ""
	if e.Favorite {
		fav = "* "
	}

	meta := relativeTime(e.CreatedAt, now)
	if e.WordCount > 0 {
		meta = fmtNumber(e.WordCount) + " words, " + meta
	}

	title := e.Title
	if title == "" {
		title = "(untitled)"
	}
	titleWidth := width - 2 - len(fav) - util.StringWidth(meta) - 2
	if titleWidth < 10 {
		titleWidth = 10
	}
	title = util.TruncateWidth(title, titleWidth)

	preview := e.Preview(width - 4)
	if len(e.Tags) > 0 {
		preview = "#" + strings.Join(e.Tags, " #") + "  " + preview
		preview = util.TruncateRunes(preview, width-4)
	}

	if isSelected {
		titleLine := eb.theme.PickerItemSelected.Width(width).
			Render("> " + fav + title + "  " + meta)
		previewLine := "  " + eb.theme.SnippetText.Render(preview)
		return titleLine + "\n" + previewLine
	}

	titleLine := "  "
	if fav != "" {
		titleLine += eb.theme.FavoriteMark.Render(fav)
	}
	titleLine += eb.theme.PickerTitle.Render(title) + "  " + eb.theme.PickerMeta.Render(meta)
	previewLine := "  " + eb.theme.SnippetText.Render(preview)
	return titleLine + "\n" + previewLine
}

// renderReading renders the full-entry reading pane.
func (eb *EntryBrowser) renderReading(width int) string {
	e := eb.reading

	title := e.Title
	if title == "" {
		title = "(untitled)"
	}
	header := eb.theme.PickerHeader.Render(util.TruncateWidth(title, width-12))
	if e.Favorite {
		header += " " + eb.theme.FavoriteMark.Render("*")
	}

	meta := e.CreatedAt.Format("2006-01-02 15:04")
	if e.WordCount > 0 {
		meta += "  " + fmtNumber(e.WordCount) + " words"
	}
	if e.Mood != "" {
		meta += "  mood: " + e.Mood
	}
	metaLine := eb.theme.PickerMeta.Render(meta)

	tagLine := ""
	if len(e.Tags) > 0 {
		var badges []string
		for _, t := range e.Tags {
			badges = append(badges, eb.theme.TagBadge.Render("#"+t))
		}
		tagLine = strings.Join(badges, " ")
	}

	sep := lipgloss.NewStyle().Foreground(eb.theme.Palette.OverlayDim).
		Render(strings.Repeat("-", width))

	// Wrap the body and slice the scroll window out of it.
	bodyStyle := lipgloss.NewStyle().Width(width)
	wrapped := strings.Split(bodyStyle.Render(e.Content), "\n")

	height := eb.readingHeight()
	maxScroll := len(wrapped) - height
	if maxScroll < 0 {
		maxScroll = 0
	}
	if eb.readScroll > maxScroll {
		eb.readScroll = maxScroll
	}
	endLine := eb.readScroll + height
	if endLine > len(wrapped) {
		endLine = len(wrapped)
	}
	body := strings.Join(wrapped[eb.readScroll:endLine], "\n")

	footer := eb.theme.PickerFooter.Render(
		"Up/Down scroll   r reference in chat   Esc back to list")
	if maxScroll > 0 {
		pos := fmtNumber(eb.readScroll+1) + "-" + fmtNumber(endLine) + "/" + fmtNumber(len(wrapped))
		footer = eb.theme.PickerMeta.Render(pos) + "  " + footer
	}

	parts := []string{header, metaLine}
	if tagLine != "" {
		parts = append(parts, tagLine)
	}
	parts = append(parts, sep, body, sep, footer)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
