// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/ui/styles"
	"github.com/jeranaias/inkwell-tui/internal/util"
)

// =============================================================================
// SEARCH OVERLAY
// =============================================================================

// SearchRequestMsg asks the app to run a search.
type SearchRequestMsg struct {
	Query    string
	Semantic bool
	Page     int
}

// SearchOpenEntryMsg asks the app to open a search hit for reading.
type SearchOpenEntryMsg struct {
	Entry *model.Entry
}

// SearchOverlay is the find-in-journal overlay: a query input on top,
// results underneath. Ctrl+S switches between text match and semantic
// search by meaning.
type SearchOverlay struct {
	input textinput.Model

	results  []api.SearchResult
	total    int
	query    string
	semantic bool
	offline  bool
	loading  bool

	// dirty is set while the input differs from the query the results
	// answer, so Enter re-searches instead of opening a stale hit.
	dirty bool

	selected int

	width   int
	height  int
	visible bool

	theme *styles.Theme
}

// NewSearchOverlay creates a new search overlay.
func NewSearchOverlay(theme *styles.Theme) *SearchOverlay {
	ti := textinput.New()
	ti.Placeholder = "Search your journal..."
	ti.Prompt = "/ "
	ti.CharLimit = 200
	ti.Width = 50
	ti.PromptStyle = theme.InputPrompt
	ti.TextStyle = theme.InputText
	ti.PlaceholderStyle = theme.InputPlaceholder

	return &SearchOverlay{
		input: ti,
		theme: theme,
	}
}

// =============================================================================
// STATE
// =============================================================================

// SetResults installs results for a completed search.
func (so *SearchOverlay) SetResults(query string, page *api.SearchPage, offline bool) {
	so.query = query
	so.loading = false
	so.dirty = false
	so.offline = offline
	so.selected = 0
	if page == nil {
		so.results = nil
		so.total = 0
		return
	}
	so.results = page.Results
	so.total = page.Total
}

// SetSize sets the overlay dimensions.
func (so *SearchOverlay) SetSize(width, height int) {
	so.width = width
	so.height = height
}

// Show opens the overlay with an empty query and focuses the input.
func (so *SearchOverlay) Show() tea.Cmd {
	so.visible = true
	so.results = nil
	so.total = 0
	so.query = ""
	so.dirty = false
	so.loading = false
	so.selected = 0
	so.input.SetValue("")
	return so.input.Focus()
}

// ShowQuery opens the overlay with a query already running, for the
// /search command.
func (so *SearchOverlay) ShowQuery(query string, semantic bool) tea.Cmd {
	so.visible = true
	so.results = nil
	so.total = 0
	so.query = query
	so.semantic = semantic
	so.dirty = false
	so.loading = true
	so.selected = 0
	so.input.SetValue(query)
	so.input.CursorEnd()
	return so.input.Focus()
}

// Hide closes the overlay.
func (so *SearchOverlay) Hide() {
	so.visible = false
	so.input.Blur()
}

// Visible reports whether the overlay is open.
func (so *SearchOverlay) Visible() bool {
	return so.visible
}

// Semantic reports whether semantic search is active.
func (so *SearchOverlay) Semantic() bool {
	return so.semantic
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the overlay.
func (so *SearchOverlay) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages while the overlay is open.
func (so *SearchOverlay) Update(msg tea.Msg) (*SearchOverlay, tea.Cmd) {
	if !so.visible {
		return so, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			so.Hide()
			return so, nil

		case "up", "ctrl+p":
			if so.selected > 0 {
				so.selected--
			}
			return so, nil

		case "down", "ctrl+n":
			if so.selected < len(so.results)-1 {
				so.selected++
			}
			return so, nil

		case "ctrl+s":
			so.semantic = !so.semantic
			if strings.TrimSpace(so.input.Value()) != "" {
				return so, so.submit()
			}
			return so, nil

		case "ctrl+r":
			if so.selected >= 0 && so.selected < len(so.results) {
				e := so.results[so.selected].Entry
				so.Hide()
				return so, func() tea.Msg {
					return EntryRefMsg{ID: e.ID, Title: e.Title}
				}
			}
			return so, nil

		case "enter":
			if so.dirty || len(so.results) == 0 {
				return so, so.submit()
			}
			if so.selected >= 0 && so.selected < len(so.results) {
				entry := so.results[so.selected].Entry
				so.Hide()
				return so, func() tea.Msg {
					return SearchOpenEntryMsg{Entry: &entry}
				}
			}
			return so, nil
		}
	}

	previous := so.input.Value()
	var cmd tea.Cmd
	so.input, cmd = so.input.Update(msg)
	if so.input.Value() != previous {
		so.dirty = true
	}

	return so, cmd
}

// submit emits a search request for the current input.
func (so *SearchOverlay) submit() tea.Cmd {
	query := strings.TrimSpace(so.input.Value())
	if query == "" {
		return nil
	}
	so.loading = true
	so.dirty = false
	so.query = query
	semantic := so.semantic
	return func() tea.Msg {
		return SearchRequestMsg{Query: query, Semantic: semantic, Page: 1}
	}
}

// =============================================================================
// RENDERING
// =============================================================================

func (so *SearchOverlay) maxVisible() int {
	// Each result takes two lines plus a blank spacer.
	visible := (so.height - 10) / 3
	if visible < 2 {
		visible = 2
	}
	if visible > 6 {
		visible = 6
	}
	return visible
}

// View renders the overlay.
func (so *SearchOverlay) View() string {
	if !so.visible {
		return ""
	}

	boxWidth := 72
	if so.width > 0 && so.width < boxWidth+6 {
		boxWidth = so.width - 6
	}
	if boxWidth < 44 {
		boxWidth = 44
	}
	innerWidth := boxWidth - 6

	header := so.theme.PickerHeader.Render("Search")
	mode := "text"
	if so.semantic {
		mode = "meaning"
	}
	header += "  " + so.theme.PickerMeta.Render("mode: "+mode)
	if so.offline {
		header += "  " + so.theme.StatusOffline.Render("[!] mirror")
	}

	so.input.Width = innerWidth - 4
	inputView := so.input.View()

	sep := lipgloss.NewStyle().Foreground(so.theme.Palette.OverlayDim).
		Render(strings.Repeat("-", innerWidth))

	var body string
	switch {
	case so.loading:
		body = so.theme.PickerMeta.Render("Searching...")
	case so.query == "":
		body = so.theme.PickerMeta.Render("Type a query and press Enter.")
	case len(so.results) == 0:
		body = so.theme.PickerMeta.Render("Nothing matched \"" + util.TruncateRunes(so.query, 30) + "\".")
	default:
		body = so.renderResults(innerWidth)
	}

	footer := so.theme.PickerFooter.Render(
		"Enter open   Ctrl+R reference   Ctrl+S mode   Esc close")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		inputView,
		sep,
		body,
		sep,
		footer,
	)

	box := so.theme.PickerBox.Width(boxWidth).Render(content)

	if so.width > 0 && so.height > 0 {
		return lipgloss.Place(
			so.width, so.height,
			lipgloss.Center, lipgloss.Center,
			box,
		)
	}
	return box
}

// renderResults renders the visible window of search hits.
func (so *SearchOverlay) renderResults(width int) string {
	maxVisible := so.maxVisible()

	start := 0
	end := len(so.results)
	if len(so.results) > maxVisible {
		start = so.selected - maxVisible/2
		if start < 0 {
			start = 0
		}
		end = start + maxVisible
		if end > len(so.results) {
			end = len(so.results)
			start = end - maxVisible
			if start < 0 {
				start = 0
			}
		}
	}

	var rows []string
	for i := start; i < end; i++ {
		rows = append(rows, so.renderResult(so.results[i], i == so.selected, width))
	}

	if so.total > len(so.results) {
		rows = append(rows, so.theme.PickerMeta.Render(
			"  showing "+fmtNumber(len(so.results))+" of "+fmtNumber(so.total)))
	}

	return strings.Join(rows, "\n\n")
}

// renderResult renders one hit: a title line and a highlighted snippet.
func (so *SearchOverlay) renderResult(r api.SearchResult, isSelected bool, width int) string {
	title := r.Entry.Title
	if title == "" {
		title = "(untitled)"
	}

	score := ""
	if r.Score > 0 {
		score = strconv.FormatFloat(r.Score*100, 'f', 0, 64) + "%"
	}

	titleWidth := width - 2 - len(score) - 2
	if titleWidth < 10 {
		titleWidth = 10
	}
	title = util.TruncateWidth(title, titleWidth)

	var titleLine string
	if isSelected {
		row := "> " + title
		if score != "" {
			row += "  " + score
		}
		titleLine = so.theme.PickerItemSelected.Width(width).Render(row)
	} else {
		titleLine = "  " + so.theme.PickerTitle.Render(title)
		if score != "" {
			titleLine += "  " + so.theme.ScoreText.Render(score)
		}
	}

	snippet := r.Snippet
	if snippet == "" {
		snippet = r.Entry.Preview(width - 4)
	}
	snippet = util.TruncateRunes(strings.ReplaceAll(snippet, "\n", " "), width-4)
	snippetLine := "  " + so.highlightSnippet(snippet, so.query)

	return titleLine + "\n" + snippetLine
}

// highlightSnippet wraps query-word matches in the highlight style.
// Matching is case-insensitive and rune-based so multibyte text
// highlights at the right offsets.
func (so *SearchOverlay) highlightSnippet(snippet, query string) string {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return so.theme.SnippetText.Render(snippet)
	}

	runes := []rune(snippet)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}

	// marks[i] is true when runes[i] belongs to a match.
	marks := make([]bool, len(runes))
	for _, w := range words {
		wr := []rune(w)
		if len(wr) == 0 || len(wr) > len(runes) {
			continue
		}
		for i := 0; i+len(wr) <= len(lower); i++ {
			match := true
			for j := range wr {
				if lower[i+j] != wr[j] {
					match = false
					break
				}
			}
			if match {
				for j := range wr {
					marks[i+j] = true
				}
			}
		}
	}

	var b strings.Builder
	segStart := 0
	flush := func(end int, marked bool) {
		if end <= segStart {
			return
		}
		text := string(runes[segStart:end])
		if marked {
			b.WriteString(so.theme.MatchHighlight.Render(text))
		} else {
			b.WriteString(so.theme.SnippetText.Render(text))
		}
		segStart = end
	}
	for i := 1; i <= len(runes); i++ {
		if i == len(runes) || marks[i] != marks[i-1] {
			flush(i, marks[i-1])
		}
	}

	return b.String()
}
