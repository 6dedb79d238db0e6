// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/ui/components"
	"github.com/jeranaias/inkwell-tui/internal/ui/styles"
	"github.com/jeranaias/inkwell-tui/internal/util"
)

// Fixed chrome heights. The viewport gets whatever remains, minus one
// line when the search bar is open.
const (
	headerHeight = 1
	inputHeight  = 3
	statusHeight = 1
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the conversation: header, transcript viewport, input
// area, and status bar. Transient overlays (completion popup, error
// banner, help) slot into the stack.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.searchMode {
		b.WriteString(m.renderSearchBar())
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString(m.renderHelp())
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")

	b.WriteString(m.renderInputArea())
	b.WriteString("\n")

	if popup := m.completionPopup.View(m.completionState); popup != "" {
		b.WriteString(popup)
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatusBar())
	return b.String()
}

// =============================================================================
// CHROME
// =============================================================================

// renderHeader draws the one-line title bar: app name, session title,
// and the active persona on the right.
func (m Model) renderHeader() string {
	inner := m.width - 4
	if inner < 10 {
		inner = 10
	}

	title := m.session.Title
	if title == "" {
		if m.session.IsPersisted() {
			title = util.TruncateRunesNoEllipsis(m.session.ID, 12)
		} else {
			title = "new conversation"
		}
	}
	title = util.TruncateRunes(title, inner/2)

	left := m.theme.HeaderTitle.Render("Inkwell") +
		m.theme.HeaderSubtitle.Render("  "+title)

	right := ""
	if m.personaName != "" {
		right = m.theme.HeaderSubtitle.Render(util.TruncateRunes(m.personaName, inner/3))
	}

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right = ""
		gap = inner - lipgloss.Width(left)
		if gap < 0 {
			gap = 0
		}
	}

	row := left + strings.Repeat(" ", gap) + right
	return m.theme.Header.Width(m.width).Render(row)
}

// renderSearchBar draws the find line with a match position counter.
func (m Model) renderSearchBar() string {
	left := m.searchInput.View()

	pos := "no matches"
	if len(m.searchMatches) > 0 {
		pos = strconv.Itoa(m.searchIndex+1) + "/" + strconv.Itoa(len(m.searchMatches))
	} else if m.searchQuery == "" {
		pos = ""
	}
	right := m.theme.ShortcutDesc.Render(pos)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return left
	}
	return " " + left + strings.Repeat(" ", gap) + right
}

// renderInputArea draws the composer. While the error banner is up it
// takes the composer's slot so the transcript stays put.
func (m Model) renderInputArea() string {
	if m.errBox.Visible() {
		return m.errBox.View(m.width)
	}

	box := m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
	return box + "\n" + m.renderHintLine()
}

// renderHintLine fills the line under the composer: turn progress
// while streaming, otherwise a command hint and the character count.
func (m Model) renderHintLine() string {
	if m.state == StateStreaming {
		return " " + m.renderProgress()
	}

	left := " " + m.theme.ShortcutKey.Render("/") +
		m.theme.ShortcutDesc.Render(" commands  ") +
		m.theme.ShortcutKey.Render("Tab") +
		m.theme.ShortcutDesc.Render(" complete")

	right := m.renderCharCount()
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderProgress shows what the turn is doing right now.
func (m Model) renderProgress() string {
	if m.retrying {
		line := m.theme.ThinkingText.Render("Stream interrupted, retrying with a direct request")
		if !m.turnStart.IsZero() {
			line += m.theme.ThinkingTime.Render(" (" + formatDuration(time.Since(m.turnStart)) + ")")
		}
		return line
	}
	if m.awaitingWord {
		if s := m.spinner.View(); s != "" {
			return s
		}
		return m.theme.ThinkingText.Render("Thinking...")
	}
	return m.theme.ThinkingText.Render("Writing") +
		m.theme.ShortcutDesc.Render("  Ctrl+C stops and keeps the partial reply")
}

// renderCharCount shows the input length once it passes three quarters
// of the limit.
func (m Model) renderCharCount() string {
	limit := m.input.CharLimit
	if limit <= 0 {
		return ""
	}
	n := len([]rune(m.input.Value()))
	if n < limit*3/4 {
		return ""
	}

	style := m.theme.CharCount
	switch {
	case n >= limit*95/100:
		style = m.theme.CharCountDanger
	case n >= limit*85/100:
		style = m.theme.CharCountWarning
	}
	return style.Render(strconv.Itoa(n) + "/" + strconv.Itoa(limit))
}

// renderStatusBar pushes current state into the status bar component
// and renders it.
func (m Model) renderStatusBar() string {
	m.statusBar.SetWidth(m.width)
	m.statusBar.SetSession(m.session.Title, m.session.Len())
	m.statusBar.SetOnline(m.online)
	m.statusBar.SetCachedEntries(m.cachedEntries)
	m.statusBar.SetRelockIn(m.relockIn)

	switch {
	case m.state == StateStreaming:
		m.statusBar.SetStatus(components.StatusThinking)
	case m.state == StateError:
		m.statusBar.SetStatus(components.StatusError)
	case strings.TrimSpace(m.input.Value()) != "":
		m.statusBar.SetStatus(components.StatusWriting)
	default:
		m.statusBar.SetStatus(components.StatusReady)
	}
	return m.statusBar.View()
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderMessages renders the whole transcript for the viewport.
func (m Model) renderMessages() string {
	if len(m.session.Messages) == 0 {
		return m.renderEmptyState()
	}
	return strings.Join(m.renderMessageBlocks(), "\n\n")
}

// renderMessageBlocks renders one block per message. Kept separate
// from renderMessages so search can map a message index to a line
// offset from the block heights.
func (m Model) renderMessageBlocks() []string {
	blocks := make([]string, 0, len(m.session.Messages))
	for i, msg := range m.session.Messages {
		switch msg.Role {
		case model.RoleUser:
			blocks = append(blocks, m.renderUserMessage(msg, i))
		case model.RoleAssistant:
			blocks = append(blocks, m.renderAssistantMessage(msg, i))
		case model.RoleError:
			blocks = append(blocks, m.renderErrorMessage(msg))
		default:
			blocks = append(blocks, m.renderSystemMessage(msg, i))
		}
	}
	return blocks
}

// renderUserMessage draws a right-aligned bubble with a timestamp.
func (m Model) renderUserMessage(msg *model.Message, idx int) string {
	content := msg.GetDisplayContent()
	if m.searchQuery != "" {
		content = m.highlightMatches(content, idx)
	}

	bubble := m.fitBubble(m.theme.UserBubble, content)
	block := bubble + "\n" + m.theme.ThinkingTime.Render(formatTimestamp(msg.CreatedAt))
	return lipgloss.NewStyle().Width(m.width).Align(lipgloss.Right).Render(block)
}

// renderAssistantMessage draws the reply bubble. While streaming it
// shows raw text with a cursor; once finalized it gets code block
// highlighting and the stats and reference footers.
func (m Model) renderAssistantMessage(msg *model.Message, idx int) string {
	streaming := m.state == StateStreaming && msg == m.inProgress
	content := msg.GetDisplayContent()

	if streaming && content == "" {
		// Nothing arrived yet; the progress line covers this phase.
		return ""
	}

	mw := m.theme.MessageWidth(m.width)
	switch {
	case m.searchQuery != "":
		content = m.highlightMatches(content, idx)
	case !streaming:
		content = components.ParseCodeBlocks(m.theme, content, mw-2)
	}

	if streaming {
		content += m.theme.StreamCursor.Render("▍")
	}

	block := m.fitBubble(m.theme.AssistantBubble, content)
	if streaming {
		return block
	}

	meta := []string{formatTimestamp(msg.CreatedAt)}
	if s := formatTurnStats(msg.Stats); s != "" {
		meta = append(meta, s)
	}
	block += "\n" + m.theme.ThinkingTime.Render(strings.Join(meta, "   "))

	if line := referenceLine(msg.References); line != "" {
		block += "\n" + m.theme.SnippetText.Render(line)
	}
	if line := toolUsageLine(msg.Tools); line != "" {
		block += "\n" + m.theme.SnippetText.Render(line)
	}
	return block
}

// renderSystemMessage draws a notice with the left-border style.
func (m Model) renderSystemMessage(msg *model.Message, idx int) string {
	content := msg.GetDisplayContent()
	if m.searchQuery != "" {
		content = m.highlightMatches(content, idx)
	}
	return m.fitBubble(m.theme.SystemBubble, content)
}

// renderErrorMessage draws a failed-turn placeholder.
func (m Model) renderErrorMessage(msg *model.Message) string {
	mark := m.theme.ErrorStyle.Render(styles.StatusIndicators.Error + " ")
	body := m.theme.ErrorMessage.Render(msg.GetDisplayContent())
	return m.fitBubble(m.theme.SystemBubble, mark+body)
}

// fitBubble renders content in the given bubble style, forcing a wrap
// width only when a line is too wide. Short messages keep a snug
// bubble.
func (m Model) fitBubble(style lipgloss.Style, content string) string {
	mw := m.theme.MessageWidth(m.width)
	if lipgloss.Width(content) > mw {
		style = style.Width(mw)
	}
	return style.Render(content)
}

// highlightMatches wraps search hits in the highlight style. The
// current hit renders inverted so it stands out from the rest.
//
// UNICODE: match offsets are rune offsets, so slicing happens on the
// rune slice, never on bytes.
func (m Model) highlightMatches(content string, msgIndex int) string {
	if m.searchQuery == "" {
		return content
	}

	qlen := len([]rune(m.searchQuery))
	runes := []rune(content)

	var b strings.Builder
	last := 0
	for i, match := range m.searchMatches {
		if match.MessageIndex != msgIndex {
			continue
		}
		if match.Start < last || match.Start+qlen > len(runes) {
			continue
		}
		b.WriteString(string(runes[last:match.Start]))

		style := m.theme.MatchHighlight
		if i == m.searchIndex {
			style = style.Reverse(true)
		}
		b.WriteString(style.Render(string(runes[match.Start : match.Start+qlen])))
		last = match.Start + qlen
	}
	b.WriteString(string(runes[last:]))
	return b.String()
}

// renderEmptyState fills the viewport before the first message.
func (m Model) renderEmptyState() string {
	lines := []string{
		m.theme.HeaderSubtitle.Render("Your journal is listening."),
		"",
		m.theme.ShortcutDesc.Render("Write something below and press Enter."),
		m.theme.ShortcutDesc.Render("Or try ") +
			m.theme.ShortcutKey.Render("/open") +
			m.theme.ShortcutDesc.Render(" to resume, ") +
			m.theme.ShortcutKey.Render("/entries") +
			m.theme.ShortcutDesc.Render(" to browse, ") +
			m.theme.ShortcutKey.Render("/help") +
			m.theme.ShortcutDesc.Render(" for everything else."),
	}

	return lipgloss.Place(
		m.width, m.viewport.Height,
		lipgloss.Center, lipgloss.Center,
		strings.Join(lines, "\n"),
	)
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

// renderHelp draws the help overlay in the transcript's slot. /help
// takes quick, all, or a category name; the topic narrows what shows.
func (m Model) renderHelp() string {
	topic := strings.ToLower(strings.TrimSpace(m.helpTopic))

	var body string
	switch topic {
	case "quick":
		body = m.renderKeysColumn()
	case "", "all":
		body = lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.renderKeysColumn(),
			strings.Repeat(" ", 4),
			m.renderCommandsColumn(""),
		)
	default:
		body = m.renderCommandsColumn(topic)
	}
	body += "\n\n" + m.theme.ShortcutDesc.Render("esc closes this help")

	box := m.theme.PickerBox.Render(body)
	return lipgloss.Place(
		m.width, m.viewport.Height,
		lipgloss.Center, lipgloss.Center,
		box,
	)
}

// renderKeysColumn lists the key bindings by section.
func (m Model) renderKeysColumn() string {
	var b strings.Builder
	b.WriteString(m.theme.PickerHeader.Render("Keys"))
	b.WriteString("\n")
	for _, section := range KeyHelpSections() {
		b.WriteString("\n")
		b.WriteString(m.theme.PickerTitle.Render(section.Title))
		b.WriteString("\n")
		for _, entry := range section.Entries {
			b.WriteString("  ")
			b.WriteString(m.theme.ShortcutKey.Render(padRight(entry.Key, 12)))
			b.WriteString(m.theme.ShortcutDesc.Render(entry.Desc))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderCommandsColumn lists slash commands, optionally narrowed to
// one category.
func (m Model) renderCommandsColumn(filter string) string {
	grouped := m.registry.ByCategory()

	categories := make([]string, 0, len(grouped))
	for category := range grouped {
		if filter != "" && !strings.EqualFold(category, filter) {
			continue
		}
		categories = append(categories, category)
	}
	sort.Strings(categories)
	if len(categories) == 0 {
		return m.theme.ShortcutDesc.Render("No commands in " + filter + ".")
	}

	var b strings.Builder
	b.WriteString(m.theme.PickerHeader.Render("Commands"))
	b.WriteString("\n")
	for _, category := range categories {
		cmds := grouped[category]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })

		b.WriteString("\n")
		b.WriteString(m.theme.PickerTitle.Render(category))
		b.WriteString("\n")
		for _, cmd := range cmds {
			b.WriteString("  ")
			b.WriteString(m.theme.ShortcutKey.Render(padRight(cmd.Name, 12)))
			b.WriteString(m.theme.ShortcutDesc.Render(cmd.Description))
			b.WriteString("\n")
		}
	}
	if filter == "" {
		b.WriteString("\n")
		b.WriteString(m.theme.ShortcutDesc.Render("/help <category> narrows this list"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// padRight pads s with spaces to width, counting runes.
func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-n)
}
