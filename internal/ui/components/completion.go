// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the inkwell TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/inkwell-tui/internal/commands"
	"github.com/jeranaias/inkwell-tui/internal/ui/styles"
	"github.com/jeranaias/inkwell-tui/internal/util"
)

// =============================================================================
// COMPLETION POPUP COMPONENT
// =============================================================================

// CompletionPopup renders the slash-command completion list above the
// input. Selection state lives in commands.CompletionState; this
// component only draws it.
type CompletionPopup struct {
	maxVisible int
	width      int
	theme      *styles.Theme
}

// NewCompletionPopup creates a new completion popup.
func NewCompletionPopup(theme *styles.Theme) *CompletionPopup {
	return &CompletionPopup{
		maxVisible: 8,
		width:      50,
		theme:      theme,
	}
}

// SetWidth sets the popup width.
func (c *CompletionPopup) SetWidth(width int) {
	if width < 30 {
		width = 30
	}
	c.width = width
}

// SetMaxVisible sets the maximum number of visible rows.
func (c *CompletionPopup) SetMaxVisible(max int) {
	if max < 1 {
		max = 1
	}
	c.maxVisible = max
}

// View renders the popup for the given completion state.
func (c *CompletionPopup) View(state *commands.CompletionState) string {
	if state == nil || !state.Visible || len(state.Completions) == 0 {
		return ""
	}

	completions := state.Completions
	selected := state.Selected

	// Scroll window centered on the selection.
	start := 0
	end := len(completions)
	if len(completions) > c.maxVisible {
		start = selected - c.maxVisible/2
		if start < 0 {
			start = 0
		}
		end = start + c.maxVisible
		if end > len(completions) {
			end = len(completions)
			start = end - c.maxVisible
			if start < 0 {
				start = 0
			}
		}
	}

	var items []string
	for i := start; i < end; i++ {
		items = append(items, c.renderItem(completions[i], i == selected))
	}

	content := strings.Join(items, "\n")

	if len(completions) > c.maxVisible {
		counter := c.theme.PickerFooter.Render(
			fmtNumber(selected+1) + "/" + fmtNumber(len(completions)))
		content += "\n" + counter
	}

	return c.theme.CompletionPopup.Width(c.width).MaxWidth(c.width).Render(content)
}

// renderItem renders a single completion row.
func (c *CompletionPopup) renderItem(comp commands.Completion, isSelected bool) string {
	valueWidth := 20
	descWidth := c.width - valueWidth - 4
	if descWidth < 0 {
		descWidth = 0
	}

	valueStyle := c.theme.CompletionItem.Width(valueWidth)
	descStyle := c.theme.ShortcutDesc.Width(descWidth)
	indicatorStyle := c.theme.CompletionMatch.Width(2)

	if isSelected {
		valueStyle = c.theme.CompletionSelected.Width(valueWidth)
		descStyle = descStyle.Foreground(c.theme.Palette.TextPrimary)
	}

	value := comp.Display
	if value == "" {
		value = comp.Value
	}
	value = util.TruncateWidth(value, valueWidth)

	desc := ""
	if descWidth > 3 {
		desc = util.TruncateWidth(comp.Description, descWidth)
	}

	indicator := " "
	if isSelected {
		indicator = ">"
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		indicatorStyle.Render(indicator),
		valueStyle.Render(value),
		descStyle.Render(desc),
	)
}
