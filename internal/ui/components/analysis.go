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
// ANALYSIS VIEW
// =============================================================================

// AnalysisRequestMsg asks the app to run a new batch analysis over the
// current entry filter.
type AnalysisRequestMsg struct {
	PromptType string
}

// AnalysisView shows saved batch analyses: reflections the backend
// produced over groups of entries. The list layer opens into a detail
// layer with the summary, themes, insights, and the mood trend chart.
type AnalysisView struct {
	analyses []*model.BatchAnalysis

	selected int

	// detail holds the opened analysis, nil while on the list.
	detail *model.BatchAnalysis
	scroll int

	width   int
	height  int
	visible bool

	theme *styles.Theme
}

// NewAnalysisView creates a new analysis view.
func NewAnalysisView(theme *styles.Theme) *AnalysisView {
	return &AnalysisView{theme: theme}
}

// =============================================================================
// STATE
// =============================================================================

// SetAnalyses installs the saved analyses, newest first.
func (av *AnalysisView) SetAnalyses(analyses []*model.BatchAnalysis) {
	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].CreatedAt.After(analyses[j].CreatedAt)
	})
	av.analyses = analyses
	if av.selected >= len(analyses) {
		av.selected = len(analyses) - 1
	}
	if av.selected < 0 {
		av.selected = 0
	}
}

// SetSize sets the overlay dimensions.
func (av *AnalysisView) SetSize(width, height int) {
	av.width = width
	av.height = height
}

// Show opens the view on the list layer.
func (av *AnalysisView) Show() {
	av.visible = true
	av.detail = nil
	av.scroll = 0
}

// ShowDetail opens the view straight onto one analysis.
func (av *AnalysisView) ShowDetail(a *model.BatchAnalysis) {
	av.visible = true
	av.detail = a
	av.scroll = 0
}

// Hide closes the view.
func (av *AnalysisView) Hide() {
	av.visible = false
	av.detail = nil
}

// Visible reports whether the view is open.
func (av *AnalysisView) Visible() bool {
	return av.visible
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the view.
func (av *AnalysisView) Init() tea.Cmd {
	return nil
}

// Update handles key messages while the view is open.
func (av *AnalysisView) Update(msg tea.Msg) (*AnalysisView, tea.Cmd) {
	if !av.visible {
		return av, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return av, nil
	}

	if av.detail != nil {
		switch keyMsg.String() {
		case "esc", "q":
			av.detail = nil
			av.scroll = 0
		case "up", "k":
			if av.scroll > 0 {
				av.scroll--
			}
		case "down", "j":
			av.scroll++
		case "home", "g":
			av.scroll = 0
		}
		return av, nil
	}

	switch keyMsg.String() {
	case "esc", "q":
		av.Hide()
		return av, nil

	case "up", "k":
		if av.selected > 0 {
			av.selected--
		}
		return av, nil

	case "down", "j":
		if av.selected < len(av.analyses)-1 {
			av.selected++
		}
		return av, nil

	case "enter":
		if av.selected >= 0 && av.selected < len(av.analyses) {
			av.detail = av.analyses[av.selected]
			av.scroll = 0
		}
		return av, nil

	case "n":
		return av, func() tea.Msg {
			return AnalysisRequestMsg{PromptType: "reflection"}
		}
	}

	return av, nil
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the overlay.
func (av *AnalysisView) View() string {
	if !av.visible {
		return ""
	}

	boxWidth := 72
	if av.width > 0 && av.width < boxWidth+6 {
		boxWidth = av.width - 6
	}
	if boxWidth < 44 {
		boxWidth = 44
	}
	innerWidth := boxWidth - 6

	var content string
	if av.detail != nil {
		content = av.renderDetail(innerWidth)
	} else {
		content = av.renderList(innerWidth)
	}

	box := av.theme.AnalysisBox.Width(boxWidth).Render(content)

	if av.width > 0 && av.height > 0 {
		return lipgloss.Place(
			av.width, av.height,
			lipgloss.Center, lipgloss.Center,
			box,
		)
	}
	return box
}

// renderList renders the saved-analyses list.
func (av *AnalysisView) renderList(width int) string {
	header := av.theme.AnalysisTitle.Render("Reflections")
	if len(av.analyses) > 0 {
		header += av.theme.PickerMeta.Render("  (" + fmtNumber(len(av.analyses)) + ")")
	}

	sep := lipgloss.NewStyle().Foreground(av.theme.Palette.OverlayDim).
		Render(strings.Repeat("-", width))

	var body string
	if len(av.analyses) == 0 {
		body = av.theme.PickerMeta.Render(
			"No reflections yet. /analyze asks the assistant to look across your entries.")
	} else {
		now := time.Now()
		var rows []string
		for i, a := range av.analyses {
			rows = append(rows, av.renderRow(a, i == av.selected, width, now))
		}
		body = strings.Join(rows, "\n")
	}

	footer := av.theme.PickerFooter.Render("Enter open   n new reflection   Esc close")

	return lipgloss.JoinVertical(lipgloss.Left, header, sep, body, sep, footer)
}

// renderRow renders one saved analysis line.
func (av *AnalysisView) renderRow(a *model.BatchAnalysis, isSelected bool, width int, now time.Time) string {
	meta := a.PromptType
	if meta != "" {
		meta += ", "
	}
	meta += fmtNumber(a.EntryCount()) + " entries, " + relativeTime(a.CreatedAt, now)

	title := a.Title
	if title == "" {
		title = "(untitled reflection)"
	}
	titleWidth := width - 2 - util.StringWidth(meta) - 2
	if titleWidth < 10 {
		titleWidth = 10
	}
	title = util.TruncateWidth(title, titleWidth)

	if isSelected {
		return av.theme.PickerItemSelected.Width(width).Render("> " + title + "  " + meta)
	}
	return "  " + av.theme.PickerTitle.Render(title) + "  " + av.theme.PickerMeta.Render(meta)
}

// renderDetail renders one analysis: summary, themes, insights, moods.
func (av *AnalysisView) renderDetail(width int) string {
	a := av.detail

	header := av.theme.AnalysisTitle.Render(util.TruncateWidth(a.Title, width))
	meta := av.theme.PickerMeta.Render(
		a.CreatedAt.Format("2006-01-02") + "  " + fmtNumber(a.EntryCount()) + " entries")

	sep := lipgloss.NewStyle().Foreground(av.theme.Palette.OverlayDim).
		Render(strings.Repeat("-", width))

	var sections []string

	if a.Summary != "" {
		summary := lipgloss.NewStyle().Width(width).Render(a.Summary)
		sections = append(sections, summary)
	}

	if len(a.Themes) > 0 {
		var b strings.Builder
		b.WriteString(av.theme.AnalysisSection.Render("Themes"))
		for i, t := range a.Themes {
			b.WriteString("\n")
			b.WriteString(styles.RenderTreeLine(i == len(a.Themes)-1))
			b.WriteString(util.TruncateWidth(t, width-3))
		}
		sections = append(sections, b.String())
	}

	if len(a.Insights) > 0 {
		var b strings.Builder
		b.WriteString(av.theme.AnalysisSection.Render("Insights"))
		for _, in := range a.Insights {
			b.WriteString("\n")
			wrapped := lipgloss.NewStyle().Width(width - 4).Render(in)
			lines := strings.Split(wrapped, "\n")
			for j, line := range lines {
				if j == 0 {
					b.WriteString("  " + av.theme.AnalysisInsight.Render("- "+line))
				} else {
					b.WriteString("\n    " + av.theme.AnalysisInsight.Render(line))
				}
			}
		}
		sections = append(sections, b.String())
	}

	if len(a.MoodTrend) > 0 {
		sections = append(sections, av.renderMoodTrend(a.MoodTrend, width))
	}

	body := strings.Join(sections, "\n\n")

	// Scroll window over the assembled body.
	lines := strings.Split(body, "\n")
	height := av.height - 10
	if height < 4 {
		height = 4
	}
	maxScroll := len(lines) - height
	if maxScroll < 0 {
		maxScroll = 0
	}
	if av.scroll > maxScroll {
		av.scroll = maxScroll
	}
	endLine := av.scroll + height
	if endLine > len(lines) {
		endLine = len(lines)
	}
	body = strings.Join(lines[av.scroll:endLine], "\n")

	footer := av.theme.PickerFooter.Render("Up/Down scroll   Esc back")

	return lipgloss.JoinVertical(lipgloss.Left, header, meta, sep, body, sep, footer)
}

// renderMoodTrend renders the mood counts as a scaled bar chart.
func (av *AnalysisView) renderMoodTrend(trend map[string]int, width int) string {
	type moodCount struct {
		mood  string
		count int
	}
	var moods []moodCount
	maxCount := 0
	for mood, count := range trend {
		moods = append(moods, moodCount{mood, count})
		if count > maxCount {
			maxCount = count
		}
	}
	// Sort by count descending, ties alphabetical, so the chart is
	// stable across renders.
	sort.Slice(moods, func(i, j int) bool {
		if moods[i].count != moods[j].count {
			return moods[i].count > moods[j].count
		}
		return moods[i].mood < moods[j].mood
	})

	barWidth := width - 26
	if barWidth < 10 {
		barWidth = 10
	}
	if barWidth > 30 {
		barWidth = 30
	}

	var b strings.Builder
	b.WriteString(av.theme.AnalysisSection.Render("Mood trend"))
	for _, m := range moods {
		percent := 0.0
		if maxCount > 0 {
			percent = float64(m.count) / float64(maxCount) * 100
		}
		label := util.PadRight(util.TruncateRunes(m.mood, 12), 12)
		b.WriteString("\n  " + label + " " +
			av.theme.SuccessStyle.Render(styles.RenderProgressBar(barWidth, percent)) +
			" " + fmtNumber(m.count))
	}
	return b.String()
}
