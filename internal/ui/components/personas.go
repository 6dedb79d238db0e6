// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/ui/styles"
	"github.com/jeranaias/inkwell-tui/internal/util"
)

// =============================================================================
// PERSONA PICKER
// =============================================================================

// PersonaChosenMsg reports the persona the user picked.
type PersonaChosenMsg struct {
	ID   string
	Name string
}

// PersonaPicker is an overlay for choosing the assistant's voice.
type PersonaPicker struct {
	personas []*model.Persona

	selected int
	activeID string

	width   int
	height  int
	visible bool

	theme *styles.Theme
}

// NewPersonaPicker creates a new persona picker.
func NewPersonaPicker(theme *styles.Theme) *PersonaPicker {
	return &PersonaPicker{theme: theme}
}

// =============================================================================
// STATE
// =============================================================================

// SetPersonas installs the available personas. The default persona is
// listed first, the rest keep backend order.
func (pp *PersonaPicker) SetPersonas(personas []*model.Persona) {
	var def []*model.Persona
	var rest []*model.Persona
	for _, p := range personas {
		if p.IsDefault {
			def = append(def, p)
		} else {
			rest = append(rest, p)
		}
	}
	pp.personas = append(def, rest...)
	if pp.selected >= len(pp.personas) {
		pp.selected = len(pp.personas) - 1
	}
	if pp.selected < 0 {
		pp.selected = 0
	}
}

// SetActiveID marks the persona the current session uses.
func (pp *PersonaPicker) SetActiveID(id string) {
	pp.activeID = id
	for i, p := range pp.personas {
		if p.ID == id {
			pp.selected = i
			break
		}
	}
}

// SetSize sets the overlay dimensions.
func (pp *PersonaPicker) SetSize(width, height int) {
	pp.width = width
	pp.height = height
}

// Show opens the picker.
func (pp *PersonaPicker) Show() {
	pp.visible = true
}

// Hide closes the picker.
func (pp *PersonaPicker) Hide() {
	pp.visible = false
}

// Visible reports whether the picker is open.
func (pp *PersonaPicker) Visible() bool {
	return pp.visible
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the picker.
func (pp *PersonaPicker) Init() tea.Cmd {
	return nil
}

// Update handles key messages while the picker is open.
func (pp *PersonaPicker) Update(msg tea.Msg) (*PersonaPicker, tea.Cmd) {
	if !pp.visible {
		return pp, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return pp, nil
	}

	switch keyMsg.String() {
	case "esc", "q":
		pp.Hide()
		return pp, nil

	case "up", "k":
		if pp.selected > 0 {
			pp.selected--
		}
		return pp, nil

	case "down", "j":
		if pp.selected < len(pp.personas)-1 {
			pp.selected++
		}
		return pp, nil

	case "enter":
		if pp.selected >= 0 && pp.selected < len(pp.personas) {
			p := pp.personas[pp.selected]
			pp.Hide()
			id, name := p.ID, p.Name
			return pp, func() tea.Msg {
				return PersonaChosenMsg{ID: id, Name: name}
			}
		}
		return pp, nil
	}

	return pp, nil
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the picker overlay.
func (pp *PersonaPicker) View() string {
	if !pp.visible {
		return ""
	}

	boxWidth := 64
	if pp.width > 0 && pp.width < boxWidth+6 {
		boxWidth = pp.width - 6
	}
	if boxWidth < 40 {
		boxWidth = 40
	}
	innerWidth := boxWidth - 6

	header := pp.theme.PickerHeader.Render("Personas")
	sep := lipgloss.NewStyle().Foreground(pp.theme.Palette.OverlayDim).
		Render(strings.Repeat("-", innerWidth))

	var body string
	if len(pp.personas) == 0 {
		body = pp.theme.PickerMeta.Render("No personas available.")
	} else {
		var rows []string
		for i, p := range pp.personas {
			rows = append(rows, pp.renderRow(p, i == pp.selected, innerWidth))
		}
		body = strings.Join(rows, "\n")
	}

	footer := pp.theme.PickerFooter.Render("Enter choose   Esc close")

	content := lipgloss.JoinVertical(lipgloss.Left, header, sep, body, sep, footer)
	box := pp.theme.PickerBox.Width(boxWidth).Render(content)

	if pp.width > 0 && pp.height > 0 {
		return lipgloss.Place(
			pp.width, pp.height,
			lipgloss.Center, lipgloss.Center,
			box,
		)
	}
	return box
}

// renderRow renders one persona line.
func (pp *PersonaPicker) renderRow(p *model.Persona, isSelected bool, width int) string {
	marks := ""
	if p.ID == pp.activeID {
		marks += " *"
	}
	if p.IsDefault {
		marks += " (default)"
	}

	name := p.Name
	if p.Icon != "" {
		name = p.Icon + " " + name
	}

	descWidth := width - 2 - util.StringWidth(name) - len(marks) - 2
	if descWidth < 10 {
		descWidth = 10
	}
	desc := util.TruncateWidth(p.Description, descWidth)

	if isSelected {
		row := "> " + name + marks + "  " + desc
		return pp.theme.PickerItemSelected.Width(width).Render(row)
	}

	row := "  " + pp.theme.PickerTitle.Render(name)
	if p.ID == pp.activeID {
		row += pp.theme.SuccessStyle.Render(" *")
	}
	if p.IsDefault {
		row += pp.theme.PickerMeta.Render(" (default)")
	}
	return row + "  " + pp.theme.PickerMeta.Render(desc)
}
