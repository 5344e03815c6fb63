package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/example/lbmenu/internal/menu"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	breadcrumbStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81"))

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(lipgloss.Color("205"))

	unselectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(4)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))
)

// View renders the current submenu, status line and key help.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("lbmenu"))
	if len(m.path) > 0 {
		b.WriteString(" ")
		b.WriteString(breadcrumbStyle.Render(strings.Join(m.path, " › ")))
	}
	b.WriteString("\n\n")

	entries := m.entries()
	switch {
	case !m.loaded:
	case len(entries) == 0:
		b.WriteString(dimStyle.Render("    No menu entries"))
		b.WriteString("\n")
	default:
		for i, e := range entries {
			b.WriteString(m.renderEntry(e, i == m.cursor))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.status != "" {
		style := statusStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderEntry(e menu.Entry, selected bool) string {
	var label string
	switch e.Kind {
	case menu.Separator:
		return dimStyle.Render("    ────────")
	case menu.Submenu:
		label = e.Label + " ▸"
		if e.Inert() {
			if selected {
				return selectedItemStyle.Render("> " + dimStyle.Render(e.Label))
			}
			return unselectedItemStyle.Render(dimStyle.Render(e.Label))
		}
	default:
		label = e.Label
	}
	if selected {
		return selectedItemStyle.Render("> " + label)
	}
	return unselectedItemStyle.Render(label)
}
