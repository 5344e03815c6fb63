// Package tui renders menu snapshots as an interactive terminal menu.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/lbmenu/internal/menu"
)

// Model holds the terminal menu state.
type Model struct {
	// Data
	snap    menu.Snapshot
	actions menu.Actions
	loaded  bool

	// Navigation: labels of the open submenus and the cursor per level.
	path    []string
	cursors []int
	cursor  int

	// Feedback
	status    string
	statusErr bool

	// Components
	keys   KeyMap
	help   help.Model
	width  int
	height int
}

// snapshotMsg delivers a new snapshot from the runner.
type snapshotMsg menu.Snapshot

// dispatchedMsg reports the outcome of a launch.
type dispatchedMsg struct {
	label string
	err   error
}

// NewModel returns the initial state.
func NewModel(actions menu.Actions) Model {
	return Model{
		actions: actions,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		status:  "Loading…",
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// entries returns the entries of the submenu currently shown.
func (m Model) entries() []menu.Entry {
	if m.snap.Model == nil {
		return nil
	}
	current := m.snap.Model.Entries
	for _, label := range m.path {
		next, ok := findSubmenu(current, label)
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

func findSubmenu(entries []menu.Entry, label string) ([]menu.Entry, bool) {
	for _, e := range entries {
		if e.Kind == menu.Submenu && e.Label == label {
			return e.Children, true
		}
	}
	return nil, false
}

// selected returns the entry under the cursor.
func (m Model) selected() (menu.Entry, bool) {
	entries := m.entries()
	if m.cursor < 0 || m.cursor >= len(entries) {
		return menu.Entry{}, false
	}
	return entries[m.cursor], true
}
