package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/lbmenu/internal/dispatch"
	"github.com/example/lbmenu/internal/menu"
)

// Update handles events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case snapshotMsg:
		m.applySnapshot(menu.Snapshot(msg))
		return m, nil

	case dispatchedMsg:
		switch {
		case msg.err == nil:
			m.setStatus(fmt.Sprintf("Launched %s", msg.label), false)
		case errors.Is(msg.err, dispatch.ErrUnknownAction):
			m.setStatus("Menu was out of date; refreshing", true)
			if m.actions != nil {
				m.actions.RequestRefresh()
			}
		default:
			m.setStatus(msg.err.Error(), true)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Back):
		m.back()
	case key.Matches(msg, m.keys.Refresh):
		if m.actions != nil {
			m.actions.RequestRefresh()
		}
		m.setStatus("Refreshing…", false)
	case key.Matches(msg, m.keys.Enter):
		return m.activate()
	}
	return m, nil
}

func (m *Model) applySnapshot(snap menu.Snapshot) {
	m.snap = snap
	m.loaded = true
	// keep the open submenus that still exist
	for len(m.path) > 0 && m.entries() == nil && !m.snap.Model.Empty() {
		m.path = m.path[:len(m.path)-1]
		m.cursor = m.cursors[len(m.cursors)-1]
		m.cursors = m.cursors[:len(m.cursors)-1]
	}
	if m.snap.Model.Empty() {
		m.path, m.cursors = nil, nil
	}
	m.clampCursor()

	if snap.Err != nil {
		m.setStatus(fmt.Sprintf("Settings error: %v", snap.Err), true)
	} else if m.status == "Loading…" || m.status == "Refreshing…" {
		m.setStatus("", false)
	}
}

// move steps the cursor by delta, skipping separators.
func (m *Model) move(delta int) {
	entries := m.entries()
	for next := m.cursor + delta; next >= 0 && next < len(entries); next += delta {
		if entries[next].Kind != menu.Separator {
			m.cursor = next
			return
		}
	}
}

func (m *Model) back() {
	if len(m.path) == 0 {
		return
	}
	m.path = m.path[:len(m.path)-1]
	m.cursor = m.cursors[len(m.cursors)-1]
	m.cursors = m.cursors[:len(m.cursors)-1]
	m.clampCursor()
}

func (m Model) activate() (tea.Model, tea.Cmd) {
	entry, ok := m.selected()
	if !ok {
		return m, nil
	}
	switch entry.Kind {
	case menu.Submenu:
		if entry.Inert() {
			m.setStatus(fmt.Sprintf("%s is empty", entry.Label), false)
			return m, nil
		}
		m.path = append(append([]string(nil), m.path...), entry.Label)
		m.cursors = append(append([]int(nil), m.cursors...), m.cursor)
		m.cursor = 0
		m.clampCursor()
		return m, nil
	case menu.Action:
		m.setStatus(fmt.Sprintf("Launching %s…", entry.Label), false)
		return m, dispatchCmd(m.actions, entry)
	}
	return m, nil
}

func dispatchCmd(actions menu.Actions, entry menu.Entry) tea.Cmd {
	return func() tea.Msg {
		if actions == nil {
			return dispatchedMsg{label: entry.Label, err: dispatch.ErrUnknownAction}
		}
		return dispatchedMsg{label: entry.Label, err: actions.Dispatch(entry.ActionID)}
	}
}

// clampCursor keeps the cursor on a selectable entry.
func (m *Model) clampCursor() {
	entries := m.entries()
	if len(entries) == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= len(entries) {
		m.cursor = len(entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if entries[m.cursor].Kind == menu.Separator {
		before := m.cursor
		m.move(1)
		if m.cursor == before {
			m.move(-1)
		}
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}
