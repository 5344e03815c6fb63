package tui

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/lbmenu/internal/configtree"
	"github.com/example/lbmenu/internal/dispatch"
	"github.com/example/lbmenu/internal/menu"
)

type fakeActions struct {
	mu         sync.Mutex
	dispatched []string
	refreshes  int
	err        error
}

func (f *fakeActions) Dispatch(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, id)
	return f.err
}

func (f *fakeActions) RequestRefresh() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
}

func testSnapshot() menu.Snapshot {
	n := 0
	model, reg := menu.Builder{NewID: func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}}.Build(&configtree.Node{Children: []*configtree.Node{
		{Label: "Apps", Children: []*configtree.Node{
			{Label: "Shell", Command: "/bin/sh"},
			{Label: "separator"},
			{Label: "Editor", Command: "/usr/bin/vim"},
		}},
		{Label: "separator"},
		{Label: "Top", Command: "/bin/true"},
		{Label: "Empty"},
	}})
	return menu.Snapshot{Model: model, Actions: reg}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNavigationSkipsSeparatorsAndOpensSubmenus(t *testing.T) {
	actions := &fakeActions{}
	m, _ := send(t, NewModel(actions), snapshotMsg(testSnapshot()))

	if e, _ := m.selected(); e.Label != "Apps" {
		t.Fatalf("expected cursor on Apps, got %q", e.Label)
	}

	m, _ = send(t, m, keyRunes("j"))
	if e, _ := m.selected(); e.Label != "Top" {
		t.Fatalf("expected separator to be skipped, got %q", e.Label)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.path) != 1 || m.path[0] != "Apps" {
		t.Fatalf("expected to be inside Apps, path=%v", m.path)
	}
	if !strings.Contains(m.View(), "Apps") {
		t.Fatalf("breadcrumb missing from view")
	}

	m, _ = send(t, m, keyRunes("j"))
	if e, _ := m.selected(); e.Label != "Editor" {
		t.Fatalf("expected Editor, got %q", e.Label)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if len(m.path) != 0 {
		t.Fatalf("expected to be back at the top level")
	}
	if e, _ := m.selected(); e.Label != "Apps" {
		t.Fatalf("expected cursor restored on Apps, got %q", e.Label)
	}
}

func TestEnterDispatchesAction(t *testing.T) {
	actions := &fakeActions{}
	m, _ := send(t, NewModel(actions), snapshotMsg(testSnapshot()))
	m, _ = send(t, m, keyRunes("j"))

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected a dispatch command")
	}
	m, _ = send(t, m, cmd())

	if len(actions.dispatched) != 1 {
		t.Fatalf("expected one dispatch, got %v", actions.dispatched)
	}
	action, ok := m.snap.Actions.Lookup(actions.dispatched[0])
	if !ok || action.Label != "Top" {
		t.Fatalf("dispatched wrong action: %+v", action)
	}
	if m.statusErr || !strings.Contains(m.status, "Launched Top") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestDispatchErrorsAreShown(t *testing.T) {
	actions := &fakeActions{err: &dispatch.LaunchError{Action: dispatch.Action{Label: "Top", Executable: "/bin/true"}, Err: errors.New("permission denied")}}
	m, _ := send(t, NewModel(actions), snapshotMsg(testSnapshot()))
	m, _ = send(t, m, keyRunes("j"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = send(t, m, cmd())

	if !m.statusErr || !strings.Contains(m.status, "permission denied") {
		t.Fatalf("expected launch error in status, got %q", m.status)
	}

	actions.err = fmt.Errorf("%w: id-9", dispatch.ErrUnknownAction)
	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = send(t, m, cmd())
	if actions.refreshes != 1 {
		t.Fatalf("stale identifier should trigger a refresh, got %d", actions.refreshes)
	}
}

func TestInertSubmenuDoesNotOpen(t *testing.T) {
	m, _ := send(t, NewModel(&fakeActions{}), snapshotMsg(testSnapshot()))
	m, _ = send(t, m, keyRunes("j"))
	m, _ = send(t, m, keyRunes("j"))
	if e, _ := m.selected(); e.Label != "Empty" {
		t.Fatalf("expected Empty, got %q", e.Label)
	}

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || len(m.path) != 0 {
		t.Fatalf("inert submenu must not open or dispatch")
	}
}

func TestRefreshAndQuitKeys(t *testing.T) {
	actions := &fakeActions{}
	m, _ := send(t, NewModel(actions), snapshotMsg(testSnapshot()))

	m, _ = send(t, m, keyRunes("r"))
	if actions.refreshes != 1 {
		t.Fatalf("expected a refresh request")
	}

	_, cmd := send(t, m, keyRunes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestNewSnapshotKeepsOpenSubmenuWhenPresent(t *testing.T) {
	m, _ := send(t, NewModel(&fakeActions{}), snapshotMsg(testSnapshot()))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = send(t, m, snapshotMsg(testSnapshot()))
	if len(m.path) != 1 {
		t.Fatalf("submenu should stay open, path=%v", m.path)
	}

	model, reg := menu.Builder{}.Build(&configtree.Node{Children: []*configtree.Node{{Label: "Other", Command: "/bin/true"}}})
	m, _ = send(t, m, snapshotMsg(menu.Snapshot{Model: model, Actions: reg}))
	if len(m.path) != 0 {
		t.Fatalf("vanished submenu should close, path=%v", m.path)
	}
	if e, _ := m.selected(); e.Label != "Other" {
		t.Fatalf("expected cursor on Other, got %q", e.Label)
	}
}

func TestSettingsErrorShownInStatus(t *testing.T) {
	snap := menu.Snapshot{Model: &menu.Model{}, Err: errors.New("bad xml")}
	m, _ := send(t, NewModel(&fakeActions{}), snapshotMsg(snap))

	if !m.statusErr || !strings.Contains(m.View(), "bad xml") {
		t.Fatalf("expected settings error in view")
	}
	if !strings.Contains(m.View(), "No menu entries") {
		t.Fatalf("expected empty placeholder in view")
	}
}
