package menu

import (
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/example/lbmenu/internal/configtree"
	"github.com/example/lbmenu/internal/symbols"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func parseJSON(t *testing.T, input string) *configtree.Document {
	t.Helper()
	doc, err := configtree.Parse([]byte(input), configtree.FormatJSON)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return doc
}

func TestBuildResolvesCommandThroughSymbolTable(t *testing.T) {
	doc := parseJSON(t, `{"items":[{"label":"Shell","command":"term","command-args":["-e","bash"]}], "commands":{"term":"/usr/bin/xterm"}}`)

	model, reg := Builder{Symbols: doc.Symbols, NewID: sequentialIDs()}.Build(doc.Root)

	if len(model.Entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(model.Entries))
	}
	entry := model.Entries[0]
	if entry.Kind != Action || entry.Label != "Shell" || entry.ActionID != "id-1" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	action, ok := reg.Lookup(entry.ActionID)
	if !ok {
		t.Fatalf("action %s not registered", entry.ActionID)
	}
	if action.Executable != "/usr/bin/xterm" {
		t.Fatalf("unexpected executable %q", action.Executable)
	}
	if !reflect.DeepEqual(action.Args, []string{"-e", "bash"}) {
		t.Fatalf("unexpected args %#v", action.Args)
	}
}

func TestBuildLabeledRootWithSeparator(t *testing.T) {
	doc := parseJSON(t, `{"label":"Apps","items":[{"label":"separator"},{"label":"Editor","command":"/usr/bin/vim"}]}`)

	model, reg := Builder{Symbols: doc.Symbols, NewID: sequentialIDs()}.Build(doc.Root)

	if len(model.Entries) != 1 {
		t.Fatalf("expected one top-level entry, got %d", len(model.Entries))
	}
	apps := model.Entries[0]
	if apps.Kind != Submenu || apps.Label != "Apps" || len(apps.Children) != 2 {
		t.Fatalf("unexpected submenu: %+v", apps)
	}
	if apps.Children[0].Kind != Separator {
		t.Fatalf("expected separator first, got %+v", apps.Children[0])
	}
	editor := apps.Children[1]
	if editor.Kind != Action || editor.Label != "Editor" {
		t.Fatalf("unexpected editor entry: %+v", editor)
	}
	action, _ := reg.Lookup(editor.ActionID)
	if action.Executable != "/usr/bin/vim" || len(action.Args) != 0 {
		t.Fatalf("unexpected action: %+v", action)
	}
	if action.Path != "Apps/Editor" {
		t.Fatalf("unexpected path %q", action.Path)
	}
}

func TestBuildSubstitutionShapes(t *testing.T) {
	tables := symbols.New(nil, map[string]string{"run": "/bin/echo %(x)s"}, map[string]string{"x": "hi"})

	tests := []struct {
		name     string
		node     *configtree.Node
		wantExec string
		wantArgs []string
	}{
		{
			name:     "single template string",
			node:     &configtree.Node{Label: "Run", Command: "run"},
			wantExec: "/bin/echo hi",
			wantArgs: []string{},
		},
		{
			name:     "separate args",
			node:     &configtree.Node{Label: "Echo", Command: "/bin/echo", Args: []string{"%(x)s", "a b", "%(missing)s"}},
			wantExec: "/bin/echo",
			wantArgs: []string{"hi", "a b", "%(missing)s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := &configtree.Node{Children: []*configtree.Node{tt.node}}
			model, reg := Builder{Symbols: tables, NewID: sequentialIDs()}.Build(root)
			action, ok := reg.Lookup(model.Entries[0].ActionID)
			if !ok {
				t.Fatalf("action not registered")
			}
			if action.Executable != tt.wantExec {
				t.Fatalf("executable = %q, want %q", action.Executable, tt.wantExec)
			}
			if !reflect.DeepEqual(action.Args, tt.wantArgs) {
				t.Fatalf("args = %#v, want %#v", action.Args, tt.wantArgs)
			}
		})
	}
}

func TestBuildSeparatorIgnoresChildren(t *testing.T) {
	root := &configtree.Node{Children: []*configtree.Node{
		{Label: "separator", Command: "/bin/true", Children: []*configtree.Node{{Label: "Hidden", Command: "/bin/false"}}},
	}}

	model, reg := Builder{NewID: sequentialIDs()}.Build(root)

	if len(model.Entries) != 1 || model.Entries[0].Kind != Separator {
		t.Fatalf("expected a single separator, got %+v", model.Entries)
	}
	if len(model.Entries[0].Children) != 0 {
		t.Fatalf("separator must not carry children")
	}
	if reg.Len() != 0 {
		t.Fatalf("expected no actions, got %d", reg.Len())
	}
}

func TestBuildInertLeafBecomesEmptySubmenu(t *testing.T) {
	root := &configtree.Node{Children: []*configtree.Node{{Label: "Nothing here"}}}

	model, reg := Build(root, symbols.New(nil, nil, nil))

	if len(model.Entries) != 1 {
		t.Fatalf("inert leaf must be preserved, got %d entries", len(model.Entries))
	}
	entry := model.Entries[0]
	if entry.Kind != Submenu || !entry.Inert() {
		t.Fatalf("expected inert submenu, got %+v", entry)
	}
	if reg.Len() != 0 {
		t.Fatalf("inert leaf must not register an action")
	}
}

func TestBuildNilRoot(t *testing.T) {
	model, reg := Builder{}.Build(nil)
	if !model.Empty() || reg.Len() != 0 {
		t.Fatalf("expected empty model, got %+v", model)
	}
}

func TestBuildIdentifiersFollowTraversalOrder(t *testing.T) {
	root := &configtree.Node{Children: []*configtree.Node{
		{Label: "A", Command: "/bin/a"},
		{Label: "Group", Children: []*configtree.Node{
			{Label: "B", Command: "/bin/b"},
			{Label: "C", Command: "/bin/c"},
		}},
		{Label: "D", Command: "/bin/d"},
	}}

	_, reg := Builder{NewID: sequentialIDs()}.Build(root)

	var got []string
	for _, action := range reg.Actions() {
		got = append(got, action.ID+"="+action.Label)
	}
	want := []string{"id-1=A", "id-2=B", "id-3=C", "id-4=D"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestBuildIsIdempotentApartFromIdentifiers(t *testing.T) {
	doc := parseJSON(t, `{"items":[
		{"label":"Apps","items":[{"label":"Shell","command":"/bin/sh"},{"label":"separator"}]},
		{"label":"Top","command":"/bin/true","args":["x"]}
	]}`)

	first, firstReg := Build(doc.Root, doc.Symbols)
	second, secondReg := Build(doc.Root, doc.Symbols)

	if firstReg.Len() != 2 || secondReg.Len() != 2 {
		t.Fatalf("expected 2 actions per build")
	}

	seen := make(map[string]bool)
	for _, a := range append(firstReg.Actions(), secondReg.Actions()...) {
		if seen[a.ID] {
			t.Fatalf("identifier %s reused", a.ID)
		}
		seen[a.ID] = true
	}

	if a, b := stripIDs(first.Entries), stripIDs(second.Entries); a != b {
		t.Fatalf("builds differ:\n%s\n%s", a, b)
	}
}

func stripIDs(entries []Entry) string {
	out := ""
	for _, e := range entries {
		out += fmt.Sprintf("(%s %q %q", e.Kind, e.Label, e.Icon)
		out += stripIDs(e.Children) + ")"
	}
	return out
}

func TestBuildActionCountMatchesCommandLeaves(t *testing.T) {
	root := &configtree.Node{Children: []*configtree.Node{
		{Label: "A", Command: "/bin/a", Children: []*configtree.Node{{Label: "ignored", Command: "/bin/x"}}},
		{Label: "separator"},
		{Label: "G", Children: []*configtree.Node{
			{Label: "B", Command: "/bin/b"},
			{Label: "Inert"},
			{Label: "H", Children: []*configtree.Node{{Label: "C", Command: "/bin/c"}}},
		}},
	}}

	model, reg := Build(root, symbols.Tables{})

	actionEntries := 0
	model.Walk(func(_ []string, e Entry) {
		if e.Kind == Action {
			actionEntries++
			if _, ok := reg.Lookup(e.ActionID); !ok {
				t.Fatalf("entry %s has unregistered id", e.Label)
			}
		}
	})
	if actionEntries != 3 || reg.Len() != 3 {
		t.Fatalf("expected 3 actions, got entries=%d registry=%d", actionEntries, reg.Len())
	}
}

func TestBuildResolvesIcons(t *testing.T) {
	tables := symbols.New(
		map[string]string{"main": "icons/main.png", "term": "%(base)s/term.png"},
		nil,
		map[string]string{"base": "/usr/share/icons"},
	)
	root := &configtree.Node{Children: []*configtree.Node{
		{Label: "Shell", Icon: "term", Command: "/bin/sh"},
		{Label: "Literal", Icon: "pics/x.png"},
		{Label: "None"},
	}}

	model, _ := Builder{Symbols: tables, IconDir: "/etc/lbmenu"}.Build(root)

	if want := filepath.Join("/etc/lbmenu", "icons/main.png"); model.TrayIcon != want {
		t.Fatalf("tray icon = %q, want %q", model.TrayIcon, want)
	}
	if got := model.Entries[0].Icon; got != "/usr/share/icons/term.png" {
		t.Fatalf("unexpected resolved icon %q", got)
	}
	if want := filepath.Join("/etc/lbmenu", "pics/x.png"); model.Entries[1].Icon != want {
		t.Fatalf("literal icon = %q, want %q", model.Entries[1].Icon, want)
	}
	if model.Entries[2].Icon != "" {
		t.Fatalf("absent icon must stay empty, got %q", model.Entries[2].Icon)
	}
}

func TestBuildWithoutMainIconLeavesTrayIconEmpty(t *testing.T) {
	model, _ := Builder{}.Build(&configtree.Node{})
	if model.TrayIcon != "" {
		t.Fatalf("expected no tray icon, got %q", model.TrayIcon)
	}
}
