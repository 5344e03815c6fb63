package menu

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/example/lbmenu/internal/configtree"
	"github.com/example/lbmenu/internal/dispatch"
	"github.com/example/lbmenu/internal/logging"
	"github.com/example/lbmenu/internal/symbols"
)

// TrayIconName is the icon symbol used for the launcher's own tray icon.
const TrayIconName = "main"

// Builder converts configuration trees into models. A zero Builder is usable:
// it resolves nothing through symbol tables and allocates UUID identifiers.
type Builder struct {
	Symbols symbols.Tables
	// IconDir anchors relative icon paths. Empty leaves them untouched.
	IconDir string
	// NewID allocates action identifiers. Defaults to uuid.NewString.
	NewID func() string
}

// Build converts root into a model and the registry of its actions using
// tables and random identifiers.
func Build(root *configtree.Node, tables symbols.Tables) (*Model, *Registry) {
	return Builder{Symbols: tables}.Build(root)
}

// Build walks root depth first and returns the model plus the action
// registry. A nil root yields an empty model.
func (b Builder) Build(root *configtree.Node) (*Model, *Registry) {
	reg := newRegistry()
	model := &Model{Entries: []Entry{}}
	if icon, ok := b.Symbols.LookupIcon(TrayIconName); ok {
		model.TrayIcon = b.iconPath(icon)
	}
	if root == nil {
		return model, reg
	}

	if root.Label != "" {
		model.Entries = append(model.Entries, b.entry(root, nil, reg))
	} else {
		model.Entries = b.entries(root.Children, nil, reg)
	}
	logging.Debugf("built menu model with %d top-level entries and %d actions", len(model.Entries), reg.Len())
	return model, reg
}

func (b Builder) entries(nodes []*configtree.Node, path []string, reg *Registry) []Entry {
	out := make([]Entry, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		out = append(out, b.entry(n, path, reg))
	}
	return out
}

func (b Builder) entry(n *configtree.Node, path []string, reg *Registry) Entry {
	if n.IsSeparator() {
		return Entry{Kind: Separator}
	}

	icon := b.icon(n.Icon)
	if n.IsCommand() {
		args := make([]string, 0, len(n.Args))
		for _, arg := range n.Args {
			args = append(args, b.Symbols.Expand(arg))
		}
		action := dispatch.Action{
			ID:         b.newID(),
			Label:      n.Label,
			Path:       joinPath(path, n.Label),
			Executable: b.Symbols.Command(n.Command),
			Args:       args,
		}
		reg.add(action)
		return Entry{Kind: Action, Label: n.Label, Icon: icon, ActionID: action.ID}
	}

	next := make([]string, len(path), len(path)+1)
	copy(next, path)
	next = append(next, n.Label)
	return Entry{
		Kind:     Submenu,
		Label:    n.Label,
		Icon:     icon,
		Children: b.entries(n.Children, next, reg),
	}
}

func (b Builder) icon(name string) string {
	if name == "" {
		return ""
	}
	return b.iconPath(b.Symbols.Icon(name))
}

func (b Builder) iconPath(resolved string) string {
	if resolved == "" || b.IconDir == "" || filepath.IsAbs(resolved) {
		return resolved
	}
	return filepath.Join(b.IconDir, resolved)
}

func (b Builder) newID() string {
	if b.NewID != nil {
		return b.NewID()
	}
	return uuid.NewString()
}

func joinPath(path []string, label string) string {
	parts := make([]string, 0, len(path)+1)
	parts = append(parts, path...)
	parts = append(parts, label)
	return strings.Join(parts, "/")
}
