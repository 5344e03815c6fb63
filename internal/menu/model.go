// Package menu turns a parsed configuration tree into a renderable menu model
// and keeps the current model for a running launcher session.
package menu

// EntryKind classifies a model entry.
type EntryKind int

const (
	Separator EntryKind = iota
	Submenu
	Action
)

func (k EntryKind) String() string {
	switch k {
	case Separator:
		return "separator"
	case Submenu:
		return "submenu"
	case Action:
		return "action"
	default:
		return "unknown"
	}
}

// Entry is one rendered element of the menu. ActionID is only set for Action
// entries and Children only for Submenu entries.
type Entry struct {
	Kind     EntryKind `json:"kind"`
	Label    string    `json:"label,omitempty"`
	Icon     string    `json:"icon,omitempty"`
	ActionID string    `json:"actionId,omitempty"`
	Children []Entry   `json:"children,omitempty"`
}

// Inert reports whether the entry is a submenu with nothing inside.
func (e Entry) Inert() bool {
	return e.Kind == Submenu && len(e.Children) == 0
}

// Model is the ordered, immutable result of a build.
type Model struct {
	Entries  []Entry `json:"entries"`
	TrayIcon string  `json:"trayIcon,omitempty"`
}

// Empty reports whether the model has no entries.
func (m *Model) Empty() bool {
	return m == nil || len(m.Entries) == 0
}

// Walk visits every entry depth first in display order. The path holds the
// labels of the enclosing submenus.
func (m *Model) Walk(fn func(path []string, e Entry)) {
	if m == nil {
		return
	}
	walkEntries(nil, m.Entries, fn)
}

func walkEntries(path []string, entries []Entry, fn func([]string, Entry)) {
	for _, e := range entries {
		fn(path, e)
		if e.Kind == Submenu && len(e.Children) > 0 {
			next := make([]string, len(path), len(path)+1)
			copy(next, path)
			walkEntries(append(next, e.Label), e.Children, fn)
		}
	}
}
