// Package tray renders menu snapshots into the system tray.
package tray

import (
	"fmt"
	"unicode/utf8"

	"github.com/example/lbmenu/internal/menu"
)

type itemKind int

const (
	itemAction itemKind = iota
	itemSubmenu
	itemDisabled
	itemEditSettings
	itemRefresh
	itemQuit
)

const (
	separatorLabel  = "—"
	maxErrorLength  = 80
	emptyMenuLabel  = "No menu entries"
	editLabel       = "Edit settings"
	refreshLabel    = "Refresh"
	quitLabel       = "Quit"
	defaultTooltip  = "lbmenu"
	settingsErrText = "Settings error: %s"
)

// Options tunes the tray presenter.
type Options struct {
	Tooltip string
	// SettingsPath enables an entry opening the settings file.
	SettingsPath string
}

// planItem is one systray item to create. The plan is built without touching
// systray so it can be tested on any platform.
type planItem struct {
	Kind     itemKind
	Label    string
	Tooltip  string
	Icon     string
	ActionID string
	Children []planItem
}

func layout(snap menu.Snapshot, opts Options) []planItem {
	var items []planItem
	if snap.Err != nil {
		items = append(items, planItem{
			Kind:    itemDisabled,
			Label:   truncate(fmt.Sprintf(settingsErrText, snap.Err), maxErrorLength),
			Tooltip: snap.Err.Error(),
		})
	}

	if snap.Model.Empty() {
		items = append(items, planItem{Kind: itemDisabled, Label: emptyMenuLabel})
	} else {
		items = append(items, layoutEntries(snap.Model.Entries)...)
	}

	items = append(items, planItem{Kind: itemDisabled, Label: separatorLabel})
	if opts.SettingsPath != "" {
		items = append(items, planItem{Kind: itemEditSettings, Label: editLabel, Tooltip: opts.SettingsPath})
	}
	items = append(items,
		planItem{Kind: itemRefresh, Label: refreshLabel, Tooltip: "Reload the menu"},
		planItem{Kind: itemQuit, Label: quitLabel, Tooltip: "Exit the launcher"},
	)
	return items
}

func layoutEntries(entries []menu.Entry) []planItem {
	out := make([]planItem, 0, len(entries))
	for _, e := range entries {
		switch e.Kind {
		case menu.Separator:
			out = append(out, planItem{Kind: itemDisabled, Label: separatorLabel})
		case menu.Action:
			out = append(out, planItem{Kind: itemAction, Label: e.Label, Icon: e.Icon, ActionID: e.ActionID})
		case menu.Submenu:
			if e.Inert() {
				out = append(out, planItem{Kind: itemDisabled, Label: e.Label, Icon: e.Icon})
				continue
			}
			out = append(out, planItem{
				Kind:     itemSubmenu,
				Label:    e.Label,
				Icon:     e.Icon,
				Children: layoutEntries(e.Children),
			})
		}
	}
	return out
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
