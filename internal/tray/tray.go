//go:build cgo || windows

package tray

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"

	"github.com/getlantern/systray"

	"github.com/example/lbmenu/internal/dispatch"
	"github.com/example/lbmenu/internal/logging"
	"github.com/example/lbmenu/internal/menu"
)

// Presenter renders snapshots as a systray menu.
type Presenter struct {
	opts Options

	mu       sync.Mutex
	entries  []trayEntry
	icon     []byte
	quitOnce sync.Once
}

type trayEntry struct {
	item   *systray.MenuItem
	cancel context.CancelFunc
}

// New constructs a tray Presenter.
func New(opts Options) *Presenter {
	if opts.Tooltip == "" {
		opts.Tooltip = defaultTooltip
	}
	return &Presenter{opts: opts}
}

// Run blocks until ctx is canceled or the user quits from the tray.
func (p *Presenter) Run(ctx context.Context, updates <-chan menu.Snapshot, actions menu.Actions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})

	go systray.Run(func() {
		p.setIcon(trayIcon(""))
		systray.SetTooltip(p.opts.Tooltip)
		go p.listen(ctx, cancel, updates, actions)
	}, func() {
		p.shutdown()
		close(done)
	})

	select {
	case <-ctx.Done():
		systray.Quit()
		<-done
		return nil
	case <-done:
		return nil
	}
}

func (p *Presenter) listen(ctx context.Context, quit context.CancelFunc, updates <-chan menu.Snapshot, actions menu.Actions) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				quit()
				return
			}
			p.render(ctx, quit, snap, actions)
		}
	}
}

func (p *Presenter) render(ctx context.Context, quit context.CancelFunc, snap menu.Snapshot, actions menu.Actions) {
	if snap.Model != nil {
		p.setIcon(trayIcon(snap.Model.TrayIcon))
	}

	p.mu.Lock()
	old := p.entries
	p.entries = nil
	p.mu.Unlock()

	// systray cannot remove items, so the previous generation is hidden
	for _, entry := range old {
		entry.cancel()
		if entry.item != nil {
			entry.item.Hide()
		}
	}

	icons := iconCache{}
	var entries []trayEntry
	for _, item := range layout(snap, p.opts) {
		entries = append(entries, p.addItem(ctx, quit, item, nil, icons, actions)...)
	}
	logging.Debugf("rendered tray menu with %d items", len(entries))

	p.mu.Lock()
	p.entries = entries
	p.mu.Unlock()
}

func (p *Presenter) addItem(ctx context.Context, quit context.CancelFunc, item planItem, parent *systray.MenuItem, icons iconCache, actions menu.Actions) []trayEntry {
	mi := makeMenuItem(parent, item)
	if icon := icons.get(item.Icon); len(icon) > 0 {
		mi.SetIcon(icon)
	}

	switch item.Kind {
	case itemDisabled:
		mi.Disable()
		return []trayEntry{{item: mi, cancel: func() {}}}
	case itemSubmenu:
		ctxItem, cancel := context.WithCancel(ctx)
		go onClick(ctxItem, mi.ClickedCh, func() {})
		entries := []trayEntry{{item: mi, cancel: cancel}}
		for _, child := range item.Children {
			entries = append(entries, p.addItem(ctx, quit, child, mi, icons, actions)...)
		}
		return entries
	}

	var handler func()
	switch item.Kind {
	case itemAction:
		id := item.ActionID
		handler = func() { go launch(actions, id) }
	case itemEditSettings:
		path := p.opts.SettingsPath
		handler = func() {
			if err := openPath(path); err != nil {
				log.Printf("unable to open settings: %v", err)
			}
		}
	case itemRefresh:
		handler = actions.RequestRefresh
	case itemQuit:
		handler = func() { p.quitOnce.Do(quit) }
	default:
		handler = func() {}
	}

	ctxItem, cancel := context.WithCancel(ctx)
	go onClick(ctxItem, mi.ClickedCh, handler)
	return []trayEntry{{item: mi, cancel: cancel}}
}

func launch(actions menu.Actions, id string) {
	err := actions.Dispatch(id)
	switch {
	case err == nil:
	case errors.Is(err, dispatch.ErrUnknownAction):
		log.Printf("menu entry is out of date, refreshing: %v", err)
		actions.RequestRefresh()
	default:
		log.Printf("launch failed: %v", err)
	}
}

func makeMenuItem(parent *systray.MenuItem, item planItem) *systray.MenuItem {
	if parent == nil {
		return systray.AddMenuItem(item.Label, item.Tooltip)
	}
	return parent.AddSubMenuItem(item.Label, item.Tooltip)
}

func onClick(ctx context.Context, ch <-chan struct{}, handler func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			handler()
		}
	}
}

func (p *Presenter) setIcon(icon []byte) {
	if len(icon) == 0 {
		return
	}
	p.mu.Lock()
	unchanged := bytes.Equal(p.icon, icon)
	p.icon = icon
	p.mu.Unlock()
	if !unchanged {
		setTrayIcon(icon)
	}
}

func (p *Presenter) shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, entry := range p.entries {
		entry.cancel()
	}
	p.entries = nil
}
