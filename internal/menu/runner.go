package menu

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/example/lbmenu/internal/configtree"
	"github.com/example/lbmenu/internal/dispatch"
	"github.com/example/lbmenu/internal/logging"
	"github.com/example/lbmenu/internal/symbols"
)

const (
	defaultReapInterval  = 30 * time.Second
	defaultWatchDebounce = 250 * time.Millisecond
)

// Source contributes an extra top-level node, such as discovered profiles.
// A nil node contributes nothing.
type Source func() (*configtree.Node, error)

// Options configures a Runner.
type Options struct {
	// Load reads the settings document. ErrConfigNotFound yields an empty menu.
	Load    func() (*configtree.Document, error)
	Sources []Source
	IconDir string
	// Vars supplies variable defaults; values from the settings win.
	Vars map[string]string
	// WatchPath is the settings file to watch for changes. Empty disables
	// watching.
	WatchPath    string
	ReapInterval time.Duration
	NewID        func() string
}

// Snapshot is one complete build. Snapshots are never modified after they
// are published, so readers may keep using one while a newer one replaces it.
type Snapshot struct {
	Model   *Model
	Actions *Registry
	// Err carries a recoverable settings error for display.
	Err    error
	Digest string
}

// Actions is what a presenter may ask of the runner.
type Actions interface {
	Dispatch(id string) error
	RequestRefresh()
}

// Presenter renders snapshots until ctx is canceled or the user quits.
type Presenter interface {
	Run(ctx context.Context, updates <-chan Snapshot, actions Actions) error
}

// Runner owns the current snapshot of a launcher session. It rebuilds the
// model on demand and when the settings file changes, and routes dispatch
// requests through the snapshot that is current at the time of the call.
type Runner struct {
	opts Options

	mu      sync.RWMutex
	current Snapshot

	refreshMu       sync.Mutex
	updates         chan Snapshot
	refreshRequests chan struct{}
	dispatcher      *dispatch.Dispatcher
}

// NewRunner constructs a Runner. Nothing is loaded until Refresh or Start.
func NewRunner(opts Options) *Runner {
	if opts.ReapInterval <= 0 {
		opts.ReapInterval = defaultReapInterval
	}
	r := &Runner{
		opts:            opts,
		current:         Snapshot{Model: &Model{Entries: []Entry{}}, Actions: newRegistry()},
		updates:         make(chan Snapshot, 1),
		refreshRequests: make(chan struct{}, 1),
	}
	r.dispatcher = dispatch.New(r)
	return r
}

// Start runs presenter against the runner's snapshot stream, performs the
// initial load and keeps the snapshot current. It blocks until ctx is
// canceled or the presenter returns.
func (r *Runner) Start(ctx context.Context, presenter Presenter) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logging.Debugf("menu runner initialising with reap interval %s", r.opts.ReapInterval)

	var presenterErr <-chan error
	if presenter != nil {
		ch := make(chan error, 1)
		presenterErr = ch
		go func() {
			ch <- presenter.Run(ctx, r.updates, r)
		}()
	}

	snap, changed := r.refresh()
	if !changed {
		r.publish(snap)
	}
	log.Printf("lbmenu loaded %d menu actions", snap.Actions.Len())

	events := r.watch(ctx)

	ticker := time.NewTicker(r.opts.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("lbmenu runner stopping")
			return ctx.Err()
		case <-ticker.C:
			if n := dispatch.Reap(); n > 0 {
				logging.Debugf("reaped %d finished child process(es)", n)
			}
		case <-r.refreshRequests:
			logging.Debugf("manual refresh requested")
			r.Refresh()
		case <-events:
			logging.Debugf("settings change detected")
			r.Refresh()
		case err := <-presenterErr:
			return err
		}
	}
}

// Current returns the snapshot in effect.
func (r *Runner) Current() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Lookup resolves id against the current snapshot.
func (r *Runner) Lookup(id string) (dispatch.Action, bool) {
	return r.Current().Actions.Lookup(id)
}

// Dispatch launches the action id of the current snapshot. An identifier
// from a replaced snapshot fails with dispatch.ErrUnknownAction.
func (r *Runner) Dispatch(id string) error {
	return r.dispatcher.Dispatch(id)
}

// RequestRefresh asks a running Start loop to rebuild. Requests coalesce.
func (r *Runner) RequestRefresh() {
	select {
	case r.refreshRequests <- struct{}{}:
	default:
	}
}

// Refresh rebuilds the snapshot from the settings and sources. When nothing
// structural changed the current snapshot, and so every identifier handed
// out from it, stays in effect.
func (r *Runner) Refresh() Snapshot {
	snap, _ := r.refresh()
	return snap
}

func (r *Runner) refresh() (Snapshot, bool) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	root, tables, loadErr := r.load()
	digest := hashInputs(root, tables, r.opts.IconDir, loadErr)

	r.mu.RLock()
	current := r.current
	r.mu.RUnlock()
	if digest != "" && digest == current.Digest {
		logging.Debugf("menu unchanged (digest=%s)", digest)
		return current, false
	}

	builder := Builder{Symbols: tables, IconDir: r.opts.IconDir, NewID: r.opts.NewID}
	model, reg := builder.Build(root)
	snap := Snapshot{Model: model, Actions: reg, Err: loadErr, Digest: digest}

	r.mu.Lock()
	r.current = snap
	r.mu.Unlock()

	logging.Debugf("published menu snapshot with %d actions (digest=%s)", reg.Len(), digest)
	r.publish(snap)
	return snap, true
}

func (r *Runner) load() (*configtree.Node, symbols.Tables, error) {
	var (
		root    *configtree.Node
		tables  = symbols.New(nil, nil, nil)
		loadErr error
	)

	if r.opts.Load != nil {
		doc, err := r.opts.Load()
		switch {
		case err == nil && doc != nil:
			root = doc.Root
			tables = doc.Symbols
		case errors.Is(err, configtree.ErrConfigNotFound):
			logging.Debugf("no settings file found; starting with an empty menu")
		case err != nil:
			log.Printf("settings could not be loaded: %v", err)
			loadErr = err
		}
	}
	tables = tables.WithVars(r.opts.Vars)

	var extra []*configtree.Node
	for _, source := range r.opts.Sources {
		if source == nil {
			continue
		}
		node, err := source()
		if err != nil {
			log.Printf("menu source failed: %v", err)
			continue
		}
		if node != nil {
			extra = append(extra, node)
		}
	}
	return mergeSources(root, extra), tables, loadErr
}

// mergeSources appends extra below the top level of root, separated from the
// configured entries.
func mergeSources(root *configtree.Node, extra []*configtree.Node) *configtree.Node {
	if len(extra) == 0 {
		return root
	}

	merged := &configtree.Node{}
	switch {
	case root == nil:
	case root.Label != "":
		merged.Children = append(merged.Children, root)
	default:
		merged.Children = append(merged.Children, root.Children...)
	}
	if len(merged.Children) > 0 {
		merged.Children = append(merged.Children, &configtree.Node{Label: configtree.SeparatorLabel})
	}
	merged.Children = append(merged.Children, extra...)
	return merged
}

func (r *Runner) publish(snap Snapshot) {
	select {
	case r.updates <- snap:
	default:
		select {
		case <-r.updates:
		default:
		}
		select {
		case r.updates <- snap:
		default:
		}
	}
}

type digestInput struct {
	Root    *configtree.Node
	Symbols symbols.Tables
	IconDir string
	Err     string
}

func hashInputs(root *configtree.Node, tables symbols.Tables, iconDir string, err error) string {
	in := digestInput{Root: root, Symbols: tables, IconDir: iconDir}
	if err != nil {
		in.Err = err.Error()
	}
	payload, mErr := json.Marshal(in)
	if mErr != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
