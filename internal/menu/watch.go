package menu

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/example/lbmenu/internal/logging"
)

// watch reports debounced changes to the settings file. The returned channel
// is nil when watching is disabled or unavailable, which blocks forever in a
// select.
func (r *Runner) watch(ctx context.Context) <-chan struct{} {
	if r.opts.WatchPath == "" {
		return nil
	}
	watcher, err := newSettingsWatcher(r.opts.WatchPath)
	if err != nil {
		log.Printf("settings watcher disabled: %v", err)
		return nil
	}

	out := make(chan struct{}, 1)
	go watchSettings(ctx, watcher, filepath.Clean(r.opts.WatchPath), defaultWatchDebounce, out)
	return out
}

// newSettingsWatcher watches the directory holding path so editors that
// replace the file on save are still noticed.
func newSettingsWatcher(path string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch settings directory %s: %w", dir, err)
	}
	logging.Debugf("settings watcher initialised for %s", path)
	return watcher, nil
}

func watchSettings(ctx context.Context, watcher *fsnotify.Watcher, path string, debounce time.Duration, out chan<- struct{}) {
	defer watcher.Close()

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			logging.Debugf("settings event %s", event)
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("settings watcher error: %v", err)
		case <-timer.C:
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}
}
