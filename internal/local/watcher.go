package local

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/torfstack/revsync/internal/logging"
)

type WatchEvent struct {
	Path string
	Op   fsnotify.Op
}

// Watcher reports changes to a fixed set of files. It watches their parent
// directories, since editors often replace a file instead of writing to it.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan WatchEvent
	files   map[string]struct{}
}

func NewWatcher(paths ...string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: watcher,
		Events:  make(chan WatchEvent),
		files:   make(map[string]struct{}),
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("could not resolve path '%s': %w", p, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err = w.watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("add-dir: could not add directory to watcher: %w", err)
		}
		logging.Debugf("Added directory to watcher: %s", dir)
	}

	return w, nil
}

func (w *Watcher) Close() {
	if err := w.watcher.Close(); err != nil {
		logging.Infof("Error closing watcher: %s", err)
	}
}

// Run forwards events for the watched files until ctx is done. Events is
// closed when Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.Events)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if _, watched := w.files[filepath.Clean(event.Name)]; !watched {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}

			select {
			case w.Events <- WatchEvent{Path: event.Name, Op: event.Op}:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			logging.Infof("FSNotify Error: %v", err)
		}
	}
}
