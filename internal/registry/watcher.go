package registry

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/flowdeck/flowdeck/internal/log"
)

// watchDebounce coalesces bursts of write events (WAL checkpoints produce
// several per commit) into a single cache flush.
const watchDebounce = 250 * time.Millisecond

// StoreWatcher flushes the registry caches when another process writes the
// shared store file. It is the optional cross-process invalidation channel;
// without it, a registry instance never observes external writes until its
// cache entries expire.
type StoreWatcher struct {
	svc     *Service
	watcher *fsnotify.Watcher
	path    string
	done    chan struct{}
}

// NewStoreWatcher watches the database file at path on behalf of svc.
// The parent directory is watched rather than the file itself so that
// atomic replace-style writes are still observed.
func NewStoreWatcher(svc *Service, path string) (*StoreWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	w := &StoreWatcher{
		svc:     svc,
		watcher: watcher,
		path:    filepath.Clean(path),
		done:    make(chan struct{}),
	}
	go w.run()

	log.Info(log.CatWatcher, "store watcher started", "path", w.path)
	return w, nil
}

func (w *StoreWatcher) run() {
	var debounce *time.Timer
	flush := func() {
		w.svc.ClearCache(context.Background())
		log.Debug(log.CatWatcher, "caches flushed after external store write")
	}

	for {
		select {
		case <-w.done:
			if debounce != nil {
				debounce.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.matches(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, flush)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "store watcher error", err)
		}
	}
}

// matches reports whether an event path refers to the store file or one of
// its WAL sidecars.
func (w *StoreWatcher) matches(name string) bool {
	clean := filepath.Clean(name)
	return clean == w.path || strings.HasPrefix(clean, w.path+"-")
}

// Close stops the watcher.
func (w *StoreWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
