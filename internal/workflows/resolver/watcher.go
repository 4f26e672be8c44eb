package resolver

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/unreal-companion/unreal-companion/internal/log"
)

// Watcher invalidates the resolver's step-content cache when files under any
// scope root change. Long-running callers (a host process keeping a session
// open across edits) attach one so stale step content never survives an
// on-disk edit; one-shot CLI invocations don't need it.
type Watcher struct {
	fw       *fsnotify.Watcher
	resolver *Resolver
	done     chan struct{}
}

// NewWatcher starts watching the given scope roots (and their existing
// subdirectories) for the resolver. Roots that don't exist yet are skipped.
func NewWatcher(r *Resolver, roots []ScopeRoot) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{fw: fw, resolver: r, done: make(chan struct{})}
	for _, root := range roots {
		w.addTree(root.Path)
	}

	go w.loop()
	return w, nil
}

// Close stops the watcher and releases its filesystem handles.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	<-w.done
	return err
}

func (w *Watcher) addTree(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil //nolint:nilerr // unreadable subtrees are simply not watched
		}
		if addErr := w.fw.Add(path); addErr != nil {
			log.Debug(log.CatResolver, "not watching directory", "path", path, "error", addErr)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			log.Debug(log.CatResolver, "definition tree changed, flushing content cache", "path", event.Name, "op", event.Op.String())
			w.resolver.InvalidateContent()
			// New workflow folders need their own watch to catch step edits.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addTree(event.Name)
				}
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Warn(log.CatResolver, "definition watcher error", "error", err)
		}
	}
}
