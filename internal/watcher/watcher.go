package watcher

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeHandler is called with batches of changed and removed files
type ChangeHandler func(changed, removed []string)

// Filter selects the files and directories to watch
type Filter interface {
	Match(path string) bool
	SkipDir(path string) bool
}

// Watcher monitors matching files for changes using fsnotify
type Watcher struct {
	watcher   *fsnotify.Watcher
	rootPath  string
	filter    Filter
	handler   ChangeHandler
	debouncer *Debouncer
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new file watcher for the root path
func New(rootPath string, filter Filter, debounce time.Duration, handler ChangeHandler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:   fsw,
		rootPath:  rootPath,
		filter:    filter,
		handler:   handler,
		debouncer: NewDebouncer(debounce),
		done:      make(chan struct{}),
	}

	return w, nil
}

// Start begins watching for file changes
func (w *Watcher) Start() error {
	if err := w.addTree(w.rootPath, false); err != nil {
		return err
	}

	// Start the event loop
	go w.eventLoop()

	log.Printf("file watcher started for %s", w.rootPath)
	return nil
}

// addTree watches dir and every directory below it the filter keeps. With
// queue set, matching files found on the way are queued as created.
func (w *Watcher) addTree(dir string, queue bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		if d.IsDir() {
			if w.filter.SkipDir(path) {
				return filepath.SkipDir
			}
			if err := w.watcher.Add(path); err != nil {
				log.Printf("failed to watch %s: %v", path, err)
			}
			return nil
		}
		if queue && w.filter.Match(path) {
			w.debouncer.Add(path, fsnotify.Create)
		}
		return nil
	})
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		// Files can land in a new directory before it is watched
		if info, err := os.Lstat(path); err == nil && info.IsDir() {
			if err := w.addTree(path, true); err != nil {
				log.Printf("failed to watch new directory %s: %v", path, err)
			}
			w.flush()
			return
		}
	}

	if !w.filter.Match(path) {
		return
	}

	w.debouncer.Add(path, event.Op)
	w.flush()
}

// flush dispatches the pending changes once events settle
func (w *Watcher) flush() {
	w.debouncer.Flush(func(changed, removed []string) {
		log.Printf("file changes: %d changed, %d removed", len(changed), len(removed))
		w.handler(changed, removed)
	})
}

// Close stops the watcher
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.debouncer.Stop()
		err = w.watcher.Close()
	})
	return err
}
