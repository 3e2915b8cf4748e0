package watcher

import (
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// pendingChange tracks a file change event
type pendingChange struct {
	op        fsnotify.Op
	timestamp time.Time
}

// Debouncer batches file change events to avoid redundant processing
type Debouncer struct {
	mu       sync.Mutex
	pending  map[string]*pendingChange
	interval time.Duration
	timer    *time.Timer
}

// NewDebouncer creates a debouncer that waits interval after the last event
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		pending:  make(map[string]*pendingChange),
		interval: interval,
	}
}

// Add records a file change event
func (d *Debouncer) Add(path string, op fsnotify.Op) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.pending[path]; ok {
		// The latest event decides whether the file still exists
		if op.Has(fsnotify.Write) || op.Has(fsnotify.Create) {
			existing.op &^= fsnotify.Remove | fsnotify.Rename
		}
		existing.op |= op
		existing.timestamp = time.Now()
	} else {
		d.pending[path] = &pendingChange{
			op:        op,
			timestamp: time.Now(),
		}
	}
}

// Flush processes pending changes after the debounce interval. Each call
// restarts the interval. Paths in each batch are sorted.
func (d *Debouncer) Flush(callback func(changed, removed []string)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Cancel any existing timer
	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		changed, removed := d.drainLocked()
		d.mu.Unlock()

		if len(changed) > 0 || len(removed) > 0 {
			callback(changed, removed)
		}
	})
}

// Stop cancels a pending flush
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) drainLocked() (changed, removed []string) {
	for path, change := range d.pending {
		if change.op.Has(fsnotify.Remove) || change.op.Has(fsnotify.Rename) {
			removed = append(removed, path)
		} else if change.op.Has(fsnotify.Write) || change.op.Has(fsnotify.Create) {
			changed = append(changed, path)
		}
	}

	// Clear pending changes
	d.pending = make(map[string]*pendingChange)

	sort.Strings(changed)
	sort.Strings(removed)
	return changed, removed
}
