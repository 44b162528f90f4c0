package live

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/cuemby/quill/pkg/log"
	"github.com/cuemby/quill/pkg/metrics"
)

// Op identifies the kind of a debounced filesystem event.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

// String returns the op name for logs and metrics labels.
func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event is a debounced filesystem event. For renames, Path is the old path
// and NewPath the one the file moved to.
type Event struct {
	Op      Op
	Path    string
	NewPath string
}

// Watcher layers recursive registration and debouncing on top of fsnotify.
//
// Raw notifications for the same path within the quiet interval collapse
// into a single event. A rename shows up in fsnotify as a rename
// notification on the old path plus a create on the new one; when a flush
// batch contains exactly one of each, they are paired into one rename
// event. Unpaired renames degrade to removes and unpaired creates stay
// creates, which drives the index to the same end state.
//
// Chmod-style notifications carry no content change and are dropped.
type Watcher struct {
	fs       *fsnotify.Watcher
	interval time.Duration
	events   chan Event
	logger   zerolog.Logger

	// pending is touched only by the run goroutine.
	pending map[string]*pendingEvent
}

type pendingEvent struct {
	created bool
	written bool
	removed bool
	renamed bool
	last    time.Time
}

// NewWatcher creates a watcher that coalesces raw notifications over the
// given quiet interval.
func NewWatcher(interval time.Duration) (*Watcher, error) {
	if interval <= 0 {
		interval = time.Second
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fs:       fsw,
		interval: interval,
		events:   make(chan Event, 64),
		logger:   log.WithComponent("watcher"),
		pending:  make(map[string]*pendingEvent),
	}

	go w.run()
	return w, nil
}

// Events returns the channel of debounced events. The channel is closed
// after Close, once all pending events have been flushed.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Add registers root and every directory below it with the watcher.
// Directories created later under a registered root are picked up
// automatically. Entries the walk cannot read are logged and skipped; a
// directory that fsnotify refuses to register (for example one without read
// permission) makes Add return that error.
func (w *Watcher) Add(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}

	if !info.IsDir() {
		if err := w.fs.Add(root); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
		return nil
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn().Err(walkErr).Str("path", path).Msg("skipping unreadable entry")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Remove unregisters root and every watched directory below it. Removing a
// root that is not watched returns the watcher's error.
func (w *Watcher) Remove(root string) error {
	if err := w.fs.Remove(root); err != nil {
		return fmt.Errorf("unwatch %s: %w", root, err)
	}

	prefix := root + string(filepath.Separator)
	for _, watched := range w.fs.WatchList() {
		if strings.HasPrefix(watched, prefix) {
			if err := w.fs.Remove(watched); err != nil {
				w.logger.Warn().Err(err).Str("path", watched).Msg("failed to unwatch subdirectory")
			}
		}
	}

	return nil
}

// Close shuts the watcher down. Pending events are flushed to the events
// channel before it is closed.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) run() {
	// Tick well below the interval so flushes happen promptly after the
	// quiet period elapses.
	tick := w.interval / 4
	if tick <= 0 {
		tick = w.interval
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	errors := w.fs.Errors
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				w.flush(time.Now(), true)
				close(w.events)
				return
			}
			w.observe(ev)

		case err, ok := <-errors:
			if !ok {
				errors = nil
				continue
			}
			w.logger.Error().Err(err).Msg("watcher sent an error")

		case now := <-ticker.C:
			w.flush(now, false)
		}
	}
}

func (w *Watcher) observe(ev fsnotify.Event) {
	interesting := ev.Op & (fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename)
	if interesting == 0 {
		// Chmod and friends; could be useful for additional robustness in
		// the future.
		return
	}

	p := w.pending[ev.Name]
	if p == nil {
		p = &pendingEvent{}
		w.pending[ev.Name] = p
	}

	if ev.Op&fsnotify.Create != 0 {
		p.created = true
		w.watchIfNewDir(ev.Name)
	}
	if ev.Op&fsnotify.Write != 0 {
		p.written = true
	}
	if ev.Op&fsnotify.Remove != 0 {
		p.removed = true
	}
	if ev.Op&fsnotify.Rename != 0 {
		p.renamed = true
	}
	p.last = time.Now()
}

// watchIfNewDir registers directories created under a watched root, since
// fsnotify registration is per-directory and not recursive.
func (w *Watcher) watchIfNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.Add(path); err != nil {
		w.logger.Warn().Err(err).Str("path", path).Msg("failed to watch new directory")
	}
}

// flush emits a debounced event for every pending path that has been quiet
// for at least the interval. With force set, everything pending is emitted.
func (w *Watcher) flush(now time.Time, force bool) {
	var expired []string
	for path, p := range w.pending {
		if force || now.Sub(p.last) >= w.interval {
			expired = append(expired, path)
		}
	}
	if len(expired) == 0 {
		return
	}
	sort.Strings(expired)

	var renames, creates []string
	var out []Event

	for _, path := range expired {
		p := w.pending[path]
		delete(w.pending, path)

		switch {
		case p.renamed:
			renames = append(renames, path)
		case p.created:
			creates = append(creates, path)
		case p.removed:
			out = append(out, Event{Op: OpRemove, Path: path})
		case p.written:
			out = append(out, Event{Op: OpWrite, Path: path})
		}
	}

	// Pair a lone rename source with a lone create into one rename event.
	if len(renames) == 1 && len(creates) == 1 {
		out = append(out, Event{Op: OpRename, Path: renames[0], NewPath: creates[0]})
		renames, creates = nil, nil
	}
	for _, path := range renames {
		out = append(out, Event{Op: OpRemove, Path: path})
	}
	for _, path := range creates {
		out = append(out, Event{Op: OpCreate, Path: path})
	}

	for _, ev := range out {
		metrics.WatcherEvents.WithLabelValues(ev.Op.String()).Inc()
		w.events <- ev
	}
}
