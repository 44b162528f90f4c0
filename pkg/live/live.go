package live

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog"

	"github.com/cuemby/quill/pkg/index"
	"github.com/cuemby/quill/pkg/log"
	"github.com/cuemby/quill/pkg/metrics"
)

const (
	// DefaultDebounce is the quiet period for coalescing raw filesystem
	// notifications.
	DefaultDebounce = time.Second

	// DefaultQueueSize is the capacity of the indexing action queue.
	DefaultQueueSize = 1024
)

type actionKind int

const (
	actionAdd actionKind = iota
	actionAddDir
	actionRemove
	actionRemoveDir
)

type action struct {
	kind actionKind
	path string
}

// Options tunes the live indexer.
type Options struct {
	// Debounce is the quiet period for event coalescing. Zero means
	// DefaultDebounce.
	Debounce time.Duration

	// QueueSize is the indexing queue capacity. Zero means
	// DefaultQueueSize.
	QueueSize int
}

// LiveIndexer keeps an Indexer current with filesystem changes.
//
// It owns a debouncing watcher and a single indexing worker. Watch events
// and watch/unwatch requests are translated into actions on a FIFO queue;
// the worker applies them to the index one at a time, so the index only
// ever has one mutator. Queries go straight to the index's snapshots and
// never touch the queue.
type LiveIndexer struct {
	indexer *index.Indexer
	watcher *Watcher
	queue   chan action
	logger  zerolog.Logger

	workerDone chan struct{}
}

// Start creates a live indexer around the given Indexer with default
// options.
func Start(ix *index.Indexer) (*LiveIndexer, error) {
	return StartWithOptions(ix, Options{})
}

// StartWithOptions creates a live indexer with explicit tuning.
func StartWithOptions(ix *index.Indexer, opts Options) (*LiveIndexer, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}

	watcher, err := NewWatcher(opts.Debounce)
	if err != nil {
		return nil, fmt.Errorf("start watcher: %w", err)
	}

	l := &LiveIndexer{
		indexer:    ix,
		watcher:    watcher,
		queue:      make(chan action, opts.QueueSize),
		logger:     log.WithComponent("live-indexer"),
		workerDone: make(chan struct{}),
	}

	go l.runWorker()
	go l.runTranslator()

	return l, nil
}

// Watch builds an index for the given root and keeps it current with
// filesystem changes. The root may be a directory tree or a single file.
func (l *LiveIndexer) Watch(root string) error {
	canonical, err := index.Canonicalize(root)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", root, err)
	}

	l.logger.Info().Str("path", canonical).Msg("watching a new path")

	if err := l.watcher.Add(canonical); err != nil {
		return err
	}
	l.enqueue(action{kind: actionAddDir, path: canonical})
	metrics.WatchedRoots.Inc()

	return nil
}

// Unwatch stops watching the given root and removes it from the index.
func (l *LiveIndexer) Unwatch(root string) error {
	canonical, err := index.Canonicalize(root)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", root, err)
	}

	l.logger.Info().Str("path", canonical).Msg("unwatching a path")

	if err := l.watcher.Remove(canonical); err != nil {
		return err
	}
	l.enqueue(action{kind: actionRemoveDir, path: canonical})
	metrics.WatchedRoots.Dec()

	return nil
}

// Query returns the set of files the given term occurs in. See
// Indexer.Query.
func (l *LiveIndexer) Query(term string) mapset.Set[string] {
	return l.indexer.Query(term)
}

// Stop shuts the live indexer down. Queued actions are drained before Stop
// returns. Stop must not be called concurrently with Watch or Unwatch.
func (l *LiveIndexer) Stop() {
	if err := l.watcher.Close(); err != nil {
		l.logger.Warn().Err(err).Msg("failed to close watcher")
	}
	<-l.workerDone
}

func (l *LiveIndexer) enqueue(a action) {
	l.queue <- a
	metrics.QueueDepth.Set(float64(len(l.queue)))
}

// runTranslator turns debounced watcher events into queued actions. It owns
// the closing of the queue: once the watcher shuts down, the queue is
// closed and the worker drains what is left.
func (l *LiveIndexer) runTranslator() {
	for ev := range l.watcher.Events() {
		l.logger.Trace().Str("op", ev.Op.String()).Str("path", ev.Path).Msg("file event")

		switch ev.Op {
		case OpCreate:
			l.enqueue(action{kind: actionAdd, path: ev.Path})

		case OpWrite:
			l.enqueue(action{kind: actionRemove, path: ev.Path})
			l.enqueue(action{kind: actionAdd, path: ev.Path})

		case OpRemove:
			l.enqueue(action{kind: actionRemove, path: ev.Path})

		case OpRename:
			l.enqueue(action{kind: actionRemove, path: ev.Path})
			l.enqueue(action{kind: actionAdd, path: ev.NewPath})
		}
	}

	l.logger.Info().Msg("file watcher is shutting down")
	close(l.queue)
}

// runWorker is the single mutator of the index. Actions are applied
// strictly in enqueue order.
func (l *LiveIndexer) runWorker() {
	defer close(l.workerDone)

	for a := range l.queue {
		metrics.QueueDepth.Set(float64(len(l.queue)))

		switch a.kind {
		case actionAdd:
			l.add(a.path)
		case actionAddDir:
			l.addDir(a.path)
		case actionRemove:
			l.indexer.ClearFromIndex(a.path)
		case actionRemoveDir:
			l.removeDir(a.path)
		}
	}
}

// add indexes a single path. Directories are walked in full: a directory
// that appears under a watched root may already contain files created
// before its watch registration caught up.
func (l *LiveIndexer) add(path string) {
	info, err := os.Stat(path)
	if err != nil {
		// The path may have vanished between the event and now.
		l.logger.Warn().Err(err).Str("path", path).Msg("failed to stat path, skipping")
		return
	}

	if info.IsDir() {
		l.addDir(path)
		return
	}

	if err := l.indexer.IndexFile(path); err != nil {
		l.logger.Warn().Err(err).Str("path", path).Msg("failed to index a file")
	}
}

// addDir walks the tree under root and indexes every file. Per-file errors
// never abort the traversal.
func (l *LiveIndexer) addDir(root string) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			l.logger.Warn().Err(walkErr).Str("path", path).Msg("walk error, skipping entry")
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if err := l.indexer.IndexFile(path); err != nil {
			l.logger.Warn().Err(err).Str("path", path).Msg("failed to index a file")
		}
		return nil
	})
	if err != nil {
		l.logger.Warn().Err(err).Str("path", root).Msg("directory walk failed")
	}
}

// removeDir walks the tree under root and clears every file from the
// index.
func (l *LiveIndexer) removeDir(root string) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			l.logger.Warn().Err(walkErr).Str("path", path).Msg("walk error, skipping entry")
			return nil
		}
		if d.IsDir() {
			return nil
		}
		l.indexer.ClearFromIndex(path)
		return nil
	})
	if err != nil {
		l.logger.Warn().Err(err).Str("path", root).Msg("directory walk failed")
	}
}
