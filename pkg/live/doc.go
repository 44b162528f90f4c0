/*
Package live keeps an index current with filesystem changes.

# Architecture

	┌──────────────────── LIVE MAINTENANCE ────────────────────┐
	│                                                            │
	│  fsnotify ──► Watcher (debounce, rename pairing)          │
	│                   │                                        │
	│                   ▼                                        │
	│            translator goroutine                            │
	│                   │   Create  → Add                        │
	│                   │   Write   → Remove; Add                │
	│                   │   Remove  → Remove                     │
	│                   │   Rename  → Remove(old); Add(new)      │
	│                   ▼                                        │
	│             action queue (FIFO)  ◄── Watch / Unwatch      │
	│                   │                                        │
	│                   ▼                                        │
	│          indexing worker (single mutator)                  │
	│                   │                                        │
	│                   ▼                                        │
	│               index.Indexer                                │
	│                                                            │
	│  queries bypass all of this and read index snapshots      │
	└────────────────────────────────────────────────────────────┘

All index mutation funnels through one worker goroutine, so the posting
store's two maps only ever have a single writer and actions apply strictly
in enqueue order. Per-file errors during directory walks are logged and
skipped; one unreadable file never poisons the rest of a tree.

Shutdown is driven by closing the watcher: its event channel closes, the
translator closes the queue, and the worker drains whatever is left before
exiting. Queued actions are never discarded.
*/
package live
