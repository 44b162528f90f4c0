/*
Package avl provides a persistent height-balanced ordered map and a snapshot
cell for sharing one between readers and a writer.

# Architecture

	┌─────────────────── SNAPSHOT CELL ────────────────────┐
	│                                                        │
	│  writers ──► writeMu ──► snapshot ► mutate ► install  │
	│                                         │              │
	│  readers ──► Snapshot() ◄── root ◄──────┘              │
	│                                                        │
	│  every version is an immutable Tree; versions share    │
	│  all subtrees the mutation did not touch               │
	└────────────────────────────────────────────────────────┘

Tree is the persistent map. Each Insert, Upsert, Update or Remove returns a
new logical tree that shares structure with the previous one; the node
storage is garbage collected once the last version referring to it is
dropped. All single-key operations are O(log n) in time and in newly
allocated nodes.

Cell wraps a Tree with interior mutability. Readers take snapshots without
blocking writers and vice versa; only the root pointer swap takes the write
lock. Mutators are additionally serialized by a dedicated mutex so that
read-modify-write updates cannot lose each other's effects.

# Usage

	terms := avl.NewCell(avl.NewOrdered[string, int]())

	terms.Upsert("cat", func(n int, ok bool) int { return n + 1 })

	snap := terms.Snapshot()
	for it := snap.Iter(); ; {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		fmt.Println(k, v)
	}

# Integration Points

This package is the storage substrate for:

  - pkg/index: the terms and file-words maps of the posting store
  - pkg/intern: not used directly; the intern pool keys its own map
*/
package avl
