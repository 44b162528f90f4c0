/*
Package index implements Quill's inverted text index: the posting store and
the indexer that feeds and queries it.

# Architecture

	┌───────────────────── POSTING STORE ──────────────────────┐
	│                                                            │
	│  Insert(path, token)        Purge(path)       Get(term)   │
	│        │                        │                 │        │
	│  ┌─────▼────────────────────────▼──────┐   ┌──────▼─────┐ │
	│  │ fileWords: path → ordered term set  │   │  snapshot  │ │
	│  │ terms:     term → posting list      │◄──┤   reads    │ │
	│  │ pool:      interned path handles    │   └────────────┘ │
	│  └─────────────────────────────────────┘                  │
	│                                                            │
	│  both maps live in avl.Cells: persistent trees behind     │
	│  snapshot cells, so readers never block the writer        │
	└────────────────────────────────────────────────────────────┘

A posting list maps interned file paths to ordered sets of byte offsets.
The fileWords map is maintained purely so that purging a file touches only
the terms that file actually contains.

The two maps are not updated atomically with respect to each other. All
mutation flows through a single writer (the live maintainer's indexing
worker), and the only reader of fileWords is Purge on that same worker, so
the gap between the two updates is unobservable where it would matter. A
concurrent query can at worst see a term whose posting list is momentarily
empty, which reads as "no matches".

# Invariants

  - a term is present in the terms map iff its posting list is non-empty
  - every (term, path, offset) in terms is mirrored by term ∈ fileWords[path]
  - every path handle in either map originates from the shared intern pool
  - a snapshot observed by a reader never changes

# Usage

	ix := index.New(tokenize.NewWhitespaceFactory()).
		WithNormalizer(normalize.NFC).
		WithNormalizer(normalize.LowerCase{})

	if err := ix.IndexFile("notes/todo.txt"); err != nil {
		...
	}

	for _, path := range ix.Query("deadline").ToSlice() {
		fmt.Println(path)
	}
*/
package index
