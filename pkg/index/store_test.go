package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/quill/pkg/tokenize"
)

func pathsOf(list PostingList) []string {
	var paths []string
	for it := list.Iter(); ; {
		p, _, ok := it.Next()
		if !ok {
			return paths
		}
		paths = append(paths, p.String())
	}
}

func offsetsOf(list PostingList, path string) []uint64 {
	for it := list.Iter(); ; {
		p, set, ok := it.Next()
		if !ok {
			return nil
		}
		if p.String() != path {
			continue
		}

		var offsets []uint64
		for sit := set.Iter(); ; {
			off, _, ok := sit.Next()
			if !ok {
				return offsets
			}
			offsets = append(offsets, off)
		}
	}
}

func TestStoreInsertThenGet(t *testing.T) {
	store := NewStore()

	store.Insert("/a.txt", tokenize.Token{Value: "cat", Offset: 0})
	store.Insert("/a.txt", tokenize.Token{Value: "cat", Offset: 10})
	store.Insert("/b.txt", tokenize.Token{Value: "cat", Offset: 4})

	list, ok := store.Get("cat")
	require.True(t, ok)

	assert.Equal(t, []string{"/a.txt", "/b.txt"}, pathsOf(list))
	assert.Equal(t, []uint64{0, 10}, offsetsOf(list, "/a.txt"))
	assert.Equal(t, []uint64{4}, offsetsOf(list, "/b.txt"))
}

func TestStoreGetUnknownTerm(t *testing.T) {
	store := NewStore()

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestStoreDuplicateOffsetsCollapse(t *testing.T) {
	store := NewStore()

	store.Insert("/a.txt", tokenize.Token{Value: "cat", Offset: 3})
	store.Insert("/a.txt", tokenize.Token{Value: "cat", Offset: 3})

	list, ok := store.Get("cat")
	require.True(t, ok)
	assert.Equal(t, []uint64{3}, offsetsOf(list, "/a.txt"))
}

func TestStorePurgeRemovesOnlyThatFile(t *testing.T) {
	store := NewStore()

	store.Insert("/a.txt", tokenize.Token{Value: "cat", Offset: 0})
	store.Insert("/a.txt", tokenize.Token{Value: "dog", Offset: 4})
	store.Insert("/b.txt", tokenize.Token{Value: "cat", Offset: 0})

	store.Purge("/a.txt")

	list, ok := store.Get("cat")
	require.True(t, ok)
	assert.Equal(t, []string{"/b.txt"}, pathsOf(list))

	// "dog" occurred only in the purged file; the term must be gone, not
	// present with an empty posting list.
	_, ok = store.Get("dog")
	assert.False(t, ok)
}

func TestStorePurgeIsIdempotent(t *testing.T) {
	store := NewStore()

	store.Insert("/a.txt", tokenize.Token{Value: "cat", Offset: 0})

	store.Purge("/a.txt")
	store.Purge("/a.txt")

	_, ok := store.Get("cat")
	assert.False(t, ok)
}

func TestStorePurgeUnknownPathIsNoop(t *testing.T) {
	store := NewStore()

	store.Insert("/a.txt", tokenize.Token{Value: "cat", Offset: 0})
	store.Purge("/never-indexed.txt")

	_, ok := store.Get("cat")
	assert.True(t, ok)
}

func TestStoreReinsertAfterPurge(t *testing.T) {
	store := NewStore()

	store.Insert("/c.txt", tokenize.Token{Value: "alpha", Offset: 0})
	store.Purge("/c.txt")
	store.Insert("/c.txt", tokenize.Token{Value: "beta", Offset: 0})

	_, ok := store.Get("alpha")
	assert.False(t, ok)

	list, ok := store.Get("beta")
	require.True(t, ok)
	assert.Equal(t, []string{"/c.txt"}, pathsOf(list))
}

// Posting-store equivalence: after an arbitrary interleaving of inserts and
// purges, Get(term) must return exactly the paths whose surviving tokens
// include the term.
func TestStoreMatchesReferenceModel(t *testing.T) {
	store := NewStore()
	model := make(map[string]map[string]bool) // term → path set

	insert := func(path, term string, offset uint64) {
		store.Insert(path, tokenize.Token{Value: term, Offset: offset})
		if model[term] == nil {
			model[term] = make(map[string]bool)
		}
		model[term][path] = true
	}
	purge := func(path string) {
		store.Purge(path)
		for _, paths := range model {
			delete(paths, path)
		}
	}

	insert("/a", "x", 0)
	insert("/a", "y", 2)
	insert("/b", "x", 0)
	insert("/c", "z", 0)
	purge("/a")
	insert("/a", "z", 5)
	purge("/b")
	insert("/b", "y", 1)
	purge("/missing")

	for term, want := range model {
		list, ok := store.Get(term)
		if len(want) == 0 {
			assert.False(t, ok, "term %q should be absent", term)
			continue
		}
		require.True(t, ok, "term %q should be present", term)

		got := make(map[string]bool)
		for _, p := range pathsOf(list) {
			got[p] = true
		}
		assert.Equal(t, want, got, "term %q", term)
	}
}

func TestStoreSnapshotUnaffectedByLaterMutation(t *testing.T) {
	store := NewStore()

	store.Insert("/a.txt", tokenize.Token{Value: "cat", Offset: 0})

	list, ok := store.Get("cat")
	require.True(t, ok)

	store.Purge("/a.txt")

	// The previously taken snapshot still sees the posting.
	assert.Equal(t, []string{"/a.txt"}, pathsOf(list))
}
