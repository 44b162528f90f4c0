package index

import (
	"github.com/cuemby/quill/pkg/avl"
	"github.com/cuemby/quill/pkg/intern"
	"github.com/cuemby/quill/pkg/metrics"
	"github.com/cuemby/quill/pkg/tokenize"
)

// OffsetSet is an ordered set of byte offsets of one term within one file.
type OffsetSet = avl.Tree[uint64, struct{}]

// PostingList maps each file containing a term to the set of offsets the
// term occurs at. Lists are persistent: a snapshot handed to a reader never
// changes under it.
type PostingList = avl.Tree[*intern.Path, OffsetSet]

// TermSet is an ordered set of terms known to occur in one file. It exists
// to make purging a file proportional to that file's vocabulary instead of
// a scan over the whole index.
type TermSet = avl.Tree[string, struct{}]

// Store is the inverted index storage: a terms-to-postings map plus the
// reverse file-to-terms map that Purge relies on, both held in snapshot
// cells over one shared intern pool.
//
// All mutation is expected to come from a single writer, the indexing
// worker. Readers may snapshot either cell at any time from any goroutine.
type Store struct {
	pool      *intern.Pool
	terms     *avl.Cell[string, PostingList]
	fileWords *avl.Cell[*intern.Path, TermSet]
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		pool:      intern.NewPool(),
		terms:     avl.NewCell(avl.NewOrdered[string, PostingList]()),
		fileWords: avl.NewCell(avl.New[*intern.Path, TermSet](intern.Compare)),
	}
}

// Get returns the current posting list for the given term. The returned
// list is a snapshot the caller may traverse and retain independently of
// concurrent mutation.
func (s *Store) Get(term string) (PostingList, bool) {
	return s.terms.Snapshot().Get(term)
}

// Insert records one token occurrence for the given file.
//
// The two cells are updated one after the other; the pair is not atomic.
// That is tolerable because the only consumer of fileWords is Purge, which
// runs on the same single writer, so no reader can act on the gap.
func (s *Store) Insert(path string, t tokenize.Token) {
	ip := s.pool.Intern(path)

	s.fileWords.Upsert(ip, func(set TermSet, ok bool) TermSet {
		if !ok {
			set = avl.NewOrdered[string, struct{}]()
		}
		return set.Insert(t.Value, struct{}{})
	})

	s.terms.Upsert(t.Value, func(list PostingList, ok bool) PostingList {
		if !ok {
			list = avl.New[*intern.Path, OffsetSet](intern.Compare)
		}
		return list.Upsert(ip, func(offsets OffsetSet, ok bool) OffsetSet {
			if !ok {
				offsets = avl.NewOrdered[uint64, struct{}]()
			}
			return offsets.Insert(t.Offset, struct{}{})
		})
	})

	metrics.IndexTerms.Set(float64(s.terms.Snapshot().Len()))
}

// Purge removes every posting that refers to the given file. Purging a file
// the store has never seen is a no-op.
func (s *Store) Purge(path string) {
	ip := s.pool.Intern(path)

	set, ok := s.fileWords.Snapshot().Get(ip)
	if !ok {
		return
	}

	s.fileWords.Remove(ip)

	for it := set.Iter(); ; {
		term, _, ok := it.Next()
		if !ok {
			break
		}

		s.terms.Update(term, func(list PostingList) PostingList {
			return list.Remove(ip)
		})

		// Terms with no postings left are dropped entirely, so an indexed
		// term is always backed by at least one file.
		if list, ok := s.terms.Snapshot().Get(term); ok && list.Len() == 0 {
			s.terms.Remove(term)
		}
	}

	metrics.IndexTerms.Set(float64(s.terms.Snapshot().Len()))
}
