package avl

import "cmp"

// Tree is a persistent height-balanced binary search tree.
//
// Every mutating operation returns a new logical tree; subtrees untouched by
// the mutation are shared between the old and the new version, so a mutation
// costs O(log n) allocations along the affected path. A Tree value held by a
// reader is immutable forever and safe to traverse from any goroutine.
//
// The zero Tree is not usable; construct one with New or NewOrdered.
type Tree[K, V any] struct {
	compare func(a, b K) int
	root    *node[K, V]
}

// New returns an empty tree ordered by the given comparator. The comparator
// must return a negative number when a sorts before b, zero when they are
// equal and a positive number otherwise.
func New[K, V any](compare func(a, b K) int) Tree[K, V] {
	return Tree[K, V]{compare: compare}
}

// NewOrdered returns an empty tree over a naturally ordered key type.
func NewOrdered[K cmp.Ordered, V any]() Tree[K, V] {
	return Tree[K, V]{compare: cmp.Compare[K]}
}

// Insert returns a tree containing the given key-value pair. An existing
// value under the same key is replaced.
func (t Tree[K, V]) Insert(k K, v V) Tree[K, V] {
	return t.Upsert(k, func(V, bool) V { return v })
}

// Upsert returns a tree where the value under k is f(old, true) if the key
// was present and f(zero, false) otherwise.
func (t Tree[K, V]) Upsert(k K, f func(old V, ok bool) V) Tree[K, V] {
	return Tree[K, V]{compare: t.compare, root: upsert(t.root, t.compare, k, f)}
}

// Update returns a tree where the value under k is replaced with f(old).
// If the key is absent, f is never called and the tree is returned
// unchanged.
func (t Tree[K, V]) Update(k K, f func(old V) V) Tree[K, V] {
	return Tree[K, V]{compare: t.compare, root: update(t.root, t.compare, k, f)}
}

// Remove returns a tree without the given key. Removing an absent key
// returns the tree unchanged.
func (t Tree[K, V]) Remove(k K) Tree[K, V] {
	return Tree[K, V]{compare: t.compare, root: remove(t.root, t.compare, k)}
}

// Get returns the value stored under k.
func (t Tree[K, V]) Get(k K) (V, bool) {
	return get(t.root, t.compare, k)
}

// Len returns the number of key-value pairs in the tree.
func (t Tree[K, V]) Len() int {
	return count(t.root)
}

// Iter returns an in-order iterator over the tree. The iterator is bound to
// this snapshot of the tree; later mutations produce new trees and are never
// visible through it.
func (t Tree[K, V]) Iter() *Iterator[K, V] {
	it := &Iterator[K, V]{}
	it.descendLeft(t.root)
	return it
}

// Iterator walks a tree snapshot in ascending key order. It is not safe for
// concurrent use; traversal is restarted by calling Iter again on the same
// snapshot.
type Iterator[K, V any] struct {
	stack []*node[K, V]
}

// Next returns the next key-value pair in order, or ok=false once the
// iterator is exhausted.
func (it *Iterator[K, V]) Next() (k K, v V, ok bool) {
	if len(it.stack) == 0 {
		return k, v, false
	}

	nd := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]
	it.descendLeft(nd.r)

	return nd.k, nd.v, true
}

// descendLeft pushes the left spine of the given subtree, so the smallest
// key of the subtree ends up on top of the stack.
func (it *Iterator[K, V]) descendLeft(nd *node[K, V]) {
	for nd != nil {
		it.stack = append(it.stack, nd)
		nd = nd.l
	}
}
