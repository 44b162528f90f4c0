package avl

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellInsertVisibleInNextSnapshot(t *testing.T) {
	cell := NewCell(NewOrdered[string, int]())

	cell.Insert("a", 1)

	v, ok := cell.Snapshot().Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestCellUpsertAndUpdate(t *testing.T) {
	cell := NewCell(NewOrdered[string, int]())

	cell.Upsert("a", func(old int, ok bool) int { return old + 1 })
	cell.Upsert("a", func(old int, ok bool) int { return old + 1 })
	cell.Update("a", func(old int) int { return old * 10 })
	cell.Update("missing", func(old int) int { return 99 })

	v, ok := cell.Snapshot().Get("a")
	require.True(t, ok)
	assert.Equal(t, 20, v)

	_, ok = cell.Snapshot().Get("missing")
	assert.False(t, ok)
}

func TestCellRemove(t *testing.T) {
	cell := NewCell(NewOrdered[string, int]())

	cell.Insert("a", 1)
	cell.Remove("a")

	_, ok := cell.Snapshot().Get("a")
	assert.False(t, ok)
}

func TestCellSnapshotIsImmutable(t *testing.T) {
	cell := NewCell(NewOrdered[string, int]())
	cell.Insert("a", 1)

	snap := cell.Snapshot()
	before := keysOf(snap)

	cell.Insert("b", 2)
	cell.Remove("a")

	assert.Equal(t, before, keysOf(snap))

	v, ok := snap.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = cell.Snapshot().Get("a")
	assert.False(t, ok)
}

// Concurrent read-modify-write increments must not lose updates; this is
// exactly what the writer mutex exists for.
func TestCellConcurrentUpsertsAreSerialized(t *testing.T) {
	const (
		goroutines = 16
		increments = 200
	)

	cell := NewCell(NewOrdered[string, int]())

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < increments; i++ {
				cell.Upsert("n", func(old int, ok bool) int { return old + 1 })
			}
		}()
	}
	wg.Wait()

	v, ok := cell.Snapshot().Get("n")
	require.True(t, ok)
	assert.Equal(t, goroutines*increments, v)
}

func TestCellReadersDoNotBlockWriter(t *testing.T) {
	cell := NewCell(NewOrdered[int, int]())

	const writes = 500

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}

				snap := cell.Snapshot()
				seen := 0
				for it := snap.Iter(); ; {
					k, v, ok := it.Next()
					if !ok {
						break
					}
					// Values equal keys; a torn read would break this.
					require.Equal(t, k, v)
					seen++
				}
				require.Equal(t, snap.Len(), seen)
			}
		}()
	}

	for i := 0; i < writes; i++ {
		cell.Insert(i, i)
	}
	close(stop)
	wg.Wait()

	assert.Equal(t, writes, cell.Snapshot().Len())
}
