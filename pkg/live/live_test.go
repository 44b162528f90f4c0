package live

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/quill/pkg/index"
	"github.com/cuemby/quill/pkg/normalize"
	"github.com/cuemby/quill/pkg/tokenize"
)

const (
	pollTick     = 20 * time.Millisecond
	pollDeadline = 10 * time.Second
)

func startTestLiveIndexer(t *testing.T) *LiveIndexer {
	t.Helper()

	ix := index.New(tokenize.NewWhitespaceFactory()).
		WithNormalizer(normalize.NFC).
		WithNormalizer(normalize.LowerCase{})

	l, err := StartWithOptions(ix, Options{Debounce: testDebounce})
	require.NoError(t, err)
	t.Cleanup(l.Stop)
	return l
}

func requireHit(t *testing.T, l *LiveIndexer, term, path string) {
	t.Helper()

	canonical, err := index.Canonicalize(path)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return l.Query(term).Contains(canonical)
	}, pollDeadline, pollTick, "term %q should match %s", term, path)
}

func requireMiss(t *testing.T, l *LiveIndexer, term string) {
	t.Helper()

	require.Eventually(t, func() bool {
		return l.Query(term).IsEmpty()
	}, pollDeadline, pollTick, "term %q should stop matching", term)
}

func TestWatchIndexesExistingTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))

	top := filepath.Join(dir, "top.txt")
	nested := filepath.Join(dir, "nested", "deep.txt")
	require.NoError(t, os.WriteFile(top, []byte("surface words"), 0o644))
	require.NoError(t, os.WriteFile(nested, []byte("buried treasure"), 0o644))

	l := startTestLiveIndexer(t)
	require.NoError(t, l.Watch(dir))

	requireHit(t, l, "surface", top)
	requireHit(t, l, "treasure", nested)
	assert.True(t, l.Query("absent").IsEmpty())
}

func TestCreatedFileGetsIndexed(t *testing.T) {
	dir := t.TempDir()
	l := startTestLiveIndexer(t)
	require.NoError(t, l.Watch(dir))

	path := filepath.Join(dir, "new.txt")
	require.NoError(t, os.WriteFile(path, []byte("fresh content"), 0o644))

	requireHit(t, l, "fresh", path)
}

func TestRewrittenFileGetsReindexed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha"), 0o644))

	l := startTestLiveIndexer(t)
	require.NoError(t, l.Watch(dir))
	requireHit(t, l, "alpha", path)

	require.NoError(t, os.WriteFile(path, []byte("beta"), 0o644))

	requireHit(t, l, "beta", path)
	requireMiss(t, l, "alpha")
}

func TestRemovedFileLeavesIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("ephemeral"), 0o644))

	l := startTestLiveIndexer(t)
	require.NoError(t, l.Watch(dir))
	requireHit(t, l, "ephemeral", path)

	require.NoError(t, os.Remove(path))

	requireMiss(t, l, "ephemeral")
}

func TestRenamedFileMovesInIndex(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "d.txt")
	newPath := filepath.Join(dir, "e.txt")
	require.NoError(t, os.WriteFile(oldPath, []byte("gamma"), 0o644))

	l := startTestLiveIndexer(t)
	require.NoError(t, l.Watch(dir))
	requireHit(t, l, "gamma", oldPath)

	require.NoError(t, os.Rename(oldPath, newPath))

	requireHit(t, l, "gamma", newPath)

	canonicalOld, err := index.Canonicalize(dir)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return l.Query("gamma").Cardinality() == 1
	}, pollDeadline, pollTick, "old path %s should be gone", filepath.Join(canonicalOld, "d.txt"))
}

func TestUnwatchClearsTreeFromIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("transient"), 0o644))

	l := startTestLiveIndexer(t)
	require.NoError(t, l.Watch(dir))
	requireHit(t, l, "transient", path)

	require.NoError(t, l.Unwatch(dir))

	requireMiss(t, l, "transient")
}

func TestUnwatchUnknownRootFails(t *testing.T) {
	l := startTestLiveIndexer(t)

	assert.Error(t, l.Unwatch(t.TempDir()))
}

func TestWatchMissingRootFails(t *testing.T) {
	l := startTestLiveIndexer(t)

	assert.Error(t, l.Watch(filepath.Join(t.TempDir(), "does-not-exist")))
}

func TestUnreadableFileDoesNotPoisonTheTree(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits do not bind for root")
	}

	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(good, []byte("readable"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("hidden"), 0o000))

	l := startTestLiveIndexer(t)
	require.NoError(t, l.Watch(dir))

	requireHit(t, l, "readable", good)
	assert.True(t, l.Query("hidden").IsEmpty())
}

func TestStopDrainsQueue(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		name := filepath.Join(dir, string(rune('a'+i))+".txt")
		require.NoError(t, os.WriteFile(name, []byte("payload"), 0o644))
	}

	ix := index.New(tokenize.NewWhitespaceFactory())
	l, err := StartWithOptions(ix, Options{Debounce: testDebounce})
	require.NoError(t, err)

	require.NoError(t, l.Watch(dir))
	l.Stop()

	// The AddDir action was queued before Stop; everything it covers must
	// be indexed by the time Stop returns.
	assert.Equal(t, 20, l.Query("payload").Cardinality())
}
