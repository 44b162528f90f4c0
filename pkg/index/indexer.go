package index

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog"

	"github.com/cuemby/quill/pkg/log"
	"github.com/cuemby/quill/pkg/metrics"
	"github.com/cuemby/quill/pkg/normalize"
	"github.com/cuemby/quill/pkg/tokenize"
)

// Indexer builds a text index over files and answers term queries against
// it.
//
// Files are parsed by tokenizers created from the configured factory, one
// fresh tokenizer per file. Every token runs through the normalizer chain
// in order; the first normalizer to drop a token wins. Query terms run
// through the same chain, so lookups match what indexing stored.
//
// Indexer is safe for concurrent use: queries may run from any number of
// goroutines while files are being indexed. Mutation itself is expected to
// be serialized by the caller (the live maintainer funnels all of it
// through one worker).
type Indexer struct {
	store       *Store
	factory     tokenize.Factory
	normalizers []normalize.Normalizer
	logger      zerolog.Logger
}

// New creates an Indexer with the given tokenizer factory and no
// normalizers.
func New(factory tokenize.Factory) *Indexer {
	return &Indexer{
		store:   NewStore(),
		factory: factory,
		logger:  log.WithComponent("indexer"),
	}
}

// WithNormalizer appends a normalizer to the chain and returns the indexer
// for chaining. Order matters and is part of the configured contract.
func (ix *Indexer) WithNormalizer(n normalize.Normalizer) *Indexer {
	ix.normalizers = append(ix.normalizers, n)
	return ix
}

// Query returns the set of files the given term occurs in.
//
// The term goes through the same normalizer chain as indexed tokens; if the
// chain drops it, the raw term is looked up instead, which naturally yields
// no matches for stop words. Queries never fail: an unknown term returns
// the empty set.
func (ix *Indexer) Query(term string) mapset.Set[string] {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.QueryDuration)

	key := term
	if t, ok := ix.normalize(tokenize.Token{Value: term}); ok {
		key = t.Value
	}

	paths := mapset.NewSet[string]()

	list, ok := ix.store.Get(key)
	if !ok {
		return paths
	}

	for it := list.Iter(); ; {
		p, _, ok := it.Next()
		if !ok {
			break
		}
		paths.Add(p.String())
	}

	return paths
}

// IndexFile tokenizes the file at path and adds its tokens to the index.
//
// Paths that exist but are not regular files, such as directories, are
// skipped without error; a path that cannot be stat'ed, for example because
// it does not exist, returns an error. The path is canonicalized first so that every file is indexed under exactly
// one spelling.
func (ix *Indexer) IndexFile(path string) error {
	timer := metrics.NewTimer()

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	canonical, err := Canonicalize(path)
	if err != nil {
		return fmt.Errorf("canonicalize %s: %w", path, err)
	}

	f, err := os.Open(canonical)
	if err != nil {
		return fmt.Errorf("open %s: %w", canonical, err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	tokenizer := ix.factory.Create()

	words := 0
	for {
		t, err := tokenizer.ReadToken(reader)
		if err != nil {
			return fmt.Errorf("tokenize %s: %w", canonical, err)
		}
		if t == nil {
			break
		}

		words++
		if n, ok := ix.normalize(*t); ok {
			ix.store.Insert(canonical, n)
		}
	}

	metrics.FilesIndexed.Inc()
	metrics.TokensIndexed.Add(float64(words))
	timer.ObserveDuration(metrics.IndexFileDuration)

	ix.logger.Debug().
		Str("path", canonical).
		Int("words", words).
		Dur("took", timer.Duration()).
		Msg("indexed a file")

	return nil
}

// ClearFromIndex removes every index entry referring to the given path.
func (ix *Indexer) ClearFromIndex(path string) {
	canonical, err := Canonicalize(path)
	if err != nil {
		// The file may already be gone; purge under the cleaned absolute
		// path, which is what IndexFile stored for files under a
		// canonicalized watch root.
		if abs, absErr := filepath.Abs(path); absErr == nil {
			canonical = filepath.Clean(abs)
		} else {
			canonical = filepath.Clean(path)
		}
	}

	ix.logger.Debug().Str("path", canonical).Msg("removing a file from index")
	ix.store.Purge(canonical)
	metrics.FilesPurged.Inc()
}

// Canonicalize resolves path to an absolute form with symlinks evaluated.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func (ix *Indexer) normalize(t tokenize.Token) (tokenize.Token, bool) {
	for _, n := range ix.normalizers {
		var ok bool
		if t, ok = n.Normalize(t); !ok {
			return tokenize.Token{}, false
		}
	}
	return t, true
}
