package tokenize

import "io"

// Token is a single parsed token. Offset is the byte offset of the token's
// first byte in the original input, before any normalization; normalizers
// may change Value but keep Offset intact.
type Token struct {
	Value  string
	Offset uint64
}

// Tokenizer splits an input stream into tokens. The same reader is threaded
// across successive ReadToken calls; implementations may buffer arbitrarily
// far ahead, including slurping the whole input on the first call.
//
// A nil token together with a nil error signals the end of the stream.
type Tokenizer interface {
	ReadToken(r io.Reader) (*Token, error)
}

// Factory produces Tokenizers in a ready-to-use state. The indexer creates
// a fresh tokenizer per file, so implementations are free to keep per-file
// state without synchronization.
type Factory interface {
	Create() Tokenizer
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func() Tokenizer

// Create calls f.
func (f FactoryFunc) Create() Tokenizer {
	return f()
}
