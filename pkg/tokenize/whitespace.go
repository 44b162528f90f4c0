package tokenize

import (
	"io"
	"unicode"
	"unicode/utf8"
)

// Whitespace splits its input on runs of Unicode whitespace.
//
// The whole input is read on the first ReadToken call and tokens are then
// replayed from the buffered split. Offsets are byte offsets into the
// original text.
type Whitespace struct {
	tokens []Token
	next   int
	loaded bool
}

// NewWhitespace creates a whitespace tokenizer.
func NewWhitespace() *Whitespace {
	return &Whitespace{}
}

// NewWhitespaceFactory returns a Factory producing fresh whitespace
// tokenizers.
func NewWhitespaceFactory() Factory {
	return FactoryFunc(func() Tokenizer { return NewWhitespace() })
}

// ReadToken returns the next whitespace-delimited token, or nil at the end
// of the stream.
func (w *Whitespace) ReadToken(r io.Reader) (*Token, error) {
	if !w.loaded {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		w.tokens = splitWhitespace(string(data))
		w.loaded = true
	}

	if w.next == len(w.tokens) {
		return nil, nil
	}

	t := w.tokens[w.next]
	w.next++
	return &t, nil
}

func splitWhitespace(s string) []Token {
	var tokens []Token

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}

		start := i
		for i < len(s) {
			r, size = utf8.DecodeRuneInString(s[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}

		tokens = append(tokens, Token{Value: s[start:i], Offset: uint64(start)})
	}

	return tokens
}
