package tokenize

import (
	"fmt"
	"io"
	"regexp"
)

// Regex splits its input on matches of a pattern; tokens are the stretches
// of text between matches. Like Whitespace, it slurps the input on the
// first read and replays tokens from the buffered split.
type Regex struct {
	re     *regexp.Regexp
	tokens []Token
	next   int
	loaded bool
}

// NewRegex creates a tokenizer splitting on matches of pattern.
func NewRegex(pattern string) (*Regex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile tokenizer pattern: %w", err)
	}
	return &Regex{re: re}, nil
}

// NewRegexFactory compiles pattern once and returns a Factory whose
// tokenizers share the compiled program. Regexp matching is safe for
// concurrent use, so sharing is fine even across files.
func NewRegexFactory(pattern string) (Factory, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile tokenizer pattern: %w", err)
	}
	return FactoryFunc(func() Tokenizer { return &Regex{re: re} }), nil
}

// ReadToken returns the next token between pattern matches, or nil at the
// end of the stream.
func (t *Regex) ReadToken(r io.Reader) (*Token, error) {
	if !t.loaded {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		t.tokens = t.split(string(data))
		t.loaded = true
	}

	if t.next == len(t.tokens) {
		return nil, nil
	}

	tok := t.tokens[t.next]
	t.next++
	return &tok, nil
}

func (t *Regex) split(s string) []Token {
	var tokens []Token

	prev := 0
	for _, m := range t.re.FindAllStringIndex(s, -1) {
		if m[0] > prev {
			tokens = append(tokens, Token{Value: s[prev:m[0]], Offset: uint64(prev)})
		}
		prev = m[1]
	}
	if prev < len(s) {
		tokens = append(tokens, Token{Value: s[prev:], Offset: uint64(prev)})
	}

	return tokens
}
