package normalize

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/cuemby/quill/pkg/tokenize"
)

// Normalizer rewrites or drops tokens on their way into the index. The
// boolean result is false when the token should be dropped entirely.
// Implementations must preserve the token's Offset.
type Normalizer interface {
	Normalize(t tokenize.Token) (tokenize.Token, bool)
}

// Unicode normalizes token values to one of the four standard Unicode
// normalization forms.
type Unicode struct {
	form norm.Form
}

var (
	NFC  = Unicode{norm.NFC}
	NFD  = Unicode{norm.NFD}
	NFKC = Unicode{norm.NFKC}
	NFKD = Unicode{norm.NFKD}
)

// ParseUnicode maps a form name (nfc, nfd, nfkc, nfkd) to its normalizer.
func ParseUnicode(name string) (Unicode, error) {
	switch strings.ToLower(name) {
	case "nfc":
		return NFC, nil
	case "nfd":
		return NFD, nil
	case "nfkc":
		return NFKC, nil
	case "nfkd":
		return NFKD, nil
	default:
		return Unicode{}, fmt.Errorf("unknown unicode normalization form %q", name)
	}
}

// Normalize rewrites the token value to the configured form.
func (u Unicode) Normalize(t tokenize.Token) (tokenize.Token, bool) {
	t.Value = u.form.String(t.Value)
	return t, true
}

// LowerCase lowercases token values, Unicode-aware.
type LowerCase struct{}

// Normalize lowercases the token value.
func (LowerCase) Normalize(t tokenize.Token) (tokenize.Token, bool) {
	t.Value = strings.ToLower(t.Value)
	return t, true
}

// StopWords drops tokens whose value is in the configured set.
type StopWords struct {
	words mapset.Set[string]
}

// NewStopWords builds a stop word filter over the given words.
func NewStopWords(words ...string) StopWords {
	return StopWords{words: mapset.NewSet(words...)}
}

// Normalize passes the token through unless it is a stop word.
func (s StopWords) Normalize(t tokenize.Token) (tokenize.Token, bool) {
	if s.words.Contains(t.Value) {
		return tokenize.Token{}, false
	}
	return t, true
}
