/*
Package tokenize splits file contents into tokens for indexing.

A Tokenizer reads tokens from a stream; a Factory produces a fresh tokenizer
per file so that implementations can buffer per-file state. Two reference
tokenizers are provided:

  - Whitespace: splits on runs of Unicode whitespace
  - Regex: splits on matches of a configured pattern, the tokens being the
    complements of the matches

Both record the byte offset of each token's first byte in the original
text. Offsets refer to the pre-normalization input and survive the
normalizer chain untouched.
*/
package tokenize
