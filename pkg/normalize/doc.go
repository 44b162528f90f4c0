/*
Package normalize transforms tokens before they reach the index.

Normalizers form an ordered chain: each one may rewrite a token's value or
drop the token, and the first to drop it wins. The same chain runs over
indexed tokens and over query terms, so a query matches exactly what
indexing stored. Offsets always refer to the original text and pass through
every normalizer untouched.

Reference normalizers:

  - Unicode: NFC/NFD/NFKC/NFKD normalization of the value
  - LowerCase: Unicode-aware lowercasing
  - StopWords: drops tokens found in a configured set
*/
package normalize
