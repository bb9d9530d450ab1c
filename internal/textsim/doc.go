// Package textsim provides the text comparison primitives used by the
// candidate filter and the unanswerable-context guard.
//
// This package implements:
//   - Text normalization (lowercasing, whitespace collapsing, symbol stripping)
//   - Token and bag-of-words extraction
//   - The Ratcliff/Obershelp "matching blocks" similarity ratio
//   - Token-set Jaccard similarity
//
// The repetition and denylist thresholds used elsewhere are tuned to
// Ratio computed over whitespace tokens of normalized text, so callers
// should compare Tokens(...) slices rather than raw strings.
package textsim
