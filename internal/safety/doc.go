// Package safety decides which retrieved responses may be shown to a user.
//
// This package provides:
//   - Guard: short-circuits turns that match a known "stuck" phrase, where
//     a retrieved chit-chat answer would derail the conversation
//   - Filter: content-safety and repetition rules applied to every ranked
//     candidate (denylisted responses, greetings, denylisted words and
//     phrases, garbled tokens, repeating one's own earlier turns)
//
// Both are built once from static denylists and are safe for concurrent use.
package safety
