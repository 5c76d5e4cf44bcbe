// Package retime reconstructs timed transcript tokens after free-form text
// edits. Given an immutable baseline of timed tokens and the edited plain
// text, Realign keeps the timestamps of unchanged spans, marks removed spans
// deleted, synthesizes plausible times for inserted spans, and guarantees
// monotonic non-overlapping order suitable for audio-synced playback.
//
// The engine is pure: it never mutates its inputs, performs no I/O, and the
// same inputs always produce the same output. Callers editing one document
// must serialize calls themselves; calls for different documents can run in
// parallel freely.
package retime

// Realign rebuilds the token sequence for editedText against baseline. The
// baseline is read-only; the returned tokens are freshly allocated on every
// call and it is the caller's business whether to adopt them.
func Realign(baseline []Token, editedText string, opts Options) []Token {
	baseRuns := NormalizeBaseline(baseline)
	editRuns := Tokenize(editedText)

	script := Align(baseRuns, editRuns)
	tokens := ApplyScript(script, baseRuns, editRuns)
	AssignTimes(tokens, opts)
	return tokens
}
