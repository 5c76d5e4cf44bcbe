package retime

import (
	"math"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Align computes the shortest edit script turning the baseline run sequence
// into the edited run sequence. Runs compare by exact text equality. Each
// distinct run text is interned as a single code point and the two code-point
// sequences go through go-diff's Myers implementation, the same trick the
// library itself uses for line-mode diffs. DiffTimeout is disabled so the
// full O(N·D) search always runs to completion and repeated calls on the same
// input yield identical scripts.
func Align(baseline, edited []Run) EditScript {
	a, b := internRuns(baseline, edited)

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	diffs := dmp.DiffMainRunes(a, b, false)

	var script EditScript
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		if n == 0 {
			continue
		}
		var op Op
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			op = OpEqual
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		}
		if k := len(script) - 1; k >= 0 && script[k].Op == op {
			script[k].Len += n
			continue
		}
		script = append(script, Span{Op: op, Len: n})
	}
	return script
}

// internRuns maps every distinct run text to one code point, shared between
// both sequences so equal runs collide.
func internRuns(baseline, edited []Run) ([]rune, []rune) {
	codes := make(map[string]rune, len(baseline)+len(edited))
	enc := func(runs []Run) []rune {
		out := make([]rune, len(runs))
		for i, r := range runs {
			c, ok := codes[r.Text]
			if !ok {
				c = ordinalRune(len(codes))
				codes[r.Text] = c
			}
			out[i] = c
		}
		return out
	}
	return enc(baseline), enc(edited)
}

// ordinalRune turns a dictionary ordinal into a valid code point, stepping
// over the surrogate block that Go strings cannot round-trip.
func ordinalRune(i int) rune {
	v := rune(i + 1)
	if v >= 0xD800 {
		v += 0x800
	}
	return v
}

// ApplyScript replays an edit script into a fresh token sequence. Equal and
// Delete spans consume baseline runs and keep their anchored times; Insert
// spans consume edited runs and leave times NaN for AssignTimes. The inputs
// are never mutated.
func ApplyScript(script EditScript, baseline, edited []Run) []Token {
	tokens := make([]Token, 0, len(edited)+len(baseline))
	nan := math.NaN()
	bi, ei := 0, 0
	for _, sp := range script {
		switch sp.Op {
		case OpEqual:
			for k := 0; k < sp.Len; k++ {
				r := baseline[bi]
				tokens = append(tokens, Token{Text: r.Text, Start: r.Start, End: r.End, State: Keep, Conf: r.Conf})
				bi++
				ei++
			}
		case OpDelete:
			for k := 0; k < sp.Len; k++ {
				r := baseline[bi]
				tokens = append(tokens, Token{Text: r.Text, Start: r.Start, End: r.End, State: Delete, Conf: r.Conf})
				bi++
			}
		case OpInsert:
			for k := 0; k < sp.Len; k++ {
				r := edited[ei]
				tokens = append(tokens, Token{Text: r.Text, Start: nan, End: nan, State: Insert})
				ei++
			}
		}
	}
	return tokens
}

// Text reconstructs the plain edited text from a token sequence. Deleted
// tokens are skipped; everything else concatenates in order.
func Text(tokens []Token) string {
	size := 0
	for _, t := range tokens {
		if t.State != Delete {
			size += len(t.Text)
		}
	}
	out := make([]byte, 0, size)
	for _, t := range tokens {
		if t.State != Delete {
			out = append(out, t.Text...)
		}
	}
	return string(out)
}
