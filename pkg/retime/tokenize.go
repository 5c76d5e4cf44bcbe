package retime

import (
	"math"
	"unicode/utf8"
)

// Tokenize splits text into the run alphabet the aligner works on: every
// newline is its own run, any maximal stretch of other whitespace is one run,
// any maximal stretch of non-whitespace is one run. The scan is rune-aware so
// multi-byte glyphs never split across runs. Times on the returned runs are
// NaN; only NormalizeBaseline anchors runs.
func Tokenize(text string) []Run {
	var runs []Run
	nan := math.NaN()

	start := 0
	kind := RunKind(-1)
	flush := func(end int) {
		if kind >= 0 && end > start {
			runs = append(runs, Run{Text: text[start:end], Kind: kind, Start: nan, End: nan})
		}
		kind = -1
	}

	for i, r := range text {
		if r == '\n' {
			flush(i)
			runs = append(runs, Run{Text: "\n", Kind: RunNewline, Start: nan, End: nan})
			start = i + 1
			continue
		}
		k := RunWord
		if isSpaceRune(r) {
			k = RunSpace
		}
		if kind == -1 {
			kind = k
			start = i
			continue
		}
		if k != kind {
			flush(i)
			kind = k
			start = i
		}
	}
	flush(len(text))
	return runs
}

// NormalizeBaseline explodes coarse baseline tokens into the same run
// granularity Tokenize produces, so the two sides of an alignment compare
// like with like. Legacy baselines bundle leading or trailing whitespace into
// a word token's text; each sub-run gets a time anchor interpolated inside
// the parent token's span by rune offset. A whitespace run collapses to a
// zero-duration anchor point; a token that is a single word run keeps the
// parent's exact span. Newline tokens pass through as boundary runs.
func NormalizeBaseline(tokens []Token) []Run {
	var runs []Run
	for _, tok := range tokens {
		if tok.IsBoundary() {
			runs = append(runs, Run{Text: "\n", Kind: RunNewline, Start: tok.Start, End: tok.Start})
			continue
		}
		sub := Tokenize(tok.Text)
		total := utf8.RuneCountInString(tok.Text)
		off := 0
		for _, r := range sub {
			n := utf8.RuneCountInString(r.Text)
			switch r.Kind {
			case RunWord:
				r.Start = lerpAnchor(tok.Start, tok.End, off, total)
				r.End = lerpAnchor(tok.Start, tok.End, off+n, total)
				r.Conf = tok.Conf
			default:
				// Whitespace and embedded newlines anchor to a single point.
				at := lerpAnchor(tok.Start, tok.End, off, total)
				r.Start, r.End = at, at
			}
			off += n
			runs = append(runs, r)
		}
	}
	return runs
}

// lerpAnchor interpolates a time inside [start, end] at rune offset off of
// total. Non-finite parent times propagate as NaN.
func lerpAnchor(start, end float64, off, total int) float64 {
	if !finite(start) || !finite(end) {
		return math.NaN()
	}
	if total <= 0 {
		return start
	}
	return start + (end-start)*(float64(off)/float64(total))
}
