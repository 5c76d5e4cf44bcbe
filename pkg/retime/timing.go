package retime

import "math"

// AssignTimes fills in start/end times for every inserted token, in place.
// Each maximal contiguous run of Insert tokens gets a placement window
// between its nearest trusted neighbors and its tokens are spread across
// that window; a final global sweep enforces non-decreasing starts without
// ever rewriting a Keep token's baseline time. All finite times end up
// rounded to millisecond precision.
func AssignTimes(tokens []Token, opts Options) {
	opts = opts.withDefaults()

	for i := 0; i < len(tokens); {
		if tokens[i].State != Insert {
			i++
			continue
		}
		j := i
		for j < len(tokens) && tokens[j].State == Insert {
			j++
		}
		fillInsertSlice(tokens, i, j, opts)
		i = j
	}

	sweepForward(tokens, opts.Epsilon)

	for k := range tokens {
		tokens[k].Start = round3(tokens[k].Start)
		tokens[k].End = round3(tokens[k].End)
	}
}

// windowLength is the synthetic duration granted to an insert slice with n
// word runs when the neighboring anchors leave no real gap.
func windowLength(n int, windowSec float64) float64 {
	if n < 1 {
		n = 1
	}
	return windowSec * float64(n)
}

// anchorAt scans from index from in direction dir (-1 left, +1 right) for a
// timing anchor: the nearest non-deleted, non-boundary token with finite
// times, preferring one that is a positive-duration word. Deleted tokens are
// never anchors; their times describe text that no longer exists.
func anchorAt(tokens []Token, from, dir int) *Token {
	var fallback *Token
	for k := from; k >= 0 && k < len(tokens); k += dir {
		t := &tokens[k]
		if t.State == Delete || t.IsBoundary() {
			continue
		}
		if !finite(t.Start) || !finite(t.End) {
			continue
		}
		if t.End > t.Start && !t.IsWhitespace() {
			return t
		}
		if fallback == nil {
			fallback = t
		}
	}
	return fallback
}

// fillInsertSlice assigns times to the insert run tokens[i:j].
func fillInsertSlice(tokens []Token, i, j int, opts Options) {
	eps := opts.Epsilon

	words := 0
	for k := i; k < j; k++ {
		if !tokens[k].IsBoundary() && !tokens[k].IsWhitespace() {
			words++
		}
	}
	win := windowLength(words, opts.WindowSec)

	left := anchorAt(tokens, i-1, -1)
	right := anchorAt(tokens, j, +1)

	// Synthesized times must never pass a real right anchor; the sweep cannot
	// undo an overrun because the anchor is a Keep token it will not rewrite.
	ceil := math.Inf(1)
	if right != nil {
		ceil = right.Start
	}

	// Placement window [lo, hi).
	var lo, hi float64
	switch {
	case left != nil && right != nil:
		lo, hi = left.End, right.Start
	case left != nil:
		lo, hi = left.End, left.End+win
	case right != nil:
		hi = right.Start
		lo = hi - win
		if lo < 0 {
			lo = 0
		}
	default:
		lo, hi = 0, win
	}
	if hi <= lo {
		// Anchors touch (or invert): widen, but only up to the ceiling. With
		// no room at all everything collapses to zero-length placements
		// stacked at the shared instant.
		hi = lo + win
		if hi > ceil {
			hi = ceil
		}
	}
	if hi < lo {
		lo = hi
	}

	total := j - i
	step := (hi - lo) / float64(words+1)
	last := lo
	wordIdx := 0
	for k := i; k < j; k++ {
		tok := &tokens[k]
		if tok.IsBoundary() || tok.IsWhitespace() {
			// Zero-duration anchor point at the run's fractional position.
			// A whitespace-only slice lands its single run on the window
			// midpoint.
			at := lo + (hi-lo)*float64(k-i+1)/float64(total+1)
			if at < last+eps {
				at = last + eps
			}
			if at > ceil {
				at = ceil
			}
			tok.Start, tok.End = at, at
			last = at
			continue
		}

		// Words take successive centered slices of the window.
		wordIdx++
		center := lo + step*float64(wordIdx)
		s := center - step/2
		e := center + step/2
		if s < lo+eps {
			s = lo + eps
		}
		if s < last+eps {
			s = last + eps
		}
		if s > ceil {
			s = ceil
		}
		if right != nil && e > right.Start-eps {
			e = right.Start - eps
		}
		if e < s {
			// No room left: zero length keeps the ordering without
			// pretending to know a duration.
			e = s
		}
		tok.Start, tok.End = s, e
		last = s
	}

	// Local re-sweep: the slice must leave here fully timed and
	// non-decreasing even if the math above was starved for room.
	last = lo
	for k := i; k < j; k++ {
		tok := &tokens[k]
		if !finite(tok.Start) {
			tok.Start = last + eps
		}
		if tok.Start < last {
			tok.Start = last
		}
		if !finite(tok.End) || tok.End < tok.Start {
			tok.End = tok.Start
		}
		last = tok.Start
	}
}

// sweepForward enforces global non-decreasing starts over all non-deleted,
// non-boundary tokens. Only synthesized times (Insert tokens and whitespace)
// are bumped forward; a Keep word's baseline time is trusted even when it
// lands out of order, and Validate reports it instead.
func sweepForward(tokens []Token, eps float64) {
	cursor := math.Inf(-1)
	for k := range tokens {
		tok := &tokens[k]
		if tok.State == Delete || tok.IsBoundary() {
			continue
		}
		if !finite(tok.Start) {
			if finite(cursor) {
				tok.Start = cursor + eps
			} else {
				tok.Start = 0
			}
		}
		if tok.Start < cursor && (tok.State == Insert || tok.IsWhitespace()) {
			tok.Start = cursor
		}
		if !finite(tok.End) || tok.End < tok.Start {
			tok.End = tok.Start
		}
		if tok.Start > cursor {
			cursor = tok.Start
		}
	}
}
