package retime

import (
	"fmt"
	"math"
)

// Repair forces chronological order onto a token array in a single forward
// pass, in place: every non-deleted, non-boundary token's start becomes at
// least the previous one's start plus epsilon, and non-finite times are
// filled from the running cursor. It is idempotent and much cheaper than a
// full realign, which makes it the right tool after an undo or a fresh load
// from storage.
func Repair(tokens []Token, opts Options) {
	opts = opts.withDefaults()
	eps := opts.Epsilon

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
		} else if finite(cursor) && tok.Start < cursor+eps {
			tok.Start = cursor + eps
		}
		if !finite(tok.End) || tok.End < tok.Start {
			tok.End = tok.Start
		}
		cursor = tok.Start
	}
}

// Report is the outcome of Validate: OK with no issues, or a list of
// human-readable problems naming the offending token.
type Report struct {
	OK     bool
	Issues []string
}

// Validate walks the token array once and reports — without fixing —
// non-finite times, ends earlier than starts, and out-of-order starts.
// The monotonicity check is asymmetric on purpose: a Keep word whose
// baseline start lands behind the running cursor is trusted (model times
// beat synthesized ones) and merely resets the cursor, while an Insert or
// whitespace token out of order is a hard issue.
func Validate(tokens []Token, opts Options) Report {
	opts = opts.withDefaults()
	eps := opts.Epsilon

	var issues []string
	cursor := math.Inf(-1)
	for k, tok := range tokens {
		if tok.State == Delete || tok.IsBoundary() {
			continue
		}
		if !finite(tok.Start) || !finite(tok.End) {
			issues = append(issues, fmt.Sprintf("token %d %q: non-finite time (start=%v, end=%v)", k, tok.Text, tok.Start, tok.End))
			continue
		}
		if tok.End < tok.Start-eps {
			issues = append(issues, fmt.Sprintf("token %d %q: end %.3f precedes start %.3f", k, tok.Text, tok.End, tok.Start))
		}
		if tok.Start < cursor {
			if tok.State == Keep && !tok.IsWhitespace() {
				// Trusted baseline word: restart the chain here.
				cursor = tok.Start
				continue
			}
			issues = append(issues, fmt.Sprintf("token %d %q: start %.3f behind previous start %.3f", k, tok.Text, tok.Start, cursor))
			continue
		}
		cursor = tok.Start
	}
	return Report{OK: len(issues) == 0, Issues: issues}
}
