package retime

import (
	"math"
	"unicode"
)

// State classifies a token relative to the baseline transcript.
type State int

const (
	// Keep marks a token carried over from the baseline with its original times.
	Keep State = iota
	// Delete marks a baseline token the edit removed. Deleted tokens retain
	// their original times for diff display but never serve as timing anchors
	// and never appear in reconstructed text.
	Delete
	// Insert marks a token that exists only in the edited text. Its times are
	// synthesized by AssignTimes.
	Insert
)

func (s State) String() string {
	switch s {
	case Keep:
		return "keep"
	case Delete:
		return "del"
	case Insert:
		return "ins"
	}
	return "unknown"
}

// Token is one lexical unit of a transcript: a word, a whitespace run, or the
// single-character newline sentinel that separates segments. Times are
// seconds; NaN means "not assigned yet".
type Token struct {
	Text  string
	Start float64
	End   float64
	State State
	// Conf is the model confidence for baseline words; nil for user-typed
	// text and whitespace.
	Conf *float64
}

// IsBoundary reports whether the token is the newline segment sentinel.
// Boundary tokens carry no duration (Start == End) and act as barriers for
// anchor search.
func (t Token) IsBoundary() bool {
	return t.Text == "\n"
}

// IsWhitespace reports whether the token is a whitespace run (but not the
// newline boundary).
func (t Token) IsWhitespace() bool {
	if t.IsBoundary() || t.Text == "" {
		return false
	}
	for _, r := range t.Text {
		if !isSpaceRune(r) && r != '\n' {
			return false
		}
	}
	return true
}

// RunKind classifies a run of characters produced by Tokenize.
type RunKind int

const (
	RunNewline RunKind = iota
	RunSpace
	RunWord
)

// Run is the alignment unit: a maximal substring of a single character class.
// NormalizeBaseline additionally fills the time anchor fields; runs produced
// by Tokenize have NaN times.
type Run struct {
	Text  string
	Kind  RunKind
	Start float64
	End   float64
	Conf  *float64
}

// Op is the type of one edit-script span.
type Op int

const (
	OpEqual Op = iota
	OpDelete
	OpInsert
)

func (o Op) String() string {
	switch o {
	case OpEqual:
		return "equal"
	case OpDelete:
		return "delete"
	case OpInsert:
		return "insert"
	}
	return "unknown"
}

// Span is a contiguous stretch of the edit script. Lengths are counted in
// runs: Equal and Delete spans consume baseline runs, Equal and Insert spans
// consume edited runs.
type Span struct {
	Op  Op
	Len int
}

// EditScript is an ordered list of spans accounting for every baseline run
// and every edited run exactly once, in original order.
type EditScript []Span

// Options carries the tunable constants of the timing synthesizer. The source
// material never settled on single values for these, so they stay
// configurable rather than hard-coded.
type Options struct {
	// WindowSec is the synthetic window length granted per inserted word when
	// no real gap between anchors exists. Default 0.12.
	WindowSec float64
	// Epsilon is the minimum separation enforced between synthesized start
	// times, in seconds. Default 0.005.
	Epsilon float64
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{WindowSec: 0.12, Epsilon: 0.005}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if !(o.WindowSec > 0) {
		o.WindowSec = d.WindowSec
	}
	if !(o.Epsilon > 0) {
		o.Epsilon = d.Epsilon
	}
	return o
}

// isSpaceRune reports whether r is whitespace other than the newline
// sentinel.
func isSpaceRune(r rune) bool {
	return r != '\n' && unicode.IsSpace(r)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round3(v float64) float64 {
	if !finite(v) {
		return v
	}
	return math.Round(v*1000) / 1000
}
