package retime

import (
	"math"
	"strings"
)

// Word is the wire shape of one timed word inside a segment.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	// Probability is the model confidence; absent for user-typed words.
	Probability *float64 `json:"probability,omitempty"`
}

// Segment groups the words between two newline boundaries and carries their
// aggregate time bounds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words"`
}

// Document is the import/export shape exchanged with persistence and
// rendering: the full plain text plus its segment structure.
type Document struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// placeholder bounds for a segment with no finite word times.
const (
	emptySegmentStart = 0
	emptySegmentEnd   = 0.25
)

// TokensToDocument groups a token sequence into segments split on newline
// boundaries. Whitespace runs are prepended onto the following word's text —
// the mirror image of how Tokenize peeled them off — so the document's text
// round-trips exactly. Deleted tokens are dropped.
func TokensToDocument(tokens []Token) Document {
	var segments []Segment

	var words []Word
	pendingWS := ""
	pendingAt := math.NaN()

	flush := func() {
		if pendingWS != "" {
			if len(words) > 0 {
				// Trailing whitespace has no next word; it rides on the last
				// one so no text is lost.
				words[len(words)-1].Word += pendingWS
			} else {
				at := pendingAt
				if !finite(at) {
					at = emptySegmentStart
				}
				words = append(words, Word{Word: pendingWS, Start: at, End: at})
			}
			pendingWS = ""
			pendingAt = math.NaN()
		}

		seg := Segment{Start: emptySegmentStart, End: emptySegmentEnd, Words: words}
		var b strings.Builder
		lo, hi := math.NaN(), math.NaN()
		for _, w := range words {
			b.WriteString(w.Word)
			if finite(w.Start) && (!finite(lo) || w.Start < lo) {
				lo = w.Start
			}
			if finite(w.End) && (!finite(hi) || w.End > hi) {
				hi = w.End
			}
		}
		seg.Text = b.String()
		if finite(lo) && finite(hi) {
			seg.Start, seg.End = lo, hi
		}
		segments = append(segments, seg)
		words = nil
	}

	for _, tok := range tokens {
		if tok.State == Delete {
			continue
		}
		if tok.IsBoundary() {
			flush()
			continue
		}
		if tok.IsWhitespace() {
			if pendingWS == "" {
				pendingAt = tok.Start
			}
			pendingWS += tok.Text
			continue
		}
		words = append(words, Word{
			Word:        pendingWS + tok.Text,
			Start:       tok.Start,
			End:         tok.End,
			Probability: tok.Conf,
		})
		pendingWS = ""
		pendingAt = math.NaN()
	}
	flush()

	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return Document{Text: strings.Join(texts, "\n"), Segments: segments}
}

// DocumentToTokens flattens a document back into a token sequence: one Keep
// token per word (word text may carry its prepended whitespace — that is the
// coarse shape NormalizeBaseline exists for), with a zero-duration newline
// boundary between segments and none after the last.
func DocumentToTokens(doc Document) []Token {
	var tokens []Token
	for i, seg := range doc.Segments {
		if i > 0 {
			at := math.NaN()
			if prev := doc.Segments[i-1]; finite(prev.End) {
				at = prev.End
			}
			tokens = append(tokens, Token{Text: "\n", Start: at, End: at, State: Keep})
		}
		for _, w := range seg.Words {
			if w.Word == "" {
				continue
			}
			tokens = append(tokens, Token{
				Text:  w.Word,
				Start: w.Start,
				End:   w.End,
				State: Keep,
				Conf:  w.Probability,
			})
		}
	}
	return tokens
}
