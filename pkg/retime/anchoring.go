package retime

import (
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// CharRange is a half-open byte-offset range into a transcript's plain text.
// The editor persists confirmed (human-reviewed) stretches this way.
type CharRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ReattachRanges maps saved ranges from oldText onto newText after an edit.
// Each range first rides the character diff between the two texts; if its
// text survives verbatim at the mapped offset, that is the answer. Otherwise
// the range's text is searched for elsewhere in newText and candidate
// occurrences are scored by how much of the original same-line context they
// share; the best-scoring occurrence wins. Ranges whose text cannot be found
// at all are dropped. The result is sorted and non-overlapping.
func ReattachRanges(oldText, newText string, ranges []CharRange) []CharRange {
	if len(ranges) == 0 {
		return nil
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	diffs := dmp.DiffMain(oldText, newText, false)

	var out []CharRange
	for _, r := range ranges {
		if r.Start < 0 || r.End > len(oldText) || r.Start >= r.End {
			continue
		}
		want := oldText[r.Start:r.End]

		m := mapRange(r, diffs)
		if m.End <= len(newText) && newText[m.Start:m.End] == want {
			out = append(out, m)
			continue
		}

		// The mapped location no longer holds the confirmed text; fall back
		// to fuzzy re-anchoring against other occurrences.
		if pos, ok := bestOccurrence(oldText, newText, want, r.Start, m.Start); ok {
			out = append(out, CharRange{Start: pos, End: pos + len(want)})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	merged := out[:0]
	for _, r := range out {
		if n := len(merged); n > 0 && r.Start < merged[n-1].End {
			if r.End > merged[n-1].End {
				merged[n-1].End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// bestOccurrence finds the occurrence of want in newText whose local context
// best matches the context the range had in oldText. mappedPos breaks score
// ties: the occurrence nearest the diff-mapped position wins.
func bestOccurrence(oldText, newText, want string, oldPos, mappedPos int) (int, bool) {
	oldPrefix, oldAffix := localContext(oldText, oldPos, len(want))

	best := -1
	bestScore := -1
	bestDist := 0
	searchStart := 0
	for {
		found := strings.Index(newText[searchStart:], want)
		if found == -1 {
			break
		}
		pos := searchStart + found

		prefix, affix := localContext(newText, pos, len(want))
		score := contextScore(oldPrefix, oldAffix, prefix, affix)
		dist := pos - mappedPos
		if dist < 0 {
			dist = -dist
		}
		if score > bestScore || (score == bestScore && dist < bestDist) {
			best, bestScore, bestDist = pos, score, dist
		}

		searchStart = pos + 1
		if searchStart >= len(newText) {
			break
		}
	}
	return best, best >= 0
}

// contextScore counts how many bytes of prefix (inside-out) and affix match
// between the original context and a candidate's context.
func contextScore(oldPrefix, oldAffix, prefix, affix string) int {
	score := 0
	for i := 1; i <= len(oldPrefix) && i <= len(prefix); i++ {
		if oldPrefix[len(oldPrefix)-i:] != prefix[len(prefix)-i:] {
			break
		}
		score++
	}
	for i := 1; i <= len(oldAffix) && i <= len(affix); i++ {
		if oldAffix[:i] != affix[:i] {
			break
		}
		score++
	}
	return score
}

// localContext extracts the text before and after [pos, pos+length) limited
// to the line containing pos. Context never crosses a newline, which keeps
// anchoring decisions local to a segment.
func localContext(text string, pos, length int) (prefix, affix string) {
	if pos < 0 || pos > len(text) {
		return "", ""
	}

	lineStart := 0
	if idx := strings.LastIndexByte(text[:pos], '\n'); idx != -1 {
		lineStart = idx + 1
	}
	lineEnd := len(text)
	if idx := strings.IndexByte(text[lineStart:], '\n'); idx != -1 {
		lineEnd = lineStart + idx
	}

	prefix = text[lineStart:pos]
	afterStart := pos + length
	if afterStart < lineEnd {
		affix = text[afterStart:lineEnd]
	}
	return prefix, affix
}
