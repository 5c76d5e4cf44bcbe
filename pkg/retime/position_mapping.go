package retime

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// mapOffset translates a byte offset from the old text to its counterpart in
// the new text by walking the diffs. An offset inside a deleted stretch
// collapses to the position where the deletion happened.
func mapOffset(oldPos int, diffs []diffmatchpatch.Diff) int {
	oldCur := 0
	newCur := 0

	for _, d := range diffs {
		n := len(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			if oldPos >= oldCur && oldPos < oldCur+n {
				return newCur
			}
			oldCur += n
		case diffmatchpatch.DiffInsert:
			newCur += n
		case diffmatchpatch.DiffEqual:
			if oldPos >= oldCur && oldPos < oldCur+n {
				return newCur + (oldPos - oldCur)
			}
			oldCur += n
			newCur += n
		}
	}
	// Past the end of the old text: the end of the new text.
	return newCur
}

// mapRange maps a half-open byte range through the diffs. The end maps as
// the tighter of "just past the last covered byte" and "where the exclusive
// end lands": the first keeps an insertion right after the range out of it,
// the second collapses a fully deleted range instead of swallowing the text
// that slid into its place.
func mapRange(r CharRange, diffs []diffmatchpatch.Diff) CharRange {
	start := mapOffset(r.Start, diffs)
	end := start
	if r.End > r.Start {
		pastLast := mapOffset(r.End-1, diffs) + 1
		atEnd := mapOffset(r.End, diffs)
		end = pastLast
		if atEnd < end {
			end = atEnd
		}
	}
	if end < start {
		end = start
	}
	return CharRange{Start: start, End: end}
}
