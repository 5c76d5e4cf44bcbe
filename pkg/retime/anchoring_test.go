package retime

import (
	"reflect"
	"testing"
)

func TestReattachRanges(t *testing.T) {
	tests := []struct {
		name    string
		oldText string
		newText string
		ranges  []CharRange
		want    []CharRange
	}{
		{
			name:    "unchanged text keeps ranges",
			oldText: "hello world",
			newText: "hello world",
			ranges:  []CharRange{{Start: 6, End: 11}},
			want:    []CharRange{{Start: 6, End: 11}},
		},
		{
			name:    "insert before shifts range",
			oldText: "hello world",
			newText: "oh hello world",
			ranges:  []CharRange{{Start: 6, End: 11}},
			want:    []CharRange{{Start: 9, End: 14}},
		},
		{
			name:    "delete before shifts range back",
			oldText: "oh hello world",
			newText: "hello world",
			ranges:  []CharRange{{Start: 9, End: 14}},
			want:    []CharRange{{Start: 6, End: 11}},
		},
		{
			name:    "edit inside range drops it to a surviving occurrence",
			oldText: "foo bar foo",
			newText: "xyz bar foo",
			ranges:  []CharRange{{Start: 0, End: 3}},
			want:    []CharRange{{Start: 8, End: 11}},
		},
		{
			name:    "vanished text drops the range",
			oldText: "unique words here",
			newText: "different stuff",
			ranges:  []CharRange{{Start: 0, End: 6}},
			want:    nil,
		},
		{
			name:    "degenerate range dropped",
			oldText: "hello",
			newText: "hello",
			ranges:  []CharRange{{Start: 3, End: 3}},
			want:    nil,
		},
		{
			name:    "overlapping results merge",
			oldText: "aa bb cc",
			newText: "aa bb cc",
			ranges:  []CharRange{{Start: 0, End: 5}, {Start: 3, End: 8}},
			want:    []CharRange{{Start: 0, End: 8}},
		},
		{
			name:    "no ranges",
			oldText: "a",
			newText: "b",
			ranges:  nil,
			want:    nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ReattachRanges(tc.oldText, tc.newText, tc.ranges)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ReattachRanges = %+v; want %+v", got, tc.want)
			}
			for _, r := range got {
				if r.Start < 0 || r.End > len(tc.newText) || r.Start > r.End {
					t.Errorf("range %+v out of bounds for %q", r, tc.newText)
				}
			}
		})
	}
}

func TestReattachRangesPrefersMatchingContext(t *testing.T) {
	// Two occurrences of "bit" survive; the one sharing the original line
	// context must win over the plain nearest one.
	oldText := "keep this bit intact\nother bit elsewhere\nthe removed bit is gone"
	newText := "keep this bit intact\nother bit elsewhere\nthe removed thing is gone"

	start := len("keep this bit intact\nother bit elsewhere\nthe removed ")
	got := ReattachRanges(oldText, newText, []CharRange{{Start: start, End: start + 3}})
	if len(got) != 1 {
		t.Fatalf("got %+v; want one reattached range", got)
	}
	if newText[got[0].Start:got[0].End] != "bit" {
		t.Errorf("reattached range covers %q; want %q", newText[got[0].Start:got[0].End], "bit")
	}
}

func TestLocalContextStaysOnLine(t *testing.T) {
	text := "first line\nsecond target line\nthird line"
	pos := len("first line\nsecond ")
	prefix, affix := localContext(text, pos, len("target"))
	if prefix != "second " {
		t.Errorf("prefix = %q; want %q", prefix, "second ")
	}
	if affix != " line" {
		t.Errorf("affix = %q; want %q", affix, " line")
	}
}

func TestContextScore(t *testing.T) {
	tests := []struct {
		name                string
		oldPrefix, oldAffix string
		prefix, affix       string
		want                int
	}{
		{"no overlap", "abc", "def", "xyz", "uvw", 0},
		{"full match", "abc", "def", "abc", "def", 6},
		{"partial inside-out", "xxc", "dxx", "yyc", "dyy", 2},
		{"empty contexts", "", "", "anything", "at all", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := contextScore(tc.oldPrefix, tc.oldAffix, tc.prefix, tc.affix); got != tc.want {
				t.Errorf("contextScore = %d; want %d", got, tc.want)
			}
		})
	}
}
