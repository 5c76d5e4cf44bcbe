package retime

import (
	"math"
	"testing"
)

func TestTokensToDocumentGrouping(t *testing.T) {
	tokens := []Token{
		{Text: "hello", Start: 0, End: 0.5, State: Keep, Conf: fptr(0.97)},
		{Text: " ", Start: 0.5, End: 0.5, State: Keep},
		{Text: "world", Start: 0.5, End: 1.0, State: Keep},
		{Text: "\n", Start: 1.0, End: 1.0, State: Keep},
		{Text: "second", Start: 1.2, End: 1.8, State: Keep},
		{Text: " ", Start: 1.8, End: 1.8, State: Keep},
		{Text: "line", Start: 1.8, End: 2.2, State: Keep},
	}
	doc := TokensToDocument(tokens)

	if doc.Text != "hello world\nsecond line" {
		t.Fatalf("doc text = %q", doc.Text)
	}
	if len(doc.Segments) != 2 {
		t.Fatalf("got %d segments; want 2", len(doc.Segments))
	}

	first := doc.Segments[0]
	if first.Text != "hello world" {
		t.Errorf("segment text = %q", first.Text)
	}
	if len(first.Words) != 2 {
		t.Fatalf("segment words = %+v; want 2", first.Words)
	}
	// Whitespace rides on the *following* word, mirroring Tokenize.
	if first.Words[0].Word != "hello" || first.Words[1].Word != " world" {
		t.Errorf("word texts = %q, %q", first.Words[0].Word, first.Words[1].Word)
	}
	if first.Words[0].Probability == nil || *first.Words[0].Probability != 0.97 {
		t.Errorf("probability lost: %+v", first.Words[0])
	}
	if first.Start != 0 || first.End != 1.0 {
		t.Errorf("segment bounds = %v/%v; want 0/1.0", first.Start, first.End)
	}

	second := doc.Segments[1]
	if second.Start != 1.2 || second.End != 2.2 {
		t.Errorf("segment bounds = %v/%v; want 1.2/2.2", second.Start, second.End)
	}
}

func TestTokensToDocumentDropsDeleted(t *testing.T) {
	tokens := []Token{
		{Text: "keep", Start: 0, End: 0.5, State: Keep},
		{Text: " ", Start: 0.5, End: 0.5, State: Delete},
		{Text: "gone", Start: 0.5, End: 1.0, State: Delete},
	}
	doc := TokensToDocument(tokens)
	if doc.Text != "keep" {
		t.Errorf("doc text = %q; want %q", doc.Text, "keep")
	}
	if len(doc.Segments) != 1 || len(doc.Segments[0].Words) != 1 {
		t.Fatalf("unexpected structure: %+v", doc.Segments)
	}
}

func TestTokensToDocumentEmptySegmentPlaceholder(t *testing.T) {
	tokens := []Token{
		{Text: "a", Start: math.NaN(), End: math.NaN(), State: Keep},
	}
	doc := TokensToDocument(tokens)
	if len(doc.Segments) != 1 {
		t.Fatalf("got %d segments; want 1", len(doc.Segments))
	}
	seg := doc.Segments[0]
	if seg.Start != 0 || seg.End != 0.25 {
		t.Errorf("placeholder bounds = %v/%v; want 0/0.25", seg.Start, seg.End)
	}
}

func TestDocumentToTokensBoundaries(t *testing.T) {
	doc := Document{
		Segments: []Segment{
			{Start: 0, End: 1.0, Text: "hello world", Words: []Word{
				{Word: "hello", Start: 0, End: 0.5},
				{Word: " world", Start: 0.5, End: 1.0},
			}},
			{Start: 1.2, End: 2.2, Text: "again", Words: []Word{
				{Word: "again", Start: 1.2, End: 2.2, Probability: fptr(0.5)},
			}},
		},
	}
	tokens := DocumentToTokens(doc)
	if len(tokens) != 4 {
		t.Fatalf("got %d tokens; want 4", len(tokens))
	}
	if !tokens[2].IsBoundary() {
		t.Fatalf("token 2 = %+v; want newline boundary", tokens[2])
	}
	if tokens[2].Start != 1.0 || tokens[2].End != 1.0 {
		t.Errorf("boundary anchor = %v/%v; want 1.0/1.0", tokens[2].Start, tokens[2].End)
	}
	for i, tok := range tokens {
		if tok.State != Keep {
			t.Errorf("token %d state = %v; want keep", i, tok.State)
		}
	}
	if tokens[3].Conf == nil || *tokens[3].Conf != 0.5 {
		t.Errorf("probability lost on token 3: %+v", tokens[3])
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{
			"two segments",
			Document{
				Text: "hello world\nsecond line",
				Segments: []Segment{
					{Start: 0, End: 1.0, Text: "hello world", Words: []Word{
						{Word: "hello", Start: 0, End: 0.5},
						{Word: " world", Start: 0.5, End: 1.0},
					}},
					{Start: 1.2, End: 2.2, Text: "second line", Words: []Word{
						{Word: "second", Start: 1.2, End: 1.8},
						{Word: " line", Start: 1.8, End: 2.2},
					}},
				},
			},
		},
		{
			"leading whitespace on a word",
			Document{
				Text: "  indented start",
				Segments: []Segment{
					{Start: 0, End: 1.0, Text: "  indented start", Words: []Word{
						{Word: "  indented", Start: 0, End: 0.6},
						{Word: " start", Start: 0.6, End: 1.0},
					}},
				},
			},
		},
		{
			"empty middle segment",
			Document{
				Text: "a\n\nb",
				Segments: []Segment{
					{Start: 0, End: 0.2, Text: "a", Words: []Word{{Word: "a", Start: 0, End: 0.2}}},
					{Start: 0, End: 0.25, Text: "", Words: nil},
					{Start: 0.4, End: 0.6, Text: "b", Words: []Word{{Word: "b", Start: 0.4, End: 0.6}}},
				},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TokensToDocument(DocumentToTokens(tc.doc))
			if got.Text != tc.doc.Text {
				t.Errorf("round-trip text = %q; want %q", got.Text, tc.doc.Text)
			}
			if len(got.Segments) != len(tc.doc.Segments) {
				t.Fatalf("round-trip segments = %d; want %d", len(got.Segments), len(tc.doc.Segments))
			}
			// Coarsened segment times must stay within the originals.
			for i, seg := range got.Segments {
				orig := tc.doc.Segments[i]
				if len(orig.Words) == 0 {
					continue
				}
				if seg.Start < orig.Start-1e-9 || seg.End > orig.End+1e-9 {
					t.Errorf("segment %d bounds %v/%v escape original %v/%v", i, seg.Start, seg.End, orig.Start, orig.End)
				}
			}
		})
	}
}
