package chunking

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitPacksParagraphsUpToLimit(t *testing.T) {
	s := NewSplitter(40)
	text := "first paragraph here\n\nsecond one\n\n" + strings.Repeat("x", 60)

	chunks := s.Split(text)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3: %q", len(chunks), chunks)
	}
	if chunks[0] != "first paragraph here\n\nsecond one" {
		t.Fatalf("first chunk = %q", chunks[0])
	}
	for i, c := range chunks {
		if len([]rune(c)) > 40 {
			t.Fatalf("chunk %d exceeds limit: %d runes", i, len([]rune(c)))
		}
	}
}

func TestSplitKeepsMultibyteRunesIntact(t *testing.T) {
	s := NewSplitter(5)
	chunks := s.Split(strings.Repeat("é", 12))
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk %d is not valid utf-8", i)
		}
	}
}

func TestSplitEmptyTextReturnsNothing(t *testing.T) {
	if chunks := NewSplitter(100).Split("   \n\n  "); chunks != nil {
		t.Fatalf("chunks = %v, want nil", chunks)
	}
}
