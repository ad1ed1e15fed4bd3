package utils

import (
	"regexp"
	"strings"
	"testing"
)

func TestSemanticChunkSplitsOnParagraphs(t *testing.T) {
	text := "First paragraph here.\n\nSecond paragraph here.\n\nThird paragraph here."
	chunks := SemanticChunk(text, 25)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %#v", len(chunks), chunks)
	}
	if chunks[0] != "First paragraph here." {
		t.Errorf("unexpected first chunk: %q", chunks[0])
	}
}

func TestSemanticChunkPacksGreedily(t *testing.T) {
	chunks := SemanticChunk("aaa\n\nbbb\n\ncc", 8)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %#v", len(chunks), chunks)
	}
	if chunks[0] != "aaa\n\nbbb" {
		t.Errorf("expected first two paragraphs packed together, got %q", chunks[0])
	}
	if chunks[1] != "cc" {
		t.Errorf("unexpected second chunk: %q", chunks[1])
	}
}

func TestSemanticChunkSingleChunkUnderLimit(t *testing.T) {
	chunks := SemanticChunk("Alpha paragraph.\n\nBeta paragraph.", 1000)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "Alpha paragraph.\n\nBeta paragraph." {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestSemanticChunkOversizedParagraphPassesWhole(t *testing.T) {
	big := strings.Repeat("x", 100)
	chunks := SemanticChunk("tiny\n\n"+big+"\n\ntiny2", 20)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %#v", len(chunks), chunks)
	}
	if chunks[1] != big {
		t.Errorf("oversized paragraph should be emitted whole, got %d chars", len(chunks[1]))
	}
}

func TestSemanticChunkNoEmptyChunks(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n\n\n", "a\n\n\n\nb"} {
		for _, chunk := range SemanticChunk(text, 10) {
			if strings.TrimSpace(chunk) == "" {
				t.Errorf("empty chunk emitted for input %q", text)
			}
		}
	}
}

// Rejoining the chunks must reconstruct the original paragraphs: nothing
// dropped, nothing duplicated.
func TestSemanticChunkReconstruction(t *testing.T) {
	texts := []string{
		"one\n\ntwo\n\nthree",
		"a long paragraph that stands alone",
		"p1\n\n\n\np2\n\np3 is somewhat longer than the others\n\np4",
	}
	breaks := regexp.MustCompile(`\n\n+`)

	for _, text := range texts {
		for _, size := range []int{1, 5, 30, 1000} {
			chunks := SemanticChunk(text, size)
			got := strings.TrimSpace(strings.Join(chunks, "\n\n"))
			want := strings.TrimSpace(strings.Join(breaks.Split(text, -1), "\n\n"))
			if got != want {
				t.Errorf("size %d: reconstruction mismatch\ngot:  %q\nwant: %q", size, got, want)
			}
		}
	}
}
