package chunk

import (
	"fmt"
	"strings"
	"testing"
)

// makeWords builds a text of n distinct words.
func makeWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
		wantErr   bool
	}{
		{"valid defaults", 3000, 500, false},
		{"zero chunk size", 0, 0, true},
		{"negative overlap", 100, -1, true},
		{"overlap equals chunk size", 100, 100, true},
		{"overlap exceeds chunk size", 100, 200, true},
		{"no overlap", 100, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.chunkSize, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%d, %d) error = %v, wantErr %v", tt.chunkSize, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	c, _ := New(3000, 500)

	for _, text := range []string{"", "   ", "\n\t  \n"} {
		if _, err := c.Split("book", text); err == nil {
			t.Errorf("expected validation error for input %q", text)
		}
	}
}

func TestSplit_ChunkCount(t *testing.T) {
	// For W words, chunk_size=3000, overlap=500 (step=2500):
	// count = ceil(max(W-3000,0)/2500) + 1
	tests := []struct {
		words int
		want  int
	}{
		{1, 1},
		{2999, 1},
		{3000, 1},
		{3001, 2},
		{5500, 2},
		{6000, 3},
		{10000, 4},
	}

	c, _ := New(3000, 500)
	for _, tt := range tests {
		chunks, err := c.Split("book", makeWords(tt.words))
		if err != nil {
			t.Fatalf("Split(%d words): %v", tt.words, err)
		}
		if len(chunks) != tt.want {
			t.Errorf("Split(%d words): expected %d chunks, got %d", tt.words, tt.want, len(chunks))
		}
	}
}

func TestSplit_PositionsAndMetadata(t *testing.T) {
	c, _ := New(100, 20)
	chunks, err := c.Split("voyage", makeWords(450))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	for i, ch := range chunks {
		if ch.Position != i {
			t.Errorf("chunk %d: position %d", i, ch.Position)
		}
		if ch.BookName != "voyage" {
			t.Errorf("chunk %d: book name %q", i, ch.BookName)
		}
		if ch.Length != len(ch.Text) {
			t.Errorf("chunk %d: length %d, text length %d", i, ch.Length, len(ch.Text))
		}
	}
}

func TestSplit_OverlapShared(t *testing.T) {
	c, _ := New(100, 20)
	chunks, err := c.Split("book", makeWords(450))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	// Consecutive chunks share exactly overlap words except the final,
	// shorter chunk, whose tail just runs to the end of the text.
	for i := 0; i+1 < len(chunks); i++ {
		prev := strings.Fields(chunks[i].Text)
		next := strings.Fields(chunks[i+1].Text)

		shared := prev[len(prev)-c.Overlap:]
		head := next[:c.Overlap]
		for j := range shared {
			if shared[j] != head[j] {
				t.Fatalf("chunks %d/%d: expected %d shared words, mismatch at %d (%q vs %q)",
					i, i+1, c.Overlap, j, shared[j], head[j])
			}
		}
	}
}

func TestSplit_Reconstruction(t *testing.T) {
	c, _ := New(100, 20)
	original := makeWords(437)
	chunks, err := c.Split("book", original)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	// First step words of every chunk but the last, then the full last chunk,
	// reproduce the original word sequence.
	step := c.ChunkSize - c.Overlap
	var rebuilt []string
	for i, ch := range chunks {
		words := strings.Fields(ch.Text)
		if i == len(chunks)-1 {
			rebuilt = append(rebuilt, words...)
		} else {
			rebuilt = append(rebuilt, words[:step]...)
		}
	}
	if strings.Join(rebuilt, " ") != original {
		t.Error("reconstructed word sequence does not match original")
	}
}

func TestSplit_Deterministic(t *testing.T) {
	c, _ := New(100, 20)
	text := makeWords(333)

	a, err := c.Split("book", text)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	b, err := c.Split("book", text)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}
