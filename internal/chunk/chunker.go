// Package chunk splits novel text into overlapping word windows for indexing.
package chunk

import (
	"fmt"
	"strings"

	"github.com/psorokin/canonica/internal/model"
)

// Chunker splits text into overlapping word windows. Chunk i covers words
// [i*step, i*step+ChunkSize) where step = ChunkSize - Overlap; the final
// chunk may be shorter. Pure function of its inputs.
type Chunker struct {
	ChunkSize int // Window size in words
	Overlap   int // Words shared by consecutive windows
}

// New creates a chunker, validating the window parameters.
func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("overlap must be non-negative, got %d", overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("overlap (%d) must be smaller than chunk size (%d)", overlap, chunkSize)
	}
	return &Chunker{ChunkSize: chunkSize, Overlap: overlap}, nil
}

// Split cuts text into ordered chunks for the given book. Every word of the
// input appears in at least one chunk; positions are contiguous from 0.
// Empty or whitespace-only text is a validation error.
func (c *Chunker) Split(bookName, text string) ([]model.Chunk, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, fmt.Errorf("text for book %q contains no words to chunk", bookName)
	}

	step := c.ChunkSize - c.Overlap

	var chunks []model.Chunk
	for start := 0; ; start += step {
		end := start + c.ChunkSize
		if end > len(words) {
			end = len(words)
		}
		text := strings.Join(words[start:end], " ")
		chunks = append(chunks, model.Chunk{
			BookName: bookName,
			Position: len(chunks),
			Text:     text,
			Length:   len(text),
		})
		// This window reached the end; a further window would add no new words.
		if end == len(words) {
			break
		}
	}
	return chunks, nil
}
