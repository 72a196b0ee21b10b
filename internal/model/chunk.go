package model

import "fmt"

// Chunk is a contiguous, possibly overlapping word window cut from the
// source novel. It is the unit of indexing; identity is (BookName, Position).
type Chunk struct {
	BookName string `json:"book_name"` // Book the chunk was cut from
	Position int    `json:"position"`  // 0-based, strictly increasing in creation order
	Text     string `json:"text"`      // The chunk text itself
	Length   int    `json:"length"`    // Length of Text in bytes
}

// ID returns the stable chunk identifier used as the vector store key.
func (c Chunk) ID() string {
	return fmt.Sprintf("%s_%d", c.BookName, c.Position)
}

// Passage is one ranked retrieval hit: a chunk text together with its
// distance to the query embedding and where it came from.
type Passage struct {
	Text     string  `json:"text"`
	Distance float64 `json:"distance"` // Smaller is closer
	Position int     `json:"position"` // Chunk position within the book
	BookName string  `json:"book_name"`
}
