package model

// Claim is an atomic, independently checkable statement about a character,
// extracted from a backstory. Claims are owned by a single verification run.
type Claim struct {
	Text  string `json:"text"`  // The claim text itself
	Index int    `json:"index"` // Extraction order (0-based)
}
