package model

// Consistency is the binary judgment for one claim.
type Consistency string

const (
	Consistent Consistency = "consistent"
	Contradict Consistency = "contradict"
)

// Valid reports whether the value is one of the two allowed verdicts.
// Any other value is a validation failure, never silently coerced.
func (c Consistency) Valid() bool {
	return c == Consistent || c == Contradict
}

// VerificationResult is the structured verdict for a single claim.
// Immutable after creation; a failed verification yields a synthesized
// placeholder with Contradict/0.0 and the failure text as reasoning.
type VerificationResult struct {
	Claim       string      `json:"claim"`
	Consistency Consistency `json:"consistency"`
	Confidence  float64     `json:"confidence"` // Always in [0.0, 1.0]
	Reasoning   string      `json:"reasoning"`
	KeyEvidence string      `json:"key_evidence"`
}

// Decision is the terminal artifact of one verification run.
type Decision struct {
	Prediction   Consistency          `json:"prediction"`
	Rationale    string               `json:"rationale"`
	ClaimResults []VerificationResult `json:"claim_results"` // In claim extraction order
	Character    string               `json:"character"`
	Book         string               `json:"book"`
}
