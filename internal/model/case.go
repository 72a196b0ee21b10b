package model

// CaseRecord is one input row of a dataset: a backstory to verify against
// a book. Label is empty for test rows and set for training rows.
type CaseRecord struct {
	ID        string `json:"id"`
	BookName  string `json:"book_name"`
	Character string `json:"character"`
	Backstory string `json:"backstory"`
	Label     string `json:"label,omitempty"` // Optional ground truth: "consistent" or "contradict"
}

// CaseOutput is one prediction row of a submission file.
type CaseOutput struct {
	ID         string      `json:"id"`
	Prediction Consistency `json:"prediction"`
	Rationale  string      `json:"rationale"`
	Book       string      `json:"book"`
	Character  string      `json:"character"`
}
