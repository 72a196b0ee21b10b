// Package score evaluates predictions against labeled cases.
package score

import (
	"fmt"
	"io"
	"sort"

	"github.com/psorokin/canonica/internal/model"
)

// Mismatch is one wrongly predicted case.
type Mismatch struct {
	ID        string
	Book      string
	Character string
	Label     string
	Predicted model.Consistency
	Rationale string
}

// Report summarizes prediction quality over the labeled subset of a batch.
// Unlabeled cases are counted but not scored.
type Report struct {
	Total      int
	Labeled    int
	Correct    int
	PerLabel   map[string]LabelStats
	Mismatches []Mismatch
}

// LabelStats counts outcomes for one ground-truth label.
type LabelStats struct {
	Cases   int
	Correct int
}

// Accuracy returns the fraction of labeled cases predicted correctly.
func (r Report) Accuracy() float64 {
	if r.Labeled == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Labeled)
}

// Evaluate scores outputs against their cases, matched by position. The two
// slices must be parallel, the way a batch run produces them.
func Evaluate(cases []model.CaseRecord, outputs []model.CaseOutput) (Report, error) {
	if len(cases) != len(outputs) {
		return Report{}, fmt.Errorf("cases/outputs length mismatch: %d vs %d", len(cases), len(outputs))
	}

	report := Report{
		Total:    len(cases),
		PerLabel: make(map[string]LabelStats),
	}
	for i, c := range cases {
		out := outputs[i]
		if out.ID != c.ID {
			return Report{}, fmt.Errorf("output %d is for case %q, want %q", i, out.ID, c.ID)
		}
		if c.Label == "" {
			continue
		}
		report.Labeled++

		stats := report.PerLabel[c.Label]
		stats.Cases++
		if string(out.Prediction) == c.Label {
			stats.Correct++
			report.Correct++
		} else {
			report.Mismatches = append(report.Mismatches, Mismatch{
				ID:        c.ID,
				Book:      c.BookName,
				Character: c.Character,
				Label:     c.Label,
				Predicted: out.Prediction,
				Rationale: out.Rationale,
			})
		}
		report.PerLabel[c.Label] = stats
	}
	return report, nil
}

// Render prints the report in a readable layout.
func (r Report) Render(w io.Writer) {
	fmt.Fprintf(w, "Scored %d of %d cases (%d unlabeled)\n", r.Labeled, r.Total, r.Total-r.Labeled)
	if r.Labeled == 0 {
		return
	}
	fmt.Fprintf(w, "Accuracy: %.1f%% (%d/%d)\n", 100*r.Accuracy(), r.Correct, r.Labeled)

	labels := make([]string, 0, len(r.PerLabel))
	for label := range r.PerLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		stats := r.PerLabel[label]
		fmt.Fprintf(w, "  %-12s %d/%d correct\n", label, stats.Correct, stats.Cases)
	}

	if len(r.Mismatches) > 0 {
		fmt.Fprintln(w, "\nMismatches:")
		for _, m := range r.Mismatches {
			fmt.Fprintf(w, "  %s (%s, %s): predicted %s, label %s\n", m.ID, m.Book, m.Character, m.Predicted, m.Label)
		}
	}
}
